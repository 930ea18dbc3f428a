package constant

// AttachmentSweepCronSpec 附件一致性清扫的默认调度表达式（每天凌晨 4 点）。
// 清扫本身幂等，调度频率只影响孤儿数据的回收时延，不影响正确性。
const AttachmentSweepCronSpec = "0 4 * * *"
