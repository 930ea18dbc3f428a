package vo

import "time"

// SweepFailure 清扫过程中单个 Blob 清除失败的记录。
// 字节删除失败时保留台账行，等待下一轮清扫重试。
type SweepFailure struct {
	BlobID     uint64 `json:"blob_id"`
	StorageKey string `json:"storage_key"`
	Reason     string `json:"reason"`
}

// SweepReportVO 一次附件一致性清扫的报告。
// 连续两次清扫之间没有写入时，第二次的所有计数都应为 0（幂等）。
type SweepReportVO struct {
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`

	// 孤儿 Blob 阶段
	OrphanBlobsPurged int      `json:"orphan_blobs_purged"` // 成功清除（字节 + 台账行）的数量
	PurgedBlobIDs     []uint64 `json:"purged_blob_ids"`
	PurgedBlobKeys    []string `json:"purged_blob_keys"`

	// 悬挂 Attachment 阶段
	DanglingAttachmentsRemoved int      `json:"dangling_attachments_removed"`
	RemovedAttachmentIDs       []uint64 `json:"removed_attachment_ids"`

	// 失败汇总（不致命，仅报告）
	Failures []SweepFailure `json:"failures,omitempty"`
}

// Changed 报告本轮是否产生了任何变更。
func (r *SweepReportVO) Changed() bool {
	return r.OrphanBlobsPurged > 0 || r.DanglingAttachmentsRemoved > 0
}
