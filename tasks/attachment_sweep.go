package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/service"
)

// AttachmentSweepTask 负责定时执行附件一致性清扫。
// 清扫本身幂等，跨实例互斥由服务层的 Redis 锁保证，这里只管按计划触发。
type AttachmentSweepTask struct {
	sweepService service.SweepService
	cron         *cron.Cron
	logger       *core.ZapLogger
}

// NewAttachmentSweepTask 初始化并启动附件清扫的定时任务。
func NewAttachmentSweepTask(sweepService service.SweepService, logger *core.ZapLogger) *AttachmentSweepTask {
	task := &AttachmentSweepTask{
		sweepService: sweepService,
		cron:         cron.New(),
		logger:       logger,
	}
	task.startCronJob()
	return task
}

// startCronJob 配置并启动 cron 作业。
func (t *AttachmentSweepTask) startCronJob() {
	schedule := constant.AttachmentSweepCronSpec
	t.logger.Info("准备启动附件一致性清扫定时任务", zap.String("schedule", schedule))

	entryID, err := t.cron.AddFunc(schedule, func() {
		// 单次清扫设置超时兜底，防止存储后端异常时任务卡死
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		report, sweepErr := t.sweepService.Sweep(ctx)
		if sweepErr != nil {
			if errors.Is(sweepErr, myErrors.ErrSweepInProgress) {
				t.logger.Info("已有清扫在执行（可能由其它实例或手动触发），本轮跳过")
				return
			}
			t.logger.Error("定时附件清扫失败", zap.Error(sweepErr))
			return
		}
		t.logger.Info("定时附件清扫完成",
			zap.Int("orphanBlobsPurged", report.OrphanBlobsPurged),
			zap.Int("danglingAttachmentsRemoved", report.DanglingAttachmentsRemoved),
			zap.Int("failures", len(report.Failures)),
			zap.String("duration", report.Duration))
	})
	if err != nil {
		t.logger.Fatal("添加附件清扫 cron 作业失败", zap.Error(err), zap.String("schedule", schedule))
	}

	t.cron.Start()
	t.logger.Info("附件一致性清扫定时任务已启动", zap.Uint("cronEntryID", uint(entryID)))
}

// Stop 优雅地停止 cron 调度器，返回的 context 可用于等待正在执行的清扫结束。
func (t *AttachmentSweepTask) Stop() context.Context {
	t.logger.Info("正在停止附件一致性清扫定时任务...")
	stopCtx := t.cron.Stop()
	t.logger.Info("附件一致性清扫定时任务已停止调度。等待正在执行的清扫完成...")
	return stopCtx
}
