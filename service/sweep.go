package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/mq/producer"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	redisRepo "github.com/Xushengqwer/blog_service/repo/redis"
	"github.com/Xushengqwer/blog_service/storage"
)

// SweepService 附件台账的一致性清扫。
//
// 正常流量允许台账出现两类垃圾：孤儿 Blob（没有任何存活挂载引用）和悬挂
// Attachment（Blob 引用解析不到）。清扫分两个阶段各自处理一类，整体幂等：
// 紧接着再跑一次，在没有新写入的前提下所有计数为 0。
//
// 孤儿 Blob 的清除顺序是先删存储字节、再硬删台账行。字节删除失败时保留
// 台账行，下一轮重试；反过来（先删行）会让字节永远失联。
type SweepService interface {
	// Sweep 执行一次完整清扫并返回报告。
	// 配置了清扫锁且锁被其它实例持有时返回 myErrors.ErrSweepInProgress。
	Sweep(ctx context.Context) (*vo.SweepReportVO, error)
}

type sweepService struct {
	db             *gorm.DB
	blobRepo       mysql.BlobRepository
	attachmentRepo mysql.AttachmentRepository
	store          storage.ObjectStorage
	lock           redisRepo.SweepLock // 可为 nil（CLI 单机模式）
	sweepCfg       config.SweepConfig
	kafkaSvc       *producer.KafkaProducer // 可为 nil
	logger         *core.ZapLogger
}

// NewSweepService 创建 sweepService 实例。
// lock 为 nil 时不做跨实例互斥（例如 CLI 针对测试库单独执行）。
func NewSweepService(
	db *gorm.DB,
	blobRepo mysql.BlobRepository,
	attachmentRepo mysql.AttachmentRepository,
	store storage.ObjectStorage,
	lock redisRepo.SweepLock,
	sweepCfg config.SweepConfig,
	kafkaSvc *producer.KafkaProducer,
	logger *core.ZapLogger,
) SweepService {
	return &sweepService{
		db:             db,
		blobRepo:       blobRepo,
		attachmentRepo: attachmentRepo,
		store:          store,
		lock:           lock,
		sweepCfg:       sweepCfg,
		kafkaSvc:       kafkaSvc,
		logger:         logger,
	}
}

func (s *sweepService) Sweep(ctx context.Context) (*vo.SweepReportVO, error) {
	if s.lock != nil {
		token, acquired, err := s.lock.TryAcquire(ctx, s.sweepCfg.LockTTL())
		if err != nil {
			return nil, fmt.Errorf("获取清扫锁失败: %w", err)
		}
		if !acquired {
			return nil, myErrors.ErrSweepInProgress
		}
		defer func() {
			if releaseErr := s.lock.Release(context.Background(), token); releaseErr != nil {
				s.logger.Warn("释放清扫锁失败，将由 TTL 兜底", zap.Error(releaseErr))
			}
		}()
	}

	startedAt := time.Now()
	report := &vo.SweepReportVO{StartedAt: startedAt}
	s.logger.Info("附件一致性清扫开始",
		zap.Duration("gracePeriod", s.sweepCfg.GracePeriod()),
		zap.Int("batchSize", s.sweepCfg.BatchSize),
		zap.Int("workers", s.sweepCfg.Workers()))

	if err := s.purgeOrphanBlobs(ctx, report); err != nil {
		return nil, err
	}
	if err := s.removeDanglingAttachments(ctx, report); err != nil {
		return nil, err
	}

	report.Duration = time.Since(startedAt).String()
	s.logger.Info("附件一致性清扫完成",
		zap.Int("orphanBlobsPurged", report.OrphanBlobsPurged),
		zap.Int("danglingAttachmentsRemoved", report.DanglingAttachmentsRemoved),
		zap.Int("failures", len(report.Failures)),
		zap.String("duration", report.Duration))

	if s.kafkaSvc != nil && report.Changed() {
		if evErr := s.kafkaSvc.SendSweepCompletedEvent(ctx, *report); evErr != nil {
			s.logger.Warn("清扫完成事件投递失败", zap.Error(evErr))
		}
	}
	return report, nil
}

// purgeOrphanBlobs 阶段一：清除孤儿 Blob。
// 宽限期保护直传确认窗口内的新 Blob；每个 Blob 独立清除，单个失败
// 只记入报告，不中断整轮清扫。
func (s *sweepService) purgeOrphanBlobs(ctx context.Context, report *vo.SweepReportVO) error {
	cutoff := time.Now().Add(-s.sweepCfg.GracePeriod())
	orphans, err := s.blobRepo.ListOrphanBlobs(ctx, cutoff, s.sweepCfg.BatchSize)
	if err != nil {
		return fmt.Errorf("查询孤儿 Blob 失败: %w", err)
	}
	if len(orphans) == 0 {
		return nil
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.sweepCfg.Workers())

	for _, orphan := range orphans {
		blob := orphan
		g.Go(func() error {
			// 先字节后行；字节删除失败保留行，等下一轮重试
			if delErr := s.store.Delete(gCtx, blob.StorageKey); delErr != nil {
				s.logger.Warn("清扫：删除存储字节失败，保留台账行",
					zap.Uint64("blobID", blob.ID), zap.String("key", blob.StorageKey), zap.Error(delErr))
				mu.Lock()
				report.Failures = append(report.Failures, vo.SweepFailure{
					BlobID: blob.ID, StorageKey: blob.StorageKey, Reason: delErr.Error(),
				})
				mu.Unlock()
				return nil
			}
			if purgeErr := s.blobRepo.PurgeBlobByID(gCtx, s.db, blob.ID); purgeErr != nil {
				// 字节已删、行没删成：行保留，下一轮重删字节是幂等空操作
				s.logger.Warn("清扫：硬删 Blob 行失败",
					zap.Uint64("blobID", blob.ID), zap.Error(purgeErr))
				mu.Lock()
				report.Failures = append(report.Failures, vo.SweepFailure{
					BlobID: blob.ID, StorageKey: blob.StorageKey, Reason: purgeErr.Error(),
				})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			report.OrphanBlobsPurged++
			report.PurgedBlobIDs = append(report.PurgedBlobIDs, blob.ID)
			report.PurgedBlobKeys = append(report.PurgedBlobKeys, blob.StorageKey)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// 并发完成顺序不定，排序让报告可复现
	sort.Slice(report.PurgedBlobIDs, func(i, j int) bool { return report.PurgedBlobIDs[i] < report.PurgedBlobIDs[j] })
	sort.Strings(report.PurgedBlobKeys)
	return nil
}

// removeDanglingAttachments 阶段二：硬删悬挂 Attachment。
// 这些行的 Blob 引用已解析不到，没有任何字节需要处理，纯台账清理。
func (s *sweepService) removeDanglingAttachments(ctx context.Context, report *vo.SweepReportVO) error {
	dangling, err := s.attachmentRepo.ListDanglingAttachments(ctx)
	if err != nil {
		return fmt.Errorf("查询悬挂挂载失败: %w", err)
	}
	if len(dangling) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(dangling))
	for _, att := range dangling {
		ids = append(ids, att.ID)
	}
	removed, err := s.attachmentRepo.HardDeleteByIDs(ctx, s.db, ids)
	if err != nil {
		return fmt.Errorf("硬删悬挂挂载失败: %w", err)
	}

	report.DanglingAttachmentsRemoved = int(removed)
	report.RemovedAttachmentIDs = ids
	return nil
}
