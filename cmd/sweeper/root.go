package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	sharedCore "github.com/Xushengqwer/go-common/core"

	appConfig "github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/dependencies"
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	redisRepo "github.com/Xushengqwer/blog_service/repo/redis"
	"github.com/Xushengqwer/blog_service/service"
	"github.com/Xushengqwer/blog_service/storage"
)

// newRootCmd 构建 sweeper 命令行入口。
// 与 HTTP 管理接口和定时任务共用同一个清扫服务，跨实例互斥同样走 Redis 锁，
// 因此随时手动执行都是安全的。
func newRootCmd() *cobra.Command {
	var (
		configFile string
		noLock     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "sweeper",
		Short: "执行一次附件一致性清扫",
		Long: "扫描附件台账，回收没有任何挂载引用的文件（先删存储字节再删台账行），\n" +
			"并移除引用已失效的挂载记录。清扫幂等，可反复执行。",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg appConfig.BlogConfig
			if err := sharedCore.LoadConfig(configFile, &cfg); err != nil {
				return fmt.Errorf("加载配置失败 (%s): %w", configFile, err)
			}

			logger, err := sharedCore.NewZapLogger(cfg.ZapConfig)
			if err != nil {
				return fmt.Errorf("初始化 ZapLogger 失败: %w", err)
			}
			defer func() { _ = logger.Logger().Sync() }()

			db, err := dependencies.InitMySQL(&cfg, logger)
			if err != nil {
				return fmt.Errorf("初始化 MySQL 失败: %w", err)
			}

			store, err := storage.New(&cfg.StorageConfig, logger)
			if err != nil {
				return fmt.Errorf("初始化对象存储后端失败: %w", err)
			}

			// --no-lock 跳过 Redis 互斥锁（针对独占的测试库单机执行时使用）
			var sweepLock redisRepo.SweepLock
			if !noLock {
				rdb, redisErr := dependencies.InitRedis(&cfg.RedisConfig, logger)
				if redisErr != nil {
					return fmt.Errorf("初始化 Redis 失败（如需跳过互斥锁请使用 --no-lock）: %w", redisErr)
				}
				sweepLock = redisRepo.NewSweepLock(rdb, logger)
			} else {
				logger.Warn("已跳过 Redis 清扫锁，请确保没有其它实例同时执行清扫")
			}

			blobRepo := mysql.NewBlobRepository(db)
			attachmentRepo := mysql.NewAttachmentRepository(db)
			sweepSvc := service.NewSweepService(db, blobRepo, attachmentRepo, store, sweepLock, cfg.SweepConfig, nil, logger)

			report, err := sweepSvc.Sweep(cmd.Context())
			if err != nil {
				logger.Error("清扫执行失败", zap.Error(err))
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(report)
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "config/config.development.yaml", "配置文件路径")
	cmd.Flags().BoolVar(&noLock, "no-lock", false, "跳过 Redis 互斥锁（单机/测试环境）")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "以 JSON 格式输出清扫报告")
	return cmd
}

// printReport 以人类可读格式输出清扫报告。
func printReport(report *vo.SweepReportVO) {
	fmt.Printf("清扫完成，耗时 %s\n", report.Duration)
	fmt.Printf("  孤儿文件已回收: %d\n", report.OrphanBlobsPurged)
	for i, key := range report.PurgedBlobKeys {
		var id uint64
		if i < len(report.PurgedBlobIDs) {
			id = report.PurgedBlobIDs[i]
		}
		fmt.Printf("    blob %d: %s\n", id, key)
	}
	fmt.Printf("  失效挂载已移除: %d\n", report.DanglingAttachmentsRemoved)
	for _, id := range report.RemovedAttachmentIDs {
		fmt.Printf("    attachment %d\n", id)
	}
	if len(report.Failures) > 0 {
		fmt.Printf("  失败 (下一轮重试): %d\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Printf("    blob %d (%s): %s\n", f.BlobID, f.StorageKey, f.Reason)
		}
	}
	if !report.Changed() {
		fmt.Println("  台账状态一致，无需清理。")
	}
}
