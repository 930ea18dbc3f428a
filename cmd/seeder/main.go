package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/dependencies"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	blogService "github.com/Xushengqwer/blog_service/service"
	"github.com/Xushengqwer/blog_service/storage"
)

func main() {
	// --- 0. 解析命令行参数 ---
	var numPosts int
	var brokenRows int
	var configFile string
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "配置文件路径")
	flag.IntVar(&numPosts, "n", 30, "要生成的帖子数量 (默认: 30)")
	flag.IntVar(&brokenRows, "broken", 5, "要制造的坏台账行数量 (孤儿 Blob + 悬挂挂载各一半, 默认: 5)")
	flag.Parse()

	absConfigFile, err := filepath.Abs(configFile)
	if err != nil {
		fmt.Printf("无法获取配置文件的绝对路径 '%s': %v\n", configFile, err)
		absConfigFile = configFile
	}
	fmt.Printf("准备使用配置文件 '%s' 生成 %d 条测试帖子和 %d 条坏台账行...\n", absConfigFile, numPosts, brokenRows)

	if numPosts <= 0 {
		fmt.Println("错误: 生成的帖子数量必须大于 0")
		os.Exit(1)
	}

	// --- 1. 加载配置 ---
	var cfg appConfig.BlogConfig
	if err := core.LoadConfig(absConfigFile, &cfg); err != nil {
		fmt.Printf("加载配置失败 (%s): %v\n", absConfigFile, err)
		os.Exit(1)
	}
	fmt.Println("配置加载成功。")

	// --- 2. 初始化日志记录器 ---
	logger, loggerErr := core.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		fmt.Printf("初始化 ZapLogger 失败: %v\n", loggerErr)
		os.Exit(1)
	}
	defer func() { _ = logger.Logger().Sync() }()
	logger.Info("Logger 初始化成功 (Seeder)")

	// --- 3. 初始化 MySQL 与对象存储 ---
	db, dbErr := dependencies.InitMySQL(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化 MySQL 失败 (Seeder)", zap.Error(dbErr))
	}
	logger.Info("MySQL 连接成功 (Seeder)")

	store, storeErr := storage.New(&cfg.StorageConfig, logger)
	if storeErr != nil {
		logger.Fatal("初始化对象存储后端失败 (Seeder)", zap.Error(storeErr))
	}

	// --- 4. 初始化 Repositories 与 Services ---
	postRepo := mysql.NewPostRepository(db, logger)
	commentRepo := mysql.NewCommentRepository(db)
	blobRepo := mysql.NewBlobRepository(db)
	attachmentRepo := mysql.NewAttachmentRepository(db)

	envPrefix := cfg.StorageConfig.EnvPrefix
	postSvc := blogService.NewPostService(db, postRepo, commentRepo, blobRepo, attachmentRepo, store, envPrefix, nil, logger)
	commentSvc := blogService.NewCommentService(db, postRepo, commentRepo, logger)
	logger.Info("Services 已初始化 (Seeder)")

	// --- 5. 执行数据填充 ---
	ctx := context.Background()
	startTime := time.Now()

	seeder := &Seeder{
		db:             db,
		postSvc:        postSvc,
		commentSvc:     commentSvc,
		blobRepo:       blobRepo,
		attachmentRepo: attachmentRepo,
		envPrefix:      envPrefix,
		logger:         logger,
	}
	seeder.Seed(ctx, numPosts, brokenRows)

	fmt.Printf("数据填充完成！耗时: %v\n", time.Since(startTime))
}
