package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/Xushengqwer/go-common/core"
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	mysqlRepo "github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/service"
	"github.com/Xushengqwer/blog_service/storage"
)

// Seeder 通过服务层填充测试帖子与评论，并直接通过仓库层制造坏台账行
// （孤儿 Blob 与悬挂挂载），供验证后台清扫任务使用。
type Seeder struct {
	db             *gorm.DB
	postSvc        service.PostService
	commentSvc     service.CommentService
	blobRepo       mysqlRepo.BlobRepository
	attachmentRepo mysqlRepo.AttachmentRepository
	envPrefix      string
	logger         *core.ZapLogger
}

// Seed 填充 numPosts 条帖子（每条随机附带若干评论），再制造 brokenRows 条坏台账行。
func (s *Seeder) Seed(ctx context.Context, numPosts, brokenRows int) {
	s.logger.Info("开始填充测试数据 (通过服务层)...", zap.Int("数量", numPosts))

	var wg sync.WaitGroup
	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for i := 0; i < numPosts; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(itemIndex int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			createReq := &dto.CreatePostRequest{
				Title:      gofakeit.Sentence(gofakeit.Number(4, 10)),
				Content:    gofakeit.Paragraph(3, 5, 20, "\n\n"),
				AuthorName: gofakeit.Username(),
				Published:  gofakeit.Bool(),
			}

			resp, err := s.postSvc.CreatePost(ctx, createReq, nil)
			if err != nil {
				s.logger.Error(fmt.Sprintf("创建帖子 %d/%d 失败", itemIndex+1, numPosts),
					zap.Error(err), zap.String("title", createReq.Title))
				return
			}

			// 每条帖子随机附带 0~3 条评论
			for j := 0; j < gofakeit.Number(0, 3); j++ {
				commentReq := &dto.CreateCommentRequest{
					AuthorName: gofakeit.Username(),
					Content:    gofakeit.Sentence(gofakeit.Number(5, 20)),
				}
				if _, cErr := s.commentSvc.CreateComment(ctx, resp.ID, commentReq); cErr != nil {
					s.logger.Error("创建评论失败", zap.Uint64("postID", resp.ID), zap.Error(cErr))
				}
			}

			s.logger.Info(fmt.Sprintf("成功创建帖子 %d/%d", itemIndex+1, numPosts),
				zap.Uint64("post_id", resp.ID), zap.String("title", resp.Title))
		}(i)
	}
	wg.Wait()

	if brokenRows > 0 {
		s.seedBrokenLedgerRows(ctx, brokenRows)
	}
	s.logger.Info("测试数据填充完毕。")
}

// seedBrokenLedgerRows 直接写仓库层制造台账垃圾：
//   - 孤儿 Blob: 有 Blob 行但没有任何挂载引用（模拟直传后未确认）。
//   - 悬挂挂载: Attachment 指向一个从未存在的 BlobID（模拟历史数据损坏）。
//
// 这些行对读路径不可见，跑一轮清扫后应全部消失。
func (s *Seeder) seedBrokenLedgerRows(ctx context.Context, count int) {
	orphans := (count + 1) / 2
	dangling := count - orphans
	s.logger.Info("开始制造坏台账行",
		zap.Int("孤儿Blob", orphans), zap.Int("悬挂挂载", dangling))

	for i := 0; i < orphans; i++ {
		blob := &entities.Blob{
			StorageKey:  storage.NewImageObjectKey(s.envPrefix, gofakeit.Word()+".jpg"),
			Filename:    gofakeit.Word() + ".jpg",
			ContentType: "image/jpeg",
			ByteSize:    int64(gofakeit.Number(1024, 1<<20)),
			Checksum:    gofakeit.UUID(),
		}
		if err := s.blobRepo.CreateBlob(ctx, s.db, blob); err != nil {
			s.logger.Error("制造孤儿 Blob 失败", zap.Error(err))
		}
	}

	for i := 0; i < dangling; i++ {
		att := &entities.Attachment{
			OwnerType: constant.OwnerTypePost,
			OwnerID:   uint64(gofakeit.Number(1, 1000)),
			SlotName:  constant.SlotPostImages,
			BlobID:    uint64(gofakeit.Number(9_000_000, 9_999_999)), // 不存在的 Blob
			Position:  0,
		}
		if err := s.attachmentRepo.CreateAttachment(ctx, s.db, att); err != nil {
			s.logger.Error("制造悬挂挂载失败", zap.Error(err))
		}
	}
}
