package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/models/events"
	"github.com/Xushengqwer/blog_service/models/vo"
)

// KafkaProducer Kafka 事件生产者。
// 事件投递是尽力而为：投递失败记录日志并返回错误，由调用方决定是否忽略，
// 绝不因为事件失败回滚已提交的业务写入。
type KafkaProducer struct {
	writer *kafka.Writer
	logger *core.ZapLogger
	topics config.Topics
}

// NewKafkaProducer 创建 Kafka 生产者实例。
func NewKafkaProducer(cfg config.KafkaConfig, logger *core.ZapLogger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaProducer{
		writer: writer,
		logger: logger,
		topics: cfg.Topics,
	}
}

// SendEvent 序列化事件并发送到指定主题。主题为空时跳过（未配置即不投递）。
func (p *KafkaProducer) SendEvent(ctx context.Context, topic string, event interface{}) error {
	if topic == "" {
		return nil
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("事件序列化失败", zap.Error(err), zap.String("topic", topic))
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: eventBytes,
	})
	if err != nil {
		p.logger.Error("Kafka 消息写入失败", zap.Error(err), zap.String("topic", topic))
		return err
	}
	p.logger.Debug("Kafka 消息已发送", zap.String("topic", topic))
	return nil
}

// SendPostCreatedEvent 投递帖子创建事件。
func (p *KafkaProducer) SendPostCreatedEvent(ctx context.Context, postData events.PostData) error {
	event := events.PostCreatedEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		Post:      postData,
	}
	return p.SendEvent(ctx, p.topics.PostCreated, event)
}

// SendPostDeletedEvent 投递帖子删除事件，下游据此清理派生数据。
func (p *KafkaProducer) SendPostDeletedEvent(ctx context.Context, postID uint64) error {
	event := events.PostDeletedEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		PostID:    postID,
	}
	return p.SendEvent(ctx, p.topics.PostDeleted, event)
}

// SendSweepCompletedEvent 投递附件清扫完成事件，携带完整报告供审计。
func (p *KafkaProducer) SendSweepCompletedEvent(ctx context.Context, report vo.SweepReportVO) error {
	event := events.SweepCompletedEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		Report:    report,
	}
	return p.SendEvent(ctx, p.topics.SweepCompleted, event)
}

// Close 关闭底层 writer。
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
