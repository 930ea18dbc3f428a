package config

// KafkaConfig Kafka 生产者配置。Brokers 为空时服务不启用事件投递。
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" json:"brokers" yaml:"brokers"`
	Topics  Topics   `mapstructure:"topics" json:"topics" yaml:"topics"`
}

// Topics 各事件主题名。
type Topics struct {
	PostCreated    string `mapstructure:"postCreated" yaml:"postCreated"`       // 帖子创建事件
	PostDeleted    string `mapstructure:"postDeleted" yaml:"postDeleted"`       // 帖子删除事件
	SweepCompleted string `mapstructure:"sweepCompleted" yaml:"sweepCompleted"` // 附件清扫完成事件
}
