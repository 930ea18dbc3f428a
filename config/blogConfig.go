package config

import "github.com/Xushengqwer/go-common/config"

// BlogConfig 博客服务的聚合配置，通过 core.LoadConfig 从 YAML + 环境变量加载。
// 存储后端的选择（local / cos）是显式配置项，在启动时注入 Store 组件，
// 业务代码不允许再读取任何进程级环境状态来切换后端。
type BlogConfig struct {
	ZapConfig     config.ZapConfig     `mapstructure:"zapConfig" json:"zapConfig" yaml:"zapConfig"`
	GormLogConfig config.GormLogConfig `mapstructure:"gormLogConfig" json:"gormLogConfig" yaml:"gormLogConfig"`
	ServerConfig  config.ServerConfig  `mapstructure:"serverConfig" json:"serverConfig" yaml:"serverConfig"`
	TracerConfig  config.TracerConfig  `mapstructure:"tracerConfig" json:"tracerConfig" yaml:"tracerConfig"`
	MySQLConfig   MySQLConfig          `mapstructure:"mysqlConfig" json:"mysqlConfig" yaml:"mysqlConfig"`
	RedisConfig   RedisConfig          `mapstructure:"redisConfig" json:"redisConfig" yaml:"redisConfig"`
	KafkaConfig   KafkaConfig          `mapstructure:"kafkaConfig" json:"kafkaConfig" yaml:"kafkaConfig"`
	StorageConfig StorageConfig        `mapstructure:"storageConfig" json:"storageConfig" yaml:"storageConfig"`
	SweepConfig   SweepConfig          `mapstructure:"sweepConfig" json:"sweepConfig" yaml:"sweepConfig"`
}
