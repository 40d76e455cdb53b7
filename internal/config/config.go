package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env       string `mapstructure:"env"`
	Port      int    `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type MongoConfig struct {
	URI                 string `mapstructure:"uri"`
	Database            string `mapstructure:"database"`
	SessionsCollection  string `mapstructure:"sessions_collection"`
	QuestionsCollection string `mapstructure:"questions_collection"`
	AnswersCollection   string `mapstructure:"answers_collection"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	TopicAnswerEvent string   `mapstructure:"topic_answer_event"`
}

type ArchiveConfig struct {
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"`
	MaxAgeSeconds        int `mapstructure:"max_age_seconds"`
}

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Mongo   MongoConfig   `mapstructure:"mongodb"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Archive ArchiveConfig `mapstructure:"archive"`

	// derived values
	RequestTimeout time.Duration
	SweepInterval  time.Duration
	ArchiveMaxAge  time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	// config file is optional; env + defaults are enough to boot
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	// sensible defaults
	if c.App.Port == 0 {
		c.App.Port = 8086
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "placehub"
	}
	if c.Mongo.SessionsCollection == "" {
		c.Mongo.SessionsCollection = "anon_sessions"
	}
	if c.Mongo.QuestionsCollection == "" {
		c.Mongo.QuestionsCollection = "anon_questions"
	}
	if c.Mongo.AnswersCollection == "" {
		c.Mongo.AnswersCollection = "anon_answers"
	}
	if c.Kafka.TopicAnswerEvent == "" {
		c.Kafka.TopicAnswerEvent = "anonqa.answer.events"
	}
	if c.Archive.SweepIntervalSeconds == 0 {
		c.Archive.SweepIntervalSeconds = 30
	}
	if c.Archive.MaxAgeSeconds == 0 {
		c.Archive.MaxAgeSeconds = 120
	}
	c.RequestTimeout = 10 * time.Second
	c.SweepInterval = time.Duration(c.Archive.SweepIntervalSeconds) * time.Second
	c.ArchiveMaxAge = time.Duration(c.Archive.MaxAgeSeconds) * time.Second
	return &c, nil
}
