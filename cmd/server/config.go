package main

import "time"

type Config struct {
	LogLevel           string        `env:"LOG_LEVEL,required=true"`
	Host               string        `env:"HOST"`
	Port               int           `env:"PORT,required=true"`
	DebugPort          int           `env:"DEBUG_PORT"`
	SqliteFilepath     string        `env:"SQLITE_FILEPATH,required=true"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,required=true"`
	UploadDirectory    string        `env:"UPLOAD_DIRECTORY,required=true"`
	BufferSize         int           `env:"BUFFER_SIZE,required=true"`
	ClientQueueSize    int           `env:"CLIENT_QUEUE_SIZE,required=true"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,required=true"`
	MetricInterval     time.Duration `env:"METRIC_INTERVAL,required=true"`
	PreviewTimeout     time.Duration `env:"PREVIEW_TIMEOUT,required=true"`
	AuthTokenSecret    string        `env:"AUTH_TOKEN_SECRET,required=true"`
	AuthTokenDuration  time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	ProfileImagePrefix string        `env:"PROFILE_IMAGE_PREFIX,required=true"`
	HistoryLines       int           `env:"HISTORY_LINES,required=true"`
	RedisAddr          *string       `env:"REDIS_ADDR"`
}
