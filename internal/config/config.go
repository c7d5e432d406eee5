package config

import "time"

type Config interface {
	EnvConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetTokenFile() string
	GetHTTPTimeout() time.Duration
	GetExpirySkew() time.Duration
	GetUIPort() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
