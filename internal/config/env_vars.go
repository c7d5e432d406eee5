package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	appNameVar    = "APP_NAME"
	baseURLVar    = "AUTH_BASE_URL"
	tokenFileVar  = "AUTH_TOKEN_FILE"
	uiPortVar     = "UI_PORT"
	timeoutVar    = "HTTP_TIMEOUT_SECONDS"
	expirySkewVar = "TOKEN_EXPIRY_SKEW_SECONDS"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Auth Client")
}

// GetBaseURL returns the base URL of the token backend all requests go to.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://127.0.0.1:8000")
}

// GetTokenFile returns the path of the durable token record. It defaults to
// a namespaced file under the user config directory, falling back to a local
// data folder when no config directory is available.
func (EnvVars) GetTokenFile() string {
	if path := GetEnv(tokenFileVar, ""); path != "" {
		return path
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("./data", "authtokens.json")
	}
	return filepath.Join(configDir, "go-auth-client", "authtokens.json")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	return durationEnv(timeoutVar, 30*time.Second)
}

// GetExpirySkew returns the tolerance window: an access token expiring
// within this window is treated as already expired.
func (EnvVars) GetExpirySkew() time.Duration {
	return durationEnv(expirySkewVar, 10*time.Second)
}

func (EnvVars) GetUIPort() string {
	port := GetEnv(uiPortVar, "3000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
