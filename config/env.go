package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func getEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	val, err := strconv.ParseBool(strVal)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Invalid boolean in environment, using default")
		return defaultVal
	}
	return val
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	val, err := time.ParseDuration(strVal)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Invalid duration in environment, using default")
		return defaultVal
	}
	return val
}

func getEnvAsLogLevel(key string, defaultVal zerolog.Level) zerolog.Level {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	level, err := zerolog.ParseLevel(strVal)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Invalid log level in environment, using default")
		return defaultVal
	}
	return level
}
