package config

import (
	"os"
	"strconv"
)

// Option holds process settings that live outside the config file.
type Option struct {
	LogLevel   string
	ConfigPath string
	Port       int
}

func NewOptions() *Option {
	return &Option{
		LogLevel:   LogLevelDebug,
		ConfigPath: DefaultConfigPath,
		Port:       DefaultPort,
	}
}

// LoadEnv overrides options from LOG_LEVEL, CONFIG_PATH and PORT. A PORT that
// is not a number is ignored.
func (o *Option) LoadEnv() *Option {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		o.LogLevel = logLevel
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		o.ConfigPath = configPath
	}

	if serverPort := os.Getenv("PORT"); serverPort != "" {
		if port, err := strconv.Atoi(serverPort); err == nil {
			o.Port = port
		}
	}

	return o
}
