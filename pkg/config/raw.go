package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
)

// UpdateConfigRaw locates the config file like LoadConfig does and rewrites
// it through modifier.
func UpdateConfigRaw(path string, modifier func(*Config) error) (string, error) {
	_ = godotenv.Load()
	configPath := locate(ResolveConfigDir(), path)
	return configPath, UpdateConfigFile(configPath, modifier)
}

// UpdateConfigFile reads configPath without expanding environment variables,
// applies modifier and writes the result back in the same format. Placeholders
// like "${TGBOT_TOKEN}" survive the round trip.
func UpdateConfigFile(configPath string, modifier func(*Config) error) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundf("config file %s", configPath)
		}
		return errors.Annotatef(err, "reading config %s", configPath)
	}

	var cfg Config
	if err := unmarshal(configPath, data, &cfg); err != nil {
		return errors.Annotatef(err, "parsing config %s", configPath)
	}
	if err := modifier(&cfg); err != nil {
		return errors.Trace(err)
	}

	if err := AcquireConfigLock(configPath); err != nil {
		logger.Warningf("config watcher will reload this write: %v", err)
	}
	return errors.Trace(SaveConfig(&cfg, configPath))
}
