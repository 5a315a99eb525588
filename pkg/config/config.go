package config

import (
	"bytes"
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gopkg.in/yaml.v3"
)

var logger = loggo.GetLogger("tgbot.config")

const (
	// EnvConfigDir overrides the config directory lookup.
	EnvConfigDir = "TGBOT_CONFIG_DIR"

	DefaultBaseURL        = "https://api.telegram.org"
	DefaultTimeoutSeconds = 30
	DefaultServerPort     = 8080
	DefaultPollTimeout    = 30
	DefaultPollLimit      = 100
)

// candidate file names tried, in order, when no explicit path is given.
var defaultFileNames = []string{"config.yaml", "config.yml", "config.toml", "config.json"}

// Config represents the top-level configuration for tgbot.
type Config struct {
	Token          string        `json:"token" yaml:"token" toml:"token"`
	BaseURL        string        `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" toml:"baseUrl,omitempty"`
	TimeoutSeconds int           `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty" toml:"timeoutSeconds,omitempty"`
	Logging        string        `json:"logging,omitempty" yaml:"logging,omitempty" toml:"logging,omitempty"` // loggo spec, e.g. "<root>=INFO;tgbot.botapi=DEBUG"
	AllowedUsers   []string      `json:"allowedUsers,omitempty" yaml:"allowedUsers,omitempty" toml:"allowedUsers,omitempty"`
	Polling        PollingConfig `json:"polling" yaml:"polling" toml:"polling"`
	Webhook        WebhookConfig `json:"webhook,omitempty" yaml:"webhook,omitempty" toml:"webhook,omitempty"`
	Server         ServerConfig  `json:"server" yaml:"server" toml:"server"`
	Jobs           []Job         `json:"jobs,omitempty" yaml:"jobs,omitempty" toml:"jobs,omitempty"`
	Replies        []Reply       `json:"replies,omitempty" yaml:"replies,omitempty" toml:"replies,omitempty"`
	Timezone       string        `json:"timezone,omitempty" yaml:"timezone,omitempty" toml:"timezone,omitempty"` // e.g. "Europe/Berlin"
	Media          MediaConfig   `json:"media,omitempty" yaml:"media,omitempty" toml:"media,omitempty"`
}

type PollingConfig struct {
	Enabled        bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	TimeoutSeconds int  `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty" toml:"timeoutSeconds,omitempty"`
	Limit          int  `json:"limit,omitempty" yaml:"limit,omitempty" toml:"limit,omitempty"`
}

type WebhookConfig struct {
	URL    string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`          // public URL registered with setWebhook
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty" toml:"listen,omitempty"` // unused when the server port is shared
	Path   string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`       // local route, default /webhook
}

type ServerConfig struct {
	Port      int    `json:"port" yaml:"port" toml:"port"`
	AuthToken string `json:"authToken,omitempty" yaml:"authToken,omitempty" toml:"authToken,omitempty"`
}

// Job is a scheduled message.
type Job struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Schedule string   `json:"schedule" yaml:"schedule" toml:"schedule"`
	Text     string   `json:"text" yaml:"text" toml:"text"`
	Targets  []Target `json:"targets,omitempty" yaml:"targets,omitempty" toml:"targets,omitempty"`
}

type Target struct {
	Provider string `json:"provider" yaml:"provider" toml:"provider"` // "telegram"
	ID       string `json:"id" yaml:"id" toml:"id"`                   // chat_id
}

// Reply is a canned answer to a /command.
type Reply struct {
	Command   string     `json:"command" yaml:"command" toml:"command"` // without the leading slash
	Text      string     `json:"text" yaml:"text" toml:"text"`
	ParseMode string     `json:"parseMode,omitempty" yaml:"parseMode,omitempty" toml:"parseMode,omitempty"`
	Keyboard  [][]string `json:"keyboard,omitempty" yaml:"keyboard,omitempty" toml:"keyboard,omitempty"`
	OneTime   bool       `json:"oneTime,omitempty" yaml:"oneTime,omitempty" toml:"oneTime,omitempty"`
	// Inline turns Keyboard into inline buttons whose callback data is the
	// button label; pressing one triggers the reply of that name.
	Inline bool `json:"inline,omitempty" yaml:"inline,omitempty" toml:"inline,omitempty"`
}

type MediaConfig struct {
	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty" toml:"s3,omitempty"`
}

type S3Config struct {
	Region   string `json:"region,omitempty" yaml:"region,omitempty" toml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
}

// Timeout returns the configured HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FindReply returns the reply configured for command, or nil.
func (c *Config) FindReply(command string) *Reply {
	command = strings.TrimPrefix(command, "/")
	for i := range c.Replies {
		if strings.EqualFold(c.Replies[i].Command, command) {
			return &c.Replies[i]
		}
	}
	return nil
}

// FindJob returns the index of the job with the given name, or -1.
func (c *Config) FindJob(name string) int {
	for i, job := range c.Jobs {
		if job.Name == name {
			return i
		}
	}
	return -1
}

// IsUserAllowed reports whether a user may talk to the bot. An empty
// allow list admits everyone. Entries match the numeric id or the username.
func (c *Config) IsUserAllowed(id, username string) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, allowed := range c.AllowedUsers {
		allowed = strings.TrimPrefix(allowed, "@")
		if allowed == id || (username != "" && strings.EqualFold(allowed, username)) {
			return true
		}
	}
	return false
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.NotValidf("empty bot token")
	}
	if c.TimeoutSeconds < 0 {
		return errors.NotValidf("timeoutSeconds %d", c.TimeoutSeconds)
	}
	seen := make(map[string]bool)
	for _, job := range c.Jobs {
		if job.Name == "" {
			return errors.NotValidf("job without name")
		}
		if seen[job.Name] {
			return errors.NotValidf("duplicate job %q", job.Name)
		}
		seen[job.Name] = true
		if job.Schedule == "" {
			return errors.NotValidf("job %q without schedule", job.Name)
		}
	}
	for _, r := range c.Replies {
		if strings.TrimPrefix(r.Command, "/") == "" {
			return errors.NotValidf("reply without command")
		}
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return errors.NotValidf("timezone %q", c.Timezone)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Polling.TimeoutSeconds == 0 {
		c.Polling.TimeoutSeconds = DefaultPollTimeout
	}
	if c.Polling.Limit == 0 {
		c.Polling.Limit = DefaultPollLimit
	}
	if c.Webhook.Path == "" {
		c.Webhook.Path = "/webhook"
	}
	for i := range c.Jobs {
		for j := range c.Jobs[i].Targets {
			if c.Jobs[i].Targets[j].Provider == "" {
				c.Jobs[i].Targets[j].Provider = "telegram"
			}
		}
	}
}

// ResolveConfigDir determines the configuration directory based on precedence:
// 1. TGBOT_CONFIG_DIR environment variable
// 2. ~/.config/tgbot/
// 3. Current working directory
func ResolveConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}

	usr, err := user.Current()
	if err == nil {
		configDir := filepath.Join(usr.HomeDir, ".config", "tgbot")
		if _, err := os.Stat(configDir); err == nil {
			return configDir
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// ResolvePath resolves a path relative to the config directory if it's not absolute.
func ResolvePath(baseDir, pathStr string) string {
	if filepath.IsAbs(pathStr) {
		return pathStr
	}
	return filepath.Join(baseDir, pathStr)
}

// locate turns the user supplied path into the file that should be read.
// An empty path picks the first default file name present in configDir.
func locate(configDir, path string) string {
	if path == "" {
		for _, name := range defaultFileNames {
			candidate := filepath.Join(configDir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		return filepath.Join(configDir, defaultFileNames[0])
	}
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		candidate := filepath.Join(configDir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return "json"
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch format(path) {
	case "yaml":
		return yaml.Unmarshal(data, cfg)
	case "toml":
		return toml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func marshal(path string, cfg *Config) ([]byte, error) {
	switch format(path) {
	case "yaml":
		return yaml.Marshal(cfg)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// Parse decodes config data in the format implied by path's extension,
// expanding ${VAR} references and applying defaults.
func Parse(path string, data []byte) (*Config, error) {
	var cfg Config
	if err := unmarshal(path, []byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.Annotatef(err, "parsing config %s", path)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadConfig reads and parses the configuration file.
// If path is empty, config.yaml, config.yml, config.toml and config.json are
// tried in the resolved config directory. It returns the config, the
// directory relative paths should be resolved against and the file that was
// read.
func LoadConfig(path string) (*Config, string, string, error) {
	// .env may carry TGBOT_CONFIG_DIR and the token.
	_ = godotenv.Load()

	configDir := ResolveConfigDir()
	configPath := locate(configDir, path)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, configDir, configPath, errors.Annotatef(err, "reading config %s", configPath)
	}
	cfg, err := Parse(configPath, data)
	if err != nil {
		return nil, configDir, configPath, errors.Trace(err)
	}

	finalDir := configDir
	if os.Getenv(EnvConfigDir) == "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			finalDir = filepath.Dir(abs)
		}
	}
	logger.Debugf("loaded config from %s", configPath)
	return cfg, finalDir, configPath, nil
}

// SaveConfig writes the configuration back to the file.
func SaveConfig(cfg *Config, path string) error {
	data, err := marshal(path, cfg)
	if err != nil {
		return errors.Annotate(err, "marshalling config")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Annotatef(err, "writing config %s", path)
	}
	return nil
}
