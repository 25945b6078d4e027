package config

import (
	"fmt"
	"strings"
)

const (
	EnvBackupDir        = "BACKUP_DIR"
	EnvDetailedReport   = "DETAILED_REPORT"
	EnvHealthchecksID   = "HEALTHCHECKS_ID"
	EnvHealthchecksHost = "HEALTHCHECKS_HOST"
	EnvDockerHost       = "DOCKER_HOST"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"

	// EnvPrefix is the prefix for tool specific environment variables
	EnvPrefix = "DB_BACKUP_"
	// EnvMatch holds extra pattern=type rules, comma separated
	EnvMatch = EnvPrefix + "MATCH"
	// EnvNotifyPrefix is the prefix for notification provider environment variables
	EnvNotifyPrefix = EnvPrefix + "NOTIFY_"

	// HealthchecksNotifier is the notifier name reserved for the HEALTHCHECKS_* settings
	HealthchecksNotifier = "healthchecks"
)

// Defaults
const (
	DefaultBackupDir        = "/var/backups"
	DefaultHealthchecksHost = "hc-ping.com"
	DefaultDockerHost       = "unix:///var/run/docker.sock"
)

// Config holds the global application configuration. It is built once at
// startup and passed to the components that need it.
type Config struct {
	// Docker settings
	DockerHost string

	// Backup settings
	BackupDir      string
	DetailedReport bool
	MatchArgs      []string

	// Monitoring settings
	HealthchecksID   string
	HealthchecksHost string

	// Notification settings
	NotifyArgs    []string
	NotifyConfigs map[string]*NotifyConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// NotifyConfig represents a named notification provider configuration
type NotifyConfig struct {
	Name    string
	Type    string
	Options map[string]string
}

// MatchRule maps an image name pattern to a backup type name
type MatchRule struct {
	Pattern string
	Type    string
}

// DefaultMatchRules are always registered, in this order, before any
// configured rules.
var DefaultMatchRules = []MatchRule{
	{Pattern: "postgres", Type: "postgres"},
	{Pattern: "mysql", Type: "mysql"},
	{Pattern: "mariadb", Type: "mysql"},
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		DockerHost:       DefaultDockerHost,
		BackupDir:        DefaultBackupDir,
		HealthchecksHost: DefaultHealthchecksHost,
		LogLevel:         "info",
		LogFormat:        "text",
		NotifyConfigs:    make(map[string]*NotifyConfig),
	}
}

// FromEnv creates a Config from defaults overlaid with the given environment
// (in os.Environ form).
func FromEnv(environ []string) *Config {
	c := New()
	c.LoadEnv(environ)
	return c
}

// LoadEnv applies environment variables to the config
func (c *Config) LoadEnv(environ []string) {
	env := make(map[string]string, len(environ))
	for _, e := range environ {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}

	if v := env[EnvBackupDir]; v != "" {
		c.BackupDir = v
	}
	if v, ok := env[EnvDetailedReport]; ok {
		c.DetailedReport = ParseBool(v)
	}
	if v := env[EnvHealthchecksID]; v != "" {
		c.HealthchecksID = v
	}
	if v := env[EnvHealthchecksHost]; v != "" {
		c.HealthchecksHost = v
	}
	if v := env[EnvDockerHost]; v != "" {
		c.DockerHost = v
	}
	if v := env[EnvLogLevel]; v != "" {
		c.LogLevel = v
	}
	if v := env[EnvLogFormat]; v != "" {
		c.LogFormat = v
	}
	if v := env[EnvMatch]; v != "" {
		for _, rule := range strings.Split(v, ",") {
			if rule = strings.TrimSpace(rule); rule != "" {
				c.MatchArgs = append(c.MatchArgs, rule)
			}
		}
	}

	c.parseNotifyEnvVars(environ)
}

// ParseBool accepts "true" in any case, ignoring surrounding whitespace.
// Everything else is false.
func ParseBool(v string) bool {
	return strings.ToLower(strings.TrimSpace(v)) == "true"
}

// MatchRules returns the default rules followed by the configured ones
func (c *Config) MatchRules() ([]MatchRule, error) {
	rules := make([]MatchRule, 0, len(DefaultMatchRules)+len(c.MatchArgs))
	rules = append(rules, DefaultMatchRules...)

	for _, arg := range c.MatchArgs {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid match rule format: %s (expected pattern=type)", arg)
		}
		rules = append(rules, MatchRule{Pattern: parts[0], Type: parts[1]})
	}

	return rules, nil
}

// ParseNotifyConfigs applies --notify arguments on top of the environment
// and adds the healthchecks notifier when a check id is configured.
func (c *Config) ParseNotifyConfigs() error {
	// CLI arguments override env vars
	for _, arg := range c.NotifyArgs {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid notify argument format: %s (expected provider.option=value)", arg)
		}

		key := parts[0]
		value := parts[1]

		// Split key into provider name and option
		keyParts := strings.SplitN(key, ".", 2)
		if len(keyParts) != 2 {
			return fmt.Errorf("invalid notify key format: %s (expected provider.option)", key)
		}

		c.setNotifyConfigOption(keyParts[0], keyParts[1], value)
	}

	if c.HealthchecksID != "" {
		if existing, ok := c.NotifyConfigs[HealthchecksNotifier]; ok && existing.Type != HealthchecksNotifier {
			return fmt.Errorf("notification provider name %q is reserved for %s", HealthchecksNotifier, EnvHealthchecksID)
		}
		c.setNotifyConfigOption(HealthchecksNotifier, "type", HealthchecksNotifier)
		c.setNotifyConfigOption(HealthchecksNotifier, "id", c.HealthchecksID)
		c.setNotifyConfigOption(HealthchecksNotifier, "host", c.HealthchecksHost)
	}

	// Validate all configs have a type
	for name, cfg := range c.NotifyConfigs {
		if cfg.Type == "" {
			return fmt.Errorf("notification provider %q is missing required 'type' option", name)
		}
	}

	return nil
}

func (c *Config) parseNotifyEnvVars(environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, EnvNotifyPrefix) {
			continue
		}

		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := parts[0]
		value := parts[1]

		// Remove prefix: DB_BACKUP_NOTIFY_DISCORD_WEBHOOK_URL -> DISCORD_WEBHOOK_URL
		remainder := strings.TrimPrefix(key, EnvNotifyPrefix)

		// Split into provider name and option: DISCORD_WEBHOOK_URL -> DISCORD, WEBHOOK_URL
		underscoreIdx := strings.Index(remainder, "_")
		if underscoreIdx == -1 {
			continue // Invalid format
		}

		providerName := strings.ToLower(remainder[:underscoreIdx])
		option := strings.ToLower(remainder[underscoreIdx+1:])

		// Convert underscores to hyphens in option name (WEBHOOK_URL -> webhook-url)
		option = strings.ReplaceAll(option, "_", "-")

		c.setNotifyConfigOption(providerName, option, value)
	}
}

func (c *Config) setNotifyConfigOption(providerName, option, value string) {
	cfg, exists := c.NotifyConfigs[providerName]
	if !exists {
		cfg = &NotifyConfig{
			Name:    providerName,
			Options: make(map[string]string),
		}
		c.NotifyConfigs[providerName] = cfg
	}

	// Handle type specially
	if option == "type" {
		cfg.Type = value
	} else {
		cfg.Options[option] = value
	}
}
