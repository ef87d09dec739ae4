package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	defaultFetchTimeout = 30
	defaultMaxItems     = 20
)

// ConfigCache loads per-source YAML definitions from the feeds directory and
// keeps them behind a read-write mutex. Source lists are fixed for the
// lifetime of the process; there is no dynamic reconfiguration within a run.
type ConfigCache struct {
	feedsDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(feedsDir string) *ConfigCache {
	return &ConfigCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.feedsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.feedsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	yamlFiles, err := filepath.Glob(filepath.Join(cc.feedsDir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("failed to find YAML files: %w", err)
	}
	files = append(files, yamlFiles...)

	for _, file := range files {
		feedName := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

		config, err := cc.loadConfig(feedName, file)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "feed", feedName, "enabled", config.Settings.Enabled, "url", config.URL)
	}

	return nil
}

func (cc *ConfigCache) loadConfig(feedName, configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var feedConfig Config
	if err := yaml.Unmarshal(data, &feedConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	feedConfig.Name = feedName

	if err := cc.validateConfig(&feedConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[feedConfig.Name] = &feedConfig

	return &feedConfig, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	if config.Settings.Timeout <= 0 {
		config.Settings.Timeout = defaultFetchTimeout
	}

	if config.Settings.MaxItems <= 0 {
		config.Settings.MaxItems = defaultMaxItems
	}

	return nil
}

func (cc *ConfigCache) GetConfig(feedName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[feedName]
	if !ok {
		return nil, fmt.Errorf("no configuration for feed %q", feedName)
	}

	return config, nil
}

// GetConfigs returns all loaded configurations sorted by feed name so runs
// visit sources in a deterministic order.
func (cc *ConfigCache) GetConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*Config, 0, len(cc.cache))
	for _, config := range cc.cache {
		configs = append(configs, config)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})

	return configs
}

func (cc *ConfigCache) GetEnabledConfigs() []*Config {
	configs := cc.GetConfigs()

	enabled := make([]*Config, 0, len(configs))
	for _, config := range configs {
		if config.Settings.Enabled {
			enabled = append(enabled, config)
		}
	}

	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	return len(cc.cache)
}
