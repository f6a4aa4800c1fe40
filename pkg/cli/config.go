package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".spotkit"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config is the on-disk CLI configuration: a set of named profiles plus the
// currently selected one.
type Config struct {
	// CurrentProfile is the name of the currently active profile
	CurrentProfile string `yaml:"current_profile,omitempty"`

	// Profiles maps profile name to profile configuration
	Profiles map[string]*Profile `yaml:"profiles,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Profile bundles one keyword-spotting model with its labels and detection
// parameters. Zero-valued detection fields fall back to the pipeline
// defaults.
type Profile struct {
	// Name is the profile name
	Name string `yaml:"name"`

	// Model is the .tflite model path. Relative paths resolve against the
	// models directory (~/.spotkit/models).
	Model string `yaml:"model"`

	// Labels holds one name per model output category, in tensor order.
	// The first label is the silence/background category.
	Labels []string `yaml:"labels"`

	// DetectionThreshold is the minimum windowed average score (0-255)
	// for a trigger.
	DetectionThreshold uint8 `yaml:"detection_threshold,omitempty"`

	// AverageWindowMs is the trailing score-averaging window.
	AverageWindowMs int `yaml:"average_window_ms,omitempty"`

	// SuppressionMs is the re-trigger holdoff for a repeated label.
	SuppressionMs int `yaml:"suppression_ms,omitempty"`

	// MinimumCount is the minimum number of results before a decision.
	MinimumCount int `yaml:"minimum_count,omitempty"`

	// Threads is the inference thread count (0 = library default).
	Threads int `yaml:"threads,omitempty"`
}

// Validate reports the first problem with the profile.
func (p *Profile) Validate() error {
	if p.Model == "" {
		return fmt.Errorf("profile %q has no model path", p.Name)
	}
	if len(p.Labels) == 0 {
		return fmt.Errorf("profile %q has no labels", p.Name)
	}
	return nil
}

// LoadConfig loads or creates the configuration at the default path.
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath("")
}

// LoadConfigWithPath loads configuration from a custom path.
func LoadConfigWithPath(customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, DefaultConfigFile)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		Profiles:   make(map[string]*Profile),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create empty config file
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*Profile)
	}
	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path.
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddProfile adds or replaces a profile.
func (c *Config) AddProfile(name string, p *Profile) error {
	p.Name = name
	if err := p.Validate(); err != nil {
		return err
	}
	c.Profiles[name] = p
	return c.Save()
}

// DeleteProfile removes a profile.
func (c *Config) DeleteProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return c.Save()
}

// UseProfile sets the current profile.
func (c *Config) UseProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	c.CurrentProfile = name
	return c.Save()
}

// GetProfile returns a specific profile.
func (c *Config) GetProfile(name string) (*Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// GetCurrentProfile returns the current profile.
func (c *Config) GetCurrentProfile() (*Profile, error) {
	if c.CurrentProfile == "" {
		return nil, fmt.Errorf("no current profile set")
	}
	return c.GetProfile(c.CurrentProfile)
}

// ResolveProfile returns the profile by name, or the current profile if
// name is empty.
func (c *Config) ResolveProfile(name string) (*Profile, error) {
	if name == "" {
		return c.GetCurrentProfile()
	}
	return c.GetProfile(name)
}

// ListProfiles returns all profile names.
func (c *Config) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}
