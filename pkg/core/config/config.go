package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// EnvConfig names a config file that takes precedence over discovery
const EnvConfig = "KONTRAKT_CONFIG"

// DefaultFileNames are tried in order by Discover
var DefaultFileNames = []string{"kontrakt.toml", "kontrakt.yaml", "kontrakt.yml"}

// Config holds the complete project configuration
type Config struct {
	Project  ProjectConfig            `toml:"project" yaml:"project"`
	Console  ConsoleConfig            `toml:"console" yaml:"console"`
	Logging  LoggingConfig            `toml:"logging" yaml:"logging"`
	Networks map[string]NetworkConfig `toml:"networks" yaml:"networks"`

	// Path is the file the configuration was loaded from, empty for defaults
	Path string `toml:"-" yaml:"-"`
}

// ProjectConfig holds the project directory layout
type ProjectConfig struct {
	WorkingDirectory        string `toml:"working_directory" yaml:"working_directory"`
	ContractsDirectory      string `toml:"contracts_directory" yaml:"contracts_directory"`
	ContractsBuildDirectory string `toml:"contracts_build_directory" yaml:"contracts_build_directory"`
	MigrationsDirectory     string `toml:"migrations_directory" yaml:"migrations_directory"`
}

// ConsoleConfig holds console settings
type ConsoleConfig struct {
	ProgramName    string   `toml:"program_name" yaml:"program_name"`
	DefaultNetwork string   `toml:"default_network" yaml:"default_network"`
	NoAliases      bool     `toml:"no_aliases" yaml:"no_aliases"`
	DialTimeout    Duration `toml:"dial_timeout" yaml:"dial_timeout"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// NetworkConfig describes how to reach one network
type NetworkConfig struct {
	Host       string    `toml:"host" yaml:"host" json:"host,omitempty"`
	Port       int       `toml:"port" yaml:"port" json:"port,omitempty"`
	URL        string    `toml:"url" yaml:"url" json:"url,omitempty"`
	NetworkID  NetworkID `toml:"network_id" yaml:"network_id" json:"network_id,omitempty"`
	Websockets bool      `toml:"websockets" yaml:"websockets" json:"websockets,omitempty"`
	From       string    `toml:"from" yaml:"from" json:"from,omitempty"`
	Gas        uint64    `toml:"gas" yaml:"gas" json:"gas,omitempty"`
	GasPrice   string    `toml:"gas_price" yaml:"gas_price" json:"gas_price,omitempty"`
}

// AnyNetworkID matches whatever id the provider reports
const AnyNetworkID NetworkID = "*"

// NetworkID is a network identifier. Numeric and string values are both accepted.
type NetworkID string

// UnmarshalText accepts any scalar so both `network_id = 5777` and `network_id = "*"` work
func (n *NetworkID) UnmarshalText(text []byte) error {
	*n = NetworkID(strings.TrimSpace(string(text)))
	return nil
}

// IsAny reports whether the id is empty or the wildcard
func (n NetworkID) IsAny() bool {
	return n == "" || n == AnyNetworkID
}

// Endpoint returns the RPC endpoint for the network. URL wins over host/port.
func (n NetworkConfig) Endpoint() string {
	if n.URL != "" {
		return n.URL
	}
	host := n.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := n.Port
	if port == 0 {
		port = 8545
	}
	scheme := "http"
	if n.Websockets {
		scheme = "ws"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns a configuration with a single development network
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kerror.Newf(kerror.CodeConfiguration, "config file not found: %s", path)
		}
		return nil, kerror.Wrapf(err, kerror.CodeConfiguration, "failed to read config %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		_, err = toml.Decode(string(data), &cfg)
	}
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeConfiguration, "failed to parse config %s", path)
	}

	cfg.Path = path
	if cfg.Project.WorkingDirectory == "" {
		cfg.Project.WorkingDirectory = filepath.Dir(path)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()
	cfg.resolvePaths()

	return &cfg, nil
}

// Discover loads the file named by EnvConfig, or the first DefaultFileNames entry
// found in dir. Without any file the defaults rooted at dir are returned.
func Discover(dir string) (*Config, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return Load(path)
	}

	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := Default()
	cfg.Project.WorkingDirectory = dir
	cfg.resolvePaths()
	return cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Project.WorkingDirectory == "" {
		c.Project.WorkingDirectory = "."
	}
	if c.Project.ContractsDirectory == "" {
		c.Project.ContractsDirectory = "contracts"
	}
	if c.Project.ContractsBuildDirectory == "" {
		c.Project.ContractsBuildDirectory = filepath.Join("build", "contracts")
	}
	if c.Project.MigrationsDirectory == "" {
		c.Project.MigrationsDirectory = "migrations"
	}

	if c.Console.ProgramName == "" {
		c.Console.ProgramName = "kontrakt"
	}
	if c.Console.DefaultNetwork == "" {
		c.Console.DefaultNetwork = "development"
	}
	if c.Console.DialTimeout.Duration == 0 {
		c.Console.DialTimeout.Duration = 10 * time.Second
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Networks == nil {
		c.Networks = make(map[string]NetworkConfig)
	}
	if _, ok := c.Networks[c.Console.DefaultNetwork]; !ok && c.Console.DefaultNetwork == "development" {
		c.Networks["development"] = NetworkConfig{
			Host:      "127.0.0.1",
			Port:      8545,
			NetworkID: AnyNetworkID,
		}
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.Project.WorkingDirectory = os.ExpandEnv(c.Project.WorkingDirectory)
	c.Project.ContractsDirectory = os.ExpandEnv(c.Project.ContractsDirectory)
	c.Project.ContractsBuildDirectory = os.ExpandEnv(c.Project.ContractsBuildDirectory)
	c.Project.MigrationsDirectory = os.ExpandEnv(c.Project.MigrationsDirectory)

	for name, n := range c.Networks {
		n.URL = os.ExpandEnv(n.URL)
		n.From = os.ExpandEnv(n.From)
		c.Networks[name] = n
	}
}

// resolvePaths makes the project directories absolute relative to the working directory
func (c *Config) resolvePaths() {
	if abs, err := filepath.Abs(c.Project.WorkingDirectory); err == nil {
		c.Project.WorkingDirectory = abs
	}
	base := c.Project.WorkingDirectory
	for _, dir := range []*string{
		&c.Project.ContractsDirectory,
		&c.Project.ContractsBuildDirectory,
		&c.Project.MigrationsDirectory,
	} {
		if !filepath.IsAbs(*dir) {
			*dir = filepath.Join(base, *dir)
		}
	}
}

// Network returns the configuration of the named network
func (c *Config) Network(name string) (NetworkConfig, error) {
	n, ok := c.Networks[name]
	if !ok {
		return NetworkConfig{}, kerror.Newf(kerror.CodeConfiguration,
			"unknown network %q (configured: %s)", name, strings.Join(c.NetworkNames(), ", "))
	}
	return n, nil
}

// NetworkNames returns the configured network names in sorted order
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the configuration for values the console cannot start without
func (c *Config) Validate() error {
	var problems []string

	if c.Console.ProgramName == "" {
		problems = append(problems, "console.program_name is empty")
	} else if strings.ContainsAny(c.Console.ProgramName, " \t") {
		problems = append(problems, "console.program_name must be a single word")
	}
	if len(c.Networks) == 0 {
		problems = append(problems, "no networks configured")
	}
	for _, name := range c.NetworkNames() {
		n := c.Networks[name]
		if n.URL == "" && n.Host == "" && n.Port == 0 {
			problems = append(problems, fmt.Sprintf("network %q has neither url nor host/port", name))
		}
	}

	if len(problems) > 0 {
		return kerror.Newf(kerror.CodeConfiguration, "invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
