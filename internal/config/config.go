// Package config loads orpsd settings from <home>/config/orpsd.toml,
// ORPSD_* environment variables and bound flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"onchainrps/internal/logging"
)

const (
	EnvPrefix = "ORPSD"
	FileName  = "orpsd.toml"
)

type ABCI struct {
	Addr      string `mapstructure:"addr"`
	Transport string `mapstructure:"transport"`
}

type Relayer struct {
	RPC           string        `mapstructure:"rpc"`
	OracleKeyFile string        `mapstructure:"oracle_key_file"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	Sweep         bool          `mapstructure:"sweep"`
	AtomicSweep   bool          `mapstructure:"atomic_sweep"`
}

type Config struct {
	Home string `mapstructure:"-"`

	ABCI    ABCI           `mapstructure:"abci"`
	Log     logging.Config `mapstructure:"log"`
	Relayer Relayer        `mapstructure:"relayer"`

	// BlockedAddrs may never receive escrow payouts.
	BlockedAddrs []string `mapstructure:"blocked_addrs"`
}

func Default(home string) Config {
	return Config{
		Home: home,
		ABCI: ABCI{
			Addr:      "tcp://127.0.0.1:26658",
			Transport: "socket",
		},
		Log: logging.DefaultConfig(),
		Relayer: Relayer{
			RPC:           "tcp://127.0.0.1:26657",
			OracleKeyFile: filepath.Join(home, "config", "oracle_key.hex"),
			PollInterval:  2 * time.Second,
			Sweep:         true,
		},
	}
}

// Path is the config file location under home.
func Path(home string) string {
	return filepath.Join(home, "config", FileName)
}

func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("home directory is required")
	}
	switch c.ABCI.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("abci.transport must be socket or grpc, got %q", c.ABCI.Transport)
	}
	if c.ABCI.Addr == "" {
		return errors.New("abci.addr is required")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Relayer.PollInterval <= 0 {
		return fmt.Errorf("relayer.poll_interval must be positive, got %s", c.Relayer.PollInterval)
	}
	for _, a := range c.BlockedAddrs {
		if strings.TrimSpace(a) == "" {
			return errors.New("blocked_addrs contains an empty address")
		}
	}
	return nil
}

// NewViper returns a viper instance with defaults and env binding set up.
// Scalar keys get a default so AutomaticEnv can reach them on Unmarshal.
func NewViper(home string) *viper.Viper {
	d := Default(home)
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("abci.addr", d.ABCI.Addr)
	v.SetDefault("abci.transport", d.ABCI.Transport)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("relayer.rpc", d.Relayer.RPC)
	v.SetDefault("relayer.oracle_key_file", d.Relayer.OracleKeyFile)
	v.SetDefault("relayer.poll_interval", d.Relayer.PollInterval)
	v.SetDefault("relayer.sweep", d.Relayer.Sweep)
	v.SetDefault("relayer.atomic_sweep", d.Relayer.AtomicSweep)
	return v
}

// Load reads the config file if present and unmarshals the merged view.
func Load(v *viper.Viper, home string) (Config, error) {
	v.SetConfigFile(Path(home))
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read %s: %w", Path(home), err)
			}
		}
	}
	cfg := Default(home)
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Home = home
	return cfg, cfg.Validate()
}

// WriteDefault writes the defaults to <home>/config/orpsd.toml unless the
// file already exists.
func WriteDefault(home string) (string, error) {
	path := Path(home)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	v := NewViper(home)
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
