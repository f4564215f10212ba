package cmd

import (
	"io"
	"os"
	"path/filepath"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"onchainrps/internal/config"
	"onchainrps/internal/logging"
)

const (
	BinaryName = "orpsd"
	flagHome   = "home"
)

// flagKeys maps command flags onto config keys so flags win over file and env.
var flagKeys = map[string]string{
	"abci-addr":     "abci.addr",
	"transport":     "abci.transport",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"rpc":           "relayer.rpc",
	"oracle-key":    "relayer.oracle_key_file",
	"poll-interval": "relayer.poll_interval",
	"sweep":         "relayer.sweep",
	"atomic-sweep":  "relayer.atomic_sweep",
	"blocked-addrs": "blocked_addrs",
}

func DefaultHome() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, "."+BinaryName)
	}
	return "." + BinaryName
}

// NewRootCmd creates the orpsd command tree. It is called once in main.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           BinaryName,
		Short:         "Confidential rock-paper-scissors wager chain",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().String(flagHome, DefaultHome(), "node home directory")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (plain|json)")

	rootCmd.AddCommand(
		InitCmd(),
		StartCmd(),
		RelayerCmd(),
		KeysCmd(),
		MoveCmd(),
		AmountCmd(),
	)
	return rootCmd
}

func homeDir(cmd *cobra.Command) string {
	home, _ := cmd.Flags().GetString(flagHome)
	return home
}

// loadConfig merges file, env and the flags the user actually set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	home := homeDir(cmd)
	v := config.NewViper(home)
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(v, home)
}

func newLogger(cmd *cobra.Command, cfg logging.Config) (log.Logger, io.Closer, error) {
	return logging.New(cfg, cmd.ErrOrStderr())
}
