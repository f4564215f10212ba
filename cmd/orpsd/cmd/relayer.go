package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"onchainrps/internal/relayer"
	"onchainrps/internal/sealed"
)

func RelayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relayer",
		Short: "Answer decryption requests and sweep stalled games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closer, err := newLogger(cmd, cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()

			oracle, err := sealed.LoadOracleKeyFile(cfg.Relayer.OracleKeyFile)
			if err != nil {
				return fmt.Errorf("oracle key: %w", err)
			}
			client, err := relayer.Dial(cfg.Relayer.RPC)
			if err != nil {
				return fmt.Errorf("dial %s: %w", cfg.Relayer.RPC, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := relayer.New(client, oracle, relayer.Config{
				PollInterval: cfg.Relayer.PollInterval,
				Sweep:        cfg.Relayer.Sweep,
				AtomicSweep:  cfg.Relayer.AtomicSweep,
			}, logger)
			logger.Info("relayer started", "rpc", cfg.Relayer.RPC, "interval", cfg.Relayer.PollInterval.String(), "sweep", cfg.Relayer.Sweep)
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("rpc", "", "CometBFT RPC endpoint (default from config)")
	cmd.Flags().String("oracle-key", "", "oracle secret key file (default from config)")
	cmd.Flags().Duration("poll-interval", 0, "poll interval")
	cmd.Flags().Bool("sweep", true, "submit batch expiry for stalled games")
	cmd.Flags().Bool("atomic-sweep", false, "submit sweeps in all-or-nothing mode")
	return cmd
}
