package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"

	"onchainrps/internal/app"
)

func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application for a CometBFT node",
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

			a, err := app.New(app.Options{
				Home:         cfg.Home,
				Logger:       logger,
				BlockedAddrs: cfg.BlockedAddrs,
			})
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer func() { _ = a.Close() }()

			srv, err := server.NewServer(cfg.ABCI.Addr, cfg.ABCI.Transport, a)
			if err != nil {
				return fmt.Errorf("start abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()
			logger.Info("abci server listening", "addr", cfg.ABCI.Addr, "transport", cfg.ABCI.Transport, "home", cfg.Home)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logger.Info("shutting down", "signal", sig.String())
			return nil
		},
	}
	cmd.Flags().String("abci-addr", "", "ABCI listen address (default from config)")
	cmd.Flags().String("transport", "", "ABCI transport (socket|grpc)")
	cmd.Flags().StringSlice("blocked-addrs", nil, "addresses that may never receive escrow payouts")
	return cmd
}
