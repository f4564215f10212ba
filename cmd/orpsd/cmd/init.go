package cmd

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"onchainrps/internal/amount"
	"onchainrps/internal/app"
	"onchainrps/internal/config"
	"onchainrps/internal/sealed"
)

const AppStateFile = "app_state.json"

func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config, oracle key and genesis app_state under home",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home := homeDir(cmd)
			owner, _ := cmd.Flags().GetString("owner")
			contract, _ := cmd.Flags().GetString("contract")
			faucet, _ := cmd.Flags().GetBool("faucet")
			balances, _ := cmd.Flags().GetStringArray("balance")
			genesisPath, _ := cmd.Flags().GetString("genesis")

			cfgPath, err := config.WriteDefault(home)
			if err != nil {
				return err
			}
			cfg, err := config.Load(config.NewViper(home), home)
			if err != nil {
				return err
			}
			oracle, err := loadOrCreateOracle(cfg.Relayer.OracleKeyFile)
			if err != nil {
				return err
			}

			g := app.DefaultGenesis(owner, oracle.PublicKey())
			g.Contract = contract
			g.Faucet = faucet
			if g.Balances, err = parseBalances(balances); err != nil {
				return err
			}
			if err := g.Validate(); err != nil {
				return err
			}
			raw, err := json.MarshalIndent(g, "", "  ")
			if err != nil {
				return err
			}
			statePath := filepath.Join(home, "config", AppStateFile)
			if err := os.WriteFile(statePath, append(raw, '\n'), 0o644); err != nil {
				return err
			}
			if genesisPath != "" {
				if err := patchGenesis(genesisPath, raw); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:     %s\n", cfgPath)
			fmt.Fprintf(out, "oracle key: %s\n", cfg.Relayer.OracleKeyFile)
			fmt.Fprintf(out, "app_state:  %s\n", statePath)
			return nil
		},
	}
	cmd.Flags().String("owner", "", "engine owner address")
	cmd.Flags().String("contract", app.DefaultContract, "engine address move proofs are bound to")
	cmd.Flags().Bool("faucet", false, "enable the bank/mint faucet (devnets only)")
	cmd.Flags().StringArray("balance", nil, "initial balance as addr=amount, e.g. alice=12.5 (repeatable)")
	cmd.Flags().String("genesis", "", "CometBFT genesis.json whose app_state should be replaced")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func loadOrCreateOracle(path string) (*sealed.Oracle, error) {
	o, err := sealed.LoadOracleKeyFile(path)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if o, err = sealed.GenerateOracleKey(rand.Reader); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return o, sealed.WriteOracleKeyFile(path, o)
}

func parseBalances(specs []string) (map[string]uint64, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]uint64, len(specs))
	for _, s := range specs {
		addr, amt, ok := strings.Cut(s, "=")
		addr = strings.TrimSpace(addr)
		if !ok || addr == "" {
			return nil, fmt.Errorf("balance %q: want addr=amount", s)
		}
		units, err := amount.Parse(amt)
		if err != nil {
			return nil, fmt.Errorf("balance %q: %w", s, err)
		}
		if _, dup := out[addr]; dup {
			return nil, fmt.Errorf("balance for %q given twice", addr)
		}
		out[addr] = units
	}
	return out, nil
}

// patchGenesis replaces app_state in a CometBFT genesis file, keeping every
// other field as-is.
func patchGenesis(path string, appState json.RawMessage) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	doc["app_state"] = appState
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}
