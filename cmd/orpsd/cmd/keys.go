package cmd

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"onchainrps/internal/orpscrypto"
	"onchainrps/internal/sealed"
)

func KeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Key management",
	}
	oracle := &cobra.Command{
		Use:   "oracle",
		Short: "Decryption oracle keys",
	}
	oracle.AddCommand(oracleGenerateCmd(), oracleShowCmd())
	cmd.AddCommand(oracle)
	return cmd
}

func oracleGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Generate an oracle key and write the secret to file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists (use --force to overwrite)", path)
			}
			o, err := sealed.GenerateOracleKey(rand.Reader)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return err
			}
			if err := sealed.WriteOracleKeyFile(path, o); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), orpscrypto.BytesToHex(o.PublicKey()))
			return err
		},
	}
	cmd.Flags().Bool("force", false, "overwrite an existing key file")
	return cmd
}

func oracleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print the public key of an oracle key file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := sealed.LoadOracleKeyFile(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), orpscrypto.BytesToHex(o.PublicKey()))
			return err
		},
	}
}
