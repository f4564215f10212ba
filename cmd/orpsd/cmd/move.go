package cmd

import (
	"crypto/rand"
	"encoding/json"

	"github.com/spf13/cobra"

	"onchainrps/internal/app"
	"onchainrps/internal/sealed"
)

// encryptedMove uses the tx field names and encoding, so its move and proof
// can be pasted into a create_game or join_game value as is.
type encryptedMove struct {
	Player string `json:"player"`
	Move   []byte `json:"move"`
	Proof  []byte `json:"proof"`
}

func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Client-side move helpers",
	}
	cmd.AddCommand(moveEncryptCmd())
	return cmd
}

func moveEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt <rock|paper|scissors>",
		Short: "Encrypt a move under the oracle key with its validity proof",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			choice, err := sealed.ParseChoice(args[0])
			if err != nil {
				return err
			}
			pkHex, _ := cmd.Flags().GetString("oracle-pk")
			pk, err := sealed.ParsePublicKeyHex(pkHex)
			if err != nil {
				return err
			}
			player, _ := cmd.Flags().GetString("player")
			contract, _ := cmd.Flags().GetString("contract")

			handle, proof, err := sealed.EncryptMove(rand.Reader, pk, contract, player, choice)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(encryptedMove{
				Player: player,
				Move:   handle,
				Proof:  proof,
			})
		},
	}
	cmd.Flags().String("oracle-pk", "", "oracle public key (hex)")
	cmd.Flags().String("player", "", "address submitting the move")
	cmd.Flags().String("contract", app.DefaultContract, "engine address the proof is bound to")
	_ = cmd.MarkFlagRequired("oracle-pk")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}
