package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// NewPredictCmd creates the predict command
func NewPredictCmd() *cobra.Command {
	var (
		sender string
		nonce  uint64
		count  uint64
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print the CREATE addresses of a sender for a range of nonces",
		Long: `Print the address a contract created by sender at each nonce will have.
Runs offline.

Examples:
  catapult predict --sender 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266
  catapult predict --sender 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266 --nonce 4 --count 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(sender) {
				return fmt.Errorf("%w: %q", domain.ErrInvalidAddress, sender)
			}
			addrs := domain.PredictCreateAddresses(common.HexToAddress(sender), nonce, count)
			for i, addr := range addrs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", nonce+uint64(i), addr.Hex())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Deploying account")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "First nonce")
	cmd.Flags().Uint64Var(&count, "count", 1, "Number of addresses")
	_ = cmd.MarkFlagRequired("sender")

	return cmd
}
