package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tyler-smith/go-bip39"
)

func initCmd() *cobra.Command {
	var mnemonic string
	var bits int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate or import a wallet mnemonic and store it encrypted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if store.Exists() {
				return fmt.Errorf("mnemonic already stored in %s", home)
			}

			if mnemonic == "" {
				entropy, err := bip39.NewEntropy(bits)
				if err != nil {
					return err
				}
				if mnemonic, err = bip39.NewMnemonic(entropy); err != nil {
					return err
				}
			} else if _, err := bip39.NewSeedWithErrorChecking(mnemonic, ""); err != nil {
				return fmt.Errorf("invalid mnemonic: %w", err)
			}

			if err := store.Save(passphrase, mnemonic); err != nil {
				return err
			}
			fmt.Println("Wallet initialised.")
			fmt.Printf("Mnemonic: %s\n", mnemonic)
			return nil
		},
	}

	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "import an existing BIP-39 mnemonic")
	cmd.Flags().IntVar(&bits, "bits", 256, "entropy bits for a generated mnemonic (128-256)")
	return cmd
}
