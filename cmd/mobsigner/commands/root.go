package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tyler-smith/go-bip39"
	"go.uber.org/zap"

	"mobsigner/internal/engine"
	"mobsigner/internal/keys"
	"mobsigner/internal/seedstore"
)

var (
	home       string
	passphrase string
	verbose    bool

	logger *zap.Logger
	store  *seedstore.Store
)

func Execute() error {
	root := &cobra.Command{
		Use:   "mobsigner",
		Short: "MobileCoin hardware-wallet engine simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".mobsigner")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			var err error
			if verbose {
				logger, err = zap.NewDevelopment()
			} else {
				logger = zap.NewNop()
			}
			if err != nil {
				return err
			}

			store = seedstore.New(home)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.mobsigner)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the mnemonic")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(initCmd(), infoCmd(), walletKeysCmd(), subaddressKeysCmd(), keyImageCmd(), randomCmd(), identSignCmd())
	return root.Execute()
}

// buildEngine loads the mnemonic and wires a fresh engine over it.
func buildEngine() (*engine.Engine, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase required (-p)")
	}
	mnemonic, err := store.Load(passphrase)
	if err != nil {
		return nil, err
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, err
	}
	provider := keys.NewProvider(seed)
	return engine.New(provider, engine.WithLogger(logger)), nil
}
