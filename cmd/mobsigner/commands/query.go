package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"mobsigner/internal/apdu"
	"mobsigner/internal/domain"
	"mobsigner/internal/engine"
	"mobsigner/internal/keys"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Report application and session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			body, err := exchange(e, apdu.InsAppInfo, 0, 0, nil)
			if err != nil {
				return err
			}
			fmt.Printf("proto:  v%d\n", body[0])
			name := string(body[2 : 2+body[1]])
			off := 2 + int(body[1])
			version := string(body[off+1 : off+1+int(body[off])])
			off += 1 + int(body[off])
			fmt.Printf("app:    %s %s\n", name, version)
			fmt.Printf("state:  0x%02x\n", body[off])
			fmt.Printf("digest: %s\n", hex.EncodeToString(body[off+1:]))
			return nil
		},
	}
}

func walletKeysCmd() *cobra.Command {
	var account uint32

	cmd := &cobra.Command{
		Use:   "wallet-keys",
		Short: "Derive the root keys for a wallet account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			body := make([]byte, 4)
			putU32(body, account)
			resp, err := exchange(e, apdu.InsWalletKeys, 0, 0, body)
			if err != nil {
				return err
			}
			fmt.Printf("view public:  %s\n", hex.EncodeToString(resp[4:36]))
			fmt.Printf("spend public: %s\n", hex.EncodeToString(resp[36:68]))
			fmt.Printf("view private: %s\n", hex.EncodeToString(resp[68:100]))
			return nil
		},
	}

	cmd.Flags().Uint32Var(&account, "account", 0, "wallet account index")
	return cmd
}

func subaddressKeysCmd() *cobra.Command {
	var account uint32
	var subaddress uint64
	var fog uint8

	var change bool

	cmd := &cobra.Command{
		Use:   "subaddress-keys",
		Short: "Derive the keys for a subaddress",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			if change {
				subaddress = keys.ChangeSubaddressIndex
			}
			body := make([]byte, 12)
			putU32(body, account)
			putU64(body[4:], subaddress)
			resp, err := exchange(e, apdu.InsSubaddressKeys, 0, 0, body)
			if err != nil {
				return err
			}
			viewPublic := domain.MustRistrettoPublic(resp[12:44])
			spendPublic := domain.MustRistrettoPublic(resp[44:76])
			short := keys.AddressHash(viewPublic, spendPublic, engine.FogID(fog).URL(), nil)

			fmt.Printf("view public:  %s\n", hex.EncodeToString(viewPublic.Slice()))
			fmt.Printf("spend public: %s\n", hex.EncodeToString(spendPublic.Slice()))
			fmt.Printf("view private: %s\n", hex.EncodeToString(resp[76:108]))
			fmt.Printf("short hash:   %s\n", hex.EncodeToString(short.Slice()))
			return nil
		},
	}

	cmd.Flags().Uint32Var(&account, "account", 0, "wallet account index")
	cmd.Flags().Uint64Var(&subaddress, "subaddress", 0, "subaddress index")
	cmd.Flags().BoolVar(&change, "change", false, "use the reserved change subaddress")
	cmd.Flags().Uint8Var(&fog, "fog", 0, "fog id for the address hash")
	return cmd
}

func keyImageCmd() *cobra.Command {
	var subaddress uint64
	var txPublicHex string

	cmd := &cobra.Command{
		Use:   "key-image",
		Short: "Compute the key image for an owned output",
		RunE: func(cmd *cobra.Command, args []string) error {
			txPublic, err := hex.DecodeString(txPublicHex)
			if err != nil || len(txPublic) != 32 {
				return fmt.Errorf("--tx-public must be 32 hex bytes")
			}
			e, err := buildEngine()
			if err != nil {
				return err
			}
			body := make([]byte, 40)
			putU64(body, subaddress)
			copy(body[8:], txPublic)
			resp, err := exchange(e, apdu.InsKeyImage, 0, 0, body)
			if err != nil {
				return err
			}
			fmt.Printf("key image: %s\n", hex.EncodeToString(resp))
			return nil
		},
	}

	cmd.Flags().Uint64Var(&subaddress, "subaddress", 0, "subaddress index")
	cmd.Flags().StringVar(&txPublicHex, "tx-public", "", "txout public key (hex)")
	_ = cmd.MarkFlagRequired("tx-public")
	return cmd
}

func randomCmd() *cobra.Command {
	var n uint8

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Fetch random bytes from the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			resp, err := exchange(e, apdu.InsRandom, 0, 0, []byte{n})
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(resp))
			return nil
		},
	}

	cmd.Flags().Uint8Var(&n, "bytes", 32, "number of bytes")
	return cmd
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putU64(b []byte, v uint64) {
	putU32(b, uint32(v))
	putU32(b[4:], uint32(v>>32))
}
