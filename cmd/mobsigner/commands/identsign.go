package commands

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mobsigner/internal/apdu"
	"mobsigner/internal/engine"
)

func identSignCmd() *cobra.Command {
	var uri string
	var index uint32
	var challengeHex string
	var yes bool

	cmd := &cobra.Command{
		Use:   "ident-sign",
		Short: "Sign a decentralized-identity challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			challenge, err := hex.DecodeString(challengeHex)
			if err != nil || len(challenge) != 32 {
				return fmt.Errorf("--challenge must be 32 hex bytes")
			}
			if len(uri) == 0 || len(uri) > engine.MaxIdentURILen {
				return fmt.Errorf("--uri must be 1-%d bytes", engine.MaxIdentURILen)
			}

			e, err := buildEngine()
			if err != nil {
				return err
			}

			body := make([]byte, 0, 4+1+len(uri)+32)
			var le [4]byte
			putU32(le[:], index)
			body = append(body, le[:]...)
			body = append(body, uint8(len(uri)))
			body = append(body, uri...)
			body = append(body, challenge...)

			if _, err := exchange(e, apdu.InsIdentSign, 0, 0, body); err != nil {
				return err
			}

			if !yes && !confirm(fmt.Sprintf("Sign identity challenge for %q (index %d)?", uri, index)) {
				_, err := e.Update(engine.ApprovalEvent{Approve: false})
				return fmt.Errorf("rejected: %w", err)
			}

			out, err := e.Update(engine.ApprovalEvent{Approve: true})
			if err != nil {
				return err
			}
			sig, ok := out.(engine.IdentSignatureOutput)
			if !ok {
				return fmt.Errorf("unexpected output %T", out)
			}

			fmt.Printf("public key: %s\n", hex.EncodeToString(sig.PublicKey.Slice()))
			fmt.Printf("signature:  %s\n", hex.EncodeToString(sig.Signature[:]))
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "identity URI")
	cmd.Flags().Uint32Var(&index, "index", 0, "identity index")
	cmd.Flags().StringVar(&challengeHex, "challenge", "", "challenge to sign (32 hex bytes)")
	cmd.Flags().BoolVar(&yes, "yes", false, "approve without prompting")
	_ = cmd.MarkFlagRequired("uri")
	_ = cmd.MarkFlagRequired("challenge")
	return cmd
}

// confirm prompts for a y/n answer on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
