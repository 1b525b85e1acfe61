package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/audit"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/security/token"
)

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect [token|-]",
	Short: "Verify a session token and show its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readArgOrStdin(args[0])
		if err != nil {
			return err
		}

		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		codec, err := f.BuildCodec(cfg)
		if err != nil {
			return err
		}

		printKV := func(key string, val any) {
			fmt.Printf("  %-22s %v\n", faint(key)+":", val)
		}

		claims, err := codec.Decode(raw)
		fmt.Println(bold("\n── Session Token ──"))
		printKV("Fingerprint", audit.Fingerprint(raw))
		if err != nil {
			printKV("Status", color.RedString(token.Reason(err)))
			return BeQuietError{}
		}
		printKV("Status", color.GreenString("valid"))
		printKV("Subject", claims.Subject)
		if claims.Issuer != "" {
			printKV("Issuer", claims.Issuer)
		}
		printKV("Issued At", claims.IssuedAt.Local().Format(time.RFC1123))
		printKV("Expires At", claims.ExpiresAt.Local().Format(time.RFC1123))
		printKV("Expires In", time.Until(claims.ExpiresAt).Truncate(time.Second))
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenInspectCmd)
}
