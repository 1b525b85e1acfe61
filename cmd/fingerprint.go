package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/audit"
)

var fingerprintCmd = &cobra.Command{
	Use:     "fingerprint [token|-]",
	Aliases: []string{"fp"},
	Short:   `Calculate the fingerprint of a session token`,
	Long: `Calculates the fingerprint of a token (SHA256, Base64).
This is the value stored in the audit log in the 'token_fingerprint' field.`,
	Example: `  pokereview fingerprint eyJhbGciOi...
  echo "eyJhbGciOi..." | pokereview fingerprint -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readArgOrStdin(args[0])
		if err != nil {
			return err
		}
		if raw == "" {
			return fmt.Errorf("token cannot be empty")
		}
		fmt.Println(audit.Fingerprint(raw))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)
}
