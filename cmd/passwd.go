package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Password utilities",
}

var passwdHashCmd = &cobra.Command{
	Use:   "hash [password|-]",
	Short: "Hash a password for the principal store",
	Long: `Prints the bcrypt hash of a password, suitable for the password_hash field
of a user seed or the users table. Use "-" to read the password from stdin.`,
	Example: `  pokereview passwd hash -f server.yaml s3cret
  echo s3cret | pokereview passwd hash -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plaintext, err := readArgOrStdin(args[0])
		if err != nil {
			return err
		}
		if plaintext == "" {
			return fmt.Errorf("password cannot be empty")
		}

		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		hasher, err := f.BuildHasher(cfg)
		if err != nil {
			return err
		}
		hash, err := hasher.Hash(plaintext)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwdCmd)
	passwdCmd.AddCommand(passwdHashCmd)
}
