package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/pkg/client"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user the saved session token authenticates as",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		who, correlation, err := cli.Whoami(cmd.Context())
		if err != nil {
			if errors.Is(err, client.ErrUnauthenticated) {
				return logError(err, correlation, "not logged in or session expired, run 'pokereview login'")
			}
			return logError(err, correlation, "failed to query identity")
		}

		authorities := strings.Join(who.Authorities, ", ")
		if authorities == "" {
			authorities = faint("(none)")
		}
		fmt.Printf("%s %s\n", greenCheck, bold(who.Username))
		fmt.Printf("  %s: %s\n", faint("Authorities"), authorities)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
