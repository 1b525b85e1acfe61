package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/security/password"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect the principal store",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the users of the configured principal store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		hasher, err := f.BuildHasher(cfg)
		if err != nil {
			return err
		}
		principals, err := f.BuildStore(cmd.Context(), cfg, hasher)
		if err != nil {
			return err
		}
		defer func() {
			_ = principals.Close()
		}()

		lister, ok := principals.Store.(core.PrincipalLister)
		if !ok {
			return fmt.Errorf("principal store %q cannot list users", cfg.PrincipalStore.Type)
		}
		users, err := lister.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}
		log.Info().Msgf("Found %d users", len(users))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Username", "Authorities", "Hash Cost"})
		for _, u := range users {
			cost := "-"
			if c, err := password.Cost(u.PasswordHash); err == nil {
				cost = fmt.Sprint(c)
			}
			t.AppendRow(table.Row{
				bold(u.Username),
				truncate(strings.Join(u.Authorities, ", "), 50),
				cost,
			})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
}
