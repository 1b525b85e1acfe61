package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/pkg/client"
)

var auditLogOpts client.ListAuditsOpts

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Info().Msg("Fetching audit log...")
		audits, correlation, err := cli.ListAudits(cmd.Context(), auditLogOpts)
		if err != nil {
			return logError(err, correlation, "failed to retrieve audit log")
		}

		log.Info().Msgf("Retrieved %d audit entries", len(audits))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "Action", "User", "Request", "Status", "Error",
		})

		for _, e := range audits {
			status := color.GreenString("%d", e.Status)
			if !e.Granted {
				status = color.RedString("%d", e.Status)
			}

			user := e.Username
			if user == "" {
				user = faint("(anonymous)")
			}

			request := ""
			if e.Path != "" {
				request = truncate(fmt.Sprintf("%s %s", e.Method, e.Path), 40)
			}

			t.AppendRow(table.Row{
				e.Time.Local().Format(time.RFC3339),
				e.Action,
				truncate(user, 35),
				request,
				status,
				e.Error,
			})
		}

		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().UintVarP(&auditLogOpts.Limit, "limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().StringVar(&auditLogOpts.Username, "user", "", "Only entries of this user")
	auditLogCmd.Flags().StringVar(&auditLogOpts.Action, "action", "", "Only entries with this action (auth.login, auth.denied)")
}
