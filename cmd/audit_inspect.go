package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/pkg/client"
)

var auditInspectCmd = &cobra.Command{
	Use:     "inspect CORRELATION-ID",
	Short:   "Show full details of a specific audit log entry",
	Example: `  pokereview audit inspect cs2h0k0r9a8g00d3v5pg`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		correlationID := args[0]
		if correlationID == "" {
			return fmt.Errorf("correlation ID cannot be empty")
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Retrieving entry with correlation ID '%s'...", correlationID)
		audits, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:         1,
			CorrelationID: correlationID,
		})
		if err != nil {
			return logError(err, correlation, "failed to retrieve audit log entry")
		}
		if len(audits) == 0 {
			log.Warn().Str("correlation_id", correlationID).Msg("no audit log entries found")
			return nil
		}

		entry := audits[0]

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		printKV := func(key string, val any) {
			fmt.Printf("  %-26s %v\n", faint(key)+":", val)
		}
		orNone := func(s string) any {
			if s == "" {
				return faint("(none)")
			}
			return s
		}

		status := green("granted")
		if !entry.Granted {
			status = red("denied")
		}

		fmt.Println(bold("\n── Audit Entry ──"))
		printKV("Correlation ID", correlationID)
		printKV("Time", entry.Time.Local().Format(time.RFC1123))
		printKV("Action", entry.Action)
		printKV("Decision", status)
		if entry.Status != 0 {
			printKV("Status", entry.Status)
		}

		fmt.Println(bold("\n── Request ──"))
		if entry.Username != "" {
			printKV("Username", bold(entry.Username))
		} else {
			printKV("Username", faint("(anonymous)"))
		}
		printKV("Method", orNone(entry.Method))
		printKV("Path", orNone(entry.Path))
		if entry.Error != "" {
			printKV("Error Message", red(entry.Error))
		}

		fmt.Println(bold("\n── Output ──"))
		printKV("Fingerprint", orNone(entry.TokenFingerprint))
		fmt.Println()

		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditInspectCmd)
}
