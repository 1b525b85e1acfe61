package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/buildinfo"
	"github.com/yelo-o/Server-PokemonReviewAPI/pkg/client"
)

var infoOpsAddr string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show build information, locally or of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if infoOpsAddr == "" {
			return infoLocally(cmd, args)
		}
		return infoRemote(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVar(&infoOpsAddr, "ops", "", "Address of the server's operations listener")
}

func infoRemote(cmd *cobra.Command, _ []string) error {
	cli := client.New(infoOpsAddr)
	log.Info().Msg("Fetching build info from server...")
	info, correlation, err := cli.Info(cmd.Context())
	if err != nil {
		return logError(err, correlation, "failed to get info from server")
	}
	printInfo(info)
	return nil
}

func infoLocally(_ *cobra.Command, _ []string) error {
	log.Info().Msg("Showing local build info...")
	info := buildinfo.GetBuildInfo()
	printInfo(&info)
	return nil
}

func printInfo(info *buildinfo.Info) {
	fmt.Println(bold("\n── Pokemon Review API Build Information ──"))
	fmt.Printf("  %s:    %s\n", faint("Version"), info.Version)
	fmt.Printf("  %s:     %s\n", faint("Commit"), info.CommitHash)
}
