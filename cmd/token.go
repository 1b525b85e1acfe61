package cmd

import (
	"github.com/spf13/cobra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and inspect session tokens locally",
	Long:  "Uses the signing secret of the server configuration, no server is contacted.",
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
