package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tokenIssueTTL time.Duration

// tokenIssueCmd represents the token issue command
var tokenIssueCmd = &cobra.Command{
	Use:   "issue USERNAME",
	Short: "Issue a session token for a user without a password",
	Long: `Signs a session token for USERNAME with the configured secret.
The user must exist in the principal store, otherwise the token will not authenticate.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		codec, err := f.BuildCodec(cfg)
		if err != nil {
			return err
		}

		ttl := cfg.Token.TTL
		if tokenIssueTTL > 0 {
			ttl = tokenIssueTTL
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
		if _, err := principals.Store.LoadByUsername(cmd.Context(), username); err != nil {
			log.Warn().Err(err).Str("username", username).Msg("user cannot be resolved, the token will not authenticate")
		}

		signed, err := codec.Encode(username, time.Now(), ttl)
		if err != nil {
			return err
		}
		log.Info().Msgf("Issued token for %s, valid for %s", bold(username), ttl)
		fmt.Println(signed)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().DurationVar(&tokenIssueTTL, "ttl", 0, "Token lifetime (default token.ttl)")
}
