package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/cliconfig"
	"github.com/yelo-o/Server-PokemonReviewAPI/pkg/client"
)

var loginPasswordStdin bool

var loginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Authenticate with an API server",
	Long: `Exchanges username and password for a session token.
The session token is saved locally to allow future authenticated requests (like whoami).`,
	Example: `  echo s3cret | pokereview login --server http://localhost:8080 --password-stdin ash`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		server, err := f.ServerAddr()
		if err != nil {
			return err
		}
		u, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("parsing server URL: %w", err)
		}

		if !loginPasswordStdin {
			fmt.Fprint(os.Stderr, "Password: ")
		}
		password, err := readLine(os.Stdin)
		if err != nil {
			return err
		}

		cli := client.New(server)
		log.Info().Msgf("Logging in to %q as %s...", u.Host, bold(username))

		resp, correlation, err := cli.Login(cmd.Context(), username, password)
		if err != nil {
			return logError(err, correlation, "login failed")
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = &cliconfig.CLIConfig{}
		}
		cfg.SetCredential(u.Host, &cliconfig.Credential{
			Token:     resp.AccessToken,
			Username:  username,
			ExpiresAt: resp.ExpiresAt,
		})
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "login succeeded but could not save credentials")
		}

		logSuccess("saved credentials for %s (expires %s)", bold(u.Host), resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin without prompting")
}
