package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/config"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/policy"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/validation"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long:  "Parses the configuration file and compiles its route table, without starting the server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return fmt.Errorf("no configuration file given (use --config)")
		}
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return logError(err, "", "configuration is invalid")
		}
		warnings, err := validation.ValidateRoutes(cfg.Routes)
		if err != nil {
			return logError(err, "", "route table is invalid")
		}
		for _, w := range warnings {
			log.Warn().Msg(w)
		}
		if _, err := policy.FromConfig(cfg.Routes); err != nil {
			return logError(err, "", "route table is invalid")
		}
		if _, err := f.BuildCodec(cfg); err != nil {
			log.Warn().Err(err).Msg("token codec cannot be built with the current environment")
		}
		logSuccess("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
