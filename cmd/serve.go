package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/middleware"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/audit"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/catalog"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/metrics"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/policy"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/service"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Long: `Runs the API server and, if server.ops_addr is set, the operations listener
serving /healthz, /about and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if addr, _ := cmd.Flags().GetString("ops-addr"); addr != "" {
			cfg.Server.OpsAddr = addr
		}

		codec, err := f.BuildCodec(cfg)
		if err != nil {
			return err
		}
		hasher, err := f.BuildHasher(cfg)
		if err != nil {
			return err
		}

		log.Info().Str("type", cfg.PrincipalStore.Type).Msg("Initializing principal store...")
		principals, err := f.BuildStore(cmd.Context(), cfg, hasher)
		if err != nil {
			return err
		}
		defer func() {
			if err := principals.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close principal store")
			}
		}()

		warnings, err := validation.ValidateRoutes(cfg.Routes)
		if err != nil {
			return fmt.Errorf("validating routes: %w", err)
		}
		for _, w := range warnings {
			log.Warn().Msg(w)
		}
		table, err := policy.FromConfig(cfg.Routes)
		if err != nil {
			return fmt.Errorf("building route policy: %w", err)
		}
		for _, rule := range table.Rules() {
			log.Debug().Str("pattern", rule.Pattern).Str("access", string(rule.Access)).Msg("route rule")
		}

		auditor, err := audit.New(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close auditor")
			}
		}()

		m := metrics.New()

		srv := api.NewServer(api.Options{
			Authenticator:  middleware.NewAuthenticator(codec, principals.Store, m),
			Policy:         table,
			Login:          service.NewLoginService(principals.Store, hasher, codec, cfg.Token.TTL, auditor, m),
			Catalog:        catalog.Seeded(),
			Auditor:        auditor,
			Metrics:        m,
			CORS:           cfg.CORS,
			LoginRateLimit: cfg.LoginRateLimit,
			RequestTimeout: cfg.Server.RequestTimeout,
		})

		servers := []*http.Server{{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}}
		if cfg.Server.OpsAddr != "" {
			servers = append(servers, &http.Server{
				Addr:              cfg.Server.OpsAddr,
				Handler:           srv.OpsRoutes(),
				ReadHeaderTimeout: 10 * time.Second,
			})
		}

		errCh := make(chan error, len(servers))
		for _, server := range servers {
			go func(server *http.Server) {
				log.Info().Msgf("Starting server on %s...", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("server on %s: %w", server.Addr, err)
				}
			}(server)
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		var runErr error
		select {
		case <-quit:
		case runErr = <-errCh:
			log.Error().Err(runErr).Msg("Server crashed")
		}
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		for _, server := range servers {
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
		}

		log.Info().Msg("Server exited")
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (overrides server.addr)")
	serveCmd.Flags().String("ops-addr", "", "address of the operations listener (overrides server.ops_addr)")
}
