package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/cliconfig"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/config"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/security/password"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/security/token"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/store"
	"github.com/yelo-o/Server-PokemonReviewAPI/pkg/client"
)

type Factory struct {
	// RemoteAddr is the address of the API server to connect to.
	RemoteAddr string
}

func NewFactory() *Factory {
	return &Factory{}
}

// ServerAddr resolves the API server address from the flag, the user config or the environment.
func (f *Factory) ServerAddr() (string, error) {
	server := f.RemoteAddr // prio 1: command-line flag
	if server == "" {
		server = viper.GetString(ServerAddrKey) // prio 2: config/env
	}
	if server == "" {
		return "", fmt.Errorf("server address not configured (use --server or set %s_SERVER)", EnvPrefix)
	}
	return server, nil
}

// GetClient returns an HTTP client carrying the saved session token, if any.
func (f *Factory) GetClient() (*client.Client, error) {
	server, err := f.ServerAddr()
	if err != nil {
		return nil, err
	}

	var sessionToken string
	if cfg, err := cliconfig.Load(); err == nil {
		if cred, err := cfg.GetCredential(server); err == nil { // token prio 1: saved credential
			sessionToken = cred.Token
		}
	}

	if envToken := viper.GetString(SessionKey); envToken != "" { // token prio 2: env var
		sessionToken = envToken
	}

	return client.New(server, client.WithAuthToken(sessionToken)), nil
}

// LoadConfig loads the server configuration from --config, or returns the defaults.
func (f *Factory) LoadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// BuildCodec builds the token codec. The secret in the environment takes precedence over the file.
func (f *Factory) BuildCodec(cfg *config.Config) (*token.Codec, error) {
	secret := cfg.Token.Secret
	if env := viper.GetString(TokenSecretKey); env != "" {
		secret = env
	}
	if secret == "" {
		return nil, fmt.Errorf("token secret not configured (set token.secret or %s_TOKEN_SECRET)", EnvPrefix)
	}

	var opts []token.Option
	if cfg.Token.Issuer != "" {
		opts = append(opts, token.WithIssuer(cfg.Token.Issuer))
	}
	codec, err := token.NewCodec([]byte(secret), opts...)
	if err != nil {
		return nil, fmt.Errorf("building token codec: %w", err)
	}
	return codec, nil
}

func (f *Factory) BuildHasher(cfg *config.Config) (*password.Bcrypt, error) {
	hasher, err := password.NewBcrypt(cfg.Password.Cost)
	if err != nil {
		return nil, fmt.Errorf("building password hasher: %w", err)
	}
	return hasher, nil
}

func (f *Factory) BuildStore(ctx context.Context, cfg *config.Config, hasher *password.Bcrypt) (*store.Built, error) {
	built, err := store.Build(ctx, cfg.PrincipalStore, hasher)
	if err != nil {
		return nil, fmt.Errorf("building principal store: %w", err)
	}
	return built, nil
}

func (f *Factory) bindServerFlag(flags *pflag.FlagSet) {
	flags.StringVar(&f.RemoteAddr, "server", "", "Address of the remote API server")
	_ = viper.BindPFlag(ServerAddrKey, flags.Lookup("server"))
}
