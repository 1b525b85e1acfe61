package store

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/config"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

const (
	TypeMemory = "memory"
	TypeSQL    = "sql"
)

// UserSeed describes a principal created at startup.
// Exactly one of Password and PasswordHash is set; Password is hashed before storing.
type UserSeed struct {
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	PasswordHash string   `mapstructure:"password_hash"`
	Authorities  []string `mapstructure:"authorities"`
}

type MemoryStoreConfig struct {
	Users []UserSeed `mapstructure:"users"`
}

type SQLStoreConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`

	// DSN is the driver specific connection string.
	DSN string `mapstructure:"dsn"`

	// Migrate creates the credential tables on startup.
	Migrate bool `mapstructure:"migrate"`

	// Users are upserted after migrating.
	Users []UserSeed `mapstructure:"users"`
}

// Built is a constructed principal store together with its cleanup function.
type Built struct {
	Store core.PrincipalStore
	Close func() error
}

// Build constructs the principal store described by cfg.
// hasher is used for seeds given as plaintext passwords.
func Build(ctx context.Context, cfg config.PrincipalStoreConfig, hasher core.PasswordHasher) (*Built, error) {
	switch cfg.Type {
	case TypeMemory, "":
		var conf MemoryStoreConfig
		if err := decode(cfg.Config, &conf); err != nil {
			return nil, fmt.Errorf("decoding memory store config: %w", err)
		}
		s := NewInMemoryPrincipalStore()
		for _, seed := range conf.Users {
			cred, err := seed.credential(hasher)
			if err != nil {
				return nil, err
			}
			if err := s.Put(cred); err != nil {
				return nil, fmt.Errorf("seeding user %q: %w", seed.Username, err)
			}
		}
		log.Debug().Int("users", len(conf.Users)).Msg("in-memory principal store ready")
		return &Built{Store: s, Close: func() error { return nil }}, nil

	case TypeSQL:
		var conf SQLStoreConfig
		if err := decode(cfg.Config, &conf); err != nil {
			return nil, fmt.Errorf("decoding sql store config: %w", err)
		}
		s, err := NewSQLPrincipalStore(ctx, conf.Driver, conf.DSN)
		if err != nil {
			return nil, err
		}
		if conf.Migrate {
			if err := s.Migrate(ctx); err != nil {
				_ = s.Close()
				return nil, err
			}
		}
		for _, seed := range conf.Users {
			cred, err := seed.credential(hasher)
			if err != nil {
				_ = s.Close()
				return nil, err
			}
			if err := s.Put(ctx, cred); err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("seeding user %q: %w", seed.Username, err)
			}
		}
		log.Debug().Str("driver", conf.Driver).Int("seeded", len(conf.Users)).Msg("sql principal store ready")
		return &Built{Store: s, Close: s.Close}, nil

	default:
		return nil, fmt.Errorf("unknown principal store type %q", cfg.Type)
	}
}

func (u UserSeed) credential(hasher core.PasswordHasher) (core.Credential, error) {
	if u.Username == "" {
		return core.Credential{}, fmt.Errorf("user seed without username")
	}
	switch {
	case u.PasswordHash != "" && u.Password != "":
		return core.Credential{}, fmt.Errorf("user %q sets both password and password_hash", u.Username)
	case u.PasswordHash != "":
		return core.Credential{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			Authorities:  u.Authorities,
		}, nil
	case u.Password != "":
		log.Warn().Str("username", u.Username).Msg("user seeded with a plaintext password, prefer password_hash")
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return core.Credential{}, fmt.Errorf("hashing password of %q: %w", u.Username, err)
		}
		return core.Credential{
			Username:     u.Username,
			PasswordHash: hash,
			Authorities:  u.Authorities,
		}, nil
	default:
		return core.Credential{}, fmt.Errorf("user %q has neither password nor password_hash", u.Username)
	}
}

func decode(input map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   result,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	return decoder.Decode(input)
}
