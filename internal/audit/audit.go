// Package audit records authentication and authorization events.
package audit

import (
	"fmt"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/config"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

const (
	TypeMemory = "memory"
	TypeFile   = "file"
)

// New builds the auditor selected by cfg. A disabled audit config yields a NoopAuditor.
func New(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case TypeMemory:
		return NewInMemoryAuditor(cfg.Capacity), nil
	case TypeFile:
		a, err := NewFileAuditor(cfg.Path)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", cfg.Type)
	}
}
