// Package acquirer routes deposit/withdraw submissions to the configured
// external payment providers and defines their capability contract.
package acquirer

import (
	"context"
	"fmt"
	"sort"

	"saldo/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// Registry selects the acquirer serving a capability. Routing fails
// closed: with no enabled default there is no guessing.
type Registry interface {
	Select(ctx context.Context, capability string) (Handle, error)
}

type registry struct {
	repo    repositories.AcquirerRepository
	handles map[string]Handle
}

// NewRegistry builds a registry over the acquirer configuration and the
// adapter handles registered per reference.
func NewRegistry(repo repositories.AcquirerRepository, handles ...Handle) Registry {
	if repo == nil {
		panic("acquirer repository is required")
	}
	m := make(map[string]Handle, len(handles))
	for _, h := range handles {
		m[h.Reference()] = h
	}
	return &registry{repo: repo, handles: m}
}

func (r *registry) Select(ctx context.Context, capability string) (Handle, error) {
	acquirers, err := r.repo.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list acquirers: %w", err)
	}

	var defaults []string
	for i := range acquirers {
		if acquirers[i].DefaultFor(capability) {
			defaults = append(defaults, acquirers[i].Reference)
		}
	}
	if len(defaults) == 0 {
		return nil, ErrNoAcquirerAvailable
	}
	if len(defaults) > 1 {
		sort.Strings(defaults)
		log.Printf("acquirer config inconsistency: %d defaults for capability %q, picking %q", len(defaults), capability, defaults[0])
	}

	handle, ok := r.handles[defaults[0]]
	if !ok {
		log.Printf("acquirer %q configured but no adapter registered", defaults[0])
		return nil, ErrNoAcquirerAvailable
	}
	return handle, nil
}
