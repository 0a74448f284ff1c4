package services

import (
	"context"
	"strings"

	"bpoc/internal/repositories"
)

// ResolvedName is a display name together with the table it came from.
type ResolvedName struct {
	Value  string
	Source string
}

// First returns the first word of the name.
func (n ResolvedName) First() string {
	if fields := strings.Fields(n.Value); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

type nameSource struct {
	name   string
	lookup func(ctx context.Context, userID string) (string, error)
}

// NameResolver probes user tables in order until one yields a non-empty name.
type NameResolver struct {
	sources []nameSource
}

func NewNameResolver(store *repositories.Store) *NameResolver {
	return &NameResolver{sources: []nameSource{
		{name: "agency_recruiters", lookup: func(ctx context.Context, id string) (string, error) {
			r, err := store.Recruiters.GetByUserID(ctx, id)
			if err != nil {
				return "", err
			}
			return r.FullName(), nil
		}},
		{name: "user_profiles", lookup: func(ctx context.Context, id string) (string, error) {
			p, err := store.Profiles.GetByUserID(ctx, id)
			if err != nil {
				return "", err
			}
			return p.FullName, nil
		}},
		{name: "candidates", lookup: func(ctx context.Context, id string) (string, error) {
			c, err := store.Candidates.GetByID(ctx, id)
			if err != nil {
				return "", err
			}
			return c.FullName(), nil
		}},
	}}
}

// Resolve never fails; lookup errors just move on to the next source.
func (r *NameResolver) Resolve(ctx context.Context, userID string) (ResolvedName, bool) {
	if userID == "" {
		return ResolvedName{}, false
	}
	for _, src := range r.sources {
		name, err := src.lookup(ctx, userID)
		if err != nil {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			return ResolvedName{Value: name, Source: src.name}, true
		}
	}
	return ResolvedName{}, false
}
