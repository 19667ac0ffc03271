// Package branch resolves the branch references typed by users (codes or
// names) into the identifiers the POS API expects.
package branch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/observability"
)

// ErrUnknownBranch is returned when no branch matches the reference.
var ErrUnknownBranch = errors.New("unknown branch")

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// Lister fetches every branch visible to the caller.
type Lister interface {
	List(ctx context.Context) ([]domain.Branch, error)
}

// Resolver maps branch references to identifiers through an injected cache.
// Concurrent misses for the same key share one remote lookup.
type Resolver struct {
	cache  Cache
	logger *zap.Logger
	group  singleflight.Group
}

// NewResolver builds a resolver over cache.
func NewResolver(cache Cache, logger *zap.Logger) *Resolver {
	return &Resolver{cache: cache, logger: observability.OrNop(logger)}
}

// Resolve returns the identifier for ref. A ref that already looks like an
// identifier is returned unchanged. scope separates tenants in the cache.
func (r *Resolver) Resolve(ctx context.Context, scope, ref string, lister Lister) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrUnknownBranch)
	}
	if objectIDPattern.MatchString(ref) {
		return ref, nil
	}

	key := cacheKey(scope, ref)
	if id, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("branch cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return id, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		branches, err := lister.List(ctx)
		if err != nil {
			return "", err
		}
		for _, b := range branches {
			if b.ID == "" {
				continue
			}
			// warm the cache with every branch we just paid for
			for _, alias := range []string{b.Code, b.Name} {
				if strings.TrimSpace(alias) == "" {
					continue
				}
				if err := r.cache.Set(ctx, cacheKey(scope, alias), b.ID); err != nil {
					r.logger.Warn("branch cache write failed", zap.Error(err))
				}
			}
		}
		for _, b := range branches {
			if strings.EqualFold(b.Code, ref) || strings.EqualFold(b.Name, ref) || b.ID == ref {
				return b.ID, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownBranch, ref)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate forgets a cached reference, e.g. after a branch is renamed.
func (r *Resolver) Invalidate(ctx context.Context, scope, ref string) error {
	return r.cache.Delete(ctx, cacheKey(scope, ref))
}

func cacheKey(scope, ref string) string {
	return scope + ":" + strings.ToLower(strings.TrimSpace(ref))
}
