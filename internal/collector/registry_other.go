//go:build !windows

package collector

import (
	"context"

	"github.com/MrSnakeDoc/summon/internal/domain"
)

func (r *Registry) Collect(ctx context.Context) ([]domain.RawCandidate, error) {
	return nil, ErrUnsupported
}
