// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"io"

	"github.com/pdiddy/litfetch/internal/httputil"
	"github.com/pdiddy/litfetch/pkg/types"
)

// BiorxivSource is a placeholder for the bioRxiv API. It honours the rate
// limiter like a real source but always returns no records; an empty
// result from it means "not implemented", not "no matches".
type BiorxivSource struct {
	Limiter httputil.Waiter
	Log     io.Writer
}

// Name returns the source identifier.
func (s *BiorxivSource) Name() types.Source { return types.SourceBiorxiv }

// Search waits its turn on the limiter and returns an empty slice.
func (s *BiorxivSource) Search(ctx context.Context, _ Query) ([]types.Paper, error) {
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx, types.SourceBiorxiv); err != nil {
			return nil, err
		}
	}
	logf(s.Log, "info: biorxiv search is not implemented; returning no results\n")
	return []types.Paper{}, nil
}
