package raster

import (
	"context"
	"fmt"

	"github.com/landwatch/landwatch-analysis-api/internal/geometry"
)

// Source supplies already-clipped, already-masked band data for a region and
// date range. Implementations own all network and disk I/O; the analysis
// engine itself never fetches anything.
type Source interface {
	FetchClip(ctx context.Context, region *geometry.Region, bands []string, dates DateRange) (*Clip, error)
}

// MemorySource serves canned clips keyed by date range. Used by tests and by
// offline runs against pre-downloaded imagery.
type MemorySource struct {
	Clips map[string]*Clip
	// Errs forces FetchClip to fail for specific date ranges.
	Errs map[string]error
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		Clips: make(map[string]*Clip),
		Errs:  make(map[string]error),
	}
}

func (s *MemorySource) Put(dates DateRange, clip *Clip) {
	s.Clips[dates.String()] = clip
}

func (s *MemorySource) Fail(dates DateRange, err error) {
	s.Errs[dates.String()] = err
}

func (s *MemorySource) FetchClip(ctx context.Context, region *geometry.Region, bands []string, dates DateRange) (*Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.Errs[dates.String()]; ok {
		return nil, err
	}
	clip, ok := s.Clips[dates.String()]
	if !ok {
		return nil, fmt.Errorf("no imagery for %s", dates)
	}
	for _, name := range bands {
		if _, err := clip.Band(name); err != nil {
			return nil, err
		}
	}
	return clip, nil
}
