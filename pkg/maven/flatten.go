package maven

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/depsize/pkg/errors"
)

// ManifestSource fetches the raw manifest document for a coordinate,
// returning the location it was fetched from and the document body.
type ManifestSource interface {
	FetchManifest(ctx context.Context, coord Coordinate) (location string, body []byte, err error)
}

// Flattener fetches projects and merges each one with its entire ancestor
// chain into a single self-contained record with no parent reference.
//
// Results are memoized per coordinate for the lifetime of the Flattener,
// so descendants sharing an ancestor fetch it once. The memo has
// single-flight semantics: concurrent callers for the same coordinate
// await the first fetch instead of issuing duplicates. Create one
// Flattener per analysis call; the memo is not meant to outlive it.
type Flattener struct {
	source ManifestSource
	flight singleflight.Group

	mu   sync.Mutex
	memo map[string]flatEntry
}

type flatEntry struct {
	location string
	project  *Project
}

// fetchResult is one fetched-and-parsed manifest before flattening.
type fetchResult struct {
	location string
	project  *Project
}

// NewFlattener creates a Flattener reading manifests from source.
func NewFlattener(source ManifestSource) *Flattener {
	return &Flattener{source: source, memo: make(map[string]flatEntry)}
}

// ByCoordinate fetches the manifest for coord, parses it, and flattens its
// parent chain, returning the manifest location and the flattened project.
func (f *Flattener) ByCoordinate(ctx context.Context, coord Coordinate) (string, *Project, error) {
	return f.byCoordinate(ctx, coord, nil)
}

// Flatten merges p with its full ancestor chain. Projects without a parent
// are returned unchanged, which also makes flattening idempotent.
func (f *Flattener) Flatten(ctx context.Context, p *Project) (*Project, error) {
	return f.flatten(ctx, p, map[string]bool{p.FullID(): true})
}

// byCoordinate is the memoized fetch-parse-flatten step. chain holds the
// coordinates already on the current parent chain; revisiting one means the
// ancestry is cyclic and recursion must be cut off with CYCLE_DETECTED.
//
// The single-flight group covers only the fetch and parse. Flattening
// recurses into ancestors and must run outside the flight: on a cyclic
// chain, two goroutines each holding the other's in-flight key would
// otherwise await each other forever instead of reporting the cycle.
func (f *Flattener) byCoordinate(ctx context.Context, coord Coordinate, chain map[string]bool) (string, *Project, error) {
	key := coord.FullID()
	if chain[key] {
		return "", nil, errors.New(errors.ErrCodeCycle, "parent chain cycles through %s", key)
	}

	f.mu.Lock()
	if e, ok := f.memo[key]; ok {
		f.mu.Unlock()
		return e.location, e.project, nil
	}
	f.mu.Unlock()

	v, err, _ := f.flight.Do(key, func() (any, error) {
		location, body, err := f.source.FetchManifest(ctx, coord)
		if err != nil {
			return nil, err
		}
		project, err := Parse(body)
		if err != nil {
			return nil, err
		}
		return fetchResult{location: location, project: project}, nil
	})
	if err != nil {
		return "", nil, err
	}
	raw := v.(fetchResult)

	sub := make(map[string]bool, len(chain)+1)
	for k := range chain {
		sub[k] = true
	}
	sub[key] = true

	flat, err := f.flatten(ctx, raw.project, sub)
	if err != nil {
		return "", nil, err
	}

	f.mu.Lock()
	f.memo[key] = flatEntry{location: raw.location, project: flat}
	f.mu.Unlock()
	return raw.location, flat, nil
}

func (f *Flattener) flatten(ctx context.Context, p *Project, chain map[string]bool) (*Project, error) {
	if p.Parent == nil {
		return p, nil
	}

	parentCoord := p.Parent.Coordinate
	_, flatParent, err := f.byCoordinate(ctx, parentCoord, chain)
	if err != nil {
		if errors.Is(err, errors.ErrCodeCycle) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeDownloadFailed, err,
			"failed to download parent %s", parentCoord.FullID())
	}

	return merge(p, flatParent), nil
}
