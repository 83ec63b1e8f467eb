// Package analyzer walks a coordinate's fully resolved transitive
// dependency graph and computes the on-disk size of every node.
//
// The entry point is [Analyzer.Analyze]: it fetches the coordinate's
// manifest, flattens the parent chain, resolves dependency versions,
// filters non-shipping scopes, and recurses into the surviving
// dependencies, producing an immutable [Node] tree. Manifest downloads and
// size lookups are memoized per call, so diamond-shaped graphs fetch each
// coordinate once.
package analyzer

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/depsize/pkg/errors"
	"github.com/matzehuels/depsize/pkg/maven"
)

// Repository is the repository client surface the analyzer depends on.
type Repository interface {
	// FetchManifest returns the manifest document for a coordinate and
	// the location it was fetched from.
	FetchManifest(ctx context.Context, coord maven.Coordinate) (location string, body []byte, err error)

	// FetchSize returns the artifact's size in bytes for the artifact
	// behind a manifest location. ok=false means the size could not be
	// determined; the analyzer counts such artifacts as 0 with a warning.
	FetchSize(ctx context.Context, manifestLocation string) (bytes int64, ok bool)
}

// Options configures an Analyzer.
type Options struct {
	// Workers bounds how many sibling dependencies resolve concurrently.
	// Values <= 1 select the fully sequential, deterministic traversal.
	Workers int

	// SkipUnresolved drops dependencies with no resolvable version
	// instead of failing the analysis (see maven.ResolveOptions).
	SkipUnresolved bool

	// Logger receives warnings: undetermined sizes, dropped dependencies.
	Logger func(format string, args ...any)
}

// Analyzer computes sized dependency trees. It is safe for concurrent use;
// each Analyze call carries its own caches.
type Analyzer struct {
	repo Repository
	opts Options
}

// New creates an Analyzer reading from repo.
func New(repo Repository, opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Analyzer{repo: repo, opts: opts}
}

// Analyze resolves the coordinate string's full transitive dependency
// graph and returns the sized result tree.
//
// The string must match "groupId:artifactId:version"; anything else fails
// with INVALID_COORDINATE before any network access. Any failure below the
// root aborts the whole analysis; there is no partial-result mode. The
// project and size caches live exactly as long as this call.
func (a *Analyzer) Analyze(ctx context.Context, coordinate string) (*Node, error) {
	coord, err := maven.ParseCoordinate(coordinate)
	if err != nil {
		return nil, err
	}

	r := &run{
		repo:      a.repo,
		opts:      a.opts,
		flattener: maven.NewFlattener(a.repo),
		sizes:     make(map[string]int64),
	}
	return r.node(ctx, coord, nil)
}

// run holds the per-call state: the project cache (inside the flattener)
// and the size cache, both keyed by coordinate string with single-flight
// get-or-compute semantics.
type run struct {
	repo      Repository
	opts      Options
	flattener *maven.Flattener

	sizeFlight singleflight.Group
	mu         sync.Mutex
	sizes      map[string]int64
}

// node analyzes one coordinate. path holds the coordinates currently being
// resolved on this traversal branch; memoization alone cannot break a
// cycle that revisits a coordinate before its cache entry settles.
func (r *run) node(ctx context.Context, coord maven.Coordinate, path map[string]bool) (*Node, error) {
	id := coord.FullID()
	if path[id] {
		return nil, errors.New(errors.ErrCodeCycle,
			"dependency cycle: %s -> %s", strings.Join(sortedKeys(path), " -> "), id)
	}

	location, project, err := r.flattener.ByCoordinate(ctx, coord)
	if err != nil {
		return nil, err
	}

	size := r.size(ctx, id, location)

	resolved, err := maven.ResolveVersions(project, maven.ResolveOptions{
		SkipUnresolved: r.opts.SkipUnresolved,
		Logger:         r.opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	var deps []maven.Dependency
	for _, d := range resolved.Dependencies {
		if d.EffectiveScope().Ignored() {
			continue
		}
		if d.FullID() == id { // self-reference guard
			continue
		}
		deps = append(deps, d)
	}

	branch := make(map[string]bool, len(path)+1)
	for k := range path {
		branch[k] = true
	}
	branch[id] = true

	children, err := r.children(ctx, deps, branch)
	if err != nil {
		return nil, err
	}

	return newNode(coord, location, size, children), nil
}

// children resolves the surviving dependencies of one node, sequentially
// or as a concurrent fan-out joined before the parent finalizes.
func (r *run) children(ctx context.Context, deps []maven.Dependency, path map[string]bool) ([]*Node, error) {
	if len(deps) == 0 {
		return nil, nil
	}

	if r.opts.Workers <= 1 {
		out := make([]*Node, 0, len(deps))
		for _, d := range deps {
			n, err := r.node(ctx, d.Coordinate, path)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	out := make([]*Node, len(deps))
	for i, d := range deps {
		g.Go(func() error {
			n, err := r.node(ctx, d.Coordinate, path)
			if err != nil {
				return err
			}
			out[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// size returns the artifact size for a coordinate, memoized per call.
// Undeterminable sizes count as 0 and are reported through the logger.
func (r *run) size(ctx context.Context, id, location string) int64 {
	r.mu.Lock()
	if s, ok := r.sizes[id]; ok {
		r.mu.Unlock()
		return s
	}
	r.mu.Unlock()

	v, _, _ := r.sizeFlight.Do(id, func() (any, error) {
		size, ok := r.repo.FetchSize(ctx, location)
		if !ok {
			r.opts.Logger("artifact size undetermined for %s, counting as 0", id)
			size = 0
		}
		r.mu.Lock()
		r.sizes[id] = size
		r.mu.Unlock()
		return size, nil
	})
	return v.(int64)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
