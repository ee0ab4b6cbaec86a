package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/shadebridge/pkg/buildinfo"
	"github.com/matzehuels/shadebridge/pkg/cache"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/graph"
	"github.com/matzehuels/shadebridge/pkg/observability"
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/profile/renderers"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/source"
)

// Runner executes conversions, consulting the cache first.
//
// The Runner holds no per-run state. Every run owns its working graph,
// name allocator, rename ledger and diagnostics, so one Runner can serve
// many goroutines at once as long as the Query it is given is safe for
// concurrent reads.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger

	// Version is mixed into cache keys so results of an older converter
	// are not served.
	Version string

	// TTL is how long converted graphs stay cached.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching and a nil
// logger uses the default logger.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Logger:  logger,
		Version: buildinfo.Version,
		TTL:     cache.TTLGraph,
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Execute converts the material opts.Root read from q.
func (r *Runner) Execute(ctx context.Context, q source.Query, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRunStart(ctx, opts.Root, opts.Renderer)

	res, err := r.execute(ctx, q, opts)

	renderer, nodes, diags := opts.Renderer, 0, 0
	if res != nil {
		renderer, nodes, diags = res.Renderer, res.Stats.Nodes, res.Diagnostics.Len()
		res.Stats.Total = time.Since(start)
	}
	hooks.OnRunComplete(ctx, opts.Root, renderer, nodes, diags, time.Since(start), err)
	return res, err
}

func (r *Runner) execute(ctx context.Context, q source.Query, opts Options) (*Result, error) {
	id := uuid.New()
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}
	logger = logger.With("run", id.String()[:8], "root", opts.Root)

	loadStart := time.Now()
	nodes, err := q.ListNodesReachableFrom(opts.Root)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeInvalidInput), err, "load %s", opts.Root)
	}
	version := q.HostVersion()
	if opts.HostVersion != "" {
		version = scene.ParseVersion(opts.HostVersion)
	}
	prof := opts.Profile
	if prof == nil {
		if prof, err = renderers.Resolve(opts.Renderer, nodes, opts.profileOptions()); err != nil {
			return nil, err
		}
	}
	logger.Debug("resolved profile", "renderer", prof.Name, "host_version", version, "nodes", len(nodes))

	key, err := r.cacheKey(nodes, prof, opts, version)
	if err != nil {
		return nil, err
	}
	if !opts.Refresh {
		if res, ok := r.cached(ctx, key, logger); ok {
			res.RunID = id
			return res, nil
		}
	}

	run := newRun(id, prof, version, logger)
	res, err := run.convert(ctx, opts.Root, nodes, loadStart)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, res, logger)
	return res, nil
}

func (r *Runner) cacheKey(nodes []*scene.Node, prof *profile.Profile, opts Options, v scene.Version) (string, error) {
	data, err := json.Marshal(nodes)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "encode scene")
	}
	return cache.Key(data, cacheKeyOpts(prof.Name, opts.Root, v, opts, r.Version)), nil
}

// cached returns the stored result for key. Unreadable entries count as
// misses.
func (r *Runner) cached(ctx context.Context, key string, logger *log.Logger) (*Result, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, cache.KeyTypeGraph)
		return nil, false
	}
	g, err := graph.Unmarshal(data)
	if err == nil {
		var res *Result
		if res, err = fromGraph(g); err == nil {
			hooks.OnCacheHit(ctx, cache.KeyTypeGraph)
			logger.Debug("cache hit", "nodes", res.Stats.Nodes)
			return res, true
		}
	}
	logger.Warn("discarding unreadable cache entry", "err", err)
	hooks.OnCacheMiss(ctx, cache.KeyTypeGraph)
	return nil, false
}

func (r *Runner) store(ctx context.Context, key string, res *Result, logger *log.Logger) {
	data, err := graph.Marshal(res.Export())
	if err != nil {
		logger.Warn("cache encode failed", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyTypeGraph, len(data))
}

// ExecuteAll converts every material in roots with at most workers runs in
// flight. Results are returned in the order of roots. The first failing
// run cancels the rest.
func (r *Runner) ExecuteAll(ctx context.Context, q source.Query, roots []string, opts Options, workers int) ([]*Result, error) {
	results := make([]*Result, len(roots))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, root := range roots {
		g.Go(func() error {
			o := opts
			o.Root = root
			res, err := r.Execute(ctx, q, o)
			if err != nil {
				return errors.Wrap(codeOr(err, errors.ErrCodeInternal), err, "material %s", root)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
