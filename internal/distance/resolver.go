package distance

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kmtracker/kmtracker/internal/cache"
	"github.com/kmtracker/kmtracker/internal/maps"
	"github.com/kmtracker/kmtracker/internal/metrics"
	"github.com/kmtracker/kmtracker/internal/model"
)

// SDKLoader is satisfied by *maps.Loader.
type SDKLoader interface {
	EnsureLoaded(ctx context.Context) error
}

// Cache stores resolved pairs. *cache.Cache satisfies it.
type Cache interface {
	GetDistance(ctx context.Context, origin, destination string) (*model.CachedDistance, error)
	SetDistance(ctx context.Context, origin, destination string, d *model.CachedDistance, ttl time.Duration) error
	DeleteDistance(ctx context.Context, origin, destination string) error
}

// ResolverConfig wires a Resolver. Primary is nil when no API key is configured.
type ResolverConfig struct {
	Primary  Provider
	Fallback Provider
	Loader   SDKLoader
	Cache    Cache
	CacheTTL time.Duration
	// RetryInterval is how long the primary stays disabled after a failure.
	// Zero keeps it disabled for the life of the process.
	RetryInterval time.Duration
	Logger        *slog.Logger
	Metrics       metrics.Recorder
}

// Resolver picks between the maps API, the cache and the fallback estimator.
type Resolver struct {
	primary       Provider
	fallback      Provider
	loader        SDKLoader
	cache         Cache
	cacheTTL      time.Duration
	retryInterval time.Duration
	logger        *slog.Logger
	metrics       metrics.Recorder
	now           func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	broken   bool
	brokenAt time.Time
}

// NewResolver creates a Resolver. A nil Fallback gets a default estimator.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Fallback == nil {
		cfg.Fallback = NewFallbackEstimator(DefaultFallbackDelay, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	return &Resolver{
		primary:       cfg.Primary,
		fallback:      cfg.Fallback,
		loader:        cfg.Loader,
		cache:         cfg.Cache,
		cacheTTL:      cfg.CacheTTL,
		retryInterval: cfg.RetryInterval,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		now:           time.Now,
	}
}

// Resolve returns the distance between two addresses. Maps failures never
// surface as errors: they degrade to an estimate carrying a warning.
func (r *Resolver) Resolve(ctx context.Context, origin, destination string) (Result, error) {
	origin, destination = Normalize(origin), Normalize(destination)
	if origin == "" || destination == "" {
		return Result{}, ErrInvalidAddress
	}

	start := r.now()
	defer func() { r.metrics.ObserveDistanceDuration(r.now().Sub(start)) }()

	if r.primary == nil {
		return r.estimate(ctx, WarningNoAPI, "")
	}

	if r.isBroken() {
		return r.estimate(ctx, WarningAPIError, "")
	}

	if res, ok := r.cached(ctx, origin, destination); ok {
		r.metrics.IncDistanceLookup(SourceCache)
		return res, nil
	}

	v, err, _ := r.group.Do(origin+"\x00"+destination, func() (any, error) {
		return r.lookup(ctx, origin, destination)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		// A shared lookup cancelled by another caller says nothing about the API.
		if errors.Is(err, context.Canceled) {
			return r.estimate(ctx, WarningAPIError, "")
		}

		r.markBroken()
		r.logger.Warn("distance lookup failed, using estimate",
			"error", err,
		)

		detail := ""
		var le *maps.LoadError
		if errors.As(err, &le) {
			detail = le.Message
		}
		return r.estimate(ctx, WarningAPIError, detail)
	}

	r.metrics.IncDistanceLookup(SourceMaps)
	return v.(Result), nil
}

// Reset clears the broken flag.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.broken = false
	r.mu.Unlock()
}

// Broken reports whether the primary provider is currently bypassed.
func (r *Resolver) Broken() bool {
	return r.isBroken()
}

func (r *Resolver) lookup(ctx context.Context, origin, destination string) (Result, error) {
	if r.loader != nil {
		if err := r.loader.EnsureLoaded(ctx); err != nil {
			return Result{}, err
		}
	}

	res, err := r.primary.Distance(ctx, origin, destination)
	if err != nil {
		return Result{}, err
	}

	// Sub-50 m answers round to zero and are never worth replaying.
	if r.cache != nil && res.Km > 0 {
		if err := r.cache.SetDistance(ctx, origin, destination, model.NewCachedDistance(res.Km, res.Duration), r.cacheTTL); err != nil {
			r.logger.Warn("distance cache write failed", "error", err)
		}
	}

	return res, nil
}

func (r *Resolver) cached(ctx context.Context, origin, destination string) (Result, bool) {
	if r.cache == nil {
		return Result{}, false
	}

	d, err := r.cache.GetDistance(ctx, origin, destination)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Debug("distance cache read failed", "error", err)
		}
		return Result{}, false
	}

	km, err := d.KmValue()
	if err != nil || km <= 0 {
		if err := r.cache.DeleteDistance(ctx, origin, destination); err != nil {
			r.logger.Debug("distance cache evict failed", "error", err)
		}
		return Result{}, false
	}

	return Result{Km: km, Duration: d.Duration, Source: SourceCache}, true
}

func (r *Resolver) estimate(ctx context.Context, warning, detail string) (Result, error) {
	res, err := r.fallback.Distance(ctx, "", "")
	if err != nil {
		return Result{}, err
	}

	r.metrics.IncDistanceLookup(SourceFallback)
	res.Estimated = true
	res.Source = SourceFallback
	res.Warning = warning
	res.Detail = detail
	return res, nil
}

func (r *Resolver) isBroken() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.broken {
		return false
	}
	if r.retryInterval > 0 && r.now().Sub(r.brokenAt) >= r.retryInterval {
		r.broken = false
		r.logger.Info("retrying maps distance lookups")
		return false
	}
	return true
}

func (r *Resolver) markBroken() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.broken {
		r.broken = true
		r.brokenAt = r.now()
	}
}
