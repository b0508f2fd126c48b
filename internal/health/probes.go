package health

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avaprobe/internal/cache"
	"github.com/vyrodovalexey/avaprobe/internal/observability"
)

// ErrCacheMismatch indicates the application cache returned a value
// other than the one written.
var ErrCacheMismatch = errors.New("Cache put/get mismatch") //nolint:revive,staticcheck // response text

const healthTracerName = "avaprobe/health"

// probeFunc contacts one dependency. A non-nil error becomes the
// probe's failure result.
type probeFunc func(ctx context.Context, s *Settings) (ProbeResult, error)

// runProbe is the single point where probe errors and panics are turned
// into results.
func (a *Aggregator) runProbe(
	ctx context.Context,
	s *Settings,
	name string,
	failStatus Status,
	fn probeFunc,
) (result ProbeResult) {
	ctx, span := otel.Tracer(healthTracerName).Start(ctx, "health.probe."+name,
		trace.WithAttributes(attribute.String("health.probe", name)),
	)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = NewProbeResult(failStatus, fmt.Sprintf("probe panicked: %v", r), nil)
		}
		duration := time.Since(start)
		span.SetAttributes(attribute.String("health.status", string(result.Status)))
		if result.Status != StatusOK {
			span.SetStatus(codes.Error, result.Message)
			a.logger.WithContext(ctx).Warn("health probe failed",
				observability.String("probe", name),
				observability.String("status", string(result.Status)),
				observability.String("message", result.Message),
				observability.Duration("duration", duration),
			)
		}
		span.End()
		a.metrics.observe(name, result, duration)
	}()

	if s.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ProbeTimeout)
		defer cancel()
	}

	res, err := fn(ctx, s)
	if err != nil {
		span.RecordError(err)
		return NewProbeResult(failStatus, err.Error(), nil)
	}
	return res
}

func (a *Aggregator) probeDatabasePing(ctx context.Context, _ *Settings) (ProbeResult, error) {
	if a.db == nil {
		return ProbeResult{}, ErrNilDependency
	}
	if err := a.db.Ping(ctx); err != nil {
		return ProbeResult{}, err
	}
	return NewProbeResult(StatusOK, "", nil), nil
}

func (a *Aggregator) probeDatabaseQuery(ctx context.Context, s *Settings) (ProbeResult, error) {
	if _, err := a.probeDatabasePing(ctx, s); err != nil {
		return ProbeResult{}, err
	}
	start := time.Now()
	if err := a.db.SelectOne(ctx); err != nil {
		return ProbeResult{}, err
	}
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	return NewProbeResult(StatusOK, "", map[string]any{
		"query_time_ms": round2(elapsed),
	}), nil
}

func (a *Aggregator) probeBackend(ctx context.Context, _ *Settings) (ProbeResult, error) {
	if a.backend == nil {
		return ProbeResult{}, ErrNilDependency
	}
	if err := a.backend.Ping(ctx); err != nil {
		return ProbeResult{}, err
	}
	return NewProbeResult(StatusOK, "", nil), nil
}

func (a *Aggregator) probeCacheWrite(ctx context.Context, s *Settings) (ProbeResult, error) {
	if a.cache == nil {
		return ProbeResult{}, ErrNilDependency
	}
	key := s.CacheKeyPrefix + uuid.NewString()
	if err := a.cache.Set(ctx, key, []byte(readySentinelValue), s.CacheTTL); err != nil {
		return ProbeResult{}, err
	}
	return NewProbeResult(StatusOK, "", nil), nil
}

func (a *Aggregator) probeCacheRoundTrip(ctx context.Context, s *Settings) (ProbeResult, error) {
	if a.cache == nil {
		return ProbeResult{}, ErrNilDependency
	}
	key := s.CacheKeyPrefix + uuid.NewString()
	if err := a.cache.Set(ctx, key, []byte(reportSentinelValue), s.CacheTTL); err != nil {
		return ProbeResult{}, err
	}
	value, getErr := a.cache.Get(ctx, key)
	delErr := a.cache.Delete(ctx, key)

	switch {
	case errors.Is(getErr, cache.ErrCacheMiss):
		return ProbeResult{}, ErrCacheMismatch
	case getErr != nil:
		return ProbeResult{}, getErr
	case delErr != nil:
		return ProbeResult{}, delErr
	case string(value) != reportSentinelValue:
		return ProbeResult{}, ErrCacheMismatch
	}
	return NewProbeResult(StatusOK, "", nil), nil
}

func (a *Aggregator) probeDisk(_ context.Context, s *Settings) (ProbeResult, error) {
	if a.disk == nil {
		return ProbeResult{}, ErrNilDependency
	}
	usage, err := a.disk.Usage(s.StoragePath)
	if err != nil {
		return ProbeResult{}, err
	}
	if usage.Total == 0 {
		return ProbeResult{}, fmt.Errorf("volume at %s reports zero capacity", s.StoragePath)
	}
	free := min(usage.Free, usage.Total)

	used := float64(usage.Total-free) / float64(usage.Total) * 100
	status := DiskStatus(used, s.DiskWarningPercent, s.DiskErrorPercent)

	var message string
	if status != StatusOK {
		message = fmt.Sprintf("disk usage %.2f%%, %s free of %s",
			used, humanize.IBytes(free), humanize.IBytes(usage.Total))
	}
	return NewProbeResult(status, message, map[string]any{
		"total_gb":     round2(float64(usage.Total) / bytesPerGB),
		"free_gb":      round2(float64(free) / bytesPerGB),
		"used_percent": round2(used),
	}), nil
}

// DiskStatus classifies a used percentage. Thresholds are exclusive: a
// value equal to a threshold stays in the lower band.
func DiskStatus(usedPercent, warnPercent, errorPercent float64) Status {
	switch {
	case usedPercent > errorPercent:
		return StatusError
	case usedPercent > warnPercent:
		return StatusWarning
	default:
		return StatusOK
	}
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
