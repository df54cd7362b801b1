// Package tolerance implements the kernel's adaptive tolerance manager
// (spec §4.1): a pure function of wall thickness, document precision, local
// angle and operation context, cached for repeat queries and adjustable
// on reported numerical failure.
package tolerance

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Context is the closed sum of operation contexts the tolerance scales
// against (spec §4.1).
type Context string

const (
	ContextVertexMerge   Context = "vertex-merge"
	ContextOffset        Context = "offset"
	ContextBoolean       Context = "boolean"
	ContextShapeHealing  Context = "shape-healing"
	ContextGeneral       Context = "general"
)

func contextFactor(c Context) float64 {
	switch c {
	case ContextVertexMerge:
		return 2.0
	case ContextOffset:
		return 1.0
	case ContextBoolean:
		return 1.5
	case ContextShapeHealing:
		return 3.0
	default:
		return 1.0
	}
}

// angleFactor buckets the local angle (radians) into the spec's bands.
func angleFactor(angleRadians float64) float64 {
	deg := angleRadians * 180 / math.Pi
	switch {
	case deg < 15:
		return 5.0
	case deg < 30:
		return 3.0
	case deg < 60:
		return 1.5
	case deg <= 120:
		return 1.0
	default:
		return 0.8
	}
}

const baseTolerance = 1e-6

// Request carries every input Calculate needs.
type Request struct {
	Thickness    float64
	DocPrecision float64
	LocalAngle   float64 // radians
	Context      Context

	// HasCurvature/Curvature apply the offset-context curvature scaling;
	// HasComplexity/Complexity apply the boolean-context complexity scaling.
	HasCurvature  bool
	Curvature     float64
	HasComplexity bool
	Complexity    float64
}

// FailureAdjustment describes a reported numerical failure used to widen a
// previously computed tolerance.
type FailureAdjustment struct {
	SuggestedAdjustment float64
	Severity            float64
}

// historyEntry records one failure-driven adjustment for diagnostics.
type historyEntry struct {
	At        time.Time
	Request   Request
	Before    float64
	After     float64
	Adjustment FailureAdjustment
}

// Manager computes and caches tolerances. The zero value is not usable; use
// New.
type Manager struct {
	cache *ristretto.Cache

	mu      sync.Mutex
	history []historyEntry
	maxHistory int
}

// New constructs a Manager with an LRU-bounded tolerance cache.
func New() (*Manager, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1 << 16,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("tolerance: creating cache: %w", err)
	}
	return &Manager{cache: cache, maxHistory: 256}, nil
}

// Close releases the manager's cache resources.
func (m *Manager) Close() {
	m.cache.Close()
}

// Calculate returns the adaptive tolerance for req, serving from cache when
// the rounded inputs match a prior call (spec §4.1 caching).
func (m *Manager) Calculate(req Request) float64 {
	key := cacheKey(req)
	if v, found := m.cache.Get(key); found {
		return v.(float64)
	}
	result := calculate(req)
	m.cache.SetWithTTL(key, result, 1, 0)
	m.cache.Wait()
	return result
}

// calculate is the pure core of the tolerance algorithm (spec §4.1), with no
// caching side effects — exported indirectly via Calculate/CalculatePure.
func calculate(req Request) float64 {
	t := baseTolerance

	precisionFactor := math.Max(1, req.DocPrecision*0.01)
	t *= precisionFactor

	thicknessFactor := clamp(math.Sqrt(req.Thickness/100), 0.5, 2.0)
	t *= thicknessFactor

	t *= contextFactor(req.Context)
	t *= angleFactor(req.LocalAngle)

	if req.Context == ContextOffset && req.HasCurvature {
		t *= 1 + math.Log10(1+req.Curvature*1000)
	}
	if req.Context == ContextBoolean && req.HasComplexity && req.Complexity > 0 {
		t *= 1 + math.Log10(req.Complexity)
	}

	lower := math.Max(baseTolerance, t*0.1)
	upper := math.Min(req.DocPrecision*10, t*100)
	return clamp(t, lower, upper)
}

// CalculatePure exposes the cache-free computation, useful for tests and for
// callers that already know they'll miss the cache (e.g. exploring many
// distinct angles).
func CalculatePure(req Request) float64 {
	return calculate(req)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AdjustForFailure widens a previously computed tolerance in response to a
// reported numerical failure, re-clamping against the same request's bounds,
// and appends a bounded history entry (spec §4.1 failure-driven adjustment).
func (m *Manager) AdjustForFailure(req Request, current float64, adj FailureAdjustment) float64 {
	severity := adj.Severity
	if severity < 1 {
		severity = 1
	}
	adjusted := current * (1 + adj.SuggestedAdjustment) * severity

	lower := math.Max(baseTolerance, adjusted*0.1)
	upper := math.Min(req.DocPrecision*10, adjusted*100)
	result := clamp(adjusted, lower, upper)

	m.mu.Lock()
	m.history = append(m.history, historyEntry{
		At: time.Now(), Request: req, Before: current, After: result, Adjustment: adj,
	})
	if len(m.history) > m.maxHistory {
		m.history = m.history[len(m.history)-m.maxHistory:]
	}
	m.mu.Unlock()

	return result
}

// History returns a snapshot of recorded failure-driven adjustments, most
// recent last.
func (m *Manager) History() []historyEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]historyEntry, len(m.history))
	copy(out, m.history)
	return out
}

// FlushOnPrecisionChange clears the cache, used when document precision is
// updated (spec §4.1: "Precision updates flush the cache").
func (m *Manager) FlushOnPrecisionChange() {
	m.cache.Clear()
}

// cacheKey builds a deterministic key from rounded inputs, in the fixed
// mantissa-exponential form the spec requires to avoid locale/formatting
// drift (spec §9).
func cacheKey(req Request) string {
	key := fmt.Sprintf("tol_%.2f_%s_%s_%s",
		req.Thickness,
		mantissaExp(req.DocPrecision),
		mantissaExp(req.LocalAngle),
		req.Context,
	)
	if req.HasCurvature {
		key += "_c" + mantissaExp(req.Curvature)
	}
	if req.HasComplexity {
		key += "_x" + mantissaExp(req.Complexity)
	}
	return key
}

// mantissaExp renders v in a fixed mantissa-exponential form so that
// e.g. 0.001 and 1e-3 hash identically regardless of how the caller wrote
// the literal.
func mantissaExp(v float64) string {
	return fmt.Sprintf("%.6e", v)
}
