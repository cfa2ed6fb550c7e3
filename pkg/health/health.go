// Package health exposes liveness and readiness probes over HTTP.
//
// Probes run on a background ticker. To keep Kubernetes from flapping a pod
// on a single slow round-trip, a probe flips to unhealthy only after
// failureThreshold consecutive failures, and back to healthy after
// successThreshold consecutive successes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports whether a single component is healthy.
type CheckFunc func(ctx context.Context) error

const (
	defaultFailureThreshold = 3
	defaultSuccessThreshold = 1
)

// probe is one registered check plus its rolling state. State is guarded by
// mu: the ticker goroutine writes it, HTTP handlers read it.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	mu      sync.Mutex
	healthy bool
	lastErr error
	fails   int
	oks     int
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	return &probe{
		name:    name,
		timeout: timeout,
		check:   check,
		healthy: true, // optimistic until the first tick says otherwise
	}
}

func (p *probe) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErr = err
	if err != nil {
		p.oks = 0
		p.fails++
		if p.fails >= defaultFailureThreshold {
			p.healthy = false
		}
		return
	}
	p.fails = 0
	p.oks++
	if p.oks >= defaultSuccessThreshold {
		p.healthy = true
	}
}

// status returns the probe's current health and, when unhealthy, a message.
func (p *probe) status() (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.healthy {
		return true, ""
	}
	if p.lastErr != nil {
		return false, p.lastErr.Error()
	}
	return false, "check is unhealthy"
}

// Health runs registered probes and serves /livez and /readyz style handlers.
type Health struct {
	ready atomic.Bool

	mu       sync.Mutex
	liveness []*probe
	readiness []*probe
	cancel   context.CancelFunc
}

// New returns a Health in the not-ready state. Call SetReady(true) once
// startup finishes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a probe answering "is this process stuck".
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a probe answering "can this process serve
// traffic", e.g. database or object-store connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newProbe(name, timeout, check))
}

// Start launches one goroutine per registered probe, each ticking at
// interval. Register all probes before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := append(append([]*probe(nil), h.liveness...), h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go func(p *probe) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.tick(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.tick(ctx)
				}
			}
		}(p)
	}
}

// Stop cancels the probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Shutdown sets it to false first
// so load balancers drain the instance before the listener closes.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}

	h.mu.Lock()
	probes := h.readiness
	h.mu.Unlock()

	for _, p := range probes {
		if ok, _ := p.status(); !ok {
			return false
		}
	}
	return true
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves the liveness probe: 200 while all liveness checks
// pass, 503 with per-check messages otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	probes := append([]*probe(nil), h.liveness...)
	h.mu.Unlock()

	writeProbe(w, failures(probes))
}

// ReadyEndpoint serves the readiness probe. The manual gate set via SetReady
// counts as one more condition on top of the registered checks.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	probes := append([]*probe(nil), h.readiness...)
	h.mu.Unlock()

	failed := failures(probes)
	if !h.ready.Load() {
		failed["_readiness"] = "service is not ready"
	}
	writeProbe(w, failed)
}

func failures(probes []*probe) map[string]string {
	failed := make(map[string]string)
	for _, p := range probes {
		if ok, msg := p.status(); !ok {
			failed[p.name] = msg
		}
	}
	return failed
}

func writeProbe(w http.ResponseWriter, failed map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := probeResponse{Status: "ok"}
	code := http.StatusOK
	if len(failed) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failed
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
