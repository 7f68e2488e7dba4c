// Package monitor re-fetches targets on a fixed interval and reports
// content-signature drift through a caller-supplied callback. The poller owns
// all of its state: the target list and the target→signature baseline map.
package monitor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vigia-scan/vigia/internal/probe"
	"github.com/vigia-scan/vigia/internal/shared/constants"
	sharederrors "github.com/vigia-scan/vigia/internal/shared/errors"
	"github.com/vigia-scan/vigia/internal/signature"
)

// Check status values reported to the callback.
const (
	StatusOK         = "OK"
	StatusError      = "ERROR"
	StatusNoBaseline = "NO_BASELINE"
)

// CheckStatus is the per-target outcome of one polling cycle.
type CheckStatus struct {
	Status            string       `json:"status"`
	Changed           bool         `json:"changed"`
	Timestamp         string       `json:"timestamp"`
	CurrentSignature  string       `json:"current_hash,omitempty"`
	BaselineSignature string       `json:"baseline_hash,omitempty"`
	Error             string       `json:"error,omitempty"`
	Event             *ChangeEvent `json:"change,omitempty"`
}

// Callback receives the outcome of every target check, including errors.
type Callback func(target string, status CheckStatus)

// Options configures a Poller. Zero values fall back to defaults.
type Options struct {
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int // 1 = sequential sweeps
	RateLimit   int // requests per second across a concurrent sweep
	UserAgent   string
	Logger      *zap.SugaredLogger
}

// Poller checks a fixed set of targets for signature drift. The baseline map
// has a single writer (the sweep); the mutex only matters when sweeps fan out
// across targets.
type Poller struct {
	targets     []string
	interval    time.Duration
	timeout     time.Duration
	concurrency int
	limiter     *rate.Limiter
	userAgent   string
	logger      *zap.SugaredLogger
	client      *http.Client

	mu         sync.Mutex
	signatures map[string]string

	cbMu sync.Mutex
}

// NewPoller builds a poller for the given targets.
func NewPoller(targets []string, opts Options) (*Poller, error) {
	if len(targets) == 0 {
		return nil, sharederrors.ErrNoTargets
	}

	if opts.Interval <= 0 {
		opts.Interval = constants.DefaultMonitorInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultHTTPTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = opts.Concurrency
	}
	if opts.UserAgent == "" {
		opts.UserAgent = constants.MonitorUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	return &Poller{
		targets:     targets,
		interval:    opts.Interval,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		limiter:     rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit),
		userAgent:   opts.UserAgent,
		logger:      opts.Logger,
		client:      &http.Client{Timeout: opts.Timeout},
		signatures:  make(map[string]string, len(targets)),
	}, nil
}

// Targets returns the monitored target list.
func (p *Poller) Targets() []string {
	return p.targets
}

// Run establishes a baseline for every target once, then sweeps all targets
// every interval until the context is canceled. In-flight checks finish; the
// loop stops before the next sleep completes.
func (p *Poller) Run(ctx context.Context, cb Callback) error {
	p.EstablishBaselines(ctx)

	for {
		p.sweep(ctx, cb)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}

// EstablishBaselines records the current signature of every target. Targets
// that cannot be reached stay baseline-less and report NO_BASELINE until a
// later sweep observes them.
func (p *Poller) EstablishBaselines(ctx context.Context) {
	for _, target := range p.targets {
		obs, err := p.observe(ctx, target)
		if err != nil {
			p.logger.Warnw("baseline failed", "target", target, "error", err)
			continue
		}
		p.setBaseline(target, obs.Signature)
		p.logger.Infow("baseline established", "target", target, "signature", obs.Signature)
	}
}

func (p *Poller) sweep(ctx context.Context, cb Callback) {
	if p.concurrency <= 1 {
		for _, target := range p.targets {
			p.report(cb, target, p.CheckTarget(ctx, target))
		}
		return
	}

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for _, target := range p.targets {
		wg.Add(1)
		go func(t string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			_ = p.limiter.Wait(ctx)

			p.report(cb, t, p.CheckTarget(ctx, t))
		}(target)
	}

	wg.Wait()
}

// report serializes callback invocations so concurrent sweeps do not
// interleave the caller's output.
func (p *Poller) report(cb Callback, target string, status CheckStatus) {
	if cb == nil {
		return
	}
	p.cbMu.Lock()
	defer p.cbMu.Unlock()
	cb(target, status)
}

// CheckTarget performs one check of a single target and updates the baseline
// when a change is detected.
func (p *Poller) CheckTarget(ctx context.Context, target string) CheckStatus {
	now := time.Now().UTC().Format(time.RFC3339)

	obs, err := p.observe(ctx, target)
	if err != nil {
		return CheckStatus{Status: StatusError, Changed: false, Timestamp: now, Error: err.Error()}
	}

	baseline, ok := p.baseline(target)
	if !ok {
		// Adopt the first successful observation so the next sweep has a
		// comparison point.
		p.setBaseline(target, obs.Signature)
		return CheckStatus{
			Status:           StatusNoBaseline,
			Changed:          false,
			Timestamp:        now,
			CurrentSignature: obs.Signature,
		}
	}

	status := CheckStatus{
		Status:            StatusOK,
		Changed:           obs.Signature != baseline,
		Timestamp:         now,
		CurrentSignature:  obs.Signature,
		BaselineSignature: baseline,
	}

	if status.Changed {
		status.Event = Classify(target, baseline, obs.Signature, obs)
		p.setBaseline(target, obs.Signature)
	}

	return status
}

// observe fetches the target once and reduces the response to an Observation.
// Certificate signal gathering is best effort: its absence degrades the
// classifier input, never the check itself.
func (p *Poller) observe(ctx context.Context, target string) (Observation, error) {
	info, err := probe.ParseTarget(target)
	if err != nil {
		return Observation{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.FullURL, nil)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %v", sharederrors.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %v", sharederrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxBodyBytes))
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %v", sharederrors.ErrNetwork, err)
	}

	sig := signature.Build(signature.Descriptor{
		StatusCode:    resp.StatusCode,
		ContentLength: len(body),
		ContentType:   resp.Header.Get("Content-Type"),
		LastModified:  resp.Header.Get("Last-Modified"),
		ETag:          resp.Header.Get("ETag"),
		Body:          body,
	})

	obs := Observation{
		Signature:      sig,
		StatusCode:     resp.StatusCode,
		MissingHeaders: probe.MissingMonitorHeaders(resp.Header),
	}

	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		cert := resp.TLS.PeerCertificates[0]
		obs.Cert = &CertSignals{
			DaysToExpiry: int(time.Until(cert.NotAfter).Hours() / 24),
			SelfSigned:   probe.IsSelfSigned(cert),
		}
	}

	return obs, nil
}

func (p *Poller) baseline(target string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sig, ok := p.signatures[target]
	return sig, ok
}

func (p *Poller) setBaseline(target, sig string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signatures[target] = sig
}

// Baselines returns a copy of the current target→signature map.
func (p *Poller) Baselines() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.signatures))
	for k, v := range p.signatures {
		out[k] = v
	}
	return out
}
