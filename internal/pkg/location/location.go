package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
)

// Source produces one location reading, blocking until it has one or ctx ends.
type Source interface {
	Fix(ctx context.Context) (geo.LocationFix, error)
	Name() string
}

// Provider implements geo.Provider on top of a Source and a Prompter.
// An answered permission prompt is cached for the process unless ResetPermission
// is called; a prompt that fails is asked again next time.
type Provider struct {
	source   Source
	prompter Prompter
	now      func() time.Time

	mu      sync.Mutex
	asked   bool
	granted bool
	lastFix *geo.LocationFix
}

func NewProvider(source Source, prompter Prompter) *Provider {
	return &Provider{
		source:   source,
		prompter: prompter,
		now:      time.Now,
	}
}

// RequestPermission implements geo.Provider.
func (p *Provider) RequestPermission(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.asked {
		return p.granted
	}

	granted, err := p.prompter.Ask(ctx, PermissionPrompt)
	if err != nil {
		// no answer, so the next request asks again
		slog.Warn("Location permission prompt failed", "error", err)
		return false
	}
	p.asked = true
	p.granted = granted
	slog.Info("Location permission answered", "granted", granted, "source", p.source.Name())
	return granted
}

// ResetPermission forgets the previous answer so the next RequestPermission
// prompts again. It implements geo.PermissionResetter.
func (p *Provider) ResetPermission() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = false
	p.granted = false
}

// GetFix implements geo.Provider.
func (p *Provider) GetFix(ctx context.Context, timeout, maxAge time.Duration) (geo.LocationFix, error) {
	p.mu.Lock()
	granted := p.asked && p.granted
	cached := p.lastFix
	p.mu.Unlock()

	if !granted {
		return geo.LocationFix{}, geo.ErrPermissionDenied
	}

	if cached != nil && maxAge > 0 && cached.Age(p.now()) <= maxAge {
		return *cached, nil
	}

	if timeout <= 0 {
		timeout = geo.DefaultFixTimeout
	}
	fixCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fix, err := p.source.Fix(fixCtx)
	if err != nil {
		if errors.Is(err, geo.ErrPermissionDenied) {
			return geo.LocationFix{}, err
		}
		if errors.Is(fixCtx.Err(), context.DeadlineExceeded) {
			return geo.LocationFix{}, fmt.Errorf("%w: no fix from %s within %s", geo.ErrLocationUnavailable, p.source.Name(), timeout)
		}
		return geo.LocationFix{}, fmt.Errorf("%w: %v", geo.ErrLocationUnavailable, err)
	}
	if err := fix.Coordinate.Validate(); err != nil {
		return geo.LocationFix{}, fmt.Errorf("%w: %v", geo.ErrLocationUnavailable, err)
	}
	if fix.Source == "" {
		fix.Source = p.source.Name()
	}

	p.mu.Lock()
	p.lastFix = &fix
	p.mu.Unlock()

	return fix, nil
}
