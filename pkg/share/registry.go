package share

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder creates a Target from a config entry.
type Builder func(ctx context.Context, cfg TargetConfig, log Logger) (Target, error)

// Registry maps target types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	TargetFor(ctx context.Context, cfg TargetConfig, log Logger) (Target, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a target type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// TargetFor returns the target built for the provided config.
func (r *registry) TargetFor(ctx context.Context, cfg TargetConfig, log Logger) (Target, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("share target %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no share target registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// DefaultRegistry wires up the known target types.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:  newHTTPTarget,
		TypeQueue: newQueueTarget,
	})
}

// BuildAll instantiates the enabled targets in cfgs.
func BuildAll(ctx context.Context, reg Registry, cfgs []TargetConfig, log Logger) ([]Target, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	var targets []Target
	for _, cfg := range cfgs {
		if !cfg.EnabledValue() {
			continue
		}
		t, err := reg.TargetFor(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}
