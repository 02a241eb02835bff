package agent

import (
	"context"
	"fmt"
	"sync"

	"vision-agent/internal/application/port/input"
	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"

	"github.com/google/uuid"
)

// Builder assembles an agent around a freshly acquired surface.
type Builder func(surface output.SurfacePort) (*Agent, error)

// Host keeps at most one active agent. Starting a new one cancels the
// previous handle and then releases its surface. Concurrent Starts run one
// after another.
type Host struct {
	startMu  sync.Mutex
	mu       sync.Mutex
	provider output.SurfaceProvider
	build    Builder
	logger   output.LoggerPort
	active   *Handle
}

func NewHost(provider output.SurfaceProvider, build Builder, logger output.LoggerPort) *Host {
	return &Host{
		provider: provider,
		build:    build,
		logger:   logger,
	}
}

func (h *Host) Start(ctx context.Context) (*Handle, error) {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	h.mu.Lock()
	prev := h.active
	h.active = nil
	h.mu.Unlock()

	if prev != nil {
		h.logger.Info("Replacing active agent", "agent", prev.ID)
		if err := prev.shutdown(); err != nil {
			h.logger.Warn("Previous agent cleanup failed", "agent", prev.ID, "error", err)
		}
	}

	surface, err := h.provider.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire surface: %w", err)
	}

	handle, err := h.newHandle(surface)
	if err != nil {
		if relErr := surface.Release(); relErr != nil {
			h.logger.Warn("Surface release after failed start", "error", relErr)
		}
		return nil, err
	}

	h.mu.Lock()
	stale := h.active
	h.active = handle
	h.mu.Unlock()

	if stale != nil {
		if err := stale.shutdown(); err != nil {
			h.logger.Warn("Displaced agent cleanup failed", "agent", stale.ID, "error", err)
		}
	}

	h.logger.Info("Agent started", "agent", handle.ID)
	return handle, nil
}

func (h *Host) newHandle(surface output.SurfacePort) (handle *Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build agent: %v", r)
		}
	}()

	a, err := h.build(surface)
	if err != nil {
		return nil, fmt.Errorf("build agent: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("build agent: builder returned nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Handle{
		ID:     uuid.NewString(),
		agent:  a,
		host:   h,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (h *Host) Active() *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Stop cancels and releases handle, clearing the active slot if it holds it.
func (h *Host) Stop(handle *Handle) error {
	if handle == nil {
		return nil
	}
	h.mu.Lock()
	if h.active == handle {
		h.active = nil
	}
	h.mu.Unlock()
	return handle.shutdown()
}

func (h *Host) Close() error {
	return h.Stop(h.Active())
}

var _ input.AgentService = (*Handle)(nil)

// Handle is the caller's reference to a started agent. Every blocking call
// made through it stops when the handle is cancelled.
type Handle struct {
	ID string

	agent  *Agent
	host   *Host
	ctx    context.Context
	cancel context.CancelFunc
}

func (h *Handle) Agent() *Agent {
	return h.agent
}

// Done is closed once the handle has been cancelled.
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

func (h *Handle) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(h.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (h *Handle) SetGoal(g entity.Goal) error {
	return h.agent.SetGoal(g)
}

func (h *Handle) ExecuteGoal(ctx context.Context) (*entity.GoalResult, error) {
	ctx, release := h.bind(ctx)
	defer release()
	return h.agent.ExecuteGoal(ctx)
}

func (h *Handle) AutonomousExplore(ctx context.Context, opts entity.ExploreOptions) (*entity.ExplorationLog, error) {
	ctx, release := h.bind(ctx)
	defer release()
	return h.agent.AutonomousExplore(ctx, opts)
}

func (h *Handle) IdentifyAndClickIcon(ctx context.Context, name string) (entity.ActionOutcome, error) {
	ctx, release := h.bind(ctx)
	defer release()
	return h.agent.IdentifyAndClickIcon(ctx, name)
}

func (h *Handle) Navigate(ctx context.Context, url string) error {
	ctx, release := h.bind(ctx)
	defer release()
	return h.agent.Navigate(ctx, url)
}

func (h *Handle) ActionHistory() []entity.ActionOutcome {
	return h.agent.ActionHistory()
}

// Cleanup cancels the handle and releases its surface.
func (h *Handle) Cleanup() error {
	if h.host != nil {
		return h.host.Stop(h)
	}
	return h.shutdown()
}

func (h *Handle) shutdown() error {
	h.cancel()
	return h.agent.Cleanup()
}
