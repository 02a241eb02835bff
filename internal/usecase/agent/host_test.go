package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
	"vision-agent/internal/infrastructure/logger"
	"vision-agent/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// blockingDetector parks Detect until the caller's context ends.
type blockingDetector struct {
	once    sync.Once
	entered chan struct{}
}

func newBlockingDetector() *blockingDetector {
	return &blockingDetector{entered: make(chan struct{})}
}

func (d *blockingDetector) Detect(ctx context.Context, _ *entity.Capture) ([]entity.Element, error) {
	d.once.Do(func() { close(d.entered) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestHost(provider *mocks.SurfaceProvider, detector output.DetectorPort) *Host {
	log := logger.NewNop()
	return NewHost(provider, func(surface output.SurfacePort) (*Agent, error) {
		return New(surface, detector, nil, log, nil, testConfig()), nil
	}, log)
}

func TestHost_StartReturnsActiveHandle(t *testing.T) {
	provider := &mocks.SurfaceProvider{}
	host := newTestHost(provider, mocks.NewDetector(iconFrame()))

	h, err := host.Start(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Same(t, h, host.Active())
	require.NoError(t, h.SetGoal(entity.Goal{Description: "menu", Keywords: []string{"menu"}, MaxSteps: 1}))
	result, err := h.ExecuteGoal(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Outcomes, 1)
	assert.Len(t, h.ActionHistory(), 1)

	require.NoError(t, h.Cleanup())
	assert.Nil(t, host.Active())
	assert.Equal(t, 1, provider.Acquired[0].ReleaseCount())
}

func TestHost_StartReplacesPreviousAgent(t *testing.T) {
	provider := &mocks.SurfaceProvider{}
	host := newTestHost(provider, mocks.NewDetector(iconFrame()))

	first, err := host.Start(context.Background())
	require.NoError(t, err)
	second, err := host.Start(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Same(t, second, host.Active())
	select {
	case <-first.Done():
	default:
		t.Fatal("previous handle was not cancelled")
	}
	assert.Equal(t, 1, provider.Acquired[0].ReleaseCount())
	assert.Equal(t, 0, provider.Acquired[1].ReleaseCount())

	_, err = first.ExecuteGoal(context.Background())
	assert.ErrorIs(t, err, entity.ErrAgentClosed)

	require.NoError(t, host.Close())
	assert.Equal(t, 1, provider.Acquired[1].ReleaseCount())
}

func TestHost_ReplacementCancelsInFlightGoal(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := &mocks.SurfaceProvider{}
	detector := newBlockingDetector()
	host := newTestHost(provider, detector)

	first, err := host.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, first.SetGoal(entity.Goal{Description: "x"}))

	done := make(chan *entity.GoalResult, 1)
	go func() {
		result, _ := first.ExecuteGoal(context.Background())
		done <- result
	}()

	select {
	case <-detector.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("goal run never reached detection")
	}

	second, err := host.Start(context.Background())
	require.NoError(t, err)

	select {
	case result := <-done:
		require.NotNil(t, result)
		assert.Equal(t, entity.RunStateAborted, result.State)
		assert.Equal(t, entity.ReasonCancelled, result.Reason)
		assert.Empty(t, result.Outcomes)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight goal was not cancelled")
	}

	require.NoError(t, host.Stop(second))
}

// slowProvider widens the window between acquiring a surface and
// installing the handle.
type slowProvider struct {
	*mocks.SurfaceProvider
	delay time.Duration
}

func (p slowProvider) Acquire(ctx context.Context) (output.SurfacePort, error) {
	s, err := p.SurfaceProvider.Acquire(ctx)
	time.Sleep(p.delay)
	return s, err
}

func TestHost_ConcurrentStartsKeepOneLiveSurface(t *testing.T) {
	provider := &mocks.SurfaceProvider{}
	log := logger.NewNop()
	detector := mocks.NewDetector(iconFrame())
	host := NewHost(slowProvider{SurfaceProvider: provider, delay: 20 * time.Millisecond}, func(surface output.SurfacePort) (*Agent, error) {
		return New(surface, detector, nil, log, nil, testConfig()), nil
	}, log)

	const starts = 4
	handles := make([]*Handle, starts)
	var wg sync.WaitGroup
	for i := 0; i < starts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := host.Start(context.Background())
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	active := host.Active()
	require.NotNil(t, active)
	require.Len(t, provider.Acquired, starts)

	live := 0
	for _, s := range provider.Acquired {
		if s.ReleaseCount() == 0 {
			live++
		}
	}
	assert.Equal(t, 1, live, "only the active agent may hold a surface")

	for _, h := range handles {
		if h == active {
			continue
		}
		select {
		case <-h.Done():
		default:
			t.Fatal("displaced handle was not cancelled")
		}
	}

	require.NoError(t, host.Close())
	for i, s := range provider.Acquired {
		assert.Equal(t, 1, s.ReleaseCount(), "surface %d", i)
	}
}

func TestHost_AcquireFailure(t *testing.T) {
	provider := &mocks.SurfaceProvider{Err: errors.New("no browser")}
	host := newTestHost(provider, mocks.NewDetector())

	h, err := host.Start(context.Background())

	assert.Error(t, err)
	assert.Nil(t, h)
	assert.Nil(t, host.Active())
}

func TestHost_BuilderPanicReleasesSurface(t *testing.T) {
	provider := &mocks.SurfaceProvider{}
	host := NewHost(provider, func(output.SurfacePort) (*Agent, error) {
		panic("bad wiring")
	}, logger.NewNop())

	h, err := host.Start(context.Background())

	assert.Error(t, err)
	assert.Nil(t, h)
	require.Len(t, provider.Acquired, 1)
	assert.Equal(t, 1, provider.Acquired[0].ReleaseCount())
}

func TestHost_BuilderErrorReleasesSurface(t *testing.T) {
	provider := &mocks.SurfaceProvider{}
	boom := errors.New("unknown detector")
	host := NewHost(provider, func(output.SurfacePort) (*Agent, error) {
		return nil, boom
	}, logger.NewNop())

	h, err := host.Start(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, h)
	require.Len(t, provider.Acquired, 1)
	assert.Equal(t, 1, provider.Acquired[0].ReleaseCount())
	assert.Nil(t, host.Active())
}

func TestHost_StopNil(t *testing.T) {
	host := newTestHost(&mocks.SurfaceProvider{}, mocks.NewDetector())

	assert.NoError(t, host.Stop(nil))
	assert.NoError(t, host.Close())
}
