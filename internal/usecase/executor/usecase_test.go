package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"vision-agent/internal/domain/entity"
	"vision-agent/internal/infrastructure/logger"
	"vision-agent/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestUseCase(surface *mocks.Surface, sleeps *sleepRecorder) *UseCase {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return New(surface, logger.NewNop(), Config{
		SettleDelay: 500 * time.Millisecond,
		Now:         func() time.Time { return fixed },
		Sleep:       sleeps.Sleep,
	})
}

func actionOf(typ entity.ActionType) entity.Action {
	return entity.Action{
		Type:     typ,
		Target:   mocks.Button("b1", "Go", 100, 200, 300, 260),
		Priority: 90,
	}
}

func TestExecute_ClickTypesClickAtCenter(t *testing.T) {
	for _, typ := range []entity.ActionType{
		entity.ActionClick, entity.ActionSubmit, entity.ActionNavigate, entity.ActionExpand, entity.ActionConfigure,
	} {
		t.Run(string(typ), func(t *testing.T) {
			surface := mocks.NewSurface()
			sleeps := &sleepRecorder{}
			uc := newTestUseCase(surface, sleeps)

			out := uc.Execute(context.Background(), actionOf(typ))

			assert.True(t, out.Success)
			assert.Empty(t, out.Error)
			require.Len(t, surface.Calls, 1)
			assert.Equal(t, mocks.Call{Op: "click", X: 200, Y: 230}, surface.Calls[0])
			assert.Equal(t, []time.Duration{500 * time.Millisecond}, sleeps.delays)
		})
	}
}

func TestExecute_HoverMovesWithoutClick(t *testing.T) {
	surface := mocks.NewSurface()
	uc := newTestUseCase(surface, &sleepRecorder{})

	out := uc.Execute(context.Background(), actionOf(entity.ActionHover))

	assert.True(t, out.Success)
	require.Len(t, surface.Calls, 1)
	assert.Equal(t, "move", surface.Calls[0].Op)
	assert.Empty(t, surface.Clicks())
}

func TestExecute_InteractIsNoopSuccess(t *testing.T) {
	surface := mocks.NewSurface()
	sleeps := &sleepRecorder{}
	uc := newTestUseCase(surface, sleeps)

	out := uc.Execute(context.Background(), actionOf(entity.ActionInteract))

	assert.True(t, out.Success)
	assert.Empty(t, surface.Calls)
	assert.Len(t, sleeps.delays, 1)
}

func TestExecute_ClickErrorBecomesFailedOutcome(t *testing.T) {
	surface := mocks.NewSurface()
	surface.ClickErr = func(int) error { return errors.New("target detached") }
	sleeps := &sleepRecorder{}
	uc := newTestUseCase(surface, sleeps)

	out := uc.Execute(context.Background(), actionOf(entity.ActionClick))

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "actuation failure")
	assert.Contains(t, out.Error, "target detached")
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), out.Timestamp)
	assert.Len(t, sleeps.delays, 1, "settle delay applies after failures too")
}

func TestExecute_PanicIsRecovered(t *testing.T) {
	surface := mocks.NewSurface()
	surface.ClickPanic = true
	uc := newTestUseCase(surface, &sleepRecorder{})

	var out entity.ActionOutcome
	require.NotPanics(t, func() {
		out = uc.Execute(context.Background(), actionOf(entity.ActionSubmit))
	})
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "surface exploded")
}

func TestExecute_MoveError(t *testing.T) {
	surface := mocks.NewSurface()
	surface.MoveErr = errors.New("no pointer")
	uc := newTestUseCase(surface, &sleepRecorder{})

	out := uc.Execute(context.Background(), actionOf(entity.ActionHover))

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "no pointer")
}

func TestExecute_ZeroSettleDelaySkipsSleep(t *testing.T) {
	surface := mocks.NewSurface()
	sleeps := &sleepRecorder{}
	uc := New(surface, logger.NewNop(), Config{Sleep: sleeps.Sleep})

	uc.Execute(context.Background(), actionOf(entity.ActionClick))

	assert.Empty(t, sleeps.delays)
}

func TestSleep_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, Sleep(context.Background(), 0))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, defaultSettleDelay, cfg.SettleDelay)
	assert.NotNil(t, cfg.Now)
	assert.NotNil(t, cfg.Sleep)
}
