package loop

import (
	"context"
	"testing"
	"time"

	"vision-agent/internal/domain/entity"
	"vision-agent/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exploreFrame() []entity.Element {
	return []entity.Element{
		mocks.Button("b1", "One", 0, 0, 10, 10),
		mocks.Button("b2", "Two", 10, 0, 20, 10),
		mocks.Link("l1", "Three"),
		mocks.Link("l2", "Four"),
	}
}

func TestExplore_RunsExactlyMaxActions(t *testing.T) {
	f := newFixture(t, mocks.NewDetector(exploreFrame()), nil)

	log := f.loop.Explore(context.Background(), entity.ExploreOptions{MaxActions: 3, WaitTime: 10 * time.Millisecond})

	require.Equal(t, 3, log.Len())
	for i, step := range log.Steps {
		assert.Equal(t, i, step.Index)
		assert.NotEmpty(t, step.Summary)
		assert.NotEmpty(t, step.CaptureID)
		assert.True(t, step.Success)
	}
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond}, f.waits)
	assert.Equal(t, 0, f.history.Len(), "exploration does not write the action history")
}

func TestExplore_SamplesFromTopThree(t *testing.T) {
	f := newFixture(t, mocks.NewDetector(exploreFrame()), nil)
	f.random.Values = []int{0, 1, 2}

	log := f.loop.Explore(context.Background(), entity.ExploreOptions{MaxActions: 3, WaitTime: time.Millisecond})

	require.Equal(t, 3, log.Len())
	assert.Equal(t, []int{3, 3, 3}, f.random.Seen)
	clicks := f.surface.Clicks()
	require.Len(t, clicks, 2, "l1 maps to interact which does not click")
	assert.Equal(t, mocks.Call{Op: "click", X: 5, Y: 5}, clicks[0])
	assert.Equal(t, mocks.Call{Op: "click", X: 15, Y: 5}, clicks[1])
	assert.Equal(t, entity.ActionInteract, log.Steps[2].Action)
	assert.Equal(t, "b1", log.Steps[0].Target.ID)
	assert.Equal(t, "b2", log.Steps[1].Target.ID)
	assert.Equal(t, "l1", log.Steps[2].Target.ID)
}

func TestExplore_FewerCandidatesThanK(t *testing.T) {
	f := newFixture(t, mocks.NewDetector([]entity.Element{mocks.Button("only", "Only", 0, 0, 2, 2)}), nil)
	f.random.Values = []int{7}

	log := f.loop.Explore(context.Background(), entity.ExploreOptions{MaxActions: 2, WaitTime: time.Millisecond})

	assert.Equal(t, 2, log.Len())
	assert.Equal(t, []int{1, 1}, f.random.Seen)
}

func TestExplore_StopsEarlyWhenEmpty(t *testing.T) {
	detector := mocks.NewDetector(exploreFrame(), []entity.Element{})
	f := newFixture(t, detector, nil)

	log := f.loop.Explore(context.Background(), entity.ExploreOptions{MaxActions: 5, WaitTime: time.Millisecond})

	assert.Equal(t, 1, log.Len())
	assert.Equal(t, 2, detector.Calls)
}

func TestExplore_Defaults(t *testing.T) {
	f := newFixture(t, mocks.NewDetector(exploreFrame()), nil)

	log := f.loop.Explore(context.Background(), entity.ExploreOptions{})

	assert.Equal(t, entity.DefaultExploreMaxActions, log.Len())
	require.NotEmpty(t, f.waits)
	assert.Equal(t, entity.DefaultExploreWait, f.waits[0])
}

func TestExplore_IgnoresGoal(t *testing.T) {
	f := newFixture(t, mocks.NewDetector(exploreFrame()), nil)
	require.NoError(t, f.tracker.SetGoal(entity.Goal{Description: "four", Keywords: []string{"four"}, MaxSteps: 1}))
	f.random.Values = []int{0}

	f.loop.Explore(context.Background(), entity.ExploreOptions{MaxActions: 2, WaitTime: time.Millisecond})

	g, _ := f.tracker.Current()
	assert.Equal(t, 0, g.CurrentStep)
	clicks := f.surface.Clicks()
	require.Len(t, clicks, 2)
	assert.Equal(t, 5.0, clicks[0].X, "keyword bonus would have ranked l2 first")
}

func TestExplore_ContinuesAfterFailedAction(t *testing.T) {
	f := newFixture(t, mocks.NewDetector(exploreFrame()), nil)
	f.surface.ClickErr = func(n int) error {
		if n == 1 {
			return assert.AnError
		}
		return nil
	}

	log := f.loop.Explore(context.Background(), entity.ExploreOptions{MaxActions: 2, WaitTime: time.Millisecond})

	require.Equal(t, 2, log.Len())
	assert.False(t, log.Steps[0].Success)
	assert.True(t, log.Steps[1].Success)
}
