package pipeline

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/colorfulnotion/intcode/storage"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// chainProgram outputs input*10 + phase and halts.
var chainProgram = []int64{3, 15, 3, 16, 1002, 16, 10, 16, 1, 16, 15, 15, 4, 15, 99, 0, 0}

// loopProgram keeps doubling and adding its phase offset for five rounds.
var loopProgram = []int64{3, 26, 1001, 26, -4, 26, 3, 27, 1002, 27, 2, 27, 1, 27, 26,
	27, 4, 27, 1001, 28, -1, 28, 1005, 28, 6, 99, 0, 0, 5}

func TestRunFeedbackChain(t *testing.T) {
	signal, err := RunFeedback(context.Background(), chainProgram, []int64{4, 3, 2, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, int64(43210), signal)

	signal, err = RunFeedback(context.Background(), chainProgram, []int64{4, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(432), signal)
}

func TestRunFeedbackLoop(t *testing.T) {
	signal, err := RunFeedback(context.Background(), loopProgram, []int64{9, 8, 7, 6, 5})
	require.NoError(t, err)
	assert.Equal(t, int64(139629729), signal)
}

func TestThreeStageLoopIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		n, err := NewNetwork(loopProgram, []int64{9, 8, 7})
		require.NoError(t, err)
		signal, err := n.Run(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(145111), signal)
		assert.Equal(t, 6, n.Rounds())
		for _, vm := range n.Stages() {
			assert.Equal(t, "halted", vm.State().String())
		}
	}
}

// burstProgram reads a phase and a signal, emits phase+signal twice, then reads two
// more signals and emits their sum.
var burstProgram = []int64{3, 100, 3, 101, 1, 100, 101, 102, 4, 102, 4, 102,
	3, 103, 3, 104, 1, 103, 104, 105, 4, 105, 99}

func TestStageOutputsAreQueued(t *testing.T) {
	n, err := NewNetwork(burstProgram, []int64{1, 10})
	require.NoError(t, err)
	signal, err := n.Run(context.Background(), 0)
	require.NoError(t, err)
	// stage 1 sums the second burst value of stage 0 (1) and its final sum (22)
	assert.Equal(t, int64(23), signal)
	assert.Equal(t, 5, n.Rounds())
	for _, vm := range n.Stages() {
		assert.Equal(t, "halted", vm.State().String())
	}
}

func TestNetworkErrors(t *testing.T) {
	_, err := NewNetwork(chainProgram, nil)
	assert.ErrorIs(t, err, vmerrors.ErrEmptyPhaseSet)

	// halts without ever producing an output
	_, err = RunFeedback(context.Background(), []int64{3, 0, 3, 0, 99}, []int64{1})
	assert.ErrorIs(t, err, vmerrors.ErrUnexpectedHalt)

	// the second stage waits on a signal the halted first stage never sends
	_, err = RunFeedback(context.Background(), []int64{3, 0, 3, 0, 99}, []int64{1, 2})
	assert.ErrorIs(t, err, vmerrors.ErrInputExhausted)

	// faults on the second input
	_, err = RunFeedback(context.Background(), []int64{3, 0, 42}, []int64{1})
	assert.ErrorIs(t, err, vmerrors.ErrUnknownOpcode)
	assert.Contains(t, err.Error(), "stage 0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunFeedback(ctx, loopProgram, []int64{9, 8, 7, 6, 5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPermutations(t *testing.T) {
	perms := Permutations([]int64{0, 1, 2, 3})
	require.Len(t, perms, 24)
	seen := make(map[[4]int64]bool)
	for _, p := range perms {
		var key [4]int64
		copy(key[:], p)
		assert.False(t, seen[key], "duplicate %v", p)
		seen[key] = true
		sorted := append([]int64(nil), p...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		assert.Equal(t, []int64{0, 1, 2, 3}, sorted)
	}
	assert.Len(t, Permutations([]int64{7}), 1)
}

func TestMaxSignal(t *testing.T) {
	res, err := MaxSignal(context.Background(), chainProgram, []int64{0, 1, 2, 3, 4}, WithParallelism(4))
	require.NoError(t, err)
	assert.Equal(t, int64(43210), res.Best.Signal)
	assert.Equal(t, []int64{4, 3, 2, 1, 0}, res.Best.Phases)
	assert.Len(t, res.All, 120)

	res, err = MaxSignal(context.Background(), loopProgram, []int64{5, 6, 7, 8, 9}, WithParallelism(1))
	require.NoError(t, err)
	assert.Equal(t, int64(139629729), res.Best.Signal)
	assert.Equal(t, []int64{9, 8, 7, 6, 5}, res.Best.Phases)

	_, err = MaxSignal(context.Background(), chainProgram, nil)
	assert.ErrorIs(t, err, vmerrors.ErrEmptyPhaseSet)
}

func TestMaxSignalCache(t *testing.T) {
	cache, err := storage.OpenResultCache("")
	require.NoError(t, err)
	defer cache.Close()

	set := []int64{0, 1, 2, 3, 4}
	first, err := MaxSignal(context.Background(), chainProgram, set, WithCache(cache))
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := MaxSignal(context.Background(), chainProgram, set, WithCache(cache))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Best, second.Best)
	assert.Len(t, second.All, 120)
}

func TestSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))

	_, err := MaxSignal(context.Background(), chainProgram, []int64{0, 1, 2})
	require.NoError(t, err)

	names := make(map[string]int)
	for _, s := range sr.Ended() {
		names[s.Name()]++
	}
	assert.Equal(t, 1, names["pipeline.MaxSignal"])
	assert.Equal(t, 6, names["pipeline.RunFeedback"])
}

func TestRenderSearchChart(t *testing.T) {
	res, err := MaxSignal(context.Background(), chainProgram, []int64{0, 1, 2})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, RenderSearchChart(&buf, res))
	assert.Contains(t, buf.String(), "Amplifier phase search")
	assert.Contains(t, buf.String(), "echarts")
}
