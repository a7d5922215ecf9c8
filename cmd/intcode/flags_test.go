package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/program"
	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatches(t *testing.T) {
	patches, err := parsePatches([]string{"1=12", " 2 = -2 "})
	require.NoError(t, err)
	assert.Equal(t, []patch{{addr: 1, value: 12}, {addr: 2, value: -2}}, patches)

	for _, bad := range []string{"12", "-1=3", "x=1", "1=y"} {
		_, err := parsePatches([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestApplyPatchesAndRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,9,10,3,2,3,11,0,99,30,40,50\n"), 0o644))

	prog, err := loadProgram(path)
	require.NoError(t, err)
	vm, err := intcode.New(prog)
	require.NoError(t, err)

	patches, err := parsePatches([]string{"9=1"})
	require.NoError(t, err)
	applyPatches(vm, patches)

	state, err := vm.Run()
	require.NoError(t, err)
	assert.Equal(t, intcode.HALTED, state)
	assert.Equal(t, int64(2050), vm.Read(0))
}

func TestLoadProgramMissing(t *testing.T) {
	_, err := loadProgram(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestPhaseSet(t *testing.T) {
	assert.Equal(t, "0,1,2,3,4", program.Format(phaseSet(false)))
	assert.Equal(t, "5,6,7,8,9", program.Format(phaseSet(true)))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

type closeCounter struct {
	closed int
	err    error
}

func (c *closeCounter) Close() error {
	c.closed++
	return c.err
}

func TestCloseJoin(t *testing.T) {
	runErr := errors.New("run failed")

	ok := &closeCounter{}
	assert.NoError(t, closeJoin(nil, ok, "trace.jsonl"))
	assert.Equal(t, runErr, closeJoin(runErr, ok, "trace.jsonl"))
	assert.Equal(t, 2, ok.closed)

	bad := &closeCounter{err: errors.New("flush failed")}
	err := closeJoin(runErr, bad, "trace.jsonl")
	require.Error(t, err)
	assert.ErrorIs(t, err, runErr)
	assert.ErrorIs(t, err, bad.err)
	assert.Contains(t, err.Error(), "close trace.jsonl")
}

func TestTraceFlushFailureIsReported(t *testing.T) {
	jw := trace.NewJSONLTraceWriter(failingWriter{})
	_, err := intcode.RunProgram([]int64{104, 7, 99}, nil, intcode.WithTracer(jw))
	require.NoError(t, err, "steps stay buffered until close")

	err = closeJoin(nil, jw, "trace.jsonl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSortedOpcodes(t *testing.T) {
	stats := program.Analyze([]int64{1101, 1, 2, 5, 104, 0, 99})
	assert.Equal(t, []program.Opcode{program.ADD, program.OUT, program.HALT}, sortedOpcodes(stats.OpcodeDistribution))
}
