package program

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		cell   int64
		opcode Opcode
		modes  [MaxParams]Mode
	}{
		{1, ADD, [MaxParams]Mode{POSITION, POSITION, POSITION}},
		{1002, MUL, [MaxParams]Mode{POSITION, IMMEDIATE, POSITION}},
		{21101, ADD, [MaxParams]Mode{IMMEDIATE, IMMEDIATE, RELATIVE}},
		{109, ADJUST_RELATIVE_BASE, [MaxParams]Mode{IMMEDIATE, POSITION, POSITION}},
		{203, IN, [MaxParams]Mode{RELATIVE, POSITION, POSITION}},
		{1105, JUMP_IF_TRUE, [MaxParams]Mode{IMMEDIATE, IMMEDIATE, POSITION}},
		{99, HALT, [MaxParams]Mode{}},
	}
	for _, c := range cases {
		inst, err := Decode(c.cell)
		require.NoError(t, err, "cell %d", c.cell)
		assert.Equal(t, c.opcode, inst.Opcode, "cell %d", c.cell)
		assert.Equal(t, c.modes, inst.Modes, "cell %d", c.cell)
		assert.Equal(t, c.cell, inst.Raw)

		again, err := Decode(c.cell)
		require.NoError(t, err)
		assert.Equal(t, inst, again, "decode must be idempotent")
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, cell := range []int64{0, 10, 42, 98, -1, -99} {
		_, err := Decode(cell)
		assert.True(t, errors.Is(err, vmerrors.ErrUnknownOpcode), "cell %d: %v", cell, err)
	}
	for _, cell := range []int64{301, 3001, 30001, 91102} {
		_, err := Decode(cell)
		assert.True(t, errors.Is(err, vmerrors.ErrUnknownParameterMode), "cell %d: %v", cell, err)
	}
}

func TestOpcodeWidths(t *testing.T) {
	widths := map[Opcode]int{
		ADD: 4, MUL: 4, IN: 2, OUT: 2, JUMP_IF_TRUE: 3, JUMP_IF_FALSE: 3,
		LESS_THAN: 4, EQUALS: 4, ADJUST_RELATIVE_BASE: 2, HALT: 1,
	}
	for op, w := range widths {
		assert.Equal(t, w, op.Width(), "opcode %s", op)
		assert.Equal(t, w-1, op.Params(), "opcode %s", op)
	}
	assert.Equal(t, "op(42)", Opcode(42).String())
}

func TestParse(t *testing.T) {
	cells, err := Parse(" 1, -2 ,3,\n")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, -2, 3}, cells)
	assert.Equal(t, "1,-2,3", Format(cells))

	cells, err = Parse("104,1125899906842624,99")
	require.NoError(t, err)
	assert.Equal(t, int64(1125899906842624), cells[1])

	_, err = Parse("1,x,3")
	assert.True(t, errors.Is(err, vmerrors.ErrInvalidToken))
	assert.Contains(t, err.Error(), `token 1 "x"`)

	_, err = Parse("1,,3")
	assert.True(t, errors.Is(err, vmerrors.ErrInvalidToken))

	_, err = Parse("  \n")
	assert.True(t, errors.Is(err, vmerrors.ErrEmptyProgram))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.txt")
	require.NoError(t, os.WriteFile(path, []byte("3,0,4,0,99\n"), 0o644))
	cells, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 0, 4, 0, 99}, cells)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDisassemble(t *testing.T) {
	lines := Disassemble([]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50})
	require.Len(t, lines, 6)
	assert.Equal(t, "0000: add    [9], [10], [3]", lines[0].String())
	assert.Equal(t, "0004: mul    [3], [11], [0]", lines[1].String())
	assert.Equal(t, "0008: halt", lines[2].String())
	assert.Equal(t, "0009: data   30", lines[3].String())

	lines = Disassemble([]int64{109, -1, 204, 3, 1105, 1, 7})
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"#-1"}, lines[0].Operands)
	assert.Equal(t, []string{"[rb+3]"}, lines[1].Operands)
	assert.Equal(t, []string{"#1", "#7"}, lines[2].Operands)
	assert.Equal(t, "[rb-4]", FormatOperand(RELATIVE, -4))
}

func TestDisassembleTruncated(t *testing.T) {
	lines := Disassemble([]int64{1, 2})
	require.Len(t, lines, 2)
	assert.Nil(t, lines[0].Inst)
	assert.Nil(t, lines[1].Inst)
	assert.Equal(t, "0000: data   1\n0001: data   2\n", DisassembleText([]int64{1, 2}))
}

func TestAnalyze(t *testing.T) {
	stats := Analyze([]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50})
	assert.Equal(t, 12, stats.CellCount)
	assert.Equal(t, 3, stats.InstructionCount)
	assert.Equal(t, 3, stats.DataCount)
	assert.Equal(t, 1, stats.OpcodeDistribution[ADD])
	assert.Equal(t, 1, stats.OpcodeDistribution[MUL])
	assert.Equal(t, 1, stats.OpcodeDistribution[HALT])
}
