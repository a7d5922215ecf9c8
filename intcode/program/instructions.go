package program

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// Opcode is the low two decimal digits of an instruction cell.
type Opcode uint8

// Arithmetic and comparison, width 4.
const (
	ADD       Opcode = 1
	MUL       Opcode = 2
	LESS_THAN Opcode = 7
	EQUALS    Opcode = 8
)

// I/O, width 2.
const (
	IN  Opcode = 3
	OUT Opcode = 4
)

// Control flow.
const (
	JUMP_IF_TRUE         Opcode = 5 // width 3
	JUMP_IF_FALSE        Opcode = 6 // width 3
	ADJUST_RELATIVE_BASE Opcode = 9 // width 2
	HALT                 Opcode = 99
)

type opcodeInfo struct {
	name  string
	width int
}

var opcodeTable = map[Opcode]opcodeInfo{
	ADD:                  {"add", 4},
	MUL:                  {"mul", 4},
	IN:                   {"in", 2},
	OUT:                  {"out", 2},
	JUMP_IF_TRUE:         {"jnz", 3},
	JUMP_IF_FALSE:        {"jz", 3},
	LESS_THAN:            {"lt", 4},
	EQUALS:               {"eq", 4},
	ADJUST_RELATIVE_BASE: {"arb", 2},
	HALT:                 {"halt", 1},
}

// ParseOpcode converts a raw opcode value. Unmatched values fail with ErrUnknownOpcode.
func ParseOpcode(raw int64) (Opcode, error) {
	if raw < 0 || raw > 99 {
		return 0, fmt.Errorf("%w (opcode %d)", vmerrors.ErrUnknownOpcode, raw)
	}
	op := Opcode(raw)
	if _, ok := opcodeTable[op]; !ok {
		return 0, fmt.Errorf("%w (opcode %d)", vmerrors.ErrUnknownOpcode, raw)
	}
	return op, nil
}

// Width is the number of cells the instruction occupies, opcode cell included.
func (op Opcode) Width() int {
	return opcodeTable[op].width
}

// Params is the number of operands following the opcode cell.
func (op Opcode) Params() int {
	if w := op.Width(); w > 0 {
		return w - 1
	}
	return 0
}

func (op Opcode) String() string {
	if info, ok := opcodeTable[op]; ok {
		return info.name
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Mode selects how an operand is interpreted.
type Mode uint8

const (
	POSITION  Mode = 0
	IMMEDIATE Mode = 1
	RELATIVE  Mode = 2
)

// ParseMode converts a raw mode digit. Unmatched values fail with ErrUnknownParameterMode.
func ParseMode(raw int64) (Mode, error) {
	switch raw {
	case 0, 1, 2:
		return Mode(raw), nil
	}
	return 0, fmt.Errorf("%w (mode %d)", vmerrors.ErrUnknownParameterMode, raw)
}

func (m Mode) String() string {
	switch m {
	case POSITION:
		return "position"
	case IMMEDIATE:
		return "immediate"
	case RELATIVE:
		return "relative"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}
