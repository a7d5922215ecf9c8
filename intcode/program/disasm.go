package program

import (
	"fmt"
	"strings"
)

// Line is one disassembled instruction or data cell.
type Line struct {
	Address  uint64
	Cells    []int64
	Inst     *Instruction // nil for data
	Operands []string
}

func (l Line) String() string {
	if l.Inst == nil {
		return fmt.Sprintf("%04d: %-6s %d", l.Address, "data", l.Cells[0])
	}
	if len(l.Operands) == 0 {
		return fmt.Sprintf("%04d: %s", l.Address, l.Inst.Opcode)
	}
	return fmt.Sprintf("%04d: %-6s %s", l.Address, l.Inst.Opcode, strings.Join(l.Operands, ", "))
}

// FormatOperand renders one operand: [a] for position, #v for immediate, [rb+o] for relative.
func FormatOperand(mode Mode, v int64) string {
	switch mode {
	case IMMEDIATE:
		return fmt.Sprintf("#%d", v)
	case RELATIVE:
		if v < 0 {
			return fmt.Sprintf("[rb%d]", v)
		}
		return fmt.Sprintf("[rb+%d]", v)
	}
	return fmt.Sprintf("[%d]", v)
}

// Disassemble performs a linear sweep starting at address 0. A cell that does not
// decode, or whose operands run past the end, becomes a data line and the sweep
// continues at the next cell.
func Disassemble(cells []int64) []Line {
	var lines []Line
	for pc := 0; pc < len(cells); {
		inst, err := Decode(cells[pc])
		if err != nil || pc+inst.Opcode.Width() > len(cells) {
			lines = append(lines, Line{Address: uint64(pc), Cells: cells[pc : pc+1]})
			pc++
			continue
		}
		width := inst.Opcode.Width()
		line := Line{Address: uint64(pc), Cells: cells[pc : pc+width], Inst: &inst}
		for i := 0; i < inst.Opcode.Params(); i++ {
			line.Operands = append(line.Operands, FormatOperand(inst.Modes[i], cells[pc+1+i]))
		}
		lines = append(lines, line)
		pc += width
	}
	return lines
}

// DisassembleText returns the listing as a single string.
func DisassembleText(cells []int64) string {
	var sb strings.Builder
	for _, l := range Disassemble(cells) {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
