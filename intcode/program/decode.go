package program

import "fmt"

// MaxParams is the largest operand count of any instruction.
const MaxParams = 3

// Instruction is the decoded form of an instruction cell.
type Instruction struct {
	Raw    int64
	Opcode Opcode
	Modes  [MaxParams]Mode
}

// Decode splits a raw cell into its opcode and the modes of its three operand slots.
// It is pure; the same cell always decodes the same way.
func Decode(cell int64) (Instruction, error) {
	op, err := ParseOpcode(cell % 100)
	if err != nil {
		return Instruction{}, err
	}
	inst := Instruction{Raw: cell, Opcode: op}
	divisor := int64(100)
	for i := 0; i < MaxParams; i++ {
		mode, err := ParseMode((cell / divisor) % 10)
		if err != nil {
			return Instruction{}, fmt.Errorf("%w (operand %d of %d)", err, i, cell)
		}
		inst.Modes[i] = mode
		divisor *= 10
	}
	return inst, nil
}

func (inst Instruction) String() string {
	s := inst.Opcode.String()
	for i := 0; i < inst.Opcode.Params(); i++ {
		s += fmt.Sprintf(" %s", inst.Modes[i])
	}
	return s
}
