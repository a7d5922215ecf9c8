package program

// ProgramStats summarises a linear disassembly of a program.
type ProgramStats struct {
	CellCount          int            // Total number of cells
	InstructionCount   int            // Cells decoded as instruction starts
	DataCount          int            // Cells that did not decode
	OpcodeDistribution map[Opcode]int // Distribution of opcodes
}

// Analyze counts instructions by opcode. Self-modifying programs may execute
// differently from the static sweep.
func Analyze(cells []int64) *ProgramStats {
	stats := &ProgramStats{
		CellCount:          len(cells),
		OpcodeDistribution: make(map[Opcode]int),
	}
	for _, l := range Disassemble(cells) {
		if l.Inst == nil {
			stats.DataCount++
			continue
		}
		stats.InstructionCount++
		stats.OpcodeDistribution[l.Inst.Opcode]++
	}
	return stats
}
