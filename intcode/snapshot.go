package intcode

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/colorfulnotion/intcode/intcode/memory"
	"github.com/xlab/treeprint"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Snapshot is a JSON friendly copy of the observable machine state. Memory holds
// only non-zero cells, keyed by decimal address.
type Snapshot struct {
	PC            uint64           `json:"pc"`
	RelativeBase  int64            `json:"relativeBase"`
	State         string           `json:"state"`
	Steps         uint64           `json:"steps"`
	PendingInput  *int64           `json:"pendingInput,omitempty"`
	PendingOutput *int64           `json:"pendingOutput,omitempty"`
	Memory        map[string]int64 `json:"memory"`
}

func (vm *VM) Snapshot() *Snapshot {
	s := &Snapshot{
		PC:           vm.pc,
		RelativeBase: vm.relativeBase,
		State:        vm.state.String(),
		Steps:        vm.steps,
		Memory:       make(map[string]int64),
	}
	if vm.hasInput {
		v := vm.input
		s.PendingInput = &v
	}
	if vm.hasOutput {
		v := vm.output
		s.PendingOutput = &v
	}
	for _, c := range vm.mem.Cells() {
		s.Memory[strconv.FormatUint(c.Address, 10)] = c.Value
	}
	return s
}

// DiffSnapshots renders the differences between two snapshots as an ASCII diff.
// The boolean reports whether anything changed.
func DiffSnapshots(before, after *Snapshot, coloring bool) (string, bool, error) {
	left, err := json.Marshal(before)
	if err != nil {
		return "", false, err
	}
	right, err := json.Marshal(after)
	if err != nil {
		return "", false, err
	}
	differ := gojsondiff.New()
	delta, err := differ.Compare(left, right)
	if err != nil {
		return "", false, fmt.Errorf("diff snapshots: %w", err)
	}
	if !delta.Modified() {
		return "", false, nil
	}
	var leftObj map[string]interface{}
	if err := json.Unmarshal(left, &leftObj); err != nil {
		return "", true, err
	}
	asciiFmt := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       coloring,
	})
	out, err := asciiFmt.Format(delta)
	if err != nil {
		return "", true, fmt.Errorf("format snapshot diff: %w", err)
	}
	return out, true, nil
}

// ToTree renders registers, I/O slots and up to maxPages allocated pages (0 for all).
func (vm *VM) ToTree(maxPages int) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s [%s] steps=%d", vm.name, vm.state, vm.steps))

	regs := tree.AddBranch("registers")
	regs.AddNode(fmt.Sprintf("pc=%d", vm.pc))
	regs.AddNode(fmt.Sprintf("rb=%d", vm.relativeBase))

	io := tree.AddBranch("io")
	if vm.hasInput {
		io.AddNode(fmt.Sprintf("input=%d", vm.input))
	} else {
		io.AddNode("input=<empty>")
	}
	if vm.hasOutput {
		io.AddNode(fmt.Sprintf("output=%d", vm.output))
	} else {
		io.AddNode("output=<empty>")
	}

	pages := vm.mem.Pages()
	mem := tree.AddBranch(fmt.Sprintf("memory (%d pages of %d cells)", len(pages), memory.PageSize))
	for i, base := range pages {
		if maxPages > 0 && i >= maxPages {
			mem.AddNode(fmt.Sprintf("... %d more", len(pages)-maxPages))
			break
		}
		mem.AddNode(fmt.Sprintf("%06d: %v", base, vm.mem.PageCells(base)))
	}
	return tree
}
