package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/program"
	"golang.org/x/exp/slices"
)

type patch struct {
	addr  uint64
	value int64
}

// parsePatches reads addr=value pairs from repeated --patch flags.
func parsePatches(specs []string) ([]patch, error) {
	patches := make([]patch, 0, len(specs))
	for _, s := range specs {
		a, v, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("patch %q: expected addr=value", s)
		}
		addr, err := strconv.ParseUint(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("patch %q: bad address: %w", s, err)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("patch %q: bad value: %w", s, err)
		}
		patches = append(patches, patch{addr: addr, value: value})
	}
	return patches, nil
}

func applyPatches(vm *intcode.VM, patches []patch) {
	for _, p := range patches {
		vm.Write(p.addr, p.value)
	}
}

func loadProgram(path string) ([]int64, error) {
	prog, err := program.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return prog, nil
}

// phaseSet returns the phase settings for a plain chain or a feedback loop.
func phaseSet(feedback bool) []int64 {
	if feedback {
		return []int64{5, 6, 7, 8, 9}
	}
	return []int64{0, 1, 2, 3, 4}
}

// closeJoin closes c and joins any close error onto err.
func closeJoin(err error, c io.Closer, what string) error {
	if cerr := c.Close(); cerr != nil {
		return errors.Join(err, fmt.Errorf("close %s: %w", what, cerr))
	}
	return err
}

func sortedOpcodes(dist map[program.Opcode]int) []program.Opcode {
	ops := make([]program.Opcode, 0, len(dist))
	for op := range dist {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}
