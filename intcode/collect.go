package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// Collect resumes vm until it halts, supplying inputs in order whenever it waits for
// one and draining every output. Outputs gathered before a failure are returned with the error.
func Collect(vm *VM, inputs []int64) ([]int64, error) {
	var outputs []int64
	for {
		state, err := vm.Run()
		if err != nil {
			return outputs, err
		}
		if state == HALTED {
			return outputs, nil
		}
		if vm.PendingOutput() {
			v, err := vm.Output()
			if err != nil {
				return outputs, err
			}
			outputs = append(outputs, v)
			continue
		}
		if len(inputs) == 0 {
			return outputs, fmt.Errorf("%w (pc %d)", vmerrors.ErrInputExhausted, vm.PC())
		}
		if err := vm.Input(inputs[0]); err != nil {
			return outputs, err
		}
		inputs = inputs[1:]
	}
}

// RunProgram builds a machine for prog and collects its outputs for the given inputs.
func RunProgram(prog []int64, inputs []int64, opts ...Option) ([]int64, error) {
	vm, err := New(prog, opts...)
	if err != nil {
		return nil, err
	}
	return Collect(vm, inputs)
}
