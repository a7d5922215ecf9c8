package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/intcode/program"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

func init() {
	initDispatchTable()
}

type OpcodeHandler func(vm *VM, inst program.Instruction) error

var dispatchTable [100]OpcodeHandler

func initDispatchTable() {
	dispatchTable[program.ADD] = handleADD
	dispatchTable[program.MUL] = handleMUL
	dispatchTable[program.IN] = handleIN
	dispatchTable[program.OUT] = handleOUT
	dispatchTable[program.JUMP_IF_TRUE] = handleJUMP_IF_TRUE
	dispatchTable[program.JUMP_IF_FALSE] = handleJUMP_IF_FALSE
	dispatchTable[program.LESS_THAN] = handleLESS_THAN
	dispatchTable[program.EQUALS] = handleEQUALS
	dispatchTable[program.ADJUST_RELATIVE_BASE] = handleADJUST_RELATIVE_BASE
	dispatchTable[program.HALT] = handleHALT
}

// Arithmetic and comparison: two source operands, one destination.

func (vm *VM) binaryOp(inst program.Instruction, f func(a, b int64) int64) error {
	a, err := vm.operandValue(inst, 0)
	if err != nil {
		return err
	}
	b, err := vm.operandValue(inst, 1)
	if err != nil {
		return err
	}
	dst, err := vm.operandAddr(inst, 2)
	if err != nil {
		return err
	}
	vm.writeCell(dst, f(a, b))
	vm.pc += 4
	return nil
}

func boolCell(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func handleADD(vm *VM, inst program.Instruction) error {
	return vm.binaryOp(inst, func(a, b int64) int64 { return a + b })
}

func handleMUL(vm *VM, inst program.Instruction) error {
	return vm.binaryOp(inst, func(a, b int64) int64 { return a * b })
}

func handleLESS_THAN(vm *VM, inst program.Instruction) error {
	return vm.binaryOp(inst, func(a, b int64) int64 { return boolCell(a < b) })
}

func handleEQUALS(vm *VM, inst program.Instruction) error {
	return vm.binaryOp(inst, func(a, b int64) int64 { return boolCell(a == b) })
}

// I/O

// handleIN blocks without advancing pc when no input is pending, so the same
// instruction runs again once the machine is resumed.
func handleIN(vm *VM, inst program.Instruction) error {
	dst, err := vm.operandAddr(inst, 0)
	if err != nil {
		return err
	}
	if !vm.hasInput {
		vm.state, vm.blockedOnInput = BLOCKED, true
		log.Debug(vm.logging, "awaiting input", "vm", vm.name, "pc", vm.pc)
		return nil
	}
	v := vm.input
	vm.input, vm.hasInput = 0, false
	vm.writeCell(dst, v)
	if vm.current != nil {
		vm.current.SetInputConsumed(v)
	}
	vm.pc += 2
	return nil
}

// handleOUT publishes a value and blocks until the caller drains it. An undrained
// previous value is never overwritten: the machine blocks in place instead.
func handleOUT(vm *VM, inst program.Instruction) error {
	v, err := vm.operandValue(inst, 0)
	if err != nil {
		return err
	}
	vm.state, vm.blockedOnInput = BLOCKED, false
	if vm.hasOutput {
		log.Debug(vm.logging, "output not drained", "vm", vm.name, "pc", vm.pc, "pending", vm.output)
		return nil
	}
	vm.output, vm.hasOutput = v, true
	if vm.current != nil {
		vm.current.SetOutputProduced(v)
	}
	vm.pc += 2
	return nil
}

// Control flow

func (vm *VM) jumpIf(inst program.Instruction, taken func(int64) bool) error {
	cond, err := vm.operandValue(inst, 0)
	if err != nil {
		return err
	}
	target, err := vm.operandValue(inst, 1)
	if err != nil {
		return err
	}
	if !taken(cond) {
		vm.pc += 3
		return nil
	}
	if target < 0 {
		return fmt.Errorf("%w (jump target %d)", vmerrors.ErrNegativeAddress, target)
	}
	vm.pc = uint64(target)
	return nil
}

func handleJUMP_IF_TRUE(vm *VM, inst program.Instruction) error {
	return vm.jumpIf(inst, func(v int64) bool { return v != 0 })
}

func handleJUMP_IF_FALSE(vm *VM, inst program.Instruction) error {
	return vm.jumpIf(inst, func(v int64) bool { return v == 0 })
}

func handleADJUST_RELATIVE_BASE(vm *VM, inst program.Instruction) error {
	delta, err := vm.operandValue(inst, 0)
	if err != nil {
		return err
	}
	base := vm.relativeBase + delta
	if base < 0 {
		return fmt.Errorf("%w (relative base %d%+d)", vmerrors.ErrNegativeAddress, vm.relativeBase, delta)
	}
	vm.relativeBase = base
	vm.pc += 2
	return nil
}

func handleHALT(vm *VM, inst program.Instruction) error {
	vm.state = HALTED
	log.Debug(vm.logging, "halted", "vm", vm.name, "pc", vm.pc, "steps", vm.steps+1)
	return nil
}
