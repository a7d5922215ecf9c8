package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/intcode/memory"
	"github.com/colorfulnotion/intcode/intcode/program"
	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// VM executes one Intcode program. A VM is not safe for concurrent use; separate
// machines share nothing and may run on separate goroutines.
type VM struct {
	mem          *memory.Memory
	pc           uint64
	relativeBase int64
	state        State
	steps        uint64

	input          int64
	hasInput       bool
	output         int64
	hasOutput      bool
	blockedOnInput bool // cause of a BLOCKED state: missing input, else undrained output

	name     string
	logging  string
	maxSteps uint64
	tracer   trace.StepWriter
	current  *trace.TraceStep
}

type Option func(*VM)

// WithTracer records every executed step to w.
func WithTracer(w trace.StepWriter) Option {
	return func(vm *VM) { vm.tracer = w }
}

// WithLogging sets the log module the machine writes its trace and debug lines to.
func WithLogging(module string) Option {
	return func(vm *VM) { vm.logging = module }
}

// WithName labels the machine in log lines.
func WithName(name string) Option {
	return func(vm *VM) { vm.name = name }
}

// WithMaxSteps makes Run fail with ErrStepLimit once the machine has executed n steps.
// Zero means no limit.
func WithMaxSteps(n uint64) Option {
	return func(vm *VM) { vm.maxSteps = n }
}

// New loads prog at address 0 and returns a PAUSED machine with pc and relative base at 0.
func New(prog []int64, opts ...Option) (*VM, error) {
	vm := &VM{
		mem:     memory.New(),
		state:   PAUSED,
		name:    "vm",
		logging: log.VMMonitoring,
	}
	for _, opt := range opts {
		opt(vm)
	}
	if err := vm.mem.LoadContiguous(0, prog); err != nil {
		return nil, err
	}
	return vm, nil
}

func (vm *VM) State() State           { return vm.state }
func (vm *VM) PC() uint64             { return vm.pc }
func (vm *VM) RelativeBase() int64    { return vm.relativeBase }
func (vm *VM) Steps() uint64          { return vm.steps }
func (vm *VM) Name() string           { return vm.name }
func (vm *VM) PendingInput() bool     { return vm.hasInput }
func (vm *VM) PendingOutput() bool    { return vm.hasOutput }
func (vm *VM) Memory() *memory.Memory { return vm.mem }

// Read returns the memory cell at addr without executing anything.
func (vm *VM) Read(addr uint64) int64 {
	return vm.mem.Read(addr)
}

// Write patches the memory cell at addr without executing anything.
func (vm *VM) Write(addr uint64, v int64) {
	vm.mem.Write(addr, v)
}

// Input fills the single input slot. It fails with ErrInputAlreadyPopulated while a
// previous value is unconsumed. A machine blocked on input becomes PAUSED so it may
// be stepped; one blocked on an undrained output stays BLOCKED.
func (vm *VM) Input(v int64) error {
	if vm.hasInput {
		return fmt.Errorf("%w (pending %d, offered %d)", vmerrors.ErrInputAlreadyPopulated, vm.input, v)
	}
	vm.input, vm.hasInput = v, true
	if vm.state == BLOCKED && vm.blockedOnInput {
		vm.state = PAUSED
	}
	return nil
}

// Output takes and clears the pending output value. A machine blocked on output
// becomes PAUSED; one blocked on input stays BLOCKED.
func (vm *VM) Output() (int64, error) {
	if !vm.hasOutput {
		return 0, vmerrors.ErrNoOutput
	}
	v := vm.output
	vm.output, vm.hasOutput = 0, false
	if vm.state == BLOCKED && !vm.blockedOnInput {
		vm.state = PAUSED
	}
	return v, nil
}

// Step executes exactly one instruction.
func (vm *VM) Step() (State, error) {
	switch vm.state {
	case HALTED:
		return vm.state, vmerrors.ErrMachineHalted
	case BLOCKED:
		return vm.state, vmerrors.ErrMachineBlocked
	}
	vm.state = RUNNING
	err := vm.step()
	if vm.state == RUNNING {
		vm.state = PAUSED
	}
	return vm.state, err
}

// Run executes until the machine blocks or halts and returns that state. A BLOCKED
// machine is resumed; whatever blocked it is re-examined by the resumed instruction.
// On error the machine is left PAUSED at the failing instruction with all prior effects kept.
func (vm *VM) Run() (State, error) {
	if vm.state == HALTED {
		return vm.state, vmerrors.ErrMachineHalted
	}
	vm.state = RUNNING
	for vm.state == RUNNING {
		if vm.maxSteps > 0 && vm.steps >= vm.maxSteps {
			vm.state = PAUSED
			return vm.state, fmt.Errorf("%w (%d steps)", vmerrors.ErrStepLimit, vm.steps)
		}
		if err := vm.step(); err != nil {
			vm.state = PAUSED
			log.Debug(vm.logging, "machine fault", "vm", vm.name, "pc", vm.pc, "err", err)
			return vm.state, err
		}
	}
	log.Debug(vm.logging, "machine stopped", "vm", vm.name, "state", vm.state, "pc", vm.pc, "steps", vm.steps)
	return vm.state, nil
}

func (vm *VM) step() error {
	pc := vm.pc
	raw := vm.mem.Read(pc)
	inst, err := program.Decode(raw)
	if err != nil {
		return fmt.Errorf("%w at pc %d", err, pc)
	}

	if vm.tracer != nil {
		vm.current = trace.NewTraceStep(vm.steps, pc, raw, inst.Opcode.String())
		for i := 0; i < inst.Opcode.Params(); i++ {
			vm.current.Modes = append(vm.current.Modes, uint8(inst.Modes[i]))
			vm.current.Operands = append(vm.current.Operands, vm.mem.Read(pc+1+uint64(i)))
		}
	}

	if err := dispatchTable[inst.Opcode](vm, inst); err != nil {
		vm.current = nil
		return fmt.Errorf("%w at pc %d (%s)", err, pc, inst)
	}
	if vm.state == BLOCKED && vm.pc == pc {
		// stalled on I/O; nothing executed
		vm.current = nil
		return nil
	}
	vm.steps++
	log.Trace(vm.logging, "step", "vm", vm.name, "pc", pc, "op", inst.Opcode, "raw", raw, "next", vm.pc, "rb", vm.relativeBase, "state", vm.state)

	if vm.current != nil {
		ts := vm.current
		vm.current = nil
		ts.PostPC = vm.pc
		ts.RelativeBase = vm.relativeBase
		ts.SetPostMachineState(vm.postState().String())
		if err := vm.tracer.WriteStep(ts); err != nil {
			return fmt.Errorf("write trace step %d: %w", ts.Step, err)
		}
	}
	return nil
}

// postState reports RUNNING as PAUSED; RUNNING never outlives the step loop.
func (vm *VM) postState() State {
	if vm.state == RUNNING {
		return PAUSED
	}
	return vm.state
}

// operandAddr resolves operand i of the current instruction to a memory address.
func (vm *VM) operandAddr(inst program.Instruction, i int) (uint64, error) {
	raw := vm.mem.Read(vm.pc + 1 + uint64(i))
	var addr int64
	switch inst.Modes[i] {
	case program.POSITION:
		addr = raw
	case program.RELATIVE:
		addr = vm.relativeBase + raw
	case program.IMMEDIATE:
		return 0, fmt.Errorf("%w (operand %d)", vmerrors.ErrImmediateDestination, i)
	}
	if addr < 0 {
		return 0, fmt.Errorf("%w (operand %d resolves to %d)", vmerrors.ErrNegativeAddress, i, addr)
	}
	return uint64(addr), nil
}

// operandValue returns the value operand i denotes.
func (vm *VM) operandValue(inst program.Instruction, i int) (int64, error) {
	if inst.Modes[i] == program.IMMEDIATE {
		return vm.mem.Read(vm.pc + 1 + uint64(i)), nil
	}
	addr, err := vm.operandAddr(inst, i)
	if err != nil {
		return 0, err
	}
	return vm.mem.Read(addr), nil
}

func (vm *VM) writeCell(addr uint64, v int64) {
	vm.mem.Write(addr, v)
	if vm.current != nil {
		vm.current.SetWrite(addr, v)
	}
}
