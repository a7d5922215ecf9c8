package trace

// TraceStep records one executed instruction and the machine state after it.
type TraceStep struct {
	Step         uint64  `json:"step"`
	PC           uint64  `json:"pc"`
	Raw          int64   `json:"raw"`
	Opcode       string  `json:"opcode"`
	Modes        []uint8 `json:"modes,omitempty"`
	Operands     []int64 `json:"operands,omitempty"`
	PostPC       uint64  `json:"postPc"`
	RelativeBase int64   `json:"relativeBase"`

	PostMachineState *string `json:"postMachineState,omitempty"`
	WrittenAddr      *uint64 `json:"writtenAddr,omitempty"`
	WrittenValue     *int64  `json:"writtenValue,omitempty"`
	InputConsumed    *int64  `json:"inputConsumed,omitempty"`
	OutputProduced   *int64  `json:"outputProduced,omitempty"`
}

// StepWriter receives trace records as the machine executes.
type StepWriter interface {
	WriteStep(step *TraceStep) error
}

func NewTraceStep(step uint64, pc uint64, raw int64, opcode string) *TraceStep {
	return &TraceStep{
		Step:   step,
		PC:     pc,
		Raw:    raw,
		Opcode: opcode,
	}
}

func (ts *TraceStep) SetWrite(addr uint64, value int64) {
	ts.WrittenAddr = &addr
	ts.WrittenValue = &value
}

func (ts *TraceStep) SetInputConsumed(v int64) {
	ts.InputConsumed = &v
}

func (ts *TraceStep) SetOutputProduced(v int64) {
	ts.OutputProduced = &v
}

func (ts *TraceStep) SetPostMachineState(state string) {
	ts.PostMachineState = &state
}

// MultiWriter fans a step out to several writers, stopping at the first error.
type MultiWriter []StepWriter

func (m MultiWriter) WriteStep(step *TraceStep) error {
	for _, w := range m {
		if err := w.WriteStep(step); err != nil {
			return err
		}
	}
	return nil
}
