package puzzle

import (
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// Report holds every output of a single-input run; Code is the last one.
type Report struct {
	Outputs []int64 `json:"outputs"`
	Code    int64   `json:"code"`
}

// Passed reports whether every output before the final code was zero, the convention
// self-test programs use to flag a working instruction.
func (r Report) Passed() bool {
	for _, v := range r.Outputs[:len(r.Outputs)-1] {
		if v != 0 {
			return false
		}
	}
	return true
}

func runWithInput(prog []int64, input int64) (Report, error) {
	outputs, err := intcode.RunProgram(prog, []int64{input})
	if err != nil {
		return Report{Outputs: outputs}, err
	}
	if len(outputs) == 0 {
		return Report{}, fmt.Errorf("%w (no output for input %d)", vmerrors.ErrUnexpectedHalt, input)
	}
	return Report{Outputs: outputs, Code: outputs[len(outputs)-1]}, nil
}

// Diagnostic runs a diagnostic program for the given system id (1 air conditioner,
// 5 thermal radiator controller).
func Diagnostic(prog []int64, systemID int64) (Report, error) {
	return runWithInput(prog, systemID)
}

// Boost runs a BOOST program in test mode (1) or sensor boost mode (2).
func Boost(prog []int64, mode int64) (Report, error) {
	return runWithInput(prog, mode)
}
