package vmerrors

import (
	"errors"
	"strings"
)

// Virtual machine (V) Errors
var (
	ErrUnknownOpcode         = errors.New("V1|UnknownOpcode: Decoded opcode has no defined meaning.")
	ErrUnknownParameterMode  = errors.New("V2|UnknownParameterMode: Decoded parameter mode digit has no defined meaning.")
	ErrMemoryAlignment       = errors.New("V3|MemoryAlignment: Bulk load start address is not page aligned.")
	ErrMachineHalted         = errors.New("V4|MachineHalted: Step or run requested on a halted machine.")
	ErrMachineBlocked        = errors.New("V5|MachineBlocked: Step requested while the machine is blocked on I/O.")
	ErrInputAlreadyPopulated = errors.New("V6|InputAlreadyPopulated: Input supplied while a previous input is still pending.")
	ErrNoOutput              = errors.New("V7|NoOutput: Output requested while no output is pending.")
	ErrNegativeAddress       = errors.New("V8|NegativeAddress: Operand, jump target or relative base resolves below zero.")
	ErrImmediateDestination  = errors.New("V9|ImmediateDestination: Write destination uses immediate mode.")
)

// Program text (P) Errors
var (
	ErrInvalidToken = errors.New("P1|InvalidToken: Program text contains a token that is not a signed 64-bit integer.")
	ErrEmptyProgram = errors.New("P2|EmptyProgram: Program text contains no cells.")
)

// Driver (D) Errors
var (
	ErrNoSolution     = errors.New("D1|NoSolution: No input combination produces the requested result.")
	ErrUnexpectedHalt = errors.New("D2|UnexpectedHalt: Machine halted before producing the expected output.")
	ErrBadRobotOutput = errors.New("D3|BadRobotOutput: Robot brain produced a colour or turn outside {0,1}.")
	ErrStepLimit      = errors.New("D4|StepLimit: Machine exceeded the configured step limit.")
	ErrEmptyPhaseSet  = errors.New("D5|EmptyPhaseSet: Amplifier pipeline needs at least one phase.")
	ErrInputExhausted = errors.New("D6|InputExhausted: Machine is waiting for input but none is left to supply.")
)

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	nameParts := strings.SplitN(parts[1], ":", 2)
	return strings.TrimSpace(nameParts[0])
}

func GetErrorNames(errs []error) []string {
	names := make([]string, len(errs))
	for i, err := range errs {
		names[i] = GetErrorName(err)
	}
	return names
}

// GetErrorCode extracts the error code from the error message.
// Wrapped errors keep their code as long as the sentinel leads the message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorCodeWithName returns the error code and name in the format "Code_ErrorName".
func GetErrorCodeWithName(err error) string {
	code := GetErrorCode(err)
	name := GetErrorName(err)
	if code == "" || name == "" {
		return ""
	}
	return code + "_" + name
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	parts := strings.SplitN(err.Error(), ":", 2)
	if len(parts) < 2 {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(parts[1])
}
