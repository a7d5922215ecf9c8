package puzzle

import (
	"context"
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// GravityAssist patches cell 1 with noun and cell 2 with verb, runs the program to
// completion and returns cell 0.
func GravityAssist(prog []int64, noun, verb int64) (int64, error) {
	vm, err := intcode.New(prog)
	if err != nil {
		return 0, err
	}
	vm.Write(1, noun)
	vm.Write(2, verb)
	state, err := vm.Run()
	if err != nil {
		return 0, fmt.Errorf("noun %d verb %d: %w", noun, verb, err)
	}
	if state != intcode.HALTED {
		return 0, fmt.Errorf("%w (noun %d verb %d stopped %s)", vmerrors.ErrUnexpectedHalt, noun, verb, state)
	}
	return vm.Read(0), nil
}

// NounVerb is a solution of FindNounVerb.
type NounVerb struct {
	Noun int64 `json:"noun"`
	Verb int64 `json:"verb"`
}

// Answer is 100*noun + verb.
func (nv NounVerb) Answer() int64 {
	return 100*nv.Noun + nv.Verb
}

// FindNounVerb searches noun and verb in [0, 99] for the pair leaving target in cell 0.
// Combinations that fault are skipped.
func FindNounVerb(ctx context.Context, prog []int64, target int64) (NounVerb, error) {
	for noun := int64(0); noun <= 99; noun++ {
		if err := ctx.Err(); err != nil {
			return NounVerb{}, err
		}
		for verb := int64(0); verb <= 99; verb++ {
			out, err := GravityAssist(prog, noun, verb)
			if err != nil {
				log.Trace(log.CLIMonitoring, "combination faulted", "noun", noun, "verb", verb, "err", err)
				continue
			}
			if out == target {
				return NounVerb{Noun: noun, Verb: verb}, nil
			}
		}
	}
	return NounVerb{}, fmt.Errorf("%w (target %d)", vmerrors.ErrNoSolution, target)
}
