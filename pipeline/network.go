package pipeline

import (
	"context"
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/telemetry"
	"github.com/colorfulnotion/intcode/vmerrors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("pipeline")

// Network is a ring of machines running the same program, each configured with a
// phase setting. Stage i's output becomes stage i+1's input and the last stage
// feeds the first. A plain chain is the special case where every stage halts
// after a single output.
type Network struct {
	stages []*intcode.VM
	phases []int64
	rounds int
}

// NewNetwork creates one machine per phase, supplies each its phase setting and
// runs it until it first blocks.
func NewNetwork(prog []int64, phases []int64, opts ...intcode.Option) (*Network, error) {
	if len(phases) == 0 {
		return nil, vmerrors.ErrEmptyPhaseSet
	}
	n := &Network{phases: phases}
	for i, phase := range phases {
		stageOpts := append([]intcode.Option{intcode.WithName(fmt.Sprintf("amp-%d", i)), intcode.WithLogging(log.PipelineMonitoring)}, opts...)
		vm, err := intcode.New(prog, stageOpts...)
		if err != nil {
			return nil, err
		}
		if err := vm.Input(phase); err != nil {
			return nil, err
		}
		if _, err := vm.Run(); err != nil {
			return nil, fmt.Errorf("stage %d phase %d: %w", i, phase, err)
		}
		n.stages = append(n.stages, vm)
	}
	return n, nil
}

// Stages returns the machines in ring order.
func (n *Network) Stages() []*intcode.VM {
	return n.stages
}

// Rounds is the number of complete passes Run made around the ring.
func (n *Network) Rounds() int {
	return n.rounds
}

// Run drives the ring round-robin starting with signal as the first stage's input,
// until the last stage halts. It returns the last stage's most recent output.
// Each stage has a queue of signals from its predecessor, so a stage that emits
// several values before reading loses none of them. A round in which no stage
// executes anything fails with ErrInputExhausted.
func (n *Network) Run(ctx context.Context, signal int64) (int64, error) {
	last := len(n.stages) - 1
	inbox := make([][]int64, len(n.stages))
	inbox[0] = append(inbox[0], signal)
	var result int64
	produced := false
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		progress := false
		for i, vm := range n.stages {
			if vm.State() == intcode.HALTED {
				continue
			}
			before := vm.Steps()
			if !vm.PendingInput() && len(inbox[i]) > 0 {
				if err := vm.Input(inbox[i][0]); err != nil {
					return result, fmt.Errorf("stage %d: %w", i, err)
				}
				inbox[i] = inbox[i][1:]
			}
			state, err := vm.Run()
			if err != nil {
				return result, fmt.Errorf("stage %d: %w", i, err)
			}
			if vm.Steps() != before {
				progress = true
			}
			if state == intcode.HALTED || !vm.PendingOutput() {
				continue
			}
			out, err := vm.Output()
			if err != nil {
				return result, fmt.Errorf("stage %d: %w", i, err)
			}
			next := (i + 1) % len(n.stages)
			inbox[next] = append(inbox[next], out)
			if i == last {
				result, produced = out, true
			}
		}
		n.rounds++
		log.Trace(log.PipelineMonitoring, "round complete", "round", n.rounds, "result", result)
		if n.stages[last].State() == intcode.HALTED {
			break
		}
		if !progress {
			return result, fmt.Errorf("%w (every stage of %v is waiting)", vmerrors.ErrInputExhausted, n.phases)
		}
	}
	if !produced {
		return 0, fmt.Errorf("%w (last stage of %v)", vmerrors.ErrUnexpectedHalt, n.phases)
	}
	return result, nil
}

// RunFeedback builds a network for phases and runs it with an initial signal of 0.
func RunFeedback(ctx context.Context, prog []int64, phases []int64, opts ...intcode.Option) (int64, error) {
	ctx, span := tracer.Start(ctx, "pipeline.RunFeedback")
	defer span.End()
	span.SetAttributes(attribute.Int64Slice("phases", phases))

	n, err := NewNetwork(prog, phases, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	signal, err := n.Run(ctx, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("signal", signal), attribute.Int("rounds", n.Rounds()))
	return signal, nil
}
