package robot

import (
	"context"
	"fmt"
	"strings"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// Brain is the program steering the robot. *intcode.VM satisfies it.
type Brain interface {
	Input(v int64) error
	Output() (int64, error)
	Run() (intcode.State, error)
	PendingOutput() bool
}

type Color int64

const (
	Black Color = 0
	White Color = 1
)

type Point struct {
	X, Y int
}

// Direction in clockwise order; Up decreases Y so rows render top to bottom.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

func (d Direction) TurnLeft() Direction  { return (d + 3) % 4 }
func (d Direction) TurnRight() Direction { return (d + 1) % 4 }

func (d Direction) String() string {
	return [...]string{"up", "right", "down", "left"}[d]
}

func (p Point) Move(d Direction) Point {
	switch d {
	case Up:
		p.Y--
	case Right:
		p.X++
	case Down:
		p.Y++
	case Left:
		p.X--
	}
	return p
}

// Robot paints hull panels as directed by its brain: for every panel it reports the
// panel colour, then reads a colour to paint and a turn (0 left, 1 right) and moves
// forward one panel.
type Robot struct {
	brain   Brain
	pos     Point
	dir     Direction
	hull    map[Point]Color
	painted map[Point]int
	moves   int
}

func New(brain Brain) *Robot {
	return &Robot{
		brain:   brain,
		dir:     Up,
		hull:    make(map[Point]Color),
		painted: make(map[Point]int),
	}
}

// SetPanel sets a panel colour without counting it as painted.
func (r *Robot) SetPanel(p Point, c Color) {
	r.hull[p] = c
}

func (r *Robot) Position() Point       { return r.pos }
func (r *Robot) Facing() Direction     { return r.dir }
func (r *Robot) Moves() int            { return r.moves }
func (r *Robot) Panel(p Point) Color   { return r.hull[p] }
func (r *Robot) PaintedPanels() int    { return len(r.painted) }
func (r *Robot) Hull() map[Point]Color { return r.hull }

// Paint runs the brain until it halts and returns the number of panels painted at least once.
func (r *Robot) Paint(ctx context.Context) (int, error) {
	var pending []int64
	for {
		if err := ctx.Err(); err != nil {
			return len(r.painted), err
		}
		state, err := r.brain.Run()
		if err != nil {
			return len(r.painted), err
		}
		if state == intcode.HALTED {
			break
		}
		if !r.brain.PendingOutput() {
			if err := r.brain.Input(int64(r.hull[r.pos])); err != nil {
				return len(r.painted), err
			}
			continue
		}
		v, err := r.brain.Output()
		if err != nil {
			return len(r.painted), err
		}
		pending = append(pending, v)
		if len(pending) < 2 {
			continue
		}
		if err := r.apply(pending[0], pending[1]); err != nil {
			return len(r.painted), err
		}
		pending = pending[:0]
	}
	log.Debug(log.RobotMonitoring, "robot finished", "moves", r.moves, "painted", len(r.painted))
	return len(r.painted), nil
}

func (r *Robot) apply(color, turn int64) error {
	if color != int64(Black) && color != int64(White) {
		return fmt.Errorf("%w (colour %d at %v)", vmerrors.ErrBadRobotOutput, color, r.pos)
	}
	r.hull[r.pos] = Color(color)
	r.painted[r.pos]++
	switch turn {
	case 0:
		r.dir = r.dir.TurnLeft()
	case 1:
		r.dir = r.dir.TurnRight()
	default:
		return fmt.Errorf("%w (turn %d at %v)", vmerrors.ErrBadRobotOutput, turn, r.pos)
	}
	r.pos = r.pos.Move(r.dir)
	r.moves++
	log.Trace(log.RobotMonitoring, "robot moved", "painted", color, "facing", r.dir, "pos", r.pos)
	return nil
}

// Bounds returns the smallest rectangle containing every known panel.
func (r *Robot) Bounds() (lo, hi Point) {
	first := true
	for p := range r.hull {
		if first {
			lo, hi, first = p, p, false
			continue
		}
		lo.X, lo.Y = minInt(lo.X, p.X), minInt(lo.Y, p.Y)
		hi.X, hi.Y = maxInt(hi.X, p.X), maxInt(hi.Y, p.Y)
	}
	return lo, hi
}

// Render draws white panels as '#' and black panels as ' ', one row per line.
func (r *Robot) Render() string {
	if len(r.hull) == 0 {
		return ""
	}
	lo, hi := r.Bounds()
	var sb strings.Builder
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			if r.hull[Point{x, y}] == White {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
