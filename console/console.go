package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/program"
	"github.com/dop251/goja"
)

// Console exposes a machine to JavaScript for interactive debugging. Numbers cross
// the boundary as float64, so cells beyond 2^53 lose precision in scripts.
type Console struct {
	js   *goja.Runtime
	vm   *intcode.VM
	prog []int64
	opts []intcode.Option
	out  io.Writer
}

func New(prog []int64, out io.Writer, opts ...intcode.Option) (*Console, error) {
	c := &Console{js: goja.New(), prog: prog, opts: opts, out: out}
	if err := c.reset(); err != nil {
		return nil, err
	}
	c.bind()
	return c, nil
}

func (c *Console) VM() *intcode.VM {
	return c.vm
}

// Eval runs one line of JavaScript against the console bindings.
func (c *Console) Eval(line string) (goja.Value, error) {
	return c.js.RunString(line)
}

// Help lists the available bindings.
func Help() string {
	return strings.Join([]string{
		"step()        execute one instruction, returns the state",
		"run()         run until blocked or halted, returns the state",
		"input(v)      supply the pending input",
		"output()      take the pending output",
		"read(a)       read memory cell a",
		"write(a, v)   write memory cell a",
		"state() pc() rb() steps()",
		"disasm(n)     disassemble n instructions from pc",
		"tree()        machine state tree",
		"reset()       reload the program",
		"print(...)    print values",
	}, "\n")
}

func (c *Console) reset() error {
	vm, err := intcode.New(c.prog, c.opts...)
	if err != nil {
		return err
	}
	c.vm = vm
	return nil
}

func (c *Console) throw(err error) {
	panic(c.js.NewGoError(err))
}

func (c *Console) bind() {
	c.js.Set("step", func() string {
		state, err := c.vm.Step()
		if err != nil {
			c.throw(err)
		}
		return state.String()
	})
	c.js.Set("run", func() string {
		state, err := c.vm.Run()
		if err != nil {
			c.throw(err)
		}
		return state.String()
	})
	c.js.Set("input", func(v int64) {
		if err := c.vm.Input(v); err != nil {
			c.throw(err)
		}
	})
	c.js.Set("output", func() int64 {
		v, err := c.vm.Output()
		if err != nil {
			c.throw(err)
		}
		return v
	})
	c.js.Set("read", func(addr int64) int64 {
		if addr < 0 {
			c.throw(fmt.Errorf("read: negative address %d", addr))
		}
		return c.vm.Read(uint64(addr))
	})
	c.js.Set("write", func(addr, v int64) {
		if addr < 0 {
			c.throw(fmt.Errorf("write: negative address %d", addr))
		}
		c.vm.Write(uint64(addr), v)
	})
	c.js.Set("state", func() string { return c.vm.State().String() })
	c.js.Set("pc", func() uint64 { return c.vm.PC() })
	c.js.Set("rb", func() int64 { return c.vm.RelativeBase() })
	c.js.Set("steps", func() uint64 { return c.vm.Steps() })
	c.js.Set("disasm", func(n int) string { return c.disasm(n) })
	c.js.Set("tree", func() string { return c.vm.ToTree(16).String() })
	c.js.Set("reset", func() string {
		if err := c.reset(); err != nil {
			c.throw(err)
		}
		return c.vm.State().String()
	})
	c.js.Set("help", Help)
	c.js.Set("print", func(args ...goja.Value) {
		for _, arg := range args {
			fmt.Fprintln(c.out, arg.Export())
		}
	})
}

// disasm decodes n instructions starting at the current pc.
func (c *Console) disasm(n int) string {
	if n <= 0 {
		n = 1
	}
	pc := c.vm.PC()
	cells := c.vm.Memory().Slice(pc, n*4)
	var sb strings.Builder
	for i, l := range program.Disassemble(cells) {
		if i == n {
			break
		}
		l.Address += pc
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
