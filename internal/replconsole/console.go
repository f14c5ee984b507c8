// Package replconsole is an interactive line console for building,
// running and inspecting RPN programs against the expression runtime.
//
// Grounded on internal/repl/repl.go's Start: a bufio.Scanner prompt
// loop with an "exit" sentinel and the same reset-and-resubmit-per-line
// mental model, adapted to this module's two-pass compile (no lexer or
// parser involved - each typed line is itself one RPN instruction or a
// ":"-prefixed console command).
package replconsole

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pcvm/internal/evaluator"
	"pcvm/internal/typedesc"
)

// boundType is a :type binding made before the accumulated program has
// been through ExtractVariables; Console replays it once Compile needs
// it.
type boundType struct {
	name string
	kind string
}

// Console is a line-oriented front end over a RuntimeEvaluator: program
// lines accumulate in a buffer, ":"-prefixed commands drive
// compilation, execution and inspection.
type Console struct {
	in     *bufio.Scanner
	out    io.Writer
	prompt string

	lines        []string
	pendingTypes []boundType

	eval     *evaluator.RuntimeEvaluator
	compiled bool
	mode     evaluator.Mode
}

// New returns a Console reading lines from in and writing prompts and
// results to out.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:     bufio.NewScanner(in),
		out:    out,
		prompt: ">>> ",
		mode:   evaluator.Fast,
	}
}

// Run drives the prompt loop until "exit" is typed or the input is
// exhausted.
func (c *Console) Run() error {
	fmt.Fprintln(c.out, "pcvm console | type 'exit' to quit, ':help' for commands")
	for {
		fmt.Fprint(c.out, c.prompt)
		if !c.in.Scan() {
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			c.runCommand(line)
			continue
		}
		c.lines = append(c.lines, line)
		c.compiled = false
	}
}

func (c *Console) runCommand(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		fmt.Fprintln(c.out, "program lines: one RPN instruction per line (READ/WRITE/CONST/CAST/ADD/...)")
		fmt.Fprintln(c.out, ":show               print the accumulated program")
		fmt.Fprintln(c.out, ":reset              discard the accumulated program")
		fmt.Fprintln(c.out, ":type NAME TYPE     bind a variable's numeric type (e.g. :type A int32)")
		fmt.Fprintln(c.out, ":set NAME VALUE     write a literal into a bound input variable")
		fmt.Fprintln(c.out, ":mode fast|safe|debug select the execution mode")
		fmt.Fprintln(c.out, ":run                compile (if needed) and execute the program")
		fmt.Fprintln(c.out, ":decompile          print the compiled code stream as text")
		fmt.Fprintln(c.out, ":get NAME           print an output variable's value")

	case ":show":
		fmt.Fprintln(c.out, strings.Join(c.lines, "\n"))

	case ":reset":
		c.lines = nil
		c.pendingTypes = nil
		c.eval = nil
		c.compiled = false
		fmt.Fprintln(c.out, "program discarded")

	case ":type":
		if len(fields) != 3 {
			fmt.Fprintln(c.out, "usage: :type NAME TYPE")
			return
		}
		if _, ok := typedesc.ParseTypeName(fields[2]); !ok {
			fmt.Fprintln(c.out, "error: unknown type", fields[2])
			return
		}
		c.pendingTypes = append(c.pendingTypes, boundType{name: fields[1], kind: fields[2]})
		c.compiled = false

	case ":set":
		if len(fields) != 3 {
			fmt.Fprintln(c.out, "usage: :set NAME VALUE")
			return
		}
		if err := c.ensureCompiled(); err != nil && c.eval == nil {
			fmt.Fprintln(c.out, "error:", err)
			return
		}
		td, ok := c.variableType(fields[1])
		if !ok {
			fmt.Fprintln(c.out, "error: no such variable", fields[1])
			return
		}
		if err := writeInput(c.eval, fields[1], td, fields[2]); err != nil {
			fmt.Fprintln(c.out, "error:", err)
		}

	case ":mode":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: :mode fast|safe|debug")
			return
		}
		switch fields[1] {
		case "fast":
			c.mode = evaluator.Fast
		case "safe":
			c.mode = evaluator.Safe
		case "debug":
			c.mode = evaluator.Debug
		default:
			fmt.Fprintln(c.out, "unknown mode", fields[1])
		}

	case ":run":
		c.runProgram()

	case ":decompile":
		if err := c.ensureCompiled(); err != nil && c.eval == nil {
			fmt.Fprintln(c.out, "error:", err)
			return
		}
		text, err := c.eval.Decompile()
		if err != nil {
			fmt.Fprintln(c.out, "error:", err)
			return
		}
		fmt.Fprint(c.out, text)

	case ":get":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: :get NAME")
			return
		}
		td, ok := c.variableType(fields[1])
		if !ok {
			fmt.Fprintln(c.out, "error: no such variable", fields[1])
			return
		}
		s, err := readOutput(c.eval, fields[1], td)
		if err != nil {
			fmt.Fprintln(c.out, "error:", err)
			return
		}
		fmt.Fprintln(c.out, s)

	default:
		fmt.Fprintln(c.out, "unknown command", fields[0])
	}
}

// ensureCompiled (re-)runs ExtractVariables/Compile over the
// accumulated lines if the program buffer has changed since the last
// compile. A Compile error still leaves c.eval usable (see the ordering
// note in evaluator.Compile), so callers only bail out on a nil eval.
func (c *Console) ensureCompiled() error {
	if c.compiled && c.eval != nil {
		return nil
	}
	e := evaluator.New()
	source := strings.Join(c.lines, "\n") + "\n"
	if err := e.ExtractVariables(source); err != nil {
		return err
	}
	for _, bt := range c.pendingTypes {
		td, _ := typedesc.ParseTypeName(bt.kind)
		if e.SetInputType(bt.name, td) != nil {
			if err := e.SetOutputType(bt.name, td); err != nil {
				return err
			}
		}
	}
	c.eval = e
	c.compiled = true
	return e.Compile(source)
}

func (c *Console) variableType(name string) (typedesc.TypeDescriptor, bool) {
	if c.eval == nil {
		return typedesc.TypeDescriptor{}, false
	}
	for i := 0; ; i++ {
		n, td, ok := c.eval.BrowseInputVariable(i)
		if !ok {
			break
		}
		if n == name {
			return td, true
		}
	}
	for i := 0; ; i++ {
		n, td, ok := c.eval.BrowseOutputVariable(i)
		if !ok {
			break
		}
		if n == name {
			return td, true
		}
	}
	return typedesc.TypeDescriptor{}, false
}

func (c *Console) runProgram() {
	if err := c.ensureCompiled(); err != nil {
		fmt.Fprintln(c.out, "compile error:", err)
		if c.eval == nil {
			return
		}
	}
	if err := c.eval.Execute(c.mode, c.out); err != nil {
		fmt.Fprintln(c.out, "runtime error:", err)
		return
	}
	fmt.Fprintln(c.out, "ok")
}
