package debug

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adenhq/hive-go/graph"
)

const previewLimit = 50

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// CLI is the interactive front-end of the debugger. It reads operator
// commands, translates them into Session calls and decides when control
// goes back to the engine.
//
// CLI implements graph.Suspender: when the engine receives a break verdict
// it calls Suspend, and the command loop runs nested inside the engine's
// call frame until a control-returning command is issued.
type CLI struct {
	session *Session
	in      *bufio.Scanner
	out     io.Writer

	lastCmd  string
	bannered bool

	// exit terminates the process on quit. Replaceable for tests.
	exit func(code int)
}

var _ graph.Suspender = (*CLI)(nil)

// NewCLI creates a CLI bound to the session, reading from stdin and writing
// to stdout.
func NewCLI(session *Session) *CLI {
	return NewCLIWithIO(session, os.Stdin, os.Stdout)
}

// NewCLIWithIO creates a CLI with custom input and output streams.
func NewCLIWithIO(session *Session, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		session: session,
		in:      bufio.NewScanner(in),
		out:     out,
		exit:    os.Exit,
	}
}

// SetExitFunc replaces the process-exit function invoked by quit.
func (c *CLI) SetExitFunc(exit func(code int)) {
	if exit != nil {
		c.exit = exit
	}
}

// Install wires the session hook and the CLI suspender into the engine.
// It reports whether the engine accepted the debug hook; an engine without
// the capability runs unsupervised.
func (c *CLI) Install(engine any) bool {
	if !c.session.Attach(engine) {
		return false
	}
	if sink, ok := engine.(graph.SuspendSink); ok {
		sink.SetSuspender(c)
	}
	return true
}

// Suspend runs the command loop until a command returns control to the
// engine. It blocks indefinitely awaiting operator input.
func (c *CLI) Suspend(ctx context.Context) {
	if !c.bannered {
		c.bannered = true
		fmt.Fprintln(c.out, bannerStyle.Render("\n🐞 Agent Debugger. Type 'help' or '?' to list commands."))
	}

	c.printLocation()

	for {
		fmt.Fprint(c.out, promptStyle.Render("(debug) "))
		if !c.in.Scan() {
			// Input stream closed: hand control back rather than spin.
			fmt.Fprintln(c.out)
			c.session.Resume()
			return
		}

		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			if c.lastCmd == "" {
				line = "step"
			} else {
				line = c.lastCmd
			}
		}
		c.lastCmd = line

		if c.dispatch(line) {
			return
		}
	}
}

// printLocation shows where execution is suspended.
func (c *CLI) printLocation() {
	if info := c.session.Current(); info != nil {
		fmt.Fprintf(c.out, "Paused before node '%s' (%s)\n", info.NodeID, info.NodeName)
	}
}

// dispatch runs one command line and reports whether control returns to the
// engine. Unrecognized commands are reported and keep the loop alive.
func (c *CLI) dispatch(line string) bool {
	name, arg := splitCommand(line)

	switch name {
	case "step", "s", "next", "n":
		c.session.Step()
		return true

	case "continue", "c":
		c.session.Resume()
		return true

	case "break", "b":
		c.cmdBreak(arg)
		return false

	case "clear":
		c.cmdClear(arg)
		return false

	case "memory", "m":
		c.cmdMemory(arg)
		return false

	case "context":
		c.cmdContext()
		return false

	case "info", "l":
		c.cmdInfo()
		return false

	case "help", "?", "h":
		c.cmdHelp()
		return false

	case "quit", "q":
		fmt.Fprintln(c.out, "Aborting execution...")
		c.exit(0)
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: '%s'. Type 'help' to list commands.\n", name)
		return false
	}
}

func (c *CLI) cmdBreak(arg string) {
	if arg == "" {
		breakpoints := c.session.Breakpoints()
		if len(breakpoints) == 0 {
			fmt.Fprintln(c.out, "No breakpoints set.")
			return
		}
		fmt.Fprintln(c.out, "Breakpoints:")
		for _, id := range breakpoints {
			fmt.Fprintf(c.out, "  - %s\n", id)
		}
		return
	}

	c.session.AddBreakpoint(arg)
	fmt.Fprintf(c.out, "Breakpoint set at '%s'\n", arg)
}

func (c *CLI) cmdClear(arg string) {
	if arg == "" {
		fmt.Fprintln(c.out, "Please specify a node ID")
		return
	}

	if c.session.RemoveBreakpoint(arg) {
		fmt.Fprintf(c.out, "Breakpoint removed from '%s'\n", arg)
	} else {
		fmt.Fprintf(c.out, "No breakpoint found at '%s'\n", arg)
	}
}

func (c *CLI) cmdMemory(arg string) {
	mem := c.session.MemorySnapshot()

	if arg == "" {
		fmt.Fprintln(c.out, "\nMemory Keys:")
		keys := make([]string, 0, len(mem))
		for k := range mem {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(c.out, "  %s: %s\n", k, preview(mem[k]))
		}
		return
	}

	value, ok := mem[arg]
	if !ok {
		fmt.Fprintf(c.out, "Key '%s' not found in memory.\n", arg)
		return
	}

	fmt.Fprintf(c.out, "\n%s:\n", arg)
	fmt.Fprintln(c.out, prettyPrint(value))
}

func (c *CLI) cmdContext() {
	fmt.Fprintln(c.out, "\nCurrent Node Inputs:")
	fmt.Fprintln(c.out, prettyPrint(c.session.Context()))
}

func (c *CLI) cmdInfo() {
	info := c.session.Current()
	if info == nil {
		fmt.Fprintln(c.out, "No active step info.")
		return
	}
	fmt.Fprintf(c.out, "\nNode ID:   %s\n", info.NodeID)
	fmt.Fprintf(c.out, "Node Name: %s\n", info.NodeName)
}

func (c *CLI) cmdHelp() {
	fmt.Fprint(c.out, `Commands:
  step, next (s, n)   Execute the next node and pause
  continue (c)        Continue until the next breakpoint
  break [id] (b)      Set a breakpoint, or list breakpoints with no argument
  clear <id>          Clear a breakpoint
  memory [key] (m)    Show memory keys, or one value in full
  context             Show inputs for the current node
  info (l)            Show info about the current node
  quit (q)            Abort execution and exit
An empty line repeats the last command (or steps).
`)
}

// splitCommand separates the command name from its argument.
func splitCommand(line string) (name, arg string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// preview renders a value for the key listing, truncated with an ellipsis.
func preview(value any) string {
	s := fmt.Sprintf("%v", value)
	runes := []rune(s)
	if len(runes) > previewLimit {
		return string(runes[:previewLimit]) + "..."
	}
	return s
}

// prettyPrint renders a value as indented JSON, falling back to a plain
// rendering when the value cannot be serialized. A rendering failure never
// escapes the command loop.
func prettyPrint(value any) string {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
