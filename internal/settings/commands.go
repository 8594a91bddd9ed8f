package settings

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Built-in command names.
const (
	CmdHelp   = "help"
	CmdList   = "settings.list"
	CmdCommit = "settings.commit"
)

// Terminator ends every response in Serve.
const Terminator = "."

// Commands is the line-oriented configuration protocol:
//
//	help                   list every command and setting
//	settings.list          print "name value" for every setting
//	settings.commit        persist staged values
//	<name>                 print the value of a setting
//	<name> <value...>      change a setting
type Commands struct {
	m *Manager
}

// NewCommands creates a protocol handler for m.
func NewCommands(m *Manager) *Commands {
	return &Commands{m: m}
}

// Execute runs one command line and returns its output, without a
// trailing newline.
func (c *Commands) Execute(line string) (string, error) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)

	switch name {
	case "":
		return "", nil
	case CmdHelp:
		lines := append([]string{CmdHelp, CmdList, CmdCommit}, c.m.Names()...)
		return strings.Join(lines, "\n"), nil
	case CmdList:
		var lines []string
		for _, n := range c.m.Names() {
			v, _ := c.m.Get(n)
			lines = append(lines, n+" "+v)
		}
		return strings.Join(lines, "\n"), nil
	case CmdCommit:
		return "", c.m.Commit()
	}

	if args == "" {
		return c.m.Get(name)
	}
	return "", c.m.Set(name, args, SourceCommand)
}

// Serve reads commands from r until EOF or ctx is done, writing each
// response followed by a Terminator line. Errors are reported in-band as
// "error: ..." lines and do not stop the loop.
func (c *Commands) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	return Serve(ctx, c.Execute, r, w)
}

// ExecFunc runs one command line.
type ExecFunc func(line string) (string, error)

// Serve runs the protocol loop of Commands.Serve with exec, for callers
// that must run commands somewhere other than the reading goroutine.
func Serve(ctx context.Context, exec ExecFunc, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	bw := bufio.NewWriter(w)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := exec(scanner.Text())
		if out != "" {
			fmt.Fprintln(bw, out)
		}
		if err != nil {
			fmt.Fprintf(bw, "error: %v\n", err)
		}
		fmt.Fprintln(bw, Terminator)
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read command: %w", err)
	}
	return nil
}
