package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/drawpad/internal/action"
)

// replayCmd applies a script of intents to a fresh surface and exports the
// result.
type replayCmd struct {
	*root
	fs     *flag.FlagSet
	canvas canvasFlags
	output string
	script string
	stdin  io.Reader
}

func parseReplayCmd(args []string, r *root) (*replayCmd, error) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	c := &replayCmd{root: r, fs: fs, stdin: os.Stdin}
	c.canvas.register(fs)
	fs.StringVar(&c.output, "o", "", "output file (.png or .pdf); defaults to a timestamped name in -dir")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.script = fs.Arg(0)
	return c, nil
}

func (c *replayCmd) Program() string {
	return subProgram(c.root, "replay")
}

func (c *replayCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *replayCmd) Run() error {
	acts, err := c.readScript()
	if err != nil {
		return err
	}
	extra, err := c.canvas.options(c.root)
	if err != nil {
		return err
	}
	state, err := c.newState(extra...)
	if err != nil {
		return err
	}
	if _, err := state.DispatchAll(acts); err != nil {
		return fmt.Errorf("replay %s: %w", c.script, err)
	}
	res, err := state.Dispatch(action.Action{Kind: action.Export, Path: c.output})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stderr, "saved %s\n", res.Path)
	return nil
}

func (c *replayCmd) readScript() ([]action.Action, error) {
	if c.script == "-" {
		acts, err := action.ReadAll(c.stdin)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return acts, nil
	}
	f, err := os.Open(c.script)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	acts, err := action.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.script, err)
	}
	return acts, nil
}

