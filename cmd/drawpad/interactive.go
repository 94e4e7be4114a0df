package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/drawpad/internal/action"
	"github.com/example/drawpad/internal/appstate"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, "; ")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// interactiveCmd reads intents line by line, either applying them directly or
// feeding them to an open window.
type interactiveCmd struct {
	*root
	fs     *flag.FlagSet
	canvas canvasFlags
	execs  commandList
	window bool
	state  *appstate.AppState
	stdin  io.Reader
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	i := &interactiveCmd{root: r, fs: fs, stdin: os.Stdin}
	i.canvas.register(fs)
	fs.Var(&i.execs, "e", "execute a command in immediate mode (may be specified multiple times)")
	fs.BoolVar(&i.window, "window", false, "open the drawing window and send commands to it")
	fs.Usage = usageFunc(i)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: i}
	}
	extra, err := i.canvas.options(r)
	if err != nil {
		return nil, err
	}
	if i.state, err = r.newState(extra...); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *interactiveCmd) Program() string {
	return subProgram(i.root, "interactive")
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func (i *interactiveCmd) Run() error {
	if len(i.execs) > 0 {
		for _, cmd := range i.execs {
			done, err := i.executeLine(cmd)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}
	if !i.window {
		return i.loop()
	}
	go func() {
		if err := i.loop(); err != nil {
			fmt.Fprintln(i.stderr, err)
		}
	}()
	i.state.Run()
	return nil
}

func (i *interactiveCmd) loop() error {
	fmt.Fprintln(i.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(i.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(i.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

// executeLine runs one command. done reports that the session should end.
// With -window every intent goes through Post, since the window loop owns the
// session and nothing else may read it.
func (i *interactiveCmd) executeLine(line string) (done bool, err error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "" || strings.HasPrefix(line, "#"):
		return false, nil
	case line == "exit" || line == "quit":
		return true, nil
	case line == "help":
		i.printHelp()
		return false, nil
	case line == "state":
		if i.window {
			return false, fmt.Errorf("state is shown in the window status bar")
		}
		i.printState()
		return false, nil
	}
	act, err := action.Parse(line)
	if err != nil {
		return false, err
	}
	if i.window {
		if !i.state.Post(act) {
			return false, fmt.Errorf("window is not open")
		}
		return false, nil
	}
	res, err := i.state.Dispatch(act)
	if err != nil {
		return false, err
	}
	if res.Message != "" {
		fmt.Fprintln(i.stdout, res.Message)
	}
	return false, nil
}

func (i *interactiveCmd) printHelp() {
	fmt.Fprintln(i.stdout, "commands:")
	for _, k := range action.Kinds() {
		fmt.Fprintf(i.stdout, "  %s\n", k)
	}
	fmt.Fprintln(i.stdout, "  state\n  help\n  exit")
}

func (i *interactiveCmd) printState() {
	st := i.state.Style()
	h := i.state.History().State()
	size := i.state.Surface().Size()
	fmt.Fprintf(i.stdout, "surface %gx%g @%g\n", size.Width, size.Height, i.state.Surface().Density())
	fmt.Fprintf(i.stdout, "tool %s color %s width %d\n", st.Tool, action.FormatColor(st.Color), st.Width)
	fmt.Fprintf(i.stdout, "undo %d redo %d\n", h.Undo, h.Redo)
}
