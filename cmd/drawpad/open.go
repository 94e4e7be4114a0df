package main

import (
	"flag"

	"github.com/example/drawpad/internal/appstate"
)

// openCmd shows the drawing window.
type openCmd struct {
	*root
	fs     *flag.FlagSet
	canvas canvasFlags
	state  *appstate.AppState
}

func parseOpenCmd(args []string, r *root) (*openCmd, error) {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	o := &openCmd{root: r, fs: fs}
	o.canvas.register(fs)
	fs.Usage = usageFunc(o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: o}
	}
	extra, err := o.canvas.options(r)
	if err != nil {
		return nil, err
	}
	if o.state, err = r.newState(extra...); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *openCmd) Program() string {
	return subProgram(o.root, "open")
}

func (o *openCmd) FlagSet() *flag.FlagSet {
	return o.fs
}

func (o *openCmd) Run() error {
	o.state.Run()
	return nil
}
