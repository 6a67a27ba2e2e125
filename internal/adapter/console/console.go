package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/memory-map/internal/app"
)

// Runtime is the part of app.Runtime the console drives.
type Runtime interface {
	Dispatch(ctx context.Context, cmd app.Command) error
	Snapshot(ctx context.Context) (app.State, error)
}

// Console reads command lines from in and writes responses to out.
type Console struct {
	runtime Runtime
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
}

// New creates a console over a runtime.
func New(runtime Runtime, in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	return &Console{runtime: runtime, in: in, out: out, logger: logger}
}

// Run processes lines until quit, end of input, or ctx cancellation. It
// returns nil on quit or end of input.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	fmt.Fprintln(c.out, `type "help" for commands`)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := Parse(scanner.Text())
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
			continue
		}

		switch line.Action {
		case ActionQuit:
			return nil
		case ActionHelp:
			fmt.Fprintln(c.out, Usage)
		case ActionState:
			if err := c.printState(ctx); err != nil {
				return err
			}
		case ActionCommand:
			if err := c.runtime.Dispatch(ctx, line.Command); err != nil {
				if errors.Is(err, app.ErrStopped) || ctx.Err() != nil {
					return err
				}
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read console input: %w", err)
	}
	c.logger.Debug("console input closed")
	return nil
}

func (c *Console) printState(ctx context.Context) error {
	s, err := c.runtime.Snapshot(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
