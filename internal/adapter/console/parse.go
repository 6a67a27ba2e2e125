// Package console is a line-oriented front-end: it reads commands from a
// terminal, dispatches them through the runtime and renders the views as
// text.
package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/memory-map/internal/app"
	"github.com/couchcryptid/memory-map/internal/filter"
)

// Action is what a parsed line asks the console to do.
type Action int

const (
	ActionNone Action = iota
	ActionCommand
	ActionState
	ActionHelp
	ActionQuit
)

var (
	// ErrUnknownVerb is returned for a line whose first word is not a command.
	ErrUnknownVerb = errors.New("unknown command")

	// ErrUsage is returned when a command's arguments are missing or malformed.
	ErrUsage = errors.New("usage")
)

// Line is one parsed input line.
type Line struct {
	Action  Action
	Command app.Command
}

// Usage lists the accepted commands.
const Usage = `commands:
  filter <text>    free-text search (empty text clears)
  link <query>     open a shared link (s=... or hashtag=...)
  search           toggle the search box (closing clears the filter)
  goto <id>        fly to a memory
  basemap <id>     switch the basemap
  dismiss          close the welcome overlay
  click            click the map
  gesture          pan or zoom the map
  pill             click the memory pill
  state            print the session state
  help             show this text
  quit             exit`

// Parse turns a console line into a Line. Blank lines yield ActionNone.
func Parse(input string) (Line, error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "":
		return Line{Action: ActionNone}, nil
	case "filter", "f":
		return command(app.SetFilter{Term: rest}), nil
	case "link", "l":
		if rest == "" {
			return Line{}, fmt.Errorf("%w: link <query>", ErrUsage)
		}
		return command(linkCommand(app.ParseDeepLink(rest))), nil
	case "search":
		return command(app.ToggleSearch{}), nil
	case "goto", "g":
		id, err := strconv.Atoi(rest)
		if err != nil || id <= 0 {
			return Line{}, fmt.Errorf("%w: goto <id>", ErrUsage)
		}
		return command(app.GoToRecord{ID: id}), nil
	case "basemap", "b":
		if rest == "" {
			return Line{}, fmt.Errorf("%w: basemap <id>", ErrUsage)
		}
		return command(app.SwitchBasemap{ID: rest}), nil
	case "dismiss":
		return command(app.DismissOverlay{}), nil
	case "click":
		return command(app.MapClick{}), nil
	case "gesture":
		return command(app.UserGesture{}), nil
	case "pill":
		return command(app.PillClick{}), nil
	case "state":
		return Line{Action: ActionState}, nil
	case "help", "?":
		return Line{Action: ActionHelp}, nil
	case "quit", "exit":
		return Line{Action: ActionQuit}, nil
	default:
		return Line{}, fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
}

func command(c app.Command) Line {
	return Line{Action: ActionCommand, Command: c}
}

// linkCommand is the command a shared link applies on arrival. Exact hashtag
// matching is only reachable this way.
func linkCommand(link app.DeepLink) app.Command {
	if link.Query.Mode == filter.ModeHashtag {
		return app.SetHashtag{Tag: link.Term}
	}
	return app.SetFilter{Term: link.Term}
}
