package viewer

import (
	"time"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/supervisor"
)

// Mode is the controller state.
type Mode int

const (
	Running Mode = iota
	Paused
	ShuttingDown
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case ShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

// Command is an operator request.
type Command int

const (
	TogglePause Command = iota + 1
	ShowStats
	ShowHelp
	Quit
	Interrupt
)

func (c Command) String() string {
	switch c {
	case TogglePause:
		return "toggle-pause"
	case ShowStats:
		return "stats"
	case ShowHelp:
		return "help"
	case Quit:
		return "quit"
	case Interrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// Stream identifies which producer output a line came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// Action is one input to the controller. Every source (producer output,
// keyboard, timer, producer exit) is turned into actions and handled one
// at a time.
type Action interface {
	action()
}

// LineAction carries one producer output line.
type LineAction struct {
	Stream Stream
	Text   string
}

// KeyAction carries an operator command.
type KeyAction struct {
	Command Command
}

// TickAction is a periodic stats tick.
type TickAction struct {
	At time.Time
}

// ExitAction reports that the producer exited on its own.
type ExitAction struct {
	Status supervisor.ExitStatus
}

func (LineAction) action() {}
func (KeyAction) action()  {}
func (TickAction) action() {}
func (ExitAction) action() {}
