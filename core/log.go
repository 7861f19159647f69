package core

import "github.com/rs/zerolog"

// Log is the logging surface threaded into state-mutating methods. No
// global logger: callers own a zerolog.Logger and pass it down.
type Log interface {
	Info() *zerolog.Event
	Debug() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}
