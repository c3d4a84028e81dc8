package logger

import "fmt"

// Level defines the logging level. Higher levels are more verbose.
type Level int

const (
	// LevelUnknown is returned when a level cannot be determined.
	LevelUnknown Level = iota - 1

	// LevelDisabled means no messages will be logged.
	LevelDisabled

	LevelError
	LevelWarn
	LevelInfo
	LevelDebug

	// LevelTrace means all messages will be logged.
	LevelTrace
)

var levelNames = map[Level]string{
	LevelDisabled: "disabled",
	LevelError:    "error",
	LevelWarn:     "warn",
	LevelInfo:     "info",
	LevelDebug:    "debug",
	LevelTrace:    "trace",
}

// String returns a string representation of Level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	return fmt.Sprintf("Unknown(%d)", int(l))
}

// LevelFromString is the inverse of Level.String for known levels.
func LevelFromString(str string) (Level, bool) {
	for level, name := range levelNames {
		if name == str {
			return level, true
		}
	}

	return LevelUnknown, false
}

// LevelForNamespace implements Config. When a Level is passed as a config,
// all namespaces will have the same log level.
func (l Level) LevelForNamespace(_ string) Level {
	return l
}
