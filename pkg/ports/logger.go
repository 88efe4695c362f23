// Package ports defines the interfaces through which ainspire talks to the
// outside world: decoders, renderers, the classifier, storage and logging.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-frame and per-job details inside a component.
	LevelDebug LogLevel = iota
	// LevelInfo is for queue-level progress (video started, collection saved).
	LevelInfo
	// LevelWarn is for problems that cost an item but not the run,
	// such as a skipped classification.
	LevelWarn
	// LevelError is for problems that stop a queue or the whole run.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel.
// Unknown values fall back to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet", "silent":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger abstracts logging operations with multi-language support.
//
// The msg argument is a lexicon key; implementations translate it for the
// active language before formatting it with args.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that tags every line with the component
	// name, e.g. "video-queue" or "classifier".
	WithComponent(component string) Logger
}
