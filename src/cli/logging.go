// Contains various utility functions related to logging.

package cli

import (
	"os"
	"path"

	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("cli")

// A Verbosity is used as a flag to define logging verbosity.
type Verbosity int

// UnmarshalFlag implements the flags.Unmarshaler interface, allowing a Verbosity
// to be set directly off the command line as e.g. --verbosity=notice or --verbosity=2.
func (v *Verbosity) UnmarshalFlag(in string) error {
	switch in {
	case "critical", "0":
		*v = Verbosity(logging.CRITICAL)
	case "error", "1":
		*v = Verbosity(logging.ERROR)
	case "warning", "2":
		*v = Verbosity(logging.WARNING)
	case "notice", "3":
		*v = Verbosity(logging.NOTICE)
	case "info", "4":
		*v = Verbosity(logging.INFO)
	case "debug", "5":
		*v = Verbosity(logging.DEBUG)
	default:
		*v = Verbosity(logging.WARNING)
	}
	return nil
}

// logLevel is the current verbosity level that is set.
var logLevel = logging.WARNING

var fileLogLevel = logging.WARNING
var fileBackend logging.Backend
var fileHandle *os.File

// InitLogging initialises logging backends.
func InitLogging(verbosity Verbosity) {
	logLevel = logging.Level(verbosity)
	setLogBackend(logging.NewLogBackend(os.Stderr, "", 0))
}

// InitFileLogging initialises an optional logging backend to a file, in addition to stderr.
func InitFileLogging(logFile string, logFileLevel Verbosity) {
	fileLogLevel = logging.Level(logFileLevel)
	if err := os.MkdirAll(path.Dir(logFile), os.ModeDir|0775); err != nil {
		log.Fatalf("Error creating log file directory: %s", err)
	}
	file, err := os.Create(logFile)
	if err != nil {
		log.Fatalf("Error opening log file: %s", err)
	}
	fileHandle = file
	fileBackend = logging.NewBackendFormatter(logging.NewLogBackend(file, "", 0), logFormatter(false))
	setLogBackend(logging.NewLogBackend(os.Stderr, "", 0))
}

// CloseFileLogging flushes and closes the file logging backend, if one is open.
func CloseFileLogging() {
	if fileHandle != nil {
		fileHandle.Close()
		fileHandle = nil
	}
}

func logFormatter(coloured bool) logging.Formatter {
	formatStr := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if coloured {
		formatStr = "%{color}" + formatStr + "%{color:reset}"
	}
	return logging.MustStringFormatter(formatStr)
}

func setLogBackend(backend logging.Backend) {
	backend = logging.NewBackendFormatter(backend, logFormatter(false))
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(logLevel, "")
	if fileBackend == nil {
		logging.SetBackend(leveled)
		return
	}
	fileBackendLeveled := logging.AddModuleLevel(fileBackend)
	fileBackendLeveled.SetLevel(fileLogLevel, "")
	logging.SetBackend(leveled, fileBackendLeveled)
}
