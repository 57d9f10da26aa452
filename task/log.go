package task

import (
	"os"

	"github.com/rs/zerolog"
)

// logger is the package's diagnostic sink for SpawnLogged's implicit error
// boundary, configured the way the teaching service configures its request
// logger: structured JSON to stderr with a timestamp, level overridable by
// the embedding program via SetLogLevel.
var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetLogLevel adjusts the verbosity of SpawnLogged's diagnostic output.
func SetLogLevel(level zerolog.Level) {
	logger = logger.Level(level)
}
