package logs

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. Init reconfigures it from config;
// before Init it logs to stderr at info level.
var Logger = logrus.New()

type Options struct {
	Level  string // trace|debug|info|warn|error
	Format string // "json" or text
	File   string // optional log file, stderr when empty
}

func Init(o Options) {
	lvl, err := logrus.ParseLevel(o.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)

	if o.Format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stderr
	if o.File != "" {
		f, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			Logger.Warnf("log file %s: %v, falling back to stderr", o.File, err)
		} else {
			out = f
		}
	}
	Logger.SetOutput(out)
}
