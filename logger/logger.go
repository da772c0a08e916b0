// Package logger builds the component loggers used across the service.
package logger

import (
	"fmt"
	"io"
	"log"

	"github.com/beka-birhanu/quill-api/config"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// New returns a logger that writes to w with a colored "[NAME]" prefix.
func New(name, color string, w io.Writer) logr.Logger {
	prefix := fmt.Sprintf("%s[%s]%s ", color, name, config.ColorReset)
	return stdr.New(log.New(w, prefix, log.LstdFlags|log.Lmsgprefix))
}

// SetVerbosity sets the global V-level for every logger built by New.
func SetVerbosity(v int) {
	stdr.SetVerbosity(v)
}
