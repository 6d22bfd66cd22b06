package main

import (
	"log"
	"os"
)

// logHandler is the supervisor.Handler debug sink: a thin wrapper over the
// standard library's log.Logger, gated by showDetails. No structured
// logging library is grounded anywhere in the corpus for this hot
// per-syscall path (see SPEC_FULL.md section 3), so this mirrors the
// teacher's own println-if-showDetails idiom from cmd/run_program/main.go
// exactly, just promoted to a named type so it satisfies
// supervisor.Handler.
type logHandler struct {
	logger      *log.Logger
	showDetails bool
}

func newLogHandler(showDetails bool) *logHandler {
	return &logHandler{
		logger:      log.New(os.Stderr, "", log.LstdFlags),
		showDetails: showDetails,
	}
}

func (h *logHandler) Debug(v ...interface{}) {
	if h.showDetails {
		h.logger.Println(v...)
	}
}
