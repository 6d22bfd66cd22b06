package types

import "time"

// Result is the outcome of one supervised run.
type Result struct {
	Status                // the terminal status for the run
	ExitCode          int // exit code, valid when Status == StatusExited
	TerminatingSignal int // signal number, valid when Status == StatusKilledBySignal
	Error             string
	SetUpTime         time.Duration
	RunningTime       time.Duration
}
