package libseccomp

import (
	"io/ioutil"
	"os"

	"github.com/criyle/go-dettrace/pkg/seccomp"
	libseccomp "github.com/seccomp/libseccomp-golang"
)

// Builder turns cmd/dettrace's SeccompConfig allow/trace lists into a
// compiled BPF program: the policy half of the "seccomp-BPF filter
// installation" collaborator spec.md section 1 puts out of scope, leaving
// only this mechanical translation to syscall names into libseccomp rules
// for the core to consume through bootstrap.Runner.Filter.
type Builder struct {
	Allow, Trace []string
	Default      seccomp.Action
}

// actTrace is the rule every name in Builder.Trace gets: ActionTrace with
// seccomp.MsgHandle packed into SECCOMP_RET_DATA, so the supervisor's
// GetEventMessage can tell a routed syscall apart from the 0x7fff
// no-rule-matched sentinel (spec.md section 6).
var actTrace = libseccomp.ActTrace.SetReturnCode(seccomp.MsgHandle)

// Build compiles Allow/Trace/Default into an exported BPF program.
func (b *Builder) Build() (seccomp.Filter, error) {
	filter, err := libseccomp.NewFilter(ToSeccompAction(b.Default))
	if err != nil {
		return nil, err
	}
	defer filter.Release()

	if err = addFilterActions(filter, b.Allow, libseccomp.ActAllow); err != nil {
		return nil, err
	}
	if err = addFilterActions(filter, b.Trace, actTrace); err != nil {
		return nil, err
	}
	return ExportBPF(filter)
}

// ExportBPF drains libseccomp's own BPF export (which only writes to an
// io.Writer) through a pipe into the seccomp.Filter byte form
// bootstrap.Runner's SockFprog conversion needs.
func ExportBPF(filter *libseccomp.ScmpFilter) (seccomp.Filter, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	// export BPF to pipe
	go func() {
		filter.ExportBPF(w)
		w.Close()
	}()

	// get BPF binary
	bin, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return seccomp.Filter(bin), nil
}

// addFilterActions adds one rule per syscall name, used for both
// Builder.Allow (with ActAllow) and Builder.Trace (with actTrace).
func addFilterActions(filter *libseccomp.ScmpFilter, names []string, action libseccomp.ScmpAction) error {
	for _, s := range names {
		if err := addFilterAction(filter, s, action); err != nil {
			return err
		}
	}
	return nil
}

func addFilterAction(filter *libseccomp.ScmpFilter, name string, action libseccomp.ScmpAction) error {
	syscallID, err := libseccomp.GetSyscallFromName(name)
	if err != nil {
		return err
	}
	if err = filter.AddRule(syscallID, action); err != nil {
		return err
	}
	return nil
}
