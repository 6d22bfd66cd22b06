package libseccomp

import (
	"github.com/criyle/go-dettrace/pkg/seccomp"
	libseccomp "github.com/elastic/go-seccomp-bpf"
)

// ToSeccompAction translates this module's seccomp.Action — the vocabulary
// Builder and the default/allow/trace lists in cmd/dettrace's config speak
// — into go-seccomp-bpf's action type, the one Builder.Build hands to
// libseccomp-golang's ScmpFilter.AddRule. ActionTrace is the one that
// matters most here: it is what produces the seccomp-prehook stop
// supervisor.classify recognizes first in its priority order.
func ToSeccompAction(a seccomp.Action) libseccomp.Action {
	var action libseccomp.Action
	switch a.Action() {
	case seccomp.ActionAllow:
		action = libseccomp.ActionAllow
	case seccomp.ActionErrno:
		action = libseccomp.ActionErrno
	case seccomp.ActionTrace:
		action = libseccomp.ActionTrace
	default:
		action = libseccomp.ActionKillProcess
	}
	// The low 16 bits of the action carry SECCOMP_RET_DATA, the payload
	// the supervisor's GetEventMessage reads off the ptrace event — not
	// officially exposed by go-seccomp-bpf's own action type.
	action = action.WithReturnData(int(a.ReturnCode()))
	return action
}
