package supervisor

import (
	"strconv"
	"strings"
	"syscall"
)

// legacyKernelVersion is the first kernel version that no longer needs an
// extra syscall-trap drain between a seccomp pre-hook and the real
// syscall-exit stop; every kernel below it does. Matches the original's `#if LINUX_VERSION_CODE < KERNEL_VERSION(4,8,0)`
// gate (DESIGN.md OQ-2) — except computed once at runtime, since Go has no
// compile-time kernel-version conditional.
var legacyKernelVersion = [3]int{4, 8, 0}

func utsnameToString(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// detectLegacyKernel reports whether the running kernel predates
// legacyKernelVersion. Parse failures are treated as "not legacy": a
// kernel recent enough to run this module's CI images is never the
// pre-4.8 case in practice, and failing open here avoids spuriously
// forcing the extra drain stop on a kernel that never needs it.
func detectLegacyKernel() bool {
	var uts syscall.Utsname
	if err := syscall.Uname(&uts); err != nil {
		return false
	}
	release := utsnameToString(int8ToByte(uts.Release[:]))
	version, ok := parseKernelVersion(release)
	if !ok {
		return false
	}
	return compareVersion(version, legacyKernelVersion) < 0
}

func int8ToByte(in []int8) []byte {
	out := make([]byte, len(in))
	for i, v := range in {
		out[i] = byte(v)
	}
	return out
}

// parseKernelVersion reads the leading "X.Y.Z" of a uname release string
// such as "5.15.0-105-generic".
func parseKernelVersion(release string) ([3]int, bool) {
	var v [3]int
	core := release
	if i := strings.IndexByte(core, '-'); i >= 0 {
		core = core[:i]
	}
	parts := strings.SplitN(core, ".", 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return v, false
		}
		v[i] = n
	}
	return v, true
}

func compareVersion(a, b [3]int) int {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return 0
}
