package bootstrap

import (
	"os"
	"os/exec"
	"strings"
)

// resolvePath mirrors how os/exec.Command resolves a bare command name
// against PATH: a name containing a slash is used as-is, anything else is
// looked up with exec.LookPath.
func resolvePath(name string) (string, error) {
	if strings.ContainsRune(name, '/') {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}
	return exec.LookPath(name)
}
