package bootstrap

import "testing"

func TestResolvePathLooksUpBareName(t *testing.T) {
	path, err := resolvePath("sh")
	if err != nil {
		t.Skipf("sh not on PATH in this environment: %v", err)
	}
	if path == "" {
		t.Fatal("expected a non-empty resolved path")
	}
}

func TestResolvePathRejectsMissingAbsolutePath(t *testing.T) {
	if _, err := resolvePath("/no/such/binary/here"); err == nil {
		t.Fatal("expected an error resolving a nonexistent absolute path")
	}
}
