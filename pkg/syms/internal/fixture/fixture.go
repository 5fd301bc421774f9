// Package fixture builds small executables for tests that need real ELF
// images: go test links its binaries without a symbol table or DWARF.
package fixture

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// GoHelperLine is the line of the helper function in GoSource.
const GoHelperLine = 6

const GoSource = `package main

import "fmt"

//go:noinline
func helper(n int) int {
	return n * 2
}

func main() {
	fmt.Println(helper(21))
}
`

// CHelperLine is the line of the helper function in CSource.
const CHelperLine = 1

const CSource = `int helper(int x) {
  return x * 3;
}

int main(void) {
  return helper(2);
}
`

// GoProgram builds src as a main package with the given go build flags and
// returns the path of the executable.
func GoProgram(t testing.TB, src string, flags ...string) string {
	t.Helper()
	gobin := filepath.Join(runtime.GOROOT(), "bin", "go")
	if _, err := os.Stat(gobin); err != nil {
		gobin = Tool(t, "go")
	}
	dir := t.TempDir()
	Write(t, dir, "main.go", src)
	Write(t, dir, "go.mod", "module fixture\n\ngo 1.21\n")

	out := filepath.Join(dir, "fixture")
	args := append([]string{"build", "-o", out}, flags...)
	Run(t, dir, []string{"CGO_ENABLED=0", "GOFLAGS="}, gobin, append(args, ".")...)
	return out
}

// CProgram compiles the single source file name with compiler into dir.
func CProgram(t testing.TB, compiler, dir, name, src string, flags ...string) string {
	t.Helper()
	cc := Tool(t, compiler)
	Write(t, dir, name, src)
	out := filepath.Join(dir, "prog")
	args := append([]string{"-o", out}, flags...)
	Run(t, dir, nil, cc, append(args, name)...)
	return out
}

// Tool returns the path of an external tool, skipping the test without it.
func Tool(t testing.TB, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
	return path
}

func Run(t testing.TB, dir string, env []string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s %v: %s", name, args, out)
}

func Write(t testing.TB, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
