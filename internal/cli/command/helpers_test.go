package command

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// testEnv runs the CLI against a private segment directory.
type testEnv struct {
	t     *testing.T
	dir   string
	stdin io.Reader
	extra []string
}

func newTestEnv(t *testing.T, extra ...string) *testEnv {
	t.Helper()
	return &testEnv{t: t, dir: t.TempDir(), extra: extra}
}

// run executes one command line and returns what it wrote to stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = e.stdin
	if app.Reader == nil {
		app.Reader = strings.NewReader("")
	}

	argv := []string{"shmap", "--dir", e.dir, "--namespace", "clitest"}
	argv = append(argv, e.extra...)
	argv = append(argv, args...)
	err := app.Run(argv)
	return stdout.String(), err
}

// mustRun fails the test if the command fails.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%v: %v", args, err)
	}
	return out
}
