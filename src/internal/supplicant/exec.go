package supplicant

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	printable := strings.Join(redact(args), " ")
	log.Debugf("Running %s %s", name, printable)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errors.Wrap(errors.ErrCodeTimeout, "command timed out: "+name, ctxErr)
		}
		var exitCode *int
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			exitCode = &code
		}
		command := strings.TrimSpace(name + " " + printable)
		return "", errors.NewCommandFailedError(command, exitCode, strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// redact masks secrets that follow a "psk" or "password" argument.
func redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		if out[i-1] == "psk" || out[i-1] == "password" {
			out[i] = "***"
		}
	}
	return out
}
