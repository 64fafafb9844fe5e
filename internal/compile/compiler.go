package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"resume-tailor/internal/shared/telemetry"
)

const outputTailLines = 40

// Compiler turns a .tex file into a PDF written to outDir.
type Compiler interface {
	Compile(ctx context.Context, texPath, outDir string) error
}

// ExitError reports a compiler run that did not exit cleanly.
type ExitError struct {
	Err    error
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("latex compiler failed: %v", e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Details is the exit status followed by the tail of the compiler output.
func (e *ExitError) Details() string {
	tail := tailLines(e.Output, outputTailLines)
	if tail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n" + tail
}

// PDFLaTeX runs a pdflatex-compatible binary.
type PDFLaTeX struct {
	Binary    string
	TexInputs string
	Timeout   time.Duration
}

// Compile runs the compiler once in non-interactive mode. The process
// inherits the environment with TEXINPUTS set, and is killed when ctx ends or
// the timeout elapses.
func (p PDFLaTeX) Compile(ctx context.Context, texPath, outDir string) error {
	binary := p.Binary
	if binary == "" {
		binary = "pdflatex"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", binary, err)
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, "-interaction=nonstopmode", "-output-directory", outDir, texPath)
	cmd.Dir = outDir
	cmd.WaitDelay = 2 * time.Second
	cmd.Env = os.Environ()
	if p.TexInputs != "" {
		cmd.Env = append(cmd.Env, "TEXINPUTS="+p.TexInputs)
	}
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	fields := map[string]any{
		"binary":      binary,
		"tex_path":    texPath,
		"duration_ms": time.Since(start).Milliseconds(),
		"request_id":  telemetry.RequestID(ctx),
	}
	if cmd.ProcessState != nil {
		fields["exit_code"] = cmd.ProcessState.ExitCode()
	}

	if runErr == nil {
		telemetry.Info("compile.run", fields)
		return nil
	}
	fields["error"] = runErr
	telemetry.Warn("compile.run", fields)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		runErr = fmt.Errorf("timed out after %s: %w", p.Timeout, runErr)
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) || ctx.Err() != nil {
		return &ExitError{Err: runErr, Output: output.String()}
	}
	return fmt.Errorf("run %s: %w", binary, runErr)
}

func tailLines(s string, n int) string {
	s = strings.TrimRight(s, "\r\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

var _ Compiler = PDFLaTeX{}
