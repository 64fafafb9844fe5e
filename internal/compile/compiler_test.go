package compile

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript installs an executable shell script standing in for pdflatex.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script compilers are not supported on windows")
	}
	p := filepath.Join(t.TempDir(), "fakelatex")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755))
	return p
}

// parseArgs leaves the output directory in $outdir and the source in $1.
const parseArgs = `outdir=""
while [ $# -gt 1 ]; do
  if [ "$1" = "-output-directory" ]; then outdir="$2"; shift; fi
  shift
done
`

func TestPDFLaTeXWritesPDFAndPassesTexInputs(t *testing.T) {
	bin := writeScript(t, parseArgs+`echo "$TEXINPUTS" > "$outdir/texinputs.txt"
echo "$1" > "$outdir/source.txt"
printf '%%PDF-1.4\n' > "$outdir/resume.pdf"
`)
	dir := t.TempDir()
	texPath := filepath.Join(dir, "resume.tex")
	require.NoError(t, os.WriteFile(texPath, []byte(`\documentclass{article}`), 0o600))

	c := PDFLaTeX{Binary: bin, TexInputs: "/opt/tex//:", Timeout: 10 * time.Second}
	require.NoError(t, c.Compile(context.Background(), texPath, dir))

	assert.FileExists(t, filepath.Join(dir, "resume.pdf"))
	got, err := os.ReadFile(filepath.Join(dir, "texinputs.txt"))
	require.NoError(t, err)
	assert.Equal(t, "/opt/tex//:", strings.TrimSpace(string(got)))
	got, err = os.ReadFile(filepath.Join(dir, "source.txt"))
	require.NoError(t, err)
	assert.Equal(t, texPath, strings.TrimSpace(string(got)))
}

func TestPDFLaTeXNonZeroExitCarriesOutput(t *testing.T) {
	bin := writeScript(t, `echo "! Undefined control sequence."
echo "l.3 \foo"
exit 1
`)
	dir := t.TempDir()

	err := PDFLaTeX{Binary: bin}.Compile(context.Background(), filepath.Join(dir, "resume.tex"), dir)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	assert.Contains(t, exitErr.Details(), "exit status 1")
	assert.Contains(t, exitErr.Details(), "Undefined control sequence")
	assert.NoFileExists(t, filepath.Join(dir, "resume.pdf"))
}

func TestPDFLaTeXTimeoutKillsProcess(t *testing.T) {
	bin := writeScript(t, "exec sleep 5\n")
	dir := t.TempDir()

	start := time.Now()
	err := PDFLaTeX{Binary: bin, Timeout: 100 * time.Millisecond}.Compile(context.Background(), filepath.Join(dir, "resume.tex"), dir)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	assert.Contains(t, exitErr.Error(), "timed out")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestPDFLaTeXMissingBinary(t *testing.T) {
	err := PDFLaTeX{Binary: "definitely-not-a-latex-binary"}.Compile(context.Background(), "resume.tex", t.TempDir())
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
	assert.Contains(t, err.Error(), "not found in PATH")
}

func TestTailLines(t *testing.T) {
	assert.Equal(t, "", tailLines("\n\n", 3))
	assert.Equal(t, "c\nd", tailLines("a\nb\nc\nd\n", 2))
	assert.Equal(t, "a", tailLines("a", 5))
}

func TestCompileFileWithPDFLaTeX(t *testing.T) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		t.Skip("pdflatex not installed")
	}
	dir := t.TempDir()
	texPath := filepath.Join(dir, "cv.tex")
	src := "\\documentclass{article}\n\\begin{document}\nHello\n\\end{document}\n"
	require.NoError(t, os.WriteFile(texPath, []byte(src), 0o600))

	pdfPath, err := CompileFile(context.Background(), PDFLaTeX{Timeout: time.Minute}, texPath, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", filepath.Base(pdfPath))
	assert.FileExists(t, pdfPath)
}

func TestCompileFileReportsMissingPDF(t *testing.T) {
	texPath := filepath.Join(t.TempDir(), "cv.tex")
	require.NoError(t, os.WriteFile(texPath, []byte("x"), 0o600))

	noop := compilerFunc(func(context.Context, string, string) error { return nil })
	_, err := CompileFile(context.Background(), noop, texPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf generation failed")
}
