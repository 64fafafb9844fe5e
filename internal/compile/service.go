package compile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/extract"
	"resume-tailor/internal/history"
	"resume-tailor/internal/shared/apperr"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/util"
)

const (
	texFileName = "resume.tex"
	pdfFileName = "resume.pdf"
	derivedDir  = "pdfs"
)

// Service compiles stored .tex documents and publishes the PDF. Each request
// gets its own scratch directory under WorkDir.
type Service struct {
	Store     object.ObjectStore
	Compiler  Compiler
	WorkDir   string
	OutputKey string
	KeyMode   string
	Recorder  *history.Recorder
}

// Result describes a published PDF. PageCount is zero when the PDF could not
// be inspected.
type Result struct {
	PDFURL    string
	OutputKey string
	PageCount int
}

// Convert downloads texKey, compiles it in a private scratch directory and
// uploads the PDF to the output key.
func (s *Service) Convert(ctx context.Context, texKey string) (res Result, err error) {
	start := time.Now()
	done := metrics.Track(metrics.OpCompile)
	defer func() {
		done(err)
		s.Recorder.Record(ctx, history.Run{
			Kind:       history.KindCompile,
			SourceKey:  texKey,
			OutputKey:  res.OutputKey,
			DurationMs: time.Since(start).Milliseconds(),
		}, err)
	}()

	texKey = strings.TrimSpace(texKey)
	if texKey == "" {
		return Result{}, apperr.Validation("Missing .tex file path")
	}

	exists, err := s.Store.Exists(ctx, texKey)
	if err != nil {
		return Result{}, apperr.Unclassified("An error occurred", err)
	}
	if !exists {
		return Result{}, apperr.NotFound("The .tex file does not exist in storage")
	}

	dir, err := os.MkdirTemp(s.WorkDir, "compile-"+uuid.NewString()+"-*")
	if err != nil {
		return Result{}, apperr.Unclassified("An error occurred", fmt.Errorf("create work dir: %w", err))
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			telemetry.Warn("compile.cleanup.failed", map[string]any{
				"dir":        dir,
				"error":      rmErr,
				"request_id": telemetry.RequestID(ctx),
			})
		}
	}()

	texPath := filepath.Join(dir, texFileName)
	if err := object.DownloadFile(ctx, s.Store, texKey, texPath); err != nil {
		return Result{}, apperr.Unclassified("An error occurred", err)
	}

	if err := s.Compiler.Compile(ctx, texPath, dir); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return Result{}, apperr.Compilation("LaTeX compilation failed", exitErr.Details(), err)
		}
		return Result{}, apperr.Unclassified("An error occurred", err)
	}

	pdfPath := filepath.Join(dir, pdfFileName)
	if _, err := os.Stat(pdfPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, apperr.Compilation("PDF generation failed", "", nil)
		}
		return Result{}, apperr.Unclassified("An error occurred", err)
	}

	pages := 0
	if info, inspectErr := extract.InspectPDFFile(ctx, pdfPath); inspectErr != nil {
		telemetry.Warn("compile.inspect.failed", map[string]any{
			"source_key": texKey,
			"error":      inspectErr,
			"request_id": telemetry.RequestID(ctx),
		})
	} else {
		pages = info.Pages
	}

	outputKey := s.outputKeyFor(texKey)
	if _, err := object.PutFile(ctx, s.Store, outputKey, "application/pdf", pdfPath); err != nil {
		return Result{}, apperr.Unclassified("An error occurred", err)
	}
	if err := s.Store.MakePublic(ctx, outputKey); err != nil {
		return Result{}, apperr.Unclassified("An error occurred", err)
	}

	return Result{
		PDFURL:    s.Store.PublicURL(outputKey),
		OutputKey: outputKey,
		PageCount: pages,
	}, nil
}

// outputKeyFor returns the fixed output key unless derived keys are enabled,
// in which case "a/resume.tex" maps to "pdfs/a/resume.pdf".
func (s *Service) outputKeyFor(texKey string) string {
	if s.KeyMode == config.PDFKeyModeDerived {
		return path.Join(derivedDir, util.TrimExt(util.CleanKey(texKey))+".pdf")
	}
	if s.OutputKey == "" {
		return config.DefaultPDFOutputKey
	}
	return s.OutputKey
}

// CompileFile compiles a local .tex file into outDir and returns the PDF path.
// The command line entrypoint uses it without touching object storage.
func CompileFile(ctx context.Context, c Compiler, texPath, outDir string) (string, error) {
	absTex, err := filepath.Abs(texPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", outDir, err)
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}
	if err := c.Compile(ctx, absTex, absOut); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(absTex), filepath.Ext(absTex))
	pdfPath := filepath.Join(absOut, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("pdf generation failed: %w", err)
	}
	return pdfPath, nil
}
