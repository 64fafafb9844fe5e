package tailor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-tailor/internal/history"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/apperr"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/util"
)

const updatedSuffix = "_updated.tex"

var errEmptyCompletion = errors.New("model returned an empty completion")

type Service struct {
	Store    object.ObjectStore
	LLM      llm.Client
	Model    string
	Recorder *history.Recorder
}

// Result points at the rewritten document.
type Result struct {
	UpdatedLatexURL string
	OutputKey       string
}

// UpdatedKey derives the output key by dropping everything from the first
// "." of the source key and appending "_updated.tex".
func UpdatedKey(sourceKey string) string {
	return util.StripFromFirstDot(sourceKey) + updatedSuffix
}

// Tailor rewrites the stored resume for the job description and stores the
// model's answer next to it. The source object is never modified.
func (s *Service) Tailor(ctx context.Context, req Request) (res Result, err error) {
	start := time.Now()
	done := metrics.Track(metrics.OpTailor)
	defer func() {
		done(err)
		s.Recorder.Record(ctx, history.Run{
			Kind:       history.KindTailor,
			SourceKey:  req.LatexFilePath,
			OutputKey:  res.OutputKey,
			Model:      s.Model,
			DurationMs: time.Since(start).Milliseconds(),
		}, err)
	}()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return Result{}, apperr.Validation("Both job_description and latex_file_path fields are required")
	}

	exists, err := s.Store.Exists(ctx, req.LatexFilePath)
	if err != nil {
		return Result{}, apperr.Unclassified("", err)
	}
	if !exists {
		return Result{}, apperr.NotFound(fmt.Sprintf("File %s not found in bucket %s", req.LatexFilePath, s.Store.Bucket()))
	}

	latex, err := object.ReadText(ctx, s.Store, req.LatexFilePath)
	if err != nil {
		return Result{}, apperr.Unclassified("", err)
	}

	resp, err := s.LLM.Chat(ctx, llm.ChatRequest{
		Model:  s.Model,
		System: llm.TailorSystemPrompt,
		User:   llm.TailorPrompt(req.JobDescription, latex),
	})
	if err != nil {
		return Result{}, apperr.Unclassified("", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return Result{}, apperr.Unclassified("", errEmptyCompletion)
	}

	key := UpdatedKey(req.LatexFilePath)
	n, err := object.PutText(ctx, s.Store, key, resp.Text)
	if err != nil {
		return Result{}, apperr.Unclassified("", err)
	}
	telemetry.Info("tailor.stored", map[string]any{
		"source_key": req.LatexFilePath,
		"output_key": key,
		"bytes":      n,
		"model":      resp.Model,
		"request_id": telemetry.RequestID(ctx),
	})

	return Result{UpdatedLatexURL: s.Store.PublicURL(key), OutputKey: key}, nil
}
