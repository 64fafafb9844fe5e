package llm

import (
	_ "embed"
	"strings"
	"text/template"
)

const (
	// TailorSystemPrompt is the system message for resume tailoring.
	TailorSystemPrompt = "You are an expert in resume updating."
	// SummarySystemPrompt is the system message for summarization.
	SummarySystemPrompt = "You are a helpful assistant that summarizes text."

	summaryUserPrefix = "Summarize the following text:\n\n"
)

var (
	//go:embed prompts/tailor_v1.txt
	tailorPromptV1 string

	tailorTemplate = template.Must(template.New("tailor_v1").Parse(tailorPromptV1))
)

// TailorPrompt embeds the job description and the LaTeX source verbatim into
// the tailoring instructions.
func TailorPrompt(jobDescription, latex string) string {
	var b strings.Builder
	// Execute only fails on writer errors; strings.Builder never returns one.
	_ = tailorTemplate.Execute(&b, struct {
		JobDescription string
		Resume         string
	}{
		JobDescription: jobDescription,
		Resume:         latex,
	})
	return b.String()
}

// SummaryPrompt is the user message for summarizing text.
func SummaryPrompt(text string) string {
	return summaryUserPrefix + text
}
