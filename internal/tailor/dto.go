package tailor

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Request asks for a stored LaTeX resume to be rewritten for a job.
type Request struct {
	JobDescription string `json:"job_description" validate:"required"`
	LatexFilePath  string `json:"latex_file_path" validate:"required"`
}

// Normalize trims surrounding whitespace so blank fields fail validation.
func (r *Request) Normalize() {
	r.JobDescription = strings.TrimSpace(r.JobDescription)
	r.LatexFilePath = strings.TrimSpace(r.LatexFilePath)
}

// Validate checks the required fields.
func (r Request) Validate() error {
	return validate.Struct(r)
}

type response struct {
	Message         string `json:"message"`
	UpdatedLatexURL string `json:"updated_latex_url"`
}
