package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"resume-tailor/internal/compile"
	"resume-tailor/internal/extract"
	"resume-tailor/internal/shared/config"
)

var compileOut string

var compileCmd = &cobra.Command{
	Use:   "compile <file.tex>",
	Short: "Compile a local .tex file to PDF",
	Long:  "Runs the configured LaTeX compiler once on a local file, with the same TEXINPUTS and timeout the server uses.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", ".", "Directory for the PDF and compiler artifacts")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	compiler := compile.PDFLaTeX{
		Binary:    cfg.LatexCompiler,
		TexInputs: cfg.TexInputs,
		Timeout:   cfg.CompileTimeout,
	}

	pdfPath, err := compile.CompileFile(cmd.Context(), compiler, args[0], compileOut)
	if err != nil {
		var exitErr *compile.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("LaTeX compilation failed:\n%s", exitErr.Details())
		}
		return err
	}

	out := cmd.OutOrStdout()
	if info, err := extract.InspectPDFFile(cmd.Context(), pdfPath); err == nil {
		fmt.Fprintf(out, "%s (%d pages)\n", pdfPath, info.Pages)
		return nil
	}
	fmt.Fprintln(out, pdfPath)
	return nil
}
