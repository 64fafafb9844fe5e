// Command api runs the resume tailoring HTTP service and its maintenance
// commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "api",
	Short:         "Resume tailoring API",
	Long:          "Tailors stored LaTeX resumes to job descriptions, accepts .tex uploads, compiles them to PDF and summarizes text.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
