// Package extract inspects PDFs produced by the compiler.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFInfo describes a compiled document.
type PDFInfo struct {
	Pages     int
	SizeBytes int64
}

// InspectPDFFile reads the PDF at path and reports its page count.
func InspectPDFFile(ctx context.Context, path string) (PDFInfo, error) {
	if err := ctx.Err(); err != nil {
		return PDFInfo{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("inspect pdf %s: %w", path, err)
	}
	info, err := InspectPDF(data)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("inspect pdf %s: %w", path, err)
	}
	return info, nil
}

// InspectPDF parses an in-memory PDF.
func InspectPDF(data []byte) (info PDFInfo, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return PDFInfo{}, errors.New("not a pdf")
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			info = PDFInfo{}
			err = fmt.Errorf("parse pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return PDFInfo{}, fmt.Errorf("parse pdf: %w", err)
	}
	pages := reader.NumPage()
	if pages <= 0 {
		return PDFInfo{}, errors.New("pdf has no pages")
	}
	return PDFInfo{Pages: pages, SizeBytes: int64(len(data))}, nil
}
