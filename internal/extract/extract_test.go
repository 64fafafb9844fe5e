package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// buildPDF writes a minimal PDF with the given number of blank pages and a
// correct cross-reference table.
func buildPDF(pages int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	var objects []string
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages),
	)
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestInspectPDFCountsPages(t *testing.T) {
	data := buildPDF(2)
	info, err := InspectPDF(data)
	if err != nil {
		t.Fatalf("InspectPDF: %v", err)
	}
	if info.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", info.Pages)
	}
	if info.SizeBytes != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), info.SizeBytes)
	}
}

func TestInspectPDFRejectsNonPDF(t *testing.T) {
	if _, err := InspectPDF([]byte("not a pdf at all")); err == nil {
		t.Fatalf("expected error for non-pdf input")
	}
}

func TestInspectPDFRejectsTruncated(t *testing.T) {
	if _, err := InspectPDF([]byte("%PDF-1.4\n1 0 obj\n<<")); err == nil {
		t.Fatalf("expected error for truncated pdf")
	}
}

func TestInspectPDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	if err := os.WriteFile(path, buildPDF(1), 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	info, err := InspectPDFFile(context.Background(), path)
	if err != nil {
		t.Fatalf("InspectPDFFile: %v", err)
	}
	if info.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", info.Pages)
	}

	if _, err := InspectPDFFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
