// Package testutil builds report fixtures and fake report sites for tests.
package testutil

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"
)

// XLSX returns a workbook with one sheet named sheet holding cells
// (e.g. {"A1": 43922, "B1": "陽性患者数"}).
func XLSX(t *testing.T, sheet string, cells map[string]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// PDF returns a one-page PDF showing each line with Helvetica. Lines must be ASCII.
func PDF(t *testing.T, lines ...string) []byte {
	t.Helper()

	var content strings.Builder
	content.WriteString("BT /F1 12 Tf 14 TL 72 720 Td")
	for i, line := range lines {
		if i > 0 {
			content.WriteString(" T*")
		}
		fmt.Fprintf(&content, " (%s) Tj", pdfEscape(line))
	}
	content.WriteString(" ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
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

func pdfEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(s)
}

// Site is a fake report website: a listing page plus downloadable files.
type Site struct {
	*httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	failures map[string]int
	drops    map[string]int
	files    map[string][]byte
	listing  string
}

// NewSite serves listing at listingPath and each entry of files at its path.
func NewSite(t *testing.T, listingPath, listing string, files map[string][]byte) *Site {
	t.Helper()

	s := &Site{
		hits:     make(map[string]int),
		failures: make(map[string]int),
		drops:    make(map[string]int),
		files:    files,
		listing:  listing,
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		fail := s.failures[r.URL.Path] > 0
		if fail {
			s.failures[r.URL.Path]--
		}
		drop := !fail && s.drops[r.URL.Path] > 0
		if drop {
			s.drops[r.URL.Path]--
		}
		s.mu.Unlock()

		if drop {
			// Close the connection without a response.
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
				}
			}
			return
		}
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		if r.URL.Path == listingPath {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(s.listing)) // nolint:errcheck
			return
		}
		data, ok := s.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data) // nolint:errcheck
	}))
	t.Cleanup(s.Close)

	return s
}

// FailNext makes the next n requests for path answer 503.
func (s *Site) FailNext(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = n
}

// DropNext makes the next n requests for path end in a closed connection,
// which the client sees as a transport error.
func (s *Site) DropNext(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drops[path] = n
}

// Hits returns how many requests path has received.
func (s *Site) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}
