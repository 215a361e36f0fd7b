package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// Type is the file type token: a bare extension such as "pdf" or "xlsx".
type Type string

const (
	TypePDF  Type = "pdf"
	TypeXLSX Type = "xlsx"
)

// Document is a decoded report file. Exactly one of Lines and Workbook is set.
type Document struct {
	Type Type

	// Path is where the file was saved, empty for in-memory downloads.
	Path string

	// Lines holds the extracted text of a PDF, split on "\n".
	Lines []string

	// Workbook holds a parsed spreadsheet.
	Workbook *excelize.File
}

// Close releases the workbook, if any.
func (d *Document) Close() error {
	if d.Workbook == nil {
		return nil
	}
	return d.Workbook.Close()
}

// OpenPDF extracts the plain text of the PDF at path.
func OpenPDF(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	lines, err := ReadPDF(f, info.Size())
	if err != nil {
		return nil, err
	}
	return &Document{Type: TypePDF, Path: path, Lines: lines}, nil
}

// ReadPDF extracts the plain text of a PDF of the given size and splits it
// into lines.
func ReadPDF(r io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	text, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		return nil, fmt.Errorf("extracting pdf text: %w", err)
	}

	return strings.Split(buf.String(), "\n"), nil
}

// OpenXLSX loads the workbook saved at path.
func OpenXLSX(path string) (*Document, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return &Document{Type: TypeXLSX, Path: path, Workbook: wb}, nil
}

// ReadXLSX loads a workbook from downloaded bytes.
func ReadXLSX(data []byte) (*Document, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	return &Document{Type: TypeXLSX, Workbook: wb}, nil
}
