package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"

	"github.com/pfrederiksen/covid19-scraping/internal/document"
	"github.com/pfrederiksen/covid19-scraping/internal/logger"
	"github.com/pfrederiksen/covid19-scraping/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// SheetInfo describes one worksheet of a fetched workbook.
type SheetInfo struct {
	Name      string `json:"name"`
	Dimension string `json:"dimension"`
}

// FetchResult contains data to be output after a fetch
type FetchResult struct {
	Type      document.Type `json:"type"`
	Path      string        `json:"path,omitempty"`
	LineCount int           `json:"line_count,omitempty"`
	Lines     []string      `json:"lines,omitempty"`
	Sheets    []SheetInfo   `json:"sheets,omitempty"`
}

// NewFetchResult summarizes doc. At most head PDF lines are kept.
func NewFetchResult(doc *document.Document, head int) (*FetchResult, error) {
	result := &FetchResult{Type: doc.Type, Path: doc.Path}

	if doc.Workbook != nil {
		for _, name := range doc.Workbook.GetSheetList() {
			dim, err := doc.Workbook.GetSheetDimension(name)
			if err != nil {
				return nil, fmt.Errorf("reading sheet %q: %w", name, err)
			}
			result.Sheets = append(result.Sheets, SheetInfo{Name: name, Dimension: dim})
		}
		return result, nil
	}

	result.LineCount = len(doc.Lines)
	if head < 0 {
		head = 0
	}
	result.Lines = doc.Lines[:min(head, len(doc.Lines))]
	return result, nil
}

// WriteFetchResult writes the result in the specified format
func WriteFetchResult(w io.Writer, result *FetchResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		data, err := storage.MarshalJSON(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeText(w io.Writer, result *FetchResult) error {
	if result.Path != "" {
		fmt.Fprintf(w, "Saved: %s\n", result.Path)
	}

	switch result.Type {
	case document.TypePDF:
		fmt.Fprintf(w, "Lines: %d\n", result.LineCount)
		for _, line := range result.Lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
	default:
		fmt.Fprintf(w, "Sheets: %d\n", len(result.Sheets))
		for _, sheet := range result.Sheets {
			fmt.Fprintf(w, "  %s (%s)\n", sheet.Name, sheet.Dimension)
		}
	}

	return nil
}

// writeMetrics prints counters and timings in name order.
func writeMetrics(w io.Writer, snap logger.Snapshot) {
	counters := lo.Keys(snap.Counters)
	slices.Sort(counters)

	timings := lo.Keys(snap.Timings)
	slices.Sort(timings)

	fmt.Fprintln(w, "\nMetrics:")
	for _, name := range counters {
		fmt.Fprintf(w, "  %s: %d\n", name, snap.Counters[name])
	}
	for _, name := range timings {
		st := snap.Timings[name]
		fmt.Fprintf(w, "  %s: count=%d avg=%s max=%s\n", name, st.Count, st.Average, st.Max)
	}
}
