package fetcher

import (
	"context"

	"github.com/pfrederiksen/covid19-scraping/internal/document"
)

type strategyKey struct {
	fileType document.Type
	persist  bool
}

type strategy func(f *Fetcher, ctx context.Context, fileURL string, fileType document.Type) (*document.Document, error)

// strategies lists every supported (type, persist) pair. PDFs are always
// persisted, so there is no in-memory PDF entry.
var strategies = map[strategyKey]strategy{
	{document.TypePDF, true}:   savePDF,
	{document.TypeXLSX, true}:  saveXLSX,
	{document.TypeXLSX, false}: loadXLSX,
}

// Supported reports whether Fetch accepts fileType with the given persist flag.
func Supported(fileType document.Type, persist bool) bool {
	if fileType == document.TypePDF {
		persist = true
	}
	_, ok := strategies[strategyKey{fileType, persist}]
	return ok
}

func savePDF(f *Fetcher, ctx context.Context, fileURL string, fileType document.Type) (*document.Document, error) {
	path, err := f.save(ctx, fileURL, fileType)
	if err != nil {
		return nil, err
	}
	return document.OpenPDF(path)
}

func saveXLSX(f *Fetcher, ctx context.Context, fileURL string, fileType document.Type) (*document.Document, error) {
	path, err := f.save(ctx, fileURL, fileType)
	if err != nil {
		return nil, err
	}
	return document.OpenXLSX(path)
}

func loadXLSX(f *Fetcher, ctx context.Context, fileURL string, fileType document.Type) (*document.Document, error) {
	data, err := f.getBytes(ctx, fileURL, string(fileType))
	if err != nil {
		return nil, err
	}
	return document.ReadXLSX(data)
}
