// Package fetcher retrieves report files published on the prefecture's COVID-19
// pages.
//
// A fetch loads a listing page from the configured origin and picks the first
// anchor whose href ends with the requested file type. It then downloads that
// file and decodes it with the document package. Every network step runs
// under the same bounded, constant-delay retry policy. Transport failures are
// retried everywhere and empty bodies on in-memory reads. A non-200 status is
// retried only while streaming a download; the listing page and in-memory
// downloads fail on it at once. Which download path is taken depends on the
// (file type, persist) pair:
//
//	pdf,  any   -> stream to data dir, extract text lines
//	xlsx, true  -> stream to data dir, open workbook from disk
//	xlsx, false -> read into memory, open workbook from bytes
//
// Any other combination fails with ErrUnsupportedType before a request is made.
package fetcher
