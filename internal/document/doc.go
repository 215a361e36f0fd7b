// Package document decodes downloaded report files.
//
// PDFs are reduced to their plain text split into lines; spreadsheets are
// loaded as cell-addressable excelize workbooks, either from disk or from an
// in-memory download. Decoder errors are wrapped and returned as-is.
package document
