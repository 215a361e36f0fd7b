// Package cli implements the command-line interface for covid19-scraping.
//
// The cli package provides the Cobra-based CLI for fetching report files from
// the prefecture's listing pages, writing summary trees and running the date,
// weekday and digit helpers by hand. It coordinates the config, fetcher,
// storage, convert and summary packages.
package cli
