// Package convert turns raw report values into usable ones: spreadsheet date
// serials into JST dates, weekday indexes into labels, and mixed-width numeral
// text into integers.
package convert
