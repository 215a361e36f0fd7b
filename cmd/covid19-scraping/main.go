package main

import "github.com/pfrederiksen/covid19-scraping/internal/cli"

func main() {
	cli.Execute()
}
