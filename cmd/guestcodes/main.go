package main

import "go-guest-barcodes/internal/cli"

func main() {
	cli.Execute()
}
