package main

import (
	"github.com/niklvrr/reviewpulse/internal/cli"
)

func main() {
	cli.Execute()
}
