package main

import (
	"os"

	"github.com/M-Ayaan-21/DG-Open-SEVA/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
