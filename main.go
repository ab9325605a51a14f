package main

import (
	"os"

	"github.com/sojebsikder/npm-deploy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
