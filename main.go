package main

import (
	"os"

	"github.com/maxkimambo/taskflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
