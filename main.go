package main

import (
	"os"

	"github.com/abhictrl/Reflexion-Interviewer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
