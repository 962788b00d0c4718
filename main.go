package main

import (
	"os"

	"github.com/DenisStobert/hh-autoapply-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
