package main

import (
	"os"

	finsightcmder "github.com/finsightco/finsight/cmd/finsight"
)

func main() {
	cmd := finsightcmder.NewFinsightCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
