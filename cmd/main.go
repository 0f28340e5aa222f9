package main

import (
	"fmt"
	"os"

	"github.com/soundprediction/graphsvc/cmd/graphsvc"
)

func main() {
	if err := graphsvc.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
