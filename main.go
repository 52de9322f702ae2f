package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/tomonapit/rekapabsen/internal/rekapcli"
)

func main() {
	if err := rekapcli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, rekapcli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			rekapcli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
