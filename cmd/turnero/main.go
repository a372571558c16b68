package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/carambo/turnero/internal/turnerocli"
)

func main() {
	if err := turnerocli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, turnerocli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			turnerocli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
