package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hozondb/hozon-db/pkg/database"
	"github.com/hozondb/hozon-db/pkg/repl"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <database-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	db, err := database.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}

	r := repl.New(db, os.Stdin, os.Stdout)
	runErr := r.Run()

	// The shell may have switched files; close whatever is current.
	if err := r.Database().Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "session error: %v\n", runErr)
		os.Exit(1)
	}
}
