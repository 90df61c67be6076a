// Command naaycat is a minimal external collaborator around the naay
// package: it loads a document, re-dumps it, and writes the result to
// stdout, so a caller can sanity-check that a file round-trips. It is
// not part of the library's public contract.
package main

import (
	"flag"
	"os"

	"charm.land/log/v2"

	"github.com/naayfmt/naay"
)

func main() {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.InfoLevel)

	flag.Usage = func() {
		logger.Info("usage: naaycat <path>")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	tree, err := naay.LoadFile(path)
	if err != nil {
		logger.Error("failed to load document", "path", path, "err", err)
		os.Exit(1)
	}

	out, err := naay.Dumps(tree)
	if err != nil {
		logger.Error("failed to dump document", "path", path, "err", err)
		os.Exit(1)
	}

	if _, err := os.Stdout.WriteString(out); err != nil {
		logger.Error("failed to write output", "err", err)
		os.Exit(1)
	}
}
