//go:build ignore
// +build ignore

package main

import (
	"log"

	medic "github.com/mithrel/medic/internal/cli"
	"github.com/spf13/cobra/doc"
)

func main() {
	root := medic.NewRootCmd()

	if err := doc.GenMarkdownTree(root, "./docs/markdown"); err != nil {
		log.Fatal(err)
	}

	header := &doc.GenManHeader{
		Title:   "MEDIC",
		Section: "1",
	}
	if err := doc.GenManTree(root, header, "./docs/man"); err != nil {
		log.Fatal(err)
	}
}
