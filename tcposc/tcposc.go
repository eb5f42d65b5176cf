// Copyright © 2026 The Tcpos Authors under an MIT-style license.

// The tcposc command compiles a TinyCoPoOS source file to plain C
// driving the cooperative scheduler, written to standard output or to
// the file named by -o.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/eaburns/peggy/peg"
	"github.com/eaburns/pretty"
	"github.com/eaburns/tcpos/compile"
	"github.com/eaburns/tcpos/syntax"
	"github.com/eaburns/tcpos/unparse"
)

var (
	ast    = flag.Bool("ast", false, "print the AST instead of compiling")
	debug  = flag.Bool("debug", false, "print parser debug output on failure")
	output = flag.String("o", "", "name of the output file")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if len(flag.Args()) != 1 {
		usage()
		os.Exit(1)
	}

	p := syntax.NewParser()
	root, err := p.ParseFile(flag.Args()[0])
	if err != nil {
		die(err)
	}
	if *ast {
		pretty.Indent = "    "
		pretty.Print(root)
		fmt.Println("")
		return
	}

	unit := compile.Compile(root, p.Interner())
	for _, d := range unit.Diags {
		fmt.Fprintln(os.Stderr, d)
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			die(err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	if err := unparse.Write(w, unit.Out); err != nil {
		die(err)
	}
	if err := w.Flush(); err != nil {
		die(err)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: tcposc [flags] <source-file>\n")
	flag.PrintDefaults()
}

func die(err error) {
	if pe, ok := err.(interface{ Expected() string }); ok {
		fmt.Fprint(os.Stderr, pe.Expected())
	}
	if *debug {
		if pe, ok := err.(interface{ Tree() *peg.Fail }); ok {
			peg.PrettyWrite(os.Stderr, pe.Tree())
			fmt.Fprintln(os.Stderr, "")
		}
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
