// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program jsonptr lists and resolves JSON Pointers (RFC 6901).
//
// With no -p flag, it parses the input as an event stream and prints one
// line per scalar value: the pointer of the value, a tab, and the value as
// JSON text. The pointer of a top-level scalar is the empty string.
//
// With -p, it parses the input into a syntax tree, resolves the given
// pointer against the tree, and prints the value it designates.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	chisel "github.com/jonnycoombes/chisel-json"
	"github.com/jonnycoombes/chisel-json/ast"
	"github.com/jonnycoombes/chisel-json/decoder"
	"github.com/jonnycoombes/chisel-json/pointer"
)

var cli struct {
	Input     string  `arg:"" optional:"" help:"Input file (reads stdin if omitted)." type:"existingfile"`
	Pointer   *string `short:"p" help:"Resolve this pointer against the input and print the value it designates."`
	Encoding  string  `help:"Input encoding." default:"utf-8" enum:"utf-8,ascii,utf-16le,utf-16be"`
	MaxDepth  int     `help:"Maximum nesting depth." default:"1024"`
	FloatOnly bool    `help:"Resolve all numbers as floating-point."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("jsonptr"),
		kong.Description("List and resolve JSON Pointers (RFC 6901)."),
		kong.UsageOnError(),
	)

	in := io.Reader(os.Stdin)
	if cli.Input != "" {
		f, err := os.Open(cli.Input)
		ctx.FatalIfErrorf(err)
		defer f.Close()
		in = f
	}
	opts := options()

	if cli.Pointer != nil {
		ptr, err := pointer.Parse(*cli.Pointer)
		ctx.FatalIfErrorf(err)
		root, err := ast.ParseWithOptions(in, opts)
		ctx.FatalIfErrorf(err)
		v, err := ast.Resolve(root, ptr)
		ctx.FatalIfErrorf(err)
		fmt.Println(v.JSON())
		return
	}

	err := chisel.NewStreamWithOptions(in, opts).Parse(chisel.SinkFunc(listValue))
	ctx.FatalIfErrorf(err)
}

func listValue(evt *chisel.Event) error {
	switch evt.Kind() {
	case chisel.StringValue:
		fmt.Printf("%s\t%s\n", evt.Pointer(), chisel.Quote(evt.Text()))
	case chisel.NumberValue:
		fmt.Printf("%s\t%s\n", evt.Pointer(), evt.Num())
	case chisel.BoolValue:
		fmt.Printf("%s\t%v\n", evt.Pointer(), evt.Bool())
	case chisel.NullValue:
		fmt.Printf("%s\tnull\n", evt.Pointer())
	}
	return nil
}

func options() *chisel.Options {
	opts := &chisel.Options{MaxDepth: cli.MaxDepth}
	if cli.FloatOnly {
		opts.Numerics = chisel.FloatOnly
	}
	switch cli.Encoding {
	case "ascii":
		opts.Encoding = decoder.ASCII
	case "utf-16le":
		opts.Encoding = decoder.UTF16LE
	case "utf-16be":
		opts.Encoding = decoder.UTF16BE
	}
	return opts
}
