package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
)

var errorColor = color.New(color.BgRed, color.FgHiWhite)

func printError(w io.Writer, err error) {
	slog.Debug("Copy failed", "error", fmt.Sprintf("%+v", err))
	fmt.Fprintln(w)
	errorColor.Fprintf(w, "Error: %s", err)
	fmt.Fprintln(w)
}
