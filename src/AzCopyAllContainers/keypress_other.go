//go:build !linux

package main

import (
	"bufio"
	"os"
)

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// waitForKey blocks until Enter is pressed.
func waitForKey(f *os.File) {
	bufio.NewReader(f).ReadString('\n')
}
