//go:build linux || darwin || freebsd || netbsd || openbsd

package progress

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0
	}
	return int(ws.Col)
}
