//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package progress

import "io"

func termWidth(io.Writer) int { return 0 }
