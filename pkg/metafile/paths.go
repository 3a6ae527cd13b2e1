package metafile

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const disabledPrefix = "(disabled):"

// IsSourceMapPath reports whether an output path is a source map artifact.
func IsSourceMapPath(path string) bool {
	return strings.HasSuffix(path, ".map")
}

// StripDisabledPathPrefix removes the "(disabled):" marker bundlers put on
// inputs that were replaced with empty modules.
func StripDisabledPathPrefix(path string) string {
	return strings.TrimPrefix(path, disabledPrefix)
}

// FormatBytes renders a byte count for humans.
func FormatBytes(n int64) string {
	switch {
	case n == 1:
		return "1 byte"
	case n < 1024:
		return fmt.Sprintf("%d bytes", n)
	default:
		return humanize.IBytes(uint64(n))
	}
}
