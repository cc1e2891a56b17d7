package utils

import "io"

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer, e.g. response bodies.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseWith closes c and hands a close error to report.
func CloseWith(c io.Closer, report func(error)) {
	if err := c.Close(); err != nil && report != nil {
		report(err)
	}
}
