//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "fmt"

// WritePNG is unsupported on this platform.
func WritePNG([]byte) error {
	return fmt.Errorf("clipboard image operations are not supported on this platform")
}
