//go:build unix

package cffi

import "golang.org/x/sys/unix"

func byteSliceFromString(s string) ([]byte, error) {
	return unix.ByteSliceFromString(s)
}
