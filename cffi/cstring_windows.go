//go:build windows

package cffi

import "golang.org/x/sys/windows"

func byteSliceFromString(s string) ([]byte, error) {
	return windows.ByteSliceFromString(s)
}
