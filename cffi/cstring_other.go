//go:build !unix && !windows

package cffi

import (
	"errors"
	"strings"
)

func byteSliceFromString(s string) ([]byte, error) {
	if strings.IndexByte(s, 0) != -1 {
		return nil, errors.New("invalid argument")
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return buf, nil
}
