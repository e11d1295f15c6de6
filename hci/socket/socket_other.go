//go:build !linux
// +build !linux

package socket

import (
	"fmt"
	"io"
)

// NewSocket is a stub for non-Linux platforms.
func NewSocket(id int) (io.ReadWriteCloser, error) {
	return nil, fmt.Errorf("hci user channel socket is only available on linux")
}
