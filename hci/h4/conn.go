package h4

import (
	"net"
	"time"
)

// connWithTimeout bounds every read and write so a dead bridge surfaces
// as an error instead of a hung transport.
type connWithTimeout struct {
	c       net.Conn
	timeout time.Duration
}

func dialWithTimeout(addr string, timeout time.Duration) (*connWithTimeout, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return &connWithTimeout{c: c, timeout: timeout}, nil
}

func (cwt *connWithTimeout) Read(b []byte) (int, error) {
	cwt.c.SetReadDeadline(time.Now().Add(cwt.timeout))
	return cwt.c.Read(b)
}

func (cwt *connWithTimeout) Write(b []byte) (int, error) {
	cwt.c.SetWriteDeadline(time.Now().Add(cwt.timeout))
	return cwt.c.Write(b)
}

func (cwt *connWithTimeout) Close() error {
	return cwt.c.Close()
}
