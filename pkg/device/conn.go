package device

import (
	"io"
	"time"

	"github.com/pico-keys/commissioner/pkg/ctaphid"
)

// timeoutReader is implemented by HID handles that support bounded
// reads, notably *hid.Device from sstallion/go-hid.
type timeoutReader interface {
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
}

// conn wraps a raw HID handle and bounds every read. sstallion's
// ReadWithTimeout signals expiry with n == 0 and a nil error; that is
// mapped to ctaphid.ErrReadTimeout so callers see a single sentinel for
// an unresponsive device.
type conn struct {
	rwc         io.ReadWriteCloser
	readTimeout time.Duration
}

func newConn(rwc io.ReadWriteCloser, readTimeout time.Duration) *conn {
	return &conn{
		rwc:         rwc,
		readTimeout: readTimeout,
	}
}

func (c *conn) Read(p []byte) (int, error) {
	tr, ok := c.rwc.(timeoutReader)
	if !ok {
		return c.rwc.Read(p)
	}

	n, err := tr.ReadWithTimeout(p, c.readTimeout)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ctaphid.ErrReadTimeout
	}

	return n, nil
}

func (c *conn) Write(p []byte) (int, error) {
	return c.rwc.Write(p)
}

func (c *conn) Close() error {
	return c.rwc.Close()
}
