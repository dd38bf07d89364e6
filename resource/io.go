package resource

import (
	"context"
	"io"
)

// ReaderFunc adapts a function to io.Reader.
type ReaderFunc func(p []byte) (int, error)

func (f ReaderFunc) Read(p []byte) (int, error) { return f(p) }

// WriterFunc adapts a function to io.Writer.
type WriterFunc func(p []byte) (int, error)

func (f WriterFunc) Write(p []byte) (int, error) { return f(p) }

// LimitWriter charges every write against the I/O budget of rc before
// passing it to w. Without an I/O limit w is returned unchanged.
func LimitWriter(ctx context.Context, w io.Writer, rc *Controller) io.Writer {
	if rc == nil || rc.ioLimiter == nil {
		return w
	}
	return WriterFunc(func(p []byte) (int, error) {
		if err := rc.AcquireIO(ctx, len(p)); err != nil {
			return 0, err
		}
		return w.Write(p)
	})
}

// LimitReader charges the bytes returned by r against the I/O budget of rc.
// Without an I/O limit r is returned unchanged.
func LimitReader(ctx context.Context, r io.Reader, rc *Controller) io.Reader {
	if rc == nil || rc.ioLimiter == nil {
		return r
	}
	return ReaderFunc(func(p []byte) (int, error) {
		n, err := r.Read(p)
		if n > 0 {
			if werr := rc.AcquireIO(ctx, n); werr != nil {
				return n, werr
			}
		}
		return n, err
	})
}
