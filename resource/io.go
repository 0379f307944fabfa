package resource

import (
	"context"
	"io"
)

// ThrottledWriter applies the controller's IO limit to every Write. Snapshot
// encoding wraps its destination in one of these.
type ThrottledWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewThrottledWriter wraps w with the controller's IO limit.
func NewThrottledWriter(ctx context.Context, w io.Writer, rc *Controller) *ThrottledWriter {
	return &ThrottledWriter{ctx: ctx, w: w, rc: rc}
}

func (tw *ThrottledWriter) Write(p []byte) (int, error) {
	if err := tw.rc.AcquireIO(tw.ctx, len(p)); err != nil {
		return 0, err
	}
	return tw.w.Write(p)
}

// ThrottledReader applies the controller's IO limit to every Read. The wait
// charges the full buffer size since the read length is unknown up front.
type ThrottledReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewThrottledReader wraps r with the controller's IO limit.
func NewThrottledReader(ctx context.Context, r io.Reader, rc *Controller) *ThrottledReader {
	return &ThrottledReader{ctx: ctx, r: r, rc: rc}
}

func (tr *ThrottledReader) Read(p []byte) (int, error) {
	if err := tr.rc.AcquireIO(tr.ctx, len(p)); err != nil {
		return 0, err
	}
	return tr.r.Read(p)
}
