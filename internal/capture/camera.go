// Package capture acquires TPH photos from a live camera and signatures from
// a drawing surface. There is no file or gallery source.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"sync/atomic"

	"github.com/spge/groundcheck/internal/dataurl"
	"go.uber.org/zap"
)

// JPEGQuality matches the compression used for every TPH photo.
const JPEGQuality = 80

var (
	ErrDeviceUnavailable = errors.New("camera unavailable")
	ErrHandleClosed      = errors.New("capture handle already closed")
)

// Constraints narrow which camera mode is requested. Zero values mean the
// device default.
type Constraints struct {
	Width      int
	Height     int
	FacingMode string
}

// Device is a camera that can be opened for exclusive use.
type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Stream is an open camera. Close must release the device.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// Pipeline hands out capture handles and counts how many are open.
type Pipeline struct {
	device Device
	log    *zap.Logger
	open   atomic.Int64
}

func NewPipeline(device Device, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{device: device, log: log}
}

// OpenHandles reports the number of device handles not yet released.
func (p *Pipeline) OpenHandles() int64 {
	return p.open.Load()
}

// Start opens the camera. Failures wrap ErrDeviceUnavailable; the caller may
// retry as often as it likes.
func (p *Pipeline) Start(ctx context.Context, c Constraints) (*Handle, error) {
	stream, err := p.device.Open(ctx, c)
	if err != nil {
		p.log.Warn("camera open failed", zap.Error(err))
		if errors.Is(err, ErrDeviceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	p.open.Add(1)
	return &Handle{stream: stream, pipeline: p}, nil
}

// Handle is a live camera. It is released by Snapshot or Cancel, whichever
// comes first; later calls are no-ops or return ErrHandleClosed.
type Handle struct {
	stream   Stream
	pipeline *Pipeline
	once     sync.Once
	closed   atomic.Bool
	closeErr error
}

// Snapshot grabs the current frame at native resolution, encodes it as JPEG
// and releases the device whether or not the grab succeeded.
func (h *Handle) Snapshot(ctx context.Context) ([]byte, error) {
	if h.closed.Load() {
		return nil, ErrHandleClosed
	}
	defer h.release()

	frame, err := h.stream.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to grab frame: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// Cancel releases the device without capturing.
func (h *Handle) Cancel() error {
	h.release()
	return h.closeErr
}

func (h *Handle) release() {
	h.once.Do(func() {
		h.closed.Store(true)
		h.closeErr = h.stream.Close()
		h.pipeline.open.Add(-1)
		if h.closeErr != nil {
			h.pipeline.log.Warn("camera close failed", zap.Error(h.closeErr))
		}
	})
}

// CaptureToDataURL opens the camera, takes one snapshot and returns it as a
// JPEG data URL.
func CaptureToDataURL(ctx context.Context, p *Pipeline, c Constraints) (string, error) {
	h, err := p.Start(ctx, c)
	if err != nil {
		return "", err
	}
	data, err := h.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return dataurl.Encode("image/jpeg", data), nil
}
