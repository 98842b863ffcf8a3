// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package present owns the render target the chessboard is drawn into.
//
// A Backend hands out one Frame at a time: either a swapchain image of a
// window surface (SurfaceBackend) or a resident offscreen texture that can be
// read back (OffscreenBackend). Manager keeps the current configuration,
// clamps sizes and maps acquisition failures onto the error classes the
// engine reacts to.
package present

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Acquisition and presentation failures.
//
// ErrOutdated, ErrLost and ErrTimeout are transient: the current frame is
// dropped and rendering continues. ErrOutOfMemory and ErrDeviceLost are fatal.
var (
	ErrOutdated    = errors.New("present: surface outdated")
	ErrLost        = errors.New("present: surface lost")
	ErrTimeout     = errors.New("present: frame timed out")
	ErrOutOfMemory = errors.New("present: device out of memory")
	ErrDeviceLost  = errors.New("present: device lost")
)

// Config is the active surface configuration.
type Config struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	PresentMode gputypes.PresentMode
}

// Frame is one acquired render target. Its View is valid until the frame is
// presented or discarded.
type Frame struct {
	View hal.TextureView

	// Suboptimal reports that the surface still works but no longer matches
	// the window exactly. The frame can be presented.
	Suboptimal bool

	texture hal.SurfaceTexture
}

// Backend is a source of frames.
type Backend interface {
	// Configure (re)creates the target for cfg. Width and height are at
	// least 1. Any previously acquired frame must be finished first.
	Configure(cfg Config) error

	// Acquire returns the next frame.
	Acquire() (*Frame, error)

	// Present shows the frame and releases it.
	Present(f *Frame) error

	// Discard releases a frame without showing it.
	Discard(f *Frame)

	// Release frees the target. The backend is unusable afterwards.
	Release()
}

// Classify wraps err from op in the matching package error class. Unknown
// errors are wrapped as is; nil stays nil.
func Classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, hal.ErrSurfaceOutdated):
		return fmt.Errorf("%s: %w", op, ErrOutdated)
	case errors.Is(err, hal.ErrSurfaceLost):
		return fmt.Errorf("%s: %w", op, ErrLost)
	case errors.Is(err, hal.ErrTimeout), errors.Is(err, hal.ErrNotReady):
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	case errors.Is(err, hal.ErrDeviceOutOfMemory):
		return fmt.Errorf("%s: %w", op, ErrOutOfMemory)
	case errors.Is(err, hal.ErrDeviceLost):
		return fmt.Errorf("%s: %w", op, ErrDeviceLost)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// IsTransient reports whether err only costs the current frame.
func IsTransient(err error) bool {
	return errors.Is(err, ErrOutdated) || errors.Is(err, ErrLost) || errors.Is(err, ErrTimeout)
}

// IsFatal reports whether err leaves the device unusable.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutOfMemory) || errors.Is(err, ErrDeviceLost)
}
