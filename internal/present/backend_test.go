// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"bytes"
	"testing"
	"time"

	"github.com/gogpu/chessboard/internal/gputest"
	"github.com/gogpu/gputypes"
)

func TestOffscreenBackendSnapshot(t *testing.T) {
	n := gputest.OpenNoop(t)
	o := NewOffscreenBackend(n.Device, n.Queue, time.Second)
	defer o.Release()

	m, err := NewManager(o, Config{Width: 70, Height: 30, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	// 70*4 = 280 bytes per row pads to 512.
	if o.paddedRow != 512 {
		t.Errorf("paddedRow = %d, want 512", o.paddedRow)
	}

	f, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if f.View == nil {
		t.Fatal("offscreen frame has no view")
	}
	if err := m.Present(f); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	img, err := o.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 70 || b.Dy() != 30 {
		t.Errorf("snapshot size = %v, want 70x30", b)
	}

	if err := m.Resize(16, 8); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	img, err = o.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot after resize failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("snapshot size after resize = %v, want 16x8", b)
	}
}

func TestOffscreenBackendRejectsFormat(t *testing.T) {
	n := gputest.OpenNoop(t)
	o := NewOffscreenBackend(n.Device, n.Queue, time.Second)
	defer o.Release()
	if err := o.Configure(Config{Width: 4, Height: 4, Format: gputypes.TextureFormatR8Unorm}); err == nil {
		t.Error("expected error for R8 target")
	}
}

func TestOffscreenBackendReleased(t *testing.T) {
	n := gputest.OpenNoop(t)
	o := NewOffscreenBackend(n.Device, n.Queue, time.Second)
	o.Release()
	o.Release()
	if _, err := o.Acquire(); err == nil {
		t.Error("expected Acquire error after Release")
	}
	if _, err := o.Snapshot(); err == nil {
		t.Error("expected Snapshot error after Release")
	}
}

func TestCopyRows(t *testing.T) {
	// Two rows of two pixels, padded to 12 bytes per row.
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0,
		9, 10, 11, 12, 13, 14, 15, 16, 0, 0, 0, 0,
	}
	dst := make([]byte, 16)
	copyRows(dst, 8, src, 12, 8, 2, false)
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	if !bytes.Equal(dst, want) {
		t.Errorf("copyRows = %v, want %v", dst, want)
	}

	copyRows(dst, 8, src, 12, 8, 2, true)
	want = []byte{3, 2, 1, 4, 7, 6, 5, 8, 11, 10, 9, 12, 15, 14, 13, 16}
	if !bytes.Equal(dst, want) {
		t.Errorf("copyRows swapped = %v, want %v", dst, want)
	}
}

func TestSurfaceBackendLifecycle(t *testing.T) {
	n := gputest.OpenNoop(t)
	surface, err := n.Instance.CreateSurface(0, 0)
	if err != nil {
		t.Fatalf("CreateSurface failed: %v", err)
	}

	format := PreferredFormat(n.Adapter, surface)
	if format == gputypes.TextureFormatUndefined {
		t.Fatal("no surface format")
	}

	s := NewSurfaceBackend(n.Device, n.Queue, surface)
	if _, err := s.Acquire(); err == nil {
		t.Error("expected Acquire error before Configure")
	}

	m, err := NewManager(s, Config{Width: 640, Height: 480, Format: format})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if s.cfg.PresentMode != gputypes.PresentModeFifo {
		t.Errorf("present mode = %v, want Fifo", s.cfg.PresentMode)
	}

	f, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if f.View == nil {
		t.Fatal("surface frame has no view")
	}
	if err := m.Present(f); err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	if f.View != nil {
		t.Error("Present did not release the frame view")
	}

	f, err = m.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	m.Discard(f)

	m.Release()
	m.Release()
	if err := s.Configure(m.Config()); err == nil {
		t.Error("expected Configure error after Release")
	}
}

func TestWaitSubmission(t *testing.T) {
	n := gputest.OpenNoop(t)
	index, err := n.Queue.Submit(nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := WaitSubmission(n.Queue, index, time.Second); err != nil {
		t.Errorf("WaitSubmission failed: %v", err)
	}
	if err := WaitSubmission(n.Queue, index+100, time.Millisecond); !IsTransient(err) {
		t.Errorf("WaitSubmission on future index = %v, want timeout", err)
	}
}
