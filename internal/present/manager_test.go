// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fakeBackend scripts Acquire results and counts calls.
type fakeBackend struct {
	configs    []Config
	acquireErr []error // consumed in order; nil entries succeed
	suboptimal bool
	presentErr error
	presented  int
	discarded  int
	released   bool
}

func (f *fakeBackend) Configure(cfg Config) error {
	f.configs = append(f.configs, cfg)
	return nil
}

func (f *fakeBackend) Acquire() (*Frame, error) {
	if len(f.acquireErr) > 0 {
		err := f.acquireErr[0]
		f.acquireErr = f.acquireErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return &Frame{Suboptimal: f.suboptimal}, nil
}

func (f *fakeBackend) Present(*Frame) error { f.presented++; return f.presentErr }
func (f *fakeBackend) Discard(*Frame)       { f.discarded++ }
func (f *fakeBackend) Release()             { f.released = true }

func newTestManager(t *testing.T, fb *fakeBackend, w, h uint32) *Manager {
	t.Helper()
	m, err := NewManager(fb, Config{Width: w, Height: h, Format: gputypes.TextureFormatBGRA8Unorm})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerClampsZeroSize(t *testing.T) {
	fb := &fakeBackend{}
	m := newTestManager(t, fb, 0, 0)

	cfg := m.Config()
	if cfg.Width != 1 || cfg.Height != 1 {
		t.Errorf("config size = %dx%d, want 1x1", cfg.Width, cfg.Height)
	}
	if len(fb.configs) != 1 || fb.configs[0].Width != 1 {
		t.Errorf("backend configs = %+v", fb.configs)
	}
}

func TestNewManagerRejectsUndefinedFormat(t *testing.T) {
	if _, err := NewManager(&fakeBackend{}, Config{Width: 8, Height: 8}); err == nil {
		t.Error("expected error for undefined format")
	}
	if _, err := NewManager(nil, Config{Format: gputypes.TextureFormatRGBA8Unorm}); err == nil {
		t.Error("expected error for nil backend")
	}
}

func TestManagerResize(t *testing.T) {
	fb := &fakeBackend{}
	m := newTestManager(t, fb, 800, 600)

	tests := []struct {
		w, h         uint32
		wantW, wantH uint32
	}{
		{1024, 768, 1024, 768},
		{0, 0, 1, 1},
		{0, 300, 1, 300},
		{640, 0, 640, 1},
	}
	for _, tt := range tests {
		if err := m.Resize(tt.w, tt.h); err != nil {
			t.Fatalf("Resize(%d, %d) failed: %v", tt.w, tt.h, err)
		}
		cfg := m.Config()
		if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
			t.Errorf("Resize(%d, %d) -> %dx%d, want %dx%d",
				tt.w, tt.h, cfg.Width, cfg.Height, tt.wantW, tt.wantH)
		}
		if cfg.Format != gputypes.TextureFormatBGRA8Unorm {
			t.Errorf("Resize changed format to %v", cfg.Format)
		}
	}
}

func TestManagerResizeSameSizeIsNoop(t *testing.T) {
	fb := &fakeBackend{}
	m := newTestManager(t, fb, 320, 240)
	if err := m.Resize(320, 240); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if len(fb.configs) != 1 {
		t.Errorf("Configure called %d times, want 1", len(fb.configs))
	}
}

func TestManagerAcquireOutdatedReconfigures(t *testing.T) {
	for _, tc := range []struct {
		name    string
		halErr  error
		wantErr error
	}{
		{"outdated", hal.ErrSurfaceOutdated, ErrOutdated},
		{"lost", hal.ErrSurfaceLost, ErrLost},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fb := &fakeBackend{acquireErr: []error{tc.halErr}}
			m := newTestManager(t, fb, 200, 100)

			_, err := m.Acquire()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Acquire error = %v, want %v", err, tc.wantErr)
			}
			if !IsTransient(err) || IsFatal(err) {
				t.Errorf("%v should be transient only", err)
			}
			if len(fb.configs) != 2 {
				t.Fatalf("Configure called %d times, want 2", len(fb.configs))
			}
			if fb.configs[1] != fb.configs[0] {
				t.Errorf("reconfigured with %+v, want %+v", fb.configs[1], fb.configs[0])
			}

			// The next frame succeeds.
			if _, err := m.Acquire(); err != nil {
				t.Errorf("second Acquire failed: %v", err)
			}
		})
	}
}

func TestManagerAcquireTimeoutDoesNotReconfigure(t *testing.T) {
	fb := &fakeBackend{acquireErr: []error{hal.ErrTimeout}}
	m := newTestManager(t, fb, 200, 100)

	_, err := m.Acquire()
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Acquire error = %v, want ErrTimeout", err)
	}
	if len(fb.configs) != 1 {
		t.Errorf("Configure called %d times, want 1", len(fb.configs))
	}
}

func TestManagerAcquireFatal(t *testing.T) {
	for _, tc := range []struct {
		halErr  error
		wantErr error
	}{
		{hal.ErrDeviceOutOfMemory, ErrOutOfMemory},
		{hal.ErrDeviceLost, ErrDeviceLost},
	} {
		fb := &fakeBackend{acquireErr: []error{tc.halErr}}
		m := newTestManager(t, fb, 10, 10)
		_, err := m.Acquire()
		if !errors.Is(err, tc.wantErr) || !IsFatal(err) {
			t.Errorf("Acquire error = %v, want fatal %v", err, tc.wantErr)
		}
	}
}

func TestManagerSuboptimalReconfiguresNextFrame(t *testing.T) {
	fb := &fakeBackend{suboptimal: true}
	m := newTestManager(t, fb, 64, 64)

	f, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := m.Present(f); err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	fb.suboptimal = false
	if _, err := m.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if len(fb.configs) != 2 {
		t.Errorf("Configure called %d times, want 2", len(fb.configs))
	}
}

func TestManagerPresentOutdatedResizeAtCurrentSize(t *testing.T) {
	for _, tc := range []struct {
		name    string
		halErr  error
		wantErr error
	}{
		{"outdated", hal.ErrSurfaceOutdated, ErrOutdated},
		{"lost", hal.ErrSurfaceLost, ErrLost},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fb := &fakeBackend{presentErr: tc.halErr}
			m := newTestManager(t, fb, 200, 100)

			f, err := m.Acquire()
			if err != nil {
				t.Fatalf("Acquire failed: %v", err)
			}
			err = m.Present(f)
			if !errors.Is(err, tc.wantErr) || !IsTransient(err) {
				t.Fatalf("Present error = %v, want transient %v", err, tc.wantErr)
			}

			if err := m.Resize(200, 100); err != nil {
				t.Fatalf("Resize failed: %v", err)
			}
			if len(fb.configs) != 2 {
				t.Fatalf("Configure called %d times, want 2", len(fb.configs))
			}
			if fb.configs[1] != fb.configs[0] {
				t.Errorf("reconfigured with %+v, want %+v", fb.configs[1], fb.configs[0])
			}

			// Rebuilt once; the next frame needs no further reconfigure.
			fb.presentErr = nil
			if _, err := m.Acquire(); err != nil {
				t.Fatalf("Acquire after resize failed: %v", err)
			}
			if len(fb.configs) != 2 {
				t.Errorf("Configure called %d times, want 2", len(fb.configs))
			}
		})
	}
}

func TestManagerPresentOutdatedReconfiguresNextAcquire(t *testing.T) {
	fb := &fakeBackend{presentErr: hal.ErrSurfaceOutdated}
	m := newTestManager(t, fb, 64, 32)

	f, _ := m.Acquire()
	_ = m.Present(f)
	fb.presentErr = nil
	if _, err := m.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if len(fb.configs) != 2 {
		t.Errorf("Configure called %d times, want 2", len(fb.configs))
	}
}

func TestManagerPresentTimeoutKeepsConfiguration(t *testing.T) {
	fb := &fakeBackend{presentErr: hal.ErrTimeout}
	m := newTestManager(t, fb, 64, 32)

	f, _ := m.Acquire()
	if err := m.Present(f); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Present error = %v, want ErrTimeout", err)
	}
	if err := m.Resize(64, 32); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if len(fb.configs) != 1 {
		t.Errorf("Configure called %d times, want 1", len(fb.configs))
	}
}

func TestManagerForwardsPresentDiscardRelease(t *testing.T) {
	fb := &fakeBackend{}
	m := newTestManager(t, fb, 8, 8)
	f, _ := m.Acquire()
	_ = m.Present(f)
	f, _ = m.Acquire()
	m.Discard(f)
	m.Release()
	if fb.presented != 1 || fb.discarded != 1 || !fb.released {
		t.Errorf("presented=%d discarded=%d released=%v", fb.presented, fb.discarded, fb.released)
	}
}

func TestClassify(t *testing.T) {
	other := errors.New("boom")
	tests := []struct {
		in        error
		want      error
		transient bool
		fatal     bool
	}{
		{hal.ErrSurfaceOutdated, ErrOutdated, true, false},
		{hal.ErrSurfaceLost, ErrLost, true, false},
		{hal.ErrTimeout, ErrTimeout, true, false},
		{hal.ErrNotReady, ErrTimeout, true, false},
		{hal.ErrDeviceOutOfMemory, ErrOutOfMemory, false, true},
		{hal.ErrDeviceLost, ErrDeviceLost, false, true},
		{other, other, false, false},
	}
	for _, tt := range tests {
		got := Classify("op", tt.in)
		if !errors.Is(got, tt.want) {
			t.Errorf("Classify(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if IsTransient(got) != tt.transient || IsFatal(got) != tt.fatal {
			t.Errorf("Classify(%v): transient=%v fatal=%v", tt.in, IsTransient(got), IsFatal(got))
		}
	}
	if Classify("op", nil) != nil {
		t.Error("Classify(nil) != nil")
	}
}
