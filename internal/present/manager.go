// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// Manager tracks the configuration of one Backend.
type Manager struct {
	backend Backend
	cfg     Config

	// stale is set when the last frame was suboptimal or its present
	// reported an outdated or lost surface; the next Acquire or Resize
	// reconfigures first.
	stale bool
}

// NewManager configures backend with cfg and returns its manager.
// Zero dimensions are clamped to 1.
func NewManager(backend Backend, cfg Config) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("present: nil backend")
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		return nil, errors.New("present: undefined surface format")
	}
	cfg.Width, cfg.Height = clampSize(cfg.Width, cfg.Height)
	if err := backend.Configure(cfg); err != nil {
		return nil, Classify("configure surface", err)
	}
	slogger().Debug("surface configured",
		"width", cfg.Width, "height", cfg.Height, "format", cfg.Format)
	return &Manager{backend: backend, cfg: cfg}, nil
}

func clampSize(w, h uint32) (uint32, uint32) {
	return max(w, 1), max(h, 1)
}

// Config returns the active configuration.
func (m *Manager) Config() Config { return m.cfg }

// Resize reconfigures the target at w x h. A zero dimension is clamped to 1,
// so the surface is never configured with an empty extent. Resizing to the
// current size is a no-op unless the target is stale.
func (m *Manager) Resize(w, h uint32) error {
	w, h = clampSize(w, h)
	if w == m.cfg.Width && h == m.cfg.Height && !m.stale {
		return nil
	}
	cfg := m.cfg
	cfg.Width, cfg.Height = w, h
	if err := m.backend.Configure(cfg); err != nil {
		return Classify("resize surface", err)
	}
	m.cfg = cfg
	m.stale = false
	slogger().Debug("surface resized", "width", w, "height", h)
	return nil
}

// Reconfigure reapplies the current configuration.
func (m *Manager) Reconfigure() error {
	if err := m.backend.Configure(m.cfg); err != nil {
		return Classify("reconfigure surface", err)
	}
	m.stale = false
	return nil
}

// Acquire returns the next frame.
//
// On an outdated or lost surface the target is reconfigured at the current
// size and the classified error is returned; the caller drops this frame and
// the next Acquire succeeds. Timeouts are returned as is.
func (m *Manager) Acquire() (*Frame, error) {
	if m.stale {
		if err := m.Reconfigure(); err != nil {
			return nil, err
		}
	}
	f, err := m.backend.Acquire()
	if err == nil {
		if f.Suboptimal {
			m.stale = true
		}
		return f, nil
	}

	err = Classify("acquire frame", err)
	if errors.Is(err, ErrOutdated) || errors.Is(err, ErrLost) {
		slogger().Warn("surface needs reconfiguration", "err", err)
		if rerr := m.Reconfigure(); rerr != nil {
			return nil, fmt.Errorf("%w (reconfigure: %w)", err, rerr)
		}
	}
	return nil, err
}

// Present shows f. An outdated or lost surface marks the target stale, so
// the next Acquire (or a Resize at the current size) rebuilds it.
func (m *Manager) Present(f *Frame) error {
	err := Classify("present frame", m.backend.Present(f))
	if errors.Is(err, ErrOutdated) || errors.Is(err, ErrLost) {
		slogger().Warn("surface needs reconfiguration", "err", err)
		m.stale = true
	}
	return err
}

// Discard releases f without showing it.
func (m *Manager) Discard(f *Frame) {
	m.backend.Discard(f)
}

// Release frees the backend.
func (m *Manager) Release() {
	m.backend.Release()
}
