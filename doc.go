// Package chessboard renders a chessboard on the GPU.
//
// # Overview
//
// A frame is two layers drawn over a cleared target: a checkerboard
// background and one textured sprite per occupied square, taken from a
// 6x2 piece atlas. The board is supplied per frame as a [board.Board]
// snapshot; chessboard keeps no game state and knows no chess rules.
//
// # Quick Start
//
//	eng, err := chessboard.New(chessboard.SurfaceHandle{
//	    Display: display,
//	    Window:  window,
//	}, chessboard.Size{Width: 800, Height: 800})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	b := board.Default()
//	for running {
//	    if err := eng.Render(&b); err != nil && !chessboard.IsTransient(err) {
//	        log.Fatal(err)
//	    }
//	}
//
// Without a window, NewHeadless renders into an offscreen texture that
// Snapshot reads back as an [image.RGBA].
//
// # Errors
//
// Render reports a dropped frame with a transient error (outdated or lost
// surface, frame timeout); the surface has already been reconfigured and
// the next Render proceeds normally. Out-of-memory and device loss are
// fatal (see IsFatal). Construction errors, such as a missing adapter, an
// undecodable atlas or a shader that fails to compile, are always fatal.
//
// # Threading
//
// An Engine belongs to one goroutine. Render, Resize and Close must not be
// called concurrently.
//
// # Logging
//
// chessboard is silent by default. Call SetLogger to route its diagnostics
// to a [log/slog] logger.
package chessboard
