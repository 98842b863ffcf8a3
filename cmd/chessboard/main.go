// Command chessboard renders a chess position to a PNG file on the GPU.
//
// Usage:
//
//	chessboard -fen 'r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R' -output italian.png
//	chessboard -config board.toml -width 400 -height 400
//
// The configuration file accepts the keys width, height, fen, output, atlas,
// backend, clear (four floats), frames and verbose. Flags override it. The
// only backend is vulkan: the software rasterizer in wgpu does not execute
// indexed draws, which both board layers use.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/chessboard"
	"github.com/gogpu/chessboard/board"
	"github.com/gogpu/gputypes"
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("chessboard: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("chessboard: %v", err)
	}
}

func run(cfg config) error {
	if cfg.Verbose {
		chessboard.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	b, err := board.ParseFEN(cfg.FEN)
	if err != nil {
		return err
	}

	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}
	eng, err := chessboard.NewHeadless(chessboard.Size{Width: cfg.Width, Height: cfg.Height}, opts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	for i := 0; i < cfg.Frames; i++ {
		if err := eng.Render(&b); err != nil {
			if chessboard.IsTransient(err) {
				continue
			}
			return err
		}
	}
	if eng.Stats().Rendered == 0 {
		return errors.New("no frame rendered")
	}

	img, err := eng.Snapshot()
	if err != nil {
		return err
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", cfg.Output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	ec := eng.Config()
	log.Printf("Board saved to %s (%dx%d, %d pieces, %s)",
		cfg.Output, ec.Size.Width, ec.Size.Height, eng.Stats().Pieces, ec.Adapter)
	return nil
}

// engineOptions translates the configuration into engine options.
func engineOptions(cfg config) ([]chessboard.Option, error) {
	opts := []chessboard.Option{
		chessboard.WithClearColor(gputypes.Color{
			R: cfg.Clear[0], G: cfg.Clear[1], B: cfg.Clear[2], A: cfg.Clear[3],
		}),
	}
	if cfg.Atlas != "" {
		data, err := os.ReadFile(cfg.Atlas)
		if err != nil {
			return nil, fmt.Errorf("read atlas: %w", err)
		}
		opts = append(opts, chessboard.WithAtlas(data))
	}
	return opts, nil
}
