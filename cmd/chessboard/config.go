package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gogpu/chessboard/board"
	"github.com/pelletier/go-toml/v2"
)

// config is the command configuration. A TOML file supplies the base
// values; flags given on the command line override them.
type config struct {
	Width   uint32     `toml:"width"`
	Height  uint32     `toml:"height"`
	FEN     string     `toml:"fen"`
	Output  string     `toml:"output"`
	Atlas   string     `toml:"atlas"`
	Backend string     `toml:"backend"`
	Clear   [4]float64 `toml:"clear"`
	Frames  int        `toml:"frames"`
	Verbose bool       `toml:"verbose"`
}

func defaultConfig() config {
	return config{
		Width:   800,
		Height:  800,
		FEN:     board.StartFEN,
		Output:  "board.png",
		Backend: "vulkan",
		Clear:   [4]float64{0.1, 0.2, 0.3, 1},
		Frames:  1,
	}
}

// loadConfigFile decodes a TOML file over cfg. Unknown keys are errors.
func loadConfigFile(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// parseArgs builds the configuration from defaults, the optional -config
// file and the flags, in that order of precedence.
func parseArgs(args []string) (config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("chessboard", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "TOML configuration file")
		width      = fs.Uint("width", uint(cfg.Width), "image width")
		height     = fs.Uint("height", uint(cfg.Height), "image height")
		fen        = fs.String("fen", cfg.FEN, "piece placement in FEN")
		output     = fs.String("output", cfg.Output, "output PNG file")
		atlas      = fs.String("atlas", "", "piece atlas image (PNG, WebP or BMP)")
		backend    = fs.String("backend", cfg.Backend, "GPU backend (vulkan)")
		frames     = fs.Int("frames", cfg.Frames, "frames to render before the snapshot")
		verbose    = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != "" {
		if err := loadConfigFile(*configPath, &cfg); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = uint32(*width) //nolint:gosec // validated below
		case "height":
			cfg.Height = uint32(*height) //nolint:gosec // validated below
		case "fen":
			cfg.FEN = *fen
		case "output":
			cfg.Output = *output
		case "atlas":
			cfg.Atlas = *atlas
		case "backend":
			cfg.Backend = *backend
		case "frames":
			cfg.Frames = *frames
		case "v":
			cfg.Verbose = *verbose
		}
	})
	return cfg, cfg.validate()
}

const maxDimension = 16384

func (c *config) validate() error {
	if c.Width == 0 || c.Height == 0 || c.Width > maxDimension || c.Height > maxDimension {
		return fmt.Errorf("size %dx%d out of range 1..%d", c.Width, c.Height, maxDimension)
	}
	if c.Output == "" {
		return errors.New("no output file")
	}
	if c.Frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", c.Frames)
	}
	if c.Backend != "vulkan" {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
