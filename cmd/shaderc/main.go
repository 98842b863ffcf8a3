// Command shaderc compiles the embedded layer shaders from WGSL to SPIR-V
// and writes one .spv file per shader. The engine compiles the same sources
// at startup; shaderc exists to inspect and validate them ahead of time.
//
// Usage:
//
//	shaderc -out build/shaders
//	shaderc -check
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/gogpu/chessboard/internal/layer"
)

func main() {
	var (
		out   = flag.String("out", ".", "output directory")
		check = flag.Bool("check", false, "compile only, write nothing")
		wgsl  = flag.Bool("wgsl", false, "also write the WGSL sources")
	)
	flag.Parse()

	written, err := run(*out, *check, *wgsl)
	if err != nil {
		log.Fatalf("shaderc: %v", err)
	}
	for _, path := range written {
		log.Printf("wrote %s", path)
	}
}

// run compiles every shader in name order. Unless check is set the SPIR-V
// (and with withWGSL the source) is written to dir. It returns the paths
// written.
func run(dir string, check, withWGSL bool) ([]string, error) {
	sources := layer.Sources()
	names := make([]layer.Shader, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	slices.Sort(names)

	if !check {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	var written []string
	for _, name := range names {
		words, err := layer.CompileSPIRV(sources[name])
		if err != nil {
			return written, fmt.Errorf("%s: %w", name, err)
		}
		if check {
			continue
		}

		spv := filepath.Join(dir, string(name)+".spv")
		if err := os.WriteFile(spv, spirvBytes(words), 0o644); err != nil {
			return written, err
		}
		written = append(written, spv)

		if withWGSL {
			src := filepath.Join(dir, string(name)+".wgsl")
			if err := os.WriteFile(src, []byte(sources[name]), 0o644); err != nil {
				return written, err
			}
			written = append(written, src)
		}
	}
	return written, nil
}

// spirvBytes serializes SPIR-V words little-endian, the byte order naga
// emits and drivers accept.
func spirvBytes(words []uint32) []byte {
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	return buf
}
