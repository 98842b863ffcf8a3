// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL shader sources. Each file holds the vertex (vs_main) and
// fragment (fs_main) stage of one layer.

//go:embed shaders/background.wgsl
var backgroundShaderSource string

//go:embed shaders/piece.wgsl
var pieceShaderSource string

// Shader entry points shared by both layers.
const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"
)

// ErrEmptyShader is returned when an embedded shader source is missing.
var ErrEmptyShader = errors.New("layer: shader source is empty")

// Shader names the layer programs. Sources returns them for build tooling.
type Shader string

const (
	BackgroundShader Shader = "background"
	PieceShader      Shader = "piece"
)

// Sources returns every embedded WGSL program keyed by name.
func Sources() map[Shader]string {
	return map[Shader]string{
		BackgroundShader: backgroundShaderSource,
		PieceShader:      pieceShaderSource,
	}
}

// spirvCache holds SPIR-V compiled once per process.
var spirvCache sync.Map // Shader -> []uint32

// CompileSPIRV compiles WGSL source to SPIR-V words with naga.
func CompileSPIRV(source string) ([]uint32, error) {
	if source == "" {
		return nil, ErrEmptyShader
	}
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// shaderSPIRV returns the compiled SPIR-V for name, compiling on first use.
func shaderSPIRV(name Shader) ([]uint32, error) {
	if code, ok := spirvCache.Load(name); ok {
		return code.([]uint32), nil
	}
	source, ok := Sources()[name]
	if !ok {
		return nil, fmt.Errorf("layer: unknown shader %q", name)
	}
	code, err := CompileSPIRV(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	spirvCache.Store(name, code)
	return code, nil
}

// createShaderModule builds a device shader module for name.
func createShaderModule(device hal.Device, name Shader) (hal.ShaderModule, error) {
	code, err := shaderSPIRV(name)
	if err != nil {
		return nil, err
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  string(name) + "_shader",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader module: %w", name, err)
	}
	slogger().Debug("shader module created", "shader", name, "words", len(code))
	return module, nil
}
