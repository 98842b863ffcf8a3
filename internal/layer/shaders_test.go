// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"errors"
	"strings"
	"testing"
)

const spirvMagic = 0x07230203

func TestShaderSourcesPresent(t *testing.T) {
	for name, src := range Sources() {
		if src == "" {
			t.Errorf("shader %s is empty", name)
		}
		for _, entry := range []string{vertexEntryPoint, fragmentEntryPoint} {
			if !strings.Contains(src, "fn "+entry) {
				t.Errorf("shader %s has no %s", name, entry)
			}
		}
	}
}

func TestCompileSPIRV(t *testing.T) {
	for name, src := range Sources() {
		t.Run(string(name), func(t *testing.T) {
			code, err := CompileSPIRV(src)
			if err != nil {
				t.Fatalf("CompileSPIRV failed: %v", err)
			}
			if len(code) == 0 || code[0] != spirvMagic {
				t.Fatalf("output does not start with the SPIR-V magic number")
			}
		})
	}
}

func TestCompileSPIRVEmpty(t *testing.T) {
	if _, err := CompileSPIRV(""); !errors.Is(err, ErrEmptyShader) {
		t.Errorf("CompileSPIRV(\"\") error = %v, want ErrEmptyShader", err)
	}
}

func TestShaderSPIRVCached(t *testing.T) {
	a, err := shaderSPIRV(BackgroundShader)
	if err != nil {
		t.Fatalf("shaderSPIRV failed: %v", err)
	}
	b, err := shaderSPIRV(BackgroundShader)
	if err != nil {
		t.Fatalf("shaderSPIRV failed: %v", err)
	}
	if &a[0] != &b[0] {
		t.Error("second lookup recompiled the shader")
	}
	if _, err := shaderSPIRV("missing"); err == nil {
		t.Error("expected error for unknown shader")
	}
}
