// Package shader translates WGSL into the forms the native drivers consume.
package shader

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
)

// ErrMisalignedSPIRV is returned when SPIR-V bytes are not whole words.
var ErrMisalignedSPIRV = errors.New("shader: SPIR-V length is not a multiple of 4")

// CompileWGSL validates WGSL source and returns SPIR-V words.
func CompileWGSL(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("shader: compile: %w", err)
	}
	return WordsFromBytes(spirvBytes)
}

// WordsFromBytes converts little-endian SPIR-V bytes to 32-bit words.
func WordsFromBytes(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMisalignedSPIRV, len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

// Lower parses and validates WGSL into naga IR.
func Lower(src string) (*ir.Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, fmt.Errorf("shader: lower: %w", err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("shader: validate: %w", err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("shader: validate: %w", &verrs[0])
	}
	return module, nil
}

// HLSL is WGSL translated for the D3D12 driver.
type HLSL struct {
	Source string

	// Entry is the generated name of the requested entry point.
	Entry string

	// ShaderModel is the minimum shader model the source needs, e.g. "5_1".
	ShaderModel string

	// Registers maps resource names to register bindings,
	// e.g. "params" -> "register(b0, space0)".
	Registers map[string]string
}

// TranslateHLSL lowers WGSL and emits HLSL for entry. An empty entry selects
// the first entry point.
func TranslateHLSL(src, entry string) (*HLSL, error) {
	module, err := Lower(src)
	if err != nil {
		return nil, err
	}
	opts := hlsl.DefaultOptions()
	opts.EntryPoint = entry
	out, info, err := hlsl.Compile(module, opts)
	if err != nil {
		return nil, fmt.Errorf("shader: hlsl: %w", err)
	}
	res := &HLSL{Source: out, Entry: entry}
	if info != nil {
		res.ShaderModel = info.RequiredShaderModel.String()
		res.Registers = info.RegisterBindings
		if name, ok := info.EntryPointNames[entry]; ok {
			res.Entry = name
		}
	}
	return res, nil
}

// TranslateMSL lowers WGSL and emits Metal Shading Language.
func TranslateMSL(src string) (string, error) {
	module, err := Lower(src)
	if err != nil {
		return "", err
	}
	out, _, err := msl.Compile(module, msl.DefaultOptions())
	if err != nil {
		return "", fmt.Errorf("shader: msl: %w", err)
	}
	return out, nil
}

// TranslateGLSL lowers WGSL and emits GLSL for entry.
func TranslateGLSL(src, entry string) (string, error) {
	module, err := Lower(src)
	if err != nil {
		return "", err
	}
	opts := glsl.DefaultOptions()
	opts.EntryPoint = entry
	out, _, err := glsl.Compile(module, opts)
	if err != nil {
		return "", fmt.Errorf("shader: glsl: %w", err)
	}
	return out, nil
}
