package commands

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/gogpu/naga"
)

//go:embed texture_array.wgsl.tmpl
var textureArrayShaderTemplate string

var textureArrayShader = template.Must(template.New("texture_array").Parse(textureArrayShaderTemplate))

const vertexEntryPoint = "vs_main"
const fragmentEntryPoint = "fs_main"

type shaderSlot struct {
	Slot           uint32
	TextureBinding uint32
	SamplerBinding uint32
}

// textureBinding returns the binding of the texture in the given slot. The sampler
// uses the next binding.
func textureBinding(slot uint32) uint32 {
	return 2 * slot
}

// uniformBinding returns the binding of the indirection uniform, directly after the last slot.
func uniformBinding(maxTextures uint32) uint32 {
	return 2 * maxTextures
}

// GenerateShader returns the wgsl source of a shader that samples one out of
// maxTextures texture slots. Each slot uses two bindings, a texture followed by
// its sampler. The uniform holding the texture index follows the last slot.
func GenerateShader(maxTextures uint32, indexing Indexing) (string, error) {
	slots := make([]shaderSlot, maxTextures)
	for idx := range slots {
		slot := uint32(idx)

		slots[idx] = shaderSlot{
			Slot:           slot,
			TextureBinding: textureBinding(slot),
			SamplerBinding: textureBinding(slot) + 1,
		}
	}

	var buf strings.Builder

	err := textureArrayShader.Execute(&buf, map[string]any{
		"Slots":          slots,
		"UniformBinding": uniformBinding(maxTextures),
		"NonUniform":     indexing == IndexingNonUniform,
	})

	if err != nil {
		return "", fmt.Errorf("render shader template: %w", err)
	}

	return buf.String(), nil
}

// ValidateWGSL parses and validates the shader source without a device.
func ValidateWGSL(code string) error {
	ast, err := naga.Parse(code)
	if err != nil {
		return fmt.Errorf("parse shader: %w", err)
	}

	module, err := naga.LowerWithSource(ast, code)
	if err != nil {
		return fmt.Errorf("lower shader: %w", err)
	}

	validationErrors, err := naga.Validate(module)
	if err != nil {
		return fmt.Errorf("validate shader: %w", err)
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("validate shader: %w", &validationErrors[0])
	}

	return nil
}
