package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/instance.wgsl
var instanceShaderSource string

// InstanceShaderWGSL returns the embedded instancing shader source. The
// shader reassembles the four transform columns at locations 5-8 into a
// model matrix and applies camera × model to each mesh vertex.
func InstanceShaderWGSL() string { return instanceShaderSource }

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words for backends
// that consume SPIR-V instead of WGSL. SPIR-V is little-endian 32-bit words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
