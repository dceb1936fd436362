package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// programDesc lists the sources of one pipeline and the names its uniform
// blocks and samplers are bound to. GLSL 4.10 has no binding layout
// qualifier so both are assigned after linking.
type programDesc struct {
	vert, geom, frag string
	blocks           map[string]uint32
	samplers         map[string]int32
}

func newProgram(desc programDesc) (uint32, error) {
	stages := []struct {
		src  string
		kind uint32
		name string
	}{
		{desc.vert, gl.VERTEX_SHADER, "vertex"},
		{desc.geom, gl.GEOMETRY_SHADER, "geometry"},
		{desc.frag, gl.FRAGMENT_SHADER, "fragment"},
	}

	prog := gl.CreateProgram()
	var shaders []uint32
	defer func() {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
	}()
	for _, st := range stages {
		if st.src == "" {
			continue
		}
		s, err := compileShader(st.src, st.kind)
		if err != nil {
			gl.DeleteProgram(prog)
			return 0, fmt.Errorf("%s: %w", st.name, err)
		}
		gl.AttachShader(prog, s)
		shaders = append(shaders, s)
	}
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}

	for name, slot := range desc.blocks {
		idx := gl.GetUniformBlockIndex(prog, gl.Str(name+"\x00"))
		if idx == gl.INVALID_INDEX {
			// Unused blocks are optimised away.
			continue
		}
		gl.UniformBlockBinding(prog, idx, slot)
	}
	gl.UseProgram(prog)
	for name, unit := range desc.samplers {
		if loc := gl.GetUniformLocation(prog, gl.Str(name+"\x00")); loc >= 0 {
			gl.Uniform1i(loc, unit)
		}
	}
	gl.UseProgram(0)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
