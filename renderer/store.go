package renderer

import (
	"fmt"

	"deferred-renderer/core"
	"deferred-renderer/math"
	"deferred-renderer/scene"
)

// Store owns the CPU copies of the frame-wide constants and the GPU
// buffers they are uploaded to. Every Update call encodes and uploads
// synchronously; a failed upload leaves the previous GPU contents.
type Store struct {
	dev Device

	Global     GlobalConstants
	Shadow     [scene.MaxLights]GlobalConstants
	Post       PostEffectsConstants
	SSAO       SSAOConstants
	ShadowCube [scene.MaxLights]ShadowCubeConstants

	GlobalBuf     Buffer
	ShadowBufs    [scene.MaxLights]Buffer
	PostBuf       Buffer
	SSAOBuf       Buffer
	ShadowCubeBuf [scene.MaxLights]Buffer

	// shadowActive is false for slots whose shadow transform could not be
	// built this frame. Such lights are shaded without a shadow.
	shadowActive [scene.MaxLights]bool
}

// NewStore fills the constants from cfg and creates one constant buffer per
// group. Nothing is uploaded until the first Update call.
func NewStore(dev Device, cfg core.Config) (*Store, error) {
	s := &Store{dev: dev}
	s.ApplyRenderConfig(cfg.Render)
	s.Post = DefaultPostEffects(cfg.Post)
	s.SSAO = NewSSAOKernel(SSAOSeed)
	s.SSAO.NoiseScale = noiseScale(cfg.Window.Width, cfg.Window.Height)
	for i := range s.Shadow {
		s.ShadowCube[i] = ShadowCubeConstants{ViewProj: identityFaces()}
	}

	var err error
	if s.GlobalBuf, err = NewConstantBuffer(dev, "global", &s.Global); err != nil {
		return nil, err
	}
	for i := range s.ShadowBufs {
		if s.ShadowBufs[i], err = NewConstantBuffer(dev, fmt.Sprintf("shadow-global%d", i), &s.Shadow[i]); err != nil {
			s.Release()
			return nil, err
		}
		if s.ShadowCubeBuf[i], err = NewConstantBuffer(dev, fmt.Sprintf("shadow-cube%d", i), &s.ShadowCube[i]); err != nil {
			s.Release()
			return nil, err
		}
	}
	if s.PostBuf, err = NewConstantBuffer(dev, "post-effects", &s.Post); err != nil {
		s.Release()
		return nil, err
	}
	if s.SSAOBuf, err = NewConstantBuffer(dev, "ssao", &s.SSAO); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// ApplyRenderConfig copies the feature toggles into the global constants.
// They take effect with the next UpdateGlobalConstants.
func (s *Store) ApplyRenderConfig(cfg core.RenderConfig) {
	s.Global.UseSSAO = boolToInt32(cfg.UseSSAO)
	s.Global.UseIBL = boolToInt32(cfg.UseIBL)
	s.Global.StrengthIBL = cfg.StrengthIBL
	s.Global.LodBias = cfg.LodBias
	s.Global.EnvLodBias = cfg.EnvLodBias
}

// fillCamera writes the camera matrices in upload order. invViewProj is
// the inverse of the already transposed viewProj.
func fillCamera(dst *GlobalConstants, eye math.Vec3, viewRow, projRow math.Mat4) {
	dst.EyeWorld = eye
	dst.View = viewRow.Transpose()
	dst.Proj = projRow.Transpose()
	dst.InvProj = projRow.Inverse().Transpose()
	dst.ViewProj = viewRow.Mul(projRow).Transpose()
	dst.InvViewProj = dst.ViewProj.Inverse()
}

// UpdateGlobalConstants rebuilds the camera matrices of the main pass and
// uploads the global constants, including the lights last given to
// SetLights.
func (s *Store) UpdateGlobalConstants(eye math.Vec3, viewRow, projRow math.Mat4) error {
	fillCamera(&s.Global, eye, viewRow, projRow)
	return Upload(s.dev, s.GlobalBuf, &s.Global)
}

// UpdateShadowGlobal fills the constants used while rendering light i's
// shadow map. They share the layout and the code path of the main pass.
func (s *Store) UpdateShadowGlobal(i int, eye math.Vec3, viewRow, projRow math.Mat4) error {
	s.Shadow[i] = s.Global
	fillCamera(&s.Shadow[i], eye, viewRow, projRow)
	return Upload(s.dev, s.ShadowBufs[i], &s.Shadow[i])
}

// UpdateShadowCube uploads the six row-vector face matrices of light i.
func (s *Store) UpdateShadowCube(i int, faces [6]math.Mat4) error {
	for f := range faces {
		s.ShadowCube[i].ViewProj[f] = faces[f].Transpose()
	}
	return Upload(s.dev, s.ShadowCubeBuf[i], &s.ShadowCube[i])
}

// SetLights copies the light slots into the global constants. Lights whose
// shadow transform failed lose their shadow bit for this frame.
func (s *Store) SetLights(lights []scene.Light) {
	for i := range s.Global.Lights {
		if i >= len(lights) {
			s.Global.Lights[i] = LightConstants{}
			continue
		}
		lc := lightConstants(&lights[i])
		if !s.shadowActive[i] {
			lc.Type &^= uint32(scene.LightShadow)
		}
		s.Global.Lights[i] = lc
	}
}

// ShadowActive reports whether light i renders a shadow map this frame.
func (s *Store) ShadowActive(i int) bool { return s.shadowActive[i] }

// UpdatePostEffects uploads Post as it stands.
func (s *Store) UpdatePostEffects() error {
	return Upload(s.dev, s.PostBuf, &s.Post)
}

// UpdateSSAO uploads the kernel and noise scale.
func (s *Store) UpdateSSAO() error {
	return Upload(s.dev, s.SSAOBuf, &s.SSAO)
}

// Resize rescales the SSAO noise tiling to the new target size.
func (s *Store) Resize(width, height int) error {
	s.SSAO.NoiseScale = noiseScale(width, height)
	return s.UpdateSSAO()
}

// Release frees every constant buffer and zeroes the store.
func (s *Store) Release() {
	bufs := []Buffer{s.GlobalBuf, s.PostBuf, s.SSAOBuf}
	bufs = append(bufs, s.ShadowBufs[:]...)
	bufs = append(bufs, s.ShadowCubeBuf[:]...)
	for _, b := range bufs {
		if b.Valid() {
			s.dev.ReleaseBuffer(b)
		}
	}
	*s = Store{dev: s.dev}
}

func identityFaces() [6]math.Mat4 {
	var faces [6]math.Mat4
	for i := range faces {
		faces[i] = math.Mat4Identity()
	}
	return faces
}
