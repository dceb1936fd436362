package renderer

import (
	"errors"
	"fmt"

	"deferred-renderer/core"
	"deferred-renderer/math"
	"deferred-renderer/scene"
)

const (
	shadowFovDeg = 120
	shadowNear   = 0.01
	shadowFar    = 25

	cubeFovDeg = 90
	cubeNear   = 1
	cubeFar    = 50
)

// ShadowTransform holds row-vector matrices. Up is the up vector that was
// actually used for the look-at.
type ShadowTransform struct {
	View     math.Mat4
	Proj     math.Mat4
	ViewProj math.Mat4
	InvProj  math.Mat4
	Up       math.Vec3
}

// ComputeShadowTransform builds the perspective light view used by spot,
// directional and point lights. ok is false when the light does not cast
// shadows or no valid view exists for it.
func ComputeShadowTransform(l *scene.Light) (ShadowTransform, bool) {
	if !l.CastsShadow() || l.Direction.LengthSqr() == 0 {
		return ShadowTransform{}, false
	}
	dir := l.Direction.Normalize()
	up := math.Vec3Up
	if math.Abs(up.Dot(dir)+1) < 1e-5 {
		up = math.Vec3Right
	}

	target := l.Position.Add(dir).Normalize()
	if target.Sub(l.Position).LengthSqr() == 0 {
		return ShadowTransform{}, false
	}
	view := math.Mat4LookAtLH(l.Position, target, up)
	proj := math.Mat4PerspectiveFovLH(math.ToRadians(shadowFovDeg), 1, shadowNear, shadowFar)
	st := ShadowTransform{
		View:     view,
		Proj:     proj,
		ViewProj: view.Mul(proj),
		InvProj:  proj.Inverse(),
		Up:       up,
	}
	if !st.View.IsFinite() || !st.ViewProj.IsFinite() {
		return ShadowTransform{}, false
	}
	return st, true
}

var cubeFaces = [6]struct {
	dir, up math.Vec3
}{
	{math.Vec3Right, math.Vec3Up},
	{math.Vec3Left, math.Vec3Up},
	{math.Vec3Up, math.Vec3Back},
	{math.Vec3Down, math.Vec3Front},
	{math.Vec3Front, math.Vec3Up},
	{math.Vec3Back, math.Vec3Up},
}

// ComputePointFaces returns the row-vector view-projection of each cube
// face in +X, -X, +Y, -Y, +Z, -Z order.
func ComputePointFaces(pos math.Vec3) [6]math.Mat4 {
	proj := math.Mat4PerspectiveFovLH(math.ToRadians(cubeFovDeg), 1, cubeNear, cubeFar)
	var faces [6]math.Mat4
	for i, f := range cubeFaces {
		faces[i] = math.Mat4LookAtLH(pos, pos.Add(f.dir), f.up).Mul(proj)
	}
	return faces
}

// UpdateShadowLights computes the shadow transform of every light slot,
// stores the upload-ready matrices in the light and fills the per-light
// shadow constants. The camera globals must not be uploaded before this
// so the lights carry this frame's matrices.
func UpdateShadowLights(reg *scene.Registry, store *Store) error {
	var errs []error
	for i := range scene.MaxLights {
		l := reg.Light(scene.LightID(i))
		st, ok := ComputeShadowTransform(l)
		if !ok {
			if l.CastsShadow() && store.shadowActive[i] {
				core.LogWarn("light %d: no valid shadow view, drawing it without shadow", i)
			}
			store.shadowActive[i] = false
			continue
		}
		store.shadowActive[i] = true
		l.ViewProj = st.ViewProj.Transpose()
		l.InvProj = st.InvProj.Transpose()
		l.ShadowUp = st.Up

		if err := store.UpdateShadowGlobal(i, l.Position, st.View, st.Proj); err != nil {
			errs = append(errs, err)
		}
		if l.Type.Has(scene.LightPoint) {
			if err := store.UpdateShadowCube(i, ComputePointFaces(l.Position)); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// ShadowMaps are the depth targets of every light slot. Each slot has a 2D
// map and a cube map; which one a light uses depends on its type.
type ShadowMaps struct {
	dev   Device
	Size  int
	Maps  [scene.MaxLights]Texture
	Cubes [scene.MaxLights]Texture
}

// NewShadowMaps creates a size x size depth map and a half-size depth
// cube for every light slot.
func NewShadowMaps(dev Device, size int) (*ShadowMaps, error) {
	sm := &ShadowMaps{dev: dev, Size: size}
	cubeSize := max(1, size/2)
	for i := range scene.MaxLights {
		var err error
		sm.Maps[i], err = dev.CreateTexture(TextureDesc{
			Width: size, Height: size, Format: FormatD32F,
			Usage: UsageDepthStencil | UsageShaderResource,
		}, nil)
		if err != nil {
			sm.Release()
			return nil, fmt.Errorf("shadow map %d: %w: %w", i, core.ErrResourceCreation, err)
		}
		sm.Cubes[i], err = dev.CreateTexture(TextureDesc{
			Width: cubeSize, Height: cubeSize, Format: FormatD32F,
			Usage: UsageDepthStencil | UsageShaderResource, Cube: true,
		}, nil)
		if err != nil {
			sm.Release()
			return nil, fmt.Errorf("shadow cube %d: %w: %w", i, core.ErrResourceCreation, err)
		}
	}
	return sm, nil
}

// SRVs returns the 2D maps followed by the cube maps, matching
// SRVShadowMap and SRVShadowCube.
func (sm *ShadowMaps) SRVs() (maps, cubes []View) {
	for i := range scene.MaxLights {
		maps = append(maps, SRV(sm.Maps[i]))
		cubes = append(cubes, SRV(sm.Cubes[i]))
	}
	return maps, cubes
}

// Release frees the maps and cubes of every slot.
func (sm *ShadowMaps) Release() {
	for i := range scene.MaxLights {
		if sm.Maps[i].Valid() {
			sm.dev.ReleaseTexture(sm.Maps[i])
		}
		if sm.Cubes[i].Valid() {
			sm.dev.ReleaseTexture(sm.Cubes[i])
		}
		sm.Maps[i], sm.Cubes[i] = Texture{}, Texture{}
	}
}
