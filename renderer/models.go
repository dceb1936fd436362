package renderer

import (
	"errors"
	"fmt"

	"deferred-renderer/core"
	"deferred-renderer/scene"
)

// textureSlot indexes MeshTextures.
type textureSlot int

const (
	texAlbedo textureSlot = iota
	texNormal
	texAO
	texMetallic
	texRoughness
	texEmissive
	texHeight
	textureSlotCount
)

// GPUMesh is stored in scene.Mesh.GPUData once uploaded.
type GPUMesh struct {
	VB, IB     Buffer
	IndexCount uint32

	Textures [textureSlotCount]Texture
	// Loaded marks textures that came from disk; the rest are the neutral
	// placeholder.
	Loaded [textureSlotCount]bool
}

// ModelBinding holds the per-object constants and their buffers.
type ModelBinding struct {
	Mesh      MeshConstants
	Material  MaterialConstants
	Instanced InstancedConstants

	MeshBuf      Buffer
	MaterialBuf  Buffer
	InstancedBuf Buffer
}

// Models uploads scene objects and draws them. Textures are shared between
// meshes that reference the same file.
type Models struct {
	dev      Device
	bindings []*ModelBinding
	meshes   []*scene.Mesh
	textures map[textureKey]Texture
	neutral  Texture
}

type textureKey struct {
	path string
	srgb bool
}

// NewModels creates the neutral 1x1 texture that stands in for any
// missing map.
func NewModels(dev Device) (*Models, error) {
	neutral, err := dev.CreateTexture(TextureDesc{
		Width: 1, Height: 1, Format: FormatRGBA8, Usage: UsageShaderResource,
	}, []byte{255, 255, 255, 255})
	if err != nil {
		return nil, fmt.Errorf("neutral texture: %w: %w", core.ErrResourceCreation, err)
	}
	return &Models{
		dev:      dev,
		textures: make(map[textureKey]Texture),
		neutral:  neutral,
	}, nil
}

// Sync uploads meshes that have no GPU data yet and re-uploads the
// constants of every dirty object.
func (m *Models) Sync(reg *scene.Registry) error {
	objects := reg.Objects()
	for len(m.bindings) < len(objects) {
		m.bindings = append(m.bindings, nil)
	}
	var errs []error
	for i := range objects {
		obj := &objects[i]
		for _, mesh := range obj.Meshes {
			if mesh.GPUData != nil {
				continue
			}
			if err := m.uploadMesh(mesh); err != nil {
				errs = append(errs, err)
			}
		}
		if m.bindings[i] == nil {
			b, err := m.newBinding(obj)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			m.bindings[i] = b
			obj.ClearDirty()
			continue
		}
		if obj.Dirty() {
			if err := m.update(m.bindings[i], obj); err != nil {
				errs = append(errs, err)
				continue
			}
			obj.ClearDirty()
		}
	}
	return errors.Join(errs...)
}

func (m *Models) uploadMesh(mesh *scene.Mesh) error {
	vb, err := m.dev.CreateVertexBuffer(mesh.Data.Vertices)
	if err != nil {
		return fmt.Errorf("mesh %q vertices: %w: %w", mesh.Name, core.ErrResourceCreation, err)
	}
	ib, err := m.dev.CreateIndexBuffer(mesh.Data.Indices)
	if err != nil {
		m.dev.ReleaseBuffer(vb)
		return fmt.Errorf("mesh %q indices: %w: %w", mesh.Name, core.ErrResourceCreation, err)
	}
	g := &GPUMesh{VB: vb, IB: ib, IndexCount: mesh.IndexCount}

	paths := [textureSlotCount]string{
		texAlbedo:    mesh.Data.AlbedoTexture,
		texNormal:    mesh.Data.NormalTexture,
		texAO:        mesh.Data.AOTexture,
		texMetallic:  mesh.Data.MetallicTexture,
		texRoughness: mesh.Data.RoughnessTexture,
		texEmissive:  mesh.Data.EmissiveTexture,
		texHeight:    mesh.Data.HeightTexture,
	}
	for slot, path := range paths {
		srgb := textureSlot(slot) == texAlbedo || textureSlot(slot) == texEmissive
		g.Textures[slot], g.Loaded[slot] = m.texture(path, srgb)
	}
	mesh.GPUData = g
	m.meshes = append(m.meshes, mesh)
	return nil
}

// texture returns the cached texture for path. A missing or unreadable
// file yields the neutral texture and false.
func (m *Models) texture(path string, srgb bool) (Texture, bool) {
	if path == "" {
		return m.neutral, false
	}
	key := textureKey{path, srgb}
	if t, ok := m.textures[key]; ok {
		return t, t != m.neutral
	}
	t, err := m.dev.CreateTextureFromFile(path, srgb)
	if err != nil {
		core.LogWarn("texture %q: %v", path, err)
		m.textures[key] = m.neutral
		return m.neutral, false
	}
	m.textures[key] = t
	return t, true
}

func (m *Models) newBinding(obj *scene.Object) (*ModelBinding, error) {
	b := &ModelBinding{}
	fillBinding(b, obj)
	var err error
	if b.MeshBuf, err = NewConstantBuffer(m.dev, obj.Name+".mesh", &b.Mesh); err != nil {
		return nil, err
	}
	if b.MaterialBuf, err = NewConstantBuffer(m.dev, obj.Name+".material", &b.Material); err != nil {
		m.dev.ReleaseBuffer(b.MeshBuf)
		return nil, err
	}
	if b.InstancedBuf, err = NewConstantBuffer(m.dev, obj.Name+".instanced", &b.Instanced); err != nil {
		m.dev.ReleaseBuffer(b.MeshBuf)
		m.dev.ReleaseBuffer(b.MaterialBuf)
		return nil, err
	}
	return b, nil
}

func (m *Models) update(b *ModelBinding, obj *scene.Object) error {
	fillBinding(b, obj)
	return errors.Join(
		Upload(m.dev, b.MeshBuf, &b.Mesh),
		Upload(m.dev, b.MaterialBuf, &b.Material),
		Upload(m.dev, b.InstancedBuf, &b.Instanced),
	)
}

func fillBinding(b *ModelBinding, obj *scene.Object) {
	b.Mesh = MeshConstants{
		World:        obj.World.Transpose(),
		WorldIT:      obj.WorldIT.Transpose(),
		UseHeightMap: boolToInt32(obj.UseHeightMap),
		HeightScale:  obj.HeightScale,
	}

	// Map flags are per object; the first uploaded mesh decides which maps
	// exist. Meshes of one glTF material share their textures.
	var loaded [textureSlotCount]bool
	for _, mesh := range obj.Meshes {
		if g, ok := mesh.GPUData.(*GPUMesh); ok {
			loaded = g.Loaded
			break
		}
	}
	mat := obj.Material
	b.Material = MaterialConstants{
		AlbedoFactor:     mat.AlbedoFactor,
		RoughnessFactor:  mat.RoughnessFactor,
		EmissionFactor:   mat.EmissionFactor,
		MetallicFactor:   mat.MetallicFactor,
		UseAlbedoMap:     boolToInt32(loaded[texAlbedo]),
		UseNormalMap:     boolToInt32(loaded[texNormal] && mat.UseNormalMap),
		UseAOMap:         boolToInt32(loaded[texAO]),
		InvertNormalMapY: boolToInt32(mat.InvertNormalMapY),
		UseMetallicMap:   boolToInt32(loaded[texMetallic]),
		UseRoughnessMap:  boolToInt32(loaded[texRoughness]),
		UseEmissiveMap:   boolToInt32(loaded[texEmissive]),
	}
	if obj.UseHeightMap && !loaded[texHeight] {
		b.Mesh.UseHeightMap = 0
	}

	b.Instanced = InstancedConstants{UseInstancing: boolToInt32(obj.UseInstancing)}
	n := copy(b.Instanced.Offsets[:], obj.Instances)
	b.Instanced.Count = int32(n)
}

// Binding returns the GPU state of an object once Sync has seen it.
func (m *Models) Binding(id scene.ObjectID) (*ModelBinding, bool) {
	if id < 0 || int(id) >= len(m.bindings) || m.bindings[id] == nil {
		return nil, false
	}
	return m.bindings[id], true
}

// Draw binds the object's constants and draws each of its meshes. With
// textures false only geometry is drawn, as in the depth passes.
// Instancing applies only when instanced is true.
func (m *Models) Draw(id scene.ObjectID, obj *scene.Object, textures, instanced bool) {
	b, ok := m.Binding(id)
	if !ok {
		return
	}
	m.dev.SetConstantBuffers(SlotMesh, []Buffer{b.MeshBuf})
	m.dev.SetConstantBuffers(SlotMaterial, []Buffer{b.MaterialBuf})
	m.dev.SetConstantBuffers(SlotInstanced, []Buffer{b.InstancedBuf})

	count := uint32(b.Instanced.Count)
	for _, mesh := range obj.Meshes {
		g, ok := mesh.GPUData.(*GPUMesh)
		if !ok {
			continue
		}
		if textures {
			m.dev.SetShaderResources(SRVAlbedo, []View{
				SRV(g.Textures[texAlbedo]), SRV(g.Textures[texNormal]), SRV(g.Textures[texAO]),
				SRV(g.Textures[texMetallic]), SRV(g.Textures[texRoughness]),
			})
			m.dev.SetShaderResources(SRVEmissive, []View{SRV(g.Textures[texEmissive]), SRV(g.Textures[texHeight])})
		}
		if instanced && obj.UseInstancing && count > 0 {
			m.dev.DrawIndexedInstanced(g.VB, g.IB, g.IndexCount, count)
			continue
		}
		m.dev.DrawIndexed(g.VB, g.IB, g.IndexCount)
	}
}

// Release frees every binding and uploaded mesh along with all cached
// textures.
func (m *Models) Release() {
	for _, b := range m.bindings {
		if b == nil {
			continue
		}
		m.dev.ReleaseBuffer(b.MeshBuf)
		m.dev.ReleaseBuffer(b.MaterialBuf)
		m.dev.ReleaseBuffer(b.InstancedBuf)
	}
	for _, mesh := range m.meshes {
		if g, ok := mesh.GPUData.(*GPUMesh); ok {
			m.dev.ReleaseBuffer(g.VB)
			m.dev.ReleaseBuffer(g.IB)
		}
		mesh.GPUData = nil
	}
	released := map[Texture]bool{m.neutral: true}
	for _, t := range m.textures {
		if !released[t] {
			m.dev.ReleaseTexture(t)
			released[t] = true
		}
	}
	m.dev.ReleaseTexture(m.neutral)
	m.bindings, m.meshes = nil, nil
	m.textures = make(map[textureKey]Texture)
}
