package scene

import (
	"github.com/google/uuid"

	"deferred-renderer/math"
)

// Material holds the per-object shading factors. A texture map is sampled
// only when it loaded; UseNormalMap can switch normal mapping off on top.
type Material struct {
	AlbedoFactor     math.Vec3
	RoughnessFactor  float32
	MetallicFactor   float32
	EmissionFactor   math.Vec3
	UseNormalMap     bool
	InvertNormalMapY bool
}

func DefaultMaterial() Material {
	return Material{
		AlbedoFactor:    math.Vec3One,
		RoughnessFactor: 1,
		MetallicFactor:  1,
		UseNormalMap:    true,
	}
}

// Object is one drawable entry in the registry.
type Object struct {
	ID   uuid.UUID
	Name string

	// World and WorldIT are row-vector matrices. WorldIT is the inverse
	// transpose of World without its translation and transforms normals.
	World   math.Mat4
	WorldIT math.Mat4

	// Bounds is the world-space picking sphere.
	Bounds math.BoundingSphere
	Meshes []*Mesh

	Visible    bool
	CastShadow bool
	Material   Material

	UseHeightMap bool
	HeightScale  float32

	// Instances are per-instance offsets. UseInstancing draws len(Instances)
	// copies in one call.
	Instances     []math.Vec4
	UseInstancing bool

	dirty bool
}

func NewObject(name string, meshes ...*Mesh) Object {
	return Object{
		ID:         uuid.New(),
		Name:       name,
		World:      math.Mat4Identity(),
		WorldIT:    math.Mat4Identity(),
		Meshes:     meshes,
		Visible:    true,
		CastShadow: true,
		Material:   DefaultMaterial(),
		dirty:      true,
	}
}

func (o *Object) UpdateWorld(world math.Mat4) {
	o.World = world
	o.WorldIT = world.WithTranslation(math.Vec3Zero).Inverse().Transpose()
	o.dirty = true
}

// MarkDirty schedules a constant re-upload for material or flag edits.
func (o *Object) MarkDirty() { o.dirty = true }

func (o *Object) Dirty() bool { return o.dirty }

func (o *Object) ClearDirty() { o.dirty = false }
