package scene

import (
	"fmt"
	"iter"

	"deferred-renderer/core"
	"deferred-renderer/math"
)

type ObjectID int

type LightID int

const NoObject ObjectID = -1

// Registry owns the scene: a fixed array of light slots and a dense slice
// of objects. Cross references between them are plain indices.
//
// Pointers returned by Object are valid until the next AddObject.
type Registry struct {
	lights  [MaxLights]Light
	objects []Object
	markers [MaxLights]ObjectID
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.lights {
		r.lights[i] = DefaultLight()
		r.markers[i] = NoObject
	}
	return r
}

func (r *Registry) AddObject(o Object) ObjectID {
	r.objects = append(r.objects, o)
	id := ObjectID(len(r.objects) - 1)
	core.LogDebug("object %d %q added (%s)", id, o.Name, o.ID)
	return id
}

func (r *Registry) Object(id ObjectID) (*Object, error) {
	if id < 0 || int(id) >= len(r.objects) {
		return nil, fmt.Errorf("object %d: %w", id, core.ErrUnknownObject)
	}
	return &r.objects[id], nil
}

func (r *Registry) Objects() []Object {
	return r.objects
}

func (r *Registry) Light(id LightID) *Light {
	return &r.lights[id]
}

func (r *Registry) Lights() []Light {
	return r.lights[:]
}

func (r *Registry) SetLight(id LightID, l Light) {
	r.lights[id] = l
}

// SetLightMarker records which object visualises light id.
func (r *Registry) SetLightMarker(id LightID, obj ObjectID) {
	r.markers[id] = obj
}

func (r *Registry) LightMarker(id LightID) ObjectID {
	return r.markers[id]
}

// IsMarker reports whether obj is the marker of some light.
func (r *Registry) IsMarker(obj ObjectID) bool {
	for _, m := range r.markers {
		if m == obj {
			return true
		}
	}
	return false
}

// Visible yields every object with Visible set.
func (r *Registry) Visible() iter.Seq2[ObjectID, *Object] {
	return func(yield func(ObjectID, *Object) bool) {
		for i := range r.objects {
			if !r.objects[i].Visible {
				continue
			}
			if !yield(ObjectID(i), &r.objects[i]) {
				return
			}
		}
	}
}

// ShadowCasters yields visible objects with CastShadow set.
func (r *Registry) ShadowCasters() iter.Seq2[ObjectID, *Object] {
	return func(yield func(ObjectID, *Object) bool) {
		for id, o := range r.Visible() {
			if !o.CastShadow {
				continue
			}
			if !yield(id, o) {
				return
			}
		}
	}
}

// SyncMarkers moves each marker sphere onto its light and hides markers of
// lights that are off.
func (r *Registry) SyncMarkers() {
	for i := range r.lights {
		id := r.markers[i]
		if id == NoObject {
			continue
		}
		obj, err := r.Object(id)
		if err != nil {
			continue
		}
		l := &r.lights[i]
		scale := math.Max(0.01, l.MarkerScale)
		obj.UpdateWorld(math.Mat4Scale(math.Splat3(scale)).Mul(math.Mat4Translation(l.Position)))
		obj.Bounds = math.BoundingSphere{Center: l.Position, Radius: scale}
		obj.Material.AlbedoFactor = l.Color
		obj.Visible = !l.Type.IsOff()
		obj.CastShadow = false
	}
}
