package editor

import (
	"deferred-renderer/core"
	"deferred-renderer/math"
	"deferred-renderer/scene"
)

// dragEpsilon is the smallest cursor motion that moves the object.
const dragEpsilon = 1e-3

// rotateDamping scales the drag angle, in degrees, into the applied angle.
const rotateDamping = 0.1

// PickRay is a cursor ray between the unprojected near and far points.
type PickRay struct {
	math.Ray
	Near   math.Vec3
	Far    math.Vec3
	Length float32
}

// RayFromNDC unprojects the cursor at z=0 and z=1. invViewProj is the
// row-vector inverse of view*proj.
func RayFromNDC(ndcX, ndcY float32, invViewProj math.Mat4) PickRay {
	near := math.NewVec3(ndcX, ndcY, 0).TransformCoord(invViewProj)
	far := math.NewVec3(ndcX, ndcY, 1).TransformCoord(invViewProj)
	d := far.Sub(near)
	return PickRay{
		Ray:    math.Ray{Origin: near, Direction: d.Normalize()},
		Near:   near,
		Far:    far,
		Length: d.Length(),
	}
}

// Delta is one frame of manipulation.
type Delta struct {
	Translation math.Vec3
	Rotation    math.Quaternion
	Applied     bool
}

func NoDelta() Delta {
	return Delta{Rotation: math.QuaternionIdentity()}
}

// Manipulator drags an object by its bounding sphere: the left button
// translates, the right button rotates.
type Manipulator struct {
	Selected bool

	ratio      float32
	prevPos    math.Vec3
	prevVector math.Vec3
}

// Update tests the cursor ray against obj.Bounds and returns the change
// to apply this frame. The first frame of a drag only records where the
// drag started.
func (m *Manipulator) Update(in *InputState, invViewProj math.Mat4, obj *scene.Object) Delta {
	delta := NoDelta()
	if !in.LeftButton && !in.RightButton {
		return delta
	}
	ray := RayFromNDC(in.CursorNDC.X, in.CursorNDC.Y, invViewProj)

	if in.LeftButton {
		m.translate(in, ray, obj.Bounds, &delta)
	}
	if in.RightButton {
		m.rotate(in, ray, obj.Bounds, &delta)
	}
	return delta
}

func (m *Manipulator) translate(in *InputState, ray PickRay, bounds math.BoundingSphere, delta *Delta) {
	dist, hit := math.RaySphere(ray.Ray, bounds)
	m.Selected = hit
	if !hit {
		return
	}
	if in.consumeDragStart(core.MouseLeft) {
		m.ratio = dist / ray.Length
		m.prevPos = ray.At(dist)
		return
	}
	newPos := ray.Near.Add(ray.Far.Sub(ray.Near).Mul(m.ratio))
	if newPos.Sub(m.prevPos).Length() > dragEpsilon {
		delta.Translation = newPos.Sub(m.prevPos)
		delta.Applied = true
		m.prevPos = newPos
	}
}

func (m *Manipulator) rotate(in *InputState, ray PickRay, bounds math.BoundingSphere, delta *Delta) {
	dist, hit := math.RaySphere(ray.Ray, bounds)
	m.Selected = hit
	if !hit {
		return
	}
	v := ray.At(dist).Sub(bounds.Center).Normalize()
	if in.consumeDragStart(core.MouseRight) {
		m.ratio = dist / ray.Length
		m.prevVector = v
		return
	}
	if v.Sub(m.prevVector).Length() <= dragEpsilon {
		return
	}
	// The damped degree value is used as radians.
	angle := math.ToDegrees(math.Acos(math.Clamp(v.Dot(m.prevVector), -1, 1))) * rotateDamping
	axis := m.prevVector.Cross(v).Normalize()
	delta.Rotation = math.QuaternionFromAxisAngle(axis, angle)
	delta.Applied = true
	m.prevVector = v
}

// ApplyDelta rotates obj about its own origin, then moves it. The bounding
// sphere follows the translation.
func ApplyDelta(obj *scene.Object, d Delta) {
	if !d.Applied {
		return
	}
	translation := obj.World.Translation()
	world := obj.World.WithTranslation(math.Vec3Zero).
		Mul(d.Rotation.ToMat4()).
		Mul(math.Mat4Translation(d.Translation.Add(translation)))
	obj.UpdateWorld(world)
	obj.Bounds.Center = world.Translation()
}
