package scene

import (
	"deferred-renderer/core"
	reMath "deferred-renderer/math"
)

type ProjectionMode int

const (
	ProjectionPerspective ProjectionMode = iota
	ProjectionOrthographic
)

// KeyState reports whether a key, identified by its core.Key* code, is held.
type KeyState interface {
	IsKeyDown(key int) bool
}

// Camera is a yaw/pitch camera. Yaw and pitch are in radians and are set
// absolutely from the cursor position while FirstPersonView is on.
type Camera struct {
	Position reMath.Vec3
	Yaw      float32
	Pitch    float32
	Speed    float32

	Mode        ProjectionMode
	FovDeg      float32
	Near        float32
	Far         float32
	AspectRatio float32

	FirstPersonView bool

	viewDir  reMath.Vec3
	upDir    reMath.Vec3
	rightDir reMath.Vec3
}

func NewCamera(cfg core.CameraConfig, aspectRatio float32) *Camera {
	c := &Camera{
		Position:    reMath.NewVec3(cfg.Position[0], cfg.Position[1], cfg.Position[2]),
		Speed:       cfg.Speed,
		FovDeg:      cfg.FovDeg,
		Near:        cfg.Near,
		Far:         cfg.Far,
		AspectRatio: aspectRatio,
		upDir:       reMath.Vec3Up,
	}
	if cfg.Ortho {
		c.Mode = ProjectionOrthographic
	}
	c.updateViewDir()
	return c
}

// ViewRow moves the world opposite to the camera: translation first, then
// yaw, then pitch.
func (c *Camera) ViewRow() reMath.Mat4 {
	return reMath.Mat4Translation(c.Position.Negate()).
		Mul(reMath.Mat4RotationY(-c.Yaw)).
		Mul(reMath.Mat4RotationX(c.Pitch))
}

// ProjRow builds the projection from the current Mode, FovDeg, AspectRatio
// and clip planes, so assigning any of them takes effect on the next call.
func (c *Camera) ProjRow() reMath.Mat4 {
	if c.Mode == ProjectionOrthographic {
		return reMath.Mat4OrthographicOffCenterLH(-c.AspectRatio, c.AspectRatio, -1, 1, c.Near, c.Far)
	}
	return reMath.Mat4PerspectiveFovLH(reMath.ToRadians(c.FovDeg), c.AspectRatio, c.Near, c.Far)
}

func (c *Camera) EyePos() reMath.Vec3 {
	return c.Position
}

// SetAspectRatio ignores non-positive ratios, which a minimised window
// would produce.
func (c *Camera) SetAspectRatio(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.AspectRatio = aspect
}

func (c *Camera) SetFov(deg float32) {
	c.FovDeg = deg
}

func (c *Camera) SetMode(mode ProjectionMode) {
	c.Mode = mode
}

// UpdateMouse maps the cursor NDC position straight to an orientation:
// x in [-1, 1] spans a full turn of yaw and y spans [-pi/2, pi/2] of pitch.
func (c *Camera) UpdateMouse(ndcX, ndcY float32) {
	if !c.FirstPersonView {
		return
	}
	c.Yaw = ndcX * reMath.TwoPi
	c.Pitch = ndcY * reMath.Pi / 2
	c.updateViewDir()
}

func (c *Camera) UpdateKeyboard(dt float32, keys KeyState) {
	if !c.FirstPersonView || keys == nil {
		return
	}
	step := c.Speed * dt
	if keys.IsKeyDown(core.KeyW) {
		c.MoveForward(step)
	}
	if keys.IsKeyDown(core.KeyS) {
		c.MoveForward(-step)
	}
	if keys.IsKeyDown(core.KeyD) {
		c.MoveRight(step)
	}
	if keys.IsKeyDown(core.KeyA) {
		c.MoveRight(-step)
	}
	if keys.IsKeyDown(core.KeyE) {
		c.MoveUp(step)
	}
	if keys.IsKeyDown(core.KeyQ) {
		c.MoveUp(-step)
	}
}

func (c *Camera) MoveForward(d float32) {
	c.Position = c.Position.Add(c.viewDir.Mul(d))
}

func (c *Camera) MoveRight(d float32) {
	c.Position = c.Position.Add(c.rightDir.Mul(d))
}

func (c *Camera) MoveUp(d float32) {
	c.Position = c.Position.Add(c.upDir.Mul(d))
}

func (c *Camera) ViewDir() reMath.Vec3  { return c.viewDir }
func (c *Camera) UpDir() reMath.Vec3    { return c.upDir }
func (c *Camera) RightDir() reMath.Vec3 { return c.rightDir }

func (c *Camera) updateViewDir() {
	c.viewDir = reMath.Vec3Front.TransformNormal(reMath.Mat4RotationY(c.Yaw))
	c.rightDir = c.upDir.Cross(c.viewDir)
}
