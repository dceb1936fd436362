package engine

import (
	"fmt"
	"path/filepath"

	"deferred-renderer/core"
	"deferred-renderer/editor"
	"deferred-renderer/math"
	"deferred-renderer/renderer"
	"deferred-renderer/scene"
)

// lightRotateSpeed is in radians per second.
const lightRotateSpeed = 0.5

// orbitLight is the slot Space sets rotating.
const orbitLight scene.LightID = 1

// DeferredScene is the demo scene: a skybox, a textured ground square,
// two boxes, a sphere, the loaded main model and three lights with marker
// spheres. The main model can be dragged with the mouse.
type DeferredScene struct {
	overlay Overlay
	frame   renderer.Frame

	main   scene.ObjectID
	ground scene.ObjectID

	manip   editor.Manipulator
	history *editor.History
	drag    editor.DragRecorder

	// Light 1 orbits Y from its initial placement while rotation is on.
	lightAngle    float32
	orbitPosition math.Vec3
	orbitDir      math.Vec3

	postDirty bool
}

func NewDeferredScene() *DeferredScene {
	return &DeferredScene{history: editor.NewHistory(64)}
}

func (d *DeferredScene) Initialize(ctx *Context) error {
	reg := ctx.Registry
	assets := ctx.Config.Assets
	d.frame = renderer.NewFrame(reg)

	square := scene.CreateMeshFromData("pass-square", scene.MakeSquare(0.2, math.NewVec2(1, 1)))
	for i := range d.frame.DebugQuads {
		quad := scene.NewObject(fmt.Sprintf("pass%d", i), square)
		quad.CastShadow = false
		quad.UpdateWorld(math.Mat4Translation(math.NewVec3(-0.75, 0.7-0.4*float32(i), 0)))
		d.frame.DebugQuads[i] = reg.AddObject(quad)
	}

	sky := scene.NewObject("skybox", scene.CreateMeshFromData("skybox",
		scene.ReverseWinding(scene.MakeBox(25, false))))
	sky.CastShadow = false
	sky.Material.RoughnessFactor = 0.3
	sky.Material.MetallicFactor = 0.8
	d.frame.Skybox = reg.AddObject(sky)

	groundData := scene.MakeSquare(4, math.NewVec2(1, 1))
	groundData.AlbedoTexture = filepath.Join(assets.TextureDir, "Bricks075A", "Bricks075A_1K-JPG_Color.jpg")
	groundData.NormalTexture = filepath.Join(assets.TextureDir, "Bricks075A", "Bricks075A_1K-JPG_NormalDX.jpg")
	ground := scene.NewObject("ground", scene.CreateMeshFromData("ground", groundData))
	ground.Material.AlbedoFactor = math.NewVec3(0.4, 0.5, 0.2)
	ground.UpdateWorld(math.Mat4RotationX(math.Pi / 2).Mul(math.Mat4Translation(math.NewVec3(0, -2.5, 0))))
	d.ground = reg.AddObject(ground)

	box := scene.CreateMeshFromData("box", scene.MakeBox(2, false))
	blue := scene.NewObject("box-blue", box)
	blue.Material.AlbedoFactor = math.NewVec3(0.1, 0.1, 0.3)
	blue.Material.RoughnessFactor = 0.3
	blue.Material.MetallicFactor = 0.8
	blue.UpdateWorld(math.Mat4Translation(math.NewVec3(0, 0, 5)))
	reg.AddObject(blue)

	red := scene.NewObject("box-red", box)
	red.Material.AlbedoFactor = math.NewVec3(0.8, 0.1, 0.3)
	red.UpdateWorld(math.Mat4Translation(math.NewVec3(5, 0, 0)))
	reg.AddObject(red)

	d.main = reg.AddObject(loadMainObject(assets))

	sphere := scene.NewObject("sphere", scene.CreateMeshFromData("sphere",
		scene.MakeSphere(0.3, 50, 50, math.NewVec2(1, 1))))
	sphere.Material.AlbedoFactor = math.Splat3(0.8)
	sphere.Material.RoughnessFactor = 1
	sphere.Material.MetallicFactor = 0.2
	sphere.UpdateWorld(math.Mat4Scale(math.Splat3(5)).
		Mul(math.Mat4RotationY(math.Pi / 2)).
		Mul(math.Mat4Translation(math.NewVec3(-3.5, 0.5, 0))))
	reg.AddObject(sphere)

	d.setupLights(reg)

	d.overlay = Overlay{
		Post:         &ctx.Res.Store.Post,
		Global:       &ctx.Res.Store.Global,
		Seq:          ctx.Sequencer,
		Reg:          reg,
		Camera:       ctx.Camera,
		NormalMapped: []scene.ObjectID{d.ground, d.main},
		Main:         d.main,
		History:      d.history,
	}
	return nil
}

// loadMainObject loads the configured glTF model. If it cannot be read a
// small box stands in for it.
func loadMainObject(assets core.AssetConfig) scene.Object {
	const name = "main"
	var meshes []*scene.Mesh
	data, err := scene.LoadScene(assets.ModelDir, assets.ModelFile, false)
	if err != nil {
		core.LogWarn("main model: %v", err)
		data = []core.MeshData{scene.MakeBox(0.2, false)}
	}
	for i, md := range data {
		meshes = append(meshes, scene.CreateMeshFromData(fmt.Sprintf("%s%d", name, i), md))
	}

	center := math.NewVec3(0, 0.5, 1)
	obj := scene.NewObject(name, meshes...)
	obj.Material.InvertNormalMapY = true
	obj.Material.AlbedoFactor = math.NewVec3(0.9, 0.2, 0.2)
	obj.Material.RoughnessFactor = 0.3
	obj.Material.MetallicFactor = 0.8
	obj.Instances = []math.Vec4{{}}
	obj.UpdateWorld(math.Mat4Translation(center))
	obj.Bounds = math.BoundingSphere{Center: center, Radius: 0.5}
	return obj
}

func (d *DeferredScene) setupLights(reg *scene.Registry) {
	spot := scene.DefaultLight()
	spot.Position = math.NewVec3(0, 2, 0)
	spot.Direction = math.NewVec3(0, -1, 0)
	spot.Radius = 0.02
	spot.MarkerScale = 0.02
	spot.Type = scene.LightSpot | scene.LightShadow
	reg.SetLight(0, spot)

	sun := scene.DefaultLight()
	sun.Position = math.NewVec3(-0.5, 1.2, 0)
	sun.Direction = math.NewVec3(0.5, -1.5, 0)
	sun.Color = math.NewVec3(0.5, 1, 1)
	sun.Type = scene.LightDirectional | scene.LightShadow
	reg.SetLight(orbitLight, sun)
	d.orbitPosition, d.orbitDir = sun.Position, sun.Direction

	point := scene.DefaultLight()
	point.Position = math.NewVec3(-1.3, -0.4, -1)
	point.Radius = 0.02
	point.MarkerScale = 0.02
	point.Type = scene.LightPoint | scene.LightShadow
	reg.SetLight(2, point)

	marker := scene.CreateMeshFromData("light-marker", scene.MakeSphere(1, 20, 20, math.NewVec2(1, 1)))
	for i := range scene.MaxLights {
		obj := scene.NewObject(fmt.Sprintf("light%d-marker", i), marker)
		obj.Material.EmissionFactor = math.NewVec3(1, 0, 0)
		obj.CastShadow = false
		reg.SetLightMarker(scene.LightID(i), reg.AddObject(obj))
	}
	reg.SyncMarkers()
}

func (d *DeferredScene) UpdateGUI(ctx *Context) {
	ch := d.overlay.Update(ctx)
	d.postDirty = d.postDirty || ch.Post
	if ch.Lights[orbitLight] {
		// The orbit restarts from the edited placement.
		l := ctx.Registry.Light(orbitLight)
		d.orbitPosition, d.orbitDir = l.Position, l.Direction
		d.lightAngle = 0
	}

	for _, key := range ctx.Pressed {
		switch key {
		case core.KeyZ:
			d.history.Undo()
		case core.KeyR:
			d.history.Redo()
		}
	}
}

// Update moves the scene and uploads every constant the frame reads, in
// dependency order: shadow transforms first, then the lights that carry
// them, then the camera constants.
func (d *DeferredScene) Update(ctx *Context, dt float32) error {
	reg := ctx.Registry
	store := ctx.Res.Store
	cam := ctx.Camera

	cam.UpdateKeyboard(dt, ctx.Input)
	view, proj := cam.ViewRow(), cam.ProjRow()

	if ctx.LightRotate {
		d.lightAngle += lightRotateSpeed * dt
		rot := math.Mat4RotationY(d.lightAngle)
		l := reg.Light(orbitLight)
		l.Position = d.orbitPosition.TransformCoord(rot)
		l.Direction = d.orbitDir.TransformNormal(rot)
	}
	reg.SyncMarkers()

	main, err := reg.Object(d.main)
	if err != nil {
		return err
	}
	delta := d.manip.Update(ctx.Input, view.Mul(proj).Inverse(), main)
	editor.ApplyDelta(main, delta)
	d.drag.Track(d.history, reg, d.main, ctx.Input.Dragging())

	if d.postDirty {
		if err := store.UpdatePostEffects(); err != nil {
			return err
		}
		d.postDirty = false
	}
	if err := renderer.UpdateShadowLights(reg, store); err != nil {
		return err
	}
	store.SetLights(reg.Lights())
	return store.UpdateGlobalConstants(cam.EyePos(), view, proj)
}

func (d *DeferredScene) Render(ctx *Context) error {
	return ctx.Sequencer.Render(d.frame)
}

func (d *DeferredScene) Resize(ctx *Context, width, height int) error {
	return nil
}

func (d *DeferredScene) Close() {
	d.history.Clear()
}

// Frame exposes the frame description, mainly for tests.
func (d *DeferredScene) Frame() renderer.Frame { return d.frame }

// MainObject is the draggable model.
func (d *DeferredScene) MainObject() scene.ObjectID { return d.main }
