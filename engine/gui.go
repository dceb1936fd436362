package engine

import (
	"fmt"
	"strings"

	"deferred-renderer/core"
	"deferred-renderer/editor"
	"deferred-renderer/math"
	"deferred-renderer/renderer"
	"deferred-renderer/scene"
)

// slider is one float the overlay can step with -/=.
type slider struct {
	name   string
	value  func(o *Overlay) *float32
	lo, hi float32
	step   float32
}

// editTarget is what the arrow keys change.
type editTarget int

const (
	editLightPlacement editTarget = iota
	editLightColor
	editMainPosition
	editMainRotation
	editTargetCount
)

func (e editTarget) String() string {
	switch e {
	case editLightColor:
		return "color"
	case editMainPosition:
		return "main position"
	case editMainRotation:
		return "main rotation"
	}
	return "placement"
}

const (
	placeStep  = 0.1
	placeRange = 10
	colorStep  = 0.05
	rotateStep = 5 * math.Pi / 180
)

// Changes reports what the overlay touched that the scene must react to.
type Changes struct {
	Post bool
	// Lights marks the slots whose position, direction or color changed.
	Lights [scene.MaxLights]bool
}

// Overlay is the keyboard debug overlay. It edits the constants it points
// at in place and summarises the state in the window title.
//
//	M post mode   G edge    O SSAO   I IBL   N normal maps   T flip normal Y
//	PgUp/PgDn select value   -/= change it
//	[ ] select light   L light on/off   P debug quads   Home wireframe
//	End cycle edit target: light placement, light color, main position, main rotation
//	Left/Right x   ,/. y   Down/Up z   (r, g, b for color)
type Overlay struct {
	Post   *renderer.PostEffectsConstants
	Global *renderer.GlobalConstants
	Seq    *renderer.Sequencer
	Reg    *scene.Registry
	Camera *scene.Camera

	// NormalMapped are the objects whose normal maps N and T switch.
	NormalMapped []scene.ObjectID

	// Main is moved by the main position and rotation targets. Each step
	// is pushed to History when it is set.
	Main    scene.ObjectID
	History *editor.History

	selected   int
	edit       editTarget
	light      scene.LightID
	savedTypes [scene.MaxLights]scene.LightType

	lines []string
	title string
}

var sliders = []slider{
	{name: "strengthIBL", value: func(o *Overlay) *float32 { return &o.Global.StrengthIBL }, lo: 1e-3, hi: 10, step: 0.1},
	{name: "depthScale", value: func(o *Overlay) *float32 { return &o.Post.DepthScale }, lo: 1e-3, hi: 1, step: 0.05},
	{name: "gammaScale", value: func(o *Overlay) *float32 { return &o.Post.GammaScale }, lo: 1e-3, hi: 10, step: 0.1},
	{name: "fogStrength", value: func(o *Overlay) *float32 { return &o.Post.FogStrength }, lo: 0, hi: 10, step: 0.25},
	{name: "exposure", value: func(o *Overlay) *float32 { return &o.Post.Exposure }, lo: 0, hi: 10, step: 0.1},
}

// Update applies the keys pressed this frame and refreshes the title.
func (o *Overlay) Update(ctx *Context) Changes {
	var ch Changes
	for _, key := range ctx.Pressed {
		o.handleKey(key, &ch)
	}

	o.Clear()
	o.AddLine("%s", ctx.Config.Window.Title)
	o.AddLine("%d FPS", ctx.FPS)
	o.AddLine("%s edge=%s ssao=%s ibl=%s", o.modeName(), onOff(o.Post.Edge != 0),
		onOff(o.Global.UseSSAO != 0), onOff(o.Global.UseIBL != 0))
	s := sliders[o.selected]
	o.AddLine("%s=%.3f", s.name, *s.value(o))
	o.AddLine("light%d %s", o.light, o.Reg.Light(o.light).Type)
	o.AddLine("edit %s", o.edit)
	o.AddLine("fpv=%s", onOff(o.Camera.FirstPersonView))
	if ctx.LightRotate {
		o.AddLine("rotating")
	}

	if title := o.Text(); title != o.title {
		o.title = title
		ctx.Window.SetTitle(title)
	}
	return ch
}

func (o *Overlay) handleKey(key int, ch *Changes) {
	switch key {
	case core.KeyM:
		if o.Post.Mode == 1 {
			o.Post.Mode = 2
		} else {
			o.Post.Mode = 1
		}
		ch.Post = true
	case core.KeyG:
		o.Post.Edge ^= 1
		ch.Post = true
	case core.KeyO:
		o.Global.UseSSAO ^= 1
	case core.KeyI:
		o.Global.UseIBL ^= 1
	case core.KeyN:
		o.eachNormalMapped(func(m *scene.Material) { m.UseNormalMap = !m.UseNormalMap })
	case core.KeyT:
		o.eachNormalMapped(func(m *scene.Material) { m.InvertNormalMapY = !m.InvertNormalMapY })

	case core.KeyPageUp:
		o.selected = (o.selected + len(sliders) - 1) % len(sliders)
	case core.KeyPageDown:
		o.selected = (o.selected + 1) % len(sliders)
	case core.KeyEqual, core.KeyMinus:
		s := sliders[o.selected]
		v := s.value(o)
		if key == core.KeyEqual {
			*v = min(*v+s.step, s.hi)
		} else {
			*v = max(*v-s.step, s.lo)
		}
		// strengthIBL lives in the global constants, uploaded every frame.
		ch.Post = ch.Post || o.selected > 0

	case core.KeyLeftBracket:
		o.light = (o.light + scene.MaxLights - 1) % scene.MaxLights
	case core.KeyRightBracket:
		o.light = (o.light + 1) % scene.MaxLights
	case core.KeyL:
		o.toggleLight()

	case core.KeyP:
		o.Seq.DebugPasses = !o.Seq.DebugPasses
	case core.KeyHome:
		o.Seq.Wireframe = !o.Seq.Wireframe

	case core.KeyEnd:
		o.edit = (o.edit + 1) % editTargetCount
	default:
		axis, sign, ok := arrowAxis(key)
		if !ok {
			return
		}
		switch o.edit {
		case editLightPlacement, editLightColor:
			o.stepLight(axis, sign)
			ch.Lights[o.light] = true
		default:
			o.stepMain(axis, sign)
		}
	}
}

// arrowAxis maps the edit keys to a vector component and a direction.
func arrowAxis(key int) (axis int, sign float32, ok bool) {
	switch key {
	case core.KeyLeft:
		return 0, -1, true
	case core.KeyRight:
		return 0, 1, true
	case core.KeyComma:
		return 1, -1, true
	case core.KeyPeriod:
		return 1, 1, true
	case core.KeyDown:
		return 2, -1, true
	case core.KeyUp:
		return 2, 1, true
	}
	return 0, 0, false
}

func stepComponent(v math.Vec3, axis int, d, lo, hi float32) math.Vec3 {
	c := [3]float32{v.X, v.Y, v.Z}
	c[axis] = math.Clamp(c[axis]+d, lo, hi)
	return math.NewVec3(c[0], c[1], c[2])
}

// stepLight moves the selected light, or turns its direction when it is
// directional, or changes one color channel.
func (o *Overlay) stepLight(axis int, sign float32) {
	l := o.Reg.Light(o.light)
	switch {
	case o.edit == editLightColor:
		l.Color = stepComponent(l.Color, axis, sign*colorStep, 0, 1)
	case l.Type.Has(scene.LightDirectional):
		l.Direction = stepComponent(l.Direction, axis, sign*placeStep, -placeRange, placeRange)
	default:
		l.Position = stepComponent(l.Position, axis, sign*placeStep, -placeRange, placeRange)
	}
}

// stepMain translates the main object or rotates it about a world axis
// through its center.
func (o *Overlay) stepMain(axis int, sign float32) {
	obj, err := o.Reg.Object(o.Main)
	if err != nil {
		core.LogWarn("overlay: %v", err)
		return
	}
	old := obj.World
	d := editor.NoDelta()
	d.Applied = true
	if o.edit == editMainRotation {
		axes := [3]math.Vec3{math.Vec3Right, math.Vec3Up, math.Vec3Front}
		d.Rotation = math.QuaternionFromAxisAngle(axes[axis], sign*rotateStep)
	} else {
		pos := old.Translation()
		d.Translation = stepComponent(pos, axis, sign*placeStep, -placeRange, placeRange).Sub(pos)
	}
	editor.ApplyDelta(obj, d)
	if o.History != nil {
		o.History.Push(editor.NewTransformCommand(o.Reg, o.Main, old, obj.World, "overlay "+obj.Name))
	}
}

// toggleLight switches the selected slot off, or back to the type it had.
func (o *Overlay) toggleLight() {
	l := o.Reg.Light(o.light)
	if !l.Type.IsOff() {
		o.savedTypes[o.light] = l.Type
		l.Type = scene.LightOff
		return
	}
	l.Type = o.savedTypes[o.light]
	if l.Type.IsOff() {
		l.Type = scene.LightPoint
	}
}

func (o *Overlay) eachNormalMapped(fn func(*scene.Material)) {
	for _, id := range o.NormalMapped {
		obj, err := o.Reg.Object(id)
		if err != nil {
			core.LogWarn("overlay: %v", err)
			continue
		}
		fn(&obj.Material)
		obj.MarkDirty()
	}
}

func (o *Overlay) modeName() string {
	if o.Post.Mode == 2 {
		return "depth"
	}
	return "render"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (o *Overlay) AddLine(format string, args ...interface{}) {
	o.lines = append(o.lines, fmt.Sprintf(format, args...))
}

func (o *Overlay) Clear() {
	o.lines = o.lines[:0]
}

// Text joins the lines into one title-bar string.
func (o *Overlay) Text() string {
	return strings.Join(o.lines, " | ")
}
