// Package nullgpu implements renderer.Device without a GPU. Every call is
// appended to a command log that tests and the dry-run mode inspect.
package nullgpu

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"deferred-renderer/core"
	"deferred-renderer/renderer"
	"deferred-renderer/scene"
)

var ErrInjected = errors.New("nullgpu: injected failure")

// Command is one recorded device call. Only the fields relevant to Op are
// set.
type Command struct {
	Op       string
	Pass     string
	Pipeline renderer.Pipeline
	Views    []renderer.View
	DSV      renderer.View
	Flags    renderer.ClearFlags
	Slot     int
	Buffers  []renderer.Buffer
	Count    uint32
	Viewport core.Viewport
}

func (c Command) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %s", c.Pass, c.Op)
	switch c.Op {
	case "SetPipelineState":
		fmt.Fprintf(&b, " %s", c.Pipeline)
	case "ClearDepthStencil":
		fmt.Fprintf(&b, " %s tex=%d", c.Flags, c.DSV.Texture.ID)
	case "ClearRenderTarget":
		fmt.Fprintf(&b, " tex=%d", c.Views[0].Texture.ID)
	case "SetRenderTargets":
		fmt.Fprintf(&b, " rtvs=%d dsv=%s", len(c.Views), c.DSV.Kind)
	case "SetShaderResources", "SetConstantBuffers":
		fmt.Fprintf(&b, " slot=%d", c.Slot)
	case "DrawIndexed", "DrawIndexedInstanced":
		fmt.Fprintf(&b, " count=%d", c.Count)
	case "SetViewport":
		fmt.Fprintf(&b, " %gx%g", c.Viewport.Width, c.Viewport.Height)
	}
	return b.String()
}

// Device records commands and tracks live resources.
type Device struct {
	Commands []Command

	// FailUpdates makes every UpdateBuffer call fail.
	FailUpdates bool
	// FailCreates makes every resource creation fail.
	FailCreates bool

	nextID   uint32
	textures map[uint32]renderer.Texture
	buffers  map[uint32]renderer.Buffer
	back     renderer.Texture
	markers  []string
	presents int
}

func New(width, height int) *Device {
	d := &Device{
		textures: make(map[uint32]renderer.Texture),
		buffers:  make(map[uint32]renderer.Buffer),
	}
	d.back = d.newTexture(renderer.TextureDesc{
		Width: width, Height: height, Format: renderer.FormatRGBA8,
		Usage: renderer.UsageRenderTarget,
	})
	return d
}

func (d *Device) newTexture(desc renderer.TextureDesc) renderer.Texture {
	d.nextID++
	t := renderer.Texture{ID: d.nextID, Desc: desc}
	d.textures[t.ID] = t
	return t
}

func (d *Device) newBuffer(kind renderer.BufferKind, size int, name string) renderer.Buffer {
	d.nextID++
	b := renderer.Buffer{ID: d.nextID, Kind: kind, Size: size, Name: name}
	d.buffers[b.ID] = b
	return b
}

func (d *Device) record(c Command) {
	if len(d.markers) > 0 {
		c.Pass = d.markers[len(d.markers)-1]
	}
	d.Commands = append(d.Commands, c)
}

func (d *Device) CreateTexture(desc renderer.TextureDesc, data []byte) (renderer.Texture, error) {
	if d.FailCreates {
		return renderer.Texture{}, ErrInjected
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return renderer.Texture{}, fmt.Errorf("texture size %dx%d", desc.Width, desc.Height)
	}
	return d.newTexture(desc), nil
}

// CreateTextureFromFile decodes the file so missing assets fail the same
// way they do on a real device.
func (d *Device) CreateTextureFromFile(path string, srgb bool) (renderer.Texture, error) {
	if d.FailCreates {
		return renderer.Texture{}, ErrInjected
	}
	t, err := scene.LoadTexture(path)
	if err != nil {
		return renderer.Texture{}, err
	}
	format := renderer.FormatRGBA8
	if srgb {
		format = renderer.FormatRGBA8SRGB
	}
	return d.newTexture(renderer.TextureDesc{
		Width: t.Width, Height: t.Height, Format: format, Usage: renderer.UsageShaderResource,
	}), nil
}

func (d *Device) CreateCubemapFromFile(path string) (renderer.Texture, error) {
	if d.FailCreates {
		return renderer.Texture{}, ErrInjected
	}
	t, err := scene.LoadTexture(path)
	if err != nil {
		return renderer.Texture{}, err
	}
	faces, err := scene.SplitCubemapStrip(t)
	if err != nil {
		return renderer.Texture{}, err
	}
	return d.newTexture(renderer.TextureDesc{
		Width: faces[0].Width, Height: faces[0].Height, Format: renderer.FormatRGBA8SRGB,
		Usage: renderer.UsageShaderResource, Cube: true,
	}), nil
}

func (d *Device) ReleaseTexture(t renderer.Texture) {
	delete(d.textures, t.ID)
}

func (d *Device) CreateConstantBuffer(name string, data []byte) (renderer.Buffer, error) {
	if d.FailCreates {
		return renderer.Buffer{}, ErrInjected
	}
	if len(data)%16 != 0 {
		return renderer.Buffer{}, fmt.Errorf("constant buffer %s: size %d is not a multiple of 16", name, len(data))
	}
	return d.newBuffer(renderer.BufferConstant, len(data), name), nil
}

func (d *Device) CreateVertexBuffer(vertices []core.Vertex) (renderer.Buffer, error) {
	if d.FailCreates {
		return renderer.Buffer{}, ErrInjected
	}
	return d.newBuffer(renderer.BufferVertex, len(vertices), "vertices"), nil
}

func (d *Device) CreateIndexBuffer(indices []uint32) (renderer.Buffer, error) {
	if d.FailCreates {
		return renderer.Buffer{}, ErrInjected
	}
	return d.newBuffer(renderer.BufferIndex, len(indices), "indices"), nil
}

func (d *Device) UpdateBuffer(b renderer.Buffer, data []byte) error {
	if d.FailUpdates {
		return ErrInjected
	}
	if _, ok := d.buffers[b.ID]; !ok {
		return fmt.Errorf("buffer %d %q is not live", b.ID, b.Name)
	}
	if len(data) != b.Size {
		return fmt.Errorf("buffer %q: update of %d bytes, created with %d", b.Name, len(data), b.Size)
	}
	d.record(Command{Op: "UpdateBuffer", Buffers: []renderer.Buffer{b}})
	return nil
}

func (d *Device) ReleaseBuffer(b renderer.Buffer) {
	delete(d.buffers, b.ID)
}

func (d *Device) BackBuffer() renderer.Texture { return d.back }

func (d *Device) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d", width, height)
	}
	d.ReleaseTexture(d.back)
	desc := d.back.Desc
	desc.Width, desc.Height = width, height
	d.back = d.newTexture(desc)
	return nil
}

func (d *Device) SetViewport(vp core.Viewport) {
	d.record(Command{Op: "SetViewport", Viewport: vp})
}

func (d *Device) ClearRenderTarget(rtv renderer.View, color [4]float32) {
	d.record(Command{Op: "ClearRenderTarget", Views: []renderer.View{rtv}})
}

func (d *Device) ClearDepthStencil(dsv renderer.View, flags renderer.ClearFlags, depth float32, stencil uint8) {
	d.record(Command{Op: "ClearDepthStencil", DSV: dsv, Flags: flags})
}

func (d *Device) SetRenderTargets(rtvs []renderer.View, dsv renderer.View) {
	d.record(Command{Op: "SetRenderTargets", Views: rtvs, DSV: dsv})
}

func (d *Device) SetPipelineState(p renderer.Pipeline) {
	d.record(Command{Op: "SetPipelineState", Pipeline: p})
}

func (d *Device) SetDepthStencilState(s renderer.DepthStencilState, ref uint8) {
	d.record(Command{Op: "SetDepthStencilState", Count: uint32(ref), Slot: int(s)})
}

func (d *Device) SetWireframe(on bool) {}

func (d *Device) SetShaderResources(slot int, views []renderer.View) {
	d.record(Command{Op: "SetShaderResources", Slot: slot, Views: views})
}

func (d *Device) SetConstantBuffers(slot int, bufs []renderer.Buffer) {
	d.record(Command{Op: "SetConstantBuffers", Slot: slot, Buffers: bufs})
}

func (d *Device) DrawIndexed(vb, ib renderer.Buffer, indexCount uint32) {
	d.record(Command{Op: "DrawIndexed", Buffers: []renderer.Buffer{vb, ib}, Count: indexCount})
}

func (d *Device) DrawIndexedInstanced(vb, ib renderer.Buffer, indexCount, instances uint32) {
	d.record(Command{Op: "DrawIndexedInstanced", Buffers: []renderer.Buffer{vb, ib}, Count: instances})
}

func (d *Device) DrawFullscreen() {
	d.record(Command{Op: "DrawFullscreen"})
}

func (d *Device) PushMarker(name string) {
	d.markers = append(d.markers, name)
	d.record(Command{Op: "PushMarker"})
}

func (d *Device) PopMarker() {
	d.record(Command{Op: "PopMarker"})
	if len(d.markers) > 0 {
		d.markers = d.markers[:len(d.markers)-1]
	}
}

func (d *Device) Present(syncInterval int) error {
	d.presents++
	d.record(Command{Op: "Present"})
	return nil
}

func (d *Device) Capture() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, d.back.Desc.Width, d.back.Desc.Height)), nil
}

func (d *Device) Close() {
	clear(d.textures)
	clear(d.buffers)
}

// Reset drops the command log, keeping resources.
func (d *Device) Reset() {
	d.Commands = d.Commands[:0]
}

// LiveTextures counts textures created and not released, the back buffer
// included.
func (d *Device) LiveTextures() int { return len(d.textures) }

func (d *Device) LiveBuffers() int { return len(d.buffers) }

func (d *Device) Presents() int { return d.presents }

// PassOrder lists the pass markers in the order they were pushed.
func (d *Device) PassOrder() []string {
	var order []string
	for _, c := range d.Commands {
		if c.Op == "PushMarker" {
			order = append(order, c.Pass)
		}
	}
	return order
}

// InPass returns the commands recorded inside the named pass.
func (d *Device) InPass(name string) []Command {
	var cmds []Command
	for _, c := range d.Commands {
		if c.Pass == name && c.Op != "PushMarker" && c.Op != "PopMarker" {
			cmds = append(cmds, c)
		}
	}
	return cmds
}

var _ renderer.Device = (*Device)(nil)
