// Package opengl implements renderer.Device on an OpenGL 4.1 core context.
// Every method must be called on the thread that owns the context.
package opengl

import (
	"fmt"
	"image"
	"slices"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"deferred-renderer/core"
	"deferred-renderer/renderer"
	"deferred-renderer/scene"
)

// backBufferID names the default framebuffer's colour surface.
const backBufferID = ^uint32(0)

// Surface is the window side of presentation.
type Surface interface {
	SwapBuffers()
	SetSwapInterval(n int)
}

type glBuffer struct {
	buf renderer.Buffer
	vao uint32 // vertex buffers only
}

type Device struct {
	surface      Surface
	swapInterval int

	textures map[uint32]renderer.Texture
	buffers  map[uint32]*glBuffer
	fbos     map[string]uint32
	back     renderer.Texture

	pipelines []pipelineState
	current   renderer.Pipeline
	override  renderer.DepthStencilState
	ref       uint8
	// readOnlyDepth holds while the bound depth view is read-only; no
	// pipeline may write depth then.
	readOnlyDepth bool

	fullscreenVAO uint32
	boundFBO      uint32
	markers       []string
}

// New initialises the GL bindings on the current context and compiles
// every pipeline.
func New(surface Surface, width, height int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: gl init: %w", core.ErrInitFailed, err)
	}
	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	if major < 4 || (major == 4 && minor < 1) {
		return nil, fmt.Errorf("%w: have %d.%d, need 4.1", core.ErrUnsupportedContext, major, minor)
	}
	core.LogInfo("OpenGL %s on %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	pipelines, err := buildPipelines()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInitFailed, err)
	}

	d := &Device{
		surface:      surface,
		swapInterval: -1,
		textures:     make(map[uint32]renderer.Texture),
		buffers:      make(map[uint32]*glBuffer),
		fbos:         make(map[string]uint32),
		pipelines:    pipelines,
		back: renderer.Texture{ID: backBufferID, Desc: renderer.TextureDesc{
			Width: width, Height: height, Format: renderer.FormatRGBA8, Usage: renderer.UsageRenderTarget,
		}},
	}
	gl.GenVertexArrays(1, &d.fullscreenVAO)

	// Meshes use clockwise front faces.
	gl.FrontFace(gl.CW)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	return d, nil
}

// ── Resources ─────────────────────────────────────────────────────────────────

func (d *Device) CreateTexture(desc renderer.TextureDesc, data []byte) (renderer.Texture, error) {
	id, err := allocTexture(desc, data, false)
	if err != nil {
		return renderer.Texture{}, err
	}
	t := renderer.Texture{ID: id, Desc: desc}
	d.textures[id] = t
	return t, nil
}

func (d *Device) CreateTextureFromFile(path string, srgb bool) (renderer.Texture, error) {
	img, err := scene.LoadTexture(path)
	if err != nil {
		return renderer.Texture{}, err
	}
	desc := renderer.TextureDesc{
		Width: img.Width, Height: img.Height, Format: renderer.FormatRGBA8,
		Usage: renderer.UsageShaderResource,
	}
	if srgb {
		desc.Format = renderer.FormatRGBA8SRGB
	}
	id, err := allocTexture(desc, img.Pixels, true)
	if err != nil {
		return renderer.Texture{}, fmt.Errorf("%q: %w", path, err)
	}
	t := renderer.Texture{ID: id, Desc: desc}
	d.textures[id] = t
	return t, nil
}

func (d *Device) CreateCubemapFromFile(path string) (renderer.Texture, error) {
	strip, err := scene.LoadTexture(path)
	if err != nil {
		return renderer.Texture{}, err
	}
	data, size, err := cubeFaces(strip)
	if err != nil {
		return renderer.Texture{}, err
	}
	desc := renderer.TextureDesc{
		Width: size, Height: size, Format: renderer.FormatRGBA8SRGB,
		Usage: renderer.UsageShaderResource, Cube: true,
	}
	id, err := allocTexture(desc, data, true)
	if err != nil {
		return renderer.Texture{}, fmt.Errorf("%q: %w", path, err)
	}
	t := renderer.Texture{ID: id, Desc: desc}
	d.textures[id] = t
	return t, nil
}

func (d *Device) ReleaseTexture(t renderer.Texture) {
	if _, ok := d.textures[t.ID]; !ok {
		return
	}
	d.dropFramebuffers(t.ID)
	gl.DeleteTextures(1, &t.ID)
	delete(d.textures, t.ID)
}

func (d *Device) CreateConstantBuffer(name string, data []byte) (renderer.Buffer, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.UNIFORM_BUFFER, id)
	gl.BufferData(gl.UNIFORM_BUFFER, len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	b := renderer.Buffer{ID: id, Kind: renderer.BufferConstant, Size: len(data), Name: name}
	d.buffers[id] = &glBuffer{buf: b}
	return b, nil
}

// CreateVertexBuffer also builds the vertex array that describes the
// core.Vertex layout.
func (d *Device) CreateVertexBuffer(vertices []core.Vertex) (renderer.Buffer, error) {
	if len(vertices) == 0 {
		return renderer.Buffer{}, fmt.Errorf("empty vertex buffer")
	}
	g := &glBuffer{}
	var id uint32
	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &id)
	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexStride, gl.Ptr(vertices), gl.STATIC_DRAW)
	for _, a := range vertexAttribs {
		gl.EnableVertexAttribArray(a.location)
		gl.VertexAttribPointer(a.location, a.size, gl.FLOAT, false, vertexStride, gl.PtrOffset(a.offset))
	}
	gl.BindVertexArray(0)

	g.buf = renderer.Buffer{ID: id, Kind: renderer.BufferVertex, Size: len(vertices) * vertexStride, Name: "vertices"}
	d.buffers[id] = g
	return g.buf, nil
}

func (d *Device) CreateIndexBuffer(indices []uint32) (renderer.Buffer, error) {
	if len(indices) == 0 {
		return renderer.Buffer{}, fmt.Errorf("empty index buffer")
	}
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, id)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	b := renderer.Buffer{ID: id, Kind: renderer.BufferIndex, Size: len(indices) * 4, Name: "indices"}
	d.buffers[id] = &glBuffer{buf: b}
	return b, nil
}

func (d *Device) UpdateBuffer(b renderer.Buffer, data []byte) error {
	g, ok := d.buffers[b.ID]
	if !ok {
		return fmt.Errorf("buffer %d %q is not live", b.ID, b.Name)
	}
	if len(data) != g.buf.Size {
		return fmt.Errorf("buffer %q: update of %d bytes, created with %d", b.Name, len(data), g.buf.Size)
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.ID)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return nil
}

func (d *Device) ReleaseBuffer(b renderer.Buffer) {
	g, ok := d.buffers[b.ID]
	if !ok {
		return
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	gl.DeleteBuffers(1, &b.ID)
	delete(d.buffers, b.ID)
}

func (d *Device) BackBuffer() renderer.Texture { return d.back }

// Resize only records the new size; the default framebuffer follows the
// window.
func (d *Device) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d", width, height)
	}
	d.back.Desc.Width, d.back.Desc.Height = width, height
	return nil
}

// ── Framebuffers ──────────────────────────────────────────────────────────────

func framebufferKey(rtvs []renderer.View, dsv renderer.View) string {
	var b strings.Builder
	for _, v := range rtvs {
		fmt.Fprintf(&b, "c%d,", v.Texture.ID)
	}
	if !dsv.IsNone() {
		fmt.Fprintf(&b, "d%d", dsv.Texture.ID)
	}
	return b.String()
}

// framebuffer returns a cached FBO for the attachment set. The back buffer
// maps to the default framebuffer.
func (d *Device) framebuffer(rtvs []renderer.View, dsv renderer.View) (uint32, error) {
	if len(rtvs) == 1 && rtvs[0].Texture.ID == backBufferID {
		return 0, nil
	}
	key := framebufferKey(rtvs, dsv)
	if fbo, ok := d.fbos[key]; ok {
		return fbo, nil
	}

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	drawBuffers := make([]uint32, len(rtvs))
	for i, v := range rtvs {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i), gl.TEXTURE_2D, v.Texture.ID, 0)
		drawBuffers[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	} else {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}
	if !dsv.IsNone() {
		attach := uint32(gl.DEPTH_ATTACHMENT)
		if dsv.Texture.Desc.Format == renderer.FormatD24S8 {
			attach = gl.DEPTH_STENCIL_ATTACHMENT
		}
		if dsv.Texture.Desc.Cube {
			// Layered: the geometry shader picks the face.
			gl.FramebufferTexture(gl.FRAMEBUFFER, attach, dsv.Texture.ID, 0)
		} else {
			gl.FramebufferTexture2D(gl.FRAMEBUFFER, attach, gl.TEXTURE_2D, dsv.Texture.ID, 0)
		}
	}
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.boundFBO)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		return 0, fmt.Errorf("framebuffer %s incomplete: status=0x%X", key, status)
	}
	d.fbos[key] = fbo
	return fbo, nil
}

// dropFramebuffers deletes every cached FBO that references texture id.
func (d *Device) dropFramebuffers(id uint32) {
	for key, fbo := range d.fbos {
		parts := strings.FieldsFunc(key, func(r rune) bool { return r == ',' })
		if !slices.Contains(parts, fmt.Sprintf("c%d", id)) && !slices.Contains(parts, fmt.Sprintf("d%d", id)) {
			continue
		}
		if fbo == d.boundFBO {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			d.boundFBO = 0
		}
		gl.DeleteFramebuffers(1, &fbo)
		delete(d.fbos, key)
	}
}

// withFramebuffer runs fn with the FBO for the attachments bound, then
// restores the current binding.
func (d *Device) withFramebuffer(rtvs []renderer.View, dsv renderer.View, fn func()) {
	fbo, err := d.framebuffer(rtvs, dsv)
	if err != nil {
		core.LogError("%s: %v", d.marker(), err)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	fn()
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.boundFBO)
}

// ── Commands ──────────────────────────────────────────────────────────────────

func (d *Device) SetViewport(vp core.Viewport) {
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))
	gl.DepthRangef(vp.MinDepth, vp.MaxDepth)
}

func (d *Device) ClearRenderTarget(rtv renderer.View, color [4]float32) {
	d.withFramebuffer([]renderer.View{rtv}, renderer.NoView, func() {
		gl.ClearBufferfv(gl.COLOR, 0, &color[0])
	})
}

func (d *Device) ClearDepthStencil(dsv renderer.View, flags renderer.ClearFlags, depth float32, stencil uint8) {
	d.withFramebuffer(nil, dsv, func() {
		gl.DepthMask(true)
		gl.StencilMask(0xFF)
		switch {
		case flags == renderer.ClearDepth|renderer.ClearStencil && dsv.Texture.Desc.Format == renderer.FormatD24S8:
			gl.ClearBufferfi(gl.DEPTH_STENCIL, 0, depth, int32(stencil))
		case flags&renderer.ClearDepth != 0:
			gl.ClearBufferfv(gl.DEPTH, 0, &depth)
		case flags&renderer.ClearStencil != 0:
			s := int32(stencil)
			gl.ClearBufferiv(gl.STENCIL, 0, &s)
		}
	})
	// Clearing forced the write masks on.
	d.applyPipeline()
}

func (d *Device) SetRenderTargets(rtvs []renderer.View, dsv renderer.View) {
	fbo, err := d.framebuffer(rtvs, dsv)
	if err != nil {
		core.LogError("%s: %v", d.marker(), err)
		return
	}
	d.boundFBO = fbo
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	d.readOnlyDepth = dsv.Kind == renderer.ViewReadOnlyDSV
	write := false
	if int(d.current) < len(d.pipelines) {
		write = d.pipelines[d.current].writesDepth(d.readOnlyDepth)
	}
	gl.DepthMask(write)
}

func (d *Device) SetPipelineState(p renderer.Pipeline) {
	d.current = p
	d.override, d.ref = renderer.DepthStencilDefault, 0
	d.applyPipeline()
}

func (d *Device) SetDepthStencilState(s renderer.DepthStencilState, ref uint8) {
	d.override, d.ref = s, ref
	d.applyPipeline()
}

func (d *Device) applyPipeline() {
	if int(d.current) < len(d.pipelines) {
		d.pipelines[d.current].apply(d.override, d.ref, d.readOnlyDepth)
	}
}

func (d *Device) SetWireframe(on bool) {
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (d *Device) SetShaderResources(slot int, views []renderer.View) {
	for i, v := range views {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(slot+i))
		if v.IsNone() || !v.Texture.Valid() {
			gl.BindTexture(gl.TEXTURE_2D, 0)
			continue
		}
		gl.BindTexture(target(v.Texture.Desc), v.Texture.ID)
	}
	gl.ActiveTexture(gl.TEXTURE0)
}

func (d *Device) SetConstantBuffers(slot int, bufs []renderer.Buffer) {
	for i, b := range bufs {
		gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(slot+i), b.ID)
	}
}

func (d *Device) DrawIndexed(vb, ib renderer.Buffer, indexCount uint32) {
	d.DrawIndexedInstanced(vb, ib, indexCount, 1)
}

func (d *Device) DrawIndexedInstanced(vb, ib renderer.Buffer, indexCount, instances uint32) {
	g, ok := d.buffers[vb.ID]
	if !ok || g.vao == 0 {
		return
	}
	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.ID)
	if instances == 1 {
		gl.DrawElements(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawElementsInstanced(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, nil, int32(instances))
	}
	gl.BindVertexArray(0)
}

func (d *Device) DrawFullscreen() {
	gl.BindVertexArray(d.fullscreenVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

// PushMarker names the pass that following GL errors are reported for.
func (d *Device) PushMarker(name string) {
	d.markers = append(d.markers, name)
}

func (d *Device) PopMarker() {
	for e := gl.GetError(); e != gl.NO_ERROR; e = gl.GetError() {
		core.LogError("%s: gl error 0x%X", d.marker(), e)
	}
	if len(d.markers) > 0 {
		d.markers = d.markers[:len(d.markers)-1]
	}
}

func (d *Device) marker() string {
	if len(d.markers) == 0 {
		return "frame"
	}
	return d.markers[len(d.markers)-1]
}

func (d *Device) Present(syncInterval int) error {
	if syncInterval != d.swapInterval {
		d.surface.SetSwapInterval(syncInterval)
		d.swapInterval = syncInterval
	}
	d.surface.SwapBuffers()
	return nil
}

// Capture reads the back buffer into an image with the top row first.
func (d *Device) Capture() (image.Image, error) {
	w, h := d.back.Desc.Width, d.back.Desc.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("read back buffer: gl error 0x%X", e)
	}
	flipRows(img)
	return img, nil
}

func flipRows(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}

func (d *Device) Close() {
	for _, fbo := range d.fbos {
		gl.DeleteFramebuffers(1, &fbo)
	}
	for id := range d.textures {
		gl.DeleteTextures(1, &id)
	}
	for id, g := range d.buffers {
		if g.vao != 0 {
			gl.DeleteVertexArrays(1, &g.vao)
		}
		gl.DeleteBuffers(1, &id)
	}
	for _, p := range d.pipelines {
		gl.DeleteProgram(p.prog)
	}
	gl.DeleteVertexArrays(1, &d.fullscreenVAO)
	clear(d.fbos)
	clear(d.textures)
	clear(d.buffers)
	d.pipelines = nil
}

var _ renderer.Device = (*Device)(nil)
