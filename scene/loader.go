package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"deferred-renderer/core"
	"deferred-renderer/math"
)

// LoadScene reads every mesh of a glTF (.gltf, .glb) or Wavefront (.obj)
// file under basePath. glTF node transforms are baked into the vertices,
// then all positions are recentred on the bounding box and divided by its
// largest extent. flipNormals negates the normals.
func LoadScene(basePath, filename string, flipNormals bool) ([]core.MeshData, error) {
	path := filepath.Join(basePath, filename)

	var meshes []core.MeshData
	var err error
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		meshes, err = loadOBJ(path, flipNormals)
	} else {
		meshes, err = loadGLTF(basePath, path, flipNormals)
	}
	if err != nil {
		return nil, err
	}

	normalizeMeshes(meshes)
	core.LogInfo("loaded %d meshes from %s", len(meshes), path)
	return meshes, nil
}

func loadGLTF(basePath, path string, flipNormals bool) ([]core.MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w: %w", path, core.ErrAssetRead, err)
	}

	l := &sceneLoader{doc: doc, basePath: basePath, flipNormals: flipNormals}
	for _, root := range rootNodes(doc) {
		l.processNode(root, math.Mat4Identity())
	}
	if len(l.meshes) == 0 {
		return nil, fmt.Errorf("gltf %q has no triangle meshes: %w", path, core.ErrAssetRead)
	}
	return l.meshes, nil
}

type sceneLoader struct {
	doc         *gltf.Document
	basePath    string
	flipNormals bool
	meshes      []core.MeshData
}

func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	// No default scene: every parentless node is a root.
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (l *sceneLoader) processNode(idx int, parent math.Mat4) {
	if idx < 0 || idx >= len(l.doc.Nodes) {
		return
	}
	node := l.doc.Nodes[idx]
	world := nodeMatrix(node).Mul(parent)

	if node.Mesh != nil && *node.Mesh < len(l.doc.Meshes) {
		gm := l.doc.Meshes[*node.Mesh]
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			data, err := l.readPrimitive(prim, world)
			if err != nil {
				core.LogWarn("gltf mesh %q prim %d: %v", gm.Name, pi, err)
				continue
			}
			l.meshes = append(l.meshes, data)
		}
	}
	for _, c := range node.Children {
		l.processNode(c, world)
	}
}

// nodeMatrix returns the node's local transform in row-vector form. glTF
// stores column-major matrices for column vectors, so reading the array
// row by row yields the row-vector matrix directly.
func nodeMatrix(n *gltf.Node) math.Mat4 {
	var zero [16]float64
	if n.Matrix != zero && !isIdentity(n.Matrix) {
		var m math.Mat4
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				m[i][j] = float32(n.Matrix[i*4+j])
			}
		}
		return m
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	rot := math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	return math.Mat4Scale(math.NewVec3(float32(s[0]), float32(s[1]), float32(s[2]))).
		Mul(rot.ToMat4()).
		Mul(math.Mat4Translation(math.NewVec3(float32(t[0]), float32(t[1]), float32(t[2]))))
}

func isIdentity(m [16]float64) bool {
	for i := 0; i < 16; i++ {
		want := 0.0
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			return false
		}
	}
	return true
}

func (l *sceneLoader) readPrimitive(prim *gltf.Primitive, world math.Mat4) (core.MeshData, error) {
	var data core.MeshData

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return data, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(l.doc, l.doc.Accessors[posIdx], nil)
	if err != nil {
		return data, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(l.doc, l.doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(l.doc, l.doc.Accessors[idx], nil)
	}

	normalWorld := world.WithTranslation(math.Vec3Zero).Inverse().Transpose()
	data.Vertices = make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.NewVec3(p[0], p[1], p[2]).TransformCoord(world),
			Normal:   math.Vec3Up,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.NewVec3(n[0], n[1], n[2]).TransformNormal(normalWorld).Normalize()
		}
		if l.flipNormals {
			v.Normal = v.Normal.Negate()
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		data.Vertices[i] = v
	}

	if prim.Indices != nil {
		data.Indices, err = modeler.ReadIndices(l.doc, l.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return data, fmt.Errorf("indices: %w", err)
		}
	} else {
		data.Indices = make([]uint32, len(data.Vertices))
		for i := range data.Indices {
			data.Indices[i] = uint32(i)
		}
	}

	if prim.Material != nil && *prim.Material < len(l.doc.Materials) {
		l.readMaterial(l.doc.Materials[*prim.Material], &data)
	}
	ComputeTangents(&data)
	return data, nil
}

func (l *sceneLoader) readMaterial(mat *gltf.Material, data *core.MeshData) {
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			data.AlbedoTexture = l.texturePath(pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			// glTF packs roughness in G and metallic in B of one image.
			p := l.texturePath(pbr.MetallicRoughnessTexture.Index)
			data.MetallicTexture = p
			data.RoughnessTexture = p
		}
	}
	if mat.NormalTexture != nil && mat.NormalTexture.Index != nil {
		data.NormalTexture = l.texturePath(*mat.NormalTexture.Index)
	}
	if mat.OcclusionTexture != nil && mat.OcclusionTexture.Index != nil {
		data.AOTexture = l.texturePath(*mat.OcclusionTexture.Index)
	}
	if mat.EmissiveTexture != nil {
		data.EmissiveTexture = l.texturePath(mat.EmissiveTexture.Index)
	}
}

// texturePath resolves a texture index to a file next to the model.
// Embedded images have no path and are skipped.
func (l *sceneLoader) texturePath(texIdx int) string {
	if texIdx < 0 || texIdx >= len(l.doc.Textures) {
		return ""
	}
	src := l.doc.Textures[texIdx].Source
	if src == nil || *src >= len(l.doc.Images) {
		return ""
	}
	img := l.doc.Images[*src]
	if img.URI == "" || img.IsEmbeddedResource() {
		core.LogDebug("gltf image %d is embedded, skipped", *src)
		return ""
	}
	return filepath.Join(l.basePath, img.URI)
}

// normalizeMeshes recentres all positions on their common bounding box and
// scales the largest extent to 1.
func normalizeMeshes(meshes []core.MeshData) {
	vmin := math.Splat3(1000)
	vmax := math.Splat3(-1000)
	for _, m := range meshes {
		if len(m.Vertices) == 0 {
			continue
		}
		lo, hi := aabb(m.Vertices)
		vmin = math.NewVec3(min(vmin.X, lo.X), min(vmin.Y, lo.Y), min(vmin.Z, lo.Z))
		vmax = math.NewVec3(max(vmax.X, hi.X), max(vmax.Y, hi.Y), max(vmax.Z, hi.Z))
	}
	d := vmax.Sub(vmin)
	dl := max(d.X, d.Y, d.Z)
	if dl <= 0 {
		return
	}
	center := vmin.Add(vmax).Mul(0.5)
	for _, m := range meshes {
		for i := range m.Vertices {
			m.Vertices[i].Position = m.Vertices[i].Position.Sub(center).Mul(1 / dl)
		}
	}
}
