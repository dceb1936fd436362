package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"deferred-renderer/core"
	"deferred-renderer/math"
)

// objFace is one triangle; indices are 0-based, -1 when absent.
type objFace struct {
	v, vt, vn [3]int
}

type objGroup struct {
	name     string
	material string
	faces    []objFace
}

// objMaterial holds the texture maps of one MTL entry.
type objMaterial struct {
	albedo, normal, emissive, height, ao, roughness, metallic string
}

// loadOBJ reads a Wavefront file into one MeshData per group. Polygons are
// fan-triangulated and missing normals are generated per vertex.
func loadOBJ(path string, flipNormals bool) ([]core.MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obj open %q: %w: %w", path, core.ErrAssetRead, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var positions, normals []math.Vec3
	var uvs []math.Vec2
	materials := map[string]objMaterial{}

	var groups []objGroup
	cur := &objGroup{name: "default"}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) >= 4 {
				positions = append(positions, parseVec3(fields[1:4]))
			}
		case "vn":
			if len(fields) >= 4 {
				normals = append(normals, parseVec3(fields[1:4]))
			}
		case "vt":
			if len(fields) >= 3 {
				u, _ := strconv.ParseFloat(fields[1], 32)
				v, _ := strconv.ParseFloat(fields[2], 32)
				// OBJ puts v=0 at the bottom of the image.
				uvs = append(uvs, math.NewVec2(float32(u), 1-float32(v)))
			}
		case "o", "g":
			if len(cur.faces) > 0 {
				groups = append(groups, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objGroup{name: name, material: cur.material}
		case "usemtl":
			if len(fields) > 1 {
				cur.material = fields[1]
			}
		case "mtllib":
			if len(fields) > 1 {
				mtl, err := loadMTL(filepath.Join(dir, fields[1]), dir)
				if err != nil {
					core.LogWarn("obj %s: %v", path, err)
				}
				for k, v := range mtl {
					materials[k] = v
				}
			}
		case "f":
			if len(fields) < 4 {
				continue
			}
			var refs [][3]int
			for _, tok := range fields[1:] {
				refs = append(refs, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			for i := 1; i+1 < len(refs); i++ {
				a, b, c := refs[0], refs[i], refs[i+1]
				cur.faces = append(cur.faces, objFace{
					v:  [3]int{a[0], b[0], c[0]},
					vt: [3]int{a[1], b[1], c[1]},
					vn: [3]int{a[2], b[2], c[2]},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj read %q: %w: %w", path, core.ErrAssetRead, err)
	}
	if len(cur.faces) > 0 {
		groups = append(groups, *cur)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("obj %q has no faces: %w", path, core.ErrAssetRead)
	}

	meshes := make([]core.MeshData, 0, len(groups))
	for _, g := range groups {
		data := buildOBJMesh(g.faces, positions, normals, uvs, flipNormals)
		if m, ok := materials[g.material]; ok {
			data.AlbedoTexture = m.albedo
			data.NormalTexture = m.normal
			data.EmissiveTexture = m.emissive
			data.HeightTexture = m.height
			data.AOTexture = m.ao
			data.RoughnessTexture = m.roughness
			data.MetallicTexture = m.metallic
		}
		ComputeTangents(&data)
		meshes = append(meshes, data)
	}
	return meshes, nil
}

func parseVec3(fields []string) math.Vec3 {
	var c [3]float32
	for i, s := range fields {
		v, _ := strconv.ParseFloat(s, 32)
		c[i] = float32(v)
	}
	return math.NewVec3(c[0], c[1], c[2])
}

// parseFaceVertex reads "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices
// count back from the end of the pools read so far.
func parseFaceVertex(tok string, nv, nvt, nvn int) [3]int {
	res := [3]int{-1, -1, -1}
	pools := [3]int{nv, nvt, nvn}
	for i, s := range strings.SplitN(tok, "/", 3) {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		if n > 0 {
			res[i] = n - 1
		} else if n < 0 {
			res[i] = pools[i] + n
		}
	}
	return res
}

// buildOBJMesh deduplicates the position/uv/normal triples into an indexed
// mesh.
func buildOBJMesh(faces []objFace, positions, normals []math.Vec3, uvs []math.Vec2, flip bool) core.MeshData {
	var data core.MeshData
	seen := map[[3]int]uint32{}
	hasNormals := len(normals) > 0

	for _, face := range faces {
		for c := range 3 {
			k := [3]int{face.v[c], face.vt[c], face.vn[c]}
			if idx, ok := seen[k]; ok {
				data.Indices = append(data.Indices, idx)
				continue
			}
			v := core.Vertex{Normal: math.Vec3Up}
			if k[0] >= 0 && k[0] < len(positions) {
				v.Position = positions[k[0]]
			}
			if k[1] >= 0 && k[1] < len(uvs) {
				v.UV = uvs[k[1]]
			}
			if k[2] >= 0 && k[2] < len(normals) {
				v.Normal = normals[k[2]].Normalize()
			}
			idx := uint32(len(data.Vertices))
			data.Vertices = append(data.Vertices, v)
			seen[k] = idx
			data.Indices = append(data.Indices, idx)
		}
	}

	if !hasNormals {
		generateNormals(data.Vertices, data.Indices)
	}
	if flip {
		for i := range data.Vertices {
			data.Vertices[i].Normal = data.Vertices[i].Normal.Negate()
		}
	}
	return data
}

// generateNormals accumulates area-weighted face normals per vertex.
func generateNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]math.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].LengthSqr() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// loadMTL collects the texture maps of every material in an MTL file.
// Paths are resolved against dir.
func loadMTL(path, dir string) (map[string]objMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mtl open %q: %w", path, err)
	}
	defer f.Close()

	mats := map[string]objMaterial{}
	name := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			name = fields[1]
			mats[name] = objMaterial{}
			continue
		}
		if name == "" {
			continue
		}
		// Options such as -bm come before the file name.
		tex := filepath.Join(dir, fields[len(fields)-1])
		m := mats[name]
		switch strings.ToLower(fields[0]) {
		case "map_kd":
			m.albedo = tex
		case "map_bump", "bump", "norm", "map_kn":
			m.normal = tex
		case "map_ke":
			m.emissive = tex
		case "disp":
			m.height = tex
		case "map_ao":
			m.ao = tex
		case "map_pr":
			m.roughness = tex
		case "map_pm":
			m.metallic = tex
		}
		mats[name] = m
	}
	return mats, scanner.Err()
}
