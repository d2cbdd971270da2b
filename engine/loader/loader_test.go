package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// triangleDocument builds a one-triangle document facing +Z with UVs and uint16 indices.
func triangleDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 1}, {1, 1}, {0, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
			Indices:    gltf.Index(idx),
		}},
	}}
	return doc
}

func encodeGLB(t *testing.T, doc *gltf.Document) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func redPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func approx(a, b [3]float32) bool {
	for i := range a {
		if d := a[i] - b[i]; d > 1e-5 || d < -1e-5 {
			return false
		}
	}
	return true
}

func TestLoadReaderTriangle(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	asset, err := l.LoadReader("tri", bytes.NewReader(encodeGLB(t, triangleDocument())), "")
	if err != nil {
		t.Fatalf("LoadReader\nhave %v\nwant nil", err)
	}
	if asset.Name != "tri" {
		t.Fatalf("Name\nhave %q\nwant %q", asset.Name, "tri")
	}
	m := asset.Mesh
	if len(m.Vertices) != 3 || len(m.Indices) != 3 {
		t.Fatalf("mesh size\nhave %d vertices %d indices\nwant 3 and 3", len(m.Vertices), len(m.Indices))
	}
	v := m.Vertices[1]
	if v.Position != [3]float32{1, 0, 0} || v.TexCoords != [2]float32{1, 1} {
		t.Fatalf("vertex 1\nhave %v %v\nwant [1 0 0] [1 1]", v.Position, v.TexCoords)
	}
	for i, v := range m.Vertices {
		if !approx(v.Normal, [3]float32{0, 0, 1}) {
			t.Errorf("generated normal %d\nhave %v\nwant [0 0 1]", i, v.Normal)
		}
		if !approx(v.Tangent, [3]float32{1, 0, 0}) {
			t.Errorf("generated tangent %d\nhave %v\nwant [1 0 0]", i, v.Tangent)
		}
		if !approx(v.Bitangent, [3]float32{0, 1, 0}) {
			t.Errorf("generated bitangent %d\nhave %v\nwant [0 1 0]", i, v.Bitangent)
		}
	}
	if len(asset.Textures) != 0 {
		t.Fatalf("textures\nhave %d\nwant 0", len(asset.Textures))
	}

	again, err := l.LoadReader("tri", strings.NewReader("not read"), "")
	if err != nil || again != asset {
		t.Fatalf("cached LoadReader\nhave %p %v\nwant %p nil", again, err, asset)
	}
	if l.Get("tri") != asset || len(l.Assets()) != 1 {
		t.Fatal("Get/Assets: cached asset missing")
	}
}

func TestLoadReaderMergesPrimitives(t *testing.T) {
	doc := triangleDocument()
	prim := *doc.Meshes[0].Primitives[0]
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Primitives: []*gltf.Primitive{&prim}})

	asset, err := NewLoader(BackendTypeGLTF).LoadReader("two", bytes.NewReader(encodeGLB(t, doc)), "")
	if err != nil {
		t.Fatalf("LoadReader\nhave %v\nwant nil", err)
	}
	want := []uint32{0, 1, 2, 3, 4, 5}
	if len(asset.Mesh.Vertices) != 6 || !equalIndices(asset.Mesh.Indices, want) {
		t.Fatalf("merged mesh\nhave %d vertices indices %v\nwant 6 vertices indices %v", len(asset.Mesh.Vertices), asset.Mesh.Indices, want)
	}
}

func equalIndices(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoadReaderTangentHandedness(t *testing.T) {
	doc := triangleDocument()
	tan := modeler.WriteTangent(doc, [][4]float32{{1, 0, 0, -1}, {1, 0, 0, -1}, {1, 0, 0, -1}})
	doc.Meshes[0].Primitives[0].Attributes[gltf.TANGENT] = tan

	asset, err := NewLoader(BackendTypeGLTF).LoadReader("tan", bytes.NewReader(encodeGLB(t, doc)), "")
	if err != nil {
		t.Fatalf("LoadReader\nhave %v\nwant nil", err)
	}
	v := asset.Mesh.Vertices[0]
	if !approx(v.Tangent, [3]float32{1, 0, 0}) || !approx(v.Bitangent, [3]float32{0, -1, 0}) {
		t.Fatalf("tangent basis\nhave T=%v B=%v\nwant T=[1 0 0] B=[0 -1 0]", v.Tangent, v.Bitangent)
	}
}

func TestLoadReaderTextures(t *testing.T) {
	doc := triangleDocument()
	embedded, err := modeler.WriteImage(doc, "red", "image/png", bytes.NewReader(redPNG(t)))
	if err != nil {
		t.Fatal(err)
	}
	doc.Images = append(doc.Images, &gltf.Image{URI: "textures/normal.png"})
	doc.Samplers = []*gltf.Sampler{{MagFilter: gltf.MagNearest, WrapS: gltf.WrapClampToEdge}}
	doc.Textures = []*gltf.Texture{
		{Source: gltf.Index(embedded), Sampler: gltf.Index(0)},
		{Source: gltf.Index(uint32(len(doc.Images) - 1))},
	}
	doc.Materials = []*gltf.Material{{
		Name:                 "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}},
		NormalTexture:        &gltf.NormalTexture{Index: gltf.Index(1)},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)

	asset, err := NewLoader(BackendTypeGLTF).LoadReader("tex", bytes.NewReader(encodeGLB(t, doc)), "")
	if err != nil {
		t.Fatalf("LoadReader\nhave %v\nwant nil", err)
	}
	if _, ok := asset.Textures[material.SlotMetallicRoughness]; ok {
		t.Fatal("metallic-roughness slot: have texture, want none")
	}

	diffuse := asset.Textures[material.SlotDiffuse]
	if diffuse == nil {
		t.Fatal("diffuse slot: have nil, want texture")
	}
	data, err := diffuse.Decode()
	if err != nil {
		t.Fatalf("diffuse Decode\nhave %v\nwant nil", err)
	}
	if data.Width != 2 || data.Height != 2 || data.Pixels[0] != 255 || data.Pixels[1] != 0 {
		t.Fatalf("diffuse pixels\nhave %dx%d %v", data.Width, data.Height, data.Pixels[:4])
	}
	s := diffuse.SamplerData
	if s == nil || s.MagFilter != wgpu.FilterModeNearest || s.AddressModeU != wgpu.AddressModeClampToEdge || s.AddressModeV != wgpu.AddressModeRepeat {
		t.Fatalf("diffuse sampler\nhave %+v\nwant nearest mag, clamp U, repeat V", s)
	}

	normal := asset.Textures[material.SlotNormal]
	if normal == nil || normal.Path != filepath.Join("textures", "normal.png") || normal.Data != nil {
		t.Fatalf("normal texture\nhave %+v\nwant path textures/normal.png", normal)
	}
}

func TestLoadGLBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := os.WriteFile(path, encodeGLB(t, triangleDocument()), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF)
	asset, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load\nhave %v\nwant nil", err)
	}
	if asset.Name != "tri" || len(asset.Mesh.Indices) != 3 {
		t.Fatalf("asset\nhave %q with %d indices\nwant \"tri\" with 3", asset.Name, len(asset.Mesh.Indices))
	}
	if l.Get(path) != asset {
		t.Fatal("Get(path): asset not cached")
	}
}

// writeGLTF writes doc as JSON with buffer 0 either external (uri) or as a data URI.
func writeGLTF(t *testing.T, path string, doc *gltf.Document, uri string) {
	t.Helper()
	buf := doc.Buffers[0]
	if uri == "" {
		buf.URI = "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Data)
	} else {
		buf.URI = uri
		if err := os.WriteFile(filepath.Join(filepath.Dir(path), uri), buf.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadGLTFBuffers(t *testing.T) {
	dir := t.TempDir()
	for _, uri := range []string{"tri.bin", ""} {
		path := filepath.Join(dir, "tri"+uri+".gltf")
		writeGLTF(t, path, triangleDocument(), uri)
		asset, err := NewLoader(BackendTypeGLTF).Load(path)
		if err != nil {
			t.Fatalf("Load(%q buffer)\nhave %v\nwant nil", uri, err)
		}
		if have := asset.Mesh.Vertices[2].Position; have != [3]float32{0, 1, 0} {
			t.Fatalf("vertex 2\nhave %v\nwant [0 1 0]", have)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	if _, err := l.Load("model.obj"); err == nil {
		t.Fatal("Load(.obj): have nil, want error")
	}
	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Fatal("Load(missing): have nil, want error")
	}

	if _, err := l.LoadReader("old", strings.NewReader(`{"asset": {"version": "1.0"}}`), ""); err == nil {
		t.Fatal("version 1.0: have nil, want error")
	}

	noPos := triangleDocument()
	delete(noPos.Meshes[0].Primitives[0].Attributes, gltf.POSITION)
	if _, err := l.LoadReader("nopos", bytes.NewReader(encodeGLB(t, noPos)), ""); err == nil {
		t.Fatal("missing POSITION: have nil, want error")
	}

	empty := triangleDocument()
	empty.Meshes = nil
	if _, err := l.LoadReader("empty", bytes.NewReader(encodeGLB(t, empty)), ""); !errors.Is(err, errNoTriangles) {
		t.Fatalf("no meshes\nhave %v\nwant %v", err, errNoTriangles)
	}

	lines := triangleDocument()
	lines.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines
	if _, err := l.LoadReader("lines", bytes.NewReader(encodeGLB(t, lines)), ""); err == nil {
		t.Fatal("line primitive: have nil, want error")
	}

	if len(l.Assets()) != 0 {
		t.Fatalf("failed loads cached\nhave %d assets\nwant 0", len(l.Assets()))
	}
}

func TestWithAsset(t *testing.T) {
	a := &Asset{Name: "pre"}
	l := NewLoader(BackendTypeGLTF, WithAsset("scene/pre.glb", a))
	got, err := l.Load("scene/pre.glb")
	if err != nil || got != a {
		t.Fatalf("Load(cached)\nhave %p %v\nwant %p nil", got, err, a)
	}
}

func TestSamplerConversion(t *testing.T) {
	s := gltfSamplerToStagingData(&gltf.Sampler{MinFilter: gltf.MinNearestMipMapNearest, WrapT: gltf.WrapMirroredRepeat})
	if s.MinFilter != wgpu.FilterModeNearest || s.MipmapFilter != wgpu.MipmapFilterModeNearest {
		t.Fatalf("min filter\nhave %v/%v\nwant nearest/nearest", s.MinFilter, s.MipmapFilter)
	}
	if s.MagFilter != wgpu.FilterModeLinear || s.AddressModeV != wgpu.AddressModeMirrorRepeat {
		t.Fatalf("sampler\nhave %+v\nwant linear mag, mirror V", s)
	}
}

func TestExtractIndexRange(t *testing.T) {
	doc := triangleDocument()
	doc.Images = []*gltf.Image{{BufferView: gltf.Index(0)}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(3)}, {Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{
		{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}}},
		{NormalTexture: &gltf.NormalTexture{Index: gltf.Index(1)}},
		{NormalTexture: &gltf.NormalTexture{Index: gltf.Index(9)}},
	}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(1)
	p := &gltfParserImpl{document: doc}

	_, materialIndex, err := newGLTFMeshExtractor(p).ExtractMesh()
	if err != nil || materialIndex != 1 {
		t.Fatalf("ExtractMesh material\nhave %d %v\nwant 1 nil", materialIndex, err)
	}

	e := newGLTFMaterialExtractor(p)
	textures, err := e.ExtractTextures(materialIndex)
	if err != nil {
		t.Fatalf("ExtractTextures(1)\nhave %v\nwant nil", err)
	}
	normal := textures[material.SlotNormal]
	if normal == nil || len(normal.Data) != int(doc.BufferViews[0].ByteLength) {
		t.Fatalf("buffer view image\nhave %+v\nwant %d bytes", normal, doc.BufferViews[0].ByteLength)
	}

	for _, index := range []int{0, 2, 3} {
		if _, err := e.ExtractTextures(index); err == nil {
			t.Errorf("ExtractTextures(%d): have nil, want out of range error", index)
		}
	}

	doc.BufferViews[0].ByteLength = uint32(len(doc.Buffers[0].Data)) + 1
	if _, err := e.ExtractTextures(1); err == nil {
		t.Fatal("oversized buffer view: have nil, want error")
	}
}
