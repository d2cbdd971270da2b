// Package config reads the YAML scene file shared by the viewer and the offline renderer.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/cogentcore/webgpu/wgpu"
	"gopkg.in/yaml.v3"
)

// ErrNoInstances is returned when a scene places no copies of its mesh.
var ErrNoInstances = errors.New("scene has no instances")

// Mesh kinds.
const (
	MeshQuad = "quad"
	MeshCube = "cube"
	// MeshGLTF loads Path as a static glTF or GLB model.
	MeshGLTF = "gltf"
)

// SceneConfig is the root of a scene file.
type SceneConfig struct {
	Window    WindowConfig     `yaml:"window,omitempty"`
	Camera    CameraConfig     `yaml:"camera,omitempty"`
	Light     LightConfig      `yaml:"light,omitempty"`
	Material  MaterialConfig   `yaml:"material,omitempty"`
	Mesh      MeshConfig       `yaml:"mesh,omitempty"`
	Instances []InstanceConfig `yaml:"instances"`
	Render    RenderConfig     `yaml:"render,omitempty"`
}

type WindowConfig struct {
	Title  string `yaml:"title,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	// VSync defaults to on.
	VSync *bool `yaml:"vsync,omitempty"`
	// MSAA is 1 (off) or 4.
	MSAA int `yaml:"msaa,omitempty"`
}

// CameraConfig places an orbit camera. Angles are in degrees.
type CameraConfig struct {
	Target    [3]float32 `yaml:"target,omitempty,flow"`
	Radius    float32    `yaml:"radius,omitempty"`
	Azimuth   float32    `yaml:"azimuth,omitempty"`
	Elevation float32    `yaml:"elevation,omitempty"`
	Fov       float32    `yaml:"fov,omitempty"`
	Near      float32    `yaml:"near,omitempty"`
	Far       float32    `yaml:"far,omitempty"`
}

type LightConfig struct {
	Position *[3]float32 `yaml:"position,omitempty,flow"`
	Color    *[3]float32 `yaml:"color,omitempty,flow"`
	// Orbit is the orbit rate in degrees per second. Zero keeps the light still.
	Orbit float32 `yaml:"orbit,omitempty"`
}

// MaterialConfig names the texture files of the material. Relative paths resolve
// against the scene file's directory. Empty paths use 1x1 defaults.
type MaterialConfig struct {
	Name              string `yaml:"name,omitempty"`
	Diffuse           string `yaml:"diffuse,omitempty"`
	Normal            string `yaml:"normal,omitempty"`
	MetallicRoughness string `yaml:"metallic_roughness,omitempty"`
	// AddressMode is repeat, clamp or mirror.
	AddressMode string `yaml:"address_mode,omitempty"`
	// Filter is linear or nearest.
	Filter string `yaml:"filter,omitempty"`
}

// MeshConfig picks the geometry. Size scales the quad and cube; Path is the model file
// for kind gltf, relative to the scene file.
type MeshConfig struct {
	Kind string  `yaml:"kind,omitempty"`
	Size float32 `yaml:"size,omitempty"`
	Path string  `yaml:"path,omitempty"`
}

// RotationConfig is an axis-angle rotation in degrees.
type RotationConfig struct {
	Axis    [3]float32 `yaml:"axis,flow"`
	Degrees float32    `yaml:"degrees"`
}

type SpinConfig struct {
	Axis             [3]float32 `yaml:"axis,flow"`
	DegreesPerSecond float32    `yaml:"degrees_per_second"`
}

type InstanceConfig struct {
	Position [3]float32      `yaml:"position,flow"`
	Rotation *RotationConfig `yaml:"rotation,omitempty"`
	Scale    *[3]float32     `yaml:"scale,omitempty,flow"`
	Spin     *SpinConfig     `yaml:"spin,omitempty"`
}

// RenderConfig drives the offline CPU renderer.
type RenderConfig struct {
	Width    int `yaml:"width,omitempty"`
	Height   int `yaml:"height,omitempty"`
	Workers  int `yaml:"workers,omitempty"`
	TileSize int `yaml:"tile_size,omitempty"`
	// SRGB encodes the output for display. Defaults to on.
	SRGB *bool `yaml:"srgb,omitempty"`
}

// Load reads, defaults and validates a scene file.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - SceneConfig: the scene with defaults applied and texture and model paths made absolute
//   - error: read, parse or validation failure
func Load(path string) (SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	cfg.Material.resolve(dir)
	if cfg.Mesh.Path != "" && !filepath.IsAbs(cfg.Mesh.Path) {
		cfg.Mesh.Path = filepath.Join(dir, cfg.Mesh.Path)
	}
	return cfg, nil
}

// Parse decodes a scene from YAML bytes, then applies defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (SceneConfig, error) {
	var cfg SceneConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return SceneConfig{}, fmt.Errorf("parse scene: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return SceneConfig{}, err
	}
	return cfg, nil
}

// Default returns the built-in demo scene: one untextured quad lit by a white light.
func Default() SceneConfig {
	cfg := SceneConfig{
		Instances: []InstanceConfig{{}},
	}
	cfg.normalize()
	return cfg
}

func (c *SceneConfig) normalize() {
	w := &c.Window
	if w.Title == "" {
		w.Title = "oxy-lit"
	}
	if w.Width == 0 {
		w.Width = 1280
	}
	if w.Height == 0 {
		w.Height = 720
	}
	if w.VSync == nil {
		w.VSync = ptr(true)
	}
	if w.MSAA == 0 {
		w.MSAA = 4
	}

	cam := &c.Camera
	if cam.Radius == 0 {
		cam.Radius = 3
	}
	if cam.Fov == 0 {
		cam.Fov = 45
	}
	if cam.Near == 0 {
		cam.Near = 0.1
	}
	if cam.Far == 0 {
		cam.Far = 100
	}

	l := &c.Light
	if l.Position == nil {
		l.Position = &[3]float32{2, 2, 2}
	}
	if l.Color == nil {
		l.Color = &[3]float32{1, 1, 1}
	}

	m := &c.Material
	if m.Name == "" {
		m.Name = "material"
	}
	if m.AddressMode == "" {
		m.AddressMode = "repeat"
	}
	if m.Filter == "" {
		m.Filter = "linear"
	}

	if c.Mesh.Kind == "" {
		c.Mesh.Kind = MeshQuad
	}
	if c.Mesh.Size == 0 {
		c.Mesh.Size = 1
	}

	r := &c.Render
	if r.Width == 0 {
		r.Width = w.Width
	}
	if r.Height == 0 {
		r.Height = w.Height
	}
	if r.TileSize == 0 {
		r.TileSize = 64
	}
	if r.SRGB == nil {
		r.SRGB = ptr(true)
	}
}

func (c *SceneConfig) validate() error {
	if len(c.Instances) == 0 {
		return ErrNoInstances
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("window: negative size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.MSAA != 1 && c.Window.MSAA != 4 {
		return fmt.Errorf("window: msaa must be 1 or 4, have %d", c.Window.MSAA)
	}
	if c.Camera.Radius < 0 {
		return fmt.Errorf("camera: negative radius %v", c.Camera.Radius)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return fmt.Errorf("camera: fov %v outside (0, 180)", c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera: invalid clip range near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	switch c.Mesh.Kind {
	case MeshQuad, MeshCube:
	case MeshGLTF:
		if c.Mesh.Path == "" {
			return errors.New("mesh: kind gltf needs a path")
		}
	default:
		return fmt.Errorf("mesh: unknown kind %q", c.Mesh.Kind)
	}
	if c.Mesh.Size < 0 {
		return fmt.Errorf("mesh: negative size %v", c.Mesh.Size)
	}
	if _, ok := addressModes[c.Material.AddressMode]; !ok {
		return fmt.Errorf("material: unknown address mode %q", c.Material.AddressMode)
	}
	if _, ok := filterModes[c.Material.Filter]; !ok {
		return fmt.Errorf("material: unknown filter %q", c.Material.Filter)
	}
	for i, inst := range c.Instances {
		if inst.Scale != nil && (inst.Scale[0] == 0 || inst.Scale[1] == 0 || inst.Scale[2] == 0) {
			return fmt.Errorf("instance %d: zero scale component %v", i, *inst.Scale)
		}
	}
	r := c.Render
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("render: invalid size %dx%d", r.Width, r.Height)
	}
	if r.Workers < 0 {
		return fmt.Errorf("render: negative worker count %d", r.Workers)
	}
	if r.TileSize <= 0 {
		return fmt.Errorf("render: invalid tile size %d", r.TileSize)
	}
	return nil
}

func (m *MaterialConfig) resolve(dir string) {
	for _, p := range []*string{&m.Diffuse, &m.Normal, &m.MetallicRoughness} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

var addressModes = map[string]wgpu.AddressMode{
	"repeat": wgpu.AddressModeRepeat,
	"clamp":  wgpu.AddressModeClampToEdge,
	"mirror": wgpu.AddressModeMirrorRepeat,
}

var filterModes = map[string]struct {
	filter wgpu.FilterMode
	mipmap wgpu.MipmapFilterMode
}{
	"linear":  {wgpu.FilterModeLinear, wgpu.MipmapFilterModeLinear},
	"nearest": {wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest},
}

// Sampler returns the sampler configuration shared by all material slots.
func (m MaterialConfig) Sampler() common.SamplerStagingData {
	mode := addressModes[m.AddressMode]
	f := filterModes[m.Filter]
	return common.SamplerStagingData{
		AddressModeU:  mode,
		AddressModeV:  mode,
		AddressModeW:  mode,
		MagFilter:     f.filter,
		MinFilter:     f.filter,
		MipmapFilter:  f.mipmap,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func ptr[T any](v T) *T { return &v }
