package config

import (
	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/loader"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/lit"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-lit/engine/scene"
)

// NewCamera builds an orbit camera from the camera section.
//
// Parameters:
//   - aspect: viewport width / height
//
// Returns:
//   - camera.Camera: the camera, placed by its controller
func (c CameraConfig) NewCamera(aspect float32) camera.Camera {
	ctrl := camera.NewOrbitController(
		camera.WithTarget(c.Target),
		camera.WithRadiusBounds(min(0.5, c.Radius), max(100, c.Radius)),
		camera.WithRadius(c.Radius),
		camera.WithAngles(common.Radians(c.Azimuth), common.Radians(c.Elevation)),
	)
	return camera.NewCamera(
		camera.WithFov(common.Radians(c.Fov)),
		camera.WithAspect(aspect),
		camera.WithClip(c.Near, c.Far),
		camera.WithController(ctrl),
	)
}

// NewLight builds the point light. A non-zero Orbit makes it circle +Y.
func (l LightConfig) NewLight() light.Light {
	opts := []light.LightBuilderOption{
		light.WithPosition(*l.Position),
		light.WithColor(*l.Color),
	}
	if l.Orbit != 0 {
		opts = append(opts, light.WithOrbit(l.Orbit))
	}
	return light.NewLight(opts...)
}

// NewMaterial builds the material. Textures are decoded later by Material.Load.
// A slot with no configured file takes its texture from fallback, typically the
// textures embedded in a loaded model.
//
// Parameters:
//   - pipelineKey: the pipeline the material is drawn with
//   - fallback: per-slot textures used when the slot's path is empty, may be nil
//
// Returns:
//   - material.Material: the material
func (m MaterialConfig) NewMaterial(pipelineKey string, fallback map[material.Slot]*common.ImportedTexture) material.Material {
	opts := []material.MaterialBuilderOption{
		material.WithName(m.Name),
		material.WithPipelineKey(pipelineKey),
	}
	sampler := m.Sampler()
	for slot, path := range map[material.Slot]string{
		material.SlotDiffuse:           m.Diffuse,
		material.SlotNormal:            m.Normal,
		material.SlotMetallicRoughness: m.MetallicRoughness,
	} {
		opts = append(opts, material.WithSampler(slot, sampler))
		switch {
		case path != "":
			opts = append(opts, material.WithTexture(slot, &common.ImportedTexture{
				Name: slot.String(),
				Path: path,
			}))
		case fallback[slot] != nil:
			opts = append(opts, material.WithTexture(slot, fallback[slot]))
		}
	}
	return material.NewMaterial(opts...)
}

// NewMesh builds the configured primitive. Kind gltf is handled by Load.
func (m MeshConfig) NewMesh() *model.Mesh {
	if m.Kind == MeshCube {
		return model.NewCubeMesh(m.Size)
	}
	return model.NewQuadMesh(m.Size)
}

// Load returns the mesh and, for a glTF model, the textures its first material carries.
//
// Parameters:
//   - l: the loader used for kind gltf
//
// Returns:
//   - string: the model name
//   - *model.Mesh: the geometry
//   - map[material.Slot]*common.ImportedTexture: embedded textures, nil for primitives
//   - error: a model import failure
func (m MeshConfig) Load(l loader.Loader) (string, *model.Mesh, map[material.Slot]*common.ImportedTexture, error) {
	if m.Kind != MeshGLTF {
		return m.Kind, m.NewMesh(), nil, nil
	}
	asset, err := l.Load(m.Path)
	if err != nil {
		return "", nil, nil, err
	}
	return asset.Name, asset.Mesh, asset.Textures, nil
}

// Instance converts one placement. Missing rotation means identity, missing scale means 1.
func (i InstanceConfig) Instance() model.Instance {
	inst := model.NewInstance(i.Position)
	if i.Rotation != nil && i.Rotation.Axis != ([3]float32{}) {
		inst.Rotation = common.QuatFromAxisAngle(i.Rotation.Axis, common.Radians(i.Rotation.Degrees))
	}
	if i.Scale != nil {
		inst.Scale = *i.Scale
	}
	if i.Spin != nil {
		inst.Spin = model.Spin{Axis: i.Spin.Axis, DegreesPerSecond: i.Spin.DegreesPerSecond}
	}
	return inst
}

// NewInstances converts every placement in file order.
func (c SceneConfig) NewInstances() []model.Instance {
	out := make([]model.Instance, len(c.Instances))
	for i, ic := range c.Instances {
		out[i] = ic.Instance()
	}
	return out
}

// NewScene builds the whole scene: camera, light, the material and one model holding every
// instance. With a renderer the lit pipeline must already be registered.
//
// Parameters:
//   - aspect: viewport width / height
//   - r: the renderer, or nil for a CPU-only scene
//   - options: scene options
//
// Returns:
//   - scene.Scene: the populated scene
//   - error: a texture, upload or GPU error
func (c SceneConfig) NewScene(aspect float32, r renderer.Renderer, options ...scene.SceneBuilderOption) (scene.Scene, error) {
	name, mesh, textures, err := c.Mesh.Load(loader.NewLoader(loader.BackendTypeGLTF))
	if err != nil {
		return nil, err
	}
	s, err := scene.NewScene(c.Window.Title, c.Camera.NewCamera(aspect), c.Light.NewLight(), r, options...)
	if err != nil {
		return nil, err
	}
	if err := s.AddMaterial(c.Material.NewMaterial(lit.PipelineKey, textures)); err != nil {
		s.Release()
		return nil, err
	}
	m := model.NewModel(mesh,
		model.WithName(name),
		model.WithMaterialName(c.Material.Name),
		model.WithPipelineKey(lit.PipelineKey),
		model.WithInstances(c.NewInstances()...),
	)
	if err := s.AddModel(m); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}
