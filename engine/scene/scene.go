// Package scene holds what is drawn each frame: a flat list of models, their materials,
// one camera and one point light.
package scene

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
	"github.com/Carmen-Shannon/oxy-lit/engine/raster"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/lit"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lit/engine/shading"
)

// errNoRenderer is returned by GPU operations on a scene built without a renderer.
var errNoRenderer = errors.New("scene has no renderer")

// markerMeshSize is the cube edge before the marker shader scales it down.
const markerMeshSize = 1

// Scene is the set of models drawn with one camera and one light.
//
// A scene built with a nil renderer is CPU only: it can be updated and turned into
// raster draw calls, and its GPU methods return an error.
type Scene interface {
	// Name returns the scene name.
	Name() string

	// Camera returns the scene camera.
	Camera() camera.Camera

	// Light returns the scene light.
	Light() light.Light

	// Models returns the models in draw order.
	Models() []model.Model

	// Material returns a registered material, or nil.
	Material(name string) material.Material

	// AddMaterial registers a material and decodes its textures. With a renderer the
	// textures, samplers and bind group are created on the GPU.
	//
	// Parameters:
	//   - mat: the material, looked up by Name
	//
	// Returns:
	//   - error: a decode or GPU error
	AddMaterial(mat material.Material) error

	// AddModel appends a model. Its material must already be registered. With a renderer
	// the mesh is uploaded.
	//
	// Parameters:
	//   - m: the model
	//
	// Returns:
	//   - error: an unknown material or an upload error
	AddModel(m model.Model) error

	// LightMarker reports whether a cube is drawn at the light.
	LightMarker() bool

	// SetLightMarker toggles the light marker. It has no effect unless the marker
	// pipeline was registered when the scene was built.
	SetLightMarker(enabled bool)

	// Update advances the light orbit and instance spins by dt seconds and refreshes the camera.
	Update(dt float32)

	// Prepare uploads the camera and light uniforms and every dirty instance buffer.
	// Call it once per frame before BeginFrame.
	Prepare() error

	// DrawCalls records one instanced draw per model, then the light marker.
	// Call it between BeginFrame and EndFrame.
	DrawCalls() error

	// RasterCalls converts the models into CPU rasterizer draw calls.
	//
	// Returns:
	//   - []raster.DrawCall: one call per model, in draw order
	//   - error: a singular instance or a texture error
	RasterCalls() ([]raster.DrawCall, error)

	// Release frees the GPU resources of every model, material, camera and light and
	// stops using the worker pool.
	Release()
}

type scene struct {
	mu sync.RWMutex

	name  string
	cam   camera.Camera
	light light.Light
	r     renderer.Renderer

	models    []model.Model
	materials map[string]material.Material

	marker         bool
	markerReady    bool
	markerProvider bind_group_provider.BindGroupProvider

	workers int
	pool    worker.DynamicWorkerPool

	writes     []bind_group_provider.BufferWrite
	bindGroups []bind_group_provider.BindGroupProvider
}

var _ Scene = &scene{}

// NewScene creates a scene. With a renderer, the lit pipeline (and the light marker
// pipeline, when the marker is enabled) must already be registered: the camera and
// light bind groups are created from their layouts here.
//
// Parameters:
//   - name: the scene name
//   - cam: the camera (must not be nil)
//   - l: the light (must not be nil)
//   - r: the renderer, or nil for a CPU-only scene
//   - options: functional options
//
// Returns:
//   - Scene: the scene
//   - error: a missing camera or light, or a GPU error
func NewScene(name string, cam camera.Camera, l light.Light, r renderer.Renderer, options ...SceneBuilderOption) (Scene, error) {
	if cam == nil || l == nil {
		return nil, fmt.Errorf("scene %s: camera and light are required", name)
	}
	s := &scene{
		name:      name,
		cam:       cam,
		light:     l,
		r:         r,
		materials: make(map[string]material.Material),
		workers:   max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.pool == nil {
		s.pool = worker.NewDynamicWorkerPool(s.workers, 256, time.Second)
	}

	if r == nil {
		return s, nil
	}
	if err := s.initShared(); err != nil {
		return nil, err
	}
	common.Logger().Info("scene ready", "name", name, "light_marker", s.marker)
	return s, nil
}

// initShared creates the camera and light bind groups from the first registered pipeline
// that declares them, and the marker mesh when the marker pipeline exists.
// Every pipeline sees the same layout for these groups, so one bind group serves all.
func (s *scene) initShared() error {
	shared := map[shader.AnnotationArg]bind_group_provider.BindGroupProvider{
		shader.AnnotationArgCamera: s.cam.BindGroupProvider(),
		shader.AnnotationArgLight:  s.light.BindGroupProvider(),
	}
	for _, p := range s.r.Pipelines() {
		for g, identity := range pipelineProviders(p) {
			provider, ok := shared[identity]
			if !ok || provider.BindGroup() != nil {
				continue
			}
			desc, err := s.r.BindGroupLayoutDescriptor(p.Key(), g)
			if err != nil {
				return err
			}
			if err := s.r.InitBindGroup(provider, desc, nil, nil); err != nil {
				return fmt.Errorf("scene %s: %w", s.name, err)
			}
		}
	}

	if s.r.Pipeline(lit.LightMarkerKey) == nil {
		s.marker = false
		return nil
	}
	cube := model.NewCubeMesh(markerMeshSize)
	s.markerProvider = bind_group_provider.NewBindGroupProvider(lit.LightMarkerKey)
	if err := s.r.InitMeshBuffers(s.markerProvider, cube.VertexData(), cube.IndexData(), len(cube.Indices)); err != nil {
		return fmt.Errorf("scene %s: light marker: %w", s.name, err)
	}
	s.markerReady = true
	return nil
}

// pipelineProviders maps each bind group of a pipeline to the identity of its owner,
// read from the vertex shader first, then the fragment shader.
func pipelineProviders(p pipeline.Pipeline) map[int]shader.AnnotationArg {
	out := make(map[int]shader.AnnotationArg)
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		sh := p.Shader(st)
		if sh == nil {
			continue
		}
		for g := range sh.BindGroupLayoutDescriptors() {
			if _, seen := out[g]; seen {
				continue
			}
			if identity, ok := sh.Provider(g); ok {
				out[g] = identity
			}
		}
	}
	return out
}

// bindGroupsFor resolves the providers of every group of p, indexed by group number.
func (s *scene) bindGroupsFor(p pipeline.Pipeline, mat material.Material) ([]bind_group_provider.BindGroupProvider, error) {
	identities := pipelineProviders(p)
	groups := s.bindGroups[:0]
	for g := 0; g < len(identities); g++ {
		identity, ok := identities[g]
		if !ok {
			return nil, fmt.Errorf("pipeline %s: bind group %d has no provider annotation", p.Key(), g)
		}
		var provider bind_group_provider.BindGroupProvider
		switch identity {
		case shader.AnnotationArgCamera:
			provider = s.cam.BindGroupProvider()
		case shader.AnnotationArgLight:
			provider = s.light.BindGroupProvider()
		case shader.AnnotationArgMaterial:
			if mat != nil {
				provider = mat.BindGroupProvider()
			}
		}
		if provider == nil {
			return nil, fmt.Errorf("pipeline %s: no %s provider for bind group %d", p.Key(), identity, g)
		}
		groups = append(groups, provider)
	}
	s.bindGroups = groups
	return groups, nil
}

func (s *scene) Name() string { return s.name }

func (s *scene) Camera() camera.Camera { return s.cam }

func (s *scene) Light() light.Light { return s.light }

func (s *scene) Models() []model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Model(nil), s.models...)
}

func (s *scene) Material(name string) material.Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.materials[name]
}

func (s *scene) AddMaterial(mat material.Material) error {
	if err := mat.Load(); err != nil {
		return err
	}
	if s.r != nil {
		if err := s.uploadMaterial(mat); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[mat.Name()] = mat
	return nil
}

func (s *scene) uploadMaterial(mat material.Material) error {
	p := s.r.Pipeline(mat.PipelineKey())
	if p == nil {
		return fmt.Errorf("material %s: %w: %s", mat.Name(), renderer.ErrPipelineNotFound, mat.PipelineKey())
	}
	group := -1
	for g, identity := range pipelineProviders(p) {
		if identity == shader.AnnotationArgMaterial {
			group = g
		}
	}
	if group < 0 {
		return fmt.Errorf("material %s: pipeline %s has no material group", mat.Name(), p.Key())
	}

	bgp := mat.BindGroupProvider()
	for _, slot := range []material.Slot{material.SlotDiffuse, material.SlotNormal, material.SlotMetallicRoughness} {
		if err := s.r.InitTextureView(bgp, slot.TextureBinding(), mat.Texture(slot)); err != nil {
			return fmt.Errorf("material %s: %w", mat.Name(), err)
		}
		if err := s.r.InitSampler(bgp, slot.SamplerBinding(), mat.Sampler(slot)); err != nil {
			return fmt.Errorf("material %s: %s sampler: %w", mat.Name(), slot, err)
		}
	}
	desc, err := s.r.BindGroupLayoutDescriptor(p.Key(), group)
	if err != nil {
		return err
	}
	return s.r.InitBindGroup(bgp, desc, nil, nil)
}

func (s *scene) AddModel(m model.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.materials[m.MaterialName()]; !ok {
		return fmt.Errorf("model %s: unknown material %q", m.Name(), m.MaterialName())
	}
	if s.r != nil {
		mesh := m.Mesh()
		if err := s.r.InitMeshBuffers(m.MeshProvider(), mesh.VertexData(), mesh.IndexData(), len(mesh.Indices)); err != nil {
			return fmt.Errorf("model %s: %w", m.Name(), err)
		}
	}
	s.models = append(s.models, m)
	return nil
}

func (s *scene) LightMarker() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marker
}

func (s *scene) SetLightMarker(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = enabled
}

func (s *scene) Update(dt float32) {
	s.light.Orbit(dt)
	s.mu.RLock()
	for _, m := range s.models {
		m.Update(dt)
	}
	s.mu.RUnlock()
	s.cam.Update()
}

func (s *scene) Prepare() error {
	if s.r == nil {
		return errNoRenderer
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	camUniform := s.cam.Uniform()
	lightUniform := s.light.Uniform()
	writes := append(s.writes[:0],
		bind_group_provider.BufferWrite{Provider: s.cam.BindGroupProvider(), Binding: 0, Data: camUniform.Marshal()},
		bind_group_provider.BufferWrite{Provider: s.light.BindGroupProvider(), Binding: 0, Data: lightUniform.Marshal()},
	)
	for _, m := range s.models {
		if !m.Dirty() {
			continue
		}
		data, err := m.InstanceBytes(s.pool)
		if err != nil {
			return err
		}
		m.MeshProvider().SetInstanceCount(m.InstanceCount())
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: m.MeshProvider(),
			Binding:  bind_group_provider.InstanceBinding,
			Data:     data,
		})
	}
	s.writes = writes
	return s.r.WriteBuffers(writes)
}

func (s *scene) DrawCalls() error {
	if s.r == nil {
		return errNoRenderer
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.models {
		count := m.MeshProvider().InstanceCount()
		if count == 0 {
			continue
		}
		p := s.r.Pipeline(m.PipelineKey())
		if p == nil {
			return fmt.Errorf("model %s: %w: %s", m.Name(), renderer.ErrPipelineNotFound, m.PipelineKey())
		}
		groups, err := s.bindGroupsFor(p, s.materials[m.MaterialName()])
		if err != nil {
			return fmt.Errorf("model %s: %w", m.Name(), err)
		}
		if err := s.r.DrawCall(p.Key(), m.MeshProvider(), uint32(count), groups); err != nil {
			return fmt.Errorf("scene %s: model %s: %w", s.name, m.Name(), err)
		}
	}

	if !s.marker || !s.markerReady {
		return nil
	}
	p := s.r.Pipeline(lit.LightMarkerKey)
	groups, err := s.bindGroupsFor(p, nil)
	if err != nil {
		return err
	}
	return s.r.DrawCall(lit.LightMarkerKey, s.markerProvider, 1, groups)
}

func (s *scene) RasterCalls() ([]raster.DrawCall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samplers := make(map[string]shading.MaterialSamplers, len(s.materials))
	calls := make([]raster.DrawCall, 0, len(s.models))
	for _, m := range s.models {
		ms, ok := samplers[m.MaterialName()]
		if !ok {
			var err error
			ms, err = materialSamplers(s.materials[m.MaterialName()])
			if err != nil {
				return nil, err
			}
			samplers[m.MaterialName()] = ms
		}

		insts := m.Instances()
		gpu := make([]model.GPUInstance, len(insts))
		for i, inst := range insts {
			g, err := inst.ToGPU()
			if err != nil {
				return nil, fmt.Errorf("model %s: instance %d: %w", m.Name(), i, err)
			}
			gpu[i] = g
		}
		calls = append(calls, raster.DrawCall{
			Mesh:           m.Mesh(),
			Instances:      gpu,
			Material:       ms,
			BoundingRadius: m.BoundingRadius(),
		})
	}
	return calls, nil
}

// materialSamplers wraps a loaded material's textures for the CPU shading stage.
func materialSamplers(mat material.Material) (shading.MaterialSamplers, error) {
	var out shading.MaterialSamplers
	for slot, dst := range map[material.Slot]*shading.Sampler{
		material.SlotDiffuse:           &out.Diffuse,
		material.SlotNormal:            &out.Normal,
		material.SlotMetallicRoughness: &out.MetallicRoughness,
	} {
		tex, err := shading.NewTexture(mat.Texture(slot), mat.Sampler(slot))
		if err != nil {
			return out, fmt.Errorf("material %s: %s: %w", mat.Name(), slot, err)
		}
		*dst = tex
	}
	return out, nil
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.models {
		m.MeshProvider().Release()
	}
	for _, mat := range s.materials {
		mat.BindGroupProvider().Release()
	}
	if s.markerProvider != nil {
		s.markerProvider.Release()
	}
	s.cam.BindGroupProvider().Release()
	s.light.BindGroupProvider().Release()
	s.models = nil
}
