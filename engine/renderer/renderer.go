package renderer

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrPipelineNotFound is returned when a draw or layout lookup names an unregistered pipeline.
var ErrPipelineNotFound = errors.New("pipeline not found")

// Surface is the window the renderer presents to.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	layouts       map[string]map[int]wgpu.BindGroupLayoutDescriptor

	backendType RendererBackendType
	backend     RendererBackend

	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           [4]float64
}

// Renderer is the high-level drawing API. It owns the GPU device, creates GPU resources for
// bind group providers and records one render pass per frame:
//
//	BeginFrame -> DrawCall... -> EndFrame -> Present
//
// Buffer writes staged with WriteBuffers land before the next submitted pass.
type Renderer interface {
	// Pipeline returns a registered pipeline, or nil.
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the registered pipelines keyed by pipeline key.
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU pipeline of each description and caches it by key.
	// Keys already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the pipeline descriptions
	//
	// Returns:
	//   - error: the first validation or creation failure
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// BindGroupLayoutDescriptor returns the merged vertex/fragment layout of one group of a
	// registered pipeline. Providers pass it to InitBindGroup.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout
	//   - error: ErrPipelineNotFound, or an error when the pipeline declares nothing in the group
	BindGroupLayoutDescriptor(pipelineKey string, group int) (wgpu.BindGroupLayoutDescriptor, error)

	// Resize reconfigures the surface and recreates the MSAA and depth targets.
	Resize(width, height int) error

	// SetPresentMode changes the present mode. Takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers uploads vertex and index data and stores the buffers on the provider.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the provider's buffers and bind group for a layout. Textures and
	// samplers must already exist on the provider (InitTextureView, InitSampler).
	//
	// Parameters:
	//   - provider: receives the buffers and the bind group
	//   - descriptor: the layout, usually from BindGroupLayoutDescriptor
	//   - bufferUsageOverrides: extra usage flags per binding (nil safe)
	//   - bufferSizeOverrides: buffer sizes replacing MinBindingSize per binding (nil safe)
	//
	// Returns:
	//   - error: a missing texture/sampler or a GPU creation failure
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads RGBA pixels. Linear data is stored as RGBA8Unorm, color as
	// RGBA8UnormSrgb. Empty or mis-sized pixel data is rejected.
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler. Zero fields fall back to repeat addressing and linear filtering.
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues buffer writes. A write to bind_group_provider.InstanceBinding
	// targets the provider's instance buffer, which grows as needed.
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	BeginFrame() error

	// DrawCall records one indexed, instanced draw.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline to draw with
	//   - meshProvider: holds the vertex/index buffers, plus the instance buffer when the
	//     pipeline reads per-instance attributes
	//   - instanceCount: instances to draw
	//   - bindGroups: providers indexed by bind group number
	//
	// Returns:
	//   - error: ErrPipelineNotFound, or a draw outside BeginFrame/EndFrame
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the pass and submits the command buffer.
	EndFrame() error

	// Present displays the submitted frame and releases the swapchain texture.
	Present()

	// Release frees the device, surface and frame targets.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer presenting to surface.
//
// Parameters:
//   - backendType: the graphics backend
//   - surface: the window to present to
//   - options: builder options
//
// Returns:
//   - Renderer: the renderer
//   - error: adapter, device or surface setup failure
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		pipelineCache: make(map[string]pipeline.Pipeline),
		layouts:       make(map[string]map[int]wgpu.BindGroupLayoutDescriptor),
		backendType:   backendType,
		clearColor:    [4]float64{0, 0, 0, 1},
	}
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.clearColor)
	default:
		return nil, fmt.Errorf("renderer: unknown backend type %d", backendType)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if err := r.backend.ConfigureSurface(surface.Width(), surface.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	common.Logger().Info("renderer ready", "msaa", uint32(msaa), "width", surface.Width(), "height", surface.Height())
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pipelineCache)
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.Key()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := p.Validate(); err != nil {
			return err
		}
		layouts := PipelineLayoutDescriptors(p)
		if err := r.backend.RegisterRenderPipeline(p, layouts); err != nil {
			return fmt.Errorf("register pipeline %s: %w", key, err)
		}
		r.pipelineCache[key] = p
		r.layouts[key] = layouts
	}
	return nil
}

func (r *renderer) BindGroupLayoutDescriptor(pipelineKey string, group int) (wgpu.BindGroupLayoutDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	layouts, ok := r.layouts[pipelineKey]
	if !ok {
		return wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("%w: %s", ErrPipelineNotFound, pipelineKey)
	}
	desc, ok := layouts[group]
	if !ok {
		return wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("pipeline %s declares no bind group %d", pipelineKey, group)
	}
	return desc, nil
}

func (r *renderer) Resize(width, height int) error {
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	if err := stagingData.Validate(); err != nil {
		return fmt.Errorf("%s texture %d: %w", provider.Label(), binding, err)
	}
	return r.backend.InitTextureView(provider, binding, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, binding, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrPipelineNotFound, pipelineKey)
	}
	return r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}
