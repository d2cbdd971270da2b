package model

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/bind_group_provider"
)

// instancesPerTask is the number of instances packed by one worker task.
const instancesPerTask = 256

// model is the implementation of the Model interface.
type model struct {
	mu           sync.RWMutex
	name         string
	mesh         *Mesh
	materialName string
	pipelineKey  string
	instances    []Instance
	meshProvider bind_group_provider.BindGroupProvider
	radius       float32
	dirty        bool
}

// Model is a mesh drawn once per instance with a single material.
// Instance transforms live on the host and are packed into GPUInstance records
// whenever they change.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Mesh retrieves the object-space geometry.
	//
	// Returns:
	//   - *Mesh: the mesh
	Mesh() *Mesh

	// MaterialName retrieves the name of the material this model is drawn with.
	//
	// Returns:
	//   - string: the material name
	MaterialName() string

	// PipelineKey retrieves the key of the render pipeline this model is drawn with.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// MeshProvider retrieves the BindGroupProvider holding the vertex, index and instance buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// BoundingRadius returns the mesh bounding sphere radius in object space.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// AddInstance appends an instance and marks the instance buffer dirty.
	//
	// Parameters:
	//   - inst: the instance to add
	//
	// Returns:
	//   - int: the index of the new instance
	AddInstance(inst Instance) int

	// SetInstance replaces the instance at index and marks the instance buffer dirty.
	//
	// Parameters:
	//   - index: the instance index
	//   - inst: the replacement instance
	//
	// Returns:
	//   - error: an error if index is out of range
	SetInstance(index int, inst Instance) error

	// Instances returns a copy of the current instance list.
	//
	// Returns:
	//   - []Instance: the instances
	Instances() []Instance

	// InstanceCount returns the number of instances.
	InstanceCount() int

	// Update advances every spinning instance by dt seconds.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Dirty reports whether instances changed since the last successful InstanceBytes.
	Dirty() bool

	// InstanceBytes packs all instances into GPUInstance records, one worker task per chunk.
	// When pool is nil the records are packed on the calling goroutine.
	// The dirty flag is cleared on success.
	//
	// Parameters:
	//   - pool: the worker pool to spread packing across, or nil
	//
	// Returns:
	//   - []byte: len(instances)*GPUInstanceSize bytes
	//   - error: the first instance error, wrapped with its index
	InstanceBytes(pool worker.DynamicWorkerPool) ([]byte, error)
}

var _ Model = &model{}

// NewModel creates a new Model for mesh configured with the provided options.
//
// Parameters:
//   - mesh: the geometry to draw
//   - options: variadic list of ModelBuilderOption functions to configure the model
//
// Returns:
//   - Model: a new Model instance
func NewModel(mesh *Mesh, options ...ModelBuilderOption) Model {
	m := &model{
		name:         "model",
		mesh:         mesh,
		materialName: "material",
		pipelineKey:  "lit",
		dirty:        true,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.radius == 0 && mesh != nil {
		m.radius = mesh.BoundingRadius()
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider(m.name)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Mesh() *Mesh {
	return m.mesh
}

func (m *model) MaterialName() string {
	return m.materialName
}

func (m *model) PipelineKey() string {
	return m.pipelineKey
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) BoundingRadius() float32 {
	return m.radius
}

func (m *model) AddInstance(inst Instance) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances = append(m.instances, inst)
	m.dirty = true
	return len(m.instances) - 1
}

func (m *model) SetInstance(index int, inst Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.instances) {
		return fmt.Errorf("model %s: instance index %d out of range [0,%d)", m.name, index, len(m.instances))
	}
	m.instances[index] = inst
	m.dirty = true
	return nil
}

func (m *model) Instances() []Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Instance, len(m.instances))
	copy(out, m.instances)
	return out
}

func (m *model) InstanceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

func (m *model) Update(dt float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, inst := range m.instances {
		if inst.Spin.DegreesPerSecond == 0 {
			continue
		}
		m.instances[i] = inst.Advance(dt)
		m.dirty = true
	}
}

func (m *model) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

func (m *model) InstanceBytes(pool worker.DynamicWorkerPool) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.instances)
	out := make([]byte, n*GPUInstanceSize)
	chunks := (n + instancesPerTask - 1) / instancesPerTask
	errs := make([]error, chunks)

	pack := func(chunk int) {
		lo := chunk * instancesPerTask
		hi := min(lo+instancesPerTask, n)
		for i := lo; i < hi; i++ {
			g, err := m.instances[i].ToGPU()
			if err != nil {
				errs[chunk] = fmt.Errorf("model %s: instance %d: %w", m.name, i, err)
				return
			}
			g.put(out[i*GPUInstanceSize:])
		}
	}

	if pool == nil || chunks <= 1 {
		for c := range chunks {
			pack(c)
		}
	} else {
		var wg sync.WaitGroup
		for c := range chunks {
			wg.Add(1)
			pool.SubmitTask(worker.Task{
				ID: c,
				Do: func() (any, error) {
					defer wg.Done()
					pack(c)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	m.dirty = false
	return out, nil
}
