package bind_group_provider

// InstanceBinding is the pseudo binding index that targets a provider's instance
// vertex buffer instead of one of its bind group buffers.
const InstanceBinding = -1

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
