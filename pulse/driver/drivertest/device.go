package drivertest

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

type Device struct {
	LimitValues wgpu.Limits

	// FailPipeline lets CreateRenderPipeline fail.
	FailPipeline bool

	// FailShader lets CreateShaderModule fail.
	FailShader bool

	Shaders          []*ShaderModule
	BindGroupLayouts []*Handle
	Pipelines        []*RenderPipeline
	Buffers          []*Buffer
	Textures         []*Texture
	Samplers         []*Sampler
	BindGroups       []*BindGroup
	Encoders         []*CommandEncoder

	queue    *Queue
	Released bool
}

func NewDevice(limits wgpu.Limits) *Device {
	return &Device{LimitValues: limits, queue: &Queue{}}
}

func (d *Device) Limits() wgpu.Limits {
	return d.LimitValues
}

func (d *Device) Queue() driver.Queue {
	return d.queue
}

// FakeQueue gives access to the recorded queue operations.
func (d *Device) FakeQueue() *Queue {
	return d.queue
}

// Passes returns all render passes recorded on this device.
func (d *Device) Passes() []*RenderPass {
	var passes []*RenderPass
	for _, enc := range d.Encoders {
		passes = append(passes, enc.Passes...)
	}

	return passes
}

// LiveBuffers returns the buffers that were not yet released.
func (d *Device) LiveBuffers() []*Buffer {
	var live []*Buffer
	for _, buf := range d.Buffers {
		if !buf.Released {
			live = append(live, buf)
		}
	}

	return live
}

func (d *Device) CreateShaderModule(label string, wgsl string) (driver.ShaderModule, error) {
	if d.FailShader {
		return nil, fmt.Errorf("create shader module: %w", ErrInjected)
	}

	module := &ShaderModule{Label: label, Code: wgsl}
	d.Shaders = append(d.Shaders, module)
	return module, nil
}

func (d *Device) CreateBindGroupLayout(desc wgpu.BindGroupLayoutDescriptor) (driver.BindGroupLayout, error) {
	layout := &Handle{Label: desc.Label, Entries: desc.Entries}
	d.BindGroupLayouts = append(d.BindGroupLayouts, layout)
	return layout, nil
}

func (d *Device) CreatePipelineLayout(label string, layouts ...driver.BindGroupLayout) (driver.PipelineLayout, error) {
	return &Handle{Label: label}, nil
}

func (d *Device) CreateRenderPipeline(desc driver.RenderPipelineDescriptor) (driver.RenderPipeline, error) {
	if d.FailPipeline {
		return nil, fmt.Errorf("create render pipeline: %w", ErrInjected)
	}

	pipeline := &RenderPipeline{Desc: desc}
	d.Pipelines = append(d.Pipelines, pipeline)
	return pipeline, nil
}

func (d *Device) CreateBuffer(desc wgpu.BufferDescriptor) (driver.Buffer, error) {
	buf := &Buffer{Label: desc.Label, Capacity: desc.Size, BufferUsage: desc.Usage, Contents: make([]byte, desc.Size)}
	d.Buffers = append(d.Buffers, buf)
	return buf, nil
}

func (d *Device) CreateBufferInit(desc wgpu.BufferInitDescriptor) (driver.Buffer, error) {
	buf := &Buffer{
		Label:       desc.Label,
		Capacity:    uint64(len(desc.Contents)),
		BufferUsage: desc.Usage,
		Contents:    append([]byte(nil), desc.Contents...),
	}

	d.Buffers = append(d.Buffers, buf)
	return buf, nil
}

func (d *Device) CreateTexture(desc wgpu.TextureDescriptor) (driver.Texture, error) {
	texture := &Texture{Desc: desc}
	d.Textures = append(d.Textures, texture)
	return texture, nil
}

func (d *Device) CreateSampler(desc wgpu.SamplerDescriptor) (driver.Sampler, error) {
	sampler := &Sampler{Desc: desc}
	d.Samplers = append(d.Samplers, sampler)
	return sampler, nil
}

func (d *Device) CreateBindGroup(desc driver.BindGroupDescriptor) (driver.BindGroup, error) {
	group := &BindGroup{Desc: desc}
	d.BindGroups = append(d.BindGroups, group)
	return group, nil
}

func (d *Device) CreateCommandEncoder(label string) (driver.CommandEncoder, error) {
	enc := &CommandEncoder{Label: label}
	d.Encoders = append(d.Encoders, enc)
	return enc, nil
}

func (d *Device) Release() {
	d.Released = true
}

type BufferWrite struct {
	Buffer *Buffer
	Offset uint64
	Data   []byte
}

type TextureWrite struct {
	Texture *Texture
	Data    []byte
	Layout  wgpu.TextureDataLayout
	Size    wgpu.Extent3D
}

type Queue struct {
	BufferWrites  []BufferWrite
	TextureWrites []TextureWrite
	Submitted     []*CommandBuffer
	Released      bool
}

func (q *Queue) WriteBuffer(buffer driver.Buffer, offset uint64, data []byte) error {
	buf := buffer.(*Buffer)

	if offset+uint64(len(data)) > buf.Capacity {
		return fmt.Errorf("write of %d bytes at offset %d exceeds buffer size %d", len(data), offset, buf.Capacity)
	}

	if len(data)%4 != 0 {
		return fmt.Errorf("write size %d is not a multiple of 4", len(data))
	}

	copy(buf.Contents[offset:], data)

	q.BufferWrites = append(q.BufferWrites, BufferWrite{
		Buffer: buf,
		Offset: offset,
		Data:   append([]byte(nil), data...),
	})

	return nil
}

func (q *Queue) WriteTexture(texture driver.Texture, data []byte, layout wgpu.TextureDataLayout, size wgpu.Extent3D) error {
	q.TextureWrites = append(q.TextureWrites, TextureWrite{
		Texture: texture.(*Texture),
		Data:    append([]byte(nil), data...),
		Layout:  layout,
		Size:    size,
	})

	return nil
}

func (q *Queue) Submit(commands ...driver.CommandBuffer) {
	for _, cmd := range commands {
		q.Submitted = append(q.Submitted, cmd.(*CommandBuffer))
	}
}

func (q *Queue) Release() {
	q.Released = true
}
