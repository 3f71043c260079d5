package wgpudrv

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

type device struct {
	ref   *wgpu.Device
	queue *queue
}

func (d *device) Limits() wgpu.Limits {
	return d.ref.GetLimits().Limits
}

func (d *device) Queue() driver.Queue {
	return d.queue
}

func (d *device) CreateShaderModule(label string, wgsl string) (driver.ShaderModule, error) {
	return d.ref.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: wgsl,
		},
	})
}

func (d *device) CreateBindGroupLayout(desc wgpu.BindGroupLayoutDescriptor) (driver.BindGroupLayout, error) {
	return d.ref.CreateBindGroupLayout(&desc)
}

func (d *device) CreatePipelineLayout(label string, layouts ...driver.BindGroupLayout) (driver.PipelineLayout, error) {
	refs := make([]*wgpu.BindGroupLayout, len(layouts))
	for idx, layout := range layouts {
		refs[idx] = layout.(*wgpu.BindGroupLayout)
	}

	return d.ref.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: refs,
	})
}

func (d *device) CreateRenderPipeline(desc driver.RenderPipelineDescriptor) (driver.RenderPipeline, error) {
	module := desc.Module.(*wgpu.ShaderModule)

	return d.ref.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: desc.Layout.(*wgpu.PipelineLayout),
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    desc.VertexBuffers,
		},
		Primitive: desc.Primitive,
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntryPoint,
			Targets:    desc.Targets,
		},
	})
}

func (d *device) CreateBuffer(desc wgpu.BufferDescriptor) (driver.Buffer, error) {
	ref, err := d.ref.CreateBuffer(&desc)
	if err != nil {
		return nil, err
	}

	return &buffer{ref: ref, size: desc.Size, usage: desc.Usage}, nil
}

func (d *device) CreateBufferInit(desc wgpu.BufferInitDescriptor) (driver.Buffer, error) {
	ref, err := d.ref.CreateBufferInit(&desc)
	if err != nil {
		return nil, err
	}

	return &buffer{ref: ref, size: uint64(len(desc.Contents)), usage: desc.Usage}, nil
}

func (d *device) CreateTexture(desc wgpu.TextureDescriptor) (driver.Texture, error) {
	ref, err := d.ref.CreateTexture(&desc)
	if err != nil {
		return nil, err
	}

	return &texture{ref: ref}, nil
}

func (d *device) CreateSampler(desc wgpu.SamplerDescriptor) (driver.Sampler, error) {
	return d.ref.CreateSampler(&desc)
}

func (d *device) CreateBindGroup(desc driver.BindGroupDescriptor) (driver.BindGroup, error) {
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))

	for idx, entry := range desc.Entries {
		target := wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Offset:  entry.Offset,
			Size:    entry.Size,
		}

		if entry.Buffer != nil {
			target.Buffer = entry.Buffer.(*buffer).ref
		}

		if entry.Sampler != nil {
			target.Sampler = entry.Sampler.(*wgpu.Sampler)
		}

		if entry.TextureView != nil {
			target.TextureView = entry.TextureView.(*wgpu.TextureView)
		}

		entries[idx] = target
	}

	return d.ref.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  desc.Layout.(*wgpu.BindGroupLayout),
		Entries: entries,
	})
}

func (d *device) CreateCommandEncoder(label string) (driver.CommandEncoder, error) {
	ref, err := d.ref.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: label,
	})

	if err != nil {
		return nil, err
	}

	return &commandEncoder{ref: ref}, nil
}

func (d *device) Release() {
	d.queue.Release()
	d.ref.Release()
}

type queue struct {
	ref *wgpu.Queue
}

func (q *queue) WriteBuffer(b driver.Buffer, offset uint64, data []byte) error {
	q.ref.WriteBuffer(b.(*buffer).ref, offset, data)
	return nil
}

func (q *queue) WriteTexture(t driver.Texture, data []byte, layout wgpu.TextureDataLayout, size wgpu.Extent3D) error {
	q.ref.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.(*texture).ref,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&layout,
		&size,
	)

	return nil
}

func (q *queue) Submit(commands ...driver.CommandBuffer) {
	refs := make([]*wgpu.CommandBuffer, len(commands))
	for idx, cmd := range commands {
		refs[idx] = cmd.(*wgpu.CommandBuffer)
	}

	q.ref.Submit(refs...)
}

func (q *queue) Release() {
	q.ref.Release()
}
