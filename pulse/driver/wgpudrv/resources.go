package wgpudrv

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

type buffer struct {
	ref   *wgpu.Buffer
	size  uint64
	usage wgpu.BufferUsage
}

func (b *buffer) Size() uint64 {
	return b.size
}

func (b *buffer) Usage() wgpu.BufferUsage {
	return b.usage
}

func (b *buffer) Release() {
	b.ref.Release()
}

type texture struct {
	ref *wgpu.Texture
}

func (t *texture) Width() uint32 {
	return t.ref.GetWidth()
}

func (t *texture) Height() uint32 {
	return t.ref.GetHeight()
}

func (t *texture) Format() wgpu.TextureFormat {
	return t.ref.GetFormat()
}

func (t *texture) CreateView() (driver.TextureView, error) {
	return t.ref.CreateView(nil)
}

func (t *texture) Release() {
	t.ref.Release()
}

type commandEncoder struct {
	ref *wgpu.CommandEncoder
}

func (c *commandEncoder) BeginRenderPass(label string, color driver.ColorAttachment) driver.RenderPass {
	ref := c.ref.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       color.View.(*wgpu.TextureView),
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: color.ClearValue,
			},
		},
	})

	return &renderPass{ref: ref}
}

func (c *commandEncoder) Finish(label string) (driver.CommandBuffer, error) {
	return c.ref.Finish(&wgpu.CommandBufferDescriptor{Label: label})
}

func (c *commandEncoder) Release() {
	c.ref.Release()
}

type renderPass struct {
	ref *wgpu.RenderPassEncoder
}

func (p *renderPass) SetPipeline(pipeline driver.RenderPipeline) {
	p.ref.SetPipeline(pipeline.(*wgpu.RenderPipeline))
}

func (p *renderPass) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	p.ref.SetBindGroup(index, group.(*wgpu.BindGroup), dynamicOffsets)
}

func (p *renderPass) SetVertexBuffer(slot uint32, b driver.Buffer) {
	p.ref.SetVertexBuffer(slot, b.(*buffer).ref, 0, wgpu.WholeSize)
}

func (p *renderPass) SetIndexBuffer(b driver.Buffer, format wgpu.IndexFormat) {
	p.ref.SetIndexBuffer(b.(*buffer).ref, format, 0, wgpu.WholeSize)
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.ref.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *renderPass) End() error {
	return p.ref.End()
}

func (p *renderPass) Release() {
	p.ref.Release()
}
