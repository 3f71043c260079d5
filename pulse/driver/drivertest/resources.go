package drivertest

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

// Handle is a generic resource without any behaviour.
type Handle struct {
	Label    string
	Entries  []wgpu.BindGroupLayoutEntry
	Released bool
}

func (h *Handle) Release() {
	h.Released = true
}

type ShaderModule struct {
	Label    string
	Code     string
	Released bool
}

func (s *ShaderModule) Release() {
	s.Released = true
}

type RenderPipeline struct {
	Desc     driver.RenderPipelineDescriptor
	Released bool
}

func (p *RenderPipeline) Release() {
	p.Released = true
}

type Buffer struct {
	Label       string
	Capacity    uint64
	BufferUsage wgpu.BufferUsage
	Contents    []byte
	Released    bool
}

func (b *Buffer) Size() uint64 {
	return b.Capacity
}

func (b *Buffer) Usage() wgpu.BufferUsage {
	return b.BufferUsage
}

func (b *Buffer) Release() {
	b.Released = true
}

type Texture struct {
	Desc     wgpu.TextureDescriptor
	Views    []*TextureView
	Released bool
}

func (t *Texture) Width() uint32 {
	return t.Desc.Size.Width
}

func (t *Texture) Height() uint32 {
	return t.Desc.Size.Height
}

func (t *Texture) Format() wgpu.TextureFormat {
	return t.Desc.Format
}

func (t *Texture) CreateView() (driver.TextureView, error) {
	view := &TextureView{Texture: t}
	t.Views = append(t.Views, view)
	return view, nil
}

func (t *Texture) Release() {
	t.Released = true
}

type TextureView struct {
	Texture  *Texture
	Released bool
}

func (v *TextureView) Release() {
	v.Released = true
}

type Sampler struct {
	Desc     wgpu.SamplerDescriptor
	Released bool
}

func (s *Sampler) Release() {
	s.Released = true
}

type BindGroup struct {
	Desc     driver.BindGroupDescriptor
	Released bool
}

func (g *BindGroup) Release() {
	g.Released = true
}

type CommandEncoder struct {
	Label    string
	Passes   []*RenderPass
	Finished bool
	Released bool
}

func (c *CommandEncoder) BeginRenderPass(label string, color driver.ColorAttachment) driver.RenderPass {
	pass := &RenderPass{Label: label, Color: color}
	c.Passes = append(c.Passes, pass)
	return pass
}

func (c *CommandEncoder) Finish(label string) (driver.CommandBuffer, error) {
	for _, pass := range c.Passes {
		if !pass.Ended {
			return nil, errors.New("render pass not ended")
		}
	}

	c.Finished = true
	return &CommandBuffer{Encoder: c}, nil
}

func (c *CommandEncoder) Release() {
	c.Released = true
}

type CommandBuffer struct {
	Encoder  *CommandEncoder
	Released bool
}

func (c *CommandBuffer) Release() {
	c.Released = true
}

type DrawIndexed struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

type SetBindGroup struct {
	Index          uint32
	Group          *BindGroup
	DynamicOffsets []uint32
}

type RenderPass struct {
	Label string
	Color driver.ColorAttachment

	Pipeline     *RenderPipeline
	VertexBuffer *Buffer
	IndexBuffer  *Buffer
	IndexFormat  wgpu.IndexFormat
	BindGroups   []SetBindGroup
	Draws        []DrawIndexed

	Ended    bool
	Released bool
}

func (p *RenderPass) SetPipeline(pipeline driver.RenderPipeline) {
	p.Pipeline = pipeline.(*RenderPipeline)
}

func (p *RenderPass) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	p.BindGroups = append(p.BindGroups, SetBindGroup{
		Index:          index,
		Group:          group.(*BindGroup),
		DynamicOffsets: dynamicOffsets,
	})
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buffer driver.Buffer) {
	p.VertexBuffer = buffer.(*Buffer)
}

func (p *RenderPass) SetIndexBuffer(buffer driver.Buffer, format wgpu.IndexFormat) {
	p.IndexBuffer = buffer.(*Buffer)
	p.IndexFormat = format
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.Draws = append(p.Draws, DrawIndexed{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	})
}

func (p *RenderPass) End() error {
	if p.Ended {
		return errors.New("render pass already ended")
	}

	p.Ended = true
	return nil
}

func (p *RenderPass) Release() {
	p.Released = true
}
