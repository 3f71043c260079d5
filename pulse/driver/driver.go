// Package driver declares the GPU capabilities the graphics context and the
// renderers depend on. Handles are opaque, descriptors carry plain wgpu data.
//
// The webgpu backed implementation lives in package wgpudrv, a recording fake
// for tests in package drivertest.
package driver

import (
	"github.com/cogentcore/webgpu/wgpu"
)

type Releaser interface {
	Release()
}

type Instance interface {
	CreateSurface(desc *wgpu.SurfaceDescriptor) (Surface, error)

	// EnumerateAdapters lists all adapters available to this instance.
	EnumerateAdapters() []Adapter

	RequestAdapter(opts AdapterOptions) (Adapter, error)

	// Report returns a human readable report of the resources held by the driver.
	Report() string

	Release()
}

type AdapterOptions struct {
	PowerPreference      wgpu.PowerPreference
	ForceFallbackAdapter bool
	CompatibleSurface    Surface
}

type AdapterInfo struct {
	Name    string
	Backend string
	Type    string
	Driver  string
}

type Adapter interface {
	Info() AdapterInfo
	Features() []wgpu.FeatureName
	Limits() wgpu.Limits
	RequestDevice(desc DeviceDescriptor) (Device, error)
	Release()
}

type DeviceDescriptor struct {
	Label            string
	RequiredFeatures []wgpu.FeatureName
	RequiredLimits   wgpu.Limits

	// TracePath is a directory to record an api trace to, empty to disable tracing.
	TracePath string
}

type SurfaceCapabilities struct {
	Formats      []wgpu.TextureFormat
	AlphaModes   []wgpu.CompositeAlphaMode
	PresentModes []wgpu.PresentMode
}

type Surface interface {
	// Capabilities returns the formats and modes supported by the
	// surface when used together with the given adapter.
	Capabilities(adapter Adapter) SurfaceCapabilities

	Configure(adapter Adapter, device Device, config wgpu.SurfaceConfiguration)

	// CurrentTexture acquires the next swapchain texture.
	CurrentTexture() (Texture, error)

	Present()
	Release()
}

type Device interface {
	Limits() wgpu.Limits
	Queue() Queue

	CreateShaderModule(label string, wgsl string) (ShaderModule, error)
	CreateBindGroupLayout(desc wgpu.BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreatePipelineLayout(label string, layouts ...BindGroupLayout) (PipelineLayout, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)
	CreateBuffer(desc wgpu.BufferDescriptor) (Buffer, error)
	CreateBufferInit(desc wgpu.BufferInitDescriptor) (Buffer, error)
	CreateTexture(desc wgpu.TextureDescriptor) (Texture, error)
	CreateSampler(desc wgpu.SamplerDescriptor) (Sampler, error)
	CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)

	Release()
}

type Queue interface {
	WriteBuffer(buffer Buffer, offset uint64, data []byte) error
	WriteTexture(texture Texture, data []byte, layout wgpu.TextureDataLayout, size wgpu.Extent3D) error
	Submit(commands ...CommandBuffer)
	Release()
}

type Texture interface {
	Width() uint32
	Height() uint32
	Format() wgpu.TextureFormat
	CreateView() (TextureView, error)
	Release()
}

type TextureView interface{ Releaser }

type Sampler interface{ Releaser }

type ShaderModule interface{ Releaser }

type BindGroupLayout interface{ Releaser }

type PipelineLayout interface{ Releaser }

type RenderPipeline interface{ Releaser }

type BindGroup interface{ Releaser }

type CommandBuffer interface{ Releaser }

type Buffer interface {
	Size() uint64
	Usage() wgpu.BufferUsage
	Release()
}

type RenderPipelineDescriptor struct {
	Label  string
	Layout PipelineLayout
	Module ShaderModule

	VertexEntryPoint   string
	FragmentEntryPoint string

	VertexBuffers []wgpu.VertexBufferLayout
	Targets       []wgpu.ColorTargetState
	Primitive     wgpu.PrimitiveState
}

// BindGroupEntry binds exactly one of Buffer, Sampler or TextureView.
type BindGroupEntry struct {
	Binding uint32

	Buffer Buffer
	Offset uint64
	Size   uint64

	Sampler     Sampler
	TextureView TextureView
}

type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

type ColorAttachment struct {
	View       TextureView
	ClearValue wgpu.Color
}

type CommandEncoder interface {
	BeginRenderPass(label string, color ColorAttachment) RenderPass
	Finish(label string) (CommandBuffer, error)
	Release()
}

type RenderPass interface {
	SetPipeline(pipeline RenderPipeline)
	SetBindGroup(index uint32, group BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer Buffer)
	SetIndexBuffer(buffer Buffer, format wgpu.IndexFormat)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End() error
	Release()
}
