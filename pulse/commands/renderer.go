package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/pulse"
	"github.com/oliverbestmann/tessel/pulse/driver"
	"github.com/oliverbestmann/tessel/stage"
)

var ErrTooManyTextures = errors.New("more textures than the pipeline has slots")
var ErrNoTextures = errors.New("at least one texture is required")
var ErrIndexOutOfRange = errors.New("index out of range")
var ErrTooManySlots = errors.New("texture slot count not supported by the device")
var ErrIndexFormat = errors.New("unsupported index format")

// size of the indirection uniform holding the texture index
const indirectionSize = 4

type textureArrayPipeline struct {
	Layout driver.PipelineLayout
	Format wgpu.TextureFormat
	Shader string
}

func (conf textureArrayPipeline) Specialize(dev driver.Device) (driver.RenderPipeline, error) {
	slog.Info(
		"Create RenderPipeline for texture array",
		slog.Any("format", conf.Format),
	)

	shader, err := dev.CreateShaderModule("TextureRenderer.Shader", conf.Shader)
	if err != nil {
		return nil, fmt.Errorf("compile texture array shader: %w", err)
	}

	defer shader.Release()

	pipeline, err := dev.CreateRenderPipeline(driver.RenderPipelineDescriptor{
		Label:              fmt.Sprintf("TextureRenderer.%s", conf.Format),
		Layout:             conf.Layout,
		Module:             shader,
		VertexEntryPoint:   vertexEntryPoint,
		FragmentEntryPoint: fragmentEntryPoint,
		VertexBuffers:      []wgpu.VertexBufferLayout{vertexLayout},
		Targets: []wgpu.ColorTargetState{
			{
				Format:    conf.Format,
				Blend:     &wgpu.BlendStateReplace,
				WriteMask: wgpu.ColorWriteMaskAll,
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("build texture array pipeline: %w", err)
	}

	return pipeline, nil
}

// TextureRendererBuilder creates a TextureRenderer step by step. Steps must be called
// in the order CreatePipeline, CreateBuffers, CreateBindGroup, SetIndexFormat and Build,
// SetIndexFormat may be skipped. Calling a step out of order panics with a *stage.OrderError.
//
// The first error stops all further steps and is returned by Build.
type TextureRendererBuilder struct {
	stage *stage.Tracker[RendererStage]
	err   error

	base   *pulse.Base
	window pulse.Window

	indexing Indexing
	shader   string

	maxTextures     uint32
	bindGroupLayout driver.BindGroupLayout
	pipelineLayout  driver.PipelineLayout
	pipelines       *PipelineCache[textureArrayPipeline]
	pipeline        driver.RenderPipeline

	vertices *gpuBuffer
	indices  *gpuBuffer

	indirection  driver.Buffer
	bindGroup    driver.BindGroup
	textureCount uint32

	indexFormat wgpu.IndexFormat
}

func NewTextureRenderer(base *pulse.Base, window pulse.Window) *TextureRendererBuilder {
	return &TextureRendererBuilder{
		stage:       stage.New(StageContext),
		base:        base,
		window:      window,
		indexing:    IndexingUniform,
		indexFormat: wgpu.IndexFormatUint16,
	}
}

func (b *TextureRendererBuilder) step(previous, next RendererStage) bool {
	b.stage.Require(previous)
	b.stage.Advance(next)
	return b.err == nil
}

func (b *TextureRendererBuilder) fail(err error) *TextureRendererBuilder {
	b.err = err
	return b
}

// WithIndexing selects the shader indexing path. It must be called before CreatePipeline.
func (b *TextureRendererBuilder) WithIndexing(indexing Indexing) *TextureRendererBuilder {
	b.stage.Check(StagePipeline)
	b.indexing = indexing
	return b
}

// WithShader replaces the generated shader. The shader must declare the same bindings
// as the generated one. It must be called before CreatePipeline.
func (b *TextureRendererBuilder) WithShader(code string) *TextureRendererBuilder {
	b.stage.Check(StagePipeline)
	b.shader = code
	return b
}

// CreatePipeline builds a pipeline with maxTextures texture slots.
func (b *TextureRendererBuilder) CreatePipeline(maxTextures uint32) *TextureRendererBuilder {
	if !b.step(StageContext, StagePipeline) {
		return b
	}

	device := b.base.Device

	limits := device.Limits()
	if maxTextures == 0 || maxTextures > limits.MaxSampledTexturesPerShaderStage || maxTextures > limits.MaxSamplersPerShaderStage {
		return b.fail(fmt.Errorf("%w: %d slots requested, device supports %d textures and %d samplers",
			ErrTooManySlots, maxTextures, limits.MaxSampledTexturesPerShaderStage, limits.MaxSamplersPerShaderStage))
	}

	if b.shader == "" {
		shader, err := GenerateShader(maxTextures, b.indexing)
		if err != nil {
			return b.fail(err)
		}

		b.shader = shader
	}

	bindGroupLayout, err := device.CreateBindGroupLayout(bindGroupLayoutDescriptor(maxTextures))
	if err != nil {
		return b.fail(fmt.Errorf("create bind group layout: %w", err))
	}

	b.bindGroupLayout = bindGroupLayout

	pipelineLayout, err := device.CreatePipelineLayout("TextureRenderer", bindGroupLayout)
	if err != nil {
		return b.fail(fmt.Errorf("create pipeline layout: %w", err))
	}

	b.pipelineLayout = pipelineLayout
	b.pipelines = NewPipelineCache[textureArrayPipeline](device)

	pipeline, err := b.pipelines.Get(textureArrayPipeline{
		Layout: pipelineLayout,
		Format: b.base.Config().Format,
		Shader: b.shader,
	})

	if err != nil {
		return b.fail(err)
	}

	b.maxTextures = maxTextures
	b.pipeline = pipeline

	return b
}

func bindGroupLayoutDescriptor(maxTextures uint32) wgpu.BindGroupLayoutDescriptor {
	var entries []wgpu.BindGroupLayoutEntry

	for slot := range maxTextures {
		entries = append(entries,
			wgpu.BindGroupLayoutEntry{
				Binding:    textureBinding(slot),
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			wgpu.BindGroupLayoutEntry{
				Binding:    textureBinding(slot) + 1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		)
	}

	entries = append(entries, wgpu.BindGroupLayoutEntry{
		Binding:    uniformBinding(maxTextures),
		Visibility: wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: true,
			MinBindingSize:   indirectionSize,
		},
	})

	return wgpu.BindGroupLayoutDescriptor{
		Label:   "TextureRenderer",
		Entries: entries,
	}
}

// CreateBuffers allocates empty vertex and index buffers.
func (b *TextureRendererBuilder) CreateBuffers() *TextureRendererBuilder {
	if !b.step(StagePipeline, StageBuffers) {
		return b
	}

	device, queue := b.base.Device, b.base.Queue

	vertices, err := newGPUBuffer(device, queue, "TextureRenderer.Vertices", wgpu.BufferUsageVertex)
	if err != nil {
		return b.fail(err)
	}

	b.vertices = vertices

	indices, err := newGPUBuffer(device, queue, "TextureRenderer.Indices", wgpu.BufferUsageIndex)
	if err != nil {
		return b.fail(err)
	}

	b.indices = indices

	return b
}

// CreateBindGroup binds the textures to the slots of the pipeline. Slots without a
// texture repeat the last texture.
func (b *TextureRendererBuilder) CreateBindGroup(textures []*pulse.Texture) *TextureRendererBuilder {
	if !b.step(StageBuffers, StageBindGroup) {
		return b
	}

	if len(textures) == 0 {
		return b.fail(ErrNoTextures)
	}

	if uint32(len(textures)) > b.maxTextures {
		return b.fail(fmt.Errorf("%w: got %d textures for %d slots", ErrTooManyTextures, len(textures), b.maxTextures))
	}

	device := b.base.Device

	indirection, err := device.CreateBufferInit(wgpu.BufferInitDescriptor{
		Label:    "TextureRenderer.Indirection",
		Contents: make([]byte, indirectionSize),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})

	if err != nil {
		return b.fail(fmt.Errorf("create indirection buffer: %w", err))
	}

	b.indirection = indirection

	var entries []driver.BindGroupEntry

	for slot := range b.maxTextures {
		texture := textures[min(int(slot), len(textures)-1)]

		entries = append(entries,
			driver.BindGroupEntry{
				Binding:     textureBinding(slot),
				TextureView: texture.View(),
			},
			driver.BindGroupEntry{
				Binding: textureBinding(slot) + 1,
				Sampler: texture.Sampler(),
			},
		)
	}

	entries = append(entries, driver.BindGroupEntry{
		Binding: uniformBinding(b.maxTextures),
		Buffer:  indirection,
		Offset:  0,
		Size:    indirectionSize,
	})

	bindGroup, err := device.CreateBindGroup(driver.BindGroupDescriptor{
		Label:   "TextureRenderer",
		Layout:  b.bindGroupLayout,
		Entries: entries,
	})

	if err != nil {
		return b.fail(fmt.Errorf("create bind group: %w", err))
	}

	b.bindGroup = bindGroup
	b.textureCount = uint32(len(textures))

	return b
}

// SetIndexFormat sets the format of the index buffer, defaults to wgpu.IndexFormatUint16.
func (b *TextureRendererBuilder) SetIndexFormat(format wgpu.IndexFormat) *TextureRendererBuilder {
	if !b.step(StageBindGroup, StageIndexFormat) {
		return b
	}

	if format != wgpu.IndexFormatUint16 && format != wgpu.IndexFormatUint32 {
		return b.fail(fmt.Errorf("%w: %v", ErrIndexFormat, format))
	}

	b.indexFormat = format
	return b
}

// Build returns the renderer. If any step failed, all resources created so far
// are released and the error of the failed step is returned.
func (b *TextureRendererBuilder) Build() (*TextureRenderer, error) {
	b.stage.Require(StageBindGroup)
	b.stage.Advance(StageBuild)

	r := &TextureRenderer{
		base:            b.base,
		bindGroupLayout: b.bindGroupLayout,
		pipelineLayout:  b.pipelineLayout,
		pipelines:       b.pipelines,
		pipeline:        b.pipeline,
		shader:          b.shader,
		format:          b.base.Config().Format,
		vertices:        b.vertices,
		indices:         b.indices,
		indirection:     b.indirection,
		bindGroup:       b.bindGroup,
		maxTextures:     b.maxTextures,
		textureCount:    b.textureCount,
		indexFormat:     b.indexFormat,
		clearColor:      pulse.ColorBlack,
	}

	if b.err != nil {
		r.Release()
		return nil, b.err
	}

	width, height := b.window.Size()

	slog.Debug("Texture renderer created",
		slog.Int("slots", int(b.maxTextures)),
		slog.Int("textures", int(b.textureCount)),
		slog.Int("width", int(width)),
		slog.Int("height", int(height)),
	)

	return r, nil
}

// TextureRenderer draws indexed triangles sampling from a fixed set of textures.
type TextureRenderer struct {
	base *pulse.Base

	bindGroupLayout driver.BindGroupLayout
	pipelineLayout  driver.PipelineLayout
	pipelines       *PipelineCache[textureArrayPipeline]
	pipeline        driver.RenderPipeline
	shader          string
	format          wgpu.TextureFormat

	vertices *gpuBuffer
	indices  *gpuBuffer

	indirection  driver.Buffer
	bindGroup    driver.BindGroup
	maxTextures  uint32
	textureCount uint32

	indexFormat wgpu.IndexFormat
	indexCount  uint32

	clearColor pulse.Color
}

// ReplaceVertexBuffer replaces all vertices. The buffer keeps its capacity: vertices
// that fit are written in place, more vertices reallocate it to exactly their size.
func (r *TextureRenderer) ReplaceVertexBuffer(vertices []Vertex) error {
	return r.vertices.Replace(pulse.SliceAsBytes(vertices))
}

// ReplaceIndexBuffer replaces all indices. Indices are converted to the index format
// of the renderer and must fit into it. As with vertices, the buffer keeps its capacity
// and only grows to exactly the size of larger contents.
func (r *TextureRenderer) ReplaceIndexBuffer(indices []uint32) error {
	var contents []byte

	switch r.indexFormat {
	case wgpu.IndexFormatUint16:
		narrow := make([]uint16, len(indices))
		for idx, value := range indices {
			if value > 0xFFFF {
				return fmt.Errorf("%w: index %d does not fit into uint16", ErrIndexOutOfRange, value)
			}

			narrow[idx] = uint16(value)
		}

		contents = pulse.SliceAsBytes(narrow)

	default:
		contents = pulse.SliceAsBytes(indices)
	}

	if err := r.indices.Replace(contents); err != nil {
		return err
	}

	r.indexCount = uint32(len(indices))

	return nil
}

// IndexCount returns the number of indices drawn by Render.
func (r *TextureRenderer) IndexCount() uint32 {
	return r.indexCount
}

func (r *TextureRenderer) IndexFormat() wgpu.IndexFormat {
	return r.indexFormat
}

// SetTextureIndex selects the texture slot used by the shader.
func (r *TextureRenderer) SetTextureIndex(index uint32) error {
	if index >= r.maxTextures {
		return fmt.Errorf("%w: texture index %d, renderer has %d slots", ErrIndexOutOfRange, index, r.maxTextures)
	}

	return r.base.Queue.WriteBuffer(r.indirection, 0, pulse.AsByteSlice(&index))
}

func (r *TextureRenderer) SetClearColor(color pulse.Color) {
	r.clearColor = color
}

// Resize rebuilds the pipeline if the surface format changed.
func (r *TextureRenderer) Resize(config wgpu.SurfaceConfiguration) error {
	if config.Format == r.format {
		return nil
	}

	pipeline, err := r.pipelines.Get(textureArrayPipeline{
		Layout: r.pipelineLayout,
		Format: config.Format,
		Shader: r.shader,
	})

	if err != nil {
		return err
	}

	r.pipeline = pipeline
	r.format = config.Format

	return nil
}

// ReloadShader replaces the shader. On error the current shader stays active.
func (r *TextureRenderer) ReloadShader(code string) error {
	pipeline, err := r.pipelines.Get(textureArrayPipeline{
		Layout: r.pipelineLayout,
		Format: r.format,
		Shader: code,
	})

	if err != nil {
		return fmt.Errorf("reload shader: %w", err)
	}

	slog.Info("Shader reloaded", slog.Int("pipelines", r.pipelines.Len()))

	r.pipeline = pipeline
	r.shader = code

	return nil
}

// Render draws all triangles into the target in a single render pass.
func (r *TextureRenderer) Render(target driver.TextureView) error {
	encoder, err := r.base.Device.CreateCommandEncoder("TextureRenderer")
	if err != nil {
		return err
	}

	defer encoder.Release()

	pass := encoder.BeginRenderPass("TextureRenderer", driver.ColorAttachment{
		View:       target,
		ClearValue: r.clearColor.ToWGPU(),
	})

	passGuard := pulse.NewReleaseGuard(pass)
	defer passGuard.Release()

	pass.SetPipeline(r.pipeline)
	pass.SetVertexBuffer(0, r.vertices.buffer)
	pass.SetIndexBuffer(r.indices.buffer, r.indexFormat)
	pass.SetBindGroup(0, r.bindGroup, []uint32{0})

	if r.indexCount > 0 {
		pass.DrawIndexed(r.indexCount, 1, 0, 0, 0)
	}

	if err := pass.End(); err != nil {
		return err
	}

	// must release pass before finishing the encoder
	passGuard.Release()

	cmdBuffer, err := encoder.Finish("TextureRenderer")
	if err != nil {
		return err
	}

	defer cmdBuffer.Release()

	r.base.Queue.Submit(cmdBuffer)

	return nil
}

// Release releases all resources owned by the renderer. Textures are not released.
func (r *TextureRenderer) Release() {
	if r.pipelines != nil {
		r.pipelines.Purge()
	}

	if r.vertices != nil {
		r.vertices.Release()
	}

	if r.indices != nil {
		r.indices.Release()
	}

	for _, res := range []driver.Releaser{r.bindGroup, r.indirection, r.pipelineLayout, r.bindGroupLayout} {
		if res != nil {
			res.Release()
		}
	}

	*r = TextureRenderer{}
}
