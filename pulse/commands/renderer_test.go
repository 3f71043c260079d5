package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/glm"
	"github.com/oliverbestmann/tessel/pulse"
	"github.com/oliverbestmann/tessel/pulse/driver/drivertest"
	"github.com/oliverbestmann/tessel/stage"
)

type testWindow struct{}

func (testWindow) Size() (uint32, uint32) {
	return 320, 240
}

func (testWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return &wgpu.SurfaceDescriptor{Label: "test"}
}

func newTestBase(t *testing.T) (*pulse.Base, *drivertest.Device) {
	t.Helper()

	instance := drivertest.NewInstance()

	base, err := pulse.Init(instance, pulse.Options{}).
		WithWindow(testWindow{}).
		CreateSurface().
		NegotiateAdapter().
		RequestDevice(nil, nil, pulse.DownlevelWebGL2Limits()).
		ConfigureSurface().
		Build()

	if err != nil {
		t.Fatalf("build base: %s", err)
	}

	t.Cleanup(base.Release)

	return base, instance.Adapters[0].Devices[0]
}

func newTestTextures(t *testing.T, base *pulse.Base, count int) []*pulse.Texture {
	t.Helper()

	var textures []*pulse.Texture
	for range count {
		texture, err := pulse.NewTexture(base, pulse.NewTextureOptions{Label: "test", Width: 2, Height: 2})
		if err != nil {
			t.Fatalf("create texture: %s", err)
		}

		textures = append(textures, texture)
	}

	return textures
}

func newTestRenderer(t *testing.T, base *pulse.Base, maxTextures uint32, textures int) *TextureRenderer {
	t.Helper()

	renderer, err := NewTextureRenderer(base, testWindow{}).
		CreatePipeline(maxTextures).
		CreateBuffers().
		CreateBindGroup(newTestTextures(t, base, textures)).
		Build()

	if err != nil {
		t.Fatalf("build renderer: %s", err)
	}

	t.Cleanup(renderer.Release)

	return renderer
}

func catchOrderError(fn func()) (err *stage.OrderError) {
	defer func() {
		if r := recover(); r != nil {
			var ok bool
			err, ok = r.(*stage.OrderError)
			if !ok {
				panic(r)
			}
		}
	}()

	fn()
	return nil
}

func TestRenderTriangle(t *testing.T) {
	base, device := newTestBase(t)
	renderer := newTestRenderer(t, base, 2, 1)

	vertices := []Vertex{
		{Position: glm.Vec2f{0, -1}, TexCoord: glm.Vec2f{0, -1}},
		{Position: glm.Vec2f{1, 1}, TexCoord: glm.Vec2f{1, 1}},
		{Position: glm.Vec2f{-1, 1}, TexCoord: glm.Vec2f{-1, 1}},
	}

	if err := renderer.ReplaceVertexBuffer(vertices); err != nil {
		t.Fatalf("replace vertices: %s", err)
	}

	if err := renderer.ReplaceIndexBuffer([]uint32{2, 1, 0}); err != nil {
		t.Fatalf("replace indices: %s", err)
	}

	frame, err := base.AcquireFrame()
	if err != nil {
		t.Fatalf("acquire frame: %s", err)
	}

	view, _ := frame.CreateView()

	if err := renderer.Render(view); err != nil {
		t.Fatalf("render: %s", err)
	}

	passes := device.Passes()
	if len(passes) != 1 {
		t.Fatalf("expected one render pass, got %d", len(passes))
	}

	pass := passes[0]
	if !pass.Ended || !pass.Released {
		t.Fatal("render pass not ended and released")
	}

	if len(pass.Draws) != 1 || pass.Draws[0].IndexCount != 3 || pass.Draws[0].InstanceCount != 1 {
		t.Fatalf("unexpected draws: %+v", pass.Draws)
	}

	if pass.IndexFormat != wgpu.IndexFormatUint16 {
		t.Fatalf("unexpected index format %v", pass.IndexFormat)
	}

	if len(pass.BindGroups) != 1 || len(pass.BindGroups[0].DynamicOffsets) != 1 {
		t.Fatalf("unexpected bind groups: %+v", pass.BindGroups)
	}

	// three uint16 indices padded to eight bytes
	contents := pass.IndexBuffer.Contents
	if len(contents) != 8 || contents[0] != 2 || contents[2] != 1 || contents[4] != 0 {
		t.Fatalf("unexpected index buffer contents %v", contents)
	}

	if pass.Color.ClearValue != (wgpu.Color{R: 0, G: 0, B: 0, A: 1}) {
		t.Fatalf("unexpected clear color %+v", pass.Color.ClearValue)
	}

	if submitted := device.FakeQueue().Submitted; len(submitted) != 1 || !submitted[0].Encoder.Finished {
		t.Fatalf("command buffer not submitted: %+v", submitted)
	}
}

func TestRenderWithoutIndicesSkipsDraw(t *testing.T) {
	base, device := newTestBase(t)
	renderer := newTestRenderer(t, base, 1, 1)

	frame, _ := base.AcquireFrame()
	view, _ := frame.CreateView()

	if err := renderer.Render(view); err != nil {
		t.Fatalf("render: %s", err)
	}

	passes := device.Passes()
	if len(passes) != 1 || len(passes[0].Draws) != 0 {
		t.Fatalf("expected an empty render pass, got %+v", passes)
	}
}

func TestBindGroupLayout(t *testing.T) {
	base, device := newTestBase(t)
	newTestRenderer(t, base, 3, 2)

	layout := device.BindGroupLayouts[0]
	if len(layout.Entries) != 7 {
		t.Fatalf("expected seven layout entries, got %d", len(layout.Entries))
	}

	for idx, entry := range layout.Entries {
		if entry.Binding != uint32(idx) {
			t.Fatalf("entry %d has binding %d", idx, entry.Binding)
		}
	}

	if layout.Entries[6].Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Fatalf("last entry is not the uniform: %+v", layout.Entries[6])
	}

	group := device.BindGroups[0]
	if len(group.Desc.Entries) != 7 {
		t.Fatalf("expected seven bind group entries, got %d", len(group.Desc.Entries))
	}

	// the third slot repeats the second texture
	if group.Desc.Entries[4].TextureView != group.Desc.Entries[2].TextureView {
		t.Fatal("unused slot does not repeat the last texture")
	}
}

func TestTooManyTextures(t *testing.T) {
	base, device := newTestBase(t)
	textures := newTestTextures(t, base, 3)

	renderer, err := NewTextureRenderer(base, testWindow{}).
		CreatePipeline(2).
		CreateBuffers().
		CreateBindGroup(textures).
		Build()

	if !errors.Is(err, ErrTooManyTextures) {
		t.Fatalf("expected ErrTooManyTextures, got %v", err)
	}

	if renderer != nil {
		t.Fatal("renderer returned on error")
	}

	if live := device.LiveBuffers(); len(live) != 0 {
		t.Fatalf("buffers not released: %+v", live)
	}

	if !device.Pipelines[0].Released {
		t.Fatal("pipeline not released")
	}
}

func TestCapabilityErrors(t *testing.T) {
	tests := []struct {
		name        string
		maxTextures uint32
		textures    int
		prepare     func(device *drivertest.Device)
		expected    error
	}{
		{"no textures", 2, 0, nil, ErrNoTextures},
		{"zero slots", 0, 1, nil, ErrTooManySlots},
		{"more slots than samplers", 4, 1, func(device *drivertest.Device) {
			device.LimitValues.MaxSamplersPerShaderStage = 3
		}, ErrTooManySlots},
		{"pipeline fails", 2, 1, func(device *drivertest.Device) {
			device.FailPipeline = true
		}, drivertest.ErrInjected},
		{"shader fails", 2, 1, func(device *drivertest.Device) {
			device.FailShader = true
		}, drivertest.ErrInjected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, device := newTestBase(t)
			if tt.prepare != nil {
				tt.prepare(device)
			}

			_, err := NewTextureRenderer(base, testWindow{}).
				CreatePipeline(tt.maxTextures).
				CreateBuffers().
				CreateBindGroup(newTestTextures(t, base, tt.textures)).
				Build()

			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestBuilderOutOfOrder(t *testing.T) {
	base, _ := newTestBase(t)

	tests := []struct {
		name string
		run  func(b *TextureRendererBuilder)
	}{
		{"buffers before pipeline", func(b *TextureRendererBuilder) {
			b.CreateBuffers()
		}},
		{"bind group before buffers", func(b *TextureRendererBuilder) {
			b.CreatePipeline(1).CreateBindGroup(nil)
		}},
		{"build without bind group", func(b *TextureRendererBuilder) {
			_, _ = b.CreatePipeline(1).CreateBuffers().Build()
		}},
		{"pipeline twice", func(b *TextureRendererBuilder) {
			b.CreatePipeline(1).CreatePipeline(1)
		}},
		{"indexing after pipeline", func(b *TextureRendererBuilder) {
			b.CreatePipeline(1).WithIndexing(IndexingNonUniform)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := catchOrderError(func() { tt.run(NewTextureRenderer(base, testWindow{})) })
			if err == nil {
				t.Fatal("expected an order violation")
			}
		})
	}
}

func TestReplaceBufferInPlaceAndGrow(t *testing.T) {
	base, device := newTestBase(t)
	renderer := newTestRenderer(t, base, 1, 1)

	initial := renderer.vertices.buffer

	if err := renderer.ReplaceVertexBuffer(make([]Vertex, 3)); err != nil {
		t.Fatalf("replace vertices: %s", err)
	}

	grown := renderer.vertices.buffer
	if grown == initial {
		t.Fatal("buffer did not grow")
	}

	if !initial.(*drivertest.Buffer).Released {
		t.Fatal("old buffer not released")
	}

	if renderer.vertices.Capacity() != 60 {
		t.Fatalf("unexpected capacity %d", renderer.vertices.Capacity())
	}

	writes := len(device.FakeQueue().BufferWrites)

	if err := renderer.ReplaceVertexBuffer(make([]Vertex, 2)); err != nil {
		t.Fatalf("replace vertices: %s", err)
	}

	if renderer.vertices.buffer != grown {
		t.Fatal("smaller contents replaced the buffer")
	}

	if len(device.FakeQueue().BufferWrites) != writes+1 {
		t.Fatal("smaller contents not written in place")
	}
}

func TestIndexFormat(t *testing.T) {
	base, _ := newTestBase(t)

	build := func(format wgpu.IndexFormat) (*TextureRenderer, error) {
		return NewTextureRenderer(base, testWindow{}).
			CreatePipeline(1).
			CreateBuffers().
			CreateBindGroup(newTestTextures(t, base, 1)).
			SetIndexFormat(format).
			Build()
	}

	renderer, err := build(wgpu.IndexFormatUint16)
	if err != nil {
		t.Fatalf("build renderer: %s", err)
	}

	defer renderer.Release()

	err = renderer.ReplaceIndexBuffer([]uint32{0, 1, 70000})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	if renderer.IndexCount() != 0 {
		t.Fatal("index count changed on error")
	}

	wide, err := build(wgpu.IndexFormatUint32)
	if err != nil {
		t.Fatalf("build renderer: %s", err)
	}

	defer wide.Release()

	if err := wide.ReplaceIndexBuffer([]uint32{0, 1, 70000}); err != nil {
		t.Fatalf("replace indices: %s", err)
	}

	if wide.IndexCount() != 3 || wide.indices.Capacity() != 12 {
		t.Fatalf("unexpected index buffer: count=%d capacity=%d", wide.IndexCount(), wide.indices.Capacity())
	}

	if _, err := build(wgpu.IndexFormatUndefined); !errors.Is(err, ErrIndexFormat) {
		t.Fatalf("expected ErrIndexFormat, got %v", err)
	}
}

func TestSetTextureIndex(t *testing.T) {
	base, device := newTestBase(t)
	renderer := newTestRenderer(t, base, 2, 2)

	if err := renderer.SetTextureIndex(1); err != nil {
		t.Fatalf("set texture index: %s", err)
	}

	writes := device.FakeQueue().BufferWrites
	last := writes[len(writes)-1]
	if last.Buffer.Label != "TextureRenderer.Indirection" || last.Data[0] != 1 {
		t.Fatalf("unexpected write %+v", last)
	}

	if err := renderer.SetTextureIndex(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestResizeSwitchesPipelineOnFormatChange(t *testing.T) {
	base, device := newTestBase(t)
	renderer := newTestRenderer(t, base, 1, 1)

	config := base.Config()
	if err := renderer.Resize(config); err != nil {
		t.Fatalf("resize: %s", err)
	}

	if len(device.Pipelines) != 1 {
		t.Fatalf("same format created a pipeline")
	}

	config.Format = wgpu.TextureFormatRGBA8Unorm
	if err := renderer.Resize(config); err != nil {
		t.Fatalf("resize: %s", err)
	}

	if len(device.Pipelines) != 2 || device.Pipelines[1].Desc.Targets[0].Format != wgpu.TextureFormatRGBA8Unorm {
		t.Fatalf("pipeline not rebuilt for new format")
	}
}

func TestReloadShader(t *testing.T) {
	base, device := newTestBase(t)
	renderer := newTestRenderer(t, base, 1, 1)

	before := renderer.pipeline

	device.FailShader = true
	if err := renderer.ReloadShader("broken"); err == nil {
		t.Fatal("reload of failing shader succeeded")
	}

	if renderer.pipeline != before {
		t.Fatal("pipeline replaced after failed reload")
	}

	device.FailShader = false

	code, _ := GenerateShader(1, IndexingNonUniform)
	if err := renderer.ReloadShader(code); err != nil {
		t.Fatalf("reload shader: %s", err)
	}

	if renderer.pipeline == before {
		t.Fatal("pipeline not replaced")
	}

	last := device.Shaders[len(device.Shaders)-1]
	if !strings.Contains(last.Code, "in.index + indirection.index") {
		t.Fatal("reloaded shader not compiled")
	}
}

func TestReleaseRenderer(t *testing.T) {
	base, device := newTestBase(t)

	renderer, err := NewTextureRenderer(base, testWindow{}).
		CreatePipeline(1).
		CreateBuffers().
		CreateBindGroup(newTestTextures(t, base, 1)).
		Build()

	if err != nil {
		t.Fatalf("build renderer: %s", err)
	}

	renderer.Release()

	if live := device.LiveBuffers(); len(live) != 0 {
		t.Fatalf("buffers not released: %+v", live)
	}

	if !device.BindGroups[0].Released || !device.Pipelines[0].Released || !device.BindGroupLayouts[0].Released {
		t.Fatal("resources not released")
	}

	// textures are owned by the caller
	if device.Textures[0].Released {
		t.Fatal("texture released by renderer")
	}
}
