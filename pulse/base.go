package pulse

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/pulse/driver"
	"github.com/oliverbestmann/tessel/stage"
)

var ErrNoAdapter = errors.New("no compatible adapter found")
var ErrMissingFeatures = errors.New("adapter does not support required features")
var ErrIncompatibleSurface = errors.New("surface is not supported by the adapter")
var ErrSurfaceLost = errors.New("surface texture could not be acquired")

// Window is the part of a native window the graphics context needs.
type Window interface {
	Size() (uint32, uint32)
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// Base encapsulates the low level state of the graphics context,
// this includes the Device, Surface and active Adapter.
type Base struct {
	Instance driver.Instance
	Surface  driver.Surface
	Adapter  driver.Adapter
	Device   driver.Device
	Queue    driver.Queue

	config wgpu.SurfaceConfiguration
}

// Config returns the surface configuration that is currently applied.
func (b *Base) Config() wgpu.SurfaceConfiguration {
	return b.config
}

// Resize applies the new size to the surface. The size is clamped to at least 1x1,
// the applied size is returned.
func (b *Base) Resize(width, height uint32) (uint32, uint32) {
	b.config.Width = max(width, 1)
	b.config.Height = max(height, 1)

	b.Reconfigure()

	return b.config.Width, b.config.Height
}

// Reconfigure applies the current configuration to the surface again.
func (b *Base) Reconfigure() {
	b.Surface.Configure(b.Adapter, b.Device, b.config)
}

// AcquireFrame returns the next texture of the swapchain. If acquisition fails, the
// surface is reconfigured and acquisition is retried once.
func (b *Base) AcquireFrame() (driver.Texture, error) {
	texture, err := b.Surface.CurrentTexture()
	if err == nil {
		return texture, nil
	}

	slog.Warn("Failed to acquire next surface texture, reconfigure surface", slog.String("err", err.Error()))

	b.Reconfigure()

	texture, err = b.Surface.CurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurfaceLost, err)
	}

	return texture, nil
}

// Report returns a report of the resources held by the driver.
func (b *Base) Report() string {
	return b.Instance.Report()
}

func (b *Base) Release() {
	releaseSamplers(b.Device)

	releaseAll(b.Queue, b.Device, b.Adapter, b.Surface, b.Instance)

	*b = Base{}
}

// BaseBuilder creates a Base step by step. Steps must be called in the order
// Init, WithWindow, CreateSurface, SelectAdapter or NegotiateAdapter, RequestDevice,
// ConfigureSurface and Build. Calling a step out of order panics with a *stage.OrderError.
//
// The first error stops all further steps and is returned by Build.
type BaseBuilder struct {
	stage *stage.Tracker[BaseStage]
	opts  Options
	err   error

	instance driver.Instance
	window   Window
	surface  driver.Surface
	adapter  driver.Adapter
	device   driver.Device
	queue    driver.Queue
	config   wgpu.SurfaceConfiguration
}

func Init(instance driver.Instance, opts Options) *BaseBuilder {
	return &BaseBuilder{
		stage:    stage.New(StageInstance),
		opts:     opts,
		instance: instance,
	}
}

// step verifies that the previous stage was reached and advances to the next one.
// It returns false if a previous step failed.
func (b *BaseBuilder) step(previous, next BaseStage) bool {
	b.stage.Require(previous)
	b.stage.Advance(next)
	return b.err == nil
}

func (b *BaseBuilder) fail(err error) *BaseBuilder {
	b.err = err
	return b
}

func (b *BaseBuilder) WithWindow(window Window) *BaseBuilder {
	if !b.step(StageInstance, StageWindow) {
		return b
	}

	b.window = window
	return b
}

func (b *BaseBuilder) CreateSurface() *BaseBuilder {
	if !b.step(StageWindow, StageSurface) {
		return b
	}

	surface, err := b.instance.CreateSurface(b.window.SurfaceDescriptor())
	if err != nil {
		return b.fail(fmt.Errorf("create surface: %w", err))
	}

	b.surface = surface
	return b
}

// SelectAdapter uses the first enumerated adapter that can present to the
// surface and matches the predicate.
func (b *BaseBuilder) SelectAdapter(predicate func(adapter driver.Adapter) bool) *BaseBuilder {
	if !b.step(StageSurface, StageAdapter) {
		return b
	}

	adapter := b.pickAdapter(predicate)
	if adapter == nil {
		return b.fail(fmt.Errorf("%w: no adapter matches the predicate", ErrNoAdapter))
	}

	return b.useAdapter(adapter)
}

// NegotiateAdapter selects the adapter named in the options or, if no name is given,
// lets the driver pick an adapter using the configured power preference.
func (b *BaseBuilder) NegotiateAdapter() *BaseBuilder {
	if !b.step(StageSurface, StageAdapter) {
		return b
	}

	if b.opts.AdapterName != "" {
		name := strings.ToLower(b.opts.AdapterName)

		adapter := b.pickAdapter(func(adapter driver.Adapter) bool {
			return strings.Contains(strings.ToLower(adapter.Info().Name), name)
		})

		if adapter == nil {
			return b.fail(fmt.Errorf("%w: no adapter named %q", ErrNoAdapter, b.opts.AdapterName))
		}

		return b.useAdapter(adapter)
	}

	adapter, err := b.instance.RequestAdapter(driver.AdapterOptions{
		PowerPreference:      b.opts.PowerPreference,
		ForceFallbackAdapter: b.opts.ForceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})

	if err != nil {
		return b.fail(fmt.Errorf("%w: %w", ErrNoAdapter, err))
	}

	return b.useAdapter(adapter)
}

// pickAdapter returns the first enumerated adapter that can present to the
// surface and matches. All other adapters are released.
func (b *BaseBuilder) pickAdapter(match func(adapter driver.Adapter) bool) driver.Adapter {
	var picked driver.Adapter

	for _, adapter := range b.instance.EnumerateAdapters() {
		if picked != nil || len(b.surface.Capabilities(adapter).Formats) == 0 || !match(adapter) {
			adapter.Release()
			continue
		}

		picked = adapter
	}

	return picked
}

func (b *BaseBuilder) useAdapter(adapter driver.Adapter) *BaseBuilder {
	info := adapter.Info()

	slog.Info(
		"Using adapter",
		slog.String("name", info.Name),
		slog.String("backend", info.Backend),
		slog.String("type", info.Type),
	)

	b.adapter = adapter
	return b
}

// RequestDevice requests a device with all required features and the optional features
// the adapter supports. The texture dimension limits are raised to the adapter's limits.
func (b *BaseBuilder) RequestDevice(required, optional []wgpu.FeatureName, limits wgpu.Limits) *BaseBuilder {
	if !b.step(StageAdapter, StageDevice) {
		return b
	}

	supported := b.adapter.Features()

	var missing []wgpu.FeatureName
	for _, feature := range required {
		if !slices.Contains(supported, feature) {
			missing = append(missing, feature)
		}
	}

	if len(missing) > 0 {
		return b.fail(fmt.Errorf("%w: %v", ErrMissingFeatures, missing))
	}

	features := slices.Clone(required)
	for _, feature := range optional {
		if slices.Contains(supported, feature) && !slices.Contains(features, feature) {
			features = append(features, feature)
		}
	}

	device, err := b.adapter.RequestDevice(driver.DeviceDescriptor{
		Label:            "tessel",
		RequiredFeatures: features,
		RequiredLimits:   UsingResolution(limits, b.adapter.Limits()),
		TracePath:        b.opts.TracePath,
	})

	if err != nil {
		return b.fail(fmt.Errorf("request device: %w", err))
	}

	b.device = device
	b.queue = device.Queue()

	return b
}

// ConfigureSurface configures the surface with the first supported format and alpha mode
// and vsync enabled.
func (b *BaseBuilder) ConfigureSurface() *BaseBuilder {
	if !b.step(StageDevice, StageSurfaceConfiguration) {
		return b
	}

	caps := b.surface.Capabilities(b.adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return b.fail(ErrIncompatibleSurface)
	}

	slog.Debug("Available surface formats", slog.Any("formats", caps.Formats))

	width, height := b.window.Size()

	b.config = wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       max(width, 1),
		Height:      max(height, 1),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}

	b.surface.Configure(b.adapter, b.device, b.config)

	return b
}

// Build returns the configured Base. If any step failed, all resources created
// so far are released and the error of the failed step is returned.
func (b *BaseBuilder) Build() (*Base, error) {
	b.stage.Require(StageSurfaceConfiguration)
	b.stage.Advance(StageBuild)

	if b.err != nil {
		releaseAll(b.queue, b.device, b.adapter, b.surface)
		return nil, b.err
	}

	return &Base{
		Instance: b.instance,
		Surface:  b.surface,
		Adapter:  b.adapter,
		Device:   b.device,
		Queue:    b.queue,
		config:   b.config,
	}, nil
}

func releaseAll(resources ...driver.Releaser) {
	for _, res := range resources {
		if res == nil {
			continue
		}

		res.Release()
	}
}
