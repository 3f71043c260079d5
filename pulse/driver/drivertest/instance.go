// Package drivertest provides an in memory driver that records every call.
// It is used to test the graphics context and renderers without a GPU.
package drivertest

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

var ErrInjected = errors.New("injected failure")

type Instance struct {
	Adapters []*Adapter

	// DefaultAdapter is returned by RequestAdapter. If nil, the first adapter is used.
	DefaultAdapter *Adapter

	// FailAdapter lets RequestAdapter fail.
	FailAdapter bool

	Surfaces        []*Surface
	AdapterRequests []driver.AdapterOptions
	Released        bool
}

// NewInstance creates an instance with one default adapter.
func NewInstance() *Instance {
	return &Instance{Adapters: []*Adapter{NewAdapter("Fake GPU")}}
}

func (i *Instance) CreateSurface(desc *wgpu.SurfaceDescriptor) (driver.Surface, error) {
	surface := &Surface{Label: desc.Label}
	i.Surfaces = append(i.Surfaces, surface)
	return surface, nil
}

func (i *Instance) EnumerateAdapters() []driver.Adapter {
	adapters := make([]driver.Adapter, len(i.Adapters))
	for idx, adapter := range i.Adapters {
		adapters[idx] = adapter
	}

	return adapters
}

func (i *Instance) RequestAdapter(opts driver.AdapterOptions) (driver.Adapter, error) {
	i.AdapterRequests = append(i.AdapterRequests, opts)

	if i.FailAdapter || len(i.Adapters) == 0 {
		return nil, fmt.Errorf("request adapter: %w", ErrInjected)
	}

	if i.DefaultAdapter != nil {
		return i.DefaultAdapter, nil
	}

	return i.Adapters[0], nil
}

func (i *Instance) Report() string {
	return fmt.Sprintf("surfaces: %d, adapters: %d", len(i.Surfaces), len(i.Adapters))
}

func (i *Instance) Release() {
	i.Released = true
}

type Adapter struct {
	Name    string
	Backend string

	FeatureList []wgpu.FeatureName
	LimitValues wgpu.Limits

	// surface capabilities reported for this adapter
	Formats    []wgpu.TextureFormat
	AlphaModes []wgpu.CompositeAlphaMode

	// FailDevice lets RequestDevice fail.
	FailDevice bool

	DeviceRequests []driver.DeviceDescriptor
	Devices        []*Device
	Released       bool
}

func NewAdapter(name string) *Adapter {
	limits := wgpu.DefaultLimits()

	return &Adapter{
		Name:        name,
		Backend:     "Vulkan",
		LimitValues: limits,
		Formats:     []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA8Unorm},
		AlphaModes:  []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque},
	}
}

func (a *Adapter) Info() driver.AdapterInfo {
	return driver.AdapterInfo{
		Name:    a.Name,
		Backend: a.Backend,
		Type:    "DiscreteGPU",
		Driver:  "drivertest",
	}
}

func (a *Adapter) Features() []wgpu.FeatureName {
	return a.FeatureList
}

func (a *Adapter) Limits() wgpu.Limits {
	return a.LimitValues
}

func (a *Adapter) RequestDevice(desc driver.DeviceDescriptor) (driver.Device, error) {
	a.DeviceRequests = append(a.DeviceRequests, desc)

	if a.FailDevice {
		return nil, fmt.Errorf("request device: %w", ErrInjected)
	}

	device := NewDevice(desc.RequiredLimits)
	a.Devices = append(a.Devices, device)

	return device, nil
}

func (a *Adapter) Release() {
	a.Released = true
}

type Surface struct {
	Label string

	// FailAcquire is the number of calls to CurrentTexture that fail
	// before acquisition succeeds again.
	FailAcquire int

	Configurations []wgpu.SurfaceConfiguration
	AcquireCalls   int
	Presents       int
	Released       bool

	current wgpu.SurfaceConfiguration
}

func (s *Surface) Capabilities(adapter driver.Adapter) driver.SurfaceCapabilities {
	a := adapter.(*Adapter)

	return driver.SurfaceCapabilities{
		Formats:      a.Formats,
		AlphaModes:   a.AlphaModes,
		PresentModes: []wgpu.PresentMode{wgpu.PresentModeFifo},
	}
}

func (s *Surface) Configure(adapter driver.Adapter, device driver.Device, config wgpu.SurfaceConfiguration) {
	s.current = config
	s.Configurations = append(s.Configurations, config)
}

// LastConfiguration returns the configuration that was applied last.
func (s *Surface) LastConfiguration() wgpu.SurfaceConfiguration {
	return s.current
}

func (s *Surface) CurrentTexture() (driver.Texture, error) {
	s.AcquireCalls++

	if s.FailAcquire > 0 {
		s.FailAcquire--
		return nil, fmt.Errorf("acquire surface texture: %w", ErrInjected)
	}

	return &Texture{
		Desc: wgpu.TextureDescriptor{
			Label:  "surface",
			Format: s.current.Format,
			Size: wgpu.Extent3D{
				Width:              s.current.Width,
				Height:             s.current.Height,
				DepthOrArrayLayers: 1,
			},
		},
	}, nil
}

func (s *Surface) Present() {
	s.Presents++
}

func (s *Surface) Release() {
	s.Released = true
}
