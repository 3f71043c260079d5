// Package wgpudrv implements the driver interfaces on top of webgpu.
package wgpudrv

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

type instance struct {
	ref *wgpu.Instance
}

// NewInstance creates a new webgpu instance restricted to the given backends.
func NewInstance(backends wgpu.InstanceBackend) driver.Instance {
	ref := wgpu.CreateInstance(&wgpu.InstanceDescriptor{
		Backends: backends,
	})

	return &instance{ref: ref}
}

func (i *instance) CreateSurface(desc *wgpu.SurfaceDescriptor) (driver.Surface, error) {
	ref := i.ref.CreateSurface(desc)
	if ref == nil {
		return nil, errors.New("create surface: no surface returned")
	}

	return &surface{ref: ref}, nil
}

func (i *instance) EnumerateAdapters() []driver.Adapter {
	var adapters []driver.Adapter
	for _, ref := range i.ref.EnumerateAdapters(nil) {
		adapters = append(adapters, &adapter{ref: ref})
	}

	return adapters
}

func (i *instance) RequestAdapter(opts driver.AdapterOptions) (driver.Adapter, error) {
	req := &wgpu.RequestAdapterOptions{
		PowerPreference:      opts.PowerPreference,
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
	}

	if opts.CompatibleSurface != nil {
		req.CompatibleSurface = unwrapSurface(opts.CompatibleSurface)
	}

	ref, err := i.ref.RequestAdapter(req)
	if err != nil {
		return nil, err
	}

	return &adapter{ref: ref}, nil
}

func (i *instance) Report() string {
	return fmt.Sprintf("%+v", i.ref.GenerateReport())
}

func (i *instance) Release() {
	i.ref.Release()
}

type adapter struct {
	ref *wgpu.Adapter
}

func (a *adapter) Info() driver.AdapterInfo {
	info := a.ref.GetInfo()

	return driver.AdapterInfo{
		Name:    info.Name,
		Backend: fmt.Sprint(info.BackendType),
		Type:    fmt.Sprint(info.AdapterType),
		Driver:  info.DriverDescription,
	}
}

func (a *adapter) Features() []wgpu.FeatureName {
	return a.ref.EnumerateFeatures()
}

func (a *adapter) Limits() wgpu.Limits {
	return a.ref.GetLimits().Limits
}

func (a *adapter) RequestDevice(desc driver.DeviceDescriptor) (driver.Device, error) {
	ref, err := a.ref.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            desc.Label,
		RequiredFeatures: desc.RequiredFeatures,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: desc.RequiredLimits,
		},
		TracePath: desc.TracePath,
	})

	if err != nil {
		return nil, err
	}

	return &device{ref: ref, queue: &queue{ref: ref.GetQueue()}}, nil
}

func (a *adapter) Release() {
	a.ref.Release()
}

type surface struct {
	ref *wgpu.Surface
}

func (s *surface) Capabilities(a driver.Adapter) driver.SurfaceCapabilities {
	caps := s.ref.GetCapabilities(unwrapAdapter(a))

	return driver.SurfaceCapabilities{
		Formats:      caps.Formats,
		AlphaModes:   caps.AlphaModes,
		PresentModes: caps.PresentModes,
	}
}

func (s *surface) Configure(a driver.Adapter, d driver.Device, config wgpu.SurfaceConfiguration) {
	s.ref.Configure(unwrapAdapter(a), unwrapDevice(d), &config)
}

func (s *surface) CurrentTexture() (driver.Texture, error) {
	ref, err := s.ref.GetCurrentTexture()
	if err != nil {
		return nil, err
	}

	return &texture{ref: ref}, nil
}

func (s *surface) Present() {
	s.ref.Present()
}

func (s *surface) Release() {
	s.ref.Release()
}

func unwrapSurface(s driver.Surface) *wgpu.Surface {
	return s.(*surface).ref
}

func unwrapAdapter(a driver.Adapter) *wgpu.Adapter {
	return a.(*adapter).ref
}

func unwrapDevice(d driver.Device) *wgpu.Device {
	return d.(*device).ref
}
