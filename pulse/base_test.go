package pulse

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/config"
	"github.com/oliverbestmann/tessel/pulse/driver"
	"github.com/oliverbestmann/tessel/pulse/driver/drivertest"
	"github.com/oliverbestmann/tessel/stage"
)

type testWindow struct {
	width, height uint32
}

func (w testWindow) Size() (uint32, uint32) {
	return w.width, w.height
}

func (w testWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return &wgpu.SurfaceDescriptor{Label: "test"}
}

func catchOrderError(t *testing.T, fn func()) *stage.OrderError {
	t.Helper()

	var orderErr *stage.OrderError

	func() {
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(*stage.OrderError)
				if !ok {
					panic(r)
				}

				orderErr = err
			}
		}()

		fn()
	}()

	return orderErr
}

func buildBase(t *testing.T, instance *drivertest.Instance) *Base {
	t.Helper()

	base, err := Init(instance, Options{}).
		WithWindow(testWindow{width: 640, height: 480}).
		CreateSurface().
		NegotiateAdapter().
		RequestDevice(nil, nil, DownlevelWebGL2Limits()).
		ConfigureSurface().
		Build()

	if err != nil {
		t.Fatalf("build base: %s", err)
	}

	return base
}

func TestBuildBase(t *testing.T) {
	instance := drivertest.NewInstance()
	base := buildBase(t, instance)

	config := base.Config()
	if config.Width != 640 || config.Height != 480 {
		t.Fatalf("unexpected size %dx%d", config.Width, config.Height)
	}

	if config.Format != wgpu.TextureFormatBGRA8UnormSrgb {
		t.Fatalf("expected first supported format, got %v", config.Format)
	}

	if config.PresentMode != wgpu.PresentModeFifo || config.AlphaMode != wgpu.CompositeAlphaModeOpaque {
		t.Fatalf("unexpected surface configuration %+v", config)
	}

	surface := instance.Surfaces[0]
	if len(surface.Configurations) != 1 || !reflect.DeepEqual(surface.LastConfiguration(), config) {
		t.Fatalf("surface not configured: %+v", surface.Configurations)
	}

	adapter := instance.Adapters[0]
	if len(adapter.DeviceRequests) != 1 {
		t.Fatalf("expected one device request, got %d", len(adapter.DeviceRequests))
	}

	// texture size limits follow the adapter
	limits := adapter.DeviceRequests[0].RequiredLimits
	if limits.MaxTextureDimension2D != adapter.LimitValues.MaxTextureDimension2D {
		t.Fatalf("texture limits not raised to adapter limits: %d", limits.MaxTextureDimension2D)
	}

	base.Release()

	if !surface.Released || !adapter.Released || !adapter.Devices[0].Released || !instance.Released {
		t.Fatal("resources not released")
	}
}

func TestBuildOutOfOrder(t *testing.T) {
	tests := []struct {
		name string
		run  func(b *BaseBuilder)
	}{
		{"device before surface", func(b *BaseBuilder) {
			b.WithWindow(testWindow{1, 1}).RequestDevice(nil, nil, wgpu.DefaultLimits())
		}},
		{"device without adapter", func(b *BaseBuilder) {
			b.WithWindow(testWindow{1, 1}).CreateSurface().RequestDevice(nil, nil, wgpu.DefaultLimits())
		}},
		{"surface without window", func(b *BaseBuilder) {
			b.CreateSurface()
		}},
		{"window twice", func(b *BaseBuilder) {
			b.WithWindow(testWindow{1, 1}).WithWindow(testWindow{1, 1})
		}},
		{"two adapter policies", func(b *BaseBuilder) {
			b.WithWindow(testWindow{1, 1}).CreateSurface().NegotiateAdapter().NegotiateAdapter()
		}},
		{"build early", func(b *BaseBuilder) {
			_, _ = b.WithWindow(testWindow{1, 1}).CreateSurface().Build()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance := drivertest.NewInstance()
			builder := Init(instance, Options{})

			err := catchOrderError(t, func() { tt.run(builder) })
			if err == nil {
				t.Fatal("expected an order violation")
			}

			for _, adapter := range instance.Adapters {
				if len(adapter.Devices) != 0 {
					t.Fatal("device created despite order violation")
				}
			}
		})
	}
}

func TestOrderErrorNamesStages(t *testing.T) {
	err := catchOrderError(t, func() {
		Init(drivertest.NewInstance(), Options{}).
			WithWindow(testWindow{1, 1}).
			RequestDevice(nil, nil, wgpu.DefaultLimits())
	})

	if err == nil || err.Current != "Window" || err.Target != "Adapter" || !err.Missing {
		t.Fatalf("unexpected error %#v", err)
	}
}

func TestSelectAdapter(t *testing.T) {
	instance := drivertest.NewInstance()

	headless := drivertest.NewAdapter("Headless")
	headless.Formats = nil

	integrated := drivertest.NewAdapter("Integrated")
	discrete := drivertest.NewAdapter("Discrete")

	instance.Adapters = []*drivertest.Adapter{headless, integrated, discrete}

	builder := Init(instance, Options{}).
		WithWindow(testWindow{100, 100}).
		CreateSurface().
		SelectAdapter(func(adapter driver.Adapter) bool { return true })

	if builder.adapter != integrated {
		t.Fatalf("expected the first compatible adapter, got %v", builder.adapter)
	}

	builder = Init(instance, Options{}).
		WithWindow(testWindow{100, 100}).
		CreateSurface().
		SelectAdapter(func(adapter driver.Adapter) bool { return adapter.Info().Name == "Headless" })

	_, err := builder.RequestDevice(nil, nil, wgpu.DefaultLimits()).ConfigureSurface().Build()
	if !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("expected ErrNoAdapter, got %v", err)
	}
}

func TestUnusedAdaptersAreReleased(t *testing.T) {
	byName := func(name string) func(driver.Adapter) bool {
		return func(adapter driver.Adapter) bool { return adapter.Info().Name == name }
	}

	cases := []struct {
		name     string
		opts     Options
		pick     func(driver.Adapter) bool
		selected string
	}{
		{name: "predicate", pick: byName("Discrete"), selected: "Discrete"},
		{name: "predicate without match", pick: byName("Voodoo")},
		{name: "adapter name", opts: Options{AdapterName: "discrete"}, selected: "Discrete"},
		{name: "adapter name without match", opts: Options{AdapterName: "voodoo"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			instance := drivertest.NewInstance()

			headless := drivertest.NewAdapter("Headless")
			headless.Formats = nil

			instance.Adapters = []*drivertest.Adapter{
				headless,
				drivertest.NewAdapter("Integrated"),
				drivertest.NewAdapter("Discrete"),
			}

			builder := Init(instance, tc.opts).WithWindow(testWindow{100, 100}).CreateSurface()
			if tc.pick != nil {
				builder.SelectAdapter(tc.pick)
			} else {
				builder.NegotiateAdapter()
			}

			base, err := builder.RequestDevice(nil, nil, wgpu.DefaultLimits()).ConfigureSurface().Build()
			if tc.selected == "" {
				if !errors.Is(err, ErrNoAdapter) {
					t.Fatalf("expected ErrNoAdapter, got %v", err)
				}
			} else {
				if err != nil {
					t.Fatal(err)
				}

				for _, adapter := range instance.Adapters {
					if adapter.Released != (adapter.Name != tc.selected) {
						t.Fatalf("adapter %q released=%v before base release", adapter.Name, adapter.Released)
					}
				}

				base.Release()
			}

			for _, adapter := range instance.Adapters {
				if !adapter.Released {
					t.Fatalf("adapter %q was not released", adapter.Name)
				}
			}
		})
	}
}

func TestNegotiateAdapter(t *testing.T) {
	instance := drivertest.NewInstance()
	instance.Adapters = append(instance.Adapters, drivertest.NewAdapter("Super GPU 9000"))

	t.Run("by name", func(t *testing.T) {
		builder := Init(instance, Options{AdapterName: "super gpu"}).
			WithWindow(testWindow{100, 100}).
			CreateSurface().
			NegotiateAdapter()

		if builder.adapter != instance.Adapters[1] {
			t.Fatalf("expected adapter by name, got %v", builder.adapter)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := Init(instance, Options{AdapterName: "voodoo"}).
			WithWindow(testWindow{100, 100}).
			CreateSurface().
			NegotiateAdapter().
			RequestDevice(nil, nil, wgpu.DefaultLimits()).
			ConfigureSurface().
			Build()

		if !errors.Is(err, ErrNoAdapter) {
			t.Fatalf("expected ErrNoAdapter, got %v", err)
		}
	})

	t.Run("by power preference", func(t *testing.T) {
		opts := Options{
			PowerPreference:      wgpu.PowerPreferenceHighPerformance,
			ForceFallbackAdapter: true,
		}

		Init(instance, opts).
			WithWindow(testWindow{100, 100}).
			CreateSurface().
			NegotiateAdapter()

		request := instance.AdapterRequests[len(instance.AdapterRequests)-1]
		if request.PowerPreference != opts.PowerPreference || !request.ForceFallbackAdapter {
			t.Fatalf("options not forwarded: %+v", request)
		}

		if request.CompatibleSurface == nil {
			t.Fatal("surface not forwarded")
		}
	})
}

func TestCapabilityFailures(t *testing.T) {
	t.Run("no adapter", func(t *testing.T) {
		instance := drivertest.NewInstance()
		instance.FailAdapter = true

		_, err := Init(instance, Options{}).
			WithWindow(testWindow{100, 100}).
			CreateSurface().
			NegotiateAdapter().
			RequestDevice(nil, nil, wgpu.DefaultLimits()).
			ConfigureSurface().
			Build()

		if !errors.Is(err, ErrNoAdapter) {
			t.Fatalf("expected ErrNoAdapter, got %v", err)
		}

		if !instance.Surfaces[0].Released {
			t.Fatal("surface not released")
		}
	})

	t.Run("device request", func(t *testing.T) {
		instance := drivertest.NewInstance()
		instance.Adapters[0].FailDevice = true

		_, err := Init(instance, Options{}).
			WithWindow(testWindow{100, 100}).
			CreateSurface().
			NegotiateAdapter().
			RequestDevice(nil, nil, wgpu.DefaultLimits()).
			ConfigureSurface().
			Build()

		if !errors.Is(err, drivertest.ErrInjected) {
			t.Fatalf("expected injected error, got %v", err)
		}

		if len(instance.Surfaces[0].Configurations) != 0 {
			t.Fatal("surface configured after failure")
		}
	})

	t.Run("incompatible surface", func(t *testing.T) {
		instance := drivertest.NewInstance()
		instance.Adapters[0].AlphaModes = nil

		_, err := Init(instance, Options{}).
			WithWindow(testWindow{100, 100}).
			CreateSurface().
			NegotiateAdapter().
			RequestDevice(nil, nil, wgpu.DefaultLimits()).
			ConfigureSurface().
			Build()

		if !errors.Is(err, ErrIncompatibleSurface) {
			t.Fatalf("expected ErrIncompatibleSurface, got %v", err)
		}
	})
}

func TestRequestDeviceFeatures(t *testing.T) {
	instance := drivertest.NewInstance()
	adapter := instance.Adapters[0]
	adapter.FeatureList = []wgpu.FeatureName{wgpu.FeatureNameDepthClipControl, wgpu.FeatureNameTimestampQuery}

	build := func(required, optional []wgpu.FeatureName) error {
		_, err := Init(instance, Options{}).
			WithWindow(testWindow{100, 100}).
			CreateSurface().
			NegotiateAdapter().
			RequestDevice(required, optional, wgpu.DefaultLimits()).
			ConfigureSurface().
			Build()

		return err
	}

	err := build(
		[]wgpu.FeatureName{wgpu.FeatureNameDepthClipControl},
		[]wgpu.FeatureName{wgpu.FeatureNameTimestampQuery, wgpu.FeatureNameTextureCompressionBC},
	)

	if err != nil {
		t.Fatal(err)
	}

	features := adapter.DeviceRequests[0].RequiredFeatures
	if len(features) != 2 || features[0] != wgpu.FeatureNameDepthClipControl || features[1] != wgpu.FeatureNameTimestampQuery {
		t.Fatalf("unexpected features %v", features)
	}

	err = build([]wgpu.FeatureName{wgpu.FeatureNameTextureCompressionBC}, nil)
	if !errors.Is(err, ErrMissingFeatures) {
		t.Fatalf("expected ErrMissingFeatures, got %v", err)
	}

	if len(adapter.DeviceRequests) != 1 {
		t.Fatal("device requested despite missing features")
	}
}

func TestResizeClampsToOne(t *testing.T) {
	instance := drivertest.NewInstance()
	base := buildBase(t, instance)

	width, height := base.Resize(0, 0)
	if width != 1 || height != 1 {
		t.Fatalf("expected 1x1, got %dx%d", width, height)
	}

	applied := instance.Surfaces[0].LastConfiguration()
	if applied.Width != 1 || applied.Height != 1 {
		t.Fatalf("surface configured with %dx%d", applied.Width, applied.Height)
	}

	base.Resize(1024, 0)

	applied = instance.Surfaces[0].LastConfiguration()
	if applied.Width != 1024 || applied.Height != 1 {
		t.Fatalf("surface configured with %dx%d", applied.Width, applied.Height)
	}
}

func TestAcquireFrameRetriesOnce(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		instance := drivertest.NewInstance()
		base := buildBase(t, instance)

		surface := instance.Surfaces[0]
		surface.FailAcquire = 1

		if _, err := base.AcquireFrame(); err != nil {
			t.Fatalf("acquire failed: %s", err)
		}

		if surface.AcquireCalls != 2 || len(surface.Configurations) != 2 {
			t.Fatalf("expected one retry, got %d calls and %d configurations",
				surface.AcquireCalls, len(surface.Configurations))
		}
	})

	t.Run("fails twice", func(t *testing.T) {
		instance := drivertest.NewInstance()
		base := buildBase(t, instance)

		surface := instance.Surfaces[0]
		surface.FailAcquire = 5

		_, err := base.AcquireFrame()
		if !errors.Is(err, ErrSurfaceLost) {
			t.Fatalf("expected ErrSurfaceLost, got %v", err)
		}

		// initial configuration plus exactly one reconfiguration
		if surface.AcquireCalls != 2 || len(surface.Configurations) != 2 {
			t.Fatalf("expected one retry, got %d calls and %d configurations",
				surface.AcquireCalls, len(surface.Configurations))
		}
	})
}

func TestLimits(t *testing.T) {
	limits := DownlevelWebGL2Limits()
	if limits.MaxTextureDimension2D != 2048 || limits.MaxStorageBuffersPerShaderStage != 0 {
		t.Fatalf("unexpected downlevel limits %+v", limits)
	}

	adapterLimits := wgpu.DefaultLimits()
	adapterLimits.MaxTextureDimension2D = 16384

	raised := UsingResolution(limits, adapterLimits)
	if raised.MaxTextureDimension2D != 16384 {
		t.Fatalf("texture dimension not raised: %d", raised.MaxTextureDimension2D)
	}

	if raised.MaxBindGroups != limits.MaxBindGroups {
		t.Fatal("unrelated limits changed")
	}
}

func TestParseOptions(t *testing.T) {
	backend, err := ParseBackends("vulkan")
	if err != nil || backend != wgpu.InstanceBackendVulkan {
		t.Fatalf("unexpected backend %v, %v", backend, err)
	}

	if _, err := ParseBackends("glide"); err == nil {
		t.Fatal("unknown backend accepted")
	}

	pref, err := ParsePowerPreference("low")
	if err != nil || pref != wgpu.PowerPreferenceLowPower {
		t.Fatalf("unexpected power preference %v, %v", pref, err)
	}

	opts, err := NewOptions(config.Graphics{Backend: "gl", AdapterName: "llvmpipe", TracePath: "/tmp/trace"})
	if err != nil {
		t.Fatal(err)
	}

	if opts.Backends != wgpu.InstanceBackendGL || opts.AdapterName != "llvmpipe" || opts.TracePath != "/tmp/trace" {
		t.Fatalf("unexpected options %+v", opts)
	}

	if _, err := NewOptions(config.Graphics{PowerPreference: "medium"}); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
