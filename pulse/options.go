package pulse

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/config"
)

// Options control instance creation and adapter negotiation.
type Options struct {
	Backends        wgpu.InstanceBackend
	PowerPreference wgpu.PowerPreference

	// AdapterName selects an adapter by a case insensitive substring of its name.
	AdapterName string

	ForceFallbackAdapter bool

	// TracePath is the directory to write an api trace to.
	TracePath string
}

func NewOptions(cfg config.Graphics) (Options, error) {
	backends, err := ParseBackends(cfg.Backend)
	if err != nil {
		return Options{}, err
	}

	powerPreference, err := ParsePowerPreference(cfg.PowerPreference)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Backends:             backends,
		PowerPreference:      powerPreference,
		AdapterName:          cfg.AdapterName,
		ForceFallbackAdapter: cfg.ForceFallbackAdapter,
		TracePath:            cfg.TracePath,
	}, nil
}

func ParseBackends(name string) (wgpu.InstanceBackend, error) {
	switch name {
	case "", "primary":
		return wgpu.InstanceBackendPrimary, nil
	case "all":
		return wgpu.InstanceBackendAll, nil
	case "secondary":
		return wgpu.InstanceBackendSecondary, nil
	case "vulkan":
		return wgpu.InstanceBackendVulkan, nil
	case "metal":
		return wgpu.InstanceBackendMetal, nil
	case "dx12":
		return wgpu.InstanceBackendDX12, nil
	case "gl":
		return wgpu.InstanceBackendGL, nil
	default:
		return 0, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, name)
	}
}

func ParsePowerPreference(name string) (wgpu.PowerPreference, error) {
	switch name {
	case "":
		return wgpu.PowerPreferenceUndefined, nil
	case "low":
		return wgpu.PowerPreferenceLowPower, nil
	case "high":
		return wgpu.PowerPreferenceHighPerformance, nil
	default:
		return 0, fmt.Errorf("%w: unknown power preference %q", config.ErrInvalid, name)
	}
}
