package pulse

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

type samplerKey struct {
	device driver.Device
	desc   wgpu.SamplerDescriptor
}

var samplerCache, _ = lru.NewWithEvict[samplerKey, driver.Sampler](16, samplerCacheOnEvict)

func samplerCacheOnEvict(key samplerKey, value driver.Sampler) {
	value.Release()
}

// DefaultSamplerDescriptor clamps to the edge and filters linearly when magnifying.
var DefaultSamplerDescriptor = wgpu.SamplerDescriptor{
	Label:         "Texture.Sampler",
	AddressModeU:  wgpu.AddressModeClampToEdge,
	AddressModeV:  wgpu.AddressModeClampToEdge,
	AddressModeW:  wgpu.AddressModeClampToEdge,
	MagFilter:     wgpu.FilterModeLinear,
	MinFilter:     wgpu.FilterModeNearest,
	MipmapFilter:  wgpu.MipmapFilterModeNearest,
	LodMinClamp:   0,
	LodMaxClamp:   32,
	MaxAnisotropy: 1,
	Compare:       wgpu.CompareFunctionUndefined,
}

// CachedSampler returns a sampler matching your description. The sampler may be cached,
// you must not call Release() on it.
func CachedSampler(dev driver.Device, desc wgpu.SamplerDescriptor) (driver.Sampler, error) {
	key := samplerKey{device: dev, desc: desc}

	cachedSampler, ok := samplerCache.Get(key)
	if ok {
		return cachedSampler, nil
	}

	sampler, err := dev.CreateSampler(desc)
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	samplerCache.Add(key, sampler)

	return sampler, nil
}

// releaseSamplers releases all cached samplers of the given device
func releaseSamplers(dev driver.Device) {
	for _, key := range samplerCache.Keys() {
		if key.device == dev {
			samplerCache.Remove(key)
		}
	}
}
