package commands

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

type PipelineConfig interface {
	comparable

	// Specialize creates a specialized pipeline for the
	// current PipelineConfig
	Specialize(dev driver.Device) (driver.RenderPipeline, error)
}

// PipelineCache holds the most recently used pipelines of a device. Evicted
// pipelines are released.
type PipelineCache[C PipelineConfig] struct {
	device driver.Device
	cache  *lru.Cache[C, driver.RenderPipeline]
}

func NewPipelineCache[C PipelineConfig](device driver.Device) *PipelineCache[C] {
	cache, _ := lru.NewWithEvict[C, driver.RenderPipeline](16, releasePipelineOnEviction[C])

	return &PipelineCache[C]{
		device: device,
		cache:  cache,
	}
}

func (p *PipelineCache[C]) Get(conf C) (driver.RenderPipeline, error) {
	cached, ok := p.cache.Get(conf)
	if ok {
		return cached, nil
	}

	pipeline, err := conf.Specialize(p.device)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	p.cache.Add(conf, pipeline)

	return pipeline, nil
}

func (p *PipelineCache[C]) Len() int {
	return p.cache.Len()
}

// Purge releases all cached pipelines.
func (p *PipelineCache[C]) Purge() {
	p.cache.Purge()
}

func releasePipelineOnEviction[C any](_config C, pipeline driver.RenderPipeline) {
	pipeline.Release()
}
