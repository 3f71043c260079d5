package config

import (
	"fmt"
	"strconv"
	"strings"
)

// LookupFunc has the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if err := c.Graphics.ApplyEnv(lookup); err != nil {
		return err
	}

	if value, ok := lookup("TESSEL_INDEXING"); ok {
		c.Renderer.Indexing = strings.ToLower(value)
	}

	if value, ok := lookup("TESSEL_SHADER"); ok {
		c.Renderer.ShaderPath = value
	}

	if value, ok := lookup("TESSEL_LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(value)
	}

	if value, ok := lookup("TESSEL_LOG_FILE"); ok {
		c.Log.File = value
	}

	return nil
}

func (g *Graphics) ApplyEnv(lookup LookupFunc) error {
	if value, ok := lookup("WGPU_BACKEND"); ok {
		g.Backend = strings.ToLower(value)
	}

	if value, ok := lookup("WGPU_POWER_PREF"); ok {
		g.PowerPreference = strings.ToLower(value)
	}

	if value, ok := lookup("WGPU_ADAPTER_NAME"); ok {
		g.AdapterName = value
	}

	if value, ok := lookup("WGPU_FORCE_FALLBACK_ADAPTER"); ok {
		fallback, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: WGPU_FORCE_FALLBACK_ADAPTER: %w", ErrInvalid, err)
		}

		g.ForceFallbackAdapter = fallback
	}

	if value, ok := lookup("WGPU_TRACE"); ok {
		g.TracePath = value
	}

	if value, ok := lookup("WGPU_LOG_LEVEL"); ok {
		g.LogLevel = value
	}

	return nil
}
