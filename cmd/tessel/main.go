package main

import (
	_ "embed"
	"flag"
	"log/slog"
	"os"

	"github.com/oliverbestmann/tessel/config"
	"github.com/oliverbestmann/tessel/glm"
	"github.com/oliverbestmann/tessel/logging"
	"github.com/oliverbestmann/tessel/orion"
	"github.com/oliverbestmann/tessel/pulse"
	"github.com/oliverbestmann/tessel/pulse/commands"
	"github.com/pkg/profile"
)

//go:embed blue1x1.png
var _blue []byte

const noiseSize = 256

// the triangle of the demo, texture coordinates intentionally run outside of [0, 1]
var triangle = []commands.Vertex{
	{Position: glm.Vec2f{0, -1}, TexCoord: glm.Vec2f{0, -1}, Index: 0},
	{Position: glm.Vec2f{1, 1}, TexCoord: glm.Vec2f{1, 1}, Index: 0},
	{Position: glm.Vec2f{-1, 1}, TexCoord: glm.Vec2f{-1, 1}, Index: 0},
}

var triangleIndices = []uint32{2, 1, 0}

func main() {
	configPath := flag.String("config", "", "path to a toml config file")
	profileMode := flag.String("profile", "", "enable profiling: cpu or mem")
	flag.Parse()

	if err := run(*configPath, *profileMode); err != nil {
		slog.Error("Failed to run", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(configPath, profileMode string) error {
	cfg, err := config.Load(configPath, ".env")
	if err != nil {
		return err
	}

	if profileMode != "" {
		cfg.Profile = profileMode
	}

	logs, err := logging.Setup(cfg.Log)
	orion.Handle(err, "setup logging to %q", cfg.Log.File)

	defer logs.Close()

	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	}

	return orion.Run(orion.RunOptions{
		Config:   cfg,
		Textures: loadTextures,
		Scene:    buildScene,
	})
}

func loadTextures(base *pulse.Base) ([]*pulse.Texture, error) {
	blue, err := pulse.TextureFromBytes(base, "blue", _blue)
	if err != nil {
		return nil, err
	}

	noise, err := pulse.TextureFromImage(base, "noise", noiseImage(noiseSize))
	if err != nil {
		blue.Release()
		return nil, err
	}

	return []*pulse.Texture{blue, noise}, nil
}

func buildScene(renderer *commands.TextureRenderer) error {
	if err := renderer.ReplaceVertexBuffer(triangle); err != nil {
		return err
	}

	return renderer.ReplaceIndexBuffer(triangleIndices)
}
