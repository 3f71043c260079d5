package commands

//go:generate go tool stringer -type=RendererStage -trimprefix=Stage

// RendererStage is the construction stage of a TextureRendererBuilder.
type RendererStage int

const (
	StageContext RendererStage = iota
	StagePipeline
	StageBuffers
	StageBindGroup
	StageIndexFormat
	StageBuild
)
