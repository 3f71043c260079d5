package pulse

//go:generate go tool stringer -type=BaseStage -trimprefix=Stage

// BaseStage is the construction stage of a BaseBuilder.
type BaseStage int

const (
	StageInstance BaseStage = iota
	StageWindow
	StageSurface
	StageAdapter
	StageDevice
	StageSurfaceConfiguration
	StageBuild
)
