package glimpse

//go:generate go tool stringer -type=Key -trimprefix=Key

type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyR
	KeyS
	KeyF
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)
