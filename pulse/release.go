package pulse

import "github.com/oliverbestmann/tessel/pulse/driver"

// ReleaseGuard releases a resource unless Keep is called. Use it to clean up
// partially created resources on error paths.
type ReleaseGuard struct {
	delegate driver.Releaser
}

func NewReleaseGuard(delegate driver.Releaser) ReleaseGuard {
	return ReleaseGuard{delegate: delegate}
}

func (r *ReleaseGuard) Keep() {
	r.delegate = nil
}

func (r *ReleaseGuard) Release() {
	if r.delegate != nil {
		r.delegate.Release()
		r.delegate = nil
	}
}
