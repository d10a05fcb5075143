package renderer

import "sync"

// TargetLease is scoped ownership of a render target. Release frees the target exactly once,
// however many times it is called and from whichever exit path.
type TargetLease struct {
	once    sync.Once
	backend Backend
	target  RenderTarget
	err     error
}

// NewTargetLease wraps a target created by backend.
//
// Parameters:
//   - backend: the backend that created the target
//   - target: the target to own
//
// Returns:
//   - *TargetLease: the lease
func NewTargetLease(backend Backend, target RenderTarget) *TargetLease {
	return &TargetLease{backend: backend, target: target}
}

// Target returns the leased target.
func (l *TargetLease) Target() RenderTarget {
	return l.target
}

// Release frees the target on the first call and returns that call's result on every call.
func (l *TargetLease) Release() error {
	l.once.Do(func() {
		l.err = l.backend.ReleaseTarget(l.target)
	})
	return l.err
}
