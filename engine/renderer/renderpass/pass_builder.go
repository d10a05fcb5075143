package renderpass

import "github.com/Carmen-Shannon/oxy-paint/engine/renderer"

// PassBuilderOption is a functional option applied to a pass during construction via NewPass.
type PassBuilderOption func(*pass)

// WithPassName sets the name the pass reports and logs with.
//
// Parameters:
//   - name: the pass name
//
// Returns:
//   - PassBuilderOption: a function that applies the name option to a pass
func WithPassName(name string) PassBuilderOption {
	return func(p *pass) {
		p.name = name
	}
}

// WithPassBackend gives the pass a backend before its first frame so Capture works immediately.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - PassBuilderOption: a function that applies the backend option to a pass
func WithPassBackend(b renderer.Backend) PassBuilderOption {
	return func(p *pass) {
		p.backend = b
	}
}
