package instrument

import (
	"sync"

	"github.com/cbegin/loopify-go/internal/pattern"
)

// Registry owns one handle per role for the lifetime of an application.
type Registry struct {
	sampleRate int
	handles    map[pattern.Role]*Handle
	once       sync.Once
}

// CreateAll builds a handle for every role.
func CreateAll(sampleRate int) *Registry {
	reg := &Registry{
		sampleRate: sampleRate,
		handles:    make(map[pattern.Role]*Handle, len(pattern.Roles)),
	}
	for _, role := range pattern.Roles {
		reg.handles[role] = newHandle(role, sampleRate)
	}
	return reg
}

func (r *Registry) Handle(role pattern.Role) (*Handle, bool) {
	h, ok := r.handles[role]
	return h, ok
}

// Roles returns the registered roles in display order.
func (r *Registry) Roles() []pattern.Role {
	out := make([]pattern.Role, 0, len(r.handles))
	for _, role := range pattern.Roles {
		if _, ok := r.handles[role]; ok {
			out = append(out, role)
		}
	}
	return out
}

// Handles returns the handles in display order.
func (r *Registry) Handles() []*Handle {
	out := make([]*Handle, 0, len(r.handles))
	for _, role := range r.Roles() {
		out = append(out, r.handles[role])
	}
	return out
}

func (r *Registry) SampleRate() int { return r.sampleRate }

// DisposeAll releases every handle. Only the first call has an effect.
func (r *Registry) DisposeAll() {
	r.once.Do(func() {
		for _, h := range r.handles {
			h.Dispose()
		}
	})
}
