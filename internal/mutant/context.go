package mutant

// Context carries the active defects for one execution.
type Context struct {
	registry *Registry
	active   Set
}

// Active reports whether id is switched on. A nil context has nothing active.
func (c *Context) Active(id DefectID) bool {
	if c == nil {
		return false
	}
	if !c.registry.Has(id) {
		panic(&UndeclaredError{Subject: c.registry.subject, ID: id})
	}
	return c.active.Contains(id)
}

// ActiveSet returns the active defects.
func (c *Context) ActiveSet() Set {
	if c == nil {
		return Set{}
	}
	return c.active
}

// Choose evaluates defect when p's defect is active in c and baseline
// otherwise. The unselected function is never called.
//
// A point bound to a defect outside c's registry panics with
// *UndeclaredError; the runner treats that as a harness fault rather than a
// property violation.
func Choose[T any](c *Context, p Point, baseline, defect func() T) T {
	if c.Active(p.id) {
		return defect()
	}
	return baseline()
}

// When runs fn only when p's defect is active.
func When(c *Context, p Point, fn func()) {
	if c.Active(p.id) {
		fn()
	}
}
