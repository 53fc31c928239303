package mutant

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUndeclared marks a reference to a defect the registry does not know.
	ErrUndeclared = errors.New("undeclared defect")

	// ErrConflict marks a re-declaration whose metadata differs from the first.
	ErrConflict = errors.New("conflicting defect declaration")

	// ErrInvalidID marks an empty ID or one containing KeySeparator.
	ErrInvalidID = errors.New("invalid defect id")
)

// UndeclaredError reports which defect was referenced and where.
type UndeclaredError struct {
	Subject string
	ID      DefectID
}

func (e *UndeclaredError) Error() string {
	return fmt.Sprintf("%s: %s: %q", e.Subject, ErrUndeclared, e.ID)
}

func (e *UndeclaredError) Unwrap() error {
	return ErrUndeclared
}

// Defect is the metadata attached to a declared DefectID.
type Defect struct {
	ID          DefectID `json:"id"`
	Subject     string   `json:"subject"`
	Description string   `json:"description,omitempty"`
}

// Point is an injection site bound to a defect at subject-load time.
type Point struct {
	id DefectID
}

// ID returns the defect the point is bound to.
func (p Point) ID() DefectID {
	return p.id
}

// Builder collects declarations for one subject. It is not safe for
// concurrent use; each worker builds its own.
type Builder struct {
	subject  string
	defects  map[DefectID]Defect
	order    []DefectID
	points   []DefectID
	problems []error
}

// NewBuilder starts a registry for subject.
func NewBuilder(subject string) *Builder {
	return &Builder{
		subject: subject,
		defects: make(map[DefectID]Defect),
	}
}

// Declare registers id with an optional description and returns id.
// Declaring the same id again with the same description is a no-op.
func (b *Builder) Declare(id DefectID, description string) DefectID {
	if id == "" || strings.Contains(string(id), KeySeparator) {
		b.problems = append(b.problems, fmt.Errorf("%s: %w: %q", b.subject, ErrInvalidID, id))
		return id
	}
	if prev, ok := b.defects[id]; ok {
		if prev.Description != description {
			b.problems = append(b.problems, fmt.Errorf("%s: %w: %q declared as %q and %q",
				b.subject, ErrConflict, id, prev.Description, description))
		}
		return id
	}
	b.defects[id] = Defect{ID: id, Subject: b.subject, Description: description}
	b.order = append(b.order, id)
	return id
}

// Point binds an injection site to id. The reference is checked by Build,
// so points may be created before the matching Declare.
func (b *Builder) Point(id DefectID) Point {
	b.points = append(b.points, id)
	return Point{id: id}
}

// Build validates the declarations and returns the immutable registry.
// All problems are reported together.
func (b *Builder) Build() (*Registry, error) {
	problems := slices.Clone(b.problems)
	for _, id := range b.points {
		if _, ok := b.defects[id]; !ok {
			problems = append(problems, &UndeclaredError{Subject: b.subject, ID: id})
		}
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	ids := slices.Clone(b.order)
	slices.Sort(ids)
	defects := make(map[DefectID]Defect, len(b.defects))
	for id, d := range b.defects {
		defects[id] = d
	}
	return &Registry{subject: b.subject, ids: ids, defects: defects}, nil
}

// Registry is the immutable catalog of a subject's defects.
type Registry struct {
	subject string
	ids     []DefectID
	defects map[DefectID]Defect
}

// Subject returns the declaring subject's name.
func (r *Registry) Subject() string {
	return r.subject
}

// IDs returns every declared defect in sorted order.
func (r *Registry) IDs() []DefectID {
	return slices.Clone(r.ids)
}

// Len returns the number of declared defects.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Has reports whether id is declared.
func (r *Registry) Has(id DefectID) bool {
	_, ok := r.defects[id]
	return ok
}

// Lookup returns the metadata for id.
func (r *Registry) Lookup(id DefectID) (Defect, bool) {
	d, ok := r.defects[id]
	return d, ok
}

// Defects returns all metadata in sorted ID order.
func (r *Registry) Defects() []Defect {
	out := make([]Defect, len(r.ids))
	for i, id := range r.ids {
		out[i] = r.defects[id]
	}
	return out
}

// Validate checks that every member of s is declared.
func (r *Registry) Validate(s Set) error {
	var problems []error
	for _, id := range s.ids {
		if !r.Has(id) {
			problems = append(problems, &UndeclaredError{Subject: r.subject, ID: id})
		}
	}
	return errors.Join(problems...)
}

// NewContext returns a context with active as its defect set.
func (r *Registry) NewContext(active Set) (*Context, error) {
	if err := r.Validate(active); err != nil {
		return nil, err
	}
	return &Context{registry: r, active: active}, nil
}
