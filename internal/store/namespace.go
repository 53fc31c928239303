package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Namespace scopes records to one subject, combo size and shrink mode.
type Namespace struct {
	Subject   string
	ComboSize int
	Shrink    bool
}

var sizeNames = map[int]string{
	1: "single",
	2: "double",
	3: "triple",
	4: "quadruple",
}

// String returns the namespace name, e.g. "quicksort_single_unshrunk".
func (ns Namespace) String() string {
	size, ok := sizeNames[ns.ComboSize]
	if !ok {
		size = "x" + strconv.Itoa(ns.ComboSize)
	}
	mode := "unshrunk"
	if ns.Shrink {
		mode = "shrunk"
	}
	return ns.Subject + "_" + size + "_" + mode
}

// WithShrink returns ns with the shrink mode replaced.
func (ns Namespace) WithShrink(shrink bool) Namespace {
	ns.Shrink = shrink
	return ns
}

var subjectName = regexp.MustCompile(`^[a-z][a-z0-9]*$`)

// Validate checks that ns can be named unambiguously.
func (ns Namespace) Validate() error {
	if !subjectName.MatchString(ns.Subject) {
		return fmt.Errorf("namespace: invalid subject name %q", ns.Subject)
	}
	if ns.ComboSize < 1 {
		return fmt.Errorf("namespace: combo size must be positive, got %d", ns.ComboSize)
	}
	return nil
}

// ParseNamespace is the inverse of Namespace.String.
func ParseNamespace(name string) (Namespace, error) {
	parts := strings.Split(name, "_")
	if len(parts) != 3 {
		return Namespace{}, fmt.Errorf("namespace %q: want <subject>_<size>_<mode>", name)
	}
	ns := Namespace{Subject: parts[0]}

	switch parts[2] {
	case "shrunk":
		ns.Shrink = true
	case "unshrunk":
	default:
		return Namespace{}, fmt.Errorf("namespace %q: unknown mode %q", name, parts[2])
	}

	for k, v := range sizeNames {
		if v == parts[1] {
			ns.ComboSize = k
		}
	}
	if ns.ComboSize == 0 {
		n, err := strconv.Atoi(strings.TrimPrefix(parts[1], "x"))
		if err != nil || !strings.HasPrefix(parts[1], "x") {
			return Namespace{}, fmt.Errorf("namespace %q: unknown size %q", name, parts[1])
		}
		ns.ComboSize = n
	}
	if err := ns.Validate(); err != nil {
		return Namespace{}, err
	}
	return ns, nil
}
