package ir

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Outcome tags a RunResult.
type Outcome string

const (
	OutcomeFail   Outcome = "fail"
	OutcomeNoFail Outcome = "nofail"
)

// KeySeparator joins defect IDs inside a combo key.
const KeySeparator = "|"

// RunResult is the stored outcome of one campaign against one combo.
//
// For nofail results only Type and Attempts are set. For fail results
// FailingInput holds the portable encoding of the counterexample and Triage
// the minimal causal subsets, each sorted.
type RunResult struct {
	Type         Outcome    `json:"type"`
	Attempts     int        `json:"attempts"`
	FailingInput []byte     `json:"failing_input,omitempty"`
	FailingRepr  string     `json:"failing_repr,omitempty"`
	Triage       [][]string `json:"triage,omitempty"`
}

// NoFail returns a nofail result.
func NoFail(attempts int) RunResult {
	return RunResult{Type: OutcomeNoFail, Attempts: attempts}
}

// Failed reports whether r is a fail result.
func (r RunResult) Failed() bool {
	return r.Type == OutcomeFail
}

// Validate checks the shape of r.
func (r RunResult) Validate() error {
	if r.Attempts < 0 {
		return fmt.Errorf("negative attempts %d", r.Attempts)
	}
	switch r.Type {
	case OutcomeNoFail:
		if r.FailingInput != nil || r.Triage != nil || r.FailingRepr != "" {
			return fmt.Errorf("nofail result carries failure data")
		}
	case OutcomeFail:
		if r.FailingInput == nil {
			return fmt.Errorf("fail result without failing_input")
		}
		for i, set := range r.Triage {
			if len(set) == 0 {
				return fmt.Errorf("triage[%d] is empty", i)
			}
		}
	default:
		return fmt.Errorf("unknown result type %q", r.Type)
	}
	return nil
}

// Value converts r to its canonical form.
func (r RunResult) Value() Object {
	obj := Object{
		"type":     String(r.Type),
		"attempts": Int(r.Attempts),
	}
	if r.Type != OutcomeFail {
		return obj
	}
	obj["failing_input"] = String(base64.StdEncoding.EncodeToString(r.FailingInput))
	obj["failing_repr"] = String(r.FailingRepr)
	triage := make(Array, len(r.Triage))
	for i, set := range r.Triage {
		triage[i] = Strings(set)
	}
	obj["triage"] = triage
	return obj
}

// SweepRecord maps combo keys to results for one seed.
type SweepRecord map[string]RunResult

// Keys returns the record's combo keys in sorted order.
func (rec SweepRecord) Keys() []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Value converts rec to its canonical form.
func (rec SweepRecord) Value() Object {
	obj := make(Object, len(rec))
	for k, r := range rec {
		obj[k] = r.Value()
	}
	return obj
}

// Export maps seeds to records across a whole namespace.
type Export map[int64]SweepRecord

// Seeds returns the export's seeds in ascending order.
func (e Export) Seeds() []int64 {
	seeds := make([]int64, 0, len(e))
	for s := range e {
		seeds = append(seeds, s)
	}
	slices.Sort(seeds)
	return seeds
}

// MarshalRecord encodes rec as canonical JSON.
func MarshalRecord(rec SweepRecord) ([]byte, error) {
	data, err := MarshalCanonical(rec.Value())
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

// UnmarshalRecord decodes a stored record and canonicalises its keys.
func UnmarshalRecord(data []byte) (SweepRecord, error) {
	var rec SweepRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if rec == nil {
		rec = SweepRecord{}
	}
	for k, r := range rec {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("unmarshal record: %s: %w", k, err)
		}
	}
	return Canonicalize(rec)
}

// MarshalExport encodes e as canonical JSON keyed by decimal seed.
func MarshalExport(e Export) ([]byte, error) {
	obj := make(Object, len(e))
	for seed, rec := range e {
		obj[strconv.FormatInt(seed, 10)] = rec.Value()
	}
	data, err := MarshalCanonical(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// UnmarshalExport decodes an export produced by MarshalExport.
func UnmarshalExport(data []byte) (Export, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal export: %w", err)
	}
	e := make(Export, len(raw))
	for k, v := range raw {
		seed, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unmarshal export: seed %q: %w", k, err)
		}
		rec, err := UnmarshalRecord(v)
		if err != nil {
			return nil, fmt.Errorf("unmarshal export: seed %d: %w", seed, err)
		}
		e[seed] = rec
	}
	return e, nil
}

// CanonicalKey sorts the members of a combo key.
func CanonicalKey(key string) string {
	if key == "" {
		return key
	}
	ids := strings.Split(key, KeySeparator)
	slices.Sort(ids)
	return strings.Join(slices.Compact(ids), KeySeparator)
}

// Canonicalize rewrites combo keys and triage sets into sorted form. Records
// written by older tools may list defects in any order. Two keys that name
// the same combo are an error.
func Canonicalize(rec SweepRecord) (SweepRecord, error) {
	out := make(SweepRecord, len(rec))
	for _, k := range rec.Keys() {
		ck := CanonicalKey(k)
		if _, dup := out[ck]; dup {
			return nil, fmt.Errorf("combo %q appears twice (as %q)", ck, k)
		}
		r := rec[k]
		if r.Triage != nil {
			triage := make([][]string, len(r.Triage))
			for i, set := range r.Triage {
				s := slices.Clone(set)
				slices.Sort(s)
				triage[i] = s
			}
			r.Triage = triage
		}
		out[ck] = r
	}
	return out, nil
}
