// Package paramset reads the named, typed parameters that configure films and
// filters.
//
// Parameters are a JSON object decoded into a structpb.Struct.  Nested objects
// are reachable through Sub, so one file can carry
//
//	{"film": {"xresolution": 640, "cropwindow": [0, 1, 0, 0.5]},
//	 "filter": {"type": "gaussian", "alpha": 2}}
package paramset

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/golang/glog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"
)

type ParamSet struct {
	s *structpb.Struct

	mu     sync.Mutex
	looked map[string]bool
}

// New builds a ParamSet from Go values.  Accepted value types are the ones
// structpb.NewValue accepts.
func New(fields map[string]interface{}) (*ParamSet, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("while converting parameters: %w", err)
	}
	return wrap(s), nil
}

// Parse decodes a JSON object.
func Parse(data []byte) (*ParamSet, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("while unmarshaling parameters: %w", err)
	}
	return wrap(s), nil
}

// Load reads and decodes a JSON parameter file.
func Load(path string) (*ParamSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("while reading parameter file %q: %w", path, err)
	}
	ps, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("in %q: %w", path, err)
	}
	return ps, nil
}

// Empty returns a ParamSet with no parameters, so every lookup yields its
// default.
func Empty() *ParamSet {
	return wrap(&structpb.Struct{})
}

func wrap(s *structpb.Struct) *ParamSet {
	return &ParamSet{s: s, looked: map[string]bool{}}
}

func (ps *ParamSet) lookup(name string) (*structpb.Value, bool) {
	if ps == nil {
		return nil, false
	}
	ps.mu.Lock()
	ps.looked[name] = true
	ps.mu.Unlock()
	v, ok := ps.s.GetFields()[name]
	return v, ok
}

// FindOneFloat returns the named number.  A one-element list is accepted.
func (ps *ParamSet) FindOneFloat(name string, def float64) float64 {
	v, ok := ps.lookup(name)
	if !ok {
		return def
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue
	case *structpb.Value_ListValue:
		if vals := k.ListValue.GetValues(); len(vals) == 1 {
			if n, ok := vals[0].GetKind().(*structpb.Value_NumberValue); ok {
				return n.NumberValue
			}
		}
	}
	glog.Warningf("Parameter %q is not a single number; using default %v", name, def)
	return def
}

// FindOneInt returns the named number truncated to an integer.
func (ps *ParamSet) FindOneInt(name string, def int) int {
	f := ps.FindOneFloat(name, float64(def))
	if f != float64(int(f)) {
		glog.Warningf("Parameter %q has fractional value %v; truncating", name, f)
	}
	return int(f)
}

// FindFloats returns the named number list.  A bare number is a list of one.
// A missing or mistyped parameter returns nil.
func (ps *ParamSet) FindFloats(name string) []float64 {
	v, ok := ps.lookup(name)
	if !ok {
		return nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return []float64{k.NumberValue}
	case *structpb.Value_ListValue:
		out := make([]float64, 0, len(k.ListValue.GetValues()))
		for i, e := range k.ListValue.GetValues() {
			n, ok := e.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				glog.Warningf("Parameter %q element %d is not a number; ignoring the parameter", name, i)
				return nil
			}
			out = append(out, n.NumberValue)
		}
		return out
	}
	glog.Warningf("Parameter %q is not a number list; ignoring it", name)
	return nil
}

func (ps *ParamSet) FindOneString(name, def string) string {
	v, ok := ps.lookup(name)
	if !ok {
		return def
	}
	if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
		return s.StringValue
	}
	glog.Warningf("Parameter %q is not a string; using default %q", name, def)
	return def
}

func (ps *ParamSet) FindOneBool(name string, def bool) bool {
	v, ok := ps.lookup(name)
	if !ok {
		return def
	}
	if b, ok := v.GetKind().(*structpb.Value_BoolValue); ok {
		return b.BoolValue
	}
	glog.Warningf("Parameter %q is not a bool; using default %v", name, def)
	return def
}

// Set stores v under name, replacing any previous value.  Accepted value
// types are the ones structpb.NewValue accepts.
func (ps *ParamSet) Set(name string, v interface{}) error {
	val, err := structpb.NewValue(v)
	if err != nil {
		return fmt.Errorf("while setting parameter %q: %w", name, err)
	}
	if ps.s.Fields == nil {
		ps.s.Fields = map[string]*structpb.Value{}
	}
	ps.s.Fields[name] = val
	return nil
}

// Sub returns the nested parameter object stored under name, or an empty set
// if there is none.
func (ps *ParamSet) Sub(name string) *ParamSet {
	v, ok := ps.lookup(name)
	if !ok {
		return Empty()
	}
	s, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		glog.Warningf("Parameter %q is not an object; ignoring it", name)
		return Empty()
	}
	return wrap(s.StructValue)
}

// Unused lists, in sorted order, the parameters nobody asked for.
func (ps *ParamSet) Unused() []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	var unused []string
	for name := range ps.s.GetFields() {
		if !ps.looked[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	return unused
}

// ReportUnused warns about every parameter that was never looked up, which
// usually means a typo in the parameter file.
func (ps *ParamSet) ReportUnused(context string) {
	for _, name := range ps.Unused() {
		glog.Warningf("%s: parameter %q is unused", context, name)
	}
}

func (ps *ParamSet) String() string {
	return prototext.Format(ps.s)
}
