// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file binds call arguments to the input struct of a typed callable.
//
// Keyword arguments are matched to fields by their `cfg` tag (or the field
// name, case-insensitively, like mapstructure does). Values that are already
// assignable to the field are stored as they are, which keeps the identity of
// objects produced by nested builds. Everything else goes through
// mapstructure, so a JSON number can land in an int field and a nested data
// Node can land in a struct or map field.

package node

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type inputSpec struct {
	typ    reflect.Type
	fields map[string]int
	folded map[string]int
	args   int
}

func newInputSpec(t reflect.Type) (*inputSpec, error) {
	spec := &inputSpec{
		typ:    t,
		fields: make(map[string]int),
		folded: make(map[string]int),
		args:   -1,
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get(InputTag), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if name == KeyArgs {
			if f.Type.Kind() != reflect.Slice {
				return nil, fmt.Errorf("%w: field %s.%s receives positional arguments and must be a slice",
					ErrInvalidCallable, t.Name(), f.Name)
			}
			spec.args = i
		}
		spec.fields[name] = i
		spec.folded[strings.ToLower(name)] = i
	}
	return spec, nil
}

func (s *inputSpec) field(key string) (int, bool) {
	if i, ok := s.fields[key]; ok {
		return i, true
	}
	i, ok := s.folded[strings.ToLower(key)]
	return i, ok
}

// decode returns a *T populated from the arguments.
func (s *inputSpec) decode(args []any, kwargs *orderedmap.OrderedMap[string, any]) (reflect.Value, error) {
	in := reflect.New(s.typ)
	target := in.Elem()
	rest := make(map[string]any, kwargs.Len()+1)

	if len(args) > 0 {
		if s.args < 0 {
			return reflect.Value{}, fmt.Errorf("%w: takes no positional arguments, got %d", ErrBadArguments, len(args))
		}
		if slice, ok := assignSlice(target.Field(s.args).Type(), args); ok {
			target.Field(s.args).Set(slice)
		} else {
			rest[KeyArgs] = plain(args)
		}
	}

	for pair := kwargs.Oldest(); pair != nil; pair = pair.Next() {
		if IsReserved(pair.Key) {
			return reflect.Value{}, fmt.Errorf("%w: %q is reserved", ErrBadArguments, pair.Key)
		}
		if i, ok := s.field(pair.Key); ok && pair.Value != nil {
			fv := target.Field(i)
			if rv := reflect.ValueOf(pair.Value); rv.Type().AssignableTo(fv.Type()) {
				fv.Set(rv)
				continue
			}
		}
		rest[pair.Key] = plain(pair.Value)
	}

	if len(rest) == 0 {
		return in, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     InputTag,
		ErrorUnused: true,
		Result:      in.Interface(),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := dec.Decode(rest); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %w", ErrBadArguments, err)
	}
	return in, nil
}

// assignSlice builds a slice of type t from args when every element can be
// stored without conversion.
func assignSlice(t reflect.Type, args []any) (reflect.Value, bool) {
	elem := t.Elem()
	out := reflect.MakeSlice(t, len(args), len(args))
	for i, a := range args {
		if a == nil {
			switch elem.Kind() {
			case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice:
				continue
			}
			return reflect.Value{}, false
		}
		rv := reflect.ValueOf(a)
		if !rv.Type().AssignableTo(elem) {
			return reflect.Value{}, false
		}
		out.Index(i).Set(rv)
	}
	return out, true
}

// plain converts Nodes and ordered maps into map[string]any so mapstructure
// can decode them.
func plain(v any) any {
	switch t := v.(type) {
	case *Node:
		return plain(t.ToMap())
	case *orderedmap.OrderedMap[string, any]:
		out := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = plain(pair.Value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}
