package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Types with an Extra map keep keys they do not model so that documents
// written by newer clients survive a load/save cycle unchanged. Extra keys are
// flattened into the object next to the modelled fields.

var knownKeysCache sync.Map // reflect.Type -> map[string]struct{}

// JSONFieldNames returns the JSON keys that encoding/json would use for the
// exported fields of struct type t.
func JSONFieldNames(t reflect.Type) map[string]struct{} {
	if v, ok := knownKeysCache.Load(t); ok {
		return v.(map[string]struct{})
	}

	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = struct{}{}
	}

	knownKeysCache.Store(t, names)
	return names
}

func marshalWithExtra(known any, extra map[string]any) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, taken := obj[k]; taken {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[k] = raw
	}
	return json.Marshal(obj)
}

// unmarshalWithExtra decodes data into known (a pointer to an alias struct)
// and returns the keys known does not model.
func unmarshalWithExtra(data []byte, known any) (map[string]any, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}

	all := map[string]any{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	names := JSONFieldNames(reflect.TypeOf(known).Elem())
	for k := range names {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
