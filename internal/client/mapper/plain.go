package mapper

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// ErrNotPlain is returned for values that have no plain-data form, such as
// functions, channels, binary buffers or non-finite numbers.
var ErrNotPlain = errors.New("value is not plain data")

// ISOLayout is the date format written into snapshots: UTC with
// millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z"

var timeType = reflect.TypeOf(time.Time{})

// FormatISO renders t in ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// toPlainObject sanitizes a struct or map into a JSON object.
func toPlainObject(v any) (map[string]any, error) {
	pv, err := toPlain(reflect.ValueOf(v), "$")
	if err != nil {
		return nil, err
	}
	obj := pv.GetStructValue()
	if obj == nil {
		return nil, fmt.Errorf("%w: $ is not an object", ErrNotPlain)
	}
	return obj.AsMap(), nil
}

// toPlain walks v and builds its plain-data form. Struct fields follow their
// json tags; fields tagged plain:"inline" must be maps and are merged into the
// enclosing object. path is used in error messages only.
func toPlain(v reflect.Value, path string) (*structpb.Value, error) {
	if !v.IsValid() {
		return structpb.NewNullValue(), nil
	}
	if v.Type() == timeType {
		return structpb.NewStringValue(FormatISO(v.Interface().(time.Time))), nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return structpb.NewBoolValue(v.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return structpb.NewNumberValue(float64(v.Int())), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return structpb.NewNumberValue(float64(v.Uint())), nil

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %s is %v", ErrNotPlain, path, f)
		}
		return structpb.NewNumberValue(f), nil

	case reflect.String:
		return structpb.NewStringValue(v.String()), nil

	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return structpb.NewNullValue(), nil
		}
		return toPlain(v.Elem(), path)

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil, fmt.Errorf("%w: %s is binary data", ErrNotPlain, path)
		}
		items := make([]*structpb.Value, v.Len())
		for i := range items {
			item, err := toPlain(v.Index(i), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return structpb.NewListValue(&structpb.ListValue{Values: items}), nil

	case reflect.Map:
		fields := map[string]*structpb.Value{}
		if err := mergeMap(fields, v, path); err != nil {
			return nil, err
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil

	case reflect.Struct:
		fields := map[string]*structpb.Value{}
		if err := mergeStruct(fields, v, path); err != nil {
			return nil, err
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	}

	return nil, fmt.Errorf("%w: %s has kind %s", ErrNotPlain, path, v.Kind())
}

// mergeMap adds the entries of a string-keyed map. Keys already present are
// kept.
func mergeMap(fields map[string]*structpb.Value, v reflect.Value, path string) error {
	if v.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("%w: %s has non-string keys", ErrNotPlain, path)
	}

	iter := v.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		if _, taken := fields[key]; taken {
			continue
		}
		item, err := toPlain(iter.Value(), path+"."+key)
		if err != nil {
			return err
		}
		fields[key] = item
	}
	return nil
}

func mergeStruct(fields map[string]*structpb.Value, v reflect.Value, path string) error {
	t := v.Type()

	// Modelled fields first so that inline maps cannot shadow them.
	var inline []reflect.Value
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := v.Field(i)

		if f.Tag.Get("plain") == "inline" {
			if fv.Kind() != reflect.Map {
				return fmt.Errorf("%w: %s.%s is inline but not a map", ErrNotPlain, path, f.Name)
			}
			inline = append(inline, fv)
			continue
		}

		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}
		if f.Anonymous && name == "" && fv.Kind() == reflect.Struct {
			if err := mergeStruct(fields, fv, path); err != nil {
				return err
			}
			continue
		}
		if name == "" {
			name = f.Name
		}
		if strings.Contains(opts, "omitempty") && isEmpty(fv) {
			continue
		}

		item, err := toPlain(fv, path+"."+name)
		if err != nil {
			return err
		}
		fields[name] = item
	}

	for _, m := range inline {
		if err := mergeMap(fields, m, path); err != nil {
			return err
		}
	}
	return nil
}

// isEmpty mirrors the omitempty rule of encoding/json.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
