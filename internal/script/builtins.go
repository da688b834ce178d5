package script

import (
	"context"
	"fmt"
	"reflect"

	"github.com/risor-io/risor/object"
)

// Lookups that miss return nil rather than an error so scripts can test for
// absence.

func makeCountFn(src Source) *object.Builtin {
	return object.NewBuiltin("count", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return argsRangeError("count", 1, 2, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("count: name: %v", err)
		}
		disc, err := optionalDisc(args, 1)
		if err != nil {
			return object.Errorf("count: %v", err)
		}
		n, ok := src.Count(name, disc)
		if !ok {
			return object.Nil
		}
		return object.NewInt(int64(n))
	})
}

func makeResultFn(src Source) *object.Builtin {
	return object.NewBuiltin("result", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 || len(args) > 3 {
			return argsRangeError("result", 2, 3, len(args))
		}
		name, seq, err := nameAndInt(args)
		if err != nil {
			return object.Errorf("result: %v", err)
		}
		disc, err := optionalDisc(args, 2)
		if err != nil {
			return object.Errorf("result: %v", err)
		}
		v, ok := src.Result(name, seq, disc)
		if !ok {
			return object.Nil
		}
		return toObject(v)
	})
}

func makeArgsFn(src Source) *object.Builtin {
	return object.NewBuiltin("args", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 || len(args) > 3 {
			return argsRangeError("args", 2, 3, len(args))
		}
		name, seq, err := nameAndInt(args)
		if err != nil {
			return object.Errorf("args: %v", err)
		}
		disc, err := optionalDisc(args, 2)
		if err != nil {
			return object.Errorf("args: %v", err)
		}
		v, ok := src.Args(name, seq, disc)
		if !ok {
			return object.Nil
		}
		return toObject(v)
	})
}

// hook_value(name, seq, kind, slot [, disc])
func makeHookValueFn(src Source) *object.Builtin {
	return object.NewBuiltin("hook_value", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 4 || len(args) > 5 {
			return argsRangeError("hook_value", 4, 5, len(args))
		}
		name, seq, err := nameAndInt(args)
		if err != nil {
			return object.Errorf("hook_value: %v", err)
		}
		kind, err := toString(args[2])
		if err != nil {
			return object.Errorf("hook_value: kind: %v", err)
		}
		slot, err := toInt(args[3])
		if err != nil {
			return object.Errorf("hook_value: slot: %v", err)
		}
		disc, err := optionalDisc(args, 4)
		if err != nil {
			return object.Errorf("hook_value: %v", err)
		}
		v, ok := src.HookValue(name, seq, kind, slot, disc)
		if !ok {
			return object.Nil
		}
		return toObject(v)
	})
}

func makeTimelineFn(src Source) *object.Builtin {
	return object.NewBuiltin("timeline", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 || len(args) > 3 {
			return argsRangeError("timeline", 2, 3, len(args))
		}
		name, slot, err := nameAndInt(args)
		if err != nil {
			return object.Errorf("timeline: %v", err)
		}
		disc, err := optionalDisc(args, 2)
		if err != nil {
			return object.Errorf("timeline: %v", err)
		}
		values, ok := src.Timeline(name, slot, disc)
		if !ok {
			return object.Nil
		}
		return toObject(values)
	})
}

func makeUnitsFn(src Source) *object.Builtin {
	return object.NewBuiltin("units", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("units", 0, len(args))
		}
		names := src.Units()
		items := make([]object.Object, 0, len(names))
		for _, n := range names {
			items = append(items, object.NewString(n))
		}
		return object.NewList(items)
	})
}

// --- Conversion helpers ---

func nameAndInt(args []object.Object) (string, int, error) {
	name, err := toString(args[0])
	if err != nil {
		return "", 0, fmt.Errorf("name: %w", err)
	}
	n, err := toInt(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("index: %w", err)
	}
	return name, n, nil
}

func optionalDisc(args []object.Object, i int) (string, error) {
	if len(args) <= i {
		return "", nil
	}
	d, err := toString(args[i])
	if err != nil {
		return "", fmt.Errorf("discriminator: %w", err)
	}
	return d, nil
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

func toInt(obj object.Object) (int, error) {
	if i, ok := obj.(*object.Int); ok {
		return int(i.Value()), nil
	}
	if f, ok := obj.(*object.Float); ok {
		return int(f.Value()), nil
	}
	return 0, fmt.Errorf("expected int, got %s", obj.Type())
}

// toObject converts a recorded Go value to a Risor object. Values without a
// natural Risor form are rendered with %v.
func toObject(v any) object.Object {
	switch v := v.(type) {
	case nil:
		return object.Nil
	case object.Object:
		return v
	case bool:
		return object.NewBool(v)
	case string:
		return object.NewString(v)
	case float32:
		return object.NewFloat(float64(v))
	case float64:
		return object.NewFloat(v)
	case []any:
		items := make([]object.Object, 0, len(v))
		for _, item := range v {
			items = append(items, toObject(item))
		}
		return object.NewList(items)
	case map[string]any:
		m := make(map[string]object.Object, len(v))
		for k, item := range v {
			m[k] = toObject(item)
		}
		return object.NewMap(m)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return object.NewInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return object.NewInt(int64(rv.Uint()))
	}
	return object.NewString(fmt.Sprintf("%v", v))
}

func argsRangeError(name string, min, max, got int) object.Object {
	return object.Errorf("%s: expected %d to %d arguments, got %d", name, min, max, got)
}
