package hookscope

import (
	"reflect"
	"runtime"
	"unsafe"

	"github.com/jward/hookscope/internal/ledger"
	"github.com/jward/hookscope/modules"
)

type wrapConfig struct {
	origin string
}

// WrapOption configures a single Wrap or WrapClass call.
type WrapOption func(*wrapConfig)

// At sets the origin path recorded in the wrapped unit's identity.
func At(origin string) WrapOption {
	return func(cfg *wrapConfig) {
		cfg.origin = origin
	}
}

// Wrap returns a func of the same type as fn that records every call under
// name. Each call opens a new invocation before fn runs and stores fn's
// result in it afterwards: a single result as is, several as []any, none as
// nil. A panic in fn marks the invocation as panicked and propagates.
//
// Wrapping a func this collector already produced returns it unchanged, and
// values that are not funcs are returned as they are.
func Wrap[F any](c *Collector, name string, fn F, opts ...WrapOption) F {
	w, ok := c.wrap(name, any(fn), newWrapConfig(opts)).(F)
	if !ok {
		return fn
	}
	return w
}

// WrapClass returns a Class whose constructor records every construction
// under name. The recorded result is the constructed instance; if it has a
// Render() any or SetState(any) method they become the unit's lifecycle
// handles.
func WrapClass(c *Collector, name string, cls *modules.Class, opts ...WrapOption) *modules.Class {
	return c.wrapClass(name, cls, newWrapConfig(opts))
}

// ModuleFactory returns a namespace transformation that wraps every func and
// Class export of the module at origin. Other exports pass through and
// read-only exports are left untouched.
func (c *Collector) ModuleFactory(origin string) modules.Factory {
	cfg := &wrapConfig{origin: origin}
	return func(ns modules.Namespace) modules.Namespace {
		out := ns.Clone()
		wrapped := 0
		for name, exp := range ns {
			if exp.ReadOnly || (!isFunc(exp.Value) && !isClass(exp.Value)) {
				continue
			}
			out[name] = modules.Export{Value: c.wrap(name, exp.Value, cfg)}
			wrapped++
		}
		c.logger.Debug("wrapped module", "origin", origin, "exports", len(ns), "wrapped", wrapped)
		return out
	}
}

func newWrapConfig(opts []WrapOption) *wrapConfig {
	cfg := &wrapConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func isFunc(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

func isClass(v any) bool {
	cls, ok := v.(*modules.Class)
	return ok && cls != nil && cls.New != nil
}

// identity returns the data word of the interface holding v. Func values
// and pointers are stored directly in it, so it identifies the func value
// itself rather than its code, which all reflect.MakeFunc results share.
func identity(v any) uintptr {
	type eface struct {
		typ, data unsafe.Pointer
	}
	return uintptr((*eface)(unsafe.Pointer(&v)).data)
}

func (c *Collector) isWrapped(v any) bool {
	_, ok := c.wrapped[identity(v)]
	return ok
}

// remember marks v as produced by c. Holding v keeps its address from being
// reused by another value.
func (c *Collector) remember(v any) {
	c.wrapped[identity(v)] = v
}

func (c *Collector) wrap(name string, v any, cfg *wrapConfig) any {
	if cls, ok := v.(*modules.Class); ok {
		return c.wrapClass(name, cls, cfg)
	}
	if !isFunc(v) || c.isWrapped(v) {
		return v
	}

	fn := reflect.ValueOf(v)
	typ := fn.Type()
	entry := fn.Pointer()
	body := funcName(entry)

	out := reflect.MakeFunc(typ, func(in []reflect.Value) []reflect.Value {
		args := make([]any, len(in))
		for i, arg := range in {
			args[i] = arg.Interface()
		}

		fr := c.enter(name, cfg.origin, entry, body, args)
		completed := false
		defer func() {
			if !completed {
				fr.inv.Fail()
			}
			c.leave(fr)
		}()

		var results []reflect.Value
		if typ.IsVariadic() {
			results = fn.CallSlice(in)
		} else {
			results = fn.Call(in)
		}
		completed = true
		fr.inv.Complete(resultOf(results))
		return results
	}).Interface()

	c.remember(out)
	c.logger.Debug("wrapped func", "name", name, "origin", cfg.origin, "type", typ.String())
	return out
}

func (c *Collector) wrapClass(name string, cls *modules.Class, cfg *wrapConfig) *modules.Class {
	if !isClass(cls) || c.isWrapped(cls) {
		return cls
	}

	construct := cls.New
	entry := reflect.ValueOf(construct).Pointer()
	body := funcName(entry)

	out := &modules.Class{
		Name: cls.Name,
		New: func(args ...any) any {
			fr := c.enter(name, cfg.origin, entry, body, args)
			completed := false
			defer func() {
				if !completed {
					fr.inv.Fail()
				}
				c.leave(fr)
			}()

			inst := construct(args...)
			completed = true
			fr.inv.Complete(inst)
			fr.unit.Lifecycle = lifecycleOf(inst)
			return inst
		},
	}

	c.remember(out)
	c.logger.Debug("wrapped class", "name", name, "origin", cfg.origin)
	return out
}

func lifecycleOf(inst any) *ledger.Lifecycle {
	lc := &ledger.Lifecycle{Instance: inst}
	if r, ok := inst.(interface{ Render() any }); ok {
		lc.Render = r.Render
	}
	if s, ok := inst.(interface{ SetState(any) }); ok {
		lc.SetState = s.SetState
	}
	return lc
}

func resultOf(results []reflect.Value) any {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0].Interface()
	}
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Interface()
	}
	return out
}

func funcName(pc uintptr) string {
	if f := runtime.FuncForPC(pc); f != nil {
		return f.Name()
	}
	return ""
}
