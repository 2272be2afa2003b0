package plugins

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// Constructor builds a zero-argument instance of a registered type
type Constructor func() (any, error)

type registeredType struct {
	typ       reflect.Type
	construct Constructor
}

type typeTable struct {
	mu     sync.RWMutex
	byName map[string]registeredType
}

// types is the table Load resolves type names against. It is filled from
// init functions, so every type known to the binary is present before main runs.
var types = &typeTable{byName: make(map[string]registeredType)}

var pluginType = reflect.TypeFor[Plugin]()

// RegisterType records the dynamic type of prototype under its fully
// qualified name and returns that name. Instances are built with reflect.New,
// so the zero value of the type must be usable.
func RegisterType(prototype any) string {
	t := reflect.TypeOf(prototype)
	if t == nil {
		panic("plugins: cannot register a nil prototype")
	}
	elem := t
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	construct := func() (any, error) {
		v := reflect.New(elem)
		if t.Kind() == reflect.Pointer {
			return v.Interface(), nil
		}
		return v.Elem().Interface(), nil
	}
	return types.register(t, construct)
}

// RegisterTypeFunc records T with an explicit constructor and returns the
// fully qualified name of T.
func RegisterTypeFunc[T any](ctor func() (T, error)) string {
	if ctor == nil {
		panic("plugins: cannot register a nil constructor")
	}
	construct := func() (any, error) {
		v, err := ctor()
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return types.register(reflect.TypeFor[T](), construct)
}

// TypeName returns the fully qualified name of the dynamic type of v, in the
// form "<import path>.<type name>". Pointers are dereferenced.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	return qualifiedName(t)
}

// Types returns the registered type names in sorted order
func Types() []string {
	types.mu.RLock()
	names := make([]string, 0, len(types.byName))
	for name := range types.byName {
		names = append(names, name)
	}
	types.mu.RUnlock()

	sort.Strings(names)
	return names
}

func qualifiedName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func (tt *typeTable) register(t reflect.Type, construct Constructor) string {
	name := qualifiedName(t)

	tt.mu.Lock()
	defer tt.mu.Unlock()
	if _, exists := tt.byName[name]; exists {
		panic(fmt.Sprintf("plugins: type '%s' already registered", name))
	}
	tt.byName[name] = registeredType{typ: t, construct: construct}
	return name
}

func (tt *typeTable) lookup(name string) (registeredType, bool) {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	entry, ok := tt.byName[name]
	return entry, ok
}

// Loader turns type names into registered plugins.
type Loader struct{}

var instance = &Loader{}

// Instance returns the process-wide Loader
func Instance() *Loader {
	return instance
}

// Load loads typeName with the process-wide Loader
func Load(typeName string) error {
	return instance.Load(typeName)
}

// Load resolves typeName in the type table, checks that the type is a
// Plugin, builds an instance and registers it. The instance itself is
// discarded; only its factory stays reachable through the Registry.
func (l *Loader) Load(typeName string) error {
	entry, ok := types.lookup(typeName)
	if !ok {
		return &LoadError{
			TypeName: typeName,
			msg:      fmt.Sprintf("error loading class '%s'", typeName),
		}
	}

	if !entry.typ.Implements(pluginType) {
		return &LoadError{
			TypeName: typeName,
			msg:      fmt.Sprintf("class '%s' is not of type DocumentPlugin", typeName),
		}
	}

	p, err := construct(typeName, entry)
	if err != nil {
		return &LoadError{TypeName: typeName, Err: err, msg: err.Error()}
	}

	if err := initialize(p); err != nil {
		return &LoadError{TypeName: typeName, Err: err, msg: err.Error()}
	}

	slog.Info("Plugin loaded", "type", typeName, "name", p.Name())
	return nil
}

func construct(typeName string, entry registeredType) (p Plugin, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("constructor for '%s' panicked: %v", typeName, r)
		}
	}()

	v, err := entry.construct()
	if err != nil {
		return nil, err
	}
	if rv := reflect.ValueOf(v); !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return nil, fmt.Errorf("constructor for '%s' returned nil", typeName)
	}
	p, ok := v.(Plugin)
	if !ok {
		return nil, fmt.Errorf("constructor for '%s' returned %T", typeName, v)
	}
	return p, nil
}

func initialize(p Plugin) error {
	if i, ok := p.(Initializer); ok {
		return i.Init()
	}
	return Register(p)
}
