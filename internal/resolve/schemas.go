// Package resolve turns a parsed OpenAPI document into the intermediate
// representation consumed by the rendering stage: deduplicated model and
// enum classes, endpoint descriptors, synthesized credentials, and an
// accumulated error report.
//
// Every fallible step returns a value-or-error pair alongside an updated
// registry snapshot. Nothing in this package panics on malformed input
// and no endpoint failure is allowed to cascade into its siblings.
package resolve

import (
	"reflect"
	"sort"
	"strings"

	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/mhersz/astrid/internal/config"
	"github.com/mhersz/astrid/internal/ir"
	"github.com/mhersz/astrid/internal/naming"
)

// Schemas is the registry of resolved model and enum classes, keyed by
// canonical class name. It is carried through the resolution pipeline as
// an explicit value: every update returns a new snapshot, and callers
// thread the latest snapshot into the next call so later resolutions see
// earlier registrations.
type Schemas struct {
	classesByName map[string]ir.Property
	// inProgress holds canonical names currently being resolved further
	// up the call stack, for reference cycle detection.
	inProgress map[string]struct{}
	errors     []*ir.ParseError
}

// NewSchemas returns an empty registry.
func NewSchemas() Schemas {
	return Schemas{
		classesByName: map[string]ir.Property{},
		inProgress:    map[string]struct{}{},
	}
}

// Class returns the registered Property for a canonical class name.
func (s Schemas) Class(name string) (ir.Property, bool) {
	p, ok := s.classesByName[name]
	return p, ok
}

// ClassNames returns every registered canonical class name, sorted.
func (s Schemas) ClassNames() []string {
	names := make([]string, 0, len(s.classesByName))
	for name := range s.classesByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Errors returns the soft failures recorded against the registry itself.
func (s Schemas) Errors() []*ir.ParseError { return s.errors }

// withClass registers a class under its canonical name and clears any
// in-progress marker for it. Registration never overwrites: callers check
// for structural conflicts through addClass.
func (s Schemas) withClass(name string, p ir.Property) Schemas {
	c := s.clone()
	c.classesByName[name] = p
	delete(c.inProgress, name)
	return c
}

// addClass registers a class, tolerating idempotent re-registration of a
// structurally identical shape and rejecting a structurally different one.
func (s Schemas) addClass(name string, p ir.Property) (Schemas, *ir.PropertyError) {
	if existing, ok := s.classesByName[name]; ok {
		if reflect.DeepEqual(existing, p) {
			return s, nil
		}
		return s, ir.NewPropertyError(
			"attempted to register two different schemas under the name "+name, p)
	}
	return s.withClass(name, p), nil
}

func (s Schemas) beginResolving(name string) Schemas {
	c := s.clone()
	c.inProgress[name] = struct{}{}
	return c
}

func (s Schemas) doneResolving(name string) Schemas {
	c := s.clone()
	delete(c.inProgress, name)
	return c
}

func (s Schemas) isResolving(name string) bool {
	_, ok := s.inProgress[name]
	return ok
}

// WithError records a registry-scoped soft failure.
func (s Schemas) WithError(err *ir.ParseError) Schemas {
	c := s.clone()
	c.errors = append(c.errors, err)
	return c
}

func (s Schemas) clone() Schemas {
	c := Schemas{
		classesByName: make(map[string]ir.Property, len(s.classesByName)),
		inProgress:    make(map[string]struct{}, len(s.inProgress)),
		errors:        append([]*ir.ParseError(nil), s.errors...),
	}
	for name, p := range s.classesByName {
		c.classesByName[name] = p
	}
	for name := range s.inProgress {
		c.inProgress[name] = struct{}{}
	}
	return c
}

// classNameForRef derives the canonical class name a reference resolves
// under: the final path segment, cased and run through any configured
// override.
func classNameForRef(ref string, cfg *config.Config) string {
	segments := strings.Split(ref, "/")
	raw := segments[len(segments)-1]
	name := naming.ClassName(raw, cfg.Naming.FieldPrefix)
	return cfg.Naming.ClassNameOverride(name)
}

func classFor(name string) ir.Class {
	return ir.Class{Name: name, Module: naming.SnakeCase(name)}
}

// Parameters interns reusable component parameters so every use of one
// shared declaration resolves to the same cached Property.
type Parameters struct {
	refsByObject map[*v3.Parameter]string
	byName       map[string]ir.Property
}

// NewParameters indexes the document's reusable parameter declarations.
func NewParameters(components *v3.Components) Parameters {
	p := Parameters{
		refsByObject: map[*v3.Parameter]string{},
		byName:       map[string]ir.Property{},
	}
	if components == nil || components.Parameters == nil {
		return p
	}
	for name, param := range components.Parameters.FromOldest() {
		p.refsByObject[param] = name
	}
	return p
}

// canonicalName returns the component name a parameter was declared
// under, or "" for an inline parameter.
func (p Parameters) canonicalName(param *v3.Parameter) string {
	return p.refsByObject[param]
}

func (p Parameters) cached(name string) (ir.Property, bool) {
	prop, ok := p.byName[name]
	return prop, ok
}

func (p Parameters) withCached(name string, prop ir.Property) Parameters {
	c := Parameters{
		refsByObject: p.refsByObject,
		byName:       make(map[string]ir.Property, len(p.byName)+1),
	}
	for k, v := range p.byName {
		c.byName[k] = v
	}
	c.byName[name] = prop
	return c
}
