package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Class identifies a named, registered shape. Name is the canonical class
// name models and enums are deduplicated under; Module is the snake_case
// slot the rendering stage files the definition into.
type Class struct {
	Name   string
	Module string
}

// Property is the resolved, typed representation of any schema-described
// value: a parameter, a body, a field, a response payload. The set of
// variants is closed; consumers switch over the concrete types and treat
// an unknown variant as a programming error.
type Property interface {
	// Base exposes the metadata every variant carries.
	Base() *PropertyBase
	// TypeString renders a human-readable shape for reports and dumps.
	TypeString() string
	// Clone returns a shallow copy safe for copy-on-write evolution.
	Clone() Property

	sealed()
}

// PropertyBase carries the metadata shared by all Property variants.
type PropertyBase struct {
	// Name is the declared name from the source document.
	Name string
	// Ident is the derived identifier, unique within its owning namespace.
	Ident string
	Required    bool
	Nullable    bool
	Description string
	// ImportRefs are the module references needed to use this property.
	ImportRefs map[string]struct{}
}

func (b *PropertyBase) Base() *PropertyBase { return b }

// AddImport records a module reference.
func (b *PropertyBase) AddImport(ref string) {
	if b.ImportRefs == nil {
		b.ImportRefs = make(map[string]struct{})
	}
	b.ImportRefs[ref] = struct{}{}
}

// Imports returns the import references in stable order.
func (b *PropertyBase) Imports() []string {
	refs := make([]string, 0, len(b.ImportRefs))
	for ref := range b.ImportRefs {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

func (b *PropertyBase) cloneBase() PropertyBase {
	c := *b
	if b.ImportRefs != nil {
		c.ImportRefs = make(map[string]struct{}, len(b.ImportRefs))
		for ref := range b.ImportRefs {
			c.ImportRefs[ref] = struct{}{}
		}
	}
	return c
}

// ScalarKind enumerates the primitive shapes.
type ScalarKind string

const (
	ScalarString ScalarKind = "string"
	ScalarInt    ScalarKind = "int"
	ScalarFloat  ScalarKind = "float"
	ScalarBool   ScalarKind = "bool"
	ScalarFile   ScalarKind = "file"
	ScalarAny    ScalarKind = "any"
)

// ScalarProperty is a primitive value.
type ScalarProperty struct {
	PropertyBase
	Kind ScalarKind
}

func (p *ScalarProperty) sealed()            {}
func (p *ScalarProperty) TypeString() string { return string(p.Kind) }
func (p *ScalarProperty) Clone() Property {
	c := *p
	c.PropertyBase = p.cloneBase()
	return &c
}

// EnumValueType is the backing type of an enumeration.
type EnumValueType string

const (
	EnumString EnumValueType = "string"
	EnumInt    EnumValueType = "int"
)

// EnumValue is one literal member of an enumeration.
type EnumValue struct {
	// Name is the identifier derived from the literal.
	Name string
	// Value is the literal itself, a string or an int64.
	Value any
}

// EnumProperty is a string- or int-backed enumeration with an ordered set
// of distinct values, registered under a canonical class name.
type EnumProperty struct {
	PropertyBase
	Class     Class
	ValueType EnumValueType
	Values    []EnumValue
}

func (p *EnumProperty) sealed()            {}
func (p *EnumProperty) TypeString() string { return p.Class.Name }
func (p *EnumProperty) Clone() Property {
	c := *p
	c.PropertyBase = p.cloneBase()
	c.Values = append([]EnumValue(nil), p.Values...)
	return &c
}

// ListProperty wraps the element shape of an array.
type ListProperty struct {
	PropertyBase
	Inner Property
}

func (p *ListProperty) sealed()            {}
func (p *ListProperty) TypeString() string { return "[]" + p.Inner.TypeString() }
func (p *ListProperty) Clone() Property {
	c := *p
	c.PropertyBase = p.cloneBase()
	return &c
}

// UnionProperty is an ordered set of member shapes produced by
// allOf/anyOf/oneOf composition.
type UnionProperty struct {
	PropertyBase
	Inner []Property
}

func (p *UnionProperty) sealed() {}
func (p *UnionProperty) TypeString() string {
	members := make([]string, len(p.Inner))
	for i, m := range p.Inner {
		members[i] = m.TypeString()
	}
	return "union(" + strings.Join(members, " | ") + ")"
}
func (p *UnionProperty) Clone() Property {
	c := *p
	c.PropertyBase = p.cloneBase()
	c.Inner = append([]Property(nil), p.Inner...)
	return &c
}

// ModelProperty is a named object with required and optional field
// collections. A model with no declared fields but an AdditionalProps
// shape is a free-form mapping.
type ModelProperty struct {
	PropertyBase
	Class           Class
	RequiredProps   []Property
	OptionalProps   []Property
	AdditionalProps Property
	IsMultipartBody bool
}

func (p *ModelProperty) sealed() {}
func (p *ModelProperty) TypeString() string {
	if p.IsFreeForm() {
		return fmt.Sprintf("map[string]%s", p.AdditionalProps.TypeString())
	}
	return p.Class.Name
}
func (p *ModelProperty) Clone() Property {
	c := *p
	c.PropertyBase = p.cloneBase()
	c.RequiredProps = append([]Property(nil), p.RequiredProps...)
	c.OptionalProps = append([]Property(nil), p.OptionalProps...)
	return &c
}

// IsFreeForm reports whether the model is an open mapping with no
// declared fields of its own.
func (p *ModelProperty) IsFreeForm() bool {
	return len(p.RequiredProps) == 0 && len(p.OptionalProps) == 0 && p.AdditionalProps != nil
}

// Fields returns required fields followed by optional fields.
func (p *ModelProperty) Fields() []Property {
	fields := make([]Property, 0, len(p.RequiredProps)+len(p.OptionalProps))
	fields = append(fields, p.RequiredProps...)
	fields = append(fields, p.OptionalProps...)
	return fields
}

// FieldByName returns the declared field with the given name, or nil.
func (p *ModelProperty) FieldByName(name string) Property {
	for _, f := range p.Fields() {
		if f.Base().Name == name {
			return f
		}
	}
	return nil
}

// SecuritySchemeType mirrors the declared scheme kinds.
type SecuritySchemeType string

const (
	SecurityTypeAPIKey        SecuritySchemeType = "apiKey"
	SecurityTypeHTTP          SecuritySchemeType = "http"
	SecurityTypeOAuth2        SecuritySchemeType = "oauth2"
	SecurityTypeOpenIDConnect SecuritySchemeType = "openIdConnect"
	SecurityTypeMutualTLS     SecuritySchemeType = "mutualTLS"
)

// SecurityProperty is one named authentication scheme reduced to a
// Property-shaped declaration.
type SecurityProperty struct {
	PropertyBase
	Class Class
	Type  SecuritySchemeType
	// Location is where an apiKey credential travels: query, header or cookie.
	Location string
	// ParameterName is the query/header/cookie name an apiKey uses.
	ParameterName string
	// Scheme is the HTTP auth scheme (basic, bearer) for http-type security.
	Scheme       string
	BearerFormat string
}

func (p *SecurityProperty) sealed()            {}
func (p *SecurityProperty) TypeString() string { return p.Class.Name }
func (p *SecurityProperty) Clone() Property {
	c := *p
	c.PropertyBase = p.cloneBase()
	return &c
}

// CredentialsProperty is the synthesized union of every SecurityProperty
// an operation's security requirements resolve to.
type CredentialsProperty struct {
	PropertyBase
	Class Class
	Inner []*SecurityProperty
}

func (p *CredentialsProperty) sealed() {}
func (p *CredentialsProperty) TypeString() string {
	members := make([]string, len(p.Inner))
	for i, m := range p.Inner {
		members[i] = m.TypeString()
	}
	return "credentials(" + strings.Join(members, " | ") + ")"
}
func (p *CredentialsProperty) Clone() Property {
	c := *p
	c.PropertyBase = p.cloneBase()
	c.Inner = append([]*SecurityProperty(nil), p.Inner...)
	return &c
}

// IsPopulated reports whether any scheme was matched.
func (p *CredentialsProperty) IsPopulated() bool { return len(p.Inner) > 0 }

// Renamed returns a copy of p with a new derived identifier.
func Renamed(p Property, ident string) Property {
	c := p.Clone()
	c.Base().Ident = ident
	return c
}

// AsOptionalNullable returns a copy of p normalized to required=false,
// nullable=true. Query parameters collapse the two concepts since the
// wire has no separate absent encoding.
func AsOptionalNullable(p Property) Property {
	c := p.Clone()
	b := c.Base()
	b.Required = false
	b.Nullable = true
	return c
}
