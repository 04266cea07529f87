package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	yaml "go.yaml.in/yaml/v4"

	"github.com/mhersz/astrid/internal/config"
	"github.com/mhersz/astrid/internal/ir"
	"github.com/mhersz/astrid/internal/naming"
)

// PropertyFromProxy resolves a reference or inline schema fragment into a
// Property. Model and enum shapes are interned in the registry under
// their canonical class name before returning, so sibling and later
// references see the cached result. The updated registry is returned in
// all cases, including errors.
func PropertyFromProxy(name string, required bool, proxy *base.SchemaProxy, s Schemas, parentName string, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	if proxy == nil {
		return scalarProperty(name, required, ir.ScalarAny, cfg), s, nil
	}

	if ref := proxy.GetReference(); ref != "" {
		return resolveRef(name, required, ref, proxy, s, cfg)
	}

	schema := proxy.Schema()
	if schema == nil {
		return nil, s, ir.NewPropertyError("could not build schema for "+name, proxy)
	}
	return propertyFromSchema(name, required, schema, "", s, parentName, cfg)
}

// resolveRef looks a reference up by canonical class name, returning the
// cached class when one exists and deriving it exactly once otherwise.
// A reference that is already being derived further up the stack is a
// cycle and yields a ParseError naming the offending reference.
func resolveRef(name string, required bool, ref string, proxy *base.SchemaProxy, s Schemas, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	className := classNameForRef(ref, cfg)

	if cached, ok := s.Class(className); ok {
		return propertyWithContext(cached, name, required, cfg), s, nil
	}

	if s.isResolving(className) {
		return nil, s, ir.NewPropertyError("circular reference to "+ref, ref)
	}

	schema := proxy.Schema()
	if schema == nil {
		return nil, s, ir.NewPropertyError("could not resolve reference "+ref, ref)
	}

	// Mark the class before dispatching so any shape that refers back to
	// it, not just object models, trips the cycle check above.
	s = s.beginResolving(className)
	prop, s, err := propertyFromSchema(name, required, schema, className, s, "", cfg)
	if err != nil {
		return nil, s.doneResolving(className), err
	}
	return prop, s.doneResolving(className), nil
}

// propertyWithContext adapts a cached class to the declared name and
// required flag of one particular use site without minting a new class.
func propertyWithContext(cached ir.Property, name string, required bool, cfg *config.Config) ir.Property {
	base := cached.Base()
	if (name == "" || name == base.Name) && required == base.Required {
		return cached
	}
	c := cached.Clone()
	b := c.Base()
	if name != "" {
		b.Name = name
		b.Ident = naming.Ident(name, cfg.Naming.FieldPrefix)
	}
	b.Required = required
	return c
}

// propertyFromSchema dispatches on the fragment's declared or inferred
// kind. className is non-empty when the fragment is a named component
// schema; inline shapes derive their class name from parentName.
func propertyFromSchema(name string, required bool, schema *base.Schema, className string, s Schemas, parentName string, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	if len(schema.Enum) > 0 {
		return buildEnum(name, required, schema, className, s, parentName, cfg)
	}

	if len(schema.AllOf)+len(schema.OneOf)+len(schema.AnyOf) > 0 {
		return buildUnion(name, required, schema, className, s, parentName, cfg)
	}

	schemaType, nullable := declaredType(schema)

	switch schemaType {
	case "string":
		kind := ir.ScalarString
		if schema.Format == "binary" || schema.Format == "file" {
			kind = ir.ScalarFile
		}
		p := scalarProperty(name, required, kind, cfg)
		p.Base().Nullable = nullable
		p.Base().Description = schema.Description
		return p, s, nil
	case "integer":
		p := scalarProperty(name, required, ir.ScalarInt, cfg)
		p.Base().Nullable = nullable
		p.Base().Description = schema.Description
		return p, s, nil
	case "number":
		p := scalarProperty(name, required, ir.ScalarFloat, cfg)
		p.Base().Nullable = nullable
		p.Base().Description = schema.Description
		return p, s, nil
	case "boolean":
		p := scalarProperty(name, required, ir.ScalarBool, cfg)
		p.Base().Nullable = nullable
		p.Base().Description = schema.Description
		return p, s, nil
	case "array":
		return buildList(name, required, schema, s, parentName, cfg)
	case "object", "":
		if schemaType == "" && propertyCount(schema) == 0 && !hasAdditionalSchema(schema) {
			p := scalarProperty(name, required, ir.ScalarAny, cfg)
			p.Base().Nullable = nullable
			p.Base().Description = schema.Description
			return p, s, nil
		}
		return buildModel(name, required, schema, className, s, parentName, cfg)
	default:
		return nil, s, ir.NewPropertyError(
			fmt.Sprintf("unknown schema type %q for %s", schemaType, name), schema)
	}
}

// declaredType folds 3.1-style type arrays down to one effective type
// plus a nullability flag.
func declaredType(schema *base.Schema) (string, bool) {
	nullable := schema.Nullable != nil && *schema.Nullable
	declared := ""
	for _, t := range schema.Type {
		if t == "null" {
			nullable = true
			continue
		}
		if declared == "" {
			declared = t
		}
	}
	return declared, nullable
}

func propertyCount(schema *base.Schema) int {
	if schema.Properties == nil {
		return 0
	}
	return schema.Properties.Len()
}

func hasAdditionalSchema(schema *base.Schema) bool {
	ap := schema.AdditionalProperties
	if ap == nil {
		return false
	}
	return ap.IsA() || (ap.IsB() && ap.B)
}

func scalarProperty(name string, required bool, kind ir.ScalarKind, cfg *config.Config) *ir.ScalarProperty {
	return &ir.ScalarProperty{
		PropertyBase: ir.PropertyBase{
			Name:     name,
			Ident:    naming.Ident(name, cfg.Naming.FieldPrefix),
			Required: required,
		},
		Kind: kind,
	}
}

// buildEnum produces a deduplicated, order-preserving enumeration and
// registers it under its canonical class name. Mixed value types are an
// error: the backing type would be ambiguous.
func buildEnum(name string, required bool, schema *base.Schema, className string, s Schemas, parentName string, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	if className == "" {
		className = inlineClassName(parentName, name, cfg)
	}
	if cached, ok := s.Class(className); ok {
		return propertyWithContext(cached, name, required, cfg), s, nil
	}

	valueType := ir.EnumValueType("")
	nullable := false
	seen := map[any]struct{}{}
	var values []ir.EnumValue

	for _, node := range schema.Enum {
		value, kind, err := enumLiteral(node)
		if err != nil {
			return nil, s, ir.NewPropertyError(err.Error(), schema)
		}
		if kind == "" { // null literal: the enum is nullable, not mixed
			nullable = true
			continue
		}
		if valueType == "" {
			valueType = kind
		} else if valueType != kind {
			return nil, s, ir.NewPropertyError(
				"enum must be all one type, found mixed string and int values for "+name, schema)
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, ir.EnumValue{Name: naming.EnumValueName(value), Value: value})
	}

	if len(values) == 0 {
		return nil, s, ir.NewPropertyError("enum must have at least one value for "+name, schema)
	}

	if declaredNullable := schema.Nullable; declaredNullable != nil && *declaredNullable {
		nullable = true
	}

	class := classFor(className)
	prop := &ir.EnumProperty{
		PropertyBase: ir.PropertyBase{
			Name:        name,
			Ident:       naming.Ident(name, cfg.Naming.FieldPrefix),
			Required:    required,
			Nullable:    nullable,
			Description: schema.Description,
		},
		Class:     class,
		ValueType: valueType,
		Values:    values,
	}
	prop.AddImport("models/" + class.Module)

	s, err := s.addClass(className, prop)
	if err != nil {
		return nil, s, err
	}
	return prop, s, nil
}

// enumLiteral decodes one enum entry. The empty kind marks a null
// literal, which contributes nullability rather than a value.
func enumLiteral(node *yaml.Node) (any, ir.EnumValueType, error) {
	if node == nil {
		return nil, "", nil
	}
	switch node.Tag {
	case "!!null":
		return nil, "", nil
	case "!!str":
		return node.Value, ir.EnumString, nil
	case "!!int":
		v, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("invalid integer enum value %q", node.Value)
		}
		return v, ir.EnumInt, nil
	default:
		return nil, "", fmt.Errorf("unsupported enum value type %s (%q)", node.Tag, node.Value)
	}
}

// buildList recurses into the element schema and wraps the result.
func buildList(name string, required bool, schema *base.Schema, s Schemas, parentName string, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	if schema.Items == nil || !schema.Items.IsA() {
		return nil, s, ir.NewPropertyError("array schema for "+name+" has no items", schema)
	}

	inner, s, err := PropertyFromProxy(name+"_item", true, schema.Items.A, s, parentName, cfg)
	if err != nil {
		return nil, s, err
	}

	prop := &ir.ListProperty{
		PropertyBase: ir.PropertyBase{
			Name:        name,
			Ident:       naming.Ident(name, cfg.Naming.FieldPrefix),
			Required:    required,
			Description: schema.Description,
		},
		Inner: inner,
	}
	for _, ref := range inner.Base().Imports() {
		prop.AddImport(ref)
	}
	return prop, s, nil
}

// buildUnion recurses into every layered sub-schema. A union that
// collapses to exactly one resolvable member simplifies to that member.
func buildUnion(name string, required bool, schema *base.Schema, className string, s Schemas, parentName string, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	subSchemas := make([]*base.SchemaProxy, 0, len(schema.AllOf)+len(schema.OneOf)+len(schema.AnyOf))
	subSchemas = append(subSchemas, schema.AllOf...)
	subSchemas = append(subSchemas, schema.OneOf...)
	subSchemas = append(subSchemas, schema.AnyOf...)

	unionParent := parentName
	if className != "" {
		unionParent = className
	}

	var members []ir.Property
	for i, sub := range subSchemas {
		member, updated, err := PropertyFromProxy(fmt.Sprintf("%s_type_%d", name, i), required, sub, s, unionParent, cfg)
		if err != nil {
			return nil, s, ir.NewPropertyError(
				fmt.Sprintf("invalid property in union %s: %s", name, err.Detail), err.Data)
		}
		s = updated
		members = append(members, member)
	}

	if len(members) == 1 {
		return propertyWithContext(members[0], name, required, cfg), s, nil
	}

	prop := &ir.UnionProperty{
		PropertyBase: ir.PropertyBase{
			Name:        name,
			Ident:       naming.Ident(name, cfg.Naming.FieldPrefix),
			Required:    required,
			Description: schema.Description,
		},
		Inner: members,
	}
	for _, member := range members {
		for _, ref := range member.Base().Imports() {
			prop.AddImport(ref)
		}
	}
	return prop, s, nil
}

// buildModel produces a named object: required fields from the explicit
// required list, everything else optional. A model with no declared
// fields but an additionalProperties schema becomes a free-form mapping.
func buildModel(name string, required bool, schema *base.Schema, className string, s Schemas, parentName string, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	if className == "" {
		className = inlineClassName(parentName, name, cfg)
	}
	if cached, ok := s.Class(className); ok {
		return propertyWithContext(cached, name, required, cfg), s, nil
	}

	s = s.beginResolving(className)

	requiredSet := make(map[string]struct{}, len(schema.Required))
	for _, field := range schema.Required {
		requiredSet[field] = struct{}{}
	}

	_, nullable := declaredType(schema)

	class := classFor(className)
	model := &ir.ModelProperty{
		PropertyBase: ir.PropertyBase{
			Name:        name,
			Ident:       naming.Ident(name, cfg.Naming.FieldPrefix),
			Required:    required,
			Nullable:    nullable,
			Description: schema.Description,
		},
		Class: class,
	}

	usedIdents := map[string]struct{}{}
	if schema.Properties != nil {
		for fieldName, fieldProxy := range schema.Properties.FromOldest() {
			_, fieldRequired := requiredSet[fieldName]
			field, updated, err := PropertyFromProxy(fieldName, fieldRequired, fieldProxy, s, className, cfg)
			if err != nil {
				return nil, s.doneResolving(className), ir.NewPropertyError(
					fmt.Sprintf("unable to process property %s of model %s: %s", fieldName, className, err.Detail), err.Data)
			}
			s = updated

			ident := field.Base().Ident
			if _, taken := usedIdents[ident]; taken {
				return nil, s.doneResolving(className), ir.NewPropertyError(
					fmt.Sprintf("multiple properties of model %s share the identifier %q", className, ident), schema)
			}
			usedIdents[ident] = struct{}{}

			if fieldRequired {
				model.RequiredProps = append(model.RequiredProps, field)
			} else {
				model.OptionalProps = append(model.OptionalProps, field)
			}
			for _, ref := range field.Base().Imports() {
				model.AddImport(ref)
			}
		}
	}

	if ap := schema.AdditionalProperties; ap != nil {
		switch {
		case ap.IsA():
			additional, updated, err := PropertyFromProxy(name+"_additional_property", true, ap.A, s, className, cfg)
			if err != nil {
				return nil, s.doneResolving(className), err
			}
			s = updated
			model.AdditionalProps = additional
			for _, ref := range additional.Base().Imports() {
				model.AddImport(ref)
			}
		case ap.IsB() && ap.B:
			model.AdditionalProps = scalarProperty(name+"_additional_property", true, ir.ScalarAny, cfg)
		}
	}

	model.AddImport("models/" + class.Module)

	s, err := s.addClass(className, model)
	if err != nil {
		return nil, s, err
	}
	return model, s, nil
}

func inlineClassName(parentName, name string, cfg *config.Config) string {
	joined := strings.TrimPrefix(parentName+"_"+name, "_")
	className := naming.ClassName(joined, cfg.Naming.FieldPrefix)
	return cfg.Naming.ClassNameOverride(className)
}
