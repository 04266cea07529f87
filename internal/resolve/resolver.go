package resolve

import (
	"fmt"
	"net/http"
	"sort"

	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"

	"github.com/mhersz/astrid/internal/config"
	"github.com/mhersz/astrid/internal/ir"
)

// Result is the fully resolved intermediate representation of one
// document: endpoints bucketed by tag, the deduplicated class registry,
// the declared security schemes and the global credentials shape.
type Result struct {
	Title       string
	Description string
	Version     string

	EndpointsByTag  *orderedmap.Map[string, *ir.EndpointCollection]
	Schemas         Schemas
	SecuritySchemes map[string]*ir.SecurityProperty
	// Credentials unions every declared scheme, for callers that configure
	// authentication once rather than per endpoint.
	Credentials *ir.CredentialsProperty

	errors []*ir.ParseError
}

// Errors returns document-level soft failures followed by registry
// errors and the per-collection errors, flattened.
func (r *Result) Errors() []*ir.ParseError {
	errs := append([]*ir.ParseError(nil), r.errors...)
	errs = append(errs, r.Schemas.Errors()...)
	for _, collection := range r.EndpointsByTag.FromOldest() {
		errs = append(errs, collection.ParseErrors()...)
	}
	return errs
}

// Endpoints returns every surviving endpoint across all tags, in
// document order.
func (r *Result) Endpoints() []*ir.Endpoint {
	var all []*ir.Endpoint
	for _, collection := range r.EndpointsByTag.FromOldest() {
		all = append(all, collection.Endpoints...)
	}
	return all
}

// ResolveDocument runs the whole pipeline over a parsed document:
// component schemas first, then security schemes, then every operation
// of every path. Only a structurally unusable document fails outright;
// everything else degrades into recorded errors.
func ResolveDocument(doc *v3.Document, cfg *config.Config) (*Result, *ir.GeneratorError) {
	if doc == nil {
		return nil, ir.NewGeneratorError("invalid document", "document has no resolvable content")
	}

	result := &Result{
		EndpointsByTag:  orderedmap.New[string, *ir.EndpointCollection](),
		Schemas:         NewSchemas(),
		SecuritySchemes: map[string]*ir.SecurityProperty{},
	}
	if doc.Info != nil {
		result.Title = doc.Info.Title
		result.Description = doc.Info.Description
		result.Version = doc.Info.Version
	}

	s := resolveComponentSchemas(doc.Components, result.Schemas, cfg)
	s = resolveSecuritySchemes(doc.Components, result, s, cfg)
	p := NewParameters(doc.Components)

	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for path, pathItem := range doc.Paths.PathItems.FromOldest() {
			s, p = resolvePathItem(path, pathItem, result, s, p, cfg)
		}
	}

	result.Schemas = s
	result.Credentials = globalCredentials(result.SecuritySchemes, cfg)
	return result, nil
}

// resolveComponentSchemas registers every named component schema up
// front so endpoint resolution finds them by reference. A schema that
// fails to resolve is recorded against the registry and skipped.
func resolveComponentSchemas(components *v3.Components, s Schemas, cfg *config.Config) Schemas {
	if components == nil || components.Schemas == nil {
		return s
	}
	for name, proxy := range components.Schemas.FromOldest() {
		ref := "#/components/schemas/" + name
		_, updated, err := resolveRef(name, true, ref, proxy, s, cfg)
		if err != nil {
			s = s.WithError(ir.NewParseError(
				fmt.Sprintf("cannot resolve component schema %s: %s", name, err.Detail)))
			continue
		}
		s = updated
	}
	return s
}

func resolveSecuritySchemes(components *v3.Components, result *Result, s Schemas, cfg *config.Config) Schemas {
	if components == nil || components.SecuritySchemes == nil {
		return s
	}
	for name, scheme := range components.SecuritySchemes.FromOldest() {
		prop, err := SecurityPropertyFromScheme(name, scheme, cfg)
		if err != nil {
			err.Level = ir.LevelWarning
			result.errors = append(result.errors, err)
			continue
		}
		result.SecuritySchemes[name] = prop
	}
	return s
}

func resolvePathItem(path string, pathItem *v3.PathItem, result *Result, s Schemas, p Parameters, cfg *config.Config) (Schemas, Parameters) {
	if pathItem == nil {
		return s, p
	}

	// Operations are struct fields on the path item, not an ordered
	// collection; walk them in a fixed method order.
	methods := []struct {
		method string
		op     *v3.Operation
	}{
		{http.MethodGet, pathItem.Get},
		{http.MethodPost, pathItem.Post},
		{http.MethodPut, pathItem.Put},
		{http.MethodDelete, pathItem.Delete},
		{http.MethodPatch, pathItem.Patch},
		{http.MethodHead, pathItem.Head},
		{http.MethodOptions, pathItem.Options},
		{http.MethodTrace, pathItem.Trace},
	}

	for _, m := range methods {
		if m.op == nil {
			continue
		}
		s, p = resolveOperation(path, m.method, m.op, pathItem, result, s, p, cfg)
	}
	return s, p
}

func resolveOperation(path, method string, op *v3.Operation, pathItem *v3.PathItem, result *Result, s Schemas, p Parameters, cfg *config.Config) (Schemas, Parameters) {
	tag := "default"
	if len(op.Tags) > 0 {
		tag = op.Tags[0]
	}
	if !cfg.TagIncluded(tag) {
		return s, p
	}

	collection, ok := result.EndpointsByTag.Get(tag)
	if !ok {
		collection = &ir.EndpointCollection{Tag: tag}
		result.EndpointsByTag.Set(tag, collection)
	}

	endpoint, s, p, err := EndpointFromOperation(path, method, tag, op, pathItem, s, p, result.SecuritySchemes, cfg)
	if err != nil {
		err.Header = fmt.Sprintf("endpoint %s %s was omitted", method, path)
		collection.Errors = append(collection.Errors, err)
		result.EndpointsByTag.Set(tag, collection)
		return s, p
	}

	collection.Endpoints = append(collection.Endpoints, endpoint)
	result.EndpointsByTag.Set(tag, collection)
	return s, p
}

// globalCredentials unions every declared scheme into one credentials
// shape, sorted by scheme name for a stable order.
func globalCredentials(schemes map[string]*ir.SecurityProperty, cfg *config.Config) *ir.CredentialsProperty {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)

	ordered := make([]*ir.SecurityProperty, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, schemes[name])
	}
	return BuildCredentialsProperty("credentials", ordered, cfg)
}
