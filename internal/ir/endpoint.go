package ir

import (
	"github.com/pb33f/libopenapi/orderedmap"
)

// SecurityRequirement is one named reference to a declared authentication
// scheme, attached to an operation.
type SecurityRequirement struct {
	Name   string
	Scopes []string
}

// DataPropertyPath points at a nested "list of records" inside a response
// payload: the field names leading to the list and the list's item model.
type DataPropertyPath struct {
	Path []string
	Prop *ModelProperty
}

// Response is one status-code-keyed outcome of an operation.
type Response struct {
	StatusCode int
	Prop       Property
	// List locates a nested array of records for pagination/flattening,
	// when the payload carries one.
	List *DataPropertyPath
}

// Endpoint describes a single operation on one path template. It is built
// through staged construction and treated as immutable between stages;
// every stage clones before it writes.
type Endpoint struct {
	Path        string
	Method      string
	Name        string
	Ident       string
	Tag         string
	Summary     string
	Description string

	RequiresSecurity bool
	Security         []SecurityRequirement

	// PathParams is ordered to match the path template's placeholders.
	PathParams   *orderedmap.Map[string, Property]
	QueryParams  *orderedmap.Map[string, Property]
	HeaderParams *orderedmap.Map[string, Property]
	CookieParams *orderedmap.Map[string, Property]

	SecurityParams *orderedmap.Map[string, *SecurityProperty]
	Credentials    *CredentialsProperty

	JSONBody      Property
	FormBody      Property
	MultipartBody Property

	Responses []Response

	// ImportRefs accumulates every module reference the endpoint needs.
	ImportRefs map[string]struct{}
	// UsedIdents tracks derived identifiers claimed by this endpoint's
	// parameters across all namespaces.
	UsedIdents map[string]struct{}

	// Errors holds soft failures scoped to this endpoint only.
	Errors []*ParseError
}

// NewEndpoint returns an Endpoint with all collections initialized.
func NewEndpoint(path, method, name, ident, tag string) *Endpoint {
	return &Endpoint{
		Path:           path,
		Method:         method,
		Name:           name,
		Ident:          ident,
		Tag:            tag,
		PathParams:     orderedmap.New[string, Property](),
		QueryParams:    orderedmap.New[string, Property](),
		HeaderParams:   orderedmap.New[string, Property](),
		CookieParams:   orderedmap.New[string, Property](),
		SecurityParams: orderedmap.New[string, *SecurityProperty](),
		ImportRefs:     make(map[string]struct{}),
		UsedIdents:     make(map[string]struct{}),
	}
}

// Clone returns a copy whose collections are independent of the original.
func (e *Endpoint) Clone() *Endpoint {
	c := *e
	c.Security = append([]SecurityRequirement(nil), e.Security...)
	c.PathParams = cloneParams(e.PathParams)
	c.QueryParams = cloneParams(e.QueryParams)
	c.HeaderParams = cloneParams(e.HeaderParams)
	c.CookieParams = cloneParams(e.CookieParams)
	c.SecurityParams = cloneParams(e.SecurityParams)
	c.Responses = append([]Response(nil), e.Responses...)
	c.Errors = append([]*ParseError(nil), e.Errors...)
	c.ImportRefs = make(map[string]struct{}, len(e.ImportRefs))
	for ref := range e.ImportRefs {
		c.ImportRefs[ref] = struct{}{}
	}
	c.UsedIdents = make(map[string]struct{}, len(e.UsedIdents))
	for ident := range e.UsedIdents {
		c.UsedIdents[ident] = struct{}{}
	}
	return &c
}

func cloneParams[V any](m *orderedmap.Map[string, V]) *orderedmap.Map[string, V] {
	c := orderedmap.New[string, V]()
	if m == nil {
		return c
	}
	for name, prop := range m.FromOldest() {
		c.Set(name, prop)
	}
	return c
}

// AddImports merges module references into the endpoint's import set.
func (e *Endpoint) AddImports(refs []string) {
	for _, ref := range refs {
		e.ImportRefs[ref] = struct{}{}
	}
}

// AllParameters iterates path, query, header and cookie parameters plus
// bodies, in that order.
func (e *Endpoint) AllParameters() []Property {
	var all []Property
	for _, props := range []*orderedmap.Map[string, Property]{
		e.PathParams, e.QueryParams, e.HeaderParams, e.CookieParams,
	} {
		for _, prop := range props.FromOldest() {
			all = append(all, prop)
		}
	}
	if e.MultipartBody != nil {
		all = append(all, e.MultipartBody)
	}
	if e.JSONBody != nil {
		all = append(all, e.JSONBody)
	}
	return all
}

// PrimaryResponse returns the first retained response, the one downstream
// flattening keys off, or nil when every response was dropped.
func (e *Endpoint) PrimaryResponse() *Response {
	if len(e.Responses) == 0 {
		return nil
	}
	return &e.Responses[0]
}

// ListProperty returns the primary response's list-of-records path, if any.
func (e *Endpoint) ListProperty() *DataPropertyPath {
	resp := e.PrimaryResponse()
	if resp == nil {
		return nil
	}
	return resp.List
}

// HasJSONResponse reports whether any retained response has a 2xx status.
// Non-JSON payloads are never retained, so status is the only check left.
func (e *Endpoint) HasJSONResponse() bool {
	for _, resp := range e.Responses {
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return true
		}
	}
	return false
}

// TableName names the record set this endpoint yields, preferring the
// nested list model, then the payload model, then the endpoint itself.
func (e *Endpoint) TableName() string {
	if list := e.ListProperty(); list != nil {
		return list.Prop.Class.Name
	}
	if resp := e.PrimaryResponse(); resp != nil {
		if m, ok := resp.Prop.(*ModelProperty); ok {
			return m.Class.Name
		}
	}
	return e.Name
}

// EndpointCollection buckets the endpoints sharing one tag, together with
// the errors that dropped whole endpoints out of the bucket.
type EndpointCollection struct {
	Tag       string
	Endpoints []*Endpoint
	Errors    []*ParseError
}

// ParseErrors returns collection-level errors followed by the errors of
// every surviving endpoint.
func (c *EndpointCollection) ParseErrors() []*ParseError {
	errs := append([]*ParseError(nil), c.Errors...)
	for _, e := range c.Endpoints {
		errs = append(errs, e.Errors...)
	}
	return errs
}
