// Package report renders a resolved document as YAML and formats the
// accumulated error report for humans.
package report

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/mhersz/astrid/internal/ir"
	"github.com/mhersz/astrid/internal/resolve"
)

// Document is the serializable view of a resolution result.
type Document struct {
	Title       string           `yaml:"title"`
	Version     string           `yaml:"version,omitempty"`
	Description string           `yaml:"description,omitempty"`
	Classes     []Class          `yaml:"classes"`
	Tags        []TagGroup       `yaml:"tags"`
	Security    []SecurityScheme `yaml:"security,omitempty"`
}

type Class struct {
	Name   string  `yaml:"name"`
	Module string  `yaml:"module,omitempty"`
	Kind   string  `yaml:"kind"`
	Fields []Field `yaml:"fields,omitempty"`
	Values []any   `yaml:"values,omitempty"`
}

type Field struct {
	Name     string `yaml:"name"`
	Ident    string `yaml:"ident"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

type TagGroup struct {
	Tag       string     `yaml:"tag"`
	Endpoints []Endpoint `yaml:"endpoints"`
}

type Endpoint struct {
	Name          string     `yaml:"name"`
	Method        string     `yaml:"method"`
	Path          string     `yaml:"path"`
	Summary       string     `yaml:"summary,omitempty"`
	Secured       bool       `yaml:"secured,omitempty"`
	PathParams    []Field    `yaml:"pathParams,omitempty"`
	QueryParams   []Field    `yaml:"queryParams,omitempty"`
	HeaderParams  []Field    `yaml:"headerParams,omitempty"`
	CookieParams  []Field    `yaml:"cookieParams,omitempty"`
	JSONBody      string     `yaml:"jsonBody,omitempty"`
	FormBody      string     `yaml:"formBody,omitempty"`
	MultipartBody string     `yaml:"multipartBody,omitempty"`
	Responses     []Response `yaml:"responses,omitempty"`
	Table         string     `yaml:"table,omitempty"`
	ListPath      []string   `yaml:"listPath,omitempty"`
}

type Response struct {
	Status int    `yaml:"status"`
	Type   string `yaml:"type"`
}

type SecurityScheme struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Location  string `yaml:"location,omitempty"`
	Parameter string `yaml:"parameter,omitempty"`
	Scheme    string `yaml:"scheme,omitempty"`
}

// MarshalResult renders the resolved document as YAML.
func MarshalResult(result *resolve.Result) ([]byte, error) {
	doc := Document{
		Title:       result.Title,
		Version:     result.Version,
		Description: result.Description,
	}

	for _, name := range result.Schemas.ClassNames() {
		prop, _ := result.Schemas.Class(name)
		doc.Classes = append(doc.Classes, classView(name, prop))
	}

	for tag, collection := range result.EndpointsByTag.FromOldest() {
		group := TagGroup{Tag: tag}
		for _, endpoint := range collection.Endpoints {
			group.Endpoints = append(group.Endpoints, endpointView(endpoint))
		}
		doc.Tags = append(doc.Tags, group)
	}

	for _, scheme := range result.Credentials.Inner {
		doc.Security = append(doc.Security, securityView(scheme))
	}

	return yaml.Marshal(doc)
}

func classView(name string, prop ir.Property) Class {
	switch p := prop.(type) {
	case *ir.ModelProperty:
		c := Class{Name: name, Module: p.Class.Module, Kind: "model"}
		for _, field := range p.Fields() {
			c.Fields = append(c.Fields, fieldView(field))
		}
		return c
	case *ir.EnumProperty:
		c := Class{Name: name, Module: p.Class.Module, Kind: "enum"}
		for _, v := range p.Values {
			c.Values = append(c.Values, v.Value)
		}
		return c
	default:
		return Class{Name: name, Kind: prop.TypeString()}
	}
}

func fieldView(prop ir.Property) Field {
	b := prop.Base()
	return Field{
		Name:     b.Name,
		Ident:    b.Ident,
		Type:     prop.TypeString(),
		Required: b.Required,
		Nullable: b.Nullable,
	}
}

func endpointView(e *ir.Endpoint) Endpoint {
	view := Endpoint{
		Name:    e.Name,
		Method:  e.Method,
		Path:    e.Path,
		Summary: e.Summary,
		Secured: e.RequiresSecurity,
		Table:   e.TableName(),
	}
	for _, prop := range e.PathParams.FromOldest() {
		view.PathParams = append(view.PathParams, fieldView(prop))
	}
	for _, prop := range e.QueryParams.FromOldest() {
		view.QueryParams = append(view.QueryParams, fieldView(prop))
	}
	for _, prop := range e.HeaderParams.FromOldest() {
		view.HeaderParams = append(view.HeaderParams, fieldView(prop))
	}
	for _, prop := range e.CookieParams.FromOldest() {
		view.CookieParams = append(view.CookieParams, fieldView(prop))
	}
	if e.JSONBody != nil {
		view.JSONBody = e.JSONBody.TypeString()
	}
	if e.FormBody != nil {
		view.FormBody = e.FormBody.TypeString()
	}
	if e.MultipartBody != nil {
		view.MultipartBody = e.MultipartBody.TypeString()
	}
	for _, resp := range e.Responses {
		view.Responses = append(view.Responses, Response{Status: resp.StatusCode, Type: resp.Prop.TypeString()})
	}
	if list := e.ListProperty(); list != nil {
		view.ListPath = list.Path
		if len(view.ListPath) == 0 {
			view.ListPath = []string{}
		}
	}
	return view
}

func securityView(scheme *ir.SecurityProperty) SecurityScheme {
	return SecurityScheme{
		Name:      scheme.Name,
		Type:      string(scheme.Type),
		Location:  scheme.Location,
		Parameter: scheme.ParameterName,
		Scheme:    scheme.Scheme,
	}
}

// WriteErrors prints the accumulated error report, one line per entry,
// prefixed with its severity.
func WriteErrors(w io.Writer, errs []*ir.ParseError) {
	for _, err := range errs {
		level := strings.ToUpper(string(err.Level))
		fmt.Fprintf(w, "[%s] %s\n", level, err.Error())
	}
}

// CountBySeverity splits the report into warning and error totals.
func CountBySeverity(errs []*ir.ParseError) (warnings, errors int) {
	for _, err := range errs {
		if err.Level == ir.LevelWarning {
			warnings++
		} else {
			errors++
		}
	}
	return warnings, errors
}
