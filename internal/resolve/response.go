package resolve

import (
	"fmt"
	"strings"

	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/mhersz/astrid/internal/config"
	"github.com/mhersz/astrid/internal/ir"
)

// listScanDepth bounds how deep findListPath descends into a payload
// model looking for a nested list of records.
const listScanDepth = 2

// responseFromData resolves a single declared response into its payload
// property. JSON-ish content resolves through the schema registry,
// octet-stream becomes a file scalar, and a response with no usable
// content becomes an untyped placeholder named after its status code.
func responseFromData(status int, response *v3.Response, s Schemas, endpointName string, cfg *config.Config) (ir.Response, Schemas, *ir.PropertyError) {
	name := fmt.Sprintf("response_%d", status)

	if response == nil || response.Content == nil || response.Content.Len() == 0 {
		return anyResponse(status, name, cfg), s, nil
	}

	for contentType, media := range response.Content.FromOldest() {
		ct := normalizeContentType(contentType)
		switch {
		case ct == "application/json" || strings.HasSuffix(ct, "+json"):
			if media == nil || media.Schema == nil {
				return anyResponse(status, name, cfg), s, nil
			}
			prop, s, err := PropertyFromProxy(name, true, media.Schema, s, endpointName, cfg)
			if err != nil {
				return ir.Response{}, s, err
			}
			resp := ir.Response{StatusCode: status, Prop: prop}
			resp.List = findListPath(prop, listScanDepth)
			return resp, s, nil
		case ct == "application/octet-stream":
			return ir.Response{
				StatusCode: status,
				Prop:       scalarProperty(name, true, ir.ScalarFile, cfg),
			}, s, nil
		}
	}

	return anyResponse(status, name, cfg), s, nil
}

func anyResponse(status int, name string, cfg *config.Config) ir.Response {
	return ir.Response{
		StatusCode: status,
		Prop:       scalarProperty(name, true, ir.ScalarAny, cfg),
	}
}

// findListPath locates the first "list of records" inside a payload: a
// list whose elements are models, either as the payload itself or nested
// behind model fields, scanned in declaration order up to a bounded
// depth. The path holds the declared field names leading to the list.
func findListPath(prop ir.Property, depth int) *ir.DataPropertyPath {
	if list, ok := prop.(*ir.ListProperty); ok {
		if model, ok := list.Inner.(*ir.ModelProperty); ok {
			return &ir.DataPropertyPath{Prop: model}
		}
		return nil
	}

	model, ok := prop.(*ir.ModelProperty)
	if !ok || depth == 0 {
		return nil
	}
	for _, field := range model.Fields() {
		if nested := findListPath(field, depth-1); nested != nil {
			nested.Path = append([]string{field.Base().Name}, nested.Path...)
			return nested
		}
	}
	return nil
}
