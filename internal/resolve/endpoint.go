package resolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"

	"github.com/mhersz/astrid/internal/config"
	"github.com/mhersz/astrid/internal/ir"
	"github.com/mhersz/astrid/internal/naming"
)

var pathParamPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// GenerateOperationID synthesizes an operation name for operations that
// do not declare one.
func GenerateOperationID(path, method string) string {
	clean := strings.NewReplacer("{", "", "}", "", "/", "_").Replace(path)
	clean = strings.Trim(clean, "_")
	return strings.ToLower(method) + "_" + clean
}

// EndpointFromOperation builds one endpoint through staged construction:
// parameters, then responses, then bodies, then security. A ParseError
// from a required phase discards the endpoint; everything else lands in
// the endpoint's own error list.
func EndpointFromOperation(path, method, tag string, op *v3.Operation, pathItem *v3.PathItem, s Schemas, p Parameters, schemes map[string]*ir.SecurityProperty, cfg *config.Config) (*ir.Endpoint, Schemas, Parameters, *ir.ParseError) {
	name := op.OperationId
	if name == "" {
		name = GenerateOperationID(path, method)
	}

	endpoint := ir.NewEndpoint(path, method, name, naming.Ident(name, cfg.Naming.FieldPrefix), tag)
	endpoint.Summary = unescapeQuotes(op.Summary)
	endpoint.Description = unescapeQuotes(op.Description)
	for _, requirement := range op.Security {
		if requirement == nil || requirement.Requirements == nil {
			continue
		}
		for schemeName, scopes := range requirement.Requirements.FromOldest() {
			endpoint.Security = append(endpoint.Security, ir.SecurityRequirement{Name: schemeName, Scopes: scopes})
		}
	}

	endpoint, s, p, err := addParameters(endpoint, op.Parameters, s, p, cfg)
	if err != nil {
		return nil, s, p, err
	}
	// Path-item parameters fold in after the operation's own, so the
	// operation wins on name+location collisions.
	if pathItem != nil {
		endpoint, s, p, err = addParameters(endpoint, pathItem.Parameters, s, p, cfg)
		if err != nil {
			return nil, s, p, err
		}
	}

	endpoint, err = sortParameters(endpoint)
	if err != nil {
		return nil, s, p, err
	}

	endpoint, s = addResponses(endpoint, op.Responses, s, cfg)

	endpoint, s, err = addBodies(endpoint, op.RequestBody, s, cfg)
	if err != nil {
		return nil, s, p, err
	}

	endpoint = addSecurity(endpoint, op.Security, schemes, cfg)

	return endpoint, s, p, nil
}

type paramKey struct {
	name     string
	location string
}

// addParameters resolves one parameter list into the endpoint. Duplicate
// (name, location) pairs within the list are a hard error: the source
// document is specification-invalid. Parameters already present in the
// target location are skipped, which is what gives earlier lists
// precedence.
func addParameters(endpoint *ir.Endpoint, params []*v3.Parameter, s Schemas, p Parameters, cfg *config.Config) (*ir.Endpoint, Schemas, Parameters, *ir.ParseError) {
	if len(params) == 0 {
		return endpoint, s, p, nil
	}

	endpoint = endpoint.Clone()
	unique := map[paramKey]struct{}{}

	for _, param := range params {
		if param == nil || param.Schema == nil {
			continue
		}

		location := strings.ToLower(param.In)
		target := paramsByLocation(endpoint, location)
		if target == nil {
			return nil, s, p, ir.NewParseError(
				fmt.Sprintf("parameter %s of endpoint %s has unknown location %q", param.Name, endpoint.Name, param.In))
		}

		key := paramKey{name: param.Name, location: location}
		if _, dup := unique[key]; dup {
			return nil, s, p, ir.NewParseError(fmt.Sprintf(
				"parameters must not contain duplicates: parameter named %q declared twice in %q for endpoint %s",
				param.Name, location, endpoint.Name))
		}
		unique[key] = struct{}{}

		prop, updatedSchemas, updatedParams, perr := parameterProperty(param, s, p, endpoint.Name, cfg)
		if perr != nil {
			return nil, s, p, ir.NewParseError(
				fmt.Sprintf("cannot parse parameter %s of endpoint %s: %s", param.Name, endpoint.Name, perr.Detail))
		}
		s, p = updatedSchemas, updatedParams

		if _, exists := target.Get(prop.Base().Name); exists {
			// Declared earlier with higher precedence.
			continue
		}

		prop, perr2 := disambiguateAcrossLocations(endpoint, prop, location, cfg)
		if perr2 != nil {
			return nil, s, p, perr2
		}

		if _, taken := endpoint.UsedIdents[prop.Base().Ident]; taken {
			return nil, s, p, ir.NewParseError(fmt.Sprintf(
				"parameters of endpoint %s share the identifier %q", endpoint.Name, prop.Base().Ident))
		}

		if location == "query" && (prop.Base().Nullable || !prop.Base().Required) {
			// Query strings have no separate absent encoding, so
			// nullable and not-required collapse into one.
			prop = ir.AsOptionalNullable(prop)
		}

		endpoint.AddImports(prop.Base().Imports())
		endpoint.UsedIdents[prop.Base().Ident] = struct{}{}
		paramsByLocation(endpoint, location).Set(prop.Base().Name, prop)
	}

	return endpoint, s, p, nil
}

// parameterProperty resolves a parameter's schema into a Property,
// interning reusable component parameters so a shared declaration
// resolves exactly once.
func parameterProperty(param *v3.Parameter, s Schemas, p Parameters, endpointName string, cfg *config.Config) (ir.Property, Schemas, Parameters, *ir.PropertyError) {
	required := param.Required != nil && *param.Required

	if canonical := p.canonicalName(param); canonical != "" {
		if cached, ok := p.cached(canonical); ok {
			return propertyWithContext(cached, param.Name, required, cfg), s, p, nil
		}
		prop, s, err := PropertyFromProxy(param.Name, required, param.Schema, s, canonical, cfg)
		if err != nil {
			return nil, s, p, err
		}
		return prop, s, p.withCached(canonical, prop), nil
	}

	prop, s, err := PropertyFromProxy(param.Name, required, param.Schema, s, endpointName, cfg)
	return prop, s, p, err
}

// disambiguateAcrossLocations renames both sides when the same declared
// name already exists in a different location, appending the location to
// the derived identifier. A disambiguated identifier that still collides
// is a hard error. The endpoint must already be this stage's clone.
func disambiguateAcrossLocations(endpoint *ir.Endpoint, prop ir.Property, location string, cfg *config.Config) (ir.Property, *ir.ParseError) {
	name := prop.Base().Name
	for _, other := range []string{"path", "query", "header", "cookie"} {
		if other == location {
			continue
		}
		otherParams := paramsByLocation(endpoint, other)
		existing, ok := otherParams.Get(name)
		if !ok {
			continue
		}

		delete(endpoint.UsedIdents, existing.Base().Ident)
		renamed := ir.Renamed(existing, naming.Ident(name+"_"+other, cfg.Naming.FieldPrefix))
		if _, taken := endpoint.UsedIdents[renamed.Base().Ident]; taken {
			return prop, ir.NewParseError(fmt.Sprintf(
				"parameters of endpoint %s share the identifier %q", endpoint.Name, renamed.Base().Ident))
		}
		endpoint.UsedIdents[renamed.Base().Ident] = struct{}{}
		otherParams.Set(name, renamed)

		prop = ir.Renamed(prop, naming.Ident(name+"_"+location, cfg.Naming.FieldPrefix))
	}
	return prop, nil
}

func paramsByLocation(endpoint *ir.Endpoint, location string) *orderedmap.Map[string, ir.Property] {
	switch location {
	case "path":
		return endpoint.PathParams
	case "query":
		return endpoint.QueryParams
	case "header":
		return endpoint.HeaderParams
	case "cookie":
		return endpoint.CookieParams
	default:
		return nil
	}
}

// sortParameters reorders path parameters to match the literal placeholder
// order of the path template and puts required query parameters first,
// keeping relative order within each group. A mismatch between the
// template's placeholders and the declared path parameters is a hard
// error: the path and its parameters have drifted apart.
func sortParameters(endpoint *ir.Endpoint) (*ir.Endpoint, *ir.ParseError) {
	endpoint = endpoint.Clone()

	var placeholders []string
	for _, match := range pathParamPattern.FindAllStringSubmatch(endpoint.Path, -1) {
		placeholders = append(placeholders, match[1])
	}

	if len(placeholders) != endpoint.PathParams.Len() {
		return nil, pathDriftError(endpoint)
	}
	sortedPath := orderedmap.New[string, ir.Property]()
	for _, placeholder := range placeholders {
		prop, ok := endpoint.PathParams.Get(placeholder)
		if !ok {
			return nil, pathDriftError(endpoint)
		}
		sortedPath.Set(placeholder, prop)
	}
	endpoint.PathParams = sortedPath

	sortedQuery := orderedmap.New[string, ir.Property]()
	for name, prop := range endpoint.QueryParams.FromOldest() {
		if prop.Base().Required {
			sortedQuery.Set(name, prop)
		}
	}
	for name, prop := range endpoint.QueryParams.FromOldest() {
		if !prop.Base().Required {
			sortedQuery.Set(name, prop)
		}
	}
	endpoint.QueryParams = sortedQuery

	return endpoint, nil
}

func pathDriftError(endpoint *ir.Endpoint) *ir.ParseError {
	return ir.NewParseError(fmt.Sprintf(
		"incorrect path templating for %s (path parameters do not match with path)", endpoint.Path))
}

// addResponses resolves each declared status code. Invalid codes and
// unresolvable payloads produce endpoint-scoped warnings and drop the
// single response; they never discard the endpoint.
func addResponses(endpoint *ir.Endpoint, responses *v3.Responses, s Schemas, cfg *config.Config) (*ir.Endpoint, Schemas) {
	if responses == nil || responses.Codes == nil {
		return endpoint, s
	}

	endpoint = endpoint.Clone()
	for code, responseData := range responses.Codes.FromOldest() {
		status, err := strconv.Atoi(code)
		if err != nil || status < 100 || status > 599 {
			endpoint.Errors = append(endpoint.Errors, ir.NewWarning(fmt.Sprintf(
				"invalid response status code %s (not a valid HTTP status code), response will be omitted", code)))
			continue
		}

		response, updated, perr := responseFromData(status, responseData, s, endpoint.Name, cfg)
		if perr != nil {
			endpoint.Errors = append(endpoint.Errors, ir.NewWarning(fmt.Sprintf(
				"cannot parse response for status code %d (%s), response will be omitted", status, perr.Detail)))
			continue
		}
		s = updated

		endpoint.AddImports(response.Prop.Base().Imports())
		endpoint.Responses = append(endpoint.Responses, response)
	}

	return endpoint, s
}

// addBodies picks at most one JSON, one form and one multipart body from
// the declared request content. Content kinds beyond those three are
// unsupported and silently skipped.
func addBodies(endpoint *ir.Endpoint, body *v3.RequestBody, s Schemas, cfg *config.Config) (*ir.Endpoint, Schemas, *ir.ParseError) {
	if body == nil || body.Content == nil {
		return endpoint, s, nil
	}

	endpoint = endpoint.Clone()

	jsonBody, s, err := parseJSONBody(body, s, endpoint.Name, cfg)
	if err != nil {
		return nil, s, ir.NewParseError(
			fmt.Sprintf("cannot parse JSON body of endpoint %s: %s", endpoint.Name, err.Detail))
	}

	formBody, s, err := parseFormBody(body, s, endpoint.Name, cfg)
	if err != nil {
		return nil, s, ir.NewParseError(
			fmt.Sprintf("cannot parse form body of endpoint %s: %s", endpoint.Name, err.Detail))
	}

	multipartBody, s, err := parseMultipartBody(body, s, endpoint.Name, cfg)
	if err != nil {
		return nil, s, ir.NewParseError(
			fmt.Sprintf("cannot parse multipart body of endpoint %s: %s", endpoint.Name, err.Detail))
	}

	if jsonBody != nil {
		endpoint.JSONBody = jsonBody
		endpoint.AddImports(jsonBody.Base().Imports())
	}
	if formBody != nil {
		endpoint.FormBody = formBody
		endpoint.AddImports(formBody.Base().Imports())
	}
	if multipartBody != nil {
		endpoint.MultipartBody = multipartBody
		endpoint.AddImports(multipartBody.Base().Imports())
	}

	return endpoint, s, nil
}

// parseJSONBody accepts the first content entry that is exactly
// application/json or ends in +json.
func parseJSONBody(body *v3.RequestBody, s Schemas, parentName string, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	for contentType, media := range body.Content.FromOldest() {
		ct := normalizeContentType(contentType)
		if ct != "application/json" && !strings.HasSuffix(ct, "+json") {
			continue
		}
		if media == nil || media.Schema == nil {
			return nil, s, nil
		}
		return PropertyFromProxy("json_body", true, media.Schema, s, parentName, cfg)
	}
	return nil, s, nil
}

func parseFormBody(body *v3.RequestBody, s Schemas, parentName string, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	media := contentByType(body, "application/x-www-form-urlencoded")
	if media == nil || media.Schema == nil {
		return nil, s, nil
	}
	return PropertyFromProxy("data", true, media.Schema, s, parentName, cfg)
}

func parseMultipartBody(body *v3.RequestBody, s Schemas, parentName string, cfg *config.Config) (ir.Property, Schemas, *ir.PropertyError) {
	media := contentByType(body, "multipart/form-data")
	if media == nil || media.Schema == nil {
		return nil, s, nil
	}
	prop, s, err := PropertyFromProxy("multipart_data", true, media.Schema, s, parentName, cfg)
	if err != nil {
		return nil, s, err
	}
	if model, ok := prop.(*ir.ModelProperty); ok {
		// Controlled evolution of the registered class: the multipart
		// marker changes rendering, not shape.
		marked := model.Clone().(*ir.ModelProperty)
		marked.IsMultipartBody = true
		s = s.withClass(marked.Class.Name, marked)
		prop = marked
	}
	return prop, s, nil
}

func contentByType(body *v3.RequestBody, wanted string) *v3.MediaType {
	for contentType, media := range body.Content.FromOldest() {
		if normalizeContentType(contentType) == wanted {
			return media
		}
	}
	return nil
}

func normalizeContentType(contentType string) string {
	return strings.TrimSpace(strings.Split(contentType, ";")[0])
}

// addSecurity matches the operation's security requirements against the
// declared scheme table and synthesizes one credentials shape over
// whatever matched. Only the first scheme of a multi-scheme requirement
// is honored.
func addSecurity(endpoint *ir.Endpoint, requirements []*base.SecurityRequirement, schemes map[string]*ir.SecurityProperty, cfg *config.Config) *ir.Endpoint {
	endpoint = endpoint.Clone()

	seen := map[string]struct{}{}
	for _, requirement := range requirements {
		if requirement == nil || requirement.Requirements == nil {
			continue
		}
		pair := requirement.Requirements.First()
		if pair == nil {
			continue
		}
		name := pair.Key()

		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		scheme, ok := schemes[name]
		if !ok {
			endpoint.Errors = append(endpoint.Errors, ir.NewWarning(fmt.Sprintf(
				"security requirement %q of endpoint %s does not match any declared scheme", name, endpoint.Name)))
			continue
		}
		endpoint.SecurityParams.Set(name, scheme)
	}

	if endpoint.SecurityParams.Len() == 0 {
		endpoint.RequiresSecurity = false
		return endpoint
	}

	var matched []*ir.SecurityProperty
	for _, scheme := range endpoint.SecurityParams.FromOldest() {
		matched = append(matched, scheme)
	}
	credentials := BuildCredentialsProperty("credentials", matched, cfg)
	endpoint.Credentials = credentials
	endpoint.RequiresSecurity = true
	endpoint.AddImports(credentials.Base().Imports())

	return endpoint
}

func unescapeQuotes(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\"`, `"`), `\'`, `'`)
}
