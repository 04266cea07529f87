package resolve

import (
	"fmt"
	"strings"

	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/mhersz/astrid/internal/config"
	"github.com/mhersz/astrid/internal/ir"
	"github.com/mhersz/astrid/internal/naming"
)

// SecurityPropertyFromScheme reduces one declared security scheme to its
// property form. Schemes missing the fields their type mandates are
// rejected; the caller records the rejection and resolution continues.
func SecurityPropertyFromScheme(name string, scheme *v3.SecurityScheme, cfg *config.Config) (*ir.SecurityProperty, *ir.ParseError) {
	if scheme == nil {
		return nil, ir.NewParseError(fmt.Sprintf("security scheme %q has no definition", name))
	}

	prop := &ir.SecurityProperty{
		PropertyBase: ir.PropertyBase{
			Name:        name,
			Ident:       naming.Ident(name, cfg.Naming.FieldPrefix),
			Required:    true,
			Description: scheme.Description,
		},
		Class: classFor(naming.ClassName(name, cfg.Naming.FieldPrefix)),
		Type:  ir.SecuritySchemeType(scheme.Type),
	}

	switch strings.ToLower(scheme.Type) {
	case "apikey":
		if scheme.In == "" || scheme.Name == "" {
			return nil, ir.NewParseError(fmt.Sprintf(
				"apiKey security scheme %q must declare both a location and a parameter name", name))
		}
		prop.Type = ir.SecurityTypeAPIKey
		prop.Location = strings.ToLower(scheme.In)
		prop.ParameterName = scheme.Name
	case "http":
		if scheme.Scheme == "" {
			return nil, ir.NewParseError(fmt.Sprintf(
				"http security scheme %q must declare an auth scheme", name))
		}
		prop.Type = ir.SecurityTypeHTTP
		prop.Scheme = strings.ToLower(scheme.Scheme)
		prop.BearerFormat = scheme.BearerFormat
	case "oauth2":
		prop.Type = ir.SecurityTypeOAuth2
	case "openidconnect":
		prop.Type = ir.SecurityTypeOpenIDConnect
	case "mutualtls":
		prop.Type = ir.SecurityTypeMutualTLS
	default:
		return nil, ir.NewParseError(fmt.Sprintf(
			"security scheme %q has unsupported type %q", name, scheme.Type))
	}

	return prop, nil
}

// BuildCredentialsProperty synthesizes the credentials shape over a set
// of matched schemes. The result carries only schemes that actually
// matched; an empty set yields an unpopulated property that marks the
// endpoint as open.
func BuildCredentialsProperty(name string, schemes []*ir.SecurityProperty, cfg *config.Config) *ir.CredentialsProperty {
	return &ir.CredentialsProperty{
		PropertyBase: ir.PropertyBase{
			Name:     name,
			Ident:    naming.Ident(name, cfg.Naming.FieldPrefix),
			Required: true,
		},
		Class: classFor(naming.ClassName(name, cfg.Naming.FieldPrefix)),
		Inner: append([]*ir.SecurityProperty(nil), schemes...),
	}
}
