package resolve

import (
	"testing"

	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/stretchr/testify/require"

	"github.com/mhersz/astrid/internal/ir"
)

func parseScheme(t *testing.T, name, fragment string) *v3.SecurityScheme {
	t.Helper()

	doc := parseDoc(t, `
openapi: 3.1.0
info:
  title: test
  version: "1.0"
paths: {}
components:
  securitySchemes:
    `+name+`:
`+fragment)

	scheme, ok := doc.Components.SecuritySchemes.Get(name)
	require.True(t, ok)
	return scheme
}

func TestSecurityPropertyFromScheme(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		wantErr  string
		check    func(t *testing.T, prop *ir.SecurityProperty)
	}{
		{
			name: "api_key",
			fragment: `      type: apiKey
      in: header
      name: X-API-Key`,
			check: func(t *testing.T, prop *ir.SecurityProperty) {
				require.Equal(t, ir.SecurityTypeAPIKey, prop.Type)
				require.Equal(t, "header", prop.Location)
				require.Equal(t, "X-API-Key", prop.ParameterName)
				require.Equal(t, "APIKey", prop.Class.Name)
			},
		},
		{
			name: "api_key_no_name",
			fragment: `      type: apiKey
      in: header`,
			wantErr: "must declare both a location and a parameter name",
		},
		{
			name: "bearer",
			fragment: `      type: http
      scheme: bearer
      bearerFormat: JWT`,
			check: func(t *testing.T, prop *ir.SecurityProperty) {
				require.Equal(t, ir.SecurityTypeHTTP, prop.Type)
				require.Equal(t, "bearer", prop.Scheme)
				require.Equal(t, "JWT", prop.BearerFormat)
			},
		},
		{
			name:     "http_no_scheme",
			fragment: `      type: http`,
			wantErr:  "must declare an auth scheme",
		},
		{
			name: "oauth",
			fragment: `      type: oauth2
      flows:
        clientCredentials:
          tokenUrl: https://example.com/token
          scopes: {}`,
			check: func(t *testing.T, prop *ir.SecurityProperty) {
				require.Equal(t, ir.SecurityTypeOAuth2, prop.Type)
			},
		},
		{
			name:     "unsupported",
			fragment: `      type: negotiate`,
			wantErr:  "unsupported type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme := parseScheme(t, tt.name, tt.fragment)
			prop, err := SecurityPropertyFromScheme(tt.name, scheme, testCfg())
			if tt.wantErr != "" {
				require.NotNil(t, err)
				require.Contains(t, err.Detail, tt.wantErr)
				return
			}
			require.Nil(t, err)
			require.Equal(t, tt.name, prop.Name)
			tt.check(t, prop)
		})
	}
}

func TestBuildCredentialsProperty(t *testing.T) {
	schemes := testSchemes()

	creds := BuildCredentialsProperty("credentials", []*ir.SecurityProperty{schemes["api_key"], schemes["oauth"]}, testCfg())
	require.True(t, creds.IsPopulated())
	require.Len(t, creds.Inner, 2)
	require.Equal(t, "Credentials", creds.Class.Name)

	empty := BuildCredentialsProperty("credentials", nil, testCfg())
	require.False(t, empty.IsPopulated())
}
