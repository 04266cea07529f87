package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhersz/astrid/internal/ir"
)

func TestResponseWithoutContentBecomesAny(t *testing.T) {
	doc := parseDoc(t, `
openapi: 3.1.0
info:
  title: test
  version: "1.0"
paths:
  /pets:
    delete:
      operationId: delete_pets
      responses:
        "204":
          description: deleted
`)

	endpoint, _, err := buildEndpoint(t, doc, "/pets", "DELETE", nil)
	require.Nil(t, err)

	require.Len(t, endpoint.Responses, 1)
	resp := endpoint.Responses[0]
	require.Equal(t, 204, resp.StatusCode)
	require.Equal(t, "response_204", resp.Prop.Base().Name)
	require.Equal(t, ir.ScalarAny, resp.Prop.(*ir.ScalarProperty).Kind)
}

func TestOctetStreamResponseBecomesFile(t *testing.T) {
	doc := parseDoc(t, `
openapi: 3.1.0
info:
  title: test
  version: "1.0"
paths:
  /pets/export:
    get:
      operationId: export_pets
      responses:
        "200":
          description: ok
          content:
            application/octet-stream:
              schema:
                type: string
                format: binary
`)

	endpoint, _, err := buildEndpoint(t, doc, "/pets/export", "GET", nil)
	require.Nil(t, err)

	require.Len(t, endpoint.Responses, 1)
	require.Equal(t, ir.ScalarFile, endpoint.Responses[0].Prop.(*ir.ScalarProperty).Kind)
}

func TestResponseListDetection(t *testing.T) {
	doc := parseDoc(t, `
openapi: 3.1.0
info:
  title: test
  version: "1.0"
paths:
  /pets:
    get:
      operationId: list_pets
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  total:
                    type: integer
                  items:
                    type: array
                    items:
                      $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      properties:
        id:
          type: integer
`)

	endpoint, _, err := buildEndpoint(t, doc, "/pets", "GET", nil)
	require.Nil(t, err)

	list := endpoint.ListProperty()
	require.NotNil(t, list)
	require.Equal(t, []string{"items"}, list.Path)
	require.Equal(t, "Pet", list.Prop.Class.Name)
	require.Equal(t, "Pet", endpoint.TableName())
}

func TestFindListPath(t *testing.T) {
	pet := &ir.ModelProperty{
		PropertyBase: ir.PropertyBase{Name: "pet"},
		Class:        ir.Class{Name: "Pet", Module: "pet"},
	}
	petList := &ir.ListProperty{
		PropertyBase: ir.PropertyBase{Name: "pets"},
		Inner:        pet,
	}

	t.Run("top level list of models", func(t *testing.T) {
		path := findListPath(petList, listScanDepth)
		require.NotNil(t, path)
		require.Empty(t, path.Path)
		require.Same(t, pet, path.Prop)
	})

	t.Run("list nested in a model field", func(t *testing.T) {
		envelope := &ir.ModelProperty{
			PropertyBase:  ir.PropertyBase{Name: "envelope"},
			Class:         ir.Class{Name: "Envelope", Module: "envelope"},
			OptionalProps: []ir.Property{petList},
		}
		path := findListPath(envelope, listScanDepth)
		require.NotNil(t, path)
		require.Equal(t, []string{"pets"}, path.Path)
	})

	t.Run("scalar payload has no list", func(t *testing.T) {
		require.Nil(t, findListPath(&ir.ScalarProperty{Kind: ir.ScalarString}, listScanDepth))
	})

	t.Run("list of scalars is not a record list", func(t *testing.T) {
		scalarList := &ir.ListProperty{
			PropertyBase: ir.PropertyBase{Name: "names"},
			Inner:        &ir.ScalarProperty{Kind: ir.ScalarString},
		}
		require.Nil(t, findListPath(scalarList, listScanDepth))
	})

	t.Run("scan depth is bounded", func(t *testing.T) {
		inner := &ir.ModelProperty{
			PropertyBase:  ir.PropertyBase{Name: "inner"},
			Class:         ir.Class{Name: "Inner", Module: "inner"},
			OptionalProps: []ir.Property{petList},
		}
		middle := &ir.ModelProperty{
			PropertyBase:  ir.PropertyBase{Name: "middle"},
			Class:         ir.Class{Name: "Middle", Module: "middle"},
			OptionalProps: []ir.Property{inner},
		}
		outer := &ir.ModelProperty{
			PropertyBase:  ir.PropertyBase{Name: "outer"},
			Class:         ir.Class{Name: "Outer", Module: "outer"},
			OptionalProps: []ir.Property{middle},
		}
		require.NotNil(t, findListPath(middle, listScanDepth))
		require.Nil(t, findListPath(outer, listScanDepth))
	})
}
