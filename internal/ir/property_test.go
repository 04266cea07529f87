package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneIsIndependent(t *testing.T) {
	original := &ModelProperty{
		PropertyBase: PropertyBase{Name: "pet", Ident: "pet", Required: true},
		Class:        Class{Name: "Pet", Module: "pet"},
		RequiredProps: []Property{
			&ScalarProperty{PropertyBase: PropertyBase{Name: "id"}, Kind: ScalarInt},
		},
	}
	original.AddImport("models/pet")

	clone := original.Clone().(*ModelProperty)
	clone.Base().Name = "animal"
	clone.AddImport("models/animal")
	clone.RequiredProps = append(clone.RequiredProps,
		&ScalarProperty{PropertyBase: PropertyBase{Name: "name"}, Kind: ScalarString})

	require.Equal(t, "pet", original.Name)
	require.Len(t, original.RequiredProps, 1)
	require.NotContains(t, original.Imports(), "models/animal")
}

func TestRenamed(t *testing.T) {
	prop := &ScalarProperty{PropertyBase: PropertyBase{Name: "token", Ident: "token"}, Kind: ScalarString}

	renamed := Renamed(prop, "tokenQuery")
	require.Equal(t, "tokenQuery", renamed.Base().Ident)
	require.Equal(t, "token", renamed.Base().Name)
	require.Equal(t, "token", prop.Ident)
}

func TestAsOptionalNullable(t *testing.T) {
	prop := &ScalarProperty{PropertyBase: PropertyBase{Name: "limit", Required: true}, Kind: ScalarInt}

	normalized := AsOptionalNullable(prop)
	require.False(t, normalized.Base().Required)
	require.True(t, normalized.Base().Nullable)
	require.True(t, prop.Required)
}

func TestModelFreeForm(t *testing.T) {
	model := &ModelProperty{
		PropertyBase:    PropertyBase{Name: "labels"},
		AdditionalProps: &ScalarProperty{Kind: ScalarString},
	}
	require.True(t, model.IsFreeForm())
	require.Equal(t, "map[string]string", model.TypeString())

	model.OptionalProps = []Property{&ScalarProperty{PropertyBase: PropertyBase{Name: "x"}}}
	require.False(t, model.IsFreeForm())
}

func TestEndpointCloneIsIndependent(t *testing.T) {
	endpoint := NewEndpoint("/pets", "GET", "list_pets", "listPets", "pets")
	endpoint.QueryParams.Set("limit", &ScalarProperty{PropertyBase: PropertyBase{Name: "limit"}, Kind: ScalarInt})
	endpoint.UsedIdents["limit"] = struct{}{}

	clone := endpoint.Clone()
	clone.QueryParams.Set("cursor", &ScalarProperty{PropertyBase: PropertyBase{Name: "cursor"}, Kind: ScalarString})
	clone.UsedIdents["cursor"] = struct{}{}
	clone.Errors = append(clone.Errors, NewWarning("test"))

	require.Equal(t, 1, endpoint.QueryParams.Len())
	require.NotContains(t, endpoint.UsedIdents, "cursor")
	require.Empty(t, endpoint.Errors)
}

func TestEndpointTableName(t *testing.T) {
	endpoint := NewEndpoint("/pets", "GET", "list_pets", "listPets", "pets")
	require.Equal(t, "list_pets", endpoint.TableName())

	pet := &ModelProperty{Class: Class{Name: "Pet", Module: "pet"}}
	endpoint.Responses = append(endpoint.Responses, Response{StatusCode: 200, Prop: pet})
	require.Equal(t, "Pet", endpoint.TableName())

	endpoint.Responses[0].List = &DataPropertyPath{Path: []string{"items"}, Prop: pet}
	require.Equal(t, "Pet", endpoint.TableName())
}
