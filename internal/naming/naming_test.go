package naming

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPascalCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello_world", "HelloWorld"},
		{"hello-world", "HelloWorld"},
		{"hello world", "HelloWorld"},
		{"helloWorld", "HelloWorld"},
		{"HelloWorld", "HelloWorld"},
		{"api_key", "APIKey"},
		{"user_id", "UserID"},
		{"http_url", "HTTPURL"},
		{"json_data", "JSONData"},
		{"uuid", "UUID"},
		{"pet_store", "PetStore"},
		{"get_pets_by_id", "GetPetsByID"},
		{"list_api_keys", "ListAPIKeys"},
		{"", ""},
		{"a", "A"},
		{"A", "A"},
		{"abc", "Abc"},
		{"ABC", "Abc"},
		{"petId", "PetID"},
		{"userId", "UserID"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := PascalCase(tt.input)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello_world", "helloWorld"},
		{"hello-world", "helloWorld"},
		{"HelloWorld", "helloWorld"},
		{"api_key", "apiKey"},
		{"user_id", "userID"},
		{"json_data", "jsonData"},
		{"", ""},
		{"a", "a"},
		{"A", "a"},
		{"petId", "petID"},
		{"UserId", "userID"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := CamelCase(tt.input)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HelloWorld", "hello_world"},
		{"helloWorld", "hello_world"},
		{"hello_world", "hello_world"},
		{"APIKey", "apikey"},
		{"userID", "user_id"},
		{"", ""},
		{"a", "a"},
		{"ABC", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SnakeCase(tt.input)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestIdent(t *testing.T) {
	tests := []struct {
		input    string
		prefix   string
		expected string
	}{
		{"hello_world", "", "helloWorld"},
		{"type", "", "fieldType"},
		{"import", "", "fieldImport"},
		{"123abc", "", "field123abc"},
		{"1", "", "field1"},
		{"", "", "field"},
		{"type", "my", "myType"},
		{"api_key", "", "apiKey"},
		{"user-name", "", "userName"},
		{"limit", "", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Ident(tt.input, tt.prefix)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		input    string
		prefix   string
		expected string
	}{
		{"pet_store", "", "PetStore"},
		{"pet", "", "Pet"},
		{"123_model", "", "Field123Model"},
		{"123_model", "my", "My123Model"},
		{"api_response", "", "APIResponse"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ClassName(tt.input, tt.prefix)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestEnumValueName(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string literal", "available", "Available"},
		{"multi word", "not_found", "NotFound"},
		{"empty string", "", "Empty"},
		{"digit leading", "1st", "Value1st"},
		{"int literal", int64(10), "Value10"},
		{"negative int", int64(-3), "ValueMinus3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnumValueName(tt.input)
			require.Equal(t, tt.expected, got)
		})
	}
}
