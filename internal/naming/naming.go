// Package naming derives stable, collision-resistant identifiers and
// class names from the loosely spelled names found in OpenAPI documents.
package naming

import (
	"fmt"
	"strings"
	"unicode"
)

var commonInitialisms = map[string]bool{
	"API":   true,
	"ASCII": true,
	"CPU":   true,
	"CSS":   true,
	"DNS":   true,
	"EOF":   true,
	"GUID":  true,
	"HTML":  true,
	"HTTP":  true,
	"HTTPS": true,
	"ID":    true,
	"IP":    true,
	"JSON":  true,
	"LHS":   true,
	"QPS":   true,
	"RAM":   true,
	"RHS":   true,
	"RPC":   true,
	"SLA":   true,
	"SMTP":  true,
	"SQL":   true,
	"SSH":   true,
	"TCP":   true,
	"TLS":   true,
	"TTL":   true,
	"UDP":   true,
	"UI":    true,
	"UID":   true,
	"UUID":  true,
	"URI":   true,
	"URL":   true,
	"UTF8":  true,
	"VM":    true,
	"XML":   true,
	"XMPP":  true,
	"XSRF":  true,
	"XSS":   true,
}

// SetAdditionalInitialisms adds custom initialisms to the naming rules.
// Call once during initialization, before any resolution runs.
func SetAdditionalInitialisms(initialisms []string) {
	for _, init := range initialisms {
		commonInitialisms[strings.ToUpper(init)] = true
	}
}

func PascalCase(s string) string {
	words := splitWords(s)
	var result strings.Builder
	for _, word := range words {
		upper := strings.ToUpper(word)
		if commonInitialisms[upper] {
			result.WriteString(upper)
		} else {
			result.WriteString(capitalize(word))
		}
	}
	return result.String()
}

func CamelCase(s string) string {
	words := splitWords(s)
	var result strings.Builder
	for i, word := range words {
		if i == 0 {
			result.WriteString(strings.ToLower(word))
			continue
		}
		upper := strings.ToUpper(word)
		if commonInitialisms[upper] {
			result.WriteString(upper)
		} else {
			result.WriteString(capitalize(word))
		}
	}
	return result.String()
}

func SnakeCase(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, "_")
}

func splitWords(s string) []string {
	var words []string
	var current strings.Builder

	for i, r := range s {
		if r == '_' || r == '-' || r == ' ' || r == '.' || r == '/' {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
			continue
		}

		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				if current.Len() > 0 {
					words = append(words, current.String())
					current.Reset()
				}
			}
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

var reservedWords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// Ident derives the camelCase identifier for a declared name. Names that
// would collide with a reserved word, start with a digit, or vanish
// entirely are disambiguated with the configured prefix.
func Ident(s, prefix string) string {
	ident := CamelCase(s)
	if needsPrefix(ident) {
		if prefix == "" {
			prefix = "field"
		}
		ident = CamelCase(prefix + "_" + s)
	}
	return ident
}

// ClassName derives the PascalCase canonical class name for a declared
// name, applying the same prefix policy as Ident.
func ClassName(s, prefix string) string {
	name := PascalCase(s)
	if name == "" || unicode.IsDigit(rune(name[0])) {
		if prefix == "" {
			prefix = "field"
		}
		name = PascalCase(prefix + "_" + s)
	}
	return name
}

func needsPrefix(ident string) bool {
	if ident == "" {
		return true
	}
	if unicode.IsDigit(rune(ident[0])) {
		return true
	}
	return reservedWords[strings.ToLower(ident)]
}

// EnumValueName derives the member identifier for one enum literal.
func EnumValueName(value any) string {
	switch v := value.(type) {
	case string:
		name := PascalCase(v)
		if name == "" {
			return "Empty"
		}
		if unicode.IsDigit(rune(name[0])) {
			return "Value" + name
		}
		return name
	case int64:
		if v < 0 {
			return fmt.Sprintf("ValueMinus%d", -v)
		}
		return fmt.Sprintf("Value%d", v)
	case int:
		return EnumValueName(int64(v))
	default:
		return fmt.Sprintf("Value%v", v)
	}
}
