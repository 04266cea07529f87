package config

import (
	"fmt"
	"os"
	"unicode"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Spec        string       `koanf:"spec"`
	Output      string       `koanf:"output"`
	Validate    bool         `koanf:"validate"`
	IncludeTags []string     `koanf:"include-tags"`
	ExcludeTags []string     `koanf:"exclude-tags"`
	Naming      NamingConfig `koanf:"naming"`
}

type NamingConfig struct {
	// FieldPrefix disambiguates identifiers that collide with reserved
	// words or start with a digit.
	FieldPrefix           string   `koanf:"field-prefix"`
	AdditionalInitialisms []string `koanf:"additional-initialisms"`
	// ClassOverrides maps canonical class names derived from the document
	// to caller-chosen replacements.
	ClassOverrides map[string]string `koanf:"class-overrides"`
}

// ClassNameOverride applies a configured override, returning the input
// name unchanged when none exists.
func (n NamingConfig) ClassNameOverride(name string) string {
	if override, ok := n.ClassOverrides[name]; ok {
		return override
	}
	return name
}

// BindFlags binds the resolver flags to a command.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: astrid.yaml)")
	flags.StringP("spec", "s", "", "OpenAPI spec file path")
	flags.StringP("output", "o", "", "Write the resolved IR to this file (YAML)")
	flags.Bool("validate", false, "Validate the document before resolving")
	flags.StringSlice("include-tags", nil, "Tags to include (exclusive)")
	flags.StringSlice("exclude-tags", nil, "Tags to exclude")
	flags.String("field-prefix", "", "Prefix for identifiers colliding with reserved words")
	flags.StringSlice("additional-initialisms", nil, "Additional initialisms for naming")
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat("astrid.yaml"); err == nil {
			configFile = "astrid.yaml"
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	getStringSlice := func(name string) []string {
		if v, err := cmd.Flags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		if v, err := cmd.PersistentFlags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		return nil
	}

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	if v := getString("spec"); v != "" {
		m["spec"] = v
	}
	if v := getString("output"); v != "" {
		m["output"] = v
	}
	if flagChanged("validate") {
		m["validate"] = getBool("validate")
	}
	if v := getStringSlice("include-tags"); len(v) > 0 {
		m["include-tags"] = v
	}
	if v := getStringSlice("exclude-tags"); len(v) > 0 {
		m["exclude-tags"] = v
	}
	if v := getString("field-prefix"); v != "" {
		m["naming.field-prefix"] = v
	}
	if v := getStringSlice("additional-initialisms"); len(v) > 0 {
		m["naming.additional-initialisms"] = v
	}

	return m
}

// ValidateConfig checks the loaded configuration for usable values.
func (c *Config) ValidateConfig() error {
	if c.Spec == "" {
		return fmt.Errorf("spec file is required")
	}
	if len(c.IncludeTags) > 0 && len(c.ExcludeTags) > 0 {
		return fmt.Errorf("include-tags and exclude-tags are mutually exclusive")
	}
	if p := c.Naming.FieldPrefix; p != "" {
		for i, r := range p {
			if unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r)) {
				continue
			}
			return fmt.Errorf("invalid field prefix: %q", p)
		}
	}
	return nil
}

// TagIncluded reports whether endpoints carrying the tag should be kept.
func (c *Config) TagIncluded(tag string) bool {
	if len(c.IncludeTags) > 0 {
		for _, t := range c.IncludeTags {
			if t == tag {
				return true
			}
		}
		return false
	}
	for _, t := range c.ExcludeTags {
		if t == tag {
			return false
		}
	}
	return true
}
