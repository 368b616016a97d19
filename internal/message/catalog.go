// Package message loads chat message templates with {placeholder} substitution.
package message

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_messages.yaml
var defaultMessages []byte

// Catalog maps message keys to templates.
// Safe for concurrent reads; never mutated after load.
type Catalog struct {
	messages map[string]string
}

type catalogFile struct {
	Messages map[string]string `yaml:"messages"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultMessages)
	if err != nil {
		panic(fmt.Sprintf("embedded messages are invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file.
// If the file doesn't exist, returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading messages %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing messages %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from YAML with a top-level "messages" map.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Messages == nil {
		f.Messages = make(map[string]string)
	}
	return &Catalog{messages: f.Messages}, nil
}

// Get returns the template for key with each {name} replaced by
// placeholders[name]. A missing key yields the key itself.
func (c *Catalog) Get(key string, placeholders map[string]string) string {
	msg, ok := c.messages[key]
	if !ok {
		msg = key
	}
	if len(placeholders) == 0 {
		return msg
	}

	names := make([]string, 0, len(placeholders))
	for name := range placeholders {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", placeholders[name])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Format is Get with placeholders given as alternating name/value pairs.
func (c *Catalog) Format(key string, kv ...string) string {
	if len(kv) == 0 {
		return c.Get(key, nil)
	}
	placeholders := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		placeholders[kv[i]] = kv[i+1]
	}
	return c.Get(key, placeholders)
}

// Has reports whether the catalog defines key.
func (c *Catalog) Has(key string) bool {
	_, ok := c.messages[key]
	return ok
}
