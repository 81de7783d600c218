package dictionary

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/tbcparser/internal/common"
)

const documentSchema = `{
  "type": "object",
  "properties": {
    "version":      {"type": ["string", "number", "integer", "null"]},
    "aliases":      {"type": ["array", "object"]},
    "operators":    {"type": ["object", "null"]},
    "applications": {"type": ["object", "null"]},
    "sources":      {"type": ["array", "null"]}
  }
}`

var compiledDocumentSchema = jsonschema.MustCompileString("operators_dict.schema.json", documentSchema)

// AliasEntry maps one raw alias onto a canonical operator and optional application.
type AliasEntry struct {
	Alias       string `json:"alias"`
	Operator    string `json:"operator"`
	Application string `json:"application,omitempty"`
	Normalized  string `json:"normalized"`
}

// Source is one provenance reference listed in the dictionary document.
type Source struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// Snapshot is one immutable generation of the dictionary.
type Snapshot struct {
	Entries      []AliasEntry
	Operators    map[string]Metadata
	Applications map[string]Metadata
	Sources      []Source
	Version      string
	Checksum     string
	LoadedAt     time.Time
}

// Load reads and parses the dictionary document at path. JSON is the default;
// .yaml and .yml files are decoded as YAML.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrDictionarySource, path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a dictionary document. ext selects the decoder (".yaml"/".yml" or JSON).
func Parse(data []byte, ext string) (*Snapshot, error) {
	doc, err := decodeDocument(data, ext)
	if err != nil {
		return nil, err
	}
	if err := compiledDocumentSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDictionaryFormat, err)
	}
	root := doc.(map[string]any)

	entries, err := decodeAliases(root["aliases"], aliasKeyOrder(data, ext))
	if err != nil {
		return nil, err
	}
	checksum, err := canonicalChecksum(root)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Entries:      entries,
		Operators:    decodeMetadataMap(root["operators"], "display_name"),
		Applications: decodeMetadataMap(root["applications"], "name"),
		Sources:      decodeSources(root["sources"]),
		Version:      scalarString(root["version"]),
		Checksum:     checksum,
		LoadedAt:     time.Now(),
	}, nil
}

// decodeDocument returns a JSON-shaped value (maps, slices, json.Number, strings).
func decodeDocument(data []byte, ext string) (any, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: yaml: %v", common.ErrDictionaryFormat, err)
		}
		// re-encode through JSON so both formats share one value model
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: yaml: %v", common.ErrDictionaryFormat, err)
		}
		data = b
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: json: %v", common.ErrDictionaryFormat, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", common.ErrDictionaryFormat)
	}
	return doc, nil
}

// decodeAliases builds entries in document order. order lists the keys of a legacy
// alias mapping as they appear in the source, since decoded maps are unordered.
func decodeAliases(raw any, order []string) ([]AliasEntry, error) {
	var entries []AliasEntry
	switch aliases := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		for _, item := range aliases {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry, ok := newEntry(
				firstNonEmpty(obj, "alias", "pattern"),
				firstNonEmpty(obj, "operator", "value"),
				firstNonEmpty(obj, "application", "app"),
			)
			if ok {
				entries = append(entries, entry)
			}
		}
	case map[string]any:
		// legacy alias -> operator form
		for _, alias := range mappingKeys(aliases, order) {
			if entry, ok := newEntry(alias, scalarString(aliases[alias]), ""); ok {
				entries = append(entries, entry)
			}
		}
	default:
		return nil, fmt.Errorf("%w: \"aliases\" must be a list or a mapping", common.ErrDictionaryFormat)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].Normalized) > len(entries[j].Normalized)
	})
	return entries, nil
}

// mappingKeys returns the keys of m following order, once each. Keys order does not
// mention are appended sorted.
func mappingKeys(m map[string]any, order []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// aliasKeyOrder returns the keys of a top-level "aliases" mapping in source order, or nil
// when aliases is not a mapping or the document cannot be scanned.
func aliasKeyOrder(data []byte, ext string) []string {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yamlAliasKeyOrder(data)
	}
	return jsonAliasKeyOrder(data)
}

func yamlAliasKeyOrder(data []byte) []string {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "aliases" {
			continue
		}
		value := root.Content[i+1]
		if value.Kind != yaml.MappingNode {
			return nil
		}
		keys := make([]string, 0, len(value.Content)/2)
		for j := 0; j+1 < len(value.Content); j += 2 {
			keys = append(keys, value.Content[j].Value)
		}
		return keys
	}
	return nil
}

func jsonAliasKeyOrder(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		if key, _ := tok.(string); key != "aliases" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
			continue
		}
		if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
			return nil
		}
		var keys []string
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil
			}
			key, _ := tok.(string)
			keys = append(keys, key)
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
		}
		return keys
	}
	return nil
}

func newEntry(alias, operator, application string) (AliasEntry, bool) {
	alias = strings.TrimSpace(alias)
	operator = strings.TrimSpace(operator)
	if alias == "" || operator == "" {
		return AliasEntry{}, false
	}
	return AliasEntry{
		Alias:       alias,
		Operator:    operator,
		Application: strings.TrimSpace(application),
		Normalized:  Normalize(alias),
	}, true
}

func firstNonEmpty(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := scalarString(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

func decodeSources(raw any) []Source {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []Source
	for _, item := range list {
		switch v := item.(type) {
		case string:
			if url := strings.TrimSpace(v); url != "" {
				out = append(out, Source{URL: url})
			}
		case map[string]any:
			url := stringField(v, "url")
			if url == "" {
				continue
			}
			label, _ := v["label"].(string)
			out = append(out, Source{URL: url, Label: strings.TrimSpace(label)})
		}
	}
	return out
}

// canonicalChecksum hashes the document with sorted keys and unescaped HTML characters.
func canonicalChecksum(doc map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("%w: canonical encoding: %v", common.ErrDictionaryFormat, err)
	}
	sum := sha256.Sum256(bytes.TrimRight(buf.Bytes(), "\n"))
	return hex.EncodeToString(sum[:]), nil
}
