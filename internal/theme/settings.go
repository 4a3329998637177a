package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Settings errors.
var (
	ErrSettingsMissing   = errors.New("settings file not found")
	ErrMalformedSettings = errors.New("malformed settings document")
)

const defaultIndent = "    "

// SettingsDocument is a user-owned JSON object. Callers change it only
// through typed accessors for the keys they own; every other top-level
// key keeps its original bytes and position.
type SettingsDocument struct {
	raw    []byte
	indent string
}

// ParseSettings validates data as a JSON object. Comments and trailing
// commas are accepted and kept. Empty input is treated as an empty object.
func ParseSettings(data []byte) (*SettingsDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}\n")
	}
	if err := validateObject(strictJSON(data)); err != nil {
		return nil, err
	}

	raw := make([]byte, len(data))
	copy(raw, data)
	return &SettingsDocument{raw: raw, indent: detectIndent(raw)}, nil
}

// Bytes returns the serialized document.
func (d *SettingsDocument) Bytes() []byte {
	out := make([]byte, len(d.raw))
	copy(out, d.raw)
	return out
}

// Keys returns the top-level keys in document order.
func (d *SettingsDocument) Keys() []string {
	var keys []string
	gjson.ParseBytes(strictJSON(d.raw)).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// Raw returns the raw JSON text of a top-level key.
func (d *SettingsDocument) Raw(key string) (string, bool) {
	res := gjson.GetBytes(strictJSON(d.raw), escapeKey(key))
	if !res.Exists() {
		return "", false
	}
	return res.Raw, true
}

// SetRaw replaces (or adds) a top-level key with a JSON value. A key that
// appears more than once is refused with ErrDuplicateKey.
func (d *SettingsDocument) SetRaw(key string, value []byte) error {
	if !gjson.ValidBytes(value) {
		return fmt.Errorf("value for %q is not valid json", key)
	}
	formatted := d.format(value)

	stripped := strictJSON(d.raw)
	if err := checkUnique(stripped, key); err != nil {
		return err
	}
	commented := hasComments(d.raw, stripped)

	if _, ok := d.Raw(key); ok {
		if commented {
			d.raw, _ = spliceValue(d.raw, stripped, key, formatted)
			return nil
		}
		updated, err := sjson.SetRawBytes(d.raw, escapeKey(key), formatted)
		if err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
		d.raw = updated
		return nil
	}

	var updated []byte
	var err error
	if commented {
		updated, err = insertFirst(d.raw, stripped, key, formatted, d.indent)
	} else {
		updated, err = appendTopLevel(d.raw, key, formatted, d.indent)
	}
	if err != nil {
		return fmt.Errorf("add %q: %w", key, err)
	}
	d.raw = updated
	return nil
}

func (d *SettingsDocument) setValue(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	return d.SetRaw(key, data)
}

func (d *SettingsDocument) getValue(key string, out any) (bool, error) {
	raw, ok := d.Raw(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// format pretty-prints value for insertion one level below the top.
func (d *SettingsDocument) format(value []byte) []byte {
	out := pretty.PrettyOptions(value, &pretty.Options{
		Width:    80,
		Prefix:   d.indent,
		Indent:   d.indent,
		SortKeys: false,
	})
	out = bytes.TrimPrefix(out, []byte(d.indent))
	return bytes.TrimRight(out, "\n")
}

// appendTopLevel inserts "key": value before the closing brace of the
// top-level object.
func appendTopLevel(doc []byte, key string, value []byte, indent string) ([]byte, error) {
	end := bytes.LastIndexByte(doc, '}')
	if end < 0 {
		return nil, ErrMalformedSettings
	}
	body := bytes.TrimRight(doc[:end], " \t\r\n")
	empty := len(body) > 0 && body[len(body)-1] == '{'

	name, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(body)
	if !empty {
		buf.WriteByte(',')
	}
	buf.WriteByte('\n')
	buf.WriteString(indent)
	buf.Write(name)
	buf.WriteString(": ")
	buf.Write(value)
	buf.WriteByte('\n')
	buf.Write(doc[end:])
	return buf.Bytes(), nil
}

// detectIndent returns the whitespace used before the first top-level key.
// Blank and comment lines are passed over.
func detectIndent(doc []byte) string {
	start := bytes.IndexByte(doc, '{')
	if start < 0 {
		return defaultIndent
	}
	for _, line := range bytes.Split(doc[start+1:], []byte("\n"))[1:] {
		i := 0
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i == len(line) || line[i] == '/' || line[i] == '*' {
			continue
		}
		if i == 0 || line[i] != '"' {
			return defaultIndent
		}
		return string(line[:i])
	}
	return defaultIndent
}

// escapeKey makes a literal key safe to use as a gjson/sjson path.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SettingsStore loads and saves a settings document.
type SettingsStore interface {
	Load() (*SettingsDocument, error)
	Save(doc *SettingsDocument) error
}

// FileSettingsStore keeps a settings document on disk.
type FileSettingsStore struct {
	Path string
}

// Load reads the document. A missing file returns ErrSettingsMissing.
func (s FileSettingsStore) Load() (*SettingsDocument, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSettingsMissing, s.Path)
		}
		return nil, err
	}
	return ParseSettings(data)
}

// Save writes the document back whole.
func (s FileSettingsStore) Save(doc *SettingsDocument) error {
	return writeFileAtomic(s.Path, doc.Bytes(), 0o644)
}
