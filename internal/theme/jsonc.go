package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// ErrDuplicateKey is returned when a key this tool owns appears more than
// once at the top level. Editors honor the last copy, so replacing only one
// of them would leave the stale value in effect.
var ErrDuplicateKey = errors.New("duplicate top-level key")

// strictJSON returns doc with comments and trailing commas blanked out.
// Every byte keeps its offset, so positions found in the result index the
// original document.
func strictJSON(doc []byte) []byte {
	return jsonc.ToJSON(doc)
}

// hasComments reports whether doc relies on comments or trailing commas.
func hasComments(doc, stripped []byte) bool {
	return !bytes.Equal(doc, stripped)
}

// validateObject checks that stripped is a JSON object.
func validateObject(stripped []byte) error {
	if !gjson.ValidBytes(stripped) {
		return fmt.Errorf("%w: invalid json", ErrMalformedSettings)
	}
	if !gjson.ParseBytes(stripped).IsObject() {
		return fmt.Errorf("%w: top level is not an object", ErrMalformedSettings)
	}
	return nil
}

// countTopLevel returns how many times key is a member of the outermost
// object.
func countTopLevel(stripped []byte, key string) int {
	n := 0
	gjson.ParseBytes(stripped).ForEach(func(k, _ gjson.Result) bool {
		if k.String() == key {
			n++
		}
		return true
	})
	return n
}

func checkUnique(stripped []byte, key string) error {
	if n := countTopLevel(stripped, key); n > 1 {
		return fmt.Errorf("%w: %q appears %d times", ErrDuplicateKey, key, n)
	}
	return nil
}

// spliceValue replaces the value of a top-level key in doc, leaving every
// other byte, comments included, where it was.
func spliceValue(doc, stripped []byte, key string, value []byte) ([]byte, bool) {
	res := gjson.GetBytes(stripped, escapeKey(key))
	if !res.Exists() || res.Index <= 0 {
		return doc, false
	}
	end := res.Index + len(res.Raw)

	out := make([]byte, 0, len(doc)-len(res.Raw)+len(value))
	out = append(out, doc[:res.Index]...)
	out = append(out, value...)
	out = append(out, doc[end:]...)
	return out, true
}

// insertFirst adds "key": value as the first member of the top-level
// object. Used for commented documents, where the last member may be
// followed by comments or a trailing comma.
func insertFirst(doc, stripped []byte, key string, value []byte, indent string) ([]byte, error) {
	open := bytes.IndexByte(stripped, '{')
	if open < 0 {
		return nil, ErrMalformedSettings
	}
	name, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(doc[:open+1])
	out.WriteString("\n" + indent)
	out.Write(name)
	out.WriteString(": ")
	out.Write(value)
	out.WriteByte(',')
	out.Write(doc[open+1:])
	return out.Bytes(), nil
}
