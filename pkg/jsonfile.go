package pkg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var (
	ErrInvalidJSON = errors.New("invalid JSON")
	ErrNotObject   = errors.New("not a JSON object")
)

var prettyOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "  ", SortKeys: false}

// Document is a JSON file held in memory as raw bytes so that edits keep the
// original key order.
type Document struct {
	path string
	data []byte
}

func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidJSON)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%s: root is %w", path, ErrNotObject)
	}
	return &Document{path: path, data: data}, nil
}

func (d *Document) Path() string {
	return d.path
}

// Get reads a dotted path such as "compilerOptions.noEmit".
func (d *Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d.data, path)
}

// RequireObject fails when path exists and holds anything other than an object.
func (d *Document) RequireObject(path string) error {
	if err := d.collapse(path); err != nil {
		return err
	}
	r := d.Get(path)
	if r.Exists() && !r.IsObject() {
		return fmt.Errorf("%s: %s is %w", d.path, path, ErrNotObject)
	}
	return nil
}

// Set replaces the value at path in place, or appends it to the enclosing
// object when the key is new. Missing parent objects are created. Duplicate
// keys along path are collapsed to their last occurrence first, so the
// written value is the one JSON.parse sees.
func (d *Document) Set(path string, value any) error {
	raw, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := d.collapse(path); err != nil {
		return err
	}
	data, err := sjson.SetRawBytes(d.data, path, raw)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	d.data = data
	return nil
}

// collapse drops all but the last occurrence of every key along path.
// sjson edits the first match, while JSON consumers keep the last one.
func (d *Document) collapse(path string) error {
	parts := strings.Split(path, ".")
	for i := range parts {
		parent := strings.Join(parts[:i], ".")
		key := strings.Join(parts[:i+1], ".")
		for n := d.count(parent, parts[i]); n > 1; n-- {
			data, err := sjson.DeleteBytes(d.data, key)
			if err != nil {
				return fmt.Errorf("collapse %s: %w", key, err)
			}
			d.data = data
		}
	}
	return nil
}

// count reports how many times key appears in the object at parent.
func (d *Document) count(parent, key string) int {
	obj := gjson.ParseBytes(d.data)
	if parent != "" {
		obj = obj.Get(parent)
	}
	if !obj.IsObject() {
		return 0
	}
	n := 0
	obj.ForEach(func(k, _ gjson.Result) bool {
		if k.String() == key {
			n++
		}
		return true
	})
	return n
}

// Bytes returns the document pretty-printed with two-space indentation.
func (d *Document) Bytes() []byte {
	return pretty.PrettyOptions(d.data, prettyOptions)
}

func (d *Document) Save() error {
	return os.WriteFile(d.path, d.Bytes(), 0644)
}

// encodeValue marshals without HTML escaping so "&&" in scripts stays literal.
func encodeValue(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
