package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/deppfellow/jobly/internal/errs"
	"github.com/jackc/pgx/v5"
)

// ErrNotObject is returned by DecodeUpdateSpec for JSON that is not an object.
var ErrNotObject = errors.New("update must be a JSON object")

// Field is one logical field to update.
type Field struct {
	Name  string
	Value any
}

// UpdateSpec is an ordered set of fields to update. Its order decides the
// positional parameter numbering of the generated SET clause.
type UpdateSpec []Field

// Set returns s with name set to value, replacing an existing entry in
// place or appending a new one.
func (s UpdateSpec) Set(name string, value any) UpdateSpec {
	for i := range s {
		if s[i].Name == name {
			s[i].Value = value
			return s
		}
	}
	return append(s, Field{Name: name, Value: value})
}

// Get returns the value of name.
func (s UpdateSpec) Get(name string) (any, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (s UpdateSpec) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// UpdateSpecFromMap builds a spec ordered by key.
func UpdateSpecFromMap(m map[string]any) UpdateSpec {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	spec := make(UpdateSpec, 0, len(names))
	for _, name := range names {
		spec = append(spec, Field{Name: name, Value: m[name]})
	}
	return spec
}

// DecodeUpdateSpec decodes a JSON object keeping its keys in document
// order. A repeated key keeps its first position and its last value.
func DecodeUpdateSpec(data []byte) (UpdateSpec, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	spec := UpdateSpec{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		spec = spec.Set(name, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return spec, nil
}

// SetClause is the SET part of an UPDATE statement and its arguments.
// Placeholder $i in Columns binds Values[i-1].
type SetClause struct {
	Columns string
	Values  []any
}

// NextPlaceholder returns the first placeholder not used by the clause,
// for the WHERE condition that follows it.
func (c *SetClause) NextPlaceholder() string {
	return fmt.Sprintf("$%d", len(c.Values)+1)
}

// PartialUpdate turns spec into `"col1"=$1, "col2"=$2` and the matching
// values. nameMap translates logical field names into column names;
// unmapped names are used as they are. An empty spec is rejected.
func PartialUpdate(spec UpdateSpec, nameMap map[string]string) (*SetClause, error) {
	if len(spec) == 0 {
		return nil, errs.NewInvalidInputError("No data")
	}

	cols := make([]string, len(spec))
	values := make([]any, len(spec))
	for i, f := range spec {
		column, ok := nameMap[f.Name]
		if !ok || column == "" {
			column = f.Name
		}
		cols[i] = fmt.Sprintf("%s=$%d", pgx.Identifier{column}.Sanitize(), i+1)
		values[i] = f.Value
	}

	return &SetClause{
		Columns: strings.Join(cols, ", "),
		Values:  values,
	}, nil
}
