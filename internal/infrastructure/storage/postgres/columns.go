package postgres

import (
	"reflect"
	"sync"
)

// column is a "db"-tagged field, addressed by its index path so fields of
// embedded structs such as entity.Base resolve in one step.
type column struct {
	name  string
	index []int
}

var columnCache sync.Map // reflect.Type -> []column

// columnsOf lists the tagged fields of struct type t in declaration order,
// with embedded structs expanded where they appear.
func columnsOf(t reflect.Type) []column {
	if cols, ok := columnCache.Load(t); ok {
		return cols.([]column)
	}
	var cols []column
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous {
			continue
		}
		name := f.Tag.Get("db")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		cols = append(cols, column{name: name, index: f.Index})
	}
	columnCache.Store(t, cols)
	return cols
}

func structType(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}

// ExtractDBColumns returns the column names of T (a struct or a pointer to
// one). Repositories call it once, at construction.
func ExtractDBColumns[T any]() []string {
	t, ok := structType(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	cols := columnsOf(t)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// StructToMap returns the column values of v keyed by column name, or nil
// when v is not a struct or is a nil pointer.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	cols := columnsOf(rv.Type())
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		out[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return out
}
