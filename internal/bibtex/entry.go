package bibtex

import "strings"

// Entry is one @type{key, ...} record. Field names are lowercase.
type Entry struct {
	Type string
	Key  string
	Line int

	fields map[string]string
	order  []string
}

// NewEntry builds an entry from field name/value pairs, mostly for tests.
func NewEntry(typ, key string, kv ...string) Entry {
	e := Entry{Type: strings.ToLower(typ), Key: key, fields: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		e.set(strings.ToLower(kv[i]), kv[i+1])
	}
	return e
}

func (e *Entry) set(name, value string) {
	if _, exists := e.fields[name]; !exists {
		e.order = append(e.order, name)
	}
	e.fields[name] = value
}

// Field returns the raw value of a field and whether it is present.
func (e Entry) Field(name string) (string, bool) {
	v, ok := e.fields[strings.ToLower(name)]
	return v, ok
}

// FirstField returns the first present field among names, tried in order.
func (e Entry) FirstField(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := e.Field(name); ok {
			return v, true
		}
	}
	return "", false
}

// FieldNames lists the entry's fields in file order.
func (e Entry) FieldNames() []string {
	return append([]string(nil), e.order...)
}
