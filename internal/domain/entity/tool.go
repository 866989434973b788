package entity

import "fmt"

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldSelect
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "text"
	case FieldSelect:
		return "select"
	default:
		return "unknown"
	}
}

// ParseFieldKind maps the names used in fixture files to a FieldKind.
func ParseFieldKind(s string) (FieldKind, bool) {
	switch s {
	case "text", "":
		return FieldText, true
	case "select":
		return FieldSelect, true
	}
	return FieldText, false
}

// fieldKinds lists form fields that are not plain text inputs.
var fieldKinds = map[string]FieldKind{
	"integrationType": FieldSelect,
}

// KindOf returns the control kind used for a tool form field.
func KindOf(field string) FieldKind {
	if k, ok := fieldKinds[field]; ok {
		return k
	}
	return FieldText
}

type ToolField struct {
	Name  string
	Value string
	Kind  FieldKind
}

// ToolDescriptor is the content of the tool creation form. Fields are
// filled in order.
type ToolDescriptor struct {
	Fields []ToolField
}

// NewToolDescriptor builds a descriptor from name/value pairs, resolving
// each field's kind through the kind table. It panics on an odd number of
// arguments.
func NewToolDescriptor(pairs ...string) ToolDescriptor {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("entity.NewToolDescriptor: odd number of arguments (%d)", len(pairs)))
	}
	var d ToolDescriptor
	for i := 0; i < len(pairs); i += 2 {
		d = d.With(pairs[i], pairs[i+1])
	}
	return d
}

func (d ToolDescriptor) With(name, value string) ToolDescriptor {
	return d.WithKind(name, value, KindOf(name))
}

func (d ToolDescriptor) WithKind(name, value string, kind FieldKind) ToolDescriptor {
	fields := make([]ToolField, len(d.Fields), len(d.Fields)+1)
	copy(fields, d.Fields)
	d.Fields = append(fields, ToolField{Name: name, Value: value, Kind: kind})
	return d
}

// Name returns the value of the "name" field, if any.
func (d ToolDescriptor) Name() string {
	for _, f := range d.Fields {
		if f.Name == "name" {
			return f.Value
		}
	}
	return ""
}

type Credentials struct {
	Username string
	Password string
}

func DefaultCredentials() Credentials {
	return Credentials{
		Username: "admin@example.com",
		Password: "changeme",
	}
}
