package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		field    string
		expected FieldKind
	}{
		{"integrationType", FieldSelect},
		{"name", FieldText},
		{"description", FieldText},
		{"IntegrationType", FieldText},
		{"", FieldText},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.field))
		})
	}
}

func TestNewToolDescriptor(t *testing.T) {
	d := NewToolDescriptor(
		"name", "Echo",
		"integrationType", "REST",
		"url", "http://localhost/echo",
	)

	require.Len(t, d.Fields, 3)
	assert.Equal(t, ToolField{Name: "name", Value: "Echo", Kind: FieldText}, d.Fields[0])
	assert.Equal(t, ToolField{Name: "integrationType", Value: "REST", Kind: FieldSelect}, d.Fields[1])
	assert.Equal(t, "url", d.Fields[2].Name)
	assert.Equal(t, "Echo", d.Name())
}

func TestToolDescriptor_WithDoesNotAlias(t *testing.T) {
	base := NewToolDescriptor("name", "a")
	left := base.With("x", "1")
	right := base.With("y", "2")

	assert.Len(t, base.Fields, 1)
	assert.Equal(t, "x", left.Fields[1].Name)
	assert.Equal(t, "y", right.Fields[1].Name)
}

func TestParseFieldKind(t *testing.T) {
	k, ok := ParseFieldKind("select")
	assert.True(t, ok)
	assert.Equal(t, FieldSelect, k)

	k, ok = ParseFieldKind("")
	assert.True(t, ok)
	assert.Equal(t, FieldText, k)

	_, ok = ParseFieldKind("checkbox")
	assert.False(t, ok)
}

func TestParameters_Absent(t *testing.T) {
	assert.False(t, NoParameters().Present())
	assert.False(t, Params().Present(), "empty set is treated as absent")
	assert.True(t, Params("text", "hi").Present())
}

func TestParameters_JSONKeepsInsertionOrder(t *testing.T) {
	p := Params("zeta", 1, "alpha", "two", "mid", true)

	out, err := p.JSON()
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"two","mid":true}`, out)
}

func TestParameters_JSONSpecialKeys(t *testing.T) {
	p := Params("a.b", "dot", "q?", "mark")

	out, err := p.JSON()
	require.NoError(t, err)

	parsed := gjson.Parse(out).Map()
	assert.Equal(t, "dot", parsed["a.b"].String())
	assert.Equal(t, "mark", parsed["q?"].String())
}

func TestParameters_JSONEmptyKey(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
		want   string
	}{
		{"alone", Params("", "v"), `{"":"v"}`},
		{"after others", Params("text", "hi", "", 2), `{"text":"hi","":2}`},
		{"before others", Params("", true, "text", "hi"), `{"":true,"text":"hi"}`},
		{"object value", Params("", map[string]int{"n": 1}), `{"":{"n":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.params.JSON()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, out)
			assert.Equal(t, tt.want, out, "member order")
		})
	}
}

func TestParams_MalformedPairsPanic(t *testing.T) {
	assert.PanicsWithValue(t, "entity.Params: odd number of arguments (1)", func() { Params("text") })
	assert.PanicsWithValue(t, "entity.Params: key at position 2 is int, not string", func() { Params("a", 1, 2, "b") })
	assert.NotPanics(t, func() { Params() })
}

func TestNewToolDescriptor_OddPairsPanic(t *testing.T) {
	assert.PanicsWithValue(t, "entity.NewToolDescriptor: odd number of arguments (3)", func() {
		NewToolDescriptor("name", "Echo", "url")
	})
}

func TestParameters_WithReplacesKey(t *testing.T) {
	p := Params("text", "a").With("text", "b")

	assert.Equal(t, 1, p.Len())
	out, err := p.JSON()
	require.NoError(t, err)
	assert.Equal(t, "b", gjson.Get(out, "text").String())
}

func TestLocator(t *testing.T) {
	row := Locate("#tools-table tbody tr").WithText("Echo")
	del := row.Locator("button").WithText("Delete")

	assert.Equal(t, `#tools-table tbody tr:has-text("Echo")`, row.String())
	assert.Equal(t, `#tools-table tbody tr:has-text("Echo") >> button:has-text("Delete")`, del.String())
	assert.Len(t, row.Steps, 1, "chaining must not mutate the parent")
	assert.True(t, del.Valid())
	assert.False(t, Locator{}.Valid())
	assert.False(t, Locate(" ").Valid())
}
