package entity

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type Param struct {
	Key   string
	Value any
}

// Parameters is an optional, insertion-ordered set of tool execution
// parameters. The zero value is "absent".
type Parameters struct {
	set    bool
	params []Param
}

func NoParameters() Parameters {
	return Parameters{}
}

// Params builds a present parameter set from key/value pairs. It panics on
// an odd number of arguments or a non-string key.
func Params(kv ...any) Parameters {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("entity.Params: odd number of arguments (%d)", len(kv)))
	}
	p := Parameters{set: true}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("entity.Params: key at position %d is %T, not string", i, kv[i]))
		}
		p = p.With(key, kv[i+1])
	}
	return p
}

func (p Parameters) With(key string, value any) Parameters {
	params := make([]Param, 0, len(p.params)+1)
	for _, existing := range p.params {
		if existing.Key != key {
			params = append(params, existing)
		}
	}
	return Parameters{set: true, params: append(params, Param{Key: key, Value: value})}
}

// Present reports whether parameters were supplied and are non-empty.
func (p Parameters) Present() bool {
	return p.set && len(p.params) > 0
}

func (p Parameters) Len() int {
	return len(p.params)
}

// JSON renders the parameters as a single JSON object, keys in insertion order.
func (p Parameters) JSON() (string, error) {
	out := "{}"
	for _, param := range p.params {
		var err error
		if param.Key == "" {
			out, err = appendEmptyKey(out, param.Value)
		} else {
			out, err = sjson.Set(out, escapeKey(param.Key), param.Value)
		}
		if err != nil {
			return "", fmt.Errorf("encode parameter %q: %w", param.Key, err)
		}
	}
	return out, nil
}

// appendEmptyKey adds a "" member at the end of obj. sjson paths cannot
// address the empty key.
func appendEmptyKey(obj string, value any) (string, error) {
	wrapped, err := sjson.Set("{}", "v", value)
	if err != nil {
		return "", err
	}
	member := `"":` + gjson.Get(wrapped, "v").Raw

	obj = strings.TrimSpace(obj)
	if obj == "{}" {
		return "{" + member + "}", nil
	}
	return obj[:len(obj)-1] + "," + member + "}", nil
}

// escapeKey protects sjson path syntax characters so keys are taken literally.
func escapeKey(key string) string {
	out := make([]rune, 0, len(key))
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
