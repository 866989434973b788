package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckEcho(t *testing.T) {
	boom := errors.New("result never appeared")

	tests := []struct {
		name    string
		got     string
		err     error
		wantErr string
	}{
		{"match", "hello", nil, ""},
		{"mismatch", "HELLO", nil, `echo mismatch: sent "hello", got "HELLO"`},
		{"empty output", "", nil, `echo mismatch: sent "hello", got ""`},
		{"execution error", "", boom, "result never appeared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkEcho("hello", tt.got, tt.err)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
