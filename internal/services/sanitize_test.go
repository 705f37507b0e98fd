package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "nested tags", input: "<p>Hello <b>World</b></p>", want: "Hello World"},
		{name: "plain text untouched", input: "just text", want: "just text"},
		{name: "uppercase tags", input: "<P>Hello</P>", want: "Hello"},
		{name: "attributes", input: `<a href="x">link</a>`, want: "link"},
		{name: "non-greedy", input: "<b>a</b> < not a tag", want: "a < not a tag"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeDescription(tt.input))
		})
	}
}
