package textnorm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFlattenLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single line", in: "Reduzir custos", want: "Reduzir custos"},
		{name: "multi line", in: "linha 1\n  linha 2  \n\nlinha 3", want: "linha 1 linha 2 linha 3"},
		{name: "crlf", in: "a\r\nb\rc", want: "a b c"},
		{name: "inner spaces", in: "a   b\t c", want: "a b c"},
		{name: "blank", in: " \n \n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenLines(tt.in))
		})
	}
}

func TestStripInvalidXML(t *testing.T) {
	assert.Equal(t, "ação", StripInvalidXML("ação"))
	assert.Equal(t, "ab", StripInvalidXML("a\x00\x0bb"))
	assert.Equal(t, "emoji 🚀", StripInvalidXML("emoji 🚀"))
	assert.Equal(t, "a\uFFFDb", StripInvalidXML("a\uFFFDb"))
	assert.Equal(t, "a\uFFFDb", StripInvalidXML("a\xffb"))
	assert.Equal(t, "ab", StripInvalidXML("a\uFFFEb"))
}

func TestCellTruncatesToLimit(t *testing.T) {
	long := strings.Repeat("é", MaxCellLength+10)
	got := Cell(long)

	assert.Equal(t, MaxCellLength, utf8.RuneCountInString(got))
	assert.Equal(t, "x y", Cell("x\ny"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 5))
	assert.Equal(t, "ab...", Preview("abcdef", 2))
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "json fence", in: "```json\n[{\"a\":1}]\n```", want: "[{\"a\":1}]"},
		{name: "bare fence", in: "```\n[]\n```", want: "[]"},
		{name: "no fence", in: "  [] ", want: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}
