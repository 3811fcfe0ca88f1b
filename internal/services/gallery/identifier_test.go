package gallery

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveID(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Sunset Over Lake", "sunset-over-lake"},
		{"photo.final.v2", "photofinalv2"},
		{"Café Crème", "cafe-creme"},
		{"  multiple   spaces  ", "multiple-spaces"},
		{"a -- b", "a-b"},
		{"Hello, World!", "hello-world"},
		{"tab\tand\nnewline", "tab-and-newline"},
		{"under_score~tilde", "under_scoretilde"},
		{"sunset~v2", "sunsetv2"},
		{"a ~ b", "a-b"},
		{"IMG_0042", "img_0042"},
		{"Ærøskøbing", "rskbing"},
		{"!!!", UntitledID},
		{"日本語", UntitledID},
		{"", UntitledID},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveID(tt.title))
		})
	}
}

func TestDeriveID_Properties(t *testing.T) {
	safe := regexp.MustCompile(`^[a-z0-9_]+(-[a-z0-9_]+)*$`)
	inputs := []string{
		"Sunset", "sunset", "SUNSET", "My Holiday Photo (1)", "a.b.c", "--x--", "x y",
		"emoji 🎉 party", "Ünïcödé Tëxt", "100% real", "path/like\\name", "tilde~ok", "._.",
		"a ~ b", "~", "x~-~y", "a+b=c&d?e#f",
	}

	for _, in := range inputs {
		first := DeriveID(in)
		assert.Equal(t, first, DeriveID(in), "deterministic for %q", in)
		assert.Regexp(t, safe, first, "url-safe for %q", in)
		assert.True(t, IsValidID(first))
		assert.Equal(t, first, DeriveID(first), "idempotent for %q", in)
	}
}

func TestDeriveID_Collision(t *testing.T) {
	// 归一化相同的不同标题得到同一个 ID
	assert.Equal(t, DeriveID("My Photo"), DeriveID("my  photo!"))
	assert.Equal(t, DeriveID("Résumé"), DeriveID("resume"))
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("sunset-over-lake"))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("Upper"))
	assert.False(t, IsValidID("has space"))
	assert.False(t, IsValidID("dot.ted"))
	assert.False(t, IsValidID("tilde~id"))
}

func TestDeriveID_DocumentIDCharset(t *testing.T) {
	docID := regexp.MustCompile(`^[a-z0-9_-]+$`)
	for r := rune(0); r < 0x250; r++ {
		title := "x" + string(r) + "y " + string(r)
		assert.Regexp(t, docID, DeriveID(title), "title %q", title)
	}
}
