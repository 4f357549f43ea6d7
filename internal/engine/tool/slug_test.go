package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Green Acres", "green-acres"},
		{"punctuation", "O'Brien & Sons, Ltd.", "o-brien-sons-ltd"},
		{"leading trailing", "  --Hill Farm--  ", "hill-farm"},
		{"digits", "Farm 42", "farm-42"},
		{"empty", "!!!", "org"},
		{"unicode", "Žalia Pieva", "žalia-pieva"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Slugify(c.in))
		})
	}
}
