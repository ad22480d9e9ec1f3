package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocationMatch(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"exact", "Cairo, Egypt", "Cairo, Egypt", true},
		{"case and spacing", "cairo,egypt", "Cairo, Egypt", true},
		{"containment", "Cairo", "Cairo, Egypt", true},
		{"containment reversed", "Cairo, Egypt", "Cairo", true},
		{"stop words ignored", "Cairo Governorate", "Cairo", true},
		{"hyphen treated as space", "Winston-Salem", "Winston Salem", true},
		{"diacritics stripped", "São Paulo", "Sao Paulo", true},
		{"token subset", "Brooklyn, New York, USA", "New York", true},
		{"unrelated", "Cairo, Egypt", "Lagos, Nigeria", false},
		{"empty input", "", "Cairo", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isLocationMatch(tt.a, tt.b))
		})
	}
}

func TestLooseMatch(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"exact after canon", "Software Engineer!", "software engineer", true},
		{"containment", "Senior Software Engineer", "Software Engineer", true},
		{"token overlap above threshold", "Software Engineer", "Engineer Software Lead", true},
		{"overlap below threshold", "Software Engineer", "Civil Architect", false},
		{"empty", "", "Engineer", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looseMatch(tt.a, tt.b))
		})
	}
}

func TestIncludesCI(t *testing.T) {
	list := []string{"Software Engineer", "Teacher"}
	assert.True(t, includesCI(list, "software engineer"))
	assert.False(t, includesCI(list, "Engineer"))
	assert.False(t, includesCI(list, ""))

	assert.True(t, includesCILoose(list, "Engineer"))
	assert.False(t, includesCILoose(list, "Plumber"))
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, jaccard([]string{"a", "b"}, []string{"b", "a"}))
	assert.Equal(t, 0.5, jaccard([]string{"a", "b", "c"}, []string{"a", "b", "d"}))
	assert.Equal(t, 0.0, jaccard(nil, []string{"a"}))
}
