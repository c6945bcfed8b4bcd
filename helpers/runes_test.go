package helpers

import "testing"

func TestIsWordChar(t *testing.T) {
	for _, tc := range []struct {
		r    rune
		want bool
	}{
		{'a', true}, {'Z', true}, {'7', true}, {'_', true},
		{'-', false}, {' ', false}, {'\n', false},
		{'é', true}, {'ж', true}, {'\u0663', true}, {'\u203F', true},
		{'\u0301', true}, {'\u200C', true}, {'\u200D', true},
		{'\u200B', false}, {'€', false},
	} {
		if got := IsWordChar(tc.r); got != tc.want {
			t.Errorf("IsWordChar(%U): want %v got %v", tc.r, tc.want, got)
		}
	}
}
