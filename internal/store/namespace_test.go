package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceString(t *testing.T) {
	tests := []struct {
		ns   Namespace
		want string
	}{
		{Namespace{Subject: "quicksort", ComboSize: 1}, "quicksort_single_unshrunk"},
		{Namespace{Subject: "quicksort", ComboSize: 2, Shrink: true}, "quicksort_double_shrunk"},
		{Namespace{Subject: "bst", ComboSize: 3}, "bst_triple_unshrunk"},
		{Namespace{Subject: "bst", ComboSize: 4, Shrink: true}, "bst_quadruple_shrunk"},
		{Namespace{Subject: "bst", ComboSize: 6}, "bst_x6_unshrunk"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ns.String())

			back, err := ParseNamespace(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.ns, back)
		})
	}
}

func TestParseNamespaceErrors(t *testing.T) {
	for _, name := range []string{
		"quicksort",
		"quicksort_single",
		"quicksort_single_maybe",
		"quicksort_huge_shrunk",
		"quicksort_x0_shrunk",
		"Quick_single_shrunk",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseNamespace(name)
			assert.Error(t, err)
		})
	}
}

func TestNamespaceValidate(t *testing.T) {
	assert.NoError(t, Namespace{Subject: "toy", ComboSize: 1}.Validate())
	assert.Error(t, Namespace{Subject: "", ComboSize: 1}.Validate())
	assert.Error(t, Namespace{Subject: "a_b", ComboSize: 1}.Validate())
	assert.Error(t, Namespace{Subject: "toy", ComboSize: 0}.Validate())
}
