package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClampsInput(t *testing.T) {
	p := New(0, 0)
	assert.Equal(t, Params{Page: 1, PageSize: DefaultPageSize, Offset: 0}, p)

	p = New(3, 500)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset)
}

func TestBuildMetaRoundsPagesUp(t *testing.T) {
	m := BuildMeta(1, 10, 21)
	assert.Equal(t, 3, m.TotalPages)
	assert.Equal(t, 0, BuildMeta(1, 10, 0).TotalPages)
}
