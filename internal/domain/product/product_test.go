package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Intro to Python!":        "intro-to-python",
		"  Data  Science -- 101 ": "data-science-101",
		"קורס פייתון":             "קורס-פייתון",
		"***":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewProduct(t *testing.T) {
	p, err := NewProduct(Details{
		Name:  "Intro to Python",
		Type:  TypeCourse,
		Price: money.New(149000, "ILS"),
	})
	require.NoError(t, err)
	assert.Equal(t, "intro-to-python", p.Slug())
	assert.True(t, p.IsActive())

	_, err = NewProduct(Details{Name: "X", Type: "ebook"})
	assert.Error(t, err)

	_, err = NewProduct(Details{Name: "!!!", Type: TypeWorkshop})
	assert.EqualError(t, err, "slug is required")

	_, err = NewProduct(Details{Name: "Free", Type: TypeWorkshop, Price: money.New(-1, "ILS")})
	assert.Error(t, err)
}

func TestProduct_UpdateKeepsExplicitSlug(t *testing.T) {
	p, err := NewProduct(Details{Name: "Intro", Slug: "intro-2025", Type: TypeCourse})
	require.NoError(t, err)

	require.NoError(t, p.Update(Details{Name: "Intro to Go", Slug: "Intro 2025", Type: TypeCourse}))
	assert.Equal(t, "intro-2025", p.Slug())
	assert.Equal(t, "Intro to Go", p.Name())

	p.SetActive(false)
	assert.False(t, p.IsActive())
}
