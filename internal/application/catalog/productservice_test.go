package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/testutil"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

func TestProductService(t *testing.T) {
	svc := NewProductService(testutil.NewMockProductRepository(), "ILS", testutil.NewMockLogger())
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductCommand{Name: "Sourdough Basics", Type: "course", Price: "490"})
	require.NoError(t, err)
	assert.Equal(t, "sourdough-basics", p.Slug)
	assert.Equal(t, int64(49000), p.Price.Amount)
	assert.True(t, p.Active)

	_, err = svc.Create(ctx, ProductCommand{Name: "Sourdough Basics", Type: "course", Price: "100"})
	assert.True(t, apperrors.IsConflictError(err))

	_, err = svc.Create(ctx, ProductCommand{Name: "Bad", Type: "ebook", Price: "10"})
	assert.True(t, apperrors.IsValidationError(err))

	inactive := false
	_, err = svc.Update(ctx, p.ID, ProductCommand{Name: "Sourdough Basics", Slug: p.Slug, Type: "course", Price: "450", Active: &inactive})
	require.NoError(t, err)

	_, err = svc.GetActiveBySlug(ctx, "sourdough-basics")
	assert.True(t, apperrors.IsNotFoundError(err))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
