package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func takenSet(taken ...string) slugExistsFunc {
	set := map[string]bool{}
	for _, s := range taken {
		set[s] = true
	}
	return func(ctx context.Context, slug string) (bool, error) {
		return set[slug], nil
	}
}

func TestEnsureUniqueSlug(t *testing.T) {
	ctx := context.Background()

	s, err := ensureUniqueSlug(ctx, "Vetiver Extraordinaire", takenSet())
	require.NoError(t, err)
	assert.Equal(t, "vetiver-extraordinaire", s)

	s, err = ensureUniqueSlug(ctx, "Vetiver Extraordinaire", takenSet("vetiver-extraordinaire"))
	require.NoError(t, err)
	assert.Equal(t, "vetiver-extraordinaire-2", s)

	s, err = ensureUniqueSlug(ctx, "Vetiver Extraordinaire",
		takenSet("vetiver-extraordinaire", "vetiver-extraordinaire-2", "vetiver-extraordinaire-3"))
	require.NoError(t, err)
	assert.Equal(t, "vetiver-extraordinaire-4", s)
}

func TestEnsureUniqueSlugNormalises(t *testing.T) {
	ctx := context.Background()

	s, err := ensureUniqueSlug(ctx, "  Ébène  Oud No.5 ", takenSet())
	require.NoError(t, err)
	assert.Equal(t, "ebene-oud-no-5", s)

	// nama yang nge-slug jadi kosong dapat fallback
	s, err = ensureUniqueSlug(ctx, "!!!", takenSet())
	require.NoError(t, err)
	assert.Equal(t, "item", s)
}

func TestEnsureUniqueSlugExhaustedFallsBack(t *testing.T) {
	everything := func(ctx context.Context, slug string) (bool, error) { return true, nil }
	s, err := ensureUniqueSlug(context.Background(), "Oud", everything)
	require.NoError(t, err)
	assert.Regexp(t, `^oud-[0-9a-f]{8}$`, s)
}

func TestEnsureUniqueSlugPropagatesError(t *testing.T) {
	boom := errors.New("db down")
	fail := func(ctx context.Context, slug string) (bool, error) { return false, boom }
	_, err := ensureUniqueSlug(context.Background(), "Oud", fail)
	assert.ErrorIs(t, err, boom)
}
