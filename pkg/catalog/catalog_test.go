package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tooldex/pkg/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{
			ID: "p1", Name: "NVDA", Description: "Free screen reader",
			Vendor: "NV Access", Category: "screen-reader",
			Platforms: []string{"windows"}, PriceCents: 0,
			Status: domain.ModerationApproved,
		},
		{
			ID: "p2", Name: "Tactile Keypad", Description: "3D-printable keypad",
			Vendor: "AdaptCo", Category: "hardware",
			Platforms: []string{"windows", "linux"}, PriceCents: 4999,
			Status: domain.ModerationApproved,
		},
		{
			ID: "p3", Name: "VoiceNav", Description: "Voice navigation overlay",
			Vendor: "AdaptCo", Category: "navigation",
			Platforms: []string{"macos"}, PriceCents: 1999,
			Status: domain.ModerationPending,
		},
	}
}

func TestSearch_ComposedFilters(t *testing.T) {
	ctx := context.Background()

	got, err := Search(ctx, sampleProducts(),
		NewQueryFilter("adaptco"),
		NewMaxPriceFilter(5000),
		NewVisibleFilter(domain.RoleUser),
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)
}

func TestSearch_NoFiltersKeepsOrder(t *testing.T) {
	got, err := Search(context.Background(), sampleProducts())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p3", got[2].ID)
}

func TestPlatformFilter(t *testing.T) {
	got, err := Search(context.Background(), sampleProducts(), NewPlatformFilter("Linux"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)
}

func TestVisibleFilter_ModeratorSeesPending(t *testing.T) {
	asUser, err := Search(context.Background(), sampleProducts(), NewVisibleFilter(domain.RoleUser))
	require.NoError(t, err)
	assert.Len(t, asUser, 2)

	asModerator, err := Search(context.Background(), sampleProducts(), NewVisibleFilter(domain.RoleModerator))
	require.NoError(t, err)
	assert.Len(t, asModerator, 3)
}

func TestCategoryFilter_CaseInsensitive(t *testing.T) {
	got, err := Search(context.Background(), sampleProducts(), NewCategoryFilter("Screen-Reader"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NVDA", got[0].Name)
}

func TestSummarize(t *testing.T) {
	ratings := []domain.Rating{
		{ProductID: "p1", UserID: "u1", Stars: 5},
		{ProductID: "p1", UserID: "u2", Stars: 4},
		{ProductID: "p1", UserID: "u3", Stars: 4},
		{ProductID: "other", UserID: "u4", Stars: 1},
	}

	s := Summarize("p1", ratings)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 4.3, s.Average, 0.001)

	empty := Summarize("p9", ratings)
	assert.Equal(t, 0, empty.Count)
	assert.Zero(t, empty.Average)
}

func TestValidateRating(t *testing.T) {
	valid := &domain.Rating{ProductID: "p1", UserID: "u1", Stars: 3}
	assert.NoError(t, ValidateRating(valid))

	invalid := &domain.Rating{ProductID: "p1", UserID: "u1", Stars: 0}
	assert.ErrorIs(t, ValidateRating(invalid), ErrInvalidStars)
}

func TestResolve(t *testing.T) {
	p := &domain.Product{ID: "p3", Status: domain.ModerationPending}

	err := Resolve(p, domain.ModerationApproved, domain.RoleUser)
	assert.ErrorIs(t, err, ErrModeratorRequired)
	assert.Equal(t, domain.ModerationPending, p.Status)

	require.NoError(t, Resolve(p, domain.ModerationApproved, domain.RoleModerator))
	assert.Equal(t, domain.ModerationApproved, p.Status)

	// Already resolved products stay put.
	err = Resolve(p, domain.ModerationRejected, domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, domain.ModerationApproved, p.Status)
}
