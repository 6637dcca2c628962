// Package catalog holds the in-process directory logic: product filtering,
// rating aggregation, and moderation transitions.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"tooldex/pkg/domain"
)

// Filter decides whether a product belongs in a result set.
type Filter interface {
	Matches(ctx context.Context, p *domain.Product) (bool, error)
}

// Search applies all filters to a product list, preserving input order.
func Search(ctx context.Context, products []domain.Product, filters ...Filter) ([]domain.Product, error) {
	matched := make([]domain.Product, 0, len(products))

	for i := range products {
		keep := true
		for _, f := range filters {
			ok, err := f.Matches(ctx, &products[i])
			if err != nil {
				return nil, fmt.Errorf("filter error for product %s: %w", products[i].ID, err)
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			matched = append(matched, products[i])
		}
	}

	return matched, nil
}

// CategoryFilter keeps products in a single category.
type CategoryFilter struct {
	category string
}

// NewCategoryFilter creates a category filter. Matching is case-insensitive.
func NewCategoryFilter(category string) *CategoryFilter {
	return &CategoryFilter{category: strings.ToLower(category)}
}

// Matches reports whether the product's category equals the filter's.
func (f *CategoryFilter) Matches(ctx context.Context, p *domain.Product) (bool, error) {
	return strings.ToLower(p.Category) == f.category, nil
}

// PlatformFilter keeps products available on a given platform.
type PlatformFilter struct {
	platform string
}

// NewPlatformFilter creates a platform filter.
func NewPlatformFilter(platform string) *PlatformFilter {
	return &PlatformFilter{platform: strings.ToLower(platform)}
}

// Matches reports whether any of the product's platforms equals the
// filter's.
func (f *PlatformFilter) Matches(ctx context.Context, p *domain.Product) (bool, error) {
	for _, pl := range p.Platforms {
		if strings.ToLower(pl) == f.platform {
			return true, nil
		}
	}
	return false, nil
}

// QueryFilter keeps products whose name, description or vendor contains a
// free-text query.
type QueryFilter struct {
	query string
}

// NewQueryFilter creates a free-text filter. An empty query matches
// everything.
func NewQueryFilter(query string) *QueryFilter {
	return &QueryFilter{query: strings.ToLower(strings.TrimSpace(query))}
}

// Matches does a case-insensitive substring check across the searchable
// fields.
func (f *QueryFilter) Matches(ctx context.Context, p *domain.Product) (bool, error) {
	if f.query == "" {
		return true, nil
	}
	for _, field := range []string{p.Name, p.Description, p.Vendor} {
		if strings.Contains(strings.ToLower(field), f.query) {
			return true, nil
		}
	}
	return false, nil
}

// MaxPriceFilter keeps products at or under a price ceiling. Free products
// always match.
type MaxPriceFilter struct {
	maxCents int
}

// NewMaxPriceFilter creates a price-ceiling filter.
func NewMaxPriceFilter(maxCents int) *MaxPriceFilter {
	return &MaxPriceFilter{maxCents: maxCents}
}

// Matches reports whether the product price is within the ceiling.
func (f *MaxPriceFilter) Matches(ctx context.Context, p *domain.Product) (bool, error) {
	return p.PriceCents <= f.maxCents, nil
}

// VisibleFilter keeps products the given role may see: everyone sees
// approved listings, moderators and admins also see pending ones.
type VisibleFilter struct {
	role domain.Role
}

// NewVisibleFilter creates a visibility filter for a role.
func NewVisibleFilter(role domain.Role) *VisibleFilter {
	return &VisibleFilter{role: role}
}

// Matches applies the visibility rule.
func (f *VisibleFilter) Matches(ctx context.Context, p *domain.Product) (bool, error) {
	switch p.Status {
	case domain.ModerationApproved:
		return true, nil
	case domain.ModerationPending:
		return f.role.CanModerate(), nil
	default:
		return false, nil
	}
}
