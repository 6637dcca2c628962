package catalog

import (
	"errors"
	"fmt"
	"math"

	"tooldex/pkg/domain"
)

var (
	ErrInvalidStars      = errors.New("stars must be between 1 and 5")
	ErrNotPending        = errors.New("only pending items can be resolved")
	ErrModeratorRequired = errors.New("moderator or admin role required")
)

// ValidateRating checks a rating before it is submitted or stored.
func ValidateRating(r *domain.Rating) error {
	if r.Stars < 1 || r.Stars > 5 {
		return fmt.Errorf("%w, got %d", ErrInvalidStars, r.Stars)
	}
	if r.ProductID == "" {
		return errors.New("rating is missing a product id")
	}
	if r.UserID == "" {
		return errors.New("rating is missing a user id")
	}
	return nil
}

// Summarize aggregates ratings into the summary shown on a product card.
// The average is rounded to one decimal place.
func Summarize(productID string, ratings []domain.Rating) domain.RatingSummary {
	summary := domain.RatingSummary{ProductID: productID}

	var total int
	for _, r := range ratings {
		if r.ProductID != productID {
			continue
		}
		summary.Count++
		total += r.Stars
	}

	if summary.Count > 0 {
		avg := float64(total) / float64(summary.Count)
		summary.Average = math.Round(avg*10) / 10
	}
	return summary
}

// Resolve moves a pending product to approved or rejected. Only moderators
// and admins may resolve, and only pending products can move.
func Resolve(p *domain.Product, to domain.ModerationStatus, by domain.Role) error {
	if !by.CanModerate() {
		return ErrModeratorRequired
	}
	if p.Status != domain.ModerationPending {
		return fmt.Errorf("%w: product %s is %s", ErrNotPending, p.ID, p.Status)
	}
	if to != domain.ModerationApproved && to != domain.ModerationRejected {
		return fmt.Errorf("invalid target status %q", to)
	}
	p.Status = to
	return nil
}
