package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

type productWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Products is the demo catalog. Prices are in cents.
var Products = []domain.Product{
	{
		ID:          "880RR",
		Category:    "tents",
		Name:        "Ajax Tent - 3-Person, 2-Door",
		Brand:       "Marmot",
		Description: "Get out and enjoy nature with Marmot's Ajax tent, featuring a smart design with durable, waterproof construction.",
		Image:       "/images/tents/marmot-ajax-tent-3-person-2-door-in-pale-pumpkin-terracotta~p~880rr_01~320.jpg",
		PriceCents:  19999,
	},
	{
		ID:          "985RF",
		Category:    "tents",
		Name:        "Talus Tent - 4-Person, 3-Season",
		Brand:       "The North Face",
		Description: "Enjoy a fun night under stars with your favorite people in The North Face's Talus four-person tent.",
		Image:       "/images/tents/the-north-face-talus-tent-4-person-3-season-in-golden-oak-saffron-yellow~p~985rf_01~320.jpg",
		PriceCents:  19999,
	},
	{
		ID:          "985PR",
		Category:    "tents",
		Name:        "Alpine Tent - 3-Person",
		Brand:       "The North Face",
		Description: "Spacious and easy to pitch, with two doors and two vestibules for gear.",
		Image:       "/images/tents/the-north-face-alpine-guide-tent-3-person-4-season-in-canary-yellow-high-rise-grey~p~985pr_01~320.jpg",
		PriceCents:  19999,
	},
	{
		ID:          "344YJ",
		Category:    "tents",
		Name:        "Rimrock Tent - 2-Person, 3-Season",
		Brand:       "Cedar Ridge",
		Description: "A compact, lightweight tent for two, with a single door and full rainfly.",
		Image:       "/images/tents/cedar-ridge-rimrock-tent-2-person-3-season-in-rust-clay~p~344yj_01~320.jpg",
		PriceCents:  6999,
	},
}

// Apply upserts the demo catalog. It is idempotent.
func Apply(ctx context.Context, repo productWriter) error {
	for _, p := range Products {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
