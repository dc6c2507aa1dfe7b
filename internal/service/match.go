package service

import (
	"strings"

	"sales_bot/internal/storage"
)

// Match reports whether the ad satisfies the saved search. An empty model
// and nil bounds match anything; bounds are inclusive and the model compares
// case-insensitively.
func Match(sub storage.Subscription, ad storage.Ad) bool {
	if m := strings.TrimSpace(sub.Model); m != "" && !strings.EqualFold(m, strings.TrimSpace(ad.Model)) {
		return false
	}
	if sub.PriceMin != nil && ad.Price < *sub.PriceMin {
		return false
	}
	if sub.PriceMax != nil && ad.Price > *sub.PriceMax {
		return false
	}
	if sub.YearMin != nil && ad.Year < *sub.YearMin {
		return false
	}
	if sub.YearMax != nil && ad.Year > *sub.YearMax {
		return false
	}
	return true
}
