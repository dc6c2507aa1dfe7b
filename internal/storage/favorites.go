package storage

import "context"

// IsFavorite reports whether the user bookmarked the ad.
func (d *Database) IsFavorite(ctx context.Context, userID, adID int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.favorites[userID][adID]
	return ok
}

// AddFavorite bookmarks an existing ad for the user. It is a no-op returning
// false when the ad does not exist.
func (d *Database) AddFavorite(ctx context.Context, userID, adID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ads[adID]; !ok {
		return false
	}
	set, ok := d.favorites[userID]
	if !ok {
		set = map[int64]struct{}{}
		d.favorites[userID] = set
	}
	set[adID] = struct{}{}
	d.commitLocked(ctx, "add_favorite")
	d.log.Infow("storage: favorite added", "user_id", userID, "ad_id", adID)
	return true
}

// RemoveFavorite drops the bookmark. It returns false when there was none.
func (d *Database) RemoveFavorite(ctx context.Context, userID, adID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.favorites[userID]
	if _, ok := set[adID]; !ok {
		return false
	}
	delete(set, adID)
	d.commitLocked(ctx, "remove_favorite")
	d.log.Infow("storage: favorite removed", "user_id", userID, "ad_id", adID)
	return true
}

// ListFavoriteAds returns the user's bookmarked ads in id order, skipping
// ads that no longer exist.
func (d *Database) ListFavoriteAds(ctx context.Context, userID int64) []Ad {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []Ad{}
	for _, id := range sortedIDs(d.favorites[userID]) {
		if ad, ok := d.ads[id]; ok {
			out = append(out, ad.clone())
		}
	}
	return out
}
