package storage

import (
	"context"
	"sort"
)

// CreateSubscription saves a search filter for the user and returns its
// rowid.
func (d *Database) CreateSubscription(ctx context.Context, userID int64, filter SubscriptionFilter) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	rowID := d.nextSubID
	d.nextSubID++
	sub := Subscription{RowID: rowID, UserID: userID, SubscriptionFilter: filter}
	d.subscriptions[userID] = append(d.subscriptions[userID], sub.clone())
	d.commitLocked(ctx, "create_subscription")
	d.log.Infow("storage: subscription created", "user_id", userID, "rowid", rowID)
	return rowID
}

// ListSubscriptions returns the user's subscriptions in creation order.
func (d *Database) ListSubscriptions(ctx context.Context, userID int64) []Subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()

	subs := d.subscriptions[userID]
	out := make([]Subscription, len(subs))
	for i, s := range subs {
		out[i] = s.clone()
	}
	return out
}

// ListAllSubscriptions returns every subscription ordered by rowid.
func (d *Database) ListAllSubscriptions(ctx context.Context) []Subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []Subscription{}
	for _, subs := range d.subscriptions {
		for _, s := range subs {
			out = append(out, s.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowID < out[j].RowID })
	return out
}

// DeleteSubscription removes the subscription with the given rowid. Deleting
// an unknown rowid changes nothing and returns false.
func (d *Database) DeleteSubscription(ctx context.Context, rowID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for userID, subs := range d.subscriptions {
		kept := subs[:0:0]
		for _, s := range subs {
			if s.RowID != rowID {
				kept = append(kept, s)
			}
		}
		if len(kept) == len(subs) {
			continue
		}
		d.subscriptions[userID] = kept
		d.commitLocked(ctx, "delete_subscription")
		d.log.Infow("storage: subscription deleted", "user_id", userID, "rowid", rowID)
		return true
	}
	d.log.Debugw("storage: subscription not found", "rowid", rowID)
	return false
}
