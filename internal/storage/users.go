package storage

import "context"

// UpsertUser creates the user, stamping creation and activity times, or
// updates only the display name and status of an existing one. An empty
// status means pending.
func (d *Database) UpsertUser(ctx context.Context, id int64, displayName string, status UserStatus) {
	if status == "" {
		status = StatusPending
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		now := d.stamp()
		u = &User{ID: id, CreatedAt: now, LastActiveAt: now}
		d.users[id] = u
	}
	u.DisplayName = displayName
	u.Status = status
	if u.CreatedAt.IsZero() {
		u.CreatedAt = d.stamp()
	}
	if u.LastActiveAt.IsZero() {
		u.LastActiveAt = d.stamp()
	}
	d.commitLocked(ctx, "upsert_user")
	d.log.Infow("storage: user upserted", "user_id", id, "status", status, "created", !ok)
}

// GetUser returns a copy of the user.
func (d *Database) GetUser(ctx context.Context, id int64) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// SetUserContact overwrites the contact name, phone and city.
func (d *Database) SetUserContact(ctx context.Context, id int64, name, phone, city string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.userLocked(id)
	u.ContactName, u.Phone, u.City = name, phone, city
	d.commitLocked(ctx, "set_user_contact")
	d.log.Infow("storage: user contact updated", "user_id", id)
}

// SetUserStatus changes the approval status.
func (d *Database) SetUserStatus(ctx context.Context, id int64, status UserStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userLocked(id).Status = status
	d.commitLocked(ctx, "set_user_status")
	d.log.Infow("storage: user status updated", "user_id", id, "status", status)
}

// TouchLastActive stamps the user's last activity with the current time.
func (d *Database) TouchLastActive(ctx context.Context, id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userLocked(id).LastActiveAt = d.stamp()
	d.commitLocked(ctx, "touch_last_active")
}

// SetUserDisplayName records the platform display name. Empty names are
// ignored and nothing is written when the name is unchanged.
func (d *Database) SetUserDisplayName(ctx context.Context, id int64, name string) {
	if name == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[id]; !ok {
		d.userLocked(id).DisplayName = name
		d.commitLocked(ctx, "set_user_display_name")
		return
	}
	u := d.users[id]
	if u.DisplayName == name {
		return
	}
	u.DisplayName = name
	d.commitLocked(ctx, "set_user_display_name")
	d.log.Infow("storage: user display name updated", "user_id", id, "display_name", name)
}

// SetUserReceiptAttachment stores the attachment reference of the user's
// payment receipt.
func (d *Database) SetUserReceiptAttachment(ctx context.Context, id int64, ref string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userLocked(id).ReceiptAttachmentID = ref
	d.commitLocked(ctx, "set_user_receipt")
	d.log.Infow("storage: user receipt updated", "user_id", id)
}

// userLocked returns the user, creating a pending record if it is missing.
func (d *Database) userLocked(id int64) *User {
	if u, ok := d.users[id]; ok {
		return u
	}
	now := d.stamp()
	u := &User{ID: id, Status: StatusPending, CreatedAt: now, LastActiveAt: now}
	d.users[id] = u
	return u
}
