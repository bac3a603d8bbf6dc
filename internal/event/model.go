package event

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleReviewer = "reviewer"
)

type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:64;not null" json:"key"`
	Name      string    `gorm:"size:255" json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EventRole grants a user a capability ("admin", "reviewer") on one event.
type EventRole struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Role    string `gorm:"size:32;not null;uniqueIndex:idx_event_role" json:"role"`
	UserID  uint   `gorm:"not null;uniqueIndex:idx_event_role" json:"user_id"`
	EventID uint   `gorm:"not null;uniqueIndex:idx_event_role" json:"event_id"`
}

// HasRole reports whether the user holds the named role on the event.
func HasRole(db *gorm.DB, userID, eventID uint, role string) (bool, error) {
	var count int64
	err := db.Model(&EventRole{}).
		Where("user_id = ? AND event_id = ? AND role = ?", userID, eventID, role).
		Count(&count).Error
	return count > 0, err
}

// IsEventAdmin is the capability check performed before admin operations.
// System admins pass for every event.
func IsEventAdmin(db *gorm.DB, userID, eventID uint, systemAdmin bool) (bool, error) {
	if systemAdmin {
		return true, nil
	}
	return HasRole(db, userID, eventID, RoleAdmin)
}

// GrantRole adds a role to a (user, event) pair. Granting an existing
// role is a no-op.
func GrantRole(db *gorm.DB, userID, eventID uint, role string) error {
	exists, err := HasRole(db, userID, eventID, role)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return db.Create(&EventRole{Role: role, UserID: userID, EventID: eventID}).Error
}
