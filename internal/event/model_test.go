package event

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupEventDB(t *testing.T) *gorm.DB {
	dbConn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := dbConn.AutoMigrate(&Event{}, &EventRole{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := dbConn.Exec("DELETE FROM event_roles").Error; err != nil {
		t.Fatalf("failed to reset event_roles: %v", err)
	}
	if err := dbConn.Exec("DELETE FROM events").Error; err != nil {
		t.Fatalf("failed to reset events: %v", err)
	}
	return dbConn
}

func TestGrantRole_Idempotent(t *testing.T) {
	dbConn := setupEventDB(t)
	if err := GrantRole(dbConn, 1, 10, RoleReviewer); err != nil {
		t.Fatalf("first grant failed: %v", err)
	}
	if err := GrantRole(dbConn, 1, 10, RoleReviewer); err != nil {
		t.Fatalf("second grant failed: %v", err)
	}
	var count int64
	dbConn.Model(&EventRole{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 role row, got %d", count)
	}
}

func TestHasRole(t *testing.T) {
	dbConn := setupEventDB(t)
	if err := GrantRole(dbConn, 1, 10, RoleAdmin); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	ok, err := HasRole(dbConn, 1, 10, RoleAdmin)
	if err != nil || !ok {
		t.Errorf("expected role to be present, ok=%v err=%v", ok, err)
	}
	ok, err = HasRole(dbConn, 1, 10, RoleReviewer)
	if err != nil || ok {
		t.Errorf("expected reviewer role to be absent, ok=%v err=%v", ok, err)
	}
	ok, err = HasRole(dbConn, 1, 11, RoleAdmin)
	if err != nil || ok {
		t.Errorf("roles must not leak across events, ok=%v err=%v", ok, err)
	}
}

func TestIsEventAdmin(t *testing.T) {
	dbConn := setupEventDB(t)
	if err := GrantRole(dbConn, 2, 10, RoleAdmin); err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	ok, err := IsEventAdmin(dbConn, 2, 10, false)
	if err != nil || !ok {
		t.Errorf("event admin not recognized, ok=%v err=%v", ok, err)
	}
	ok, err = IsEventAdmin(dbConn, 3, 10, false)
	if err != nil || ok {
		t.Errorf("non-admin passed the check, ok=%v err=%v", ok, err)
	}
	// System admins pass without an event role.
	ok, err = IsEventAdmin(dbConn, 3, 10, true)
	if err != nil || !ok {
		t.Errorf("system admin rejected, ok=%v err=%v", ok, err)
	}
}
