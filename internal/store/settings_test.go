package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get(SettingLastShape); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unset key, got %v", err)
	}

	if err := repo.Set(SettingLastShape, "saturn"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := repo.Set(SettingLastShape, "galaxy"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := repo.Get(SettingLastShape)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "galaxy" {
		t.Errorf("expected galaxy, got %q", got)
	}

	if err := repo.Delete(SettingLastShape); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get(SettingLastShape); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(SettingLastShape); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}
