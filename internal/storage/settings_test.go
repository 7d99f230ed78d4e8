package storage

import (
	"context"
	"encoding/json"
	"testing"
)

func TestSettings_SetAndGetAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetSettings(ctx, map[string]any{
		"ai.model":            "qwen-max",
		"server.cors_origins": []string{"https://blog.example.com"},
	}); err != nil {
		t.Fatalf("SetSettings() error: %v", err)
	}

	all, err := store.GetAllSettings(ctx)
	if err != nil {
		t.Fatalf("GetAllSettings() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d settings, want 2", len(all))
	}

	var model string
	if err := json.Unmarshal(all["ai.model"], &model); err != nil || model != "qwen-max" {
		t.Errorf("ai.model = %q (%v), want qwen-max", model, err)
	}
	var origins []string
	if err := json.Unmarshal(all["server.cors_origins"], &origins); err != nil || len(origins) != 1 || origins[0] != "https://blog.example.com" {
		t.Errorf("server.cors_origins = %v (%v)", origins, err)
	}
}

func TestSettings_Overwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetSettings(ctx, map[string]any{"themes.active": "light"}); err != nil {
		t.Fatalf("first SetSettings() error: %v", err)
	}
	if err := store.SetSettings(ctx, map[string]any{"themes.active": "dark"}); err != nil {
		t.Fatalf("second SetSettings() error: %v", err)
	}

	all, err := store.GetAllSettings(ctx)
	if err != nil {
		t.Fatalf("GetAllSettings() error: %v", err)
	}
	if string(all["themes.active"]) != `"dark"` {
		t.Errorf("themes.active = %s, want \"dark\"", all["themes.active"])
	}
}

func TestSettings_UnmarshalableValueWritesNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SetSettings(ctx, map[string]any{
		"a.valid":   "ok",
		"b.invalid": make(chan int),
	})
	if err == nil {
		t.Fatal("expected error for unmarshalable value")
	}

	all, err := store.GetAllSettings(ctx)
	if err != nil {
		t.Fatalf("GetAllSettings() error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("partial write: %v", all)
	}
}

func TestGetAllSettings_Empty(t *testing.T) {
	store := newTestStore(t)

	all, err := store.GetAllSettings(context.Background())
	if err != nil {
		t.Fatalf("GetAllSettings() error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no settings, got %v", all)
	}
}
