package cache

import (
	"testing"
	"time"
)

func TestManager_SetGet(t *testing.T) {
	m := NewManager(time.Minute)

	m.Set("key", "value", time.Minute)
	v, found := m.Get("key")
	if !found {
		t.Fatal("Expected key to be cached")
	}
	if v.(string) != "value" {
		t.Errorf("Expected 'value', got %v", v)
	}

	if _, found := m.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}
}

func TestManager_Expiry(t *testing.T) {
	m := NewManager(time.Minute)

	m.Set("ephemeral", 1, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := m.Get("ephemeral"); found {
		t.Error("Expected entry to expire")
	}
}

func TestManager_DeleteFlush(t *testing.T) {
	m := NewManager(time.Minute)

	m.Set("a", 1, time.Minute)
	m.Set("b", 2, time.Minute)

	m.Delete("a")
	if _, found := m.Get("a"); found {
		t.Error("Expected deleted key to be gone")
	}
	if _, found := m.Get("b"); !found {
		t.Error("Expected other key to remain")
	}

	m.Flush()
	if _, found := m.Get("b"); found {
		t.Error("Expected flush to clear everything")
	}
}

func TestManager_SummaryHelpers(t *testing.T) {
	m := NewManager(time.Minute)

	if _, found := m.GetSummary(7); found {
		t.Error("Expected no summary before caching")
	}

	m.SetSummary(7, "a short summary")
	summary, found := m.GetSummary(7)
	if !found {
		t.Fatal("Expected summary to be cached")
	}
	if summary != "a short summary" {
		t.Errorf("Expected cached summary, got %q", summary)
	}

	// Keys are per article.
	if _, found := m.GetSummary(8); found {
		t.Error("Expected no summary for a different article")
	}
}
