package geocode

import "testing"

func TestCacheRoundsCoordinates(t *testing.T) {
	cache := NewCache(4)
	place := &Place{City: "Lagos", Country: "Nigeria", Formatted: "Lagos, Nigeria"}

	cache.Put(6.52441, 3.37921, place)

	// A fifth-decimal wiggle lands on the same key.
	got, ok := cache.Get(6.52442, 3.37919)
	if !ok {
		t.Fatal("expected cache hit for nearby coordinates")
	}
	if got.Formatted != "Lagos, Nigeria" {
		t.Fatalf("unexpected cached place %+v", got)
	}

	if _, ok := cache.Get(6.53, 3.38); ok {
		t.Fatal("expected cache miss for distinct coordinates")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(2)
	cache.Put(1, 1, &Place{City: "A"})
	cache.Put(2, 2, &Place{City: "B"})

	// Touch the first entry so the second becomes eviction candidate.
	if _, ok := cache.Get(1, 1); !ok {
		t.Fatal("expected hit for first entry")
	}

	cache.Put(3, 3, &Place{City: "C"})

	if _, ok := cache.Get(2, 2); ok {
		t.Fatal("expected least recently used entry to be evicted")
	}
	if _, ok := cache.Get(1, 1); !ok {
		t.Fatal("expected recently used entry to survive")
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(8)
	cache.Put(1, 1, &Place{City: "A"})
	cache.Put(2, 2, &Place{City: "B"})

	cache.Clear()

	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after clear, got %d entries", cache.Len())
	}
	if _, ok := cache.Get(1, 1); ok {
		t.Fatal("expected miss after clear")
	}
}

func TestCachePutUpdatesExistingKey(t *testing.T) {
	cache := NewCache(2)
	cache.Put(1, 1, &Place{City: "Old"})
	cache.Put(1, 1, &Place{City: "New"})

	got, ok := cache.Get(1, 1)
	if !ok || got.City != "New" {
		t.Fatalf("expected updated entry, got %+v ok=%v", got, ok)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected single entry, got %d", cache.Len())
	}
}
