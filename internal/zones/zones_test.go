package zones

import "testing"

func TestResolve_HighestPriorityWins(t *testing.T) {
	r := NewResolver()
	r.Add(&Zone{ID: "city", Type: TypeCitySafe, Center: Position{}, Radius: 200, Priority: 100})
	r.Add(&Zone{ID: "suburb", Type: TypeSuburb, Center: Position{}, Radius: 400, Priority: 10})

	z, ok := r.Resolve(Position{X: 50})
	if !ok {
		t.Fatal("expected a zone at distance 50")
	}
	if z.ID != "city" {
		t.Errorf("expected city (priority 100) to win, got %q", z.ID)
	}

	// Outside the city circle but inside the suburb.
	z, ok = r.Resolve(Position{X: 300})
	if !ok || z.ID != "suburb" {
		t.Errorf("expected suburb at distance 300, got %v ok=%v", z, ok)
	}

	// Outside everything → wilderness.
	if _, ok := r.Resolve(Position{X: 500}); ok {
		t.Error("expected no zone at distance 500")
	}
	if got := r.TypeAt(Position{X: 500}); got != TypeWild {
		t.Errorf("TypeAt outside all zones = %v, want WILD", got)
	}
}

func TestResolve_SpecialEventDominates(t *testing.T) {
	r := NewResolver()
	r.Add(&Zone{ID: "city", Type: TypeCitySafe, Center: Position{}, Radius: 200, Priority: 9999})
	r.Add(&Zone{ID: "fair", Type: TypeSpecialEvent, Center: Position{}, Radius: 200, Priority: 1})

	z, ok := r.Resolve(Position{X: 10})
	if !ok || z.ID != "fair" {
		t.Errorf("special event should dominate any configured priority, got %v", z)
	}
}

func TestResolve_StableTieBreak(t *testing.T) {
	r := NewResolver()
	r.Add(&Zone{ID: "b", Type: TypeCitySafe, Center: Position{}, Radius: 100, Priority: 50})
	r.Add(&Zone{ID: "a", Type: TypeCitySafe, Center: Position{}, Radius: 100, Priority: 50})

	first, _ := r.Resolve(Position{X: 1})
	for i := 0; i < 20; i++ {
		z, _ := r.Resolve(Position{X: 1})
		if z.ID != first.ID {
			t.Fatalf("tie-break unstable: got %q then %q", first.ID, z.ID)
		}
	}
	if first.ID != "a" {
		t.Errorf("expected ID-ordered tie-break to pick %q, got %q", "a", first.ID)
	}
}

func TestBlockFlags(t *testing.T) {
	r := NewResolver()
	r.Add(&Zone{ID: "city", Type: TypeCitySafe, Center: Position{}, Radius: 200, Priority: 100})

	inside := r.BlockFlags(Position{X: 50})
	if !inside.Combat || !inside.Raid || !inside.Loot {
		t.Errorf("city core should block combat/raid/loot, got %+v", inside)
	}

	outside := r.BlockFlags(Position{X: 250})
	if outside != (BlockSet{}) {
		t.Errorf("wilderness should block nothing, got %+v", outside)
	}
}

func TestCombinedFlags_Union(t *testing.T) {
	r := NewResolver()
	r.CitySafeBlocks = BlockSet{Combat: true}
	r.Add(&Zone{ID: "city", Type: TypeCitySafe, Center: Position{}, Radius: 100, Priority: 100})

	// Actor outside, target inside: the target's flags still apply.
	got := r.CombinedFlags(Position{X: 500}, Position{X: 10})
	if !got.Combat {
		t.Error("combat flag from the target position should survive the union")
	}
	if got.Raid {
		t.Error("raid flag was never configured")
	}
}

func TestContains_BoundaryInclusive(t *testing.T) {
	z := &Zone{ID: "z", Center: Position{}, Radius: 100}
	if !z.Contains(Position{X: 100}) {
		t.Error("distance == radius should be inside")
	}
	if z.Contains(Position{X: 100.01}) {
		t.Error("distance > radius should be outside")
	}
}
