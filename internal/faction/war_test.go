package faction

import (
	"errors"
	"testing"
)

func TestDeclare_RejectsExistingEitherOrdering(t *testing.T) {
	r := NewWarRegistry()
	if _, err := r.Declare("red", "blue"); err != nil {
		t.Fatalf("first declare: %v", err)
	}
	if _, err := r.Declare("red", "blue"); !errors.Is(err, ErrWarExists) {
		t.Errorf("same ordering: want ErrWarExists, got %v", err)
	}
	if _, err := r.Declare("blue", "red"); !errors.Is(err, ErrWarExists) {
		t.Errorf("reversed ordering: want ErrWarExists, got %v", err)
	}
}

func TestAccept_RequiresOriginalOrdering(t *testing.T) {
	r := NewWarRegistry()
	if _, err := r.Declare("red", "blue"); err != nil {
		t.Fatal(err)
	}

	// Blue accepting red's declaration uses (red, blue) — succeeds.
	w, err := r.Accept("blue", "red")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if w.Status != WarActive {
		t.Errorf("status = %v, want ACTIVE", w.Status)
	}

	// Red "accepting" a declaration it made does not exist under (blue, red).
	if _, err := r.Accept("red", "blue"); !errors.Is(err, ErrWarNotFound) {
		t.Errorf("reversed accept: want ErrWarNotFound, got %v", err)
	}
}

func TestAtWar_OnlyActiveCounts(t *testing.T) {
	r := NewWarRegistry()
	r.Declare("red", "blue")
	if r.AtWar("red", "blue") {
		t.Error("DECLARED war must not count as at-war")
	}
	r.Accept("blue", "red")
	if !r.AtWar("red", "blue") {
		t.Error("ACTIVE war should count as at-war")
	}
	if !r.AtWar("blue", "red") {
		t.Error("at-war must be symmetric")
	}
	r.End("blue", "red")
	if r.AtWar("red", "blue") {
		t.Error("ENDED war must not count as at-war")
	}
}

func TestEnd_AllowsFreshDeclaration(t *testing.T) {
	r := NewWarRegistry()
	r.Declare("red", "blue")
	r.Accept("blue", "red")
	if _, err := r.End("red", "blue"); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := r.Declare("blue", "red"); err != nil {
		t.Errorf("declare after ended war: %v", err)
	}
}
