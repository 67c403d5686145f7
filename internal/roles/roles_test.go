package roles

import (
	"testing"

	"github.com/Shkiper2006/RustRP/internal/store"
)

type onlineList []store.PlayerID

func (o onlineList) Online() []store.PlayerID { return o }

func TestFilledBy(t *testing.T) {
	players := store.New()
	judge := players.Profile(4)
	judge.Name = "Sam"
	judge.Roles["judge"] = true

	r := NewRegistry(DefaultHandlers(), players)

	id, name := r.FilledBy(RoleJudge, onlineList{3, 4})
	if id != 4 || name != "Sam" {
		t.Errorf("FilledBy = (%d, %q), want the online judge", id, name)
	}

	// Holder offline: NPC stand-in.
	id, name = r.FilledBy(RoleJudge, onlineList{3})
	if id != 0 || name != "Judge Marlowe" {
		t.Errorf("FilledBy = (%d, %q), want the fallback", id, name)
	}

	if _, ok := r.Lookup(Role("sheriff")); ok {
		t.Error("unknown role must not resolve")
	}
}
