package court

import (
	"errors"
	"testing"
	"time"

	"github.com/Shkiper2006/RustRP/internal/economy"
	"github.com/Shkiper2006/RustRP/internal/notify"
	"github.com/Shkiper2006/RustRP/internal/store"
)

type banRecorder struct {
	bans []struct {
		player  store.PlayerID
		t       store.LicenseType
		minutes int
	}
}

func (b *banRecorder) Ban(p store.PlayerID, t store.LicenseType, minutes int) {
	b.bans = append(b.bans, struct {
		player  store.PlayerID
		t       store.LicenseType
		minutes int
	}{p, t, minutes})
}

type fakeJail struct {
	sent      []store.PlayerID
	reachable bool
}

func (f *fakeJail) SendToJail(p store.PlayerID) bool {
	f.sent = append(f.sent, p)
	return f.reachable
}

type auditLog struct {
	entries []store.AuditEntry
}

func (a *auditLog) AppendAudit(e store.AuditEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

func (a *auditLog) count(action string) int {
	n := 0
	for _, e := range a.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

func newManager(t *testing.T, sec int64) (*Manager, *economy.MemoryBalances, *banRecorder, *fakeJail, *auditLog) {
	t.Helper()
	bal := economy.NewMemoryBalances()
	bans := &banRecorder{}
	jail := &fakeJail{reachable: true}
	audit := &auditLog{}
	m := NewManager(store.New(), economy.NewLedger(bal, nil), bans, notify.Discard{}, audit, jail)
	m.SetClock(func() time.Time { return time.Unix(sec, 0) })
	return m, bal, bans, jail, audit
}

func TestStateMachine(t *testing.T) {
	m, _, _, _, _ := newManager(t, 1000)
	c := m.CreateCase(5, 6, "theft")
	if c.Status != StatusOpen || c.ID != 1 {
		t.Fatalf("fresh case: id=%d status=%v", c.ID, c.Status)
	}

	if err := m.Schedule(c.ID, 9, 30); err != nil {
		t.Fatal(err)
	}
	if c.Status != StatusHearingScheduled || c.ScheduledAt != 1000+30*60 {
		t.Errorf("schedule: status=%v at=%d", c.Status, c.ScheduledAt)
	}

	if err := m.RecordVerdict(c.ID, 9, Verdict{JailMinutes: 10}); err != nil {
		t.Fatal(err)
	}
	if c.Status != StatusVerdict {
		t.Errorf("status after verdict = %v", c.Status)
	}

	if err := m.Close(c.ID, 9); err != nil {
		t.Fatal(err)
	}
	if err := m.AddEvidence(c.ID, 6, "late"); !errors.Is(err, ErrCaseClosed) {
		t.Errorf("evidence on closed case: got %v", err)
	}
}

func TestVerdict_JailExtendsAndRelocates(t *testing.T) {
	m, _, _, jail, _ := newManager(t, 1000)
	c := m.CreateCase(5, 6)
	prof := m.Players.Profile(5)
	prof.JailUntil = 2000 // already serving time

	if err := m.RecordVerdict(c.ID, 9, Verdict{JailMinutes: 10, CityBanMinutes: 5}); err != nil {
		t.Fatal(err)
	}
	if prof.JailUntil != 2000+10*60 {
		t.Errorf("jail until = %d, want stacked onto existing sentence %d", prof.JailUntil, 2000+10*60)
	}
	if prof.CityBanUntil != 1000+5*60 {
		t.Errorf("city ban until = %d, want %d", prof.CityBanUntil, 1000+5*60)
	}
	if len(jail.sent) != 1 || jail.sent[0] != 5 {
		t.Error("suspect should be relocated to the jail point")
	}
}

func TestVerdict_AppliedOnce(t *testing.T) {
	m, bal, _, _, _ := newManager(t, 1000)
	bal.Accounts[5] = 1000
	c := m.CreateCase(5, 6)

	if err := m.RecordVerdict(c.ID, 9, Verdict{FineToTreasury: 100}); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordVerdict(c.ID, 9, Verdict{FineToTreasury: 100}); !errors.Is(err, ErrVerdictApplied) {
		t.Fatalf("second verdict: got %v, want ErrVerdictApplied", err)
	}
	if got := bal.Accounts[5]; got != 900 {
		t.Errorf("fine charged twice: balance = %d", got)
	}
	if got := m.Ledger.Treasury.Balance; got != 100 {
		t.Errorf("treasury = %d, want 100", got)
	}
}

func TestVerdict_FineFailureDoesNotBlock(t *testing.T) {
	m, _, _, _, audit := newManager(t, 1000)
	c := m.CreateCase(5, 6) // suspect broke

	if err := m.RecordVerdict(c.ID, 9, Verdict{FineToTreasury: 500, JailMinutes: 10}); err != nil {
		t.Fatal(err)
	}
	if !c.Applied {
		t.Error("verdict must be marked applied despite the failed fine")
	}
	if audit.count("fine_failed") != 1 {
		t.Error("failed fine should be recorded in the audit log")
	}
	prof := m.Players.Profile(5)
	if prof.JailUntil == 0 {
		t.Error("jail consequence must still apply")
	}
}

func TestVerdict_RestitutionAndBans(t *testing.T) {
	m, bal, bans, _, _ := newManager(t, 1000)
	bal.Accounts[5] = 1000
	c := m.CreateCase(5, 6)

	v := Verdict{
		FineToVictim: 200,
		LicenseBans:  []LicenseBan{{Type: store.LicenseWeaponL2, Minutes: 120}},
	}
	if err := m.RecordVerdict(c.ID, 9, v); err != nil {
		t.Fatal(err)
	}
	if got := bal.Accounts[6]; got != 200 {
		t.Errorf("victim balance = %d, want 200", got)
	}
	if len(bans.bans) != 1 || bans.bans[0].t != store.LicenseWeaponL2 || bans.bans[0].minutes != 120 {
		t.Errorf("license bans applied = %+v", bans.bans)
	}
}

func TestWarrant_OverwritesAndExpires(t *testing.T) {
	m, _, _, _, _ := newManager(t, 1000)
	c := m.CreateCase(5, 6)

	if err := m.RequestWarrant(c.ID, 7, 8, 5, 60, "raid"); err != nil {
		t.Fatal(err)
	}
	if !m.HasActiveWarrant(8, 5) {
		t.Error("fresh warrant should be active")
	}
	if m.HasActiveWarrant(8, 6) {
		t.Error("wrong target must not match")
	}

	// One warrant per case: a second request replaces the first.
	if err := m.RequestWarrant(c.ID, 7, 9, 5, 60, "raid"); err != nil {
		t.Fatal(err)
	}
	if m.HasActiveWarrant(8, 5) {
		t.Error("overwritten warrant must be gone")
	}
	if !m.HasActiveWarrant(9, 5) {
		t.Error("replacement warrant should be active")
	}

	// Past expiry: inactive without deletion.
	m.SetClock(func() time.Time { return time.Unix(1000+61*60, 0) })
	if m.HasActiveWarrant(9, 5) {
		t.Error("expired warrant must read inactive")
	}
	if c.Warrant == nil {
		t.Error("expired warrant stays on the case")
	}
}

func TestWarrant_ZeroExpiryNeverExpires(t *testing.T) {
	m, _, _, _, _ := newManager(t, 1000)
	c := m.CreateCase(5, 6)
	if err := m.RequestWarrant(c.ID, 7, 8, 5, 0, "standing"); err != nil {
		t.Fatal(err)
	}
	m.SetClock(func() time.Time { return time.Unix(1_000_000_000, 0) })
	if !m.HasActiveWarrant(8, 5) {
		t.Error("zero expiry means no expiry")
	}
}

func TestWarrant_ClosedCaseInactive(t *testing.T) {
	m, _, _, _, _ := newManager(t, 1000)
	c := m.CreateCase(5, 6)
	m.RequestWarrant(c.ID, 7, 8, 5, 0, "")
	m.Close(c.ID, 9)
	if m.HasActiveWarrant(8, 5) {
		t.Error("warrant on a closed case must read inactive")
	}
}

func TestRetaliation(t *testing.T) {
	m, _, _, _, _ := newManager(t, 1000)
	c := m.CreateCase(5, 6)
	if err := m.GrantRetaliation(c.ID, 6, 5, 30); err != nil {
		t.Fatal(err)
	}
	if !m.HasRetaliationPermit(6, 5) {
		t.Error("fresh permit should be active")
	}
	m.SetClock(func() time.Time { return time.Unix(1000+31*60, 0) })
	if m.HasRetaliationPermit(6, 5) {
		t.Error("expired permit must read inactive")
	}
	if c.Retaliation == nil {
		t.Error("expired permit stays on the case")
	}
}

func TestRecordDetention(t *testing.T) {
	m, _, _, _, audit := newManager(t, 1000)
	c := m.CreateCase(5, 6)
	if err := m.RecordDetention(c.ID, 7, 5, 15, "resisting"); err != nil {
		t.Fatal(err)
	}
	if len(c.Detentions) != 1 || c.Detentions[0].Minutes != 15 {
		t.Errorf("detentions = %+v", c.Detentions)
	}
	if audit.count("detention") != 1 {
		t.Error("detention should land in the audit log")
	}
}
