package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Shkiper2006/RustRP/internal/contracts"
	"github.com/Shkiper2006/RustRP/internal/court"
	"github.com/Shkiper2006/RustRP/internal/economy"
	"github.com/Shkiper2006/RustRP/internal/notify"
	"github.com/Shkiper2006/RustRP/internal/store"
)

func TestSnapshots_RoundTrip(t *testing.T) {
	s, err := NewSnapshots(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	players := store.New()
	players.Profile(7).Name = "Ada"
	players.Profile(7).JailUntil = 5000

	if err := s.Save("profiles", players); err != nil {
		t.Fatal(err)
	}

	loaded := store.New()
	s.Load("profiles", loaded)
	prof, ok := loaded.Lookup(7)
	if !ok || prof.Name != "Ada" || prof.JailUntil != 5000 {
		t.Errorf("loaded profile = %+v", prof)
	}
}

func TestSnapshots_ContractBoardRoundTrip(t *testing.T) {
	s, err := NewSnapshots(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	bal := economy.NewMemoryBalances()
	bal.Accounts[1] = 500
	escrow := contracts.NewEscrow(economy.NewLedger(bal, nil), nil, notify.Discard{}, nil)
	if _, err := escrow.Create(1, "haul", "crate to outpost", 350, 100, contracts.TypeDelivery, 0); err != nil {
		t.Fatal(err)
	}

	if err := s.Save("contracts", escrow); err != nil {
		t.Fatalf("saving the contract board: %v", err)
	}

	loaded := contracts.NewEscrow(economy.NewLedger(economy.NewMemoryBalances(), nil), nil, notify.Discard{}, nil)
	s.Load("contracts", loaded)
	c, ok := loaded.Get(1)
	if !ok || c.Title != "haul" || c.Deposit != 100 {
		t.Errorf("loaded contract = %+v", c)
	}
	if loaded.NextID != 2 {
		t.Errorf("next id = %d, want 2", loaded.NextID)
	}

	// The payload holds the board alone, no collaborator state.
	assertSnapshotKeys(t, s, "contracts", "contracts", "next_id")
}

func TestSnapshots_CaseDocketRoundTrip(t *testing.T) {
	s, err := NewSnapshots(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	players := store.New()
	players.Profile(3).Name = "Kit"
	ledger := economy.NewLedger(economy.NewMemoryBalances(), nil)
	manager := court.NewManager(players, ledger, nil, notify.Discard{}, nil, nil)
	manager.CreateCase(3, 4, "theft")

	if err := s.Save("cases", manager); err != nil {
		t.Fatalf("saving the case docket: %v", err)
	}

	loaded := court.NewManager(store.New(), ledger, nil, notify.Discard{}, nil, nil)
	s.Load("cases", loaded)
	c, ok := loaded.Get(1)
	if !ok || c.SuspectID != 3 || len(c.Charges) != 1 {
		t.Errorf("loaded case = %+v", c)
	}
	if loaded.NextID != 2 {
		t.Errorf("next id = %d, want 2", loaded.NextID)
	}

	// A stale docket file must not carry profile or treasury copies that
	// could overwrite the live store on load.
	assertSnapshotKeys(t, s, "cases", "cases", "next_id")
}

func assertSnapshotKeys(t *testing.T, s *Snapshots, name string, want ...string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.Dir, name+".json"))
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	for _, k := range want {
		if _, ok := payload[k]; !ok {
			t.Errorf("%s.json missing key %q", name, k)
		}
		delete(payload, k)
	}
	for k := range payload {
		t.Errorf("%s.json carries unexpected key %q", name, k)
	}
}

func TestSnapshots_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewSnapshots(dir)
	if err := s.Save("treasury", &economy.Treasury{Balance: 42}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "treasury.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contents = %v, want only treasury.json", names)
	}
}

func TestSnapshots_CorruptFileYieldsDefault(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewSnapshots(dir)
	if err := os.WriteFile(filepath.Join(dir, "profiles.json"), []byte("{garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := store.New()
	s.Load("profiles", loaded)
	if len(loaded.Players) != 0 {
		t.Errorf("corrupt snapshot must leave the collection empty, got %d profiles", len(loaded.Players))
	}
}

func TestSnapshots_MissingFileIsFine(t *testing.T) {
	s, _ := NewSnapshots(t.TempDir())
	loaded := store.New()
	s.Load("profiles", loaded)
	if len(loaded.Players) != 0 {
		t.Error("missing snapshot must leave the collection at its default")
	}
}

func TestJournal_RoundTrip(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	tx := economy.Transaction{
		ID: "tx-1", From: "player:1", To: "treasury",
		Amount: 350, Reason: "court_fine_case_3", CreatedAt: 1000,
	}
	if err := j.AppendTransaction(tx); err != nil {
		t.Fatal(err)
	}
	if err := j.AppendAudit(store.AuditEntry{Actor: 9, Action: "verdict", Detail: "case 3", CreatedAt: 1001}); err != nil {
		t.Fatal(err)
	}

	txs, err := j.RecentTransactions(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0] != tx {
		t.Errorf("transactions = %+v", txs)
	}

	audit, err := j.RecentAudit(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(audit) != 1 || audit[0].Action != "verdict" {
		t.Errorf("audit = %+v", audit)
	}
}
