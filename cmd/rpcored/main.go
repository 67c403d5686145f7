// Command rpcored runs the role-play policy core: zone rules, raid
// authorization, contracts, court, licenses, and the enforcement sweeps.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Shkiper2006/RustRP/internal/api"
	"github.com/Shkiper2006/RustRP/internal/config"
	"github.com/Shkiper2006/RustRP/internal/contracts"
	"github.com/Shkiper2006/RustRP/internal/court"
	"github.com/Shkiper2006/RustRP/internal/economy"
	"github.com/Shkiper2006/RustRP/internal/enforce"
	"github.com/Shkiper2006/RustRP/internal/engine"
	"github.com/Shkiper2006/RustRP/internal/faction"
	"github.com/Shkiper2006/RustRP/internal/license"
	"github.com/Shkiper2006/RustRP/internal/notify"
	"github.com/Shkiper2006/RustRP/internal/persistence"
	"github.com/Shkiper2006/RustRP/internal/policy"
	"github.com/Shkiper2006/RustRP/internal/raid"
	"github.com/Shkiper2006/RustRP/internal/roles"
	"github.com/Shkiper2006/RustRP/internal/store"
	"github.com/Shkiper2006/RustRP/internal/zones"
)

// offlineWorld is the standalone world adapter: no game server attached, so
// nobody is reachable and teleports are no-ops. The production build swaps
// in the game-side bridge.
type offlineWorld struct{}

func (offlineWorld) Position(store.PlayerID) (zones.Position, bool) { return zones.Position{}, false }
func (offlineWorld) Teleport(store.PlayerID, zones.Position)        {}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfgPath := "rpcore.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg := config.Load(cfgPath)

	// ── Persistence ───────────────────────────────────────────────────
	snaps, err := persistence.NewSnapshots(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open snapshot dir", "error", err)
		os.Exit(1)
	}
	journal, err := persistence.OpenJournal(cfg.JournalPath)
	if err != nil {
		slog.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()
	slog.Info("persistence ready", "dir", cfg.DataDir, "journal", cfg.JournalPath)

	// ── State ─────────────────────────────────────────────────────────
	players := store.New()
	snaps.Load("profiles", players)

	balances := economy.NewMemoryBalances()
	snaps.Load("balances", balances)

	ledger := economy.NewLedger(balances, journal)
	snaps.Load("treasury", ledger.Treasury)

	factions := faction.NewRegistry(players)
	snaps.Load("factions", factions)

	wars := faction.NewWarRegistry()
	var warList []*faction.War
	snaps.Load("wars", &warList)
	wars.Restore(warList)

	resolver := cfg.BuildResolver()
	snaps.Load("zones", &resolver.Zones)

	notifier := notify.LogNotifier{}

	civic := economy.NewCivic(cfg.Civic, ledger, players, notifier)
	licenses := license.NewRegistry(cfg.Licenses, players, ledger, notifier)

	world := offlineWorld{}
	loop := enforce.NewLoop(cfg.Enforce, players, resolver, world, notifier, journal)

	isAdmin := func(p store.PlayerID) bool {
		prof, ok := players.Lookup(p)
		return ok && prof.HasRole("admin")
	}

	manager := court.NewManager(players, ledger, licenses, notifier, journal, loop)
	snaps.Load("cases", manager)

	escrow := contracts.NewEscrow(ledger, manager, notifier, isAdmin)
	snaps.Load("contracts", escrow)

	raidEngine := raid.NewEngine(cfg.Raid, players, wars, manager, escrow)
	gate := policy.NewGate(resolver, raidEngine, licenses)
	roleTable := roles.NewRegistry(cfg.Roles, players)

	slog.Info("state loaded",
		"profiles", len(players.Players),
		"factions", len(factions.Factions),
		"contracts", len(escrow.Contracts),
		"cases", len(manager.Cases),
		"wars", len(wars.Wars),
		"zones", len(resolver.Zones),
	)

	// ── Scheduler ─────────────────────────────────────────────────────
	var mu sync.Mutex
	sched := engine.NewScheduler(&mu)

	save := func() {
		saveAll(snaps, players, balances, ledger, factions, wars, resolver, manager, escrow)
	}

	sched.Every(time.Duration(cfg.FastSweepSeconds)*time.Second, "fast_sweep", func() {
		loop.Sweep()
		licenses.ExpireTick()
		save()
	})
	sched.Every(time.Duration(cfg.TaxSweepSeconds)*time.Second, "business_tax", func() {
		civic.ChargeWeeklyTax()
	})

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("RPCORE_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Listen:    cfg.Listen,
		AdminKey:  cfg.AdminKey,
		Mu:        &mu,
		Players:   players,
		Resolver:  resolver,
		Ledger:    ledger,
		Escrow:    escrow,
		Court:     manager,
		Wars:      wars,
		Gate:      gate,
		Roles:     roleTable,
		StartedAt: time.Now(),
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		sched.Stop()
	}()

	fmt.Printf("rpcore running: %d profiles, %d zones. API on %s (Ctrl+C to stop)\n",
		len(players.Players), len(resolver.Zones), cfg.Listen)

	sched.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	mu.Lock()
	save()
	mu.Unlock()

	fmt.Println("rpcore stopped. State saved.")
}

// saveAll writes every collection. Failures are logged per collection; the
// in-memory state stays authoritative until the next successful write.
func saveAll(
	snaps *persistence.Snapshots,
	players *store.Store,
	balances *economy.MemoryBalances,
	ledger *economy.Ledger,
	factions *faction.Registry,
	wars *faction.WarRegistry,
	resolver *zones.Resolver,
	manager *court.Manager,
	escrow *contracts.Escrow,
) {
	collections := map[string]any{
		"profiles":  players,
		"balances":  balances,
		"treasury":  ledger.Treasury,
		"factions":  factions,
		"wars":      wars.Snapshot(),
		"zones":     resolver.Zones,
		"cases":     manager,
		"contracts": escrow,
	}
	for name, v := range collections {
		if err := snaps.Save(name, v); err != nil {
			slog.Error("snapshot save failed", "collection", name, "error", err)
		}
	}
}
