package persistence

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Shkiper2006/RustRP/internal/economy"
	"github.com/Shkiper2006/RustRP/internal/store"
)

// Journal is the append-only SQLite trail: one row per economic transaction
// and one row per privileged police/court action. It is independent of the
// snapshot files and survives them.
type Journal struct {
	conn *sqlx.DB
}

// OpenJournal opens or creates the journal database at the given path.
func OpenJournal(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		from_account TEXT NOT NULL,
		to_account TEXT NOT NULL,
		amount INTEGER NOT NULL,
		reason TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor INTEGER NOT NULL,
		action TEXT NOT NULL,
		detail TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_created ON audit(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit(actor);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// AppendTransaction writes one economic transfer.
func (j *Journal) AppendTransaction(tx economy.Transaction) error {
	_, err := j.conn.NamedExec(`INSERT INTO transactions
		(id, from_account, to_account, amount, reason, created_at)
		VALUES (:id, :from_account, :to_account, :amount, :reason, :created_at)`, tx)
	return err
}

// AppendAudit writes one privileged action.
func (j *Journal) AppendAudit(e store.AuditEntry) error {
	_, err := j.conn.Exec(
		"INSERT INTO audit (actor, action, detail, created_at) VALUES (?, ?, ?, ?)",
		uint64(e.Actor), e.Action, e.Detail, e.CreatedAt,
	)
	return err
}

// RecentTransactions returns the most recent N journalled transfers.
func (j *Journal) RecentTransactions(limit int) ([]economy.Transaction, error) {
	var out []economy.Transaction
	err := j.conn.Select(&out,
		`SELECT id, from_account, to_account, amount, reason, created_at
		 FROM transactions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	return out, err
}

// RecentAudit returns the most recent N privileged actions.
func (j *Journal) RecentAudit(limit int) ([]store.AuditEntry, error) {
	var out []store.AuditEntry
	err := j.conn.Select(&out,
		"SELECT actor, action, detail, created_at FROM audit ORDER BY id DESC LIMIT ?", limit)
	return out, err
}
