// Package court runs the case docket: case files, evidence, hearings,
// warrants, retaliation permits, detentions, and verdict consequences.
package court

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shkiper2006/RustRP/internal/economy"
	"github.com/Shkiper2006/RustRP/internal/notify"
	"github.com/Shkiper2006/RustRP/internal/store"
)

// Status tracks a case file through the docket.
type Status uint8

const (
	StatusOpen Status = iota
	StatusHearingScheduled
	StatusVerdict
	StatusClosed
)

var statusNames = map[Status]string{
	StatusOpen:             "OPEN",
	StatusHearingScheduled: "HEARING_SCHEDULED",
	StatusVerdict:          "VERDICT",
	StatusClosed:           "CLOSED",
}

func (s Status) String() string { return statusNames[s] }

// Evidence is one submitted evidence record.
type Evidence struct {
	AuthorID  store.PlayerID `json:"author_id"`
	Text      string         `json:"text"`
	CreatedAt int64          `json:"created_at"`
}

// Warrant authorizes the grantee to take raid/arrest action against the
// target. ExpiresAt == 0 means no expiry.
type Warrant struct {
	RequesterID store.PlayerID `json:"requester_id"`
	GranteeID   store.PlayerID `json:"grantee_id"`
	TargetID    store.PlayerID `json:"target_id"`
	ExpiresAt   int64          `json:"expires_at"`
	Reason      string         `json:"reason"`
}

// Retaliation is a self-defense permit issued outside the warrant workflow.
type Retaliation struct {
	GranteeID store.PlayerID `json:"grantee_id"`
	TargetID  store.PlayerID `json:"target_id"`
	ExpiresAt int64          `json:"expires_at"`
}

// Detention is one recorded police detention on a case.
type Detention struct {
	OfficerID store.PlayerID `json:"officer_id"`
	SuspectID store.PlayerID `json:"suspect_id"`
	Minutes   int            `json:"minutes"`
	Reason    string         `json:"reason"`
	CreatedAt int64          `json:"created_at"`
}

// LicenseBan is one license suspension imposed by a verdict.
type LicenseBan struct {
	Type    store.LicenseType `json:"type"`
	Minutes int               `json:"minutes"`
}

// Verdict is the judged outcome of a case. Immutable once attached.
type Verdict struct {
	JailMinutes    int          `json:"jail_minutes"`
	CityBanMinutes int          `json:"city_ban_minutes"`
	FineToTreasury int64        `json:"fine_to_treasury"`
	FineToVictim   int64        `json:"fine_to_victim"`
	Confiscations  []string     `json:"confiscations,omitempty"`
	LicenseBans    []LicenseBan `json:"license_bans,omitempty"`
	Notes          string       `json:"notes,omitempty"`
}

// CaseFile is one docket entry.
type CaseFile struct {
	ID            int            `json:"id"`
	ContractID    int            `json:"contract_id,omitempty"`
	SuspectID     store.PlayerID `json:"suspect_id"`
	ComplainantID store.PlayerID `json:"complainant_id"`
	JudgeID       store.PlayerID `json:"judge_id,omitempty"`
	Charges       []string       `json:"charges,omitempty"`
	Evidence      []Evidence     `json:"evidence,omitempty"`
	Status        Status         `json:"status"`
	ScheduledAt   int64          `json:"scheduled_at,omitempty"`
	Verdict       *Verdict       `json:"verdict,omitempty"`
	Applied       bool           `json:"applied,omitempty"`
	Warrant       *Warrant       `json:"warrant,omitempty"`
	Retaliation   *Retaliation   `json:"retaliation,omitempty"`
	Detentions    []Detention    `json:"detentions,omitempty"`
	CreatedAt     int64          `json:"created_at"`
}

var (
	ErrCaseNotFound   = errors.New("case not found")
	ErrCaseClosed     = errors.New("case is closed")
	ErrVerdictApplied = errors.New("verdict already applied to this case")
)

// LicenseBanner applies a license ban. Implemented by the license registry.
type LicenseBanner interface {
	Ban(player store.PlayerID, t store.LicenseType, minutes int)
}

// JailTransport relocates a convicted suspect to the jail point. SendToJail
// reports whether the suspect was reachable.
type JailTransport interface {
	SendToJail(player store.PlayerID) bool
}

// Manager runs the case docket. Only Cases and NextID are part of the
// snapshot payload; collaborators are excluded so a persisted docket never
// embeds a stale copy of the profile store or treasury.
type Manager struct {
	Cases  map[int]*CaseFile `json:"cases"`
	NextID int               `json:"next_id"`

	Players  *store.Store    `json:"-"`
	Ledger   *economy.Ledger `json:"-"`
	Licenses LicenseBanner   `json:"-"`

	jail     JailTransport
	audit    store.AuditSink
	notifier notify.Notifier
	now      func() time.Time
}

// NewManager wires the docket. jail and audit may be nil.
func NewManager(players *store.Store, ledger *economy.Ledger, licenses LicenseBanner, n notify.Notifier, audit store.AuditSink, jail JailTransport) *Manager {
	return &Manager{
		Cases:    make(map[int]*CaseFile),
		NextID:   1,
		Players:  players,
		Ledger:   ledger,
		Licenses: licenses,
		jail:     jail,
		audit:    audit,
		notifier: n,
		now:      time.Now,
	}
}

// SetClock overrides the docket clock. Tests only.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// CreateCase opens a new case file.
func (m *Manager) CreateCase(suspect, complainant store.PlayerID, charges ...string) *CaseFile {
	c := &CaseFile{
		ID:            m.NextID,
		SuspectID:     suspect,
		ComplainantID: complainant,
		Charges:       charges,
		Status:        StatusOpen,
		CreatedAt:     m.now().Unix(),
	}
	m.NextID++
	m.Cases[c.ID] = c
	m.notifier.Notify(suspect, notify.CategoryCourt, "case_opened", "case", c.ID)
	return c
}

// OpenDisputeCase opens a case for a disputed contract and returns its id.
func (m *Manager) OpenDisputeCase(contractID int, suspect, complainant store.PlayerID, charge string) int {
	c := m.CreateCase(suspect, complainant, charge)
	c.ContractID = contractID
	return c.ID
}

// AddEvidence appends an evidence record to a non-closed case.
func (m *Manager) AddEvidence(caseID int, author store.PlayerID, text string) error {
	c, err := m.open(caseID)
	if err != nil {
		return err
	}
	c.Evidence = append(c.Evidence, Evidence{
		AuthorID:  author,
		Text:      text,
		CreatedAt: m.now().Unix(),
	})
	return nil
}

// Schedule sets a hearing the given minutes from now.
func (m *Manager) Schedule(caseID int, judge store.PlayerID, minutes int) error {
	c, err := m.open(caseID)
	if err != nil {
		return err
	}
	c.JudgeID = judge
	c.ScheduledAt = m.now().Unix() + int64(minutes)*60
	c.Status = StatusHearingScheduled
	m.notifier.Notify(c.SuspectID, notify.CategoryCourt, "hearing_scheduled", "case", caseID, "at", c.ScheduledAt)
	m.notifier.Notify(c.ComplainantID, notify.CategoryCourt, "hearing_scheduled", "case", caseID, "at", c.ScheduledAt)
	return nil
}

// RecordVerdict attaches the verdict and applies its consequences exactly
// once per case: jail expiry extended from max(current, now), relocation to
// the jail point if the suspect is reachable, city-ban expiry likewise, the
// treasury fine withdrawn (failure recorded, never blocking), the victim
// fine deposited, license bans applied, and confiscations notified.
func (m *Manager) RecordVerdict(caseID int, judge store.PlayerID, v Verdict) error {
	c, err := m.open(caseID)
	if err != nil {
		return err
	}
	if c.Applied {
		return ErrVerdictApplied
	}
	c.JudgeID = judge
	c.Verdict = &v
	c.Status = StatusVerdict
	c.Applied = true

	now := m.now().Unix()
	prof := m.Players.Profile(c.SuspectID)

	if v.JailMinutes > 0 {
		prof.JailUntil = extendFrom(prof.JailUntil, now, int64(v.JailMinutes)*60)
		reached := m.jail != nil && m.jail.SendToJail(c.SuspectID)
		m.notifier.Notify(c.SuspectID, notify.CategoryCourt, "jailed",
			"case", caseID, "until", prof.JailUntil, "relocated", reached)
	}
	if v.CityBanMinutes > 0 {
		prof.CityBanUntil = extendFrom(prof.CityBanUntil, now, int64(v.CityBanMinutes)*60)
		m.notifier.Notify(c.SuspectID, notify.CategoryCourt, "city_banned",
			"case", caseID, "until", prof.CityBanUntil)
	}
	if v.FineToTreasury > 0 {
		if err := m.Ledger.Withdraw(c.SuspectID, v.FineToTreasury); err != nil {
			m.record(judge, "fine_failed", fmt.Sprintf("case %d: %v", caseID, err))
		} else {
			m.Ledger.CreditTreasury(v.FineToTreasury, fmt.Sprintf("court_fine_case_%d", caseID),
				fmt.Sprintf("player:%d", uint64(c.SuspectID)))
		}
	}
	if v.FineToVictim > 0 {
		if err := m.Ledger.Transfer(c.SuspectID, c.ComplainantID, v.FineToVictim,
			fmt.Sprintf("court_restitution_case_%d", caseID)); err != nil {
			m.record(judge, "restitution_failed", fmt.Sprintf("case %d: %v", caseID, err))
		}
	}
	for _, ban := range v.LicenseBans {
		if m.Licenses != nil {
			m.Licenses.Ban(c.SuspectID, ban.Type, ban.Minutes)
		}
	}
	for _, item := range v.Confiscations {
		m.notifier.Notify(c.SuspectID, notify.CategoryCourt, "confiscated", "case", caseID, "item", item)
	}

	m.record(judge, "verdict", fmt.Sprintf("case %d: jail=%dm cityban=%dm fine=%d",
		caseID, v.JailMinutes, v.CityBanMinutes, v.FineToTreasury))
	return nil
}

// Close finishes the case.
func (m *Manager) Close(caseID int, actor store.PlayerID) error {
	c, ok := m.Cases[caseID]
	if !ok {
		return ErrCaseNotFound
	}
	c.Status = StatusClosed
	m.record(actor, "case_closed", fmt.Sprintf("case %d", caseID))
	return nil
}

// RequestWarrant attaches a warrant to the case, overwriting any prior
// warrant. A case holds at most one warrant at a time.
func (m *Manager) RequestWarrant(caseID int, requester, grantee, target store.PlayerID, minutes int, reason string) error {
	c, err := m.open(caseID)
	if err != nil {
		return err
	}
	var expires int64
	if minutes > 0 {
		expires = m.now().Unix() + int64(minutes)*60
	}
	c.Warrant = &Warrant{
		RequesterID: requester,
		GranteeID:   grantee,
		TargetID:    target,
		ExpiresAt:   expires,
		Reason:      reason,
	}
	m.record(requester, "warrant_issued", fmt.Sprintf("case %d: grantee=%d target=%d", caseID, grantee, target))
	m.notifier.Notify(grantee, notify.CategoryPolice, "warrant_granted", "case", caseID, "target", uint64(target))
	return nil
}

// GrantRetaliation attaches a time-limited retaliation permit to the case.
func (m *Manager) GrantRetaliation(caseID int, grantee, target store.PlayerID, minutes int) error {
	c, err := m.open(caseID)
	if err != nil {
		return err
	}
	var expires int64
	if minutes > 0 {
		expires = m.now().Unix() + int64(minutes)*60
	}
	c.Retaliation = &Retaliation{GranteeID: grantee, TargetID: target, ExpiresAt: expires}
	m.record(grantee, "retaliation_granted", fmt.Sprintf("case %d: target=%d", caseID, target))
	return nil
}

// RecordDetention appends a detention audit record to the case.
func (m *Manager) RecordDetention(caseID int, officer, suspect store.PlayerID, minutes int, reason string) error {
	c, ok := m.Cases[caseID]
	if !ok {
		return ErrCaseNotFound
	}
	c.Detentions = append(c.Detentions, Detention{
		OfficerID: officer,
		SuspectID: suspect,
		Minutes:   minutes,
		Reason:    reason,
		CreatedAt: m.now().Unix(),
	})
	m.record(officer, "detention", fmt.Sprintf("case %d: suspect=%d %dm %s", caseID, suspect, minutes, reason))
	return nil
}

// HasActiveWarrant reports whether any non-closed case carries an unexpired
// warrant naming the attacker as grantee and the owner as target. Expired
// warrants stay on the case but read as inactive.
func (m *Manager) HasActiveWarrant(attacker, owner store.PlayerID) bool {
	now := m.now().Unix()
	for _, c := range m.Cases {
		if c.Status == StatusClosed || c.Warrant == nil {
			continue
		}
		w := c.Warrant
		if w.GranteeID != attacker || w.TargetID != owner {
			continue
		}
		if w.ExpiresAt != 0 && w.ExpiresAt <= now {
			continue
		}
		return true
	}
	return false
}

// HasRetaliationPermit reports whether any non-closed case carries an
// unexpired retaliation grant for the attacker against the owner.
func (m *Manager) HasRetaliationPermit(attacker, owner store.PlayerID) bool {
	now := m.now().Unix()
	for _, c := range m.Cases {
		if c.Status == StatusClosed || c.Retaliation == nil {
			continue
		}
		r := c.Retaliation
		if r.GranteeID != attacker || r.TargetID != owner {
			continue
		}
		if r.ExpiresAt != 0 && r.ExpiresAt <= now {
			continue
		}
		return true
	}
	return false
}

// Get returns a case by id.
func (m *Manager) Get(caseID int) (*CaseFile, bool) {
	c, ok := m.Cases[caseID]
	return c, ok
}

func (m *Manager) open(caseID int) (*CaseFile, error) {
	c, ok := m.Cases[caseID]
	if !ok {
		return nil, ErrCaseNotFound
	}
	if c.Status == StatusClosed {
		return nil, ErrCaseClosed
	}
	return c, nil
}

func (m *Manager) record(actor store.PlayerID, action, detail string) {
	if m.audit == nil {
		return
	}
	err := m.audit.AppendAudit(store.AuditEntry{
		Actor:     actor,
		Action:    action,
		Detail:    detail,
		CreatedAt: m.now().Unix(),
	})
	if err != nil {
		slog.Warn("audit append failed", "action", action, "err", err)
	}
}

// extendFrom pushes an expiry forward by seconds, counting from whichever
// is later: the current expiry or now.
func extendFrom(current, now, seconds int64) int64 {
	base := current
	if now > base {
		base = now
	}
	return base + seconds
}
