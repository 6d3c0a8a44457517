// Package receipt models the scan-to-expense flow: an image is chosen and
// sent to the external OCR service while the user picks participants; both
// results merge into one split session in whichever order they arrive.
package receipt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/praneelbora/expensease/internal/calculator"
	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/money"
)

// State is the derived lifecycle stage of a scan session.
type State string

const (
	// StateChoosing: a session exists but no image has been submitted.
	StateChoosing State = "choosing"
	// StateParsing: the image is with the OCR service; participant
	// selection may proceed in parallel.
	StateParsing State = "parsing"
	// StateAssigning: parse result and participants are both available;
	// items and totals can be assigned.
	StateAssigning State = "assigning"
	// StateFinalized: the split is saved and immutable.
	StateFinalized State = "finalized"
)

var (
	// ErrStaleSession is returned when a parse result arrives for a session
	// that has been superseded by re-choosing an image.
	ErrStaleSession = errors.New("parse result for superseded session")

	// ErrFinalized is returned on any mutation after Finalize.
	ErrFinalized = errors.New("session already finalized")

	// ErrNotReady is returned when Finalize is called before both the parse
	// result and the participant selection are in.
	ErrNotReady = errors.New("session missing parse result or participants")
)

// ParsedItem is one line recognized by the OCR service.
type ParsedItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ParsedReceipt is the structured output of the external OCR service. The
// engine consumes this shape as-is; how it is produced is not its concern.
type ParsedReceipt struct {
	Items                []ParsedItem `json:"items"`
	Tax                  float64      `json:"tax"`
	Tip                  float64      `json:"tip"`
	ServiceCharge        float64      `json:"serviceCharge"`
	ServiceChargePercent float64      `json:"serviceChargePercent"`
	Currency             string       `json:"currency"`
	Merchant             string       `json:"merchant"`
	Date                 time.Time    `json:"date"`
}

// Session is one in-progress scan-to-expense flow. Sessions are mutable
// until finalized and guarded by the owning Manager's lock.
type Session struct {
	ID           uint64
	Currency     string
	Merchant     string
	Date         time.Time
	Items        []models.LineItem
	Extras       calculator.ExtrasTotals
	Participants []string

	parsed    bool
	finalized bool
	rows      []models.SplitRow
}

// State derives the session's lifecycle stage from what has arrived so far.
func (s *Session) State() State {
	switch {
	case s.finalized:
		return StateFinalized
	case s.parsed && len(s.Participants) > 0:
		return StateAssigning
	case s.parsed || len(s.Participants) > 0:
		return StateParsing
	default:
		return StateChoosing
	}
}

// Rows returns the finalized split rows, nil before finalization.
func (s *Session) Rows() []models.SplitRow { return s.rows }

// Manager tracks the current scan session. Re-choosing an image starts a
// fresh session with a higher id; late OCR results carrying an older id are
// rejected so a superseded parse can never leak into the current flow.
type Manager struct {
	mu      sync.Mutex
	nextID  uint64
	current *Session
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{}
}

// Begin starts a new scan session, superseding any in-flight one, and
// returns its id.
func (m *Manager) Begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.current = &Session{ID: m.nextID}
	return m.nextID
}

// Current returns the active session, or nil if Begin was never called.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// AttachParseResult merges an OCR result into the session it was requested
// for. Results for superseded sessions return ErrStaleSession and are
// discarded. Amounts are converted to minor units up front so everything
// downstream stays integer.
func (m *Manager) AttachParseResult(sessionID uint64, parsed ParsedReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current
	if s == nil || s.ID != sessionID {
		return fmt.Errorf("%w: got %d, current is %d", ErrStaleSession, sessionID, m.currentID())
	}
	if s.finalized {
		return ErrFinalized
	}

	currency := parsed.Currency
	items := make([]models.LineItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		amt, err := money.FromDecimal(it.Amount, currency)
		if err != nil {
			return fmt.Errorf("item %q: %w", it.Name, err)
		}
		items = append(items, models.LineItem{Name: it.Name, Amount: amt})
	}

	tax, err := money.FromDecimal(parsed.Tax, currency)
	if err != nil {
		return fmt.Errorf("tax: %w", err)
	}
	tip, err := money.FromDecimal(parsed.Tip, currency)
	if err != nil {
		return fmt.Errorf("tip: %w", err)
	}
	service, err := money.FromDecimal(parsed.ServiceCharge, currency)
	if err != nil {
		return fmt.Errorf("service charge: %w", err)
	}

	s.Currency = currency
	s.Merchant = parsed.Merchant
	s.Date = parsed.Date
	s.Items = items
	s.Extras = calculator.ExtrasTotals{
		Tax:            tax,
		Tip:            tip,
		ServiceCharge:  service,
		ServicePercent: parsed.ServiceChargePercent,
	}
	s.parsed = true
	return nil
}

// SetParticipants records the selected participants. Valid before or after
// the parse result arrives; both orders converge to the same assigning
// state.
func (m *Manager) SetParticipants(sessionID uint64, participants []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current
	if s == nil || s.ID != sessionID {
		return fmt.Errorf("%w: got %d, current is %d", ErrStaleSession, sessionID, m.currentID())
	}
	if s.finalized {
		return ErrFinalized
	}
	s.Participants = append([]string(nil), participants...)
	return nil
}

// AssignItem sets the consumers for one parsed item by index.
func (m *Manager) AssignItem(sessionID uint64, itemIndex int, consumers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current
	if s == nil || s.ID != sessionID {
		return fmt.Errorf("%w: got %d, current is %d", ErrStaleSession, sessionID, m.currentID())
	}
	if s.finalized {
		return ErrFinalized
	}
	if itemIndex < 0 || itemIndex >= len(s.Items) {
		return fmt.Errorf("item index %d out of range", itemIndex)
	}
	s.Items[itemIndex].Consumers = append([]string(nil), consumers...)
	return nil
}

// Finalize builds the split from the assembled session and freezes it.
// Requires both the parse result and the participant selection; every item
// must have consumers and payers must validate, otherwise the underlying
// calculator error is returned and the session stays editable.
func (m *Manager) Finalize(sessionID uint64, extraMode calculator.ExtraSplitMode, payers map[string]calculator.PayerInput, grandTotal money.Money) ([]models.SplitRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current
	if s == nil || s.ID != sessionID {
		return nil, fmt.Errorf("%w: got %d, current is %d", ErrStaleSession, sessionID, m.currentID())
	}
	if s.finalized {
		return nil, ErrFinalized
	}
	if s.State() != StateAssigning {
		return nil, ErrNotReady
	}

	rows, err := calculator.BuildSplit(calculator.SplitInput{
		Items:        s.Items,
		Extras:       s.Extras,
		ExtraMode:    extraMode,
		Participants: s.Participants,
		Payers:       payers,
		GrandTotal:   grandTotal,
	})
	if err != nil {
		return nil, err
	}

	s.rows = rows
	s.finalized = true
	return rows, nil
}

func (m *Manager) currentID() uint64 {
	if m.current == nil {
		return 0
	}
	return m.current.ID
}
