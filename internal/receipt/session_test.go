package receipt

import (
	"errors"
	"reflect"
	"testing"

	"github.com/praneelbora/expensease/internal/calculator"
	"github.com/praneelbora/expensease/internal/money"
)

func sampleParse() ParsedReceipt {
	return ParsedReceipt{
		Items: []ParsedItem{
			{Name: "Paneer Tikka", Amount: 60.00},
			{Name: "Garlic Naan", Amount: 40.00},
		},
		Tax:      10.00,
		Currency: "INR",
		Merchant: "Spice Route",
	}
}

func TestSessionInterleavingsConverge(t *testing.T) {
	// Parse result first, then participants.
	m1 := NewManager()
	id1 := m1.Begin()
	if err := m1.AttachParseResult(id1, sampleParse()); err != nil {
		t.Fatalf("AttachParseResult: %v", err)
	}
	if got := m1.Current().State(); got != StateParsing {
		t.Errorf("after parse only, state = %s, want %s", got, StateParsing)
	}
	if err := m1.SetParticipants(id1, []string{"alice", "bob"}); err != nil {
		t.Fatalf("SetParticipants: %v", err)
	}

	// Participants first, then parse result.
	m2 := NewManager()
	id2 := m2.Begin()
	if err := m2.SetParticipants(id2, []string{"alice", "bob"}); err != nil {
		t.Fatalf("SetParticipants: %v", err)
	}
	if got := m2.Current().State(); got != StateParsing {
		t.Errorf("after participants only, state = %s, want %s", got, StateParsing)
	}
	if err := m2.AttachParseResult(id2, sampleParse()); err != nil {
		t.Fatalf("AttachParseResult: %v", err)
	}

	for _, m := range []*Manager{m1, m2} {
		if got := m.Current().State(); got != StateAssigning {
			t.Fatalf("state = %s, want %s", got, StateAssigning)
		}
	}

	// Both orders produce identical splits.
	payers := map[string]calculator.PayerInput{"alice": {Paying: true}}
	total := money.New(11000, "INR")

	var results [][]int64
	for _, tc := range []struct {
		m  *Manager
		id uint64
	}{{m1, id1}, {m2, id2}} {
		if err := tc.m.AssignItem(tc.id, 0, []string{"alice"}); err != nil {
			t.Fatalf("AssignItem: %v", err)
		}
		if err := tc.m.AssignItem(tc.id, 1, []string{"bob"}); err != nil {
			t.Fatalf("AssignItem: %v", err)
		}
		rows, err := tc.m.Finalize(tc.id, calculator.ExtrasProportional, payers, total)
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		var owes []int64
		for _, r := range rows {
			owes = append(owes, r.OweAmount.Amount)
		}
		results = append(results, owes)
	}
	if !reflect.DeepEqual(results[0], results[1]) {
		t.Errorf("interleavings diverged: %v vs %v", results[0], results[1])
	}
	// alice: 6000 items + 600 proportional tax
	if results[0][0] != 6600 {
		t.Errorf("alice owes %d, want 6600", results[0][0])
	}
}

func TestStaleParseResultDiscarded(t *testing.T) {
	m := NewManager()
	first := m.Begin()

	// User re-chooses the image before the first parse returns.
	second := m.Begin()

	err := m.AttachParseResult(first, sampleParse())
	if !errors.Is(err, ErrStaleSession) {
		t.Fatalf("stale attach error = %v, want ErrStaleSession", err)
	}
	if m.Current().parsed {
		t.Error("stale parse result mutated the current session")
	}

	if err := m.AttachParseResult(second, sampleParse()); err != nil {
		t.Fatalf("current attach failed: %v", err)
	}
}

func TestSessionIDsIncrease(t *testing.T) {
	m := NewManager()
	a := m.Begin()
	b := m.Begin()
	c := m.Begin()
	if !(a < b && b < c) {
		t.Errorf("session ids not monotonically increasing: %d, %d, %d", a, b, c)
	}
}

func TestFinalizedSessionIsImmutable(t *testing.T) {
	m := NewManager()
	id := m.Begin()
	if err := m.AttachParseResult(id, sampleParse()); err != nil {
		t.Fatal(err)
	}
	if err := m.SetParticipants(id, []string{"alice", "bob"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AssignItem(id, 0, []string{"alice"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AssignItem(id, 1, []string{"bob"}); err != nil {
		t.Fatal(err)
	}

	payers := map[string]calculator.PayerInput{"bob": {Paying: true}}
	rows, err := m.Finalize(id, calculator.ExtrasEqual, payers, money.New(11000, "INR"))
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := m.Current().State(); got != StateFinalized {
		t.Errorf("state = %s, want %s", got, StateFinalized)
	}

	if err := m.SetParticipants(id, []string{"alice"}); !errors.Is(err, ErrFinalized) {
		t.Errorf("mutation after finalize error = %v, want ErrFinalized", err)
	}
	if _, err := m.Finalize(id, calculator.ExtrasEqual, payers, money.New(11000, "INR")); !errors.Is(err, ErrFinalized) {
		t.Errorf("double finalize error = %v, want ErrFinalized", err)
	}
}

func TestFinalizeRequiresParseAndParticipants(t *testing.T) {
	m := NewManager()
	id := m.Begin()
	if err := m.SetParticipants(id, []string{"alice"}); err != nil {
		t.Fatal(err)
	}
	_, err := m.Finalize(id, calculator.ExtrasEqual, nil, money.New(100, "INR"))
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("Finalize error = %v, want ErrNotReady", err)
	}
}
