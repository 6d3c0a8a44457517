package calculator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/money"
)

func inr(amount int64) money.Money { return money.New(amount, "INR") }

func oweByID(rows []models.SplitRow) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.Owing {
			out[r.FriendID] = r.OweAmount.Amount
		}
	}
	return out
}

func payByID(rows []models.SplitRow) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.Paying {
			out[r.FriendID] = r.PayAmount.Amount
		}
	}
	return out
}

func TestBuildSplit(t *testing.T) {
	tests := []struct {
		name         string
		input        SplitInput
		wantErr      error
		validateFunc func(t *testing.T, rows []models.SplitRow)
	}{
		{
			name: "three-way equal split normalizes to grand total",
			input: SplitInput{
				Participants: []string{"alice", "bob", "chitra"},
				Payers:       map[string]PayerInput{"alice": {Paying: true}},
				GrandTotal:   inr(10000),
			},
			validateFunc: func(t *testing.T, rows []models.SplitRow) {
				owe := oweByID(rows)
				want := map[string]int64{"alice": 3333, "bob": 3333, "chitra": 3334}
				if !reflect.DeepEqual(owe, want) {
					t.Errorf("owe amounts = %v, want %v", owe, want)
				}
				pay := payByID(rows)
				if pay["alice"] != 10000 {
					t.Errorf("single payer pay = %d, want 10000", pay["alice"])
				}
			},
		},
		{
			name: "itemized split with proportional tax",
			input: SplitInput{
				Items: []models.LineItem{
					{Name: "Thali", Amount: inr(6000), Consumers: []string{"alice"}},
					{Name: "Dosa", Amount: inr(4000), Consumers: []string{"bob"}},
				},
				Extras:       ExtrasTotals{Tax: inr(1000)},
				ExtraMode:    ExtrasProportional,
				Participants: []string{"alice", "bob"},
				Payers:       map[string]PayerInput{"alice": {Paying: true}},
				GrandTotal:   inr(11000),
			},
			validateFunc: func(t *testing.T, rows []models.SplitRow) {
				owe := oweByID(rows)
				// alice: 6000 items + 600 tax, bob: 4000 + 400
				want := map[string]int64{"alice": 6600, "bob": 4400}
				if !reflect.DeepEqual(owe, want) {
					t.Errorf("owe amounts = %v, want %v", owe, want)
				}
			},
		},
		{
			name: "itemized split with equal tax",
			input: SplitInput{
				Items: []models.LineItem{
					{Name: "Thali", Amount: inr(6000), Consumers: []string{"alice"}},
					{Name: "Dosa", Amount: inr(4000), Consumers: []string{"bob"}},
				},
				Extras:       ExtrasTotals{Tax: inr(1000)},
				ExtraMode:    ExtrasEqual,
				Participants: []string{"alice", "bob"},
				Payers:       map[string]PayerInput{"bob": {Paying: true}},
				GrandTotal:   inr(11000),
			},
			validateFunc: func(t *testing.T, rows []models.SplitRow) {
				owe := oweByID(rows)
				want := map[string]int64{"alice": 6500, "bob": 4500}
				if !reflect.DeepEqual(owe, want) {
					t.Errorf("owe amounts = %v, want %v", owe, want)
				}
			},
		},
		{
			name: "shared item drift lands on last participant",
			input: SplitInput{
				Items: []models.LineItem{
					// 100 / 3 floors to 33 per consumer; the lost cent is
					// restored by normalization on the last participant.
					{Name: "Chai", Amount: inr(100), Consumers: []string{"alice", "bob", "chitra"}},
				},
				Participants: []string{"alice", "bob", "chitra"},
				Payers:       map[string]PayerInput{"alice": {Paying: true}},
				GrandTotal:   inr(100),
			},
			validateFunc: func(t *testing.T, rows []models.SplitRow) {
				owe := oweByID(rows)
				want := map[string]int64{"alice": 33, "bob": 33, "chitra": 34}
				if !reflect.DeepEqual(owe, want) {
					t.Errorf("owe amounts = %v, want %v", owe, want)
				}
			},
		},
		{
			name: "multiple payers with explicit amounts",
			input: SplitInput{
				Participants: []string{"alice", "bob"},
				Payers: map[string]PayerInput{
					"alice": {Paying: true, Amount: ptr(inr(7000))},
					"bob":   {Paying: true, Amount: ptr(inr(3000))},
				},
				GrandTotal: inr(10000),
			},
			validateFunc: func(t *testing.T, rows []models.SplitRow) {
				pay := payByID(rows)
				want := map[string]int64{"alice": 7000, "bob": 3000}
				if !reflect.DeepEqual(pay, want) {
					t.Errorf("pay amounts = %v, want %v", pay, want)
				}
			},
		},
		{
			name: "multiple payers off by one minor unit folds into last payer",
			input: SplitInput{
				Participants: []string{"alice", "bob"},
				Payers: map[string]PayerInput{
					"alice": {Paying: true, Amount: ptr(inr(6999))},
					"bob":   {Paying: true, Amount: ptr(inr(3000))},
				},
				GrandTotal: inr(10000),
			},
			validateFunc: func(t *testing.T, rows []models.SplitRow) {
				pay := payByID(rows)
				if pay["alice"]+pay["bob"] != 10000 {
					t.Errorf("pay amounts sum to %d, want 10000", pay["alice"]+pay["bob"])
				}
				if pay["bob"] != 3001 {
					t.Errorf("last payer = %d, want 3001", pay["bob"])
				}
			},
		},
		{
			name: "multiple payers mismatch beyond tolerance",
			input: SplitInput{
				Participants: []string{"alice", "bob"},
				Payers: map[string]PayerInput{
					"alice": {Paying: true, Amount: ptr(inr(5000))},
					"bob":   {Paying: true, Amount: ptr(inr(3000))},
				},
				GrandTotal: inr(10000),
			},
			wantErr: ErrPaidAmountMismatch,
		},
		{
			name: "item without consumers blocks the split",
			input: SplitInput{
				Items: []models.LineItem{
					{Name: "Orphan", Amount: inr(500)},
				},
				Participants: []string{"alice"},
				Payers:       map[string]PayerInput{"alice": {Paying: true}},
				GrandTotal:   inr(500),
			},
			wantErr: ErrUnassignedItem,
		},
		{
			name: "payer with several methods must pick one",
			input: SplitInput{
				Participants: []string{"alice", "bob"},
				Payers: map[string]PayerInput{
					"alice": {Paying: true, MethodCount: 3},
				},
				GrandTotal: inr(1000),
			},
			wantErr: ErrPaymentMethodRequired,
		},
		{
			name: "no participants",
			input: SplitInput{
				GrandTotal: inr(1000),
			},
			wantErr: ErrNoParticipants,
		},
		{
			name: "item currency must match expense currency",
			input: SplitInput{
				Items: []models.LineItem{
					{Name: "Coffee", Amount: money.New(400, "USD"), Consumers: []string{"alice"}},
				},
				Participants: []string{"alice"},
				Payers:       map[string]PayerInput{"alice": {Paying: true}},
				GrandTotal:   inr(400),
			},
			wantErr: ErrCurrencyMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := BuildSplit(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("BuildSplit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildSplit() unexpected error: %v", err)
			}

			// Conservation: owe amounts sum exactly to the grand total.
			var oweSum, paySum int64
			var payers int
			for _, r := range rows {
				if r.Owing {
					oweSum += r.OweAmount.Amount
				}
				if r.Paying {
					paySum += r.PayAmount.Amount
					payers++
				}
			}
			if oweSum != tt.input.GrandTotal.Amount {
				t.Errorf("owe amounts sum to %d, want %d", oweSum, tt.input.GrandTotal.Amount)
			}
			if payers > 0 && paySum != tt.input.GrandTotal.Amount {
				t.Errorf("pay amounts sum to %d, want %d", paySum, tt.input.GrandTotal.Amount)
			}

			if tt.validateFunc != nil {
				tt.validateFunc(t, rows)
			}
		})
	}
}

func TestBuildSplitIdempotent(t *testing.T) {
	input := SplitInput{
		Items: []models.LineItem{
			{Name: "Biryani", Amount: inr(4500), Consumers: []string{"alice", "bob"}},
			{Name: "Raita", Amount: inr(700), Consumers: []string{"bob", "chitra"}},
			{Name: "Lassi", Amount: inr(901), Consumers: []string{"alice", "bob", "chitra"}},
		},
		Extras:       ExtrasTotals{Tax: inr(305), Tip: inr(200)},
		ExtraMode:    ExtrasProportional,
		Participants: []string{"alice", "bob", "chitra"},
		Payers: map[string]PayerInput{
			"alice": {Paying: true, Amount: ptr(inr(3303))},
			"bob":   {Paying: true, Amount: ptr(inr(3303))},
		},
		GrandTotal: inr(6606),
	}

	first, err := BuildSplit(input)
	if err != nil {
		t.Fatalf("BuildSplit() error: %v", err)
	}
	second, err := BuildSplit(input)
	if err != nil {
		t.Fatalf("BuildSplit() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated BuildSplit differs:\nfirst  %v\nsecond %v", first, second)
	}
}

func ptr(m money.Money) *money.Money { return &m }
