package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseTransactionType(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{
		"TOP_UP", "TRANSFER_IN", "TRANSFER_OUT", "RIDE_PAYMENT",
		"RIDE_EARN", "ADMIN_ADJUST", "DEPOSIT", "WITHDRAWAL",
	} {
		if _, err := ParseTransactionType(valid); err != nil {
			t.Errorf("expected %s to parse, got %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "top_up", "REFUND", "TOPUP"} {
		if _, err := ParseTransactionType(invalid); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for %q, got %v", invalid, err)
		}
	}
}

func TestTransactionSigned(t *testing.T) {
	t.Parallel()

	amount := decimal.RequireFromString("12.50")

	credit := &Transaction{Direction: Credit, Amount: amount}
	if !credit.Signed().Equal(amount) {
		t.Errorf("credit must keep its sign, got %s", credit.Signed())
	}

	debit := &Transaction{Direction: Debit, Amount: amount}
	if !debit.Signed().Equal(amount.Neg()) {
		t.Errorf("debit must negate, got %s", debit.Signed())
	}
}

func TestTransactionValidate(t *testing.T) {
	t.Parallel()

	valid := &Transaction{
		Type:      TxTopUp,
		Direction: Credit,
		Amount:    decimal.NewFromInt(10),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid entry, got %v", err)
	}

	zero := &Transaction{Type: TxTopUp, Direction: Credit, Amount: decimal.Zero}
	if err := zero.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for zero amount, got %v", err)
	}

	negative := &Transaction{Type: TxTopUp, Direction: Debit, Amount: decimal.NewFromInt(-1)}
	if err := negative.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for negative amount, got %v", err)
	}

	badDirection := &Transaction{Type: TxTopUp, Direction: "SIDEWAYS", Amount: decimal.NewFromInt(1)}
	if err := badDirection.Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for bad direction, got %v", err)
	}

	badType := &Transaction{Type: "REFUND", Direction: Credit, Amount: decimal.NewFromInt(1)}
	if err := badType.Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown type, got %v", err)
	}
}
