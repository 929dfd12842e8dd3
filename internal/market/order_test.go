package market

import (
	"testing"

	"github.com/talgya/villagesim/internal/money"
)

func TestRemaining(t *testing.T) {
	o := &Order{Quantity: money.FromInt(1)}
	if !o.Remaining() {
		t.Fatalf("expected positive quantity to remain")
	}
	o.Quantity = money.Zero
	if o.Remaining() {
		t.Fatalf("expected zero quantity to not remain")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	o := &Order{Quantity: money.FromInt(5)}
	cp := o.Clone()
	cp.Quantity = money.FromInt(1)
	if o.Quantity.Equal(cp.Quantity) {
		t.Fatalf("expected clone mutation not to affect the original")
	}
}
