package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestSetCostRejectsOutOfRange(t *testing.T) {
	t.Cleanup(func() { cost = DefaultCost })

	for _, c := range []int{0, bcrypt.MinCost - 1, bcrypt.MaxCost + 1} {
		if err := SetCost(c); err == nil {
			t.Fatalf("expected cost %d to be rejected", c)
		}
	}
	if cost != DefaultCost {
		t.Fatalf("rejected cost changed the work factor to %d", cost)
	}
}

func TestHashUsesConfiguredCost(t *testing.T) {
	t.Cleanup(func() { cost = DefaultCost })
	if err := SetCost(bcrypt.MinCost); err != nil {
		t.Fatalf("set cost: %v", err)
	}

	hash, err := Hash("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	got, err := bcrypt.Cost([]byte(hash))
	if err != nil || got != bcrypt.MinCost {
		t.Fatalf("expected cost %d, got %d (%v)", bcrypt.MinCost, got, err)
	}
	if !Verify("hunter22", hash) || Verify("hunter23", hash) {
		t.Fatal("verify mismatch")
	}
}
