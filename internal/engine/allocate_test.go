package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/models"
)

func TestDistributeItemEqual(t *testing.T) {
	b := newBill(t, "Ara", "Bom", "Chul", "Dain")
	addNormalItem(t, b, "dinner", 39200)

	// Only Ara stays in.
	for _, pid := range []string{"pb", "pc", "pd"} {
		if _, err := ToggleShareInclude(b, "dinner", pid); err != nil {
			t.Fatalf("ToggleShareInclude(%s): %v", pid, err)
		}
	}

	warnings, err := DistributeItem(b, "dinner")
	if err != nil {
		t.Fatalf("DistributeItem: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}

	it := b.Item("dinner")
	if !it.Share("pa").Amount.Equal(decimal.NewFromInt(39200)) {
		t.Errorf("pa amount = %s, want 39200", it.Share("pa").Amount)
	}
	for _, pid := range []string{"pb", "pc", "pd"} {
		if !it.Share(pid).Amount.IsZero() {
			t.Errorf("%s amount = %s, want 0", pid, it.Share(pid).Amount)
		}
	}
}

func TestDistributeItemIdempotent(t *testing.T) {
	b := newBill(t, "Ara", "Bom", "Chul")
	addNormalItem(t, b, "dinner", 49000)

	if _, err := DistributeItem(b, "dinner"); err != nil {
		t.Fatal(err)
	}
	first := make(map[string]decimal.Decimal)
	for _, sh := range b.Item("dinner").Shares {
		first[sh.ParticipantID] = sh.Amount
	}

	if _, err := DistributeItem(b, "dinner"); err != nil {
		t.Fatal(err)
	}
	for _, sh := range b.Item("dinner").Shares {
		if !sh.Amount.Equal(first[sh.ParticipantID]) {
			t.Errorf("%s changed on second run: %s -> %s", sh.ParticipantID, first[sh.ParticipantID], sh.Amount)
		}
	}
}

func TestDistributeItemUnallocatedWarning(t *testing.T) {
	b := newBill(t, "Ara", "Bom")
	addNormalItem(t, b, "dinner", 10000)
	for _, pid := range []string{"pa", "pb"} {
		if _, err := ToggleShareInclude(b, "dinner", pid); err != nil {
			t.Fatal(err)
		}
	}

	warnings, err := DistributeItem(b, "dinner")
	if err != nil {
		t.Fatalf("DistributeItem: %v (unallocated is a warning, not an error)", err)
	}
	if len(warnings) != 1 || warnings[0].Kind != WarnUnallocated {
		t.Fatalf("warnings = %v, want one UNALLOCATED", warnings)
	}
}

func TestToggleShareIncludeZeroesAmount(t *testing.T) {
	b := newBill(t, "Ara", "Bom")
	addNormalItem(t, b, "dinner", 10000)
	if _, err := DistributeItem(b, "dinner"); err != nil {
		t.Fatal(err)
	}

	if _, err := ToggleShareInclude(b, "dinner", "pb"); err != nil {
		t.Fatal(err)
	}

	it := b.Item("dinner")
	if !it.Share("pb").Amount.IsZero() {
		t.Errorf("excluded share amount = %s, want 0", it.Share("pb").Amount)
	}
	// The remaining participant absorbs the whole fee on recompute.
	if !it.Share("pa").Amount.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("pa amount = %s, want 10000", it.Share("pa").Amount)
	}
}

func TestLockedShareSurvivesRecompute(t *testing.T) {
	b := newBill(t, "Ara", "Bom", "Chul")
	addNormalItem(t, b, "dinner", 30000)

	if _, err := SetShareAmount(b, "dinner", "pa", decimal.NewFromInt(5000)); err != nil {
		t.Fatal(err)
	}
	if _, err := DistributeItem(b, "dinner"); err != nil {
		t.Fatal(err)
	}

	it := b.Item("dinner")
	if !it.Share("pa").Locked {
		t.Error("manual override should lock the share")
	}
	if !it.Share("pa").Amount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("locked amount = %s, want 5000", it.Share("pa").Amount)
	}
	// The fee still divides across the two unlocked shares.
	for _, pid := range []string{"pb", "pc"} {
		if !it.Share(pid).Amount.Equal(decimal.NewFromInt(15000)) {
			t.Errorf("%s amount = %s, want 15000", pid, it.Share(pid).Amount)
		}
	}
}

func TestAdjustmentDirectEntry(t *testing.T) {
	b := newBill(t, "Ara", "Bom")
	if err := AddItem(b, models.Item{ID: "discount", Name: "Coupon", Type: models.ItemSpecial, Fee: decimal.NewFromInt(-6500)}); err != nil {
		t.Fatal(err)
	}

	if _, err := SetShareAmount(b, "discount", "pa", decimal.NewFromInt(-6500)); err != nil {
		t.Fatal(err)
	}

	it := b.Item("discount")
	if !it.Share("pa").Include {
		t.Error("nonzero direct amount should derive include=true")
	}
	if it.Share("pb").Include {
		t.Error("untouched adjustment share should stay excluded")
	}

	// Zeroing the amount flips include back off.
	if _, err := SetShareAmount(b, "discount", "pa", decimal.Zero); err != nil {
		t.Fatal(err)
	}
	if it.Share("pa").Include {
		t.Error("zero direct amount should derive include=false")
	}
}

func TestToggleShareIncludeRejectsAdjustment(t *testing.T) {
	b := newBill(t, "Ara", "Bom")
	if err := AddItem(b, models.Item{ID: "discount", Name: "Coupon", Type: models.ItemSpecial}); err != nil {
		t.Fatal(err)
	}
	if _, err := SetShareAmount(b, "discount", "pa", decimal.NewFromInt(-6500)); err != nil {
		t.Fatal(err)
	}

	// Inclusion on an adjustment is derived, never toggled: a toggle
	// could leave an included share with a zero amount.
	var structural *StructuralError
	if _, err := ToggleShareInclude(b, "discount", "pb"); !errors.As(err, &structural) {
		t.Fatalf("err = %v, want StructuralError", err)
	}

	it := b.Item("discount")
	if it.Share("pb").Include {
		t.Error("rejected toggle mutated the share")
	}
	if !it.Share("pa").Include {
		t.Error("rejected toggle disturbed the entered share")
	}
}

func TestDistributeAllSkipsAdjustments(t *testing.T) {
	b := newBill(t, "Ara", "Bom")
	addNormalItem(t, b, "dinner", 10000)
	if err := AddItem(b, models.Item{ID: "carry", Name: "Carry-over", Type: models.ItemCarryOver}); err != nil {
		t.Fatal(err)
	}
	if _, err := SetShareAmount(b, "carry", "pb", decimal.NewFromInt(3000)); err != nil {
		t.Fatal(err)
	}

	if _, err := DistributeAll(b); err != nil {
		t.Fatal(err)
	}

	if !b.Item("carry").Share("pb").Amount.Equal(decimal.NewFromInt(3000)) {
		t.Error("bulk distribute touched an adjustment item")
	}
	if !b.Item("dinner").Share("pa").Amount.Equal(decimal.NewFromInt(5000)) {
		t.Error("bulk distribute skipped a NORMAL item")
	}
}

func TestUpdateItemSplitMethodRejectsAdjustment(t *testing.T) {
	b := newBill(t, "Ara", "Bom")
	if err := AddItem(b, models.Item{ID: "carry", Type: models.ItemCarryOver}); err != nil {
		t.Fatal(err)
	}
	var structural *StructuralError
	if _, err := UpdateItemSplitMethod(b, "carry", models.SplitPercent); !errors.As(err, &structural) {
		t.Fatalf("err = %v, want StructuralError", err)
	}
}

func TestMarkParticipantPaid(t *testing.T) {
	b := newBill(t, "Ara", "Bom")
	addNormalItem(t, b, "dinner", 10000)
	addNormalItem(t, b, "drinks", 4000)
	if _, err := DistributeAll(b); err != nil {
		t.Fatal(err)
	}

	if err := MarkParticipantPaid(b, "pb", true); err != nil {
		t.Fatal(err)
	}
	for i := range b.Items {
		if !b.Items[i].Share("pb").Paid {
			t.Errorf("item %s: pb not marked paid", b.Items[i].ID)
		}
		if b.Items[i].Share("pa").Paid {
			t.Errorf("item %s: pa should be untouched", b.Items[i].ID)
		}
	}

	if err := MarkParticipantPaid(b, "pb", false); err != nil {
		t.Fatal(err)
	}
	for i := range b.Items {
		if b.Items[i].Share("pb").Paid {
			t.Errorf("item %s: pb still marked paid after bulk clear", b.Items[i].ID)
		}
	}
}

func TestExclusionInvariantAfterMutationSequence(t *testing.T) {
	b := newBill(t, "Ara", "Bom", "Chul")
	addNormalItem(t, b, "dinner", 31000)
	if _, err := DistributeAll(b); err != nil {
		t.Fatal(err)
	}
	if _, err := ToggleShareInclude(b, "dinner", "pc"); err != nil {
		t.Fatal(err)
	}
	if _, err := UpdateItemFee(b, "dinner", decimal.NewFromInt(50000)); err != nil {
		t.Fatal(err)
	}

	for i := range b.Items {
		for _, sh := range b.Items[i].Shares {
			if !sh.Include && !sh.Amount.IsZero() {
				t.Errorf("excluded share %s has amount %s", sh.ParticipantID, sh.Amount)
			}
		}
	}
}
