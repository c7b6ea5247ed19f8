package changespec

import "testing"

func TestIsEligibleWithoutParent(t *testing.T) {
	c := ChangeSpec{Name: "a", Status: StatusMailed}
	if !IsEligible(c, nil) {
		t.Fatal("expected a changespec without a parent to be eligible")
	}
}

func TestIsEligibleRequiresSubmittedParent(t *testing.T) {
	for _, parentStatus := range ValidStatuses() {
		parent := ChangeSpec{Name: "parent", Status: parentStatus}
		child := ChangeSpec{Name: "child", Parent: "parent", Status: StatusMailed}
		all := []ChangeSpec{parent, child}

		want := parentStatus == StatusSubmitted
		if got := IsEligible(child, all); got != want {
			t.Fatalf("parent %s: IsEligible = %v, want %v", parentStatus, got, want)
		}
		if got := NewIndex(all).IsEligible(child); got != want {
			t.Fatalf("parent %s: Index.IsEligible = %v, want %v", parentStatus, got, want)
		}
	}
}

func TestIsEligibleFailsClosedOnMissingParent(t *testing.T) {
	child := ChangeSpec{Name: "child", Parent: "gone", Status: StatusMailed}
	all := []ChangeSpec{child, {Name: "other", Status: StatusSubmitted}}

	if IsEligible(child, all) {
		t.Fatal("expected dangling parent to be ineligible")
	}
	if NewIndex(all).IsEligible(child) {
		t.Fatal("expected dangling parent to be ineligible in the index")
	}
}

func TestIndexParent(t *testing.T) {
	all := []ChangeSpec{
		{Name: "a", Status: StatusSubmitted},
		{Name: "b", Parent: "a", Status: StatusMailed},
	}
	index := NewIndex(all)

	parent, ok := index.Parent(all[1])
	if !ok || parent.Name != "a" {
		t.Fatalf("expected parent a, got %+v (ok=%v)", parent, ok)
	}
	if _, ok := index.Parent(all[0]); ok {
		t.Fatal("expected no parent for a")
	}
}
