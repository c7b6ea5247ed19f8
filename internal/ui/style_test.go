package ui

import (
	"testing"

	"github.com/amonks/changespec/changespec"
)

func TestStatusLabelPlainWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	for _, status := range changespec.ValidStatuses() {
		if got := StatusLabel(status); got != status.DisplayName() {
			t.Fatalf("expected %q, got %q", status.DisplayName(), got)
		}
	}
}

func TestEveryStatusHasColor(t *testing.T) {
	for _, status := range changespec.ValidStatuses() {
		if _, ok := statusColors[status]; !ok {
			t.Fatalf("missing color for %s", status)
		}
	}
}
