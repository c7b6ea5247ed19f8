package changespec

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from  Status
		event Event
		want  Status
	}{
		{StatusNeedsPresubmits, PresubmitLaunchedEvent{OutputPath: "/tmp/out"}, StatusRunningPresubmits},
		{StatusRunningPresubmits, PresubmitSucceededEvent{}, StatusNeedsQA},
		{StatusRunningPresubmits, PresubmitFailedEvent{ExitCode: 2}, StatusNeedsPresubmits},
		{StatusNeedsQA, QACompletedEvent{}, StatusPreMailed},
		{StatusPreMailed, MailedEvent{}, StatusMailed},
		{StatusMailed, SubmittedEvent{}, StatusSubmitted},
		{StatusMailed, CommentsPendingEvent{}, StatusChangesRequested},
		{StatusChangesRequested, NoCommentsEvent{}, StatusMailed},
		{StatusChangesRequested, SubmittedEvent{}, StatusSubmitted},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+tc.event.String(), func(t *testing.T) {
			got, err := Transition(tc.from, tc.event)
			if err != nil {
				t.Fatalf("Transition(%s, %s): %v", tc.from, tc.event, err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}

	if rows := TransitionTable(); len(rows) != len(cases) {
		t.Fatalf("expected %d table rows, got %d", len(cases), len(rows))
	}
}

func TestTransitionRejectsUnlistedPairs(t *testing.T) {
	cases := []struct {
		from  Status
		event Event
	}{
		{StatusNeedsPresubmits, SubmittedEvent{}},
		{StatusNeedsQA, MailedEvent{}},
		{StatusPreMailed, QACompletedEvent{}},
		{StatusSubmitted, CommentsPendingEvent{}},
		{StatusSubmitted, NoCommentsEvent{}},
		{StatusMailed, NoEvent{}},
		{StatusMailed, nil},
	}

	for _, tc := range cases {
		_, err := Transition(tc.from, tc.event)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Transition(%s, %v): expected ErrInvalidTransition, got %v", tc.from, tc.event, err)
		}
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	_, err := Transition(Status("archived"), SubmittedEvent{})
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestSubmittedIsTerminal(t *testing.T) {
	for _, event := range allEvents() {
		if CanTransition(StatusSubmitted, event) {
			t.Fatalf("submitted should not move on %s", event)
		}
	}
	if !StatusSubmitted.IsTerminal() {
		t.Fatal("expected submitted to be terminal")
	}
}

func TestTransitionNeverMovesOutsideTable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := rapid.SampledFrom(ValidStatuses()).Draw(t, "from")
		event := rapid.SampledFrom(allEvents()).Draw(t, "event")

		inTable := false
		var want Status
		for _, row := range TransitionTable() {
			if row.From == from && row.Event == event.String() {
				inTable = true
				want = row.To
			}
		}

		got, err := Transition(from, event)
		if inTable {
			if err != nil {
				t.Fatalf("Transition(%s, %s): %v", from, event, err)
			}
			if got != want {
				t.Fatalf("Transition(%s, %s) = %s, want %s", from, event, got, want)
			}
			return
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Transition(%s, %s): expected ErrInvalidTransition, got %v", from, event, err)
		}
	})
}

func TestIsObservation(t *testing.T) {
	if !IsObservation(StatusMailed, NoCommentsEvent{}) {
		t.Fatal("no comments on a mailed change should be an observation")
	}
	if !IsObservation(StatusChangesRequested, CommentsPendingEvent{}) {
		t.Fatal("pending comments on a changes-requested change should be an observation")
	}
	if IsObservation(StatusMailed, CommentsPendingEvent{}) {
		t.Fatal("pending comments on a mailed change is a transition")
	}
	if IsObservation(StatusChangesRequested, SubmittedEvent{}) {
		t.Fatal("submission is never an observation")
	}
}
