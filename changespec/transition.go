package changespec

import "fmt"

type transitionKey struct {
	from  Status
	event string
}

// transitions is the complete table of legal status changes.
var transitions = map[transitionKey]Status{
	{StatusNeedsPresubmits, PresubmitLaunchedEvent{}.String()}:    StatusRunningPresubmits,
	{StatusRunningPresubmits, PresubmitSucceededEvent{}.String()}: StatusNeedsQA,
	{StatusRunningPresubmits, PresubmitFailedEvent{}.String()}:    StatusNeedsPresubmits,
	{StatusNeedsQA, QACompletedEvent{}.String()}:                  StatusPreMailed,
	{StatusPreMailed, MailedEvent{}.String()}:                     StatusMailed,
	{StatusMailed, SubmittedEvent{}.String()}:                     StatusSubmitted,
	{StatusMailed, CommentsPendingEvent{}.String()}:               StatusChangesRequested,
	{StatusChangesRequested, NoCommentsEvent{}.String()}:          StatusMailed,
	{StatusChangesRequested, SubmittedEvent{}.String()}:           StatusSubmitted,
}

// Transition returns the status that current moves to on event.
//
// It fails with ErrUnknownStatus when current is not a member of the
// enumeration, and with ErrInvalidTransition when the table has no entry
// for the pair. Transition has no side effects.
func Transition(current Status, event Event) (Status, error) {
	if !current.IsValid() {
		return "", unknownStatus(current)
	}
	if event == nil {
		event = NoEvent{}
	}
	next, ok := transitions[transitionKey{from: current, event: event.String()}]
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, current)
	}
	return next, nil
}

// CanTransition reports whether the table has an entry for the pair.
func CanTransition(current Status, event Event) bool {
	_, err := Transition(current, event)
	return err == nil
}

// IsObservation reports whether event confirms current rather than moving
// it: a mailed change with no comments, or a change with comments that still
// has them.
func IsObservation(current Status, event Event) bool {
	switch event.(type) {
	case NoCommentsEvent:
		return current == StatusMailed
	case CommentsPendingEvent:
		return current == StatusChangesRequested
	default:
		return false
	}
}

// TransitionRow is one entry of the transition table.
type TransitionRow struct {
	From  Status
	Event string
	To    Status
}

// TransitionTable returns the table rows in lifecycle order.
func TransitionTable() []TransitionRow {
	rows := make([]TransitionRow, 0, len(transitions))
	for _, from := range ValidStatuses() {
		for _, event := range allEvents() {
			to, ok := transitions[transitionKey{from: from, event: event.String()}]
			if !ok {
				continue
			}
			rows = append(rows, TransitionRow{From: from, Event: event.String(), To: to})
		}
	}
	return rows
}

func allEvents() []Event {
	return []Event{
		PresubmitLaunchedEvent{},
		PresubmitSucceededEvent{},
		PresubmitFailedEvent{},
		QACompletedEvent{},
		MailedEvent{},
		SubmittedEvent{},
		CommentsPendingEvent{},
		NoCommentsEvent{},
		NoEvent{},
	}
}
