package changespec

// Event is the sealed interface for observations that drive Transition.
// All event types implement the unexported isEvent method.
type Event interface {
	isEvent()

	// String names the event in errors and logs.
	String() string
}

func (NoEvent) isEvent()                 {}
func (PresubmitLaunchedEvent) isEvent()  {}
func (PresubmitSucceededEvent) isEvent() {}
func (PresubmitFailedEvent) isEvent()    {}
func (QACompletedEvent) isEvent()        {}
func (MailedEvent) isEvent()             {}
func (SubmittedEvent) isEvent()          {}
func (CommentsPendingEvent) isEvent()    {}
func (NoCommentsEvent) isEvent()         {}

// NoEvent means a check resolved nothing. It never moves a ChangeSpec.
type NoEvent struct{}

// PresubmitLaunchedEvent is produced when a presubmit is started.
type PresubmitLaunchedEvent struct {
	OutputPath string
}

// PresubmitSucceededEvent is produced when presubmit output reports exit 0.
type PresubmitSucceededEvent struct{}

// PresubmitFailedEvent is produced when presubmit output reports a failure,
// or the presubmit process vanished without reporting.
type PresubmitFailedEvent struct {
	ExitCode int
}

// QACompletedEvent is produced when the user finishes the QA workflow.
type QACompletedEvent struct{}

// MailedEvent is produced when the change has been sent for review.
type MailedEvent struct{}

// SubmittedEvent is produced when the submission check is affirmative.
type SubmittedEvent struct{}

// CommentsPendingEvent is produced when reviewers have unresolved comments.
type CommentsPendingEvent struct{}

// NoCommentsEvent is produced when the comment check comes back empty.
type NoCommentsEvent struct{}

func (NoEvent) String() string                 { return "no_event" }
func (PresubmitLaunchedEvent) String() string  { return "presubmit_launched" }
func (PresubmitSucceededEvent) String() string { return "presubmit_succeeded" }
func (PresubmitFailedEvent) String() string    { return "presubmit_failed" }
func (QACompletedEvent) String() string        { return "qa_completed" }
func (MailedEvent) String() string             { return "mailed" }
func (SubmittedEvent) String() string          { return "submitted" }
func (CommentsPendingEvent) String() string    { return "comments_pending" }
func (NoCommentsEvent) String() string         { return "no_comments" }

// IsNoEvent reports whether event carries no observation.
func IsNoEvent(event Event) bool {
	if event == nil {
		return true
	}
	_, ok := event.(NoEvent)
	return ok
}
