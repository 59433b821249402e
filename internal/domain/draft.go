package domain

// DraftStep is the position of a user inside the event creation flow.
type DraftStep int

const (
	StepNone DraftStep = iota
	StepTitle
	StepDescription
	StepDateTime
	StepLocation
	StepComplete
	StepCancelled
)

// DraftSteps is the number of input steps shown to the user ("(n/4)").
const DraftSteps = 4

func (s DraftStep) String() string {
	switch s {
	case StepTitle:
		return "title"
	case StepDescription:
		return "description"
	case StepDateTime:
		return "datetime"
	case StepLocation:
		return "location"
	case StepComplete:
		return "complete"
	case StepCancelled:
		return "cancelled"
	}
	return "none"
}

// Terminal reports whether no further input is expected.
func (s DraftStep) Terminal() bool {
	return s == StepComplete || s == StepCancelled || s == StepNone
}

// Skippable reports whether the step accepts an explicit skip.
func (s DraftStep) Skippable() bool {
	return s == StepDescription || s == StepLocation
}

// Next returns the step following s.
func (s DraftStep) Next() DraftStep {
	switch s {
	case StepTitle:
		return StepDescription
	case StepDescription:
		return StepDateTime
	case StepDateTime:
		return StepLocation
	case StepLocation:
		return StepComplete
	}
	return s
}
