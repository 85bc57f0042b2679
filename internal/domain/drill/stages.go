// Package drill defines the wizard stage machine for drill creation.
package drill

// Stage is one of the three linear wizard states. The flow is
// TargetInfo -> EmailPreview -> Delivery, with an implicit "complete" that
// auto-resets to TargetInfo after a successful send.
type Stage string

const (
	StageTargetInfo   Stage = "target-info"
	StageEmailPreview Stage = "email-preview"
	StageDelivery     Stage = "delivery"
)

// Next returns the stage that follows s, or s itself for the final stage.
func (s Stage) Next() Stage {
	switch s {
	case StageTargetInfo:
		return StageEmailPreview
	case StageEmailPreview:
		return StageDelivery
	}
	return s
}

// Prev returns the stage that precedes s, or s itself for the first stage.
func (s Stage) Prev() Stage {
	switch s {
	case StageDelivery:
		return StageEmailPreview
	case StageEmailPreview:
		return StageTargetInfo
	}
	return s
}

// Valid reports whether s names a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageTargetInfo, StageEmailPreview, StageDelivery:
		return true
	}
	return false
}

// CompletedSet tracks which stages have been completed, in order.
type CompletedSet []Stage

// Contains reports whether stage has been marked completed.
func (c CompletedSet) Contains(stage Stage) bool {
	for _, s := range c {
		if s == stage {
			return true
		}
	}
	return false
}

// Mark appends stage if not already present.
func (c CompletedSet) Mark(stage Stage) CompletedSet {
	if c.Contains(stage) {
		return c
	}
	return append(c, stage)
}

// TruncateBefore drops completion markers for target and everything after it.
// Going back from Delivery keeps TargetInfo completed; going back from
// EmailPreview clears everything.
func (c CompletedSet) TruncateBefore(target Stage) CompletedSet {
	switch target {
	case StageTargetInfo:
		return nil
	case StageEmailPreview:
		if c.Contains(StageTargetInfo) {
			return CompletedSet{StageTargetInfo}
		}
		return nil
	}
	return c
}
