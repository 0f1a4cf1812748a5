package post

import "fmt"

// TransitionError reports an illegal state transition on a pending post,
// e.g. publishing an id that is already being published.
type TransitionError struct {
	ID   string
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("pending post %s: illegal transition %s -> %s", e.ID, e.From, e.To)
}

// DeliveryError reports a failed delivery attempt. The pending post stays
// stored in Draft so the operator can retry; PartIndex names the first part
// that failed (0 for the photo or single message).
type DeliveryError struct {
	ID        string
	PartIndex int
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("pending post %s: delivery of part %d failed: %v", e.ID, e.PartIndex, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
