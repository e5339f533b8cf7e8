package domain

// ActionSet is the derived set of contact actions a buyer may take on a
// listing, recomputed per poll from the latest observed offer status.
// The observed status may lag the other party's writes; the gate only
// ever speaks for the most recently polled state.
type ActionSet struct {
	Chat          bool   `json:"chat"`
	Call          bool   `json:"call"`
	ScheduleDrive bool   `json:"schedule_test_drive"`
	Reason        string `json:"reason,omitempty"`
}

// AvailableActions derives the permitted actions for an offer status.
// Total over the four-element status domain; unknown values are treated
// as none.
func AvailableActions(status OfferStatus) ActionSet {
	switch status {
	case OfferStatusAccepted:
		return ActionSet{Chat: true, Call: true, ScheduleDrive: true}
	case OfferStatusPending:
		return ActionSet{Reason: "waiting for seller response"}
	case OfferStatusRejected:
		return ActionSet{Reason: "offer was rejected; submit a new offer"}
	default:
		return ActionSet{Reason: "make an offer first"}
	}
}
