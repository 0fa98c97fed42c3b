package domain

// QuotationStatus represents the lifecycle state of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft       QuotationStatus = "draft"
	QuotationStatusSent        QuotationStatus = "sent"
	QuotationStatusViewed      QuotationStatus = "viewed"
	QuotationStatusNegotiating QuotationStatus = "negotiating"
	QuotationStatusAccepted    QuotationStatus = "accepted"
	QuotationStatusRejected    QuotationStatus = "rejected"
	QuotationStatusExpired     QuotationStatus = "expired"
)

// legalTransitions enumerates every permitted status edge. The expired
// edge from non-terminal states is system-triggered and handled
// separately, but listed here so CanTransitionTo reports it.
var legalTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft:       {QuotationStatusSent, QuotationStatusExpired},
	QuotationStatusSent:        {QuotationStatusViewed, QuotationStatusNegotiating, QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired},
	QuotationStatusViewed:      {QuotationStatusNegotiating, QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired},
	QuotationStatusNegotiating: {QuotationStatusSent, QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired},
	QuotationStatusAccepted:    nil,
	QuotationStatusRejected:    nil,
	QuotationStatusExpired:     nil,
}

// IsValid checks if the QuotationStatus is a valid enum value
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusViewed,
		QuotationStatusNegotiating, QuotationStatusAccepted,
		QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted
func (s QuotationStatus) IsTerminal() bool {
	switch s {
	case QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether the edge s -> to is legal
func (s QuotationStatus) CanTransitionTo(to QuotationStatus) bool {
	for _, next := range legalTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowsItemMutation reports whether item and cost-field edits are
// permitted in this status. Edits outside draft succeed but carry a
// warning flag; see MutationWarning.
func (s QuotationStatus) AllowsItemMutation() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusViewed, QuotationStatusNegotiating:
		return true
	}
	return false
}

// MutationWarning reports whether an item mutation in this status
// should be flagged to the caller (the quotation has already been
// exposed to the client and is being re-opened for correction).
func (s QuotationStatus) MutationWarning() bool {
	switch s {
	case QuotationStatusSent, QuotationStatusViewed, QuotationStatusNegotiating:
		return true
	}
	return false
}
