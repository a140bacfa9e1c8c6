package types

import "time"

type ConversationTurn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DraftTripRequest accumulates slot values across conversation turns until
// every required field is present.
type DraftTripRequest struct {
	Age            *int     `json:"age,omitempty"`
	TotalBudgetEGP *float64 `json:"budget_egp,omitempty"`
	Days           *int     `json:"days,omitempty"`
	Interests      []string `json:"interests,omitempty"`
	Cities         []string `json:"cities,omitempty"`
}

// Complete reports whether the draft can be promoted to a TripRequest.
// Cities stay optional: an empty list means nationwide.
func (d DraftTripRequest) Complete() bool {
	return d.Age != nil && d.TotalBudgetEGP != nil && d.Days != nil && len(d.Interests) > 0
}

// Missing lists the required slots still unset, for the follow-up question.
func (d DraftTripRequest) Missing() []string {
	var missing []string
	if d.Age == nil {
		missing = append(missing, "age")
	}
	if d.TotalBudgetEGP == nil {
		missing = append(missing, "budget")
	}
	if d.Days == nil {
		missing = append(missing, "days")
	}
	if len(d.Interests) == 0 {
		missing = append(missing, "interests")
	}
	return missing
}

// ToRequest converts a complete draft. Call Complete first.
func (d DraftTripRequest) ToRequest() TripRequest {
	return TripRequest{
		Age:            *d.Age,
		TotalBudgetEGP: *d.TotalBudgetEGP,
		Days:           *d.Days,
		Interests:      d.Interests,
		Cities:         d.Cities,
	}
}

// Merge overlays newer slot values onto the draft, keeping existing values
// when the update leaves them unset.
func (d DraftTripRequest) Merge(update DraftTripRequest) DraftTripRequest {
	out := d
	if update.Age != nil {
		out.Age = update.Age
	}
	if update.TotalBudgetEGP != nil {
		out.TotalBudgetEGP = update.TotalBudgetEGP
	}
	if update.Days != nil {
		out.Days = update.Days
	}
	if len(update.Interests) > 0 {
		out.Interests = update.Interests
	}
	if len(update.Cities) > 0 {
		out.Cities = update.Cities
	}
	return out
}
