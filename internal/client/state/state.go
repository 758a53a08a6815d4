package state

import "github.com/dmitrijs2005/medreminder/internal/client/models"

// Result is the outcome of the last finished operation: success when Err is
// nil, a typed failure otherwise.
type Result struct {
	Err error
}

func (r Result) Succeeded() bool { return r.Err == nil }

// AuthState is one published snapshot.
type AuthState struct {
	IsLoading bool
	Admin     *models.Admin
	OTP       *string
	Result    *Result
}

func (s AuthState) clone() AuthState {
	out := AuthState{IsLoading: s.IsLoading}
	if s.Admin != nil {
		a := *s.Admin
		out.Admin = &a
	}
	if s.OTP != nil {
		o := *s.OTP
		out.OTP = &o
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	return out
}
