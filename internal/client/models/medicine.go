package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidMedicine = errors.New("invalid medicine")

// Medicine is a scheduled medicine stored in the local database.
//
// UserID is the owning user's email. It is a plain identifier, not an owning
// reference: removing the user leaves the medicine rows in place, and they are
// looked up with an explicit query by UserID.
type Medicine struct {
	ID          int64       `validate:"gte=0"`
	Name        string      `validate:"required,max=200"`
	Compartment int         `validate:"gte=1"`
	Number      int         `validate:"gte=1"`
	Times       []time.Time `validate:"min=1"`
	UserID      string      `validate:"required,email"`
}

// Validate reports ErrInvalidMedicine wrapped with the first failing field.
func (m *Medicine) Validate() error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s failed %q", ErrInvalidMedicine, verrs[0].Field(), verrs[0].Tag())
	}
	return fmt.Errorf("%w: %w", ErrInvalidMedicine, err)
}

// Reminder is one scheduled dose of a medicine.
type Reminder struct {
	MedicineID  int64
	Name        string
	Compartment int
	Number      int
	At          time.Time
}
