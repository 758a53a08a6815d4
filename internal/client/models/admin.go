package models

// Admin is the logged-in user record persisted on the device.
type Admin struct {
	Email    Email
	Username Username
}

func (a Admin) IsValid() bool {
	return a.Email.IsValid() && a.Username.IsValid()
}
