// Package state holds the observable auth state of the client.
//
// AuthController owns an AuthState value and republishes it to subscribers
// after every change. Asynchronous operations (CreateAccount, Login, SendOTP,
// ForgotPassword) publish two snapshots: a loading one and a terminal one
// carrying the Result. SignOut and the session restore done by
// NewAuthController publish a single terminal snapshot.
//
// Snapshots are copies; mutating one never affects the controller or other
// subscribers.
package state
