package domain

import "time"

// Role is the authorization role carried by an identity.
type Role string

const (
	RoleClient     Role = "client"
	RoleDispatcher Role = "dispatcher"
	RoleDriver     Role = "driver"
)

// User represents a registered account: a client booking rides, a
// dispatcher approving them, or a driver.
type User struct {
	ID            string
	Name          string
	Phone         string
	Role          Role
	Veteran       bool
	InstrumentRef string // stored payment instrument reference
	CreatedAt     time.Time
}
