package models

import "time"

// Connection statuses. Rejected connections are deleted rather than stored.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
)

// Family is a group of users who share medical history
type Family struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// FamilyConnection is a directed, role-labelled edge between two users.
// ReceiverRole is what the sender calls the receiver.
type FamilyConnection struct {
	ID             int64
	SenderID       int64
	ReceiverID     int64
	ReceiverRole   string
	TargetFamilyID int64
	Status         string
	CreatedAt      time.Time

	// Populated via JOIN
	SenderName   string
	ReceiverName string
}

// IsPending reports whether the invite is still waiting for the receiver
func (c *FamilyConnection) IsPending() bool {
	return c.Status == ConnectionPending
}

// IsAccepted reports whether the receiver confirmed the invite
func (c *FamilyConnection) IsAccepted() bool {
	return c.Status == ConnectionAccepted
}

// FamilyMember is a user profile annotated with the role the viewer uses for them
type FamilyMember struct {
	User User
	Role string
}
