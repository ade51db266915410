package entity

import "strings"

// Group is a hobby group or event as stored by the REST backend.
// Creator identity is denormalised onto the document at creation time.
type Group struct {
	ID            string `json:"_id,omitempty"`
	GroupName     string `json:"groupName" validate:"required"`
	Description   string `json:"description" validate:"required"`
	Location      string `json:"location,omitempty"`
	MaxMembers    int    `json:"maxMembers,omitempty" validate:"gte=0"`
	Image         string `json:"image,omitempty"`
	FormattedDate string `json:"formattedDate,omitempty"`
	FormatHour    string `json:"formatHour,omitempty"`
	Day           string `json:"day,omitempty"`
	Category      string `json:"category,omitempty"`
	UserEmail     string `json:"userEmail,omitempty"`
	CreatorName   string `json:"creatorName,omitempty"`
	CreatorImage  string `json:"creatorImage,omitempty"`
}

func (g Group) Key() string { return g.ID }

// OwnedBy reports whether email matches the creator. It only drives UI affordances.
func (g Group) OwnedBy(email string) bool {
	return email != "" && strings.EqualFold(g.UserEmail, email)
}

// JoinedGroup records a user's membership in a group.
type JoinedGroup struct {
	ID        string `json:"_id,omitempty"`
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	UserEmail string `json:"userEmail"`
	JoinedAt  string `json:"joinedAt"`
}
