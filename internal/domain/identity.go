package domain

import "fmt"

// DefaultAvatarPath is used for users that are missing from the directory.
const DefaultAvatarPath = "/api/images/users/00"

// IdentityEntry is the display metadata of a single user.
type IdentityEntry struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// DefaultIdentity synthesizes the entry for a user id the directory does not
// know about.
func DefaultIdentity(userID int) IdentityEntry {
	return IdentityEntry{
		Name:   fmt.Sprintf("User %d", userID),
		Avatar: DefaultAvatarPath,
	}
}
