// Package model defines the data structures used throughout the application.
package model

import "time"

// Account is a registered user. PasswordHash never leaves the server: the
// `json:"-"` tag drops it from every response.
//
// Favorite edges are not embedded here; they live in their own tables and
// are resolved by the favorites reader.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfileImage string    `json:"profileImage"`
	BannerImage  string    `json:"bannerImage"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfilePatch carries the fields of an account update. A nil field means
// "leave unchanged"; a pointer to "" clears the value.
type ProfilePatch struct {
	Username     *string `json:"username,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
	BannerImage  *string `json:"bannerImage,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Username == nil && p.Bio == nil && p.ProfileImage == nil && p.BannerImage == nil
}
