package model

import "time"

// User is the identity record stored in the users collection.
// The Password field always holds a bcrypt hash, never plaintext.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Username  string    `bson:"username" json:"username"`
	Password  string    `bson:"password" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"dt_created"`
	UpdatedAt time.Time `bson:"updated_at" json:"dt_updated"`
}

// Profile is the public projection of a user returned by the API.
type Profile struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"dt_created"`
	UpdatedAt time.Time `json:"dt_updated"`
}

// Profile returns the public projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
