package models

// User is a registered account. Password holds the bcrypt digest and is
// never serialized back to clients; every outward response goes through
// Public().
type User struct {
	ID              int    `json:"id"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url"`
	CreatedAt       string `json:"created_at"`
}

func (u *User) GetID() int   { return u.ID }
func (u *User) SetID(id int) { u.ID = id }

// PublicUser is the client-safe projection of a User. CreatedAt is only
// populated on profile lookups.
type PublicUser struct {
	ID              int    `json:"id"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url"`
	CreatedAt       string `json:"created_at,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Email:           u.Email,
		Nickname:        u.Nickname,
		ProfileImageURL: u.ProfileImageURL,
	}
}
