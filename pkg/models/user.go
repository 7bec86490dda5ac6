package models

import "github.com/turtl/core/pkg/terror"

// User is the Protected object anchoring a single local profile. Only
// Settings is remote-editable via sync; Username and PubKey are set once at
// signup and never touched by the dispatcher's Edit path.
type User struct {
	Base

	Username string `json:"username"`
	PubKey   string `json:"pubkey,omitempty"`

	Settings map[string]any `json:"-"`
}

func (u *User) TableName() string { return "user" }
func (u *User) GetID() string     { return u.ID }
func (u *User) GetBase() *Base    { return &u.Base }

func (u *User) PublicPrivateSplit() (public, private map[string]any) {
	public = map[string]any{
		"username": u.Username,
	}
	if u.PubKey != "" {
		public["pubkey"] = u.PubKey
	}
	private = map[string]any{
		"settings": u.Settings,
	}
	return public, private
}

func (u *User) ApplyPublic(fields map[string]any) error {
	if v, ok := fields["username"].(string); ok {
		u.Username = v
	}
	if v, ok := fields["pubkey"].(string); ok {
		u.PubKey = v
	}
	return nil
}

func (u *User) ApplyPrivate(fields map[string]any) error {
	settings, _ := fields["settings"].(map[string]any)
	u.Settings = settings
	return nil
}

// Validate requires a username; everything else is optional at this layer.
func (u *User) Validate() error {
	if u.Username == "" {
		return terror.MissingField("username")
	}
	return nil
}
