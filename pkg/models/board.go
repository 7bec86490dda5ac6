package models

import "github.com/turtl/core/pkg/terror"

// Board belongs to exactly one Space and may be moved across Spaces, which
// re-encrypts its children under the destination space's key material.
type Board struct {
	Base

	UserID  string `json:"user_id"`
	SpaceID string `json:"space_id"`

	Title string `json:"-"`
}

func (b *Board) TableName() string { return "boards" }
func (b *Board) GetID() string     { return b.ID }
func (b *Board) GetBase() *Base    { return &b.Base }

func (b *Board) PublicPrivateSplit() (public, private map[string]any) {
	public = map[string]any{
		"user_id":  b.UserID,
		"space_id": b.SpaceID,
	}
	private = map[string]any{
		"title": b.Title,
	}
	return public, private
}

func (b *Board) ApplyPublic(fields map[string]any) error {
	if v, ok := fields["user_id"].(string); ok {
		b.UserID = v
	}
	if v, ok := fields["space_id"].(string); ok {
		b.SpaceID = v
	}
	return nil
}

func (b *Board) ApplyPrivate(fields map[string]any) error {
	if v, ok := fields["title"].(string); ok {
		b.Title = v
	}
	return nil
}

func (b *Board) Validate() error {
	if b.SpaceID == "" {
		return terror.MissingField("space_id")
	}
	return nil
}
