package models

import "github.com/turtl/core/pkg/terror"

// Space is the top-level container owning a set of Boards and Notes. Vdb is
// the virtual decryption bag: a flat noteID -> base64(note key) lookup table
// filled as notes are added and rebuilt from each note's own keyref at login
// (profile.RehydrateNoteKeys), never persisted directly.
type Space struct {
	Base

	UserID string `json:"user_id"`

	Title string `json:"-"`
	Color string `json:"-"`

	Vdb map[string]string `json:"-"`
}

func (s *Space) TableName() string { return "spaces" }
func (s *Space) GetID() string     { return s.ID }
func (s *Space) GetBase() *Base    { return &s.Base }

func (s *Space) PublicPrivateSplit() (public, private map[string]any) {
	public = map[string]any{
		"user_id": s.UserID,
	}
	private = map[string]any{
		"title": s.Title,
		"color": s.Color,
	}
	return public, private
}

func (s *Space) ApplyPublic(fields map[string]any) error {
	if v, ok := fields["user_id"].(string); ok {
		s.UserID = v
	}
	return nil
}

func (s *Space) ApplyPrivate(fields map[string]any) error {
	if v, ok := fields["title"].(string); ok {
		s.Title = v
	}
	if v, ok := fields["color"].(string); ok {
		s.Color = v
	}
	return nil
}

func (s *Space) Validate() error {
	if s.UserID == "" {
		return terror.MissingField("user_id")
	}
	return nil
}

// VdbPut records a note's key in the space's decryption bag, base64-encoded.
func (s *Space) VdbPut(noteID, base64Key string) {
	if s.Vdb == nil {
		s.Vdb = make(map[string]string)
	}
	s.Vdb[noteID] = base64Key
}

// VdbQuery looks up a note's base64-encoded key in the space's decryption
// bag. Returns ok=false if the note has no entry.
func (s *Space) VdbQuery(noteID string) (string, bool) {
	if s.Vdb == nil {
		return "", false
	}
	v, ok := s.Vdb[noteID]
	return v, ok
}
