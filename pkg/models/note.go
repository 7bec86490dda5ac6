package models

import "github.com/turtl/core/pkg/terror"

// File describes a Note's attached file: name, mime type, and any
// format-specific metadata. It carries no body; the bytes live in a
// separate FileData entity addressed by the owning note's id.
type File struct {
	Size uint64         `json:"size,omitempty"`
	Name string         `json:"name,omitempty"`
	Ty   string         `json:"type,omitempty"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Note belongs to one Space and optionally to one Board.
type Note struct {
	Base

	UserID  string `json:"user_id"`
	SpaceID string `json:"space_id"`
	BoardID string `json:"board_id,omitempty"`

	HasFile bool  `json:"has_file"`
	File    *File `json:"file,omitempty"`
	Mod     int64 `json:"mod_"`

	Title string `json:"-"`
	Body  string `json:"-"`
	Tags  []string `json:"-"`
}

func (n *Note) TableName() string { return "notes" }
func (n *Note) GetID() string     { return n.ID }
func (n *Note) GetBase() *Base    { return &n.Base }

func (n *Note) PublicPrivateSplit() (public, private map[string]any) {
	public = map[string]any{
		"user_id":  n.UserID,
		"space_id": n.SpaceID,
		"has_file": n.HasFile,
		"mod_":     n.Mod,
	}
	if n.BoardID != "" {
		public["board_id"] = n.BoardID
	}
	if n.File != nil {
		public["file"] = n.File
	}
	private = map[string]any{
		"title": n.Title,
		"body":  n.Body,
		"tags":  n.Tags,
	}
	return public, private
}

func (n *Note) ApplyPublic(fields map[string]any) error {
	if v, ok := fields["user_id"].(string); ok {
		n.UserID = v
	}
	if v, ok := fields["space_id"].(string); ok {
		n.SpaceID = v
	}
	if v, ok := fields["board_id"].(string); ok {
		n.BoardID = v
	}
	if v, ok := fields["has_file"].(bool); ok {
		n.HasFile = v
	}
	if v, ok := fields["mod_"].(float64); ok {
		n.Mod = int64(v)
	}
	return nil
}

func (n *Note) ApplyPrivate(fields map[string]any) error {
	if v, ok := fields["title"].(string); ok {
		n.Title = v
	}
	if v, ok := fields["body"].(string); ok {
		n.Body = v
	}
	if v, ok := fields["tags"].([]any); ok {
		tags := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		n.Tags = tags
	}
	return nil
}

func (n *Note) Validate() error {
	if n.SpaceID == "" {
		return terror.MissingField("space_id")
	}
	return nil
}
