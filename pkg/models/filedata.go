package models

import (
	"encoding/base64"

	"github.com/turtl/core/pkg/terror"
)

// FileData holds the actual encrypted bytes of a Note's attached file,
// separate from the File metadata embedded in the Note. Its id is always
// the owning note's id. DBSave/DBDelete/Outgoing for FileData are overridden
// in pkg/syncmodel — this type only carries the data.
type FileData struct {
	Base

	NoteID string `json:"-"`
	Data   []byte `json:"-"`
}

func (f *FileData) TableName() string { return "files" }
func (f *FileData) GetID() string     { return f.ID }
func (f *FileData) GetBase() *Base    { return &f.Base }

func (f *FileData) PublicPrivateSplit() (public, private map[string]any) {
	public = map[string]any{}
	private = map[string]any{
		"data": f.Data,
	}
	return public, private
}

func (f *FileData) ApplyPublic(fields map[string]any) error {
	return nil
}

// ApplyPrivate reads "data" as a base64 string, the form json.Marshal gives
// the []byte that PublicPrivateSplit puts there.
func (f *FileData) ApplyPrivate(fields map[string]any) error {
	if v, ok := fields["data"].(string); ok {
		data, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return terror.BadValue("data must be base64")
		}
		f.Data = data
	}
	return nil
}

func (f *FileData) Validate() error {
	return nil
}

// TakeData removes and returns f's data, leaving f body-less, so the save
// path can take ownership of the byte slice without copying it.
func (f *FileData) TakeData() []byte {
	data := f.Data
	f.Data = nil
	return data
}
