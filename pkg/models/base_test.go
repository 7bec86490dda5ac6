package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtl/core/pkg/tcrypto"
)

func TestSerializeDeserializeRoundtrip(t *testing.T) {
	key, err := tcrypto.RandomKey()
	require.NoError(t, err)

	note := &Note{
		Base:    Base{ID: "note1", Key: key},
		UserID:  "user1",
		SpaceID: "space1",
		Title:   "groceries",
		Body:    "eggs, milk",
		Tags:    []string{"home"},
	}

	data, err := Serialize(note)
	require.NoError(t, err)
	assert.NotEmpty(t, note.Base.Body)
	assert.NotEmpty(t, data)

	roundtrip := &Note{Base: Base{ID: note.ID, Key: key, Body: note.Base.Body}}
	require.NoError(t, Deserialize(roundtrip, nil))

	assert.Equal(t, note.Title, roundtrip.Title)
	assert.Equal(t, note.Body, roundtrip.Body)
	assert.Equal(t, note.Tags, roundtrip.Tags)
}

func TestSerializeRequiresKey(t *testing.T) {
	note := &Note{Base: Base{ID: "note1"}}
	_, err := Serialize(note)
	assert.Error(t, err)
}

func TestDeserializeFallsBackToOuterKey(t *testing.T) {
	outer, err := tcrypto.RandomKey()
	require.NoError(t, err)

	board := &Board{Base: Base{ID: "board1"}, SpaceID: "space1", Title: "ideas"}
	board.Key = outer
	_, err = Serialize(board)
	require.NoError(t, err)

	board.Key = tcrypto.Key{}
	require.NoError(t, Deserialize(board, &outer))
	assert.Equal(t, outer, board.Key)
	assert.Equal(t, "ideas", board.Title)
}

func TestMergeFieldsLaterWins(t *testing.T) {
	dst := map[string]any{"a": 1, "b": 2}
	src := map[string]any{"b": 3, "c": 4}
	merged := MergeFields(dst, src)

	assert.Equal(t, 1, merged["a"])
	assert.Equal(t, 3, merged["b"])
	assert.Equal(t, 4, merged["c"])
}

func TestGenerateSubkeysAndFind(t *testing.T) {
	key, _ := tcrypto.RandomKey()
	userKey, _ := tcrypto.RandomKey()

	space := &Space{Base: Base{ID: "space1", Key: key}, UserID: "user1"}
	err := GenerateSubkeys(space, []KeyTarget{
		{SubjectID: "user1", SubjectType: "user", Key: userKey},
	})
	require.NoError(t, err)
	require.Len(t, space.Keys, 1)

	kr, ok := FindKeyref(space, "user1")
	require.True(t, ok)

	recovered, err := tcrypto.UnwrapKey(userKey, kr.EncryptedKey)
	require.NoError(t, err)
	assert.Equal(t, key, recovered)

	_, ok = FindKeyref(space, "nobody")
	assert.False(t, ok)
}

func TestDataForStorageOmitsEmptyKeysAndBody(t *testing.T) {
	board := &Board{Base: Base{ID: "board1"}, SpaceID: "space1", Title: "x"}
	raw, err := DataForStorage(board)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"body"`)
	assert.NotContains(t, string(raw), `"keys"`)
	assert.Contains(t, string(raw), `"space_id":"space1"`)
}

func TestSpaceVdb(t *testing.T) {
	space := &Space{Base: Base{ID: "space1"}, UserID: "user1"}
	_, ok := space.VdbQuery("note1")
	assert.False(t, ok)

	space.VdbPut("note1", "base64key")
	v, ok := space.VdbQuery("note1")
	require.True(t, ok)
	assert.Equal(t, "base64key", v)
}
