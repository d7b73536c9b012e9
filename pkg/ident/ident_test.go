package ident

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDJSONRoundTrip(t *testing.T) {
	id := New[ArticleUUID]()

	raw, err := json.Marshal(struct {
		ID ArticleUUID `json:"id"`
	}{ID: id})
	require.NoError(t, err)
	assert.Contains(t, string(raw), id.String())

	var decoded struct {
		ID ArticleUUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, id, decoded.ID)
}

func TestUUIDScanAcceptsStringAndBytes(t *testing.T) {
	const raw = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

	var fromString UserUUID
	require.NoError(t, fromString.Scan(raw))
	assert.Equal(t, raw, fromString.String())

	var fromBytes UserUUID
	require.NoError(t, fromBytes.Scan([]byte(raw)))
	assert.Equal(t, fromString, fromBytes)

	value, err := fromString.Value()
	require.NoError(t, err)
	assert.Equal(t, raw, value)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse[ChatUUID]("not-a-uuid")
	assert.Error(t, err)

	var zero ChatUUID
	assert.True(t, zero.IsZero())
	assert.False(t, New[ChatUUID]().IsZero())
}

func keyString[K Key](id K) string { return id.String() }

func TestUUIDSatisfiesKey(t *testing.T) {
	id := New[ForumUUID]()
	assert.Equal(t, id.String(), keyString(id))

	value, err := id.Value()
	require.NoError(t, err)
	assert.Equal(t, id.String(), value)
}
