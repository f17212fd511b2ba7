package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_FieldNames(t *testing.T) {
	data, err := Encode([]Note{{ID: 0, Text: "buy milk"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"notes":[{"note":"buy milk","id":0}]}`, string(data))
}

func TestEncode_EmptyIsArray(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, `{"notes":[]}`, string(data))
}

func TestDecode(t *testing.T) {
	list, err := Decode([]byte(`{"notes":[{"note":"buy milk","id":0},{"note":"eggs","id":3}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Note{{0, "buy milk"}, {3, "eggs"}}, list)

	list, err = Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = Decode([]byte(`{"notes":`))
	assert.Error(t, err)
}
