package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 2.35, RoundFloat(2.346, 2))
	assert.Equal(t, -2.35, RoundFloat(-2.346, 2))
	assert.Equal(t, 100.0, RoundFloat(99.999, 1))
	assert.Equal(t, 0.0, RoundFloat(0.0001, 2))
	assert.Equal(t, 125000.0, RoundFloat(125000, 2))
}

func TestGenerateETag(t *testing.T) {
	type payload struct {
		A string
		B int
	}

	etag1, err := GenerateETag(payload{"x", 1})
	require.NoError(t, err)
	etag2, err := GenerateETag(payload{"x", 1})
	require.NoError(t, err)
	etag3, err := GenerateETag(payload{"x", 2})
	require.NoError(t, err)

	assert.Equal(t, etag1, etag2)
	assert.NotEqual(t, etag1, etag3)
	assert.Len(t, etag1, 64)

	_, err = GenerateETag(func() {}) // functions do not marshal
	assert.Error(t, err)
}

func TestHashBytes(t *testing.T) {
	h1 := HashBytes([]byte("abc"))
	h2 := HashBytes([]byte("abc"))
	h3 := HashBytes([]byte("abd"))

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	// Known SHA256 of "abc".
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h1)
}

func TestSendJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONError(rec, "something broke", 418)

	assert.Equal(t, 418, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "something broke", body["error"])
}
