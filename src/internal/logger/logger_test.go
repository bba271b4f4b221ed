package logger

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePayloadMasksSecrets(t *testing.T) {
	got := SanitizePayload(Fields{
		"access_token": "tok",
		"Client-Secret": "shh",
		"nested": map[string]any{
			"code":  "authcode",
			"query": "account_id=acc_1",
		},
		"items": []any{map[string]any{"Authorization": "Bearer tok"}},
	})

	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "******", m["access_token"])
	assert.Equal(t, "******", m["Client-Secret"])
	nested := m["nested"].(map[string]any)
	assert.Equal(t, "******", nested["code"])
	assert.Equal(t, "account_id=acc_1", nested["query"])
	item := m["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "******", item["Authorization"])
}

func TestSanitizePayloadUnmarshalable(t *testing.T) {
	assert.Equal(t, "<unavailable>", SanitizePayload(make(chan int)))
}

func TestErrorIncludesErrorField(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	Error("provider call failed", errors.New("boom"), Fields{"path": "/accounts"})

	out := buf.String()
	assert.Contains(t, out, "ERROR provider call failed")
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"path":"/accounts"`)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("token-a")
	assert.Len(t, a, 16)
	assert.Equal(t, a, Fingerprint(" token-a "))
	assert.NotEqual(t, a, Fingerprint("token-b"))
	assert.Empty(t, Fingerprint(""))
}
