package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Name    string `json:"name"`
	Spawned int64  `json:"spawned"`
}

func TestMarshalToWriter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, MarshalToWriter(&out, report{Name: "bench", Spawned: 7}))

	var got report
	require.NoError(t, Unmarshal(out.Bytes(), &got))
	assert.Equal(t, report{Name: "bench", Spawned: 7}, got)
}

func TestBufferPoolDropsOversized(t *testing.T) {
	big := GetBuffer()
	big.Grow(maxPooledBufferSize + 1)
	PutBuffer(big)
	PutBuffer(nil)

	reused := GetBuffer()
	defer PutBuffer(reused)
	assert.LessOrEqual(t, reused.Cap(), maxPooledBufferSize)
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(report{Name: "bench"}, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"name\": \"bench\"")
}
