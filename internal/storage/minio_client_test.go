package storage

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyPrefixesTimestamp(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	key := ObjectKey("cover.png", now)
	assert.Equal(t, "1700000000000-cover.png", key)
}

func TestObjectKeyStripsDirectories(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	key := ObjectKey("../../etc/passwd", now)
	assert.Equal(t, "1700000000000-passwd", key)
}

func TestObjectKeySanitizesFilename(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	key := ObjectKey("photo shoot (1).png", now)
	assert.Equal(t, "1700000000000-photo_shoot__1_.png", key)
}

func TestObjectKeyFallsBackToGeneratedID(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	key := ObjectKey("...", now)

	prefix := fmt.Sprintf("%d-", now.UnixMilli())
	require.True(t, strings.HasPrefix(key, prefix))
	// uuid fallback, not an empty name
	assert.Len(t, strings.TrimPrefix(key, prefix), 36)
}

func TestProgressReaderReportsNondecreasingFractions(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 1000)
	var fractions []float64
	pr := &progressReader{
		r:      bytes.NewReader(data),
		total:  int64(len(data)),
		report: func(f float64) { fractions = append(fractions, f) },
	}

	_, err := io.CopyBuffer(io.Discard, pr, make([]byte, 64))
	require.NoError(t, err)

	require.NotEmpty(t, fractions)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestProgressReaderCapsFractionAtOne(t *testing.T) {
	data := []byte("more data than declared")
	var last float64
	pr := &progressReader{
		r:      bytes.NewReader(data),
		total:  4,
		report: func(f float64) { last = f },
	}

	_, err := io.Copy(io.Discard, pr)
	require.NoError(t, err)
	assert.Equal(t, 1.0, last)
}
