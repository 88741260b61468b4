package utils_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/go-event-portal/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestTimestampDecodesZonelessValues(t *testing.T) {
	var v struct {
		At utils.Timestamp `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2025-03-01T18:30:00.123456"}`), &v))
	require.Equal(t, time.Date(2025, 3, 1, 18, 30, 0, 123456000, time.UTC), v.At.Time)

	require.NoError(t, json.Unmarshal([]byte(`{"at":"2025-03-01T18:30:00+02:00"}`), &v))
	require.Equal(t, time.Date(2025, 3, 1, 16, 30, 0, 0, time.UTC), v.At.Time)

	require.NoError(t, json.Unmarshal([]byte(`{"at":null}`), &v))
	require.True(t, v.At.IsZero())

	require.Error(t, json.Unmarshal([]byte(`{"at":"yesterday"}`), &v))
}
