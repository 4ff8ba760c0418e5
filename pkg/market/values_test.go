package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw      string
		expected bool
		wantErr  bool
	}{
		{`true`, true, false},
		{`false`, false, false},
		{`"true"`, true, false},
		{`"TRUE"`, true, false},
		{`"False"`, false, false},
		{`"1"`, true, false},
		{`""`, false, false},
		{`null`, false, false},
		{`"yes"`, false, true},
		{`2`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var f Flag
			err := json.Unmarshal([]byte(tt.raw), &f)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bool(f))
		})
	}
}

func TestFlag_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Flag(true))
	require.NoError(t, err)
	assert.Equal(t, "true", string(data))
}

func TestPrice(t *testing.T) {
	t.Run("decodes numbers and strings", func(t *testing.T) {
		var p struct {
			A Price `json:"a"`
			B Price `json:"b"`
			C Price `json:"c"`
		}
		err := json.Unmarshal([]byte(`{"a": 19.99, "b": "5", "c": ""}`), &p)
		require.NoError(t, err)
		assert.Equal(t, Price(19.99), p.A)
		assert.Equal(t, Price(5), p.B)
		assert.Equal(t, Price(0), p.C)
	})

	t.Run("rejects negative and non-numeric", func(t *testing.T) {
		var p Price
		assert.Error(t, json.Unmarshal([]byte(`"-3"`), &p))
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &p))
	})

	t.Run("encodes as string", func(t *testing.T) {
		data, err := json.Marshal(Price(19.99))
		require.NoError(t, err)
		assert.Equal(t, `"19.99"`, string(data))
	})

	t.Run("display", func(t *testing.T) {
		assert.Equal(t, "$19.99", Price(19.99).Display())
		assert.Equal(t, "$5", Price(5).Display())
	})
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, Price(12.5), p)

	_, err = ParsePrice("-1")
	assert.Error(t, err)
}

func TestTimestamp(t *testing.T) {
	t.Run("parses known layouts", func(t *testing.T) {
		inputs := []string{
			"2024-03-01T10:20:30",
			"2024-03-01T10:20:30Z",
			"2024-03-01T10:20:30.123456",
			"2024-03-01 10:20:30",
		}
		for _, in := range inputs {
			ts, err := ParseTimestamp(in)
			require.NoError(t, err, in)
			assert.Equal(t, 2024, ts.Year(), in)
			assert.Equal(t, 30, ts.Second(), in)
		}
	})

	t.Run("empty and N/A are zero", func(t *testing.T) {
		for _, in := range []string{"", "N/A"} {
			ts, err := ParseTimestamp(in)
			require.NoError(t, err)
			assert.True(t, ts.IsZero())
			assert.Equal(t, "-", ts.Date())
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseTimestamp("yesterday")
		assert.Error(t, err)

		var ts Timestamp
		assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))
	})

	t.Run("encodes with wire layout and no fraction", func(t *testing.T) {
		ts := NewTimestamp(time.Date(2024, 3, 1, 10, 20, 30, 999, time.UTC))
		data, err := json.Marshal(ts)
		require.NoError(t, err)
		assert.Equal(t, `"2024-03-01T10:20:30"`, string(data))
	})

	t.Run("zero encodes as empty string", func(t *testing.T) {
		data, err := json.Marshal(Timestamp{})
		require.NoError(t, err)
		assert.Equal(t, `""`, string(data))
	})
}
