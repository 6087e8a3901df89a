package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateRejectsImpossibleDays(t *testing.T) {
	_, ok := NewDate(2023, 2, 29)
	assert.False(t, ok)

	d, ok := NewDate(2024, 2, 29)
	require.True(t, ok)
	assert.Equal(t, "2024-02-29", d.String())

	_, ok = NewDate(2024, 0, 10)
	assert.False(t, ok)
	_, ok = NewDate(2024, 4, 31)
	assert.False(t, ok)
}

func TestDateZeroValue(t *testing.T) {
	var d Date
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())
	assert.Equal(t, "", d.MonthKey())
	assert.True(t, d.Time().IsZero())
}

func TestParse(t *testing.T) {
	d, err := Parse("2024-03-16")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 16, d.Day())
	assert.Equal(t, "2024-03", d.MonthKey())

	d, err = Parse("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = Parse("16/03/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}

	d, _ := NewDate(2022, 9, 3)
	data, err := json.Marshal(wrapper{Date: d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2022-09-03"}`, string(data))

	data, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":null}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2021-01-31"}`), &w))
	assert.Equal(t, "2021-01-31", w.Date.String())

	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &w))
	assert.True(t, w.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"yesterday"}`), &w))
}

func TestWindowContains(t *testing.T) {
	in, _ := NewDate(2020, 1, 1)
	out, _ := NewDate(2019, 12, 31)

	assert.True(t, DefaultBodyWindow.Contains(in))
	assert.False(t, DefaultBodyWindow.Contains(out))
	assert.True(t, DefaultWindow.Contains(out))
	assert.False(t, DefaultWindow.Contains(Date{}))
}
