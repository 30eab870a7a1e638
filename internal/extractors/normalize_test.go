package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2023-04-09", "2023-04-09"},
		{"2023-04-09T10:15:00", "2023-04-09"},
		{"2023-04-09 10:15:00", "2023-04-09"},
		{"2023/04/09", "2023-04-09"},
		{"2023/4/9", "2023-04-09"},
		{"09/04/2023", "09/04/2023"},
		{"April 9, 2023", "April 9, 2023"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.in), tt.in)
	}
}

func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8/2022", "2022-08-31"},
		{"02/2024", "2024-02-29"},
		{"2023/2", "2023-02-28"},
		{"2022-11", "2022-11-30"},
		{"٨/٢٠٢٢", "2022-08-31"},
		{"2022-08-31", "2022-08-31"},
		{"13/2022", "13/2022"},
		{"end of august", "end of august"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EndOfMonth(tt.in), tt.in)
	}
}

func TestBackfillExpiration(t *testing.T) {
	t.Run("missing expiration", func(t *testing.T) {
		data := map[string]any{"issue_date": "2020-01-15"}
		assert.True(t, BackfillExpiration(data))
		// 2555 days after 2020-01-15 (two leap days in between).
		assert.Equal(t, "2027-01-13", data["expiration_date"])
	})
	t.Run("empty expiration", func(t *testing.T) {
		data := map[string]any{"issue_date": "2021/3/1", "expiration_date": ""}
		assert.True(t, BackfillExpiration(data))
		assert.Equal(t, "2028-02-28", data["expiration_date"])
	})
	t.Run("present expiration kept", func(t *testing.T) {
		data := map[string]any{"issue_date": "2020-01-15", "expiration_date": "2027-01-31"}
		assert.False(t, BackfillExpiration(data))
		assert.Equal(t, "2027-01-31", data["expiration_date"])
	})
	t.Run("no issue date", func(t *testing.T) {
		data := map[string]any{"full_name": "Ahmed"}
		assert.False(t, BackfillExpiration(data))
		assert.NotContains(t, data, "expiration_date")
	})
	t.Run("unparseable issue date", func(t *testing.T) {
		data := map[string]any{"issue_date": "15 Jan 2020"}
		assert.False(t, BackfillExpiration(data))
		assert.NotContains(t, data, "expiration_date")
	})
}

func TestIntegersAfter(t *testing.T) {
	raw := "Client Name: Nour Trading\nCBE Code: 12345\nFinance List: 120, 45 and ٣٠٠"
	assert.Equal(t, []int64{120, 45, 300}, integersAfter(raw, "Finance List:"))
	assert.Equal(t, []int64{}, integersAfter("CBE Code: 12345", "Finance List:"))
}

func TestFillMissing(t *testing.T) {
	data := map[string]any{"a": "x", "b": nil}
	fillMissing(data, []string{"a", "b", "c"})
	assert.Equal(t, map[string]any{"a": "x", "b": "", "c": ""}, data)
}
