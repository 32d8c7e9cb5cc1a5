package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime/overtime"
)

func TestWriteOvertimeTable(t *testing.T) {
	window := overtime.BillingWindow(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	result := []overtime.Report{
		{EmployeeID: 1, Employee: "Ewa Lis", Window: window, Days: make([]overtime.DayResult, 2), Total: 5},
	}

	var buf bytes.Buffer
	require.NoError(t, writeOvertime(&buf, "table", window, result))
	out := buf.String()
	assert.Contains(t, out, "Billing period 2023-12-10 to 2024-01-10")
	assert.Contains(t, out, "Ewa Lis")
	assert.Contains(t, out, "5h")
}

func TestWriteOvertimeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, writeOvertime(&buf, "pdf", overtime.Window{}, nil))
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"", now, false},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), false},
		{"05/03/2024", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.raw, now)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
