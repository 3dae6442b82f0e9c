package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepulse-http-service/internal/domain/models"
)

func validPayload() *models.VisitPayload {
	return &models.VisitPayload{
		FullName:     "Avery Quinn",
		Mobile:       "555-0100",
		VisitType:    "Meeting",
		HostName:     "Dev Singh",
		Purpose:      "Meeting",
		EntryLane:    "North Gate",
		Date:         "2026-08-31",
		ConsentGiven: true,
	}
}

func TestValidateVisitPayload(t *testing.T) {
	assert.Empty(t, ValidateVisitPayload(validPayload()))

	// 缺失字段按声明顺序返回，字段名与请求体一致
	empty := &models.VisitPayload{}
	assert.Equal(t, []string{
		"fullName", "mobile", "visitType", "hostName",
		"purpose", "entryLane", "date", "consentGiven",
	}, ValidateVisitPayload(empty))

	// 纯空白视为缺失
	payload := validPayload()
	payload.HostName = "   "
	assert.Equal(t, []string{"hostName"}, ValidateVisitPayload(payload))

	payload = validPayload()
	payload.ConsentGiven = false
	assert.Equal(t, []string{"consentGiven"}, ValidateVisitPayload(payload))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []string{"fullName", "mobile"}}
	assert.Equal(t, "Missing required fields: fullName, mobile", err.Error())
}

func TestParseVisitDate(t *testing.T) {
	parsed, ok := ParseVisitDate("2026-08-31")
	require.True(t, ok)
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, time.August, parsed.Month())

	_, ok = ParseVisitDate("2026-08-31T09:30:00Z")
	assert.True(t, ok)

	_, ok = ParseVisitDate("31/08/2026")
	assert.False(t, ok)
	_, ok = ParseVisitDate("")
	assert.False(t, ok)
}

func TestEscapeLikePattern(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"avery", "avery"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`a\b`, `a\\b`},
		{`%_\`, `\%\_\\`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EscapeLikePattern(tc.input), "input=%q", tc.input)
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultQueryLimit, ClampLimit(0))
	assert.Equal(t, DefaultQueryLimit, ClampLimit(-5))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 200, ClampLimit(200))
	assert.Equal(t, MaxQueryLimit, ClampLimit(500))
	assert.Equal(t, MaxQueryLimit, ClampLimit(9999))
}

func TestRangeStart(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 45, 12, 0, time.Local)

	start := RangeStart("today", now)
	require.NotNil(t, start)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local), *start)

	// 7d含当天，往前推6天
	start = RangeStart("7d", now)
	require.NotNil(t, start)
	assert.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.Local), *start)

	start = RangeStart("30d", now)
	require.NotNil(t, start)
	assert.Equal(t, time.Date(2026, 8, 2, 0, 0, 0, 0, time.Local), *start)

	assert.Nil(t, RangeStart("all", now))
	assert.Nil(t, RangeStart("", now))
	assert.Nil(t, RangeStart("yesterday", now))
}
