package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"allowed", "Allowed"},
		{"ALLOWED", "Allowed"},
		{" Allowed ", "Allowed"},
		{"blocked", "Blocked"},
		{"Blocked", "Blocked"},
		{"pending", "Pending"},
		{"", "Pending"},
		{"unknown", "Pending"}, // 未知状态一律回退到Pending
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeStatus(tc.input), "input=%q", tc.input)
	}
}

func TestHealthAnswerSetAlert(t *testing.T) {
	assert.False(t, HealthAnswerSet(nil).Alert())
	assert.False(t, HealthAnswerSet{"Diarrhea": false, "Vomiting": false}.Alert())
	assert.True(t, HealthAnswerSet{"Diarrhea": false, "Skin rashes": true}.Alert())
}

func TestHealthAnswerSetValueScan(t *testing.T) {
	answers := HealthAnswerSet{"Influenza": true, "Vomiting": false}

	value, err := answers.Value()
	require.NoError(t, err)

	var restored HealthAnswerSet
	require.NoError(t, restored.Scan(value))
	assert.Equal(t, answers, restored)

	// nil集合存为空对象
	value, err = HealthAnswerSet(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", value)

	// NULL列读回空集合
	var fromNull HealthAnswerSet
	require.NoError(t, fromNull.Scan(nil))
	assert.Empty(t, fromNull)

	assert.Error(t, restored.Scan(123))
}
