package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepulse-http-service/internal/domain/models"
)

func TestStartOfDay(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 59, 59, 999, time.Local)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local), StartOfDay(now))
}

func TestGateReadinessPct(t *testing.T) {
	// 无记录时为0，不做除法
	assert.Equal(t, float64(0), GateReadinessPct(0, 0))
	assert.Equal(t, float64(30), GateReadinessPct(10, 3))
	assert.Equal(t, float64(100), GateReadinessPct(5, 5))
	// 保留两位小数
	assert.Equal(t, 33.33, GateReadinessPct(3, 1))
	assert.Equal(t, 66.67, GateReadinessPct(3, 2))
}

func TestBuildHourlyTrend(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	arrivals := []time.Time{
		day.Add(9*time.Hour + 5*time.Minute),
		day.Add(9*time.Hour + 50*time.Minute),
		day.Add(14 * time.Hour),
		{}, // 异常时间戳跳过
	}

	trend := BuildHourlyTrend(arrivals)
	require.Len(t, trend, 24)

	// 24个桶固定按小时顺序排列
	assert.Equal(t, "00:00", trend[0].Hour)
	assert.Equal(t, "09:00", trend[9].Hour)
	assert.Equal(t, "23:00", trend[23].Hour)

	assert.Equal(t, 2, trend[9].Count)
	assert.Equal(t, 1, trend[14].Count)

	total := 0
	for _, point := range trend {
		total += point.Count
	}
	assert.Equal(t, 3, total)
}

func TestBuildHourlyTrendEmpty(t *testing.T) {
	trend := BuildHourlyTrend(nil)
	require.Len(t, trend, 24)
	for i, point := range trend {
		assert.Zero(t, point.Count, "hour=%d", i)
	}
}

func TestProjectLiveItem(t *testing.T) {
	createdAt := time.Date(2026, 8, 31, 14, 5, 0, 0, time.Local)
	record := models.VisitRecord{
		ID:           7,
		CreatedAt:    createdAt,
		FullName:     "Avery Quinn",
		Purpose:      "Delivery",
		Status:       "allowed",
		HealthStatus: models.HealthStatusClear,
	}

	item := ProjectLiveItem(record)
	assert.Equal(t, uint(7), item.ID)
	assert.Equal(t, "Avery Quinn", item.Name)
	assert.Equal(t, "Allowed", item.Status)
	assert.Equal(t, "Delivery", item.Purpose)
	assert.Equal(t, "02:05 PM", item.Time)
	assert.Equal(t, createdAt, item.CreatedAt)
}

func TestProjectLiveItemDefaults(t *testing.T) {
	item := ProjectLiveItem(models.VisitRecord{})
	assert.Equal(t, "Pending", item.Status)
	assert.Equal(t, "Standby", item.Purpose) // 无目的时的展示占位
}
