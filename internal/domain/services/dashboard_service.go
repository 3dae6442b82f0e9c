package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"gatepulse-http-service/internal/domain/models"
	"gatepulse-http-service/internal/infrastructure/config"
	"gatepulse-http-service/pkg/logger"
)

const (
	// LiveStreamSize 实时动态流的条数上限
	LiveStreamSize = 20
	// trendScanLimit 趋势查询扫描的记录上限
	trendScanLimit = 10000
	// dashboardCacheKey 看板响应的Redis缓存键
	dashboardCacheKey = "dashboard:response"
	// dashboardCacheTTL 看板响应的缓存时长
	dashboardCacheTTL = 5 * time.Second
)

// DashboardKpis 当日关键指标
type DashboardKpis struct {
	TotalToday         int64   `json:"total_today"`
	AllowedToday       int64   `json:"allowed_today"`
	PendingToday       int64   `json:"pending_today"`
	BlockedToday       int64   `json:"blocked_today"`
	ReviewToday        int64   `json:"review_today"`
	HealthBlockedToday int64   `json:"health_blocked_today"`
	GateReadinessPct   float64 `json:"gate_readiness_pct"`
}

// LiveStreamItem 实时动态流中的一条记录，状态已归一化
type LiveStreamItem struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Purpose      string    `json:"purpose"`
	HealthStatus string    `json:"health_status"`
	Time         string    `json:"time"`
	CreatedAt    time.Time `json:"created_at"`
}

// TrendPoint 小时趋势中的一个桶
type TrendPoint struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// DashboardResponse 看板接口的完整响应
type DashboardResponse struct {
	Kpis       DashboardKpis    `json:"kpis"`
	LiveStream []LiveStreamItem `json:"live_stream"`
	Trend      []TrendPoint     `json:"trend"`
}

// InterfaceDashboardService defines the dashboard aggregation service interface
type InterfaceDashboardService interface {
	GetDashboard(ctx context.Context) (*DashboardResponse, error)
}

// DashboardService 聚合当日访客数据供管理看板使用
type DashboardService struct {
	DB     *gorm.DB
	Config *config.Config
	Redis  InterfaceRedisService // 可为nil，此时不做缓存
}

// NewDashboardService 创建一个新的看板服务
func NewDashboardService(db *gorm.DB, cfg *config.Config, redisService InterfaceRedisService) InterfaceDashboardService {
	return &DashboardService{
		DB:     db,
		Config: cfg,
		Redis:  redisService,
	}
}

// GetDashboard computes the same-day KPI counts, the live stream and the
// hourly trend. Any failing step aborts the whole response; no partial
// KPI object is ever returned.
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	// 短TTL缓存，Redis不可用时直接透传
	if s.Redis != nil {
		var cached DashboardResponse
		if err := s.Redis.Get(dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	todayStart := StartOfDay(time.Now())

	totalToday, err := s.countVisits(ctx, todayStart, "", "")
	if err != nil {
		return nil, err
	}
	allowedToday, err := s.countVisits(ctx, todayStart, "status", string(models.VisitStatusAllowed))
	if err != nil {
		return nil, err
	}
	pendingToday, err := s.countVisits(ctx, todayStart, "status", string(models.VisitStatusPending))
	if err != nil {
		return nil, err
	}
	blockedToday, err := s.countVisits(ctx, todayStart, "status", string(models.VisitStatusBlocked))
	if err != nil {
		return nil, err
	}
	reviewToday, err := s.countVisits(ctx, todayStart, "health_status", models.HealthStatusReview)
	if err != nil {
		return nil, err
	}
	healthBlockedToday, err := s.countVisits(ctx, todayStart, "health_status", models.HealthStatusBlocked)
	if err != nil {
		return nil, err
	}

	liveStream, err := s.fetchLiveStream(ctx)
	if err != nil {
		return nil, err
	}

	trend, err := s.fetchTrend(ctx, todayStart)
	if err != nil {
		return nil, err
	}

	response := &DashboardResponse{
		Kpis: DashboardKpis{
			TotalToday:         totalToday,
			AllowedToday:       allowedToday,
			PendingToday:       pendingToday,
			BlockedToday:       blockedToday,
			ReviewToday:        reviewToday,
			HealthBlockedToday: healthBlockedToday,
			GateReadinessPct:   GateReadinessPct(totalToday, allowedToday),
		},
		LiveStream: liveStream,
		Trend:      trend,
	}

	if s.Redis != nil {
		if err := s.Redis.Set(dashboardCacheKey, response, dashboardCacheTTL); err != nil {
			logger.Warning("看板响应缓存失败: %v", err)
		}
	}

	return response, nil
}

// countVisits 统计当日符合条件的记录数
func (s *DashboardService) countVisits(ctx context.Context, todayStart time.Time, column, value string) (int64, error) {
	query := s.DB.WithContext(ctx).
		Model(&models.VisitRecord{}).
		Where("created_at >= ?", todayStart)

	if column != "" {
		query = query.Where(column+" = ?", value)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计访客数量失败: %w", err)
	}
	return count, nil
}

// fetchLiveStream 最近登记的访客，按创建时间倒序
func (s *DashboardService) fetchLiveStream(ctx context.Context) ([]LiveStreamItem, error) {
	var records []models.VisitRecord
	if err := s.DB.WithContext(ctx).
		Select("id", "full_name", "purpose", "status", "health_status", "created_at").
		Order("created_at DESC").
		Limit(LiveStreamSize).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询实时动态失败: %w", err)
	}

	items := make([]LiveStreamItem, len(records))
	for i, record := range records {
		items[i] = ProjectLiveItem(record)
	}
	return items, nil
}

// fetchTrend 当日记录的到达时间，升序扫描后按小时分桶
func (s *DashboardService) fetchTrend(ctx context.Context, todayStart time.Time) ([]TrendPoint, error) {
	var arrivals []time.Time
	if err := s.DB.WithContext(ctx).
		Model(&models.VisitRecord{}).
		Where("created_at >= ?", todayStart).
		Order("created_at ASC").
		Limit(trendScanLimit).
		Pluck("created_at", &arrivals).Error; err != nil {
		return nil, fmt.Errorf("查询到达趋势失败: %w", err)
	}

	return BuildHourlyTrend(arrivals), nil
}

// StartOfDay 本地时区的当天零点
func StartOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// GateReadinessPct 当日Allowed占比，保留两位小数；无记录时为0
func GateReadinessPct(total, allowed int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(allowed)/float64(total)*10000) / 100
}

// BuildHourlyTrend buckets arrival times into 24 fixed hour labels
// "00:00".."23:00" in the local timezone. Zero-value times are skipped;
// bucket order is independent of input order.
func BuildHourlyTrend(arrivals []time.Time) []TrendPoint {
	points := make([]TrendPoint, 24)
	for hour := 0; hour < 24; hour++ {
		points[hour] = TrendPoint{Hour: fmt.Sprintf("%02d:00", hour)}
	}

	for _, arrival := range arrivals {
		if arrival.IsZero() {
			continue
		}
		points[arrival.Local().Hour()].Count++
	}
	return points
}

// ProjectLiveItem 将访客记录投影为动态流条目，缺省值按展示约定填充
func ProjectLiveItem(record models.VisitRecord) LiveStreamItem {
	purpose := record.Purpose
	if purpose == "" {
		purpose = "Standby"
	}

	return LiveStreamItem{
		ID:           record.ID,
		Name:         record.FullName,
		Status:       models.NormalizeStatus(record.Status),
		Purpose:      purpose,
		HealthStatus: record.HealthStatus,
		Time:         record.CreatedAt.Format("03:04 PM"),
		CreatedAt:    record.CreatedAt,
	}
}
