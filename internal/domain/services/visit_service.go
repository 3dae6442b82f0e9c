package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"gatepulse-http-service/internal/domain/models"
	"gatepulse-http-service/internal/infrastructure/config"
	"gatepulse-http-service/pkg/logger"
)

const (
	// DefaultQueryLimit 未指定limit时的默认返回条数
	DefaultQueryLimit = 50
	// MaxQueryLimit limit参数的硬上限
	MaxQueryLimit = 500
)

// ValidationError 提交缺少必填字段
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// AssetError 自拍资产处理失败，登记整体中止
type AssetError struct {
	Err error
}

func (e *AssetError) Error() string {
	return e.Err.Error()
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// VisitQueryParams 管理端访客查询参数
type VisitQueryParams struct {
	Q       string
	Status  string
	Purpose string
	Range   string
	Limit   int
}

// AdminVisit 查询结果行，附带解析后的自拍展示URL
type AdminVisit struct {
	models.VisitRecord
	SelfieDisplayURL *string `json:"selfie_display_url"`
}

// InterfaceVisitService defines the visit record service interface
type InterfaceVisitService interface {
	CreateVisit(ctx context.Context, payload *models.VisitPayload) (*models.VisitRecord, error)
	InsertVisit(ctx context.Context, payload *models.VisitPayload) (uint, error)
	QueryVisits(ctx context.Context, params VisitQueryParams) ([]AdminVisit, error)
}

// VisitService 提供访客记录相关的服务
type VisitService struct {
	DB        *gorm.DB
	Config    *config.Config
	Storage   InterfaceStorageService
	GateEvent InterfaceGateEventService
}

// NewVisitService 创建一个新的访客记录服务
func NewVisitService(db *gorm.DB, cfg *config.Config, storage InterfaceStorageService, gateEvent InterfaceGateEventService) InterfaceVisitService {
	return &VisitService{
		DB:        db,
		Config:    cfg,
		Storage:   storage,
		GateEvent: gateEvent,
	}
}

// requiredPayloadFields 必填字段及其取值函数，字段名与请求体一致
var requiredPayloadFields = []struct {
	name  string
	blank func(*models.VisitPayload) bool
}{
	{"fullName", func(p *models.VisitPayload) bool { return strings.TrimSpace(p.FullName) == "" }},
	{"mobile", func(p *models.VisitPayload) bool { return strings.TrimSpace(p.Mobile) == "" }},
	{"visitType", func(p *models.VisitPayload) bool { return strings.TrimSpace(p.VisitType) == "" }},
	{"hostName", func(p *models.VisitPayload) bool { return strings.TrimSpace(p.HostName) == "" }},
	{"purpose", func(p *models.VisitPayload) bool { return strings.TrimSpace(p.Purpose) == "" }},
	{"entryLane", func(p *models.VisitPayload) bool { return strings.TrimSpace(p.EntryLane) == "" }},
	{"date", func(p *models.VisitPayload) bool { return strings.TrimSpace(p.Date) == "" }},
	{"consentGiven", func(p *models.VisitPayload) bool { return !p.ConsentGiven }},
}

// ValidateVisitPayload 返回缺失的必填字段名，按声明顺序
func ValidateVisitPayload(payload *models.VisitPayload) []string {
	var missing []string
	for _, field := range requiredPayloadFields {
		if field.blank(payload) {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// ParseVisitDate 解析来访日期，失败时返回false
func ParseVisitDate(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// 1 CreateVisit validates the payload, persists the selfie when one was
// supplied and inserts the record. An asset failure aborts the whole
// submission; no record is written without its selfie.
func (s *VisitService) CreateVisit(ctx context.Context, payload *models.VisitPayload) (*models.VisitRecord, error) {
	if missing := ValidateVisitPayload(payload); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	// 自拍先落盘，失败则整体中止
	var selfieRef *string
	if payload.SelfieDataURL != "" {
		ref, err := s.Storage.SaveSelfie(payload.SelfieDataURL)
		if err != nil {
			return nil, &AssetError{Err: err}
		}
		selfieRef = &ref
	}

	visitDate, ok := ParseVisitDate(payload.Date)
	if !ok {
		visitDate = time.Now()
	}

	status := strings.ToLower(strings.TrimSpace(payload.Status))
	if status == "" {
		status = string(models.VisitStatusPending)
	}

	healthAnswers := payload.HealthAnswers
	if healthAnswers == nil {
		healthAnswers = models.HealthAnswerSet{}
	}
	healthStatus := models.HealthStatusClear
	if healthAnswers.Alert() {
		healthStatus = models.HealthStatusReview
	}

	record := &models.VisitRecord{
		FullName:       strings.TrimSpace(payload.FullName),
		Mobile:         strings.TrimSpace(payload.Mobile),
		Company:        optionalString(payload.Company),
		VisitType:      strings.TrimSpace(payload.VisitType),
		HostName:       strings.TrimSpace(payload.HostName),
		Purpose:        strings.TrimSpace(payload.Purpose),
		PurposeNotes:   optionalString(payload.PurposeNotes),
		EntryLane:      strings.TrimSpace(payload.EntryLane),
		Priority:       payload.Priority,
		EscortRequired: payload.EscortRequired,
		SmsUpdates:     payload.SmsUpdates,
		HealthAnswers:  healthAnswers,
		HealthStatus:   healthStatus,
		SelfieRef:      selfieRef,
		ConsentGiven:   payload.ConsentGiven,
		Status:         status,
		VisitDate:      visitDate,
	}

	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("保存访客记录失败: %w", err)
	}

	// 登记事件广播是尽力而为的，失败不影响登记结果
	if s.GateEvent != nil {
		if err := s.GateEvent.PublishVisitCheckedIn(record); err != nil {
			logger.Warning("登记事件发布失败: %v", err)
		}
	}

	return record, nil
}

// 2 InsertVisit 插入一条访客记录并返回ID
func (s *VisitService) InsertVisit(ctx context.Context, payload *models.VisitPayload) (uint, error) {
	record, err := s.CreateVisit(ctx, payload)
	if err != nil {
		return 0, err
	}
	return record.ID, nil
}

// 3 QueryVisits 按条件查询访客记录，按创建时间倒序，附带自拍展示URL
func (s *VisitService) QueryVisits(ctx context.Context, params VisitQueryParams) ([]AdminVisit, error) {
	query := s.DB.WithContext(ctx).Model(&models.VisitRecord{})

	// 自由文本搜索：姓名或手机号的子串匹配，通配符需转义
	if q := strings.TrimSpace(params.Q); q != "" {
		pattern := "%" + EscapeLikePattern(q) + "%"
		query = query.Where("full_name LIKE ? OR mobile LIKE ?", pattern, pattern)
	}

	if params.Status != "" && params.Status != "all" {
		query = query.Where("status = ?", strings.ToLower(params.Status))
	}

	if params.Purpose != "" && params.Purpose != "all" {
		query = query.Where("purpose = ?", params.Purpose)
	}

	if start := RangeStart(params.Range, time.Now()); start != nil {
		query = query.Where("created_at >= ?", *start)
	}

	var records []models.VisitRecord
	if err := query.
		Order("created_at DESC").
		Limit(ClampLimit(params.Limit)).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询访客记录失败: %w", err)
	}

	// 自拍URL解析相互独立，可以并发执行，结果按行回填
	results := make([]AdminVisit, len(records))
	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			row := AdminVisit{VisitRecord: records[i]}
			row.Status = models.NormalizeStatus(row.Status)
			if records[i].SelfieRef != nil {
				row.SelfieDisplayURL = s.Storage.ResolveDisplayURL(*records[i].SelfieRef)
			}
			results[i] = row
		}(i)
	}
	wg.Wait()

	return results, nil
}

// EscapeLikePattern 转义LIKE模式中的通配符，保证字面匹配
func EscapeLikePattern(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// ClampLimit 将limit收敛到 [1, MaxQueryLimit]，0或负值取默认
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}

// RangeStart 返回时间范围的下界（当天本地零点向前推算），无下界时返回nil
func RangeStart(rangeKey string, now time.Time) *time.Time {
	var daysBack int
	switch strings.ToLower(rangeKey) {
	case "today":
		daysBack = 0
	case "7d":
		daysBack = 6
	case "30d":
		daysBack = 29
	default:
		return nil
	}

	day := now.AddDate(0, 0, -daysBack)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	return &start
}

// optionalString 空白字符串存为NULL
func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
