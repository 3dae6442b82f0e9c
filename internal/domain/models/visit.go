package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// VisitStatus represents the gate decision on a visit record
type VisitStatus string

const (
	VisitStatusPending VisitStatus = "pending"
	VisitStatusAllowed VisitStatus = "allowed"
	VisitStatusBlocked VisitStatus = "blocked"
)

// HealthStatus 健康问卷的汇总标记
const (
	HealthStatusClear   = "clear"
	HealthStatusReview  = "review"
	HealthStatusBlocked = "blocked"
)

// HealthQuestions 健康问卷的固定问题集
var HealthQuestions = []string{
	"Diarrhea",
	"Vomiting",
	"Influenza",
	"Ear, Nose, Throat infections",
	"Skin rashes",
	"Recurring boils",
}

// HealthAnswerSet maps health questionnaire questions to yes/no answers.
// Stored as a JSON column on the visits table.
type HealthAnswerSet map[string]bool

// Alert 只要有一项为true即触发健康警示
func (h HealthAnswerSet) Alert() bool {
	for _, answered := range h {
		if answered {
			return true
		}
	}
	return false
}

// Value 实现 driver.Valuer，序列化为JSON存储
func (h HealthAnswerSet) Value() (driver.Value, error) {
	if h == nil {
		return "{}", nil
	}
	data, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan 实现 sql.Scanner，从JSON列反序列化
func (h *HealthAnswerSet) Scan(value interface{}) error {
	if value == nil {
		*h = HealthAnswerSet{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for HealthAnswerSet")
	}

	if len(data) == 0 {
		*h = HealthAnswerSet{}
		return nil
	}
	return json.Unmarshal(data, h)
}

// VisitRecord represents a persisted visitor check-in
type VisitRecord struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	FullName       string          `gorm:"type:varchar(120);not null;index" json:"full_name"`
	Mobile         string          `gorm:"type:varchar(40);not null;index" json:"mobile"`
	Company        *string         `gorm:"type:varchar(120)" json:"company"`
	VisitType      string          `gorm:"type:varchar(60)" json:"visit_type"`
	HostName       string          `gorm:"type:varchar(120)" json:"host_name"`
	Purpose        string          `gorm:"type:varchar(120);index" json:"purpose"`
	PurposeNotes   *string         `gorm:"type:varchar(255)" json:"purpose_notes,omitempty"`
	EntryLane      string          `gorm:"type:varchar(60)" json:"entry_lane"`
	Priority       int             `json:"priority"`
	EscortRequired bool            `json:"escort_required"`
	SmsUpdates     bool            `json:"sms_updates"`
	HealthAnswers  HealthAnswerSet `gorm:"type:json" json:"health_answers"`
	HealthStatus   string          `gorm:"type:varchar(20);default:'clear';index" json:"health_status"`
	SelfieRef      *string         `gorm:"column:selfie_url;type:varchar(255)" json:"selfie_url"`
	ConsentGiven   bool            `json:"consent_given"`
	Status         string          `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	VisitDate      time.Time       `json:"visit_date"`
}

// TableName 指定表名
func (VisitRecord) TableName() string {
	return "visits"
}

// NormalizeStatus maps any stored status value onto the three display
// labels. Unknown or empty values fall back to Pending.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "allowed":
		return "Allowed"
	case "blocked":
		return "Blocked"
	default:
		return "Pending"
	}
}

// VisitPayload 访客登记提交的请求体
type VisitPayload struct {
	FullName       string          `json:"fullName"`
	Mobile         string          `json:"mobile"`
	Company        string          `json:"company"`
	VisitType      string          `json:"visitType"`
	HostName       string          `json:"hostName"`
	Purpose        string          `json:"purpose"`
	PurposeNotes   string          `json:"purposeNotes"`
	EntryLane      string          `json:"entryLane"`
	Priority       int             `json:"priority"`
	EscortRequired bool            `json:"escortRequired"`
	SmsUpdates     bool            `json:"smsUpdates"`
	HealthAnswers  HealthAnswerSet `json:"healthAnswers"`
	SelfieDataURL  string          `json:"selfieDataUrl"`
	ConsentGiven   bool            `json:"consentGiven"`
	Date           string          `json:"date"`
	Status         string          `json:"status"`
}
