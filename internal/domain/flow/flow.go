package flow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gatepulse-http-service/internal/domain/models"
)

// Section indexes of the check-in form, in display order.
const (
	SectionIdentity = iota
	SectionVisitDetails
	SectionHealth
	SectionSelfie
	SectionConsent
	sectionCount
)

// State 登记流程的生命周期状态
type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSubmitted
	StateSubmitFailed
)

// String returns a readable state name for logs.
func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateSubmitFailed:
		return "submit_failed"
	default:
		return "unknown"
	}
}

// ErrFlowSubmitted 已提交的流程拒绝任何进一步的修改
var ErrFlowSubmitted = errors.New("check-in flow already submitted")

// Identity 访客身份信息
type Identity struct {
	FullName       string
	Mobile         string
	Company        string
	EscortRequired bool
	AlertsOptIn    bool
}

// VisitDetails 来访详情
type VisitDetails struct {
	Purpose      string
	OtherPurpose string
	MeetingWith  string
	EntryLane    string
	Priority     int
	Date         time.Time
}

// IdentityPatch 身份信息的部分更新，nil字段保持不变
type IdentityPatch struct {
	FullName       *string
	Mobile         *string
	Company        *string
	EscortRequired *bool
	AlertsOptIn    *bool
}

// VisitDetailsPatch 来访详情的部分更新，nil字段保持不变
type VisitDetailsPatch struct {
	Purpose      *string
	OtherPurpose *string
	MeetingWith  *string
	EntryLane    *string
	Priority     *int
	Date         *time.Time
}

// Hint is the single next actionable item shown to the visitor.
type Hint struct {
	Title        string `json:"title"`
	Detail       string `json:"detail"`
	SectionIndex int    `json:"section_index"`
	Tone         string `json:"tone"`
	ButtonLabel  string `json:"button_label"`
}

// Inserter persists a finished submission and returns the new record id.
type Inserter interface {
	InsertVisit(ctx context.Context, payload *models.VisitPayload) (uint, error)
}

// Flow holds the mutable state of one visitor check-in session. It is
// not safe for concurrent use; each kiosk session owns exactly one Flow.
type Flow struct {
	identity      Identity
	visitDetails  VisitDetails
	health        models.HealthAnswerSet
	selfie        string // base64 data URL, empty means no snapshot
	consent       bool
	activeSection int
	state         State
	failMessage   string
}

// New 创建一个带默认值的登记流程
func New() *Flow {
	health := make(models.HealthAnswerSet, len(models.HealthQuestions))
	for _, question := range models.HealthQuestions {
		health[question] = false
	}

	return &Flow{
		identity: Identity{
			AlertsOptIn: true,
		},
		visitDetails: VisitDetails{
			Purpose:   "Meeting",
			EntryLane: "North Gate",
			Priority:  48,
			Date:      time.Now(),
		},
		health: health,
		state:  StateEditing,
	}
}

// State 当前生命周期状态
func (f *Flow) State() State {
	return f.state
}

// FailureMessage 上一次提交失败的原因，仅在 StateSubmitFailed 下有值
func (f *Flow) FailureMessage() string {
	return f.failMessage
}

// ActiveSection 当前光标所在分区
func (f *Flow) ActiveSection() int {
	return f.activeSection
}

// SetActiveSection 移动光标；越界值被忽略
func (f *Flow) SetActiveSection(index int) {
	if index < 0 || index >= sectionCount {
		return
	}
	f.activeSection = index
}

// beginEdit 提交失败后任何编辑都回到编辑态；已提交则拒绝
func (f *Flow) beginEdit() error {
	switch f.state {
	case StateSubmitted:
		return ErrFlowSubmitted
	case StateSubmitFailed:
		f.state = StateEditing
		f.failMessage = ""
	}
	return nil
}

// UpdateIdentity 浅合并身份信息
func (f *Flow) UpdateIdentity(patch IdentityPatch) error {
	if err := f.beginEdit(); err != nil {
		return err
	}
	if patch.FullName != nil {
		f.identity.FullName = *patch.FullName
	}
	if patch.Mobile != nil {
		f.identity.Mobile = *patch.Mobile
	}
	if patch.Company != nil {
		f.identity.Company = *patch.Company
	}
	if patch.EscortRequired != nil {
		f.identity.EscortRequired = *patch.EscortRequired
	}
	if patch.AlertsOptIn != nil {
		f.identity.AlertsOptIn = *patch.AlertsOptIn
	}
	return nil
}

// UpdateVisitDetails 浅合并来访详情
func (f *Flow) UpdateVisitDetails(patch VisitDetailsPatch) error {
	if err := f.beginEdit(); err != nil {
		return err
	}
	if patch.Purpose != nil {
		f.visitDetails.Purpose = *patch.Purpose
	}
	if patch.OtherPurpose != nil {
		f.visitDetails.OtherPurpose = *patch.OtherPurpose
	}
	if patch.MeetingWith != nil {
		f.visitDetails.MeetingWith = *patch.MeetingWith
	}
	if patch.EntryLane != nil {
		f.visitDetails.EntryLane = *patch.EntryLane
	}
	if patch.Priority != nil {
		f.visitDetails.Priority = *patch.Priority
	}
	if patch.Date != nil {
		f.visitDetails.Date = *patch.Date
	}
	return nil
}

// UpdateHealth 记录单个健康问题的回答
func (f *Flow) UpdateHealth(question string, answer bool) error {
	if err := f.beginEdit(); err != nil {
		return err
	}
	f.health[question] = answer
	return nil
}

// UpdateSelfie 设置或清除自拍快照（base64 data URL）
func (f *Flow) UpdateSelfie(snapshot string) error {
	if err := f.beginEdit(); err != nil {
		return err
	}
	f.selfie = snapshot
	return nil
}

// UpdateConsent 设置同意标记
func (f *Flow) UpdateConsent(value bool) error {
	if err := f.beginEdit(); err != nil {
		return err
	}
	f.consent = value
	return nil
}

// Identity 当前身份信息快照
func (f *Flow) Identity() Identity {
	return f.identity
}

// VisitDetails 当前来访详情快照
func (f *Flow) VisitDetails() VisitDetails {
	return f.visitDetails
}

// HealthAlert 健康问卷是否触发警示
func (f *Flow) HealthAlert() bool {
	return f.health.Alert()
}

// SectionComplete reports whether the given section gates submission and
// is currently satisfied. Health never gates; it is informational only.
func (f *Flow) SectionComplete(index int) bool {
	switch index {
	case SectionIdentity:
		return strings.TrimSpace(f.identity.FullName) != "" &&
			strings.TrimSpace(f.identity.Mobile) != ""
	case SectionVisitDetails:
		if strings.TrimSpace(f.visitDetails.MeetingWith) == "" {
			return false
		}
		if f.visitDetails.Purpose == "Other" && strings.TrimSpace(f.visitDetails.OtherPurpose) == "" {
			return false
		}
		return true
	case SectionHealth:
		// 健康问卷没有必填项
		return true
	case SectionSelfie:
		return f.selfie != ""
	case SectionConsent:
		return f.consent
	default:
		return false
	}
}

// gatingSections 参与完成度和提交门槛的分区（健康问卷除外）
var gatingSections = []int{SectionIdentity, SectionVisitDetails, SectionSelfie, SectionConsent}

// CompletionPercent 完成度百分比，健康分区不计入
func (f *Flow) CompletionPercent() int {
	complete := 0
	for _, section := range gatingSections {
		if f.SectionComplete(section) {
			complete++
		}
	}
	return int(math.Round(float64(complete) / float64(len(gatingSections)) * 100))
}

// AllComplete 所有门槛分区均已完成
func (f *Flow) AllComplete() bool {
	for _, section := range gatingSections {
		if !f.SectionComplete(section) {
			return false
		}
	}
	return true
}

// FirstIncompleteSection 最小下标的未完成门槛分区
func (f *Flow) FirstIncompleteSection() (int, bool) {
	for _, section := range gatingSections {
		if !f.SectionComplete(section) {
			return section, true
		}
	}
	return 0, false
}

// hintRule 规则表的一行：条件成立时产出对应提示
type hintRule struct {
	applies func(*Flow) bool
	hint    Hint
}

// 提示按固定优先级自上而下求值：身份 → 来访详情 → 健康警示 → 自拍 → 同意 → 就绪
var hintRules = []hintRule{
	{
		applies: func(f *Flow) bool { return !f.SectionComplete(SectionIdentity) },
		hint: Hint{
			Title:        "Identity incomplete",
			Detail:       "Add your full name and mobile so the gate team can issue a badge instantly.",
			SectionIndex: SectionIdentity,
			Tone:         "warning",
			ButtonLabel:  "Finish identity",
		},
	},
	{
		applies: func(f *Flow) bool { return !f.SectionComplete(SectionVisitDetails) },
		hint: Hint{
			Title:        "Visit details pending",
			Detail:       "Select a host, purpose, and entry lane before moving forward.",
			SectionIndex: SectionVisitDetails,
			Tone:         "warning",
			ButtonLabel:  "Describe visit",
		},
	},
	{
		applies: func(f *Flow) bool { return f.HealthAlert() },
		hint: Hint{
			Title:        "Health flags detected",
			Detail:       "An alert was raised. HACCP may review before granting access.",
			SectionIndex: SectionHealth,
			Tone:         "warning",
			ButtonLabel:  "Review health",
		},
	},
	{
		applies: func(f *Flow) bool { return !f.SectionComplete(SectionSelfie) },
		hint: Hint{
			Title:        "Selfie missing",
			Detail:       "Capture your photo so the security team can confirm your identity.",
			SectionIndex: SectionSelfie,
			Tone:         "info",
			ButtonLabel:  "Grab selfie",
		},
	},
	{
		applies: func(f *Flow) bool { return !f.SectionComplete(SectionConsent) },
		hint: Hint{
			Title:        "Consent required",
			Detail:       "Authorize data usage to unlock the submit control.",
			SectionIndex: SectionConsent,
			Tone:         "info",
			ButtonLabel:  "Grant consent",
		},
	},
}

// readyHint 终态提示
var readyHint = Hint{
	Title:        "Ready for the gate",
	Detail:       "All sections are aligned. Hit submit when ready.",
	SectionIndex: SectionConsent,
	Tone:         "success",
	ButtonLabel:  "Submit now",
}

// SmartHint 返回当前最优先的下一步提示，纯函数，不记忆历史
func (f *Flow) SmartHint() Hint {
	for _, rule := range hintRules {
		if rule.applies(f) {
			return rule.hint
		}
	}
	return readyHint
}

// IncompleteError 提交被拒时携带应跳回的分区
type IncompleteError struct {
	SectionIndex int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("check-in incomplete: section %d requires input", e.SectionIndex)
}

// BuildSubmissionPayload normalizes the section state into the wire
// payload. It fails when any gating section is incomplete; the caller
// routes the visitor back to the reported section.
func (f *Flow) BuildSubmissionPayload() (*models.VisitPayload, error) {
	if section, ok := f.FirstIncompleteSection(); ok {
		return nil, &IncompleteError{SectionIndex: section}
	}

	otherPurpose := strings.TrimSpace(f.visitDetails.OtherPurpose)
	purpose := f.visitDetails.Purpose
	if purpose == "Other" && otherPurpose != "" {
		purpose = otherPurpose
	}

	payload := &models.VisitPayload{
		FullName:       strings.TrimSpace(f.identity.FullName),
		Mobile:         strings.TrimSpace(f.identity.Mobile),
		Company:        strings.TrimSpace(f.identity.Company),
		VisitType:      f.visitDetails.Purpose,
		HostName:       strings.TrimSpace(f.visitDetails.MeetingWith),
		Purpose:        purpose,
		EntryLane:      f.visitDetails.EntryLane,
		Priority:       f.visitDetails.Priority,
		EscortRequired: f.identity.EscortRequired,
		SmsUpdates:     f.identity.AlertsOptIn,
		HealthAnswers:  make(models.HealthAnswerSet, len(f.health)),
		SelfieDataURL:  f.selfie,
		ConsentGiven:   f.consent,
		Date:           f.visitDetails.Date.Format(time.RFC3339),
		Status:         string(models.VisitStatusPending),
	}
	if f.visitDetails.Purpose == "Other" {
		payload.PurposeNotes = otherPurpose
	}
	for question, answer := range f.health {
		payload.HealthAnswers[question] = answer
	}

	return payload, nil
}

// Submit runs the single atomic store call. On success the flow becomes
// terminal; on failure all entered state is preserved for a retry.
func (f *Flow) Submit(ctx context.Context, store Inserter) (uint, error) {
	if f.state == StateSubmitted {
		return 0, ErrFlowSubmitted
	}

	payload, err := f.BuildSubmissionPayload()
	if err != nil {
		return 0, err
	}

	f.state = StateSubmitting
	id, err := store.InsertVisit(ctx, payload)
	if err != nil {
		f.state = StateSubmitFailed
		f.failMessage = err.Error()
		return 0, err
	}

	f.state = StateSubmitted
	f.failMessage = ""
	return id, nil
}
