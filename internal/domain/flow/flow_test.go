package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepulse-http-service/internal/domain/models"
)

func strPtr(s string) *string { return &s }

// completeFlow 填满所有门槛分区
func completeFlow(t *testing.T) *Flow {
	t.Helper()
	f := New()
	require.NoError(t, f.UpdateIdentity(IdentityPatch{FullName: strPtr("Avery"), Mobile: strPtr("555-0100")}))
	require.NoError(t, f.UpdateVisitDetails(VisitDetailsPatch{MeetingWith: strPtr("Dev Singh")}))
	require.NoError(t, f.UpdateSelfie("data:image/jpeg;base64,ZmFrZQ=="))
	require.NoError(t, f.UpdateConsent(true))
	return f
}

type fakeInserter struct {
	id    uint
	err   error
	calls int
}

func (f *fakeInserter) InsertVisit(_ context.Context, _ *models.VisitPayload) (uint, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.id, nil
}

func TestSectionCompletion(t *testing.T) {
	f := New()

	assert.False(t, f.SectionComplete(SectionIdentity))
	assert.False(t, f.SectionComplete(SectionVisitDetails))
	assert.True(t, f.SectionComplete(SectionHealth)) // 健康问卷无必填项
	assert.False(t, f.SectionComplete(SectionSelfie))
	assert.False(t, f.SectionComplete(SectionConsent))

	// 空白字符不算填写
	require.NoError(t, f.UpdateIdentity(IdentityPatch{FullName: strPtr("   "), Mobile: strPtr("555-0100")}))
	assert.False(t, f.SectionComplete(SectionIdentity))

	require.NoError(t, f.UpdateIdentity(IdentityPatch{FullName: strPtr("Avery")}))
	assert.True(t, f.SectionComplete(SectionIdentity))
}

func TestVisitDetailsRequireOtherPurposeNotes(t *testing.T) {
	f := New()
	require.NoError(t, f.UpdateVisitDetails(VisitDetailsPatch{MeetingWith: strPtr("Dev Singh")}))
	assert.True(t, f.SectionComplete(SectionVisitDetails))

	require.NoError(t, f.UpdateVisitDetails(VisitDetailsPatch{Purpose: strPtr("Other")}))
	assert.False(t, f.SectionComplete(SectionVisitDetails))

	require.NoError(t, f.UpdateVisitDetails(VisitDetailsPatch{OtherPurpose: strPtr("Vendor drop")}))
	assert.True(t, f.SectionComplete(SectionVisitDetails))
}

func TestCompletionPercentMonotonic(t *testing.T) {
	f := New()
	previous := f.CompletionPercent()
	assert.Equal(t, 0, previous)

	steps := []func(){
		func() { _ = f.UpdateIdentity(IdentityPatch{FullName: strPtr("Avery"), Mobile: strPtr("555-0100")}) },
		func() { _ = f.UpdateVisitDetails(VisitDetailsPatch{MeetingWith: strPtr("Dev Singh")}) },
		func() { _ = f.UpdateSelfie("data:image/jpeg;base64,ZmFrZQ==") },
		func() { _ = f.UpdateConsent(true) },
	}

	for _, step := range steps {
		step()
		percent := f.CompletionPercent()
		assert.GreaterOrEqual(t, percent, previous)
		assert.Zero(t, percent%25, "completion percent must be a multiple of 25")
		previous = percent
	}
	assert.Equal(t, 100, previous)
}

func TestHealthExcludedFromCompletion(t *testing.T) {
	f := completeFlow(t)
	require.NoError(t, f.UpdateHealth("Influenza", true))
	assert.Equal(t, 100, f.CompletionPercent())
}

func TestSmartHintCascade(t *testing.T) {
	f := New()
	assert.Equal(t, SectionIdentity, f.SmartHint().SectionIndex)

	require.NoError(t, f.UpdateIdentity(IdentityPatch{FullName: strPtr("Avery"), Mobile: strPtr("555-0100")}))
	assert.Equal(t, SectionVisitDetails, f.SmartHint().SectionIndex)

	require.NoError(t, f.UpdateVisitDetails(VisitDetailsPatch{MeetingWith: strPtr("Dev Singh")}))
	assert.Equal(t, SectionSelfie, f.SmartHint().SectionIndex)

	require.NoError(t, f.UpdateSelfie("data:image/jpeg;base64,ZmFrZQ=="))
	assert.Equal(t, SectionConsent, f.SmartHint().SectionIndex)

	require.NoError(t, f.UpdateConsent(true))
	hint := f.SmartHint()
	assert.Equal(t, "success", hint.Tone)
	assert.Equal(t, "Ready for the gate", hint.Title)
}

func TestSmartHintPrioritizesHealthAlert(t *testing.T) {
	// 自拍与同意均已完成，健康警示仍优先于就绪提示
	f := completeFlow(t)
	require.NoError(t, f.UpdateHealth("Skin rashes", true))

	hint := f.SmartHint()
	assert.Equal(t, SectionHealth, hint.SectionIndex)
	assert.Equal(t, "Health flags detected", hint.Title)
	assert.True(t, f.HealthAlert())
}

func TestBuildSubmissionPayloadEffectivePurpose(t *testing.T) {
	f := completeFlow(t)
	require.NoError(t, f.UpdateVisitDetails(VisitDetailsPatch{
		Purpose:      strPtr("Other"),
		OtherPurpose: strPtr("  Vendor drop  "),
	}))

	payload, err := f.BuildSubmissionPayload()
	require.NoError(t, err)
	assert.Equal(t, "Vendor drop", payload.Purpose)
	assert.Equal(t, "Vendor drop", payload.PurposeNotes)
	assert.Equal(t, "Other", payload.VisitType)
}

func TestBuildSubmissionPayloadIgnoresStrayOtherPurpose(t *testing.T) {
	f := completeFlow(t)
	require.NoError(t, f.UpdateVisitDetails(VisitDetailsPatch{OtherPurpose: strPtr("stray")}))

	payload, err := f.BuildSubmissionPayload()
	require.NoError(t, err)
	assert.Equal(t, "Meeting", payload.Purpose)
	assert.Empty(t, payload.PurposeNotes)
}

func TestBuildSubmissionPayloadReportsFirstIncompleteSection(t *testing.T) {
	f := New()
	require.NoError(t, f.UpdateConsent(true))

	_, err := f.BuildSubmissionPayload()
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, SectionIdentity, incomplete.SectionIndex)
}

func TestSubmitSuccessIsTerminal(t *testing.T) {
	f := completeFlow(t)
	store := &fakeInserter{id: 42}

	id, err := f.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, StateSubmitted, f.State())

	// 终态拒绝任何修改和重复提交
	assert.ErrorIs(t, f.UpdateConsent(false), ErrFlowSubmitted)
	_, err = f.Submit(context.Background(), store)
	assert.ErrorIs(t, err, ErrFlowSubmitted)
	assert.Equal(t, 1, store.calls)
}

func TestSubmitFailurePreservesStateForRetry(t *testing.T) {
	f := completeFlow(t)
	store := &fakeInserter{err: errors.New("store unavailable")}

	_, err := f.Submit(context.Background(), store)
	require.Error(t, err)
	assert.Equal(t, StateSubmitFailed, f.State())
	assert.Equal(t, "store unavailable", f.FailureMessage())

	// 输入全部保留
	assert.Equal(t, "Avery", f.Identity().FullName)
	assert.True(t, f.AllComplete())

	// 任何编辑回到编辑态
	require.NoError(t, f.UpdateHealth("Vomiting", false))
	assert.Equal(t, StateEditing, f.State())
	assert.Empty(t, f.FailureMessage())

	// 重试成功
	store.err = nil
	store.id = 7
	id, err := f.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}
