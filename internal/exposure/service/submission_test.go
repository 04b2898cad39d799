package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"shield/internal/exposure/models"
	"shield/internal/exposure/ports"
	"shield/internal/period"
	dErrors "shield/pkg/domain-errors"
)

var testAuth = models.SubmissionAuthKeys{
	ServerPublicKey:  "server-pub",
	ClientPrivateKey: "client-priv",
	ClientPublicKey:  "client-pub",
}

func (s *ServiceSuite) seedDiagnosed() {
	ctx := context.Background()
	s.store.Set(ctx, models.ExposureStatus{
		Type:            models.StatusDiagnosed,
		LastChecked:     &models.LastChecked{Period: 18400, Timestamp: 1},
		CycleStartsAt:   fixedNow.Add(-24 * time.Hour).UnixMilli(),
		CycleEndsAt:     fixedNow.Add(13 * 24 * time.Hour).UnixMilli(),
		NeedsSubmission: true,
	})
	raw, err := json.Marshal(testAuth)
	s.Require().NoError(err)
	s.Require().NoError(s.secure.Set(ctx, secureStorageKey, string(raw)))
}

func (s *ServiceSuite) TestStartKeysSubmissionEntersCycle() {
	ctx := context.Background()
	s.store.Set(ctx, models.ExposureStatus{
		Type:        models.StatusMonitoring,
		LastChecked: &models.LastChecked{Period: 18400, Timestamp: 1},
	})

	s.backend.EXPECT().
		ClaimOneTimeCode(gomock.Any(), "12345678").
		Return(&testAuth, nil)

	s.Require().NoError(s.svc.StartKeysSubmission(ctx, "12345678"))

	st := s.svc.Status()
	s.Equal(models.StatusDiagnosed, st.Type)
	s.True(st.NeedsSubmission)
	s.Nil(st.SubmissionLastCompletedAt)
	s.Equal(fixedNow.UnixMilli(), st.CycleStartsAt)
	s.Equal(fixedNow.Add(14*24*time.Hour).UnixMilli(), st.CycleEndsAt)
	s.Require().NotNil(st.LastChecked)
	s.Equal(period.Period(18400), st.LastChecked.Period)

	raw, err := s.secure.Get(ctx, secureStorageKey)
	s.Require().NoError(err)
	var stored models.SubmissionAuthKeys
	s.Require().NoError(json.Unmarshal([]byte(raw), &stored))
	s.Equal(testAuth, stored)
}

func (s *ServiceSuite) TestStartKeysSubmissionRequiresCode() {
	err := s.svc.StartKeysSubmission(context.Background(), "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestStartKeysSubmissionRejectedCode() {
	s.backend.EXPECT().
		ClaimOneTimeCode(gomock.Any(), "bad").
		Return(nil, ports.ErrClaimRejected)

	err := s.svc.StartKeysSubmission(context.Background(), "bad")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal(models.StatusMonitoring, s.svc.Status().Type)
}

func (s *ServiceSuite) TestStartKeysSubmissionBackendDown() {
	s.backend.EXPECT().
		ClaimOneTimeCode(gomock.Any(), "12345678").
		Return(nil, errors.New("connection refused"))

	err := s.svc.StartKeysSubmission(context.Background(), "12345678")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(models.StatusMonitoring, s.svc.Status().Type)
}

func (s *ServiceSuite) TestFetchAndSubmitKeysCompletesSubmission() {
	ctx := context.Background()
	s.seedDiagnosed()

	keys := []ports.TemporaryExposureKey{
		{KeyData: []byte{0x01}, RollingStartNumber: 2650000, RollingPeriod: 144},
	}
	s.detector.EXPECT().TemporaryExposureKeyHistory(gomock.Any()).Return(keys, nil)
	s.backend.EXPECT().ReportDiagnosisKeys(gomock.Any(), testAuth, keys).Return(nil)

	s.Require().NoError(s.svc.FetchAndSubmitKeys(ctx))

	st := s.svc.Status()
	s.Equal(models.StatusDiagnosed, st.Type)
	s.False(st.NeedsSubmission)
	s.Require().NotNil(st.SubmissionLastCompletedAt)
	s.Equal(fixedNow.UnixMilli(), *st.SubmissionLastCompletedAt)
}

func (s *ServiceSuite) TestFetchAndSubmitKeysOutsideCycle() {
	err := s.svc.FetchAndSubmitKeys(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.ErrorIs(err, ErrNotDiagnosed)
}

func (s *ServiceSuite) TestFetchAndSubmitKeysMissingCredentials() {
	ctx := context.Background()
	s.store.Set(ctx, models.ExposureStatus{
		Type:        models.StatusDiagnosed,
		CycleEndsAt: fixedNow.Add(13 * 24 * time.Hour).UnixMilli(),
	})

	err := s.svc.FetchAndSubmitKeys(ctx)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.ErrorIs(err, ErrMissingKeyMaterial)
}

func (s *ServiceSuite) TestFetchAndSubmitKeysReportFailureKeepsNeedsSubmission() {
	ctx := context.Background()
	s.seedDiagnosed()

	s.detector.EXPECT().TemporaryExposureKeyHistory(gomock.Any()).
		Return([]ports.TemporaryExposureKey{}, nil)
	s.backend.EXPECT().ReportDiagnosisKeys(gomock.Any(), testAuth, gomock.Any()).
		Return(errors.New("upload failed"))

	err := s.svc.FetchAndSubmitKeys(ctx)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	st := s.svc.Status()
	s.True(st.NeedsSubmission)
	s.Nil(st.SubmissionLastCompletedAt)
}

func (s *ServiceSuite) TestFetchAndSubmitKeysHistoryFailure() {
	ctx := context.Background()
	s.seedDiagnosed()

	s.detector.EXPECT().TemporaryExposureKeyHistory(gomock.Any()).
		Return(nil, errors.New("user denied"))

	err := s.svc.FetchAndSubmitKeys(ctx)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
