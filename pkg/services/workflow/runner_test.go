package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/compliance-atlas/pkg/adapters"
	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/runtime/export"
	"github.com/de-tools/compliance-atlas/pkg/services/annotation"
)

const scanCSV = `control_title,status,title,region
5 IAM password policy,alarm,IAM,us-east-1
EC2 instances should not have public IPs,alarm,EC2,us-east-1
EC2 instances should not have public IPs,ok,EC2,eu-west-1
Unknown control,alarm,EC2,eu-west-1
`

const rulesCSV = `control_title,priority,Recommendation Steps/Approach
IAM password policy,High,Rotate keys
EC2 instances should not have public IPs,Medium,Remove public IP
`

type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	args := m.Called(ctx, uri)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Handle(ctx context.Context, report *domain.ComplianceReport) error {
	return m.Called(ctx, report).Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, run domain.Run) (*domain.Run, error) {
	args := m.Called(ctx, run)
	r, _ := args.Get(0).(*domain.Run)
	return r, args.Error(1)
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func newJob(sinks ...export.Sink) Job {
	return Job{
		Input:      "scan.csv",
		Rules:      "rules.csv",
		Provider:   domain.ProviderAWS,
		Schema:     adapters.AWSSchema,
		Annotation: annotation.DefaultConfig(),
		Sinks:      sinks,
		Record:     true,
	}
}

func TestRunner_Run(t *testing.T) {
	opener := new(MockOpener)
	opener.On("Open", mock.Anything, "scan.csv").Return(body(scanCSV), nil)
	opener.On("Open", mock.Anything, "rules.csv").Return(body(rulesCSV), nil)

	sink := new(MockSink)
	sink.On("Handle", mock.Anything, mock.AnythingOfType("*domain.ComplianceReport")).Return(nil).Once()

	recorder := new(MockRecorder)
	recorder.On("Record", mock.Anything, mock.MatchedBy(func(r domain.Run) bool {
		return r.Source == "scan.csv" && r.Provider == "aws" && r.Stats.Unmatched == 1
	})).Return(&domain.Run{ID: "run-1"}, nil).Once()

	result, err := NewRunner(opener, recorder).Run(context.Background(), newJob(sink))
	require.NoError(t, err)

	rep := result.Report
	require.Len(t, rep.Findings, 4)
	assert.Equal(t, domain.TierHigh, rep.Findings[0].Priority)
	assert.Equal(t, "Rotate keys", rep.Findings[0].Recommendation)
	assert.Equal(t, domain.ColorRed, rep.Findings[0].Color)
	assert.Equal(t, domain.TierSafe, rep.Findings[2].Priority)
	assert.Equal(t, domain.TierNoData, rep.Findings[3].Priority)
	assert.Equal(t, domain.NoRecommendation, rep.Findings[3].Recommendation)

	assert.Equal(t, []domain.CategorySummary{
		{Category: "Security and Identity", OpenIssues: 1, SafeCount: 0, Total: 1},
		{Category: "Compute", OpenIssues: 2, SafeCount: 1, Total: 3},
	}, rep.CategorySummaries)

	require.NotNil(t, result.Run)
	assert.Equal(t, "run-1", result.Run.ID)
	sink.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestRunner_Run_FatalChecksStopBeforeSinks(t *testing.T) {
	t.Run("missing columns", func(t *testing.T) {
		opener := new(MockOpener)
		opener.On("Open", mock.Anything, "scan.csv").Return(body("control_title,region\nA,us-east-1\n"), nil)
		sink := new(MockSink)

		_, err := NewRunner(opener, nil).Run(context.Background(), newJob(sink))

		var missing *domain.MissingColumnsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"status", "title"}, missing.Columns)
		sink.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("unsupported input is rejected before opening", func(t *testing.T) {
		opener := new(MockOpener)
		job := newJob()
		job.Input = "scan.xls"

		_, err := NewRunner(opener, nil).Run(context.Background(), job)

		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("unreadable rule table", func(t *testing.T) {
		opener := new(MockOpener)
		opener.On("Open", mock.Anything, "scan.csv").Return(body(scanCSV), nil)
		opener.On("Open", mock.Anything, "rules.csv").Return(nil, &domain.IOError{Path: "rules.csv", Err: errors.New("not found")})
		sink := new(MockSink)

		_, err := NewRunner(opener, nil).Run(context.Background(), newJob(sink))

		var ioErr *domain.IOError
		assert.ErrorAs(t, err, &ioErr)
		sink.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("no rule table", func(t *testing.T) {
		opener := new(MockOpener)
		opener.On("Open", mock.Anything, "scan.csv").Return(body(scanCSV), nil)
		job := newJob()
		job.Rules = ""

		_, err := NewRunner(opener, nil).Run(context.Background(), job)

		var cfgErr *domain.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestRunner_Run_SinkAndHistoryErrors(t *testing.T) {
	newOpener := func() *MockOpener {
		opener := new(MockOpener)
		opener.On("Open", mock.Anything, "scan.csv").Return(body(scanCSV), nil)
		opener.On("Open", mock.Anything, "rules.csv").Return(body(rulesCSV), nil)
		return opener
	}

	t.Run("sink failure is returned", func(t *testing.T) {
		sink := new(MockSink)
		sink.On("Handle", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		_, err := NewRunner(newOpener(), nil).Run(context.Background(), newJob(sink))
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("history failure keeps the report", func(t *testing.T) {
		recorder := new(MockRecorder)
		recorder.On("Record", mock.Anything, mock.Anything).Return(nil, errors.New("locked"))

		result, err := NewRunner(newOpener(), recorder).Run(context.Background(), newJob())
		require.NoError(t, err)
		assert.NotNil(t, result.Report)
		assert.Nil(t, result.Run)
	})
}
