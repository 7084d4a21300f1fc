package report

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type MockSESClient struct {
	sesiface.SESAPI
	mock.Mock
}

func (m *MockSESClient) SendRawEmailWithContext(ctx aws.Context, input *ses.SendRawEmailInput, opts ...request.Option) (*ses.SendRawEmailOutput, error) {
	args := m.Called(input)
	return args.Get(0).(*ses.SendRawEmailOutput), args.Error(1)
}

func sampleReport() *Report {
	r := New()
	r.Record(StepResult{Resource: "Accounts", Step: "meta", Passed: true, StatusCode: 200, Duration: 12 * time.Millisecond})
	r.Record(StepResult{Resource: "Accounts", Step: "create", Passed: false, StatusCode: 422, Detail: "Code already exists"})
	r.RecordSeed(SeedResult{Resource: "Accounts", Requested: 3, Created: 2, Failed: 1})
	r.RecordSeed(SeedResult{Resource: "Leave Type Rules", Requested: 3, Skipped: true})
	return r
}

func TestSummary(t *testing.T) {
	r := sampleReport()
	summary := r.Summary()

	assert.True(t, r.Failed())
	assert.Contains(t, summary, "Run "+r.RunID)
	assert.Contains(t, summary, "Steps: 2 run, 1 passed, 1 failed")
	assert.Contains(t, summary, "FAILED Accounts create (status 422): Code already exists")
	assert.Contains(t, summary, "Seeded Accounts: 2/3 created, 1 failed")
	assert.Contains(t, summary, "Seeded Leave Type Rules: skipped")
}

func TestFailed(t *testing.T) {
	r := New()
	assert.False(t, r.Failed())

	r.Record(StepResult{Resource: "Accounts", Step: "list", Passed: true})
	r.RecordSeed(SeedResult{Resource: "Accounts", Requested: 2, Created: 2})
	assert.False(t, r.Failed())
	assert.Empty(t, r.FailedSteps())

	r.RecordSeed(SeedResult{Resource: "Leave Types", Requested: 2, Created: 1, Failed: 1})
	assert.True(t, r.Failed())
}

func TestWriteWorkbook(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, sampleReport().WriteWorkbook(context.Background(), fileName))

	f, err := excelize.OpenFile(fileName)
	require.NoError(t, err)

	steps, err := f.GetRows(stepsSheet)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	require.Equal(t, "Resource", steps[0][0])
	require.Equal(t, []string{"Accounts", "create", "FAIL", "422", "0", "Code already exists"}, steps[2])

	seeding, err := f.GetRows(seedingSheet)
	require.NoError(t, err)
	require.Len(t, seeding, 3)
	require.Equal(t, []string{"Accounts", "3", "2", "1", "FALSE"}, seeding[1])

	for _, c := range []struct {
		sheet, col string
		want       float64
	}{
		{stepsSheet, "B", 20},
		{stepsSheet, "F", 60},
		{seedingSheet, "A", 20},
	} {
		width, err := f.GetColWidth(c.sheet, c.col)
		require.NoError(t, err)
		assert.Equal(t, c.want, width, c.sheet+"!"+c.col)
	}
}

func TestMailerSend(t *testing.T) {
	sesClient := new(MockSESClient)
	sesClient.On("SendRawEmailWithContext", mock.MatchedBy(func(in *ses.SendRawEmailInput) bool {
		raw := string(in.RawMessage.Data)
		return aws.StringValue(in.Source) == "bot@example.com" &&
			len(in.Destinations) == 2 &&
			strings.Contains(raw, "Subject: Report: HR API smoke test (FAILED)") &&
			strings.Contains(raw, "Steps: 2 run, 1 passed, 1 failed")
	})).Return(&ses.SendRawEmailOutput{}, nil)

	m := NewMailer(sesClient, "a@example.com, b@example.com", "bot@example.com")
	require.NoError(t, m.Send(context.Background(), sampleReport(), ""))
	sesClient.AssertExpectations(t)
}

func TestPopulateEmailRecipients(t *testing.T) {
	require.Equal(t, []string{"a@example.com", "b@example.com"}, populateEmailRecipients("a@example.com, b@example.com,"))
	require.Empty(t, populateEmailRecipients(""))
}
