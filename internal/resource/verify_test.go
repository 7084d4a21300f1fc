package resource

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syrilster/leave-api-e2e/internal/model"
)

func TestSameValue(t *testing.T) {
	tests := []struct {
		name string
		want interface{}
		got  interface{}
		same bool
	}{
		{name: "equal strings", want: "Annual", got: "Annual", same: true},
		{name: "different strings", want: "Annual", got: "Sick"},
		{name: "int against json number", want: 100, got: json.Number("100"), same: true},
		{name: "int against float number", want: 100, got: json.Number("100.0"), same: true},
		{name: "number against numeric string", want: 12, got: "12", same: true},
		{name: "different numbers", want: 12, got: json.Number("13")},
		{name: "date against same day timestamp", want: "2025-01-01", got: "2025-01-01T00:00:00Z", same: true},
		{name: "date against other day", want: "2025-01-01", got: "2025-01-02T00:00:00Z"},
		{name: "bools", want: true, got: true, same: true},
		{name: "bool against string", want: true, got: "true"},
		{name: "id against string", want: model.NewID("a1"), got: "a1", same: true},
		{name: "nil against nil", want: nil, got: nil, same: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.same, sameValue(tc.want, tc.got))
		})
	}
}

func TestCompareFields(t *testing.T) {
	rec := model.NewRecord("Name", "Sick Leave", "Code", "LT-ABC", "IsPaid", true)
	payload := model.Payload{
		"Name":   "Sick Leave",
		"Code":   "LT-XYZ",
		"IsPaid": true,
		"Extra":  "missing",
		"Other":  1,
	}

	stale, missing := compareFields(payload, rec)
	assert.Equal(t, []string{"Code"}, stale)
	assert.Equal(t, []string{"Extra", "Other"}, missing)

	stale, missing = compareFields(model.Payload{"Name": "Sick Leave"}, rec)
	assert.Empty(t, stale)
	assert.Empty(t, missing)
}

func TestFakerUniqueCode(t *testing.T) {
	f := NewFaker(7)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code := f.UniqueCode("?", nil)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestFakerIsDeterministicForASeed(t *testing.T) {
	a, b := NewFaker(11), NewFaker(11)
	assert.Equal(t, a.Company(), b.Company())
	assert.Equal(t, a.UniqueCode("LT-???", nil), b.UniqueCode("LT-???", nil))

	word := a.Capitalized()
	if assert.NotEmpty(t, word) {
		assert.Equal(t, strings.ToUpper(word[:1]), word[:1])
	}
}

func TestGeneratedPayloads(t *testing.T) {
	f := NewFaker(5)
	accountID := model.NewID("acc-1")

	account := NewAccounts(f).GeneratePayload()
	assert.Regexp(t, `^[A-Z]{6}[1-9][0-9]{2}$`, account["Code"])

	leaveType := NewLeaveTypes(f, accountID)
	assert.Equal(t, accountID, leaveType.GeneratePayload()["AccountId"])
	assert.Equal(t, true, leaveType.UpdatePayload()["CountsForAnnualLeaveAccrual"])
	assert.Regexp(t, `^LT-[A-Z]{3}$`, leaveType.GeneratePayload()["Code"])

	rule := NewLeaveTypeRules(f, accountID, model.NewID("lt-1"), model.NewID("et-1")).GeneratePayload()
	assert.Equal(t, ruleEffectiveDate, rule["EffectiveDate"])
	assert.Equal(t, ruleCapAmount, rule["CapAmount"])
	assert.Regexp(t, `^LTR-[A-Z]{4}$`, rule["Code"])
	entitlement, _ := rule["EntitlementAmount"].(int)
	assert.True(t, entitlement >= 10 && entitlement <= 30)
}
