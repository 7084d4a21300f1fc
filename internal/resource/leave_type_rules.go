package resource

import (
	"github.com/syrilster/leave-api-e2e/internal/model"
)

const (
	ruleEffectiveDate = "2025-01-01"
	ruleCapAmount     = 100
)

type LeaveTypeRules struct {
	faker            *Faker
	AccountID        model.ID
	LeaveTypeID      model.ID
	EmploymentTypeID model.ID
}

func NewLeaveTypeRules(f *Faker, accountID, leaveTypeID, employmentTypeID model.ID) *LeaveTypeRules {
	return &LeaveTypeRules{
		faker:            f,
		AccountID:        accountID,
		LeaveTypeID:      leaveTypeID,
		EmploymentTypeID: employmentTypeID,
	}
}

func (r *LeaveTypeRules) Name() string     { return "Leave Type Rules" }
func (r *LeaveTypeRules) Endpoint() string { return LeaveTypeRulesEndpoint }
func (r *LeaveTypeRules) IDField() string  { return "LeaveTypeRuleId" }

func (r *LeaveTypeRules) GeneratePayload() model.Payload {
	return model.Payload{
		"AccountId":              r.AccountID,
		"LeaveTypeId":            r.LeaveTypeID,
		"EmploymentTypeId":       r.EmploymentTypeID,
		"Code":                   r.faker.UniqueCode("LTR-????", nil),
		"Name":                   "Rule " + r.faker.Word(),
		"AccrualMethod":          "continuous",
		"IncludePublicHolidays":  false,
		"DeductsOnPublicHoliday": true,
		"EffectiveDate":          ruleEffectiveDate,
		"IsActive":               true,
		"EntitlementAmount":      r.faker.IntRange(10, 30),
		"AccrualFrequency":       "Monthly",
		"CapAmount":              ruleCapAmount,
	}
}

func (r *LeaveTypeRules) UpdatePayload() model.Payload {
	return r.GeneratePayload()
}
