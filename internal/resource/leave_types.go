package resource

import (
	"fmt"

	"github.com/syrilster/leave-api-e2e/internal/model"
)

type LeaveTypes struct {
	faker     *Faker
	AccountID model.ID
}

func NewLeaveTypes(f *Faker, accountID model.ID) *LeaveTypes {
	return &LeaveTypes{faker: f, AccountID: accountID}
}

func (l *LeaveTypes) Name() string     { return "Leave Types" }
func (l *LeaveTypes) Endpoint() string { return LeaveTypesEndpoint }
func (l *LeaveTypes) IDField() string  { return "LeaveTypeId" }

func (l *LeaveTypes) GeneratePayload() model.Payload {
	return model.Payload{
		"Name":                    fmt.Sprintf("%s Leave %d", l.faker.Capitalized(), l.faker.IntRange(1, 100)),
		"Code":                    l.faker.UniqueCode("LT-???", nil),
		"IsPaid":                  true,
		"AccruesDuringEmployment": true,
		"IsCumulative":            true,
		"HasLeaveLoading":         false,
		"IsCashedOutAllowed":      false,
		"IsPaidOnTermination":     true,
		"AccountId":               l.AccountID,
	}
}

// UpdatePayload additionally flags the leave type as counting towards annual leave accrual
func (l *LeaveTypes) UpdatePayload() model.Payload {
	payload := l.GeneratePayload()
	payload["CountsForAnnualLeaveAccrual"] = true
	return payload
}
