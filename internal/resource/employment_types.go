package resource

import (
	"fmt"

	"github.com/syrilster/leave-api-e2e/internal/model"
)

type EmploymentTypes struct {
	faker     *Faker
	AccountID model.ID
}

func NewEmploymentTypes(f *Faker, accountID model.ID) *EmploymentTypes {
	return &EmploymentTypes{faker: f, AccountID: accountID}
}

func (e *EmploymentTypes) Name() string     { return "Employment Types" }
func (e *EmploymentTypes) Endpoint() string { return EmploymentTypesEndpoint }
func (e *EmploymentTypes) IDField() string  { return "EmploymentTypeId" }

func (e *EmploymentTypes) GeneratePayload() model.Payload {
	return model.Payload{
		"AccountId":   e.AccountID,
		"Name":        fmt.Sprintf("%s %d", e.faker.JobTitle(), e.faker.IntRange(1, 100)),
		"Code":        e.faker.UniqueCode("????", nil),
		"Description": e.faker.Phrase(),
		"IsActive":    true,
	}
}

func (e *EmploymentTypes) UpdatePayload() model.Payload {
	return e.GeneratePayload()
}
