package resource

import (
	"strconv"

	"github.com/syrilster/leave-api-e2e/internal/model"
)

type Accounts struct {
	faker *Faker
}

func NewAccounts(f *Faker) *Accounts {
	return &Accounts{faker: f}
}

func (a *Accounts) Name() string     { return "Accounts" }
func (a *Accounts) Endpoint() string { return AccountsEndpoint }
func (a *Accounts) IDField() string  { return "AccountId" }

func (a *Accounts) BatchEndpoint() string {
	return AccountsEndpoint + "batch"
}

func (a *Accounts) GeneratePayload() model.Payload {
	return model.Payload{
		"Name": a.faker.Company(),
		"Code": a.faker.UniqueCode("??????", func() string {
			return strconv.Itoa(a.faker.IntRange(100, 999))
		}),
	}
}

func (a *Accounts) UpdatePayload() model.Payload {
	return a.GeneratePayload()
}
