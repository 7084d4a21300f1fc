package resource

import (
	"github.com/syrilster/leave-api-e2e/internal/model"
)

const (
	AccountsEndpoint        = "/api/v1/accounts/"
	EmploymentTypesEndpoint = "/api/v1/employment-types/"
	LeaveTypesEndpoint      = "/api/v1/leave-types/"
	LeaveTypeRulesEndpoint  = "/api/v1/leave-type-rules/"
)

// Resource describes one REST collection and how to build valid payloads for it
type Resource interface {
	Name() string
	Endpoint() string
	IDField() string
	GeneratePayload() model.Payload
	UpdatePayload() model.Payload
}

// Batcher is implemented by resources that also expose a batch-fetch-by-ids endpoint
type Batcher interface {
	BatchEndpoint() string
}
