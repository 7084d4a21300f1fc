package internal

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/syrilster/leave-api-e2e/internal/hrapi"
	"github.com/syrilster/leave-api-e2e/internal/model"
	"github.com/syrilster/leave-api-e2e/internal/report"
	"github.com/syrilster/leave-api-e2e/internal/resource"
	"github.com/syrilster/leave-api-e2e/internal/seed"
)

type Service struct {
	client hrapi.ClientInterface
	faker  *resource.Faker
	out    io.Writer
	report *report.Report
}

func NewService(c hrapi.ClientInterface, f *resource.Faker, out io.Writer, rep *report.Report) *Service {
	return &Service{
		client: c,
		faker:  f,
		out:    out,
		report: rep,
	}
}

//RunTests runs the CRUD checks for every resource in dependency order. Each resource
//reuses an existing parent record when one is listed and creates one otherwise.
func (service Service) RunTests(ctx context.Context) bool {
	contextLogger := log.WithContext(ctx)
	contextLogger.Infof("running API tests against %s", service.client.BaseURL())
	passed := true

	accounts := resource.NewAccounts(service.faker)
	if !service.tester(accounts).TestAll(ctx) {
		fmt.Fprintln(service.out, "❌ Accounts tests failed")
		passed = false
	}
	accountID, _, ok := service.dependency(ctx, accounts, model.ID{})
	if !ok {
		service.skip("Employment Types", "account")
		service.skip("Leave Types", "account")
		service.skip("Leave Type Rules", "account")
		return false
	}

	employmentTypes := resource.NewEmploymentTypes(service.faker, accountID)
	if !service.tester(employmentTypes).TestAll(ctx) {
		fmt.Fprintln(service.out, "❌ Employment Types tests failed")
		passed = false
	}
	employmentTypeID, _, haveEmploymentType := service.dependency(ctx, employmentTypes, accountID)

	leaveTypes := resource.NewLeaveTypes(service.faker, accountID)
	if !service.tester(leaveTypes).TestAll(ctx) {
		fmt.Fprintln(service.out, "❌ Leave Types tests failed")
		passed = false
	}
	leaveTypeID, ruleAccountID, haveLeaveType := service.dependency(ctx, leaveTypes, accountID)

	switch {
	case !haveEmploymentType:
		service.skip("Leave Type Rules", "employment type")
		return false
	case !haveLeaveType:
		service.skip("Leave Type Rules", "leave type")
		return false
	}

	// the rule belongs to the leave type's account, with an employment type from it when one exists
	employmentTypeID = service.employmentTypeIn(ctx, employmentTypes, ruleAccountID, employmentTypeID)
	rules := resource.NewLeaveTypeRules(service.faker, ruleAccountID, leaveTypeID, employmentTypeID)
	if !service.tester(rules).TestAll(ctx) {
		fmt.Fprintln(service.out, "❌ Leave Type Rules tests failed")
		passed = false
	}
	return passed
}

//Seed creates count sample records of every resource
func (service Service) Seed(ctx context.Context, count int) error {
	return seed.NewSeeder(service.client, service.faker, service.out, service.report).Run(ctx, count)
}

func (service Service) tester(r resource.Resource) *resource.Tester {
	return resource.NewTester(service.client, r, service.out, service.report)
}

// dependency returns the first listed record of r and its owning account, creating a
// record under accountID when none are listed
func (service Service) dependency(ctx context.Context, r resource.Resource, accountID model.ID) (model.ID, model.ID, bool) {
	t := service.tester(r)
	if recs, err := t.List(ctx); err == nil && len(recs) > 0 {
		if id, _, ok := recs[0].ID(r.IDField()); ok && !id.IsZero() {
			return id, accountOf(recs[0], accountID), true
		}
	}
	id, ok := t.TestCreate(ctx)
	return id, accountID, ok
}

// employmentTypeIn returns the first listed employment type owned by accountID, or fallback
func (service Service) employmentTypeIn(ctx context.Context, r resource.Resource, accountID model.ID, fallback model.ID) model.ID {
	recs, err := service.tester(r).List(ctx)
	if err != nil {
		log.WithContext(ctx).WithError(err).Warn("could not list employment types for the rule account")
		return fallback
	}
	for _, rec := range recs {
		if accountOf(rec, model.ID{}).String() != accountID.String() {
			continue
		}
		if id, _, ok := rec.ID(r.IDField()); ok && !id.IsZero() {
			return id
		}
	}
	return fallback
}

func accountOf(rec model.Record, fallback model.ID) model.ID {
	if v, ok := rec.Get("AccountId"); ok && v != nil {
		return model.NewID(v)
	}
	return fallback
}

func (service Service) skip(name string, missing string) {
	detail := fmt.Sprintf("no %s id available", missing)
	fmt.Fprintf(service.out, "⚠️ Skipping %s tests: %s\n", name, detail)
	service.report.Record(report.StepResult{
		Resource: name,
		Step:     "dependencies",
		Detail:   detail,
	})
}
