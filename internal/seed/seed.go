// Package seed bulk-creates randomized sample data in dependency order:
// accounts, employment types, leave types and leave type rules.
package seed

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/syrilster/leave-api-e2e/internal/hrapi"
	"github.com/syrilster/leave-api-e2e/internal/model"
	"github.com/syrilster/leave-api-e2e/internal/report"
	"github.com/syrilster/leave-api-e2e/internal/resource"
)

// Recorder receives the per-resource seeding totals
type Recorder interface {
	RecordSeed(result report.SeedResult)
}

// item is a created record and the account it belongs to
type item struct {
	id        model.ID
	accountID model.ID
}

type Seeder struct {
	client   hrapi.ClientInterface
	faker    *resource.Faker
	out      io.Writer
	recorder Recorder
}

func NewSeeder(c hrapi.ClientInterface, f *resource.Faker, out io.Writer, rec Recorder) *Seeder {
	return &Seeder{
		client:   c,
		faker:    f,
		out:      out,
		recorder: rec,
	}
}

// Run creates count records of every resource. Nothing is rolled back on failure.
// It returns early with the context error when ctx is cancelled.
func (s *Seeder) Run(ctx context.Context, count int) error {
	if count <= 0 {
		fmt.Fprintln(s.out, "Nothing to seed")
		return nil
	}
	fmt.Fprintf(s.out, "\n🌱 Seeding %d items for each resource...\n", count)

	accounts, err := s.create(ctx, "Accounts", count, func() (resource.Resource, model.ID) {
		return resource.NewAccounts(s.faker), model.ID{}
	})
	if err != nil {
		return err
	}
	for i := range accounts {
		accounts[i].accountID = accounts[i].id
	}

	if len(accounts) == 0 {
		fmt.Fprintln(s.out, "❌ No accounts created, skipping Employment Types, Leave Types and Leave Type Rules seeding")
		s.skip(count, "Employment Types", "Leave Types", "Leave Type Rules")
		return nil
	}

	employmentTypes, err := s.create(ctx, "Employment Types", count, func() (resource.Resource, model.ID) {
		accountID := s.pick(accounts).id
		return resource.NewEmploymentTypes(s.faker, accountID), accountID
	})
	if err != nil {
		return err
	}

	leaveTypes, err := s.create(ctx, "Leave Types", count, func() (resource.Resource, model.ID) {
		accountID := s.pick(accounts).id
		return resource.NewLeaveTypes(s.faker, accountID), accountID
	})
	if err != nil {
		return err
	}

	if len(leaveTypes) == 0 || len(employmentTypes) == 0 {
		fmt.Fprintln(s.out, "❌ Missing dependencies for Leave Type Rules, skipping")
		s.skip(count, "Leave Type Rules")
		return nil
	}

	_, err = s.create(ctx, "Leave Type Rules", count, func() (resource.Resource, model.ID) {
		leaveType := s.pick(leaveTypes)
		employmentType := s.pick(sameAccount(employmentTypes, leaveType.accountID))
		return resource.NewLeaveTypeRules(s.faker, leaveType.accountID, leaveType.id, employmentType.id), leaveType.accountID
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "\nDone seeding!")
	return nil
}

func (s *Seeder) create(ctx context.Context, name string, count int, next func() (resource.Resource, model.ID)) ([]item, error) {
	contextLogger := log.WithContext(ctx)
	fmt.Fprintf(s.out, "\nSeeding %s...\n", name)

	result := report.SeedResult{Resource: name, Requested: count}
	created := make([]item, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(s.out, "\nCreated %d %s before cancellation\n", len(created), name)
			s.recorder.RecordSeed(result)
			return created, err
		}

		r, accountID := next()
		id, _, err := resource.Create(ctx, s.client, r)
		if err != nil {
			contextLogger.WithError(err).Debugf("could not seed %s", name)
			result.Failed++
			fmt.Fprint(s.out, "x")
			continue
		}
		created = append(created, item{id: id, accountID: accountID})
		result.Created++
		fmt.Fprint(s.out, ".")
	}

	fmt.Fprintf(s.out, "\nCreated %d %s\n", len(created), name)
	s.recorder.RecordSeed(result)
	return created, nil
}

func (s *Seeder) skip(count int, names ...string) {
	for _, name := range names {
		s.recorder.RecordSeed(report.SeedResult{Resource: name, Requested: count, Skipped: true})
	}
}

func (s *Seeder) pick(items []item) item {
	return items[s.faker.IntRange(0, len(items)-1)]
}

// sameAccount returns the items owned by accountID, or all items when none are
func sameAccount(items []item, accountID model.ID) []item {
	var owned []item
	for _, it := range items {
		if it.accountID.String() == accountID.String() {
			owned = append(owned, it)
		}
	}
	if len(owned) == 0 {
		return items
	}
	return owned
}
