package appeal_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/appealsdesk/appeals-registry/internal"
	"github.com/appealsdesk/appeals-registry/internal/appeal"
	appealDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/appeal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAppealService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Appeal Service Suite")
}

// MockRepository implements appeal.RepositoryAPI in memory
type MockRepository struct {
	appeals map[int64]*appealDatamodel.Appeal
	nextID  int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		appeals: make(map[int64]*appealDatamodel.Appeal),
		nextID:  1,
	}
}

func (m *MockRepository) List(filter appeal.ListFilter) ([]*appealDatamodel.Appeal, int64, error) {
	var out []*appealDatamodel.Appeal
	for _, a := range m.appeals {
		if a.IsDeleted {
			continue
		}
		if filter.Status != "" && a.Status != string(filter.Status) {
			continue
		}
		if filter.Section != nil && (a.SectionID == nil || *a.SectionID != *filter.Section) {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (m *MockRepository) GetByID(id int64) (*appealDatamodel.Appeal, error) {
	return m.appeals[id], nil
}

func (m *MockRepository) GetByRegNum(regNum string) (*appealDatamodel.Appeal, error) {
	for _, a := range m.appeals {
		if a.RegNum == regNum && !a.IsDeleted {
			return a, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(a *appealDatamodel.Appeal) error {
	a.ID = m.nextID
	m.nextID++
	m.appeals[a.ID] = a
	return nil
}

func (m *MockRepository) Update(a *appealDatamodel.Appeal) error {
	m.appeals[a.ID] = a
	return nil
}

var _ = Describe("Appeal Service", func() {
	var (
		service *appeal.Service
		repo    *MockRepository
		actor   internal.Actor
	)

	create := func(regNum string) *appeal.Appeal {
		created, err := service.Create(actor, &appeal.CreateAppealRequest{
			RegNum:      regNum,
			CitizenName: "Ivan Petrov",
			Subject:     "Road maintenance",
		})
		Expect(err).NotTo(HaveOccurred())
		return created
	}

	BeforeEach(func() {
		repo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = appeal.NewService(repo, logger)
		actor = internal.Actor{ID: 1, Rank: 1}
	})

	Describe("Create", func() {
		It("registers a new appeal", func() {
			created := create("A-2026-001")
			Expect(created.Status).To(Equal(appeal.StatusRegistered))
			Expect(created.CreatedBy).To(Equal(int64(1)))
		})

		It("rejects a duplicate registration number", func() {
			create("A-2026-001")

			_, err := service.Create(actor, &appeal.CreateAppealRequest{
				RegNum:      "A-2026-001",
				CitizenName: "Another Citizen",
				Subject:     "Other subject",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(409))
		})
	})

	Describe("lifecycle", func() {
		It("moves registered to in_progress on assignment", func() {
			created := create("A-2026-001")

			assigned, err := service.Assign(actor, created.ID, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(assigned.Status).To(Equal(appeal.StatusInProgress))
			Expect(*assigned.ExecutorID).To(Equal(int64(42)))
		})

		It("completes an in_progress appeal", func() {
			created := create("A-2026-001")
			_, err := service.Assign(actor, created.ID, 42)
			Expect(err).NotTo(HaveOccurred())

			completed, err := service.Complete(actor, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(completed.Status).To(Equal(appeal.StatusCompleted))
			Expect(completed.CompletedAt).NotTo(BeNil())
		})

		It("refuses to complete a registered appeal", func() {
			created := create("A-2026-001")

			_, err := service.Complete(actor, created.ID)
			Expect(err).To(Equal(internal.ErrInvalidAppealStatus))
		})

		It("refuses edits to a completed appeal", func() {
			created := create("A-2026-001")
			_, err := service.Assign(actor, created.ID, 42)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Complete(actor, created.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(actor, created.ID, &appeal.UpdateAppealRequest{
				CitizenName: "Ivan Petrov",
				Subject:     "Changed subject",
			})
			Expect(err).To(Equal(internal.ErrInvalidAppealStatus))
		})

		It("can reassign an in_progress appeal", func() {
			created := create("A-2026-001")
			_, err := service.Assign(actor, created.ID, 42)
			Expect(err).NotTo(HaveOccurred())

			reassigned, err := service.Assign(actor, created.ID, 43)
			Expect(err).NotTo(HaveOccurred())
			Expect(reassigned.Status).To(Equal(appeal.StatusInProgress))
			Expect(*reassigned.ExecutorID).To(Equal(int64(43)))
		})
	})

	Describe("Delete", func() {
		It("soft-deletes: the appeal vanishes from lookups but the row stays", func() {
			created := create("A-2026-001")

			Expect(service.Delete(actor, created.ID)).To(Succeed())

			_, err := service.GetByID(created.ID)
			Expect(err).To(Equal(internal.ErrAppealNotFound))
			Expect(repo.appeals[created.ID]).NotTo(BeNil())
			Expect(repo.appeals[created.ID].IsDeleted).To(BeTrue())
		})

		It("frees the registration number for reuse", func() {
			created := create("A-2026-001")
			Expect(service.Delete(actor, created.ID)).To(Succeed())

			again := create("A-2026-001")
			Expect(again.ID).NotTo(Equal(created.ID))
		})

		It("deleting twice reports not found", func() {
			created := create("A-2026-001")
			Expect(service.Delete(actor, created.ID)).To(Succeed())
			Expect(service.Delete(actor, created.ID)).To(Equal(internal.ErrAppealNotFound))
		})
	})

	Describe("List", func() {
		It("filters by status", func() {
			first := create("A-2026-001")
			create("A-2026-002")
			_, err := service.Assign(actor, first.ID, 42)
			Expect(err).NotTo(HaveOccurred())

			resp, err := service.List(appeal.ListFilter{Status: appeal.StatusRegistered})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Appeals).To(HaveLen(1))
			Expect(resp.Total).To(Equal(int64(1)))
		})
	})
})
