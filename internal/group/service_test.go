package group_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/appealsdesk/appeals-registry/internal"
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	"github.com/appealsdesk/appeals-registry/internal/group"
	"github.com/appealsdesk/appeals-registry/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestGroupService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Group Service Suite")
}

// MockRepository implements group.RepositoryAPI in memory
type MockRepository struct {
	groups   map[int64]*rbacDatamodel.PermissionGroup
	perms    map[int64][]*rbacDatamodel.Permission
	grants   map[int64]map[int64]int64 // userID -> permID -> grantedBy
	users    map[int64]bool
	nextID   int64
	permByID map[int64]*rbacDatamodel.Permission
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		groups:   make(map[int64]*rbacDatamodel.PermissionGroup),
		perms:    make(map[int64][]*rbacDatamodel.Permission),
		grants:   make(map[int64]map[int64]int64),
		users:    make(map[int64]bool),
		permByID: make(map[int64]*rbacDatamodel.Permission),
		nextID:   1,
	}
}

func (m *MockRepository) RegisterPermission(p *rbacDatamodel.Permission) {
	m.permByID[p.ID] = p
}

func (m *MockRepository) GetAll() ([]*rbacDatamodel.PermissionGroup, error) {
	var out []*rbacDatamodel.PermissionGroup
	for _, g := range m.groups {
		out = append(out, g)
	}
	return out, nil
}

func (m *MockRepository) GetByID(id int64) (*rbacDatamodel.PermissionGroup, error) {
	return m.groups[id], nil
}

func (m *MockRepository) GetByName(name string) (*rbacDatamodel.PermissionGroup, error) {
	for _, g := range m.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) GetPermissions(groupID int64) ([]*rbacDatamodel.Permission, error) {
	return m.perms[groupID], nil
}

func (m *MockRepository) GetPermissionsForGroups(groupIDs []int64) (map[int64][]*rbacDatamodel.Permission, error) {
	out := make(map[int64][]*rbacDatamodel.Permission)
	for _, id := range groupIDs {
		if perms, ok := m.perms[id]; ok {
			out[id] = perms
		}
	}
	return out, nil
}

func (m *MockRepository) CreateWithPermissions(g *rbacDatamodel.PermissionGroup, permissionIDs []int64) error {
	g.ID = m.nextID
	m.nextID++
	m.groups[g.ID] = g
	for _, permID := range permissionIDs {
		m.perms[g.ID] = append(m.perms[g.ID], m.permByID[permID])
	}
	return nil
}

func (m *MockRepository) Update(g *rbacDatamodel.PermissionGroup) error {
	m.groups[g.ID] = g
	return nil
}

func (m *MockRepository) ReplacePermissions(groupID int64, permissionIDs []int64) error {
	m.perms[groupID] = nil
	for _, permID := range permissionIDs {
		m.perms[groupID] = append(m.perms[groupID], m.permByID[permID])
	}
	return nil
}

func (m *MockRepository) DeleteCascade(groupID int64) error {
	delete(m.groups, groupID)
	delete(m.perms, groupID)
	return nil
}

func (m *MockRepository) UserExists(userID int64) (bool, error) {
	return m.users[userID], nil
}

func (m *MockRepository) ApplyPermissionsToUser(userID int64, permissionIDs []int64, grantedBy int64) (int, error) {
	if m.grants[userID] == nil {
		m.grants[userID] = make(map[int64]int64)
	}
	applied := 0
	for _, permID := range permissionIDs {
		if _, held := m.grants[userID][permID]; held {
			continue
		}
		m.grants[userID][permID] = grantedBy
		applied++
	}
	return applied, nil
}

// MockRegistry implements group.RegistryAPI over a fixed permission table
type MockRegistry struct {
	byCode map[string]*permission.Permission
}

func (m *MockRegistry) ResolveAssignable(codes []string, current []string) ([]*permission.Permission, error) {
	currentSet := make(map[string]struct{})
	for _, c := range current {
		currentSet[c] = struct{}{}
	}
	var out []*permission.Permission
	for _, code := range codes {
		p, ok := m.byCode[code]
		if !ok {
			return nil, internal.NewValidationError("unknown permission code: "+code, internal.ErrCodeUnknownPermissionCode)
		}
		if !p.IsActive {
			if _, held := currentSet[code]; !held {
				return nil, internal.NewValidationError("permission is disabled: "+code, internal.ErrCodePermissionInactive)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

var _ = Describe("Group Service", func() {
	var (
		repo     *MockRepository
		registry *MockRegistry
		service  *group.Service

		superAdmin internal.Actor
		rankTwo    internal.Actor
	)

	viewAppeals := &rbacDatamodel.Permission{ID: 1, Code: "view_appeals", Category: "appeals", IsActive: true}
	createAppeal := &rbacDatamodel.Permission{ID: 2, Code: "create_appeal", Category: "appeals", IsActive: true}
	manageRoles := &rbacDatamodel.Permission{ID: 3, Code: "manage_roles", Category: "admin", IsActive: true}

	BeforeEach(func() {
		repo = NewMockRepository()
		for _, p := range []*rbacDatamodel.Permission{viewAppeals, createAppeal, manageRoles} {
			repo.RegisterPermission(p)
		}
		registry = &MockRegistry{byCode: map[string]*permission.Permission{
			"view_appeals":  {ID: 1, Code: "view_appeals", Category: permission.CategoryAppeals, IsActive: true},
			"create_appeal": {ID: 2, Code: "create_appeal", Category: permission.CategoryAppeals, IsActive: true},
			"manage_roles":  {ID: 3, Code: "manage_roles", Category: permission.CategoryAdmin, IsActive: true},
		}}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = group.NewService(repo, registry, nil, logger)

		superAdmin = internal.Actor{ID: 100, IsAdmin: true, IsSuperAdmin: true, Rank: 3}
		rankTwo = internal.Actor{ID: 200, IsAdmin: true, Rank: 2}

		repo.users[42] = true
	})

	Describe("Create", func() {
		It("creates a template group with a snapshot of codes", func() {
			g, err := service.Create(context.Background(), superAdmin, &group.CreateGroupRequest{
				Name:            "Appeals Clerk",
				PermissionCodes: []string{"view_appeals", "create_appeal"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(g.IsTemplate).To(BeTrue())
			Expect(g.Permissions).To(ConsistOf("view_appeals", "create_appeal"))
		})

		It("rejects a duplicate name", func() {
			_, err := service.Create(context.Background(), superAdmin, &group.CreateGroupRequest{Name: "Clerk"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(context.Background(), superAdmin, &group.CreateGroupRequest{Name: "Clerk"})
			Expect(err).To(MatchError(internal.ErrDuplicateGroupName))
		})

		It("rejects an unknown permission code", func() {
			_, err := service.Create(context.Background(), superAdmin, &group.CreateGroupRequest{
				Name:            "Broken",
				PermissionCodes: []string{"no_such_code"},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnknownPermissionCode))
		})

		It("blocks a rank two actor from bundling protected permissions", func() {
			_, err := service.Create(context.Background(), rankTwo, &group.CreateGroupRequest{
				Name:            "Admin Pack",
				PermissionCodes: []string{"view_appeals", "manage_roles"},
			})
			Expect(err).To(MatchError(internal.ErrInsufficientRank))
		})
	})

	Describe("ApplyToUser", func() {
		var groupID int64

		BeforeEach(func() {
			g, err := service.Create(context.Background(), superAdmin, &group.CreateGroupRequest{
				Name:            "Appeals Clerk",
				PermissionCodes: []string{"view_appeals", "create_appeal"},
			})
			Expect(err).NotTo(HaveOccurred())
			groupID = g.ID
		})

		It("copies the snapshot onto the user as direct grants", func() {
			resp, err := service.ApplyToUser(context.Background(), superAdmin, groupID, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Applied).To(Equal(2))
			Expect(resp.Skipped).To(Equal(0))
		})

		It("is idempotent: the second apply adds nothing", func() {
			_, err := service.ApplyToUser(context.Background(), superAdmin, groupID, 42)
			Expect(err).NotTo(HaveOccurred())

			resp, err := service.ApplyToUser(context.Background(), superAdmin, groupID, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Applied).To(Equal(0))
			Expect(resp.Skipped).To(Equal(2))
		})

		It("keeps earlier grants when the template changes afterwards", func() {
			_, err := service.ApplyToUser(context.Background(), superAdmin, groupID, 42)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.SetPermissions(context.Background(), superAdmin, groupID, &group.SetPermissionsRequest{
				PermissionCodes: []string{"view_appeals"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.grants[42]).To(HaveLen(2))
		})

		It("returns not found for a missing user", func() {
			_, err := service.ApplyToUser(context.Background(), superAdmin, groupID, 999)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("gates protected groups by actor rank", func() {
			g, err := service.Create(context.Background(), superAdmin, &group.CreateGroupRequest{
				Name:            "Admin Pack",
				PermissionCodes: []string{"manage_roles"},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ApplyToUser(context.Background(), rankTwo, g.ID, 42)
			Expect(err).To(MatchError(internal.ErrInsufficientRank))
		})
	})

	Describe("Delete", func() {
		It("removes the template but leaves copied grants alone", func() {
			g, err := service.Create(context.Background(), superAdmin, &group.CreateGroupRequest{
				Name:            "Appeals Clerk",
				PermissionCodes: []string{"view_appeals"},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ApplyToUser(context.Background(), superAdmin, g.ID, 42)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(context.Background(), superAdmin, g.ID)).To(Succeed())

			_, err = service.GetByID(g.ID)
			Expect(err).To(MatchError(internal.ErrGroupNotFound))
			Expect(repo.grants[42]).To(HaveLen(1))
		})

		It("returns not found for a missing group", func() {
			err := service.Delete(context.Background(), superAdmin, 888)
			Expect(err).To(MatchError(internal.ErrGroupNotFound))
		})
	})
})
