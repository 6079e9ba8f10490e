package user_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/appealsdesk/appeals-registry/internal"
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	userDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/user"
	"github.com/appealsdesk/appeals-registry/internal/group"
	"github.com/appealsdesk/appeals-registry/internal/permission"
	"github.com/appealsdesk/appeals-registry/internal/role"
	"github.com/appealsdesk/appeals-registry/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.RepositoryAPI in memory
type MockRepository struct {
	users       map[int64]*userDatamodel.User
	userRoles   map[int64][]int64
	userPerms   map[int64][]int64
	roleCodes   map[int64][]string
	roleNames   map[int64]string
	codeByID    map[int64]string
	nextID      int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:     make(map[int64]*userDatamodel.User),
		userRoles: make(map[int64][]int64),
		userPerms: make(map[int64][]int64),
		roleCodes: make(map[int64][]string),
		roleNames: make(map[int64]string),
		codeByID:  make(map[int64]string),
		nextID:    1,
	}
}

func (m *MockRepository) GetAll() ([]*userDatamodel.User, error) {
	var out []*userDatamodel.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *MockRepository) GetByID(id int64) (*userDatamodel.User, error) {
	return m.users[id], nil
}

func (m *MockRepository) GetByUsername(username string) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(u *userDatamodel.User) error {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) Update(u *userDatamodel.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) DeleteCascade(userID int64) error {
	delete(m.users, userID)
	delete(m.userRoles, userID)
	delete(m.userPerms, userID)
	return nil
}

func (m *MockRepository) GetRoles(userID int64) ([]*rbacDatamodel.Role, error) {
	var out []*rbacDatamodel.Role
	for _, roleID := range m.userRoles[userID] {
		out = append(out, &rbacDatamodel.Role{ID: roleID, Name: m.roleNames[roleID]})
	}
	return out, nil
}

func (m *MockRepository) GetRolesForUsers(userIDs []int64) (map[int64][]*rbacDatamodel.Role, error) {
	out := make(map[int64][]*rbacDatamodel.Role)
	for _, id := range userIDs {
		roles, _ := m.GetRoles(id)
		if roles != nil {
			out[id] = roles
		}
	}
	return out, nil
}

func (m *MockRepository) GetRolePermissionCodes(userID int64) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, roleID := range m.userRoles[userID] {
		for _, code := range m.roleCodes[roleID] {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	return out, nil
}

func (m *MockRepository) GetDirectPermissionCodes(userID int64) ([]string, error) {
	var out []string
	for _, permID := range m.userPerms[userID] {
		out = append(out, m.codeByID[permID])
	}
	return out, nil
}

func (m *MockRepository) AssignRole(userID, roleID int64) (bool, error) {
	for _, existing := range m.userRoles[userID] {
		if existing == roleID {
			return false, nil
		}
	}
	m.userRoles[userID] = append(m.userRoles[userID], roleID)
	return true, nil
}

func (m *MockRepository) RevokeRole(userID, roleID int64) error {
	var kept []int64
	for _, existing := range m.userRoles[userID] {
		if existing != roleID {
			kept = append(kept, existing)
		}
	}
	m.userRoles[userID] = kept
	return nil
}

func (m *MockRepository) GrantPermission(userID, permissionID, grantedBy int64) (bool, error) {
	for _, existing := range m.userPerms[userID] {
		if existing == permissionID {
			return false, nil
		}
	}
	m.userPerms[userID] = append(m.userPerms[userID], permissionID)
	return true, nil
}

func (m *MockRepository) RevokePermission(userID, permissionID int64) error {
	var kept []int64
	for _, existing := range m.userPerms[userID] {
		if existing != permissionID {
			kept = append(kept, existing)
		}
	}
	m.userPerms[userID] = kept
	return nil
}

// MockRoleDirectory implements user.RoleDirectory
type MockRoleDirectory struct {
	roles map[int64]*role.Role
}

func (m *MockRoleDirectory) GetByID(id int64) (*role.Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return nil, internal.ErrRoleNotFound
	}
	return r, nil
}

// MockGroupApplier records applications in order
type MockGroupApplier struct {
	applied []int64
}

func (m *MockGroupApplier) ApplyToUser(ctx context.Context, actor internal.Actor, groupID, userID int64) (*group.ApplyGroupResponse, error) {
	m.applied = append(m.applied, groupID)
	return &group.ApplyGroupResponse{UserID: userID, Applied: 1}, nil
}

// MockRegistry implements user.RegistryAPI
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

var _ = Describe("User Service", func() {
	var (
		service    *user.Service
		repo       *MockRepository
		roleDir    *MockRoleDirectory
		groups     *MockGroupApplier
		registry   *MockRegistry
		ctx        context.Context
		superAdmin internal.Actor
		admin      internal.Actor
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		registry = &MockRegistry{byCode: map[string]*permission.Permission{
			"view_appeals": {ID: 101, Code: "view_appeals", Category: permission.CategoryAppeals, IsActive: true},
			"view_users":   {ID: 102, Code: "view_users", Category: permission.CategoryUsers, IsActive: true},
		}}
		repo.codeByID[101] = "view_appeals"
		repo.codeByID[102] = "view_users"

		roleDir = &MockRoleDirectory{roles: map[int64]*role.Role{
			10: {ID: 10, Name: "Operator", PermissionCodes: []string{"view_appeals"}, Permissions: []*permission.Permission{
				{ID: 101, Code: "view_appeals", Category: permission.CategoryAppeals, IsActive: true},
			}},
			11: {ID: 11, Name: "Staffing", PermissionCodes: []string{"view_users"}, Permissions: []*permission.Permission{
				{ID: 102, Code: "view_users", Category: permission.CategoryUsers, IsActive: true},
			}},
		}}
		repo.roleNames[10] = "Operator"
		repo.roleNames[11] = "Staffing"
		repo.roleCodes[10] = []string{"view_appeals"}
		repo.roleCodes[11] = []string{"view_users"}

		groups = &MockGroupApplier{}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, roleDir, groups, registry, nil, logger, bcrypt.MinCost)
		ctx = context.Background()
		superAdmin = internal.Actor{ID: 1, IsAdmin: true, IsSuperAdmin: true, Rank: 3}
		admin = internal.Actor{ID: 2, IsAdmin: true, Rank: 2}
	})

	Describe("Create", func() {
		It("creates a user with roles and applies groups afterwards", func() {
			created, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator",
				Password: "secret-password",
				RoleIDs:  []int64{10},
				GroupIDs: []int64{20, 21},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Username).To(Equal("operator"))
			Expect(created.Roles).To(HaveLen(1))
			Expect(groups.applied).To(Equal([]int64{20, 21}))
		})

		It("forces is_admin when is_super_admin is set", func() {
			created, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username:     "chief",
				Password:     "secret-password",
				IsSuperAdmin: true,
				Rank:         3,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.IsAdmin).To(BeTrue())
			Expect(created.IsSuperAdmin).To(BeTrue())
		})

		It("rejects a duplicate username", func() {
			_, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator", Password: "secret-password",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator", Password: "secret-password",
			})
			Expect(err).To(Equal(internal.ErrDuplicateUsername))
		})

		It("stores a bcrypt hash, never the password", func() {
			created, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator", Password: "secret-password",
			})
			Expect(err).NotTo(HaveOccurred())

			stored := repo.users[created.ID]
			Expect(stored.PasswordHash).NotTo(Equal("secret-password"))
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret-password"))).To(Succeed())
		})

		It("blocks a rank two actor from minting admins", func() {
			_, err := service.Create(ctx, admin, &user.CreateUserRequest{
				Username: "newadmin", Password: "secret-password", IsAdmin: true,
			})
			Expect(err).To(Equal(internal.ErrInsufficientRank))
		})

		It("blocks a rank two actor from assigning a protected role", func() {
			_, err := service.Create(ctx, admin, &user.CreateUserRequest{
				Username: "staffer", Password: "secret-password", RoleIDs: []int64{11},
			})
			Expect(err).To(Equal(internal.ErrInsufficientRank))
		})
	})

	Describe("AssignRole and RevokeRole", func() {
		var targetID int64

		BeforeEach(func() {
			created, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator", Password: "secret-password",
			})
			Expect(err).NotTo(HaveOccurred())
			targetID = created.ID
		})

		It("assigning twice keeps a single membership", func() {
			Expect(service.AssignRole(ctx, superAdmin, targetID, 10)).To(Succeed())
			Expect(service.AssignRole(ctx, superAdmin, targetID, 10)).To(Succeed())

			u, err := service.GetByID(targetID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Roles).To(HaveLen(1))
		})

		It("revoking a role the user does not hold succeeds", func() {
			Expect(service.RevokeRole(ctx, superAdmin, targetID, 10)).To(Succeed())
		})

		It("gates protected roles by actor rank", func() {
			Expect(service.AssignRole(ctx, admin, targetID, 10)).To(Succeed())
			Expect(service.AssignRole(ctx, admin, targetID, 11)).To(Equal(internal.ErrInsufficientRank))
		})

		It("returns not found for a missing user", func() {
			Expect(service.AssignRole(ctx, superAdmin, 999, 10)).To(Equal(internal.ErrUserNotFound))
		})
	})

	Describe("GetPermissions", func() {
		It("unions role permissions and direct grants", func() {
			created, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator", Password: "secret-password", RoleIDs: []int64{10},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.GrantPermission(ctx, superAdmin, created.ID, "view_users")).To(Succeed())

			view, err := service.GetPermissions(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Effective).To(ConsistOf("view_appeals", "view_users"))
			Expect(view.DirectPermissions).To(ConsistOf("view_users"))
			Expect(view.Roles).To(HaveLen(1))
		})

		It("reflects role revocation immediately", func() {
			created, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator", Password: "secret-password", RoleIDs: []int64{10},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RevokeRole(ctx, superAdmin, created.ID, 10)).To(Succeed())

			view, err := service.GetPermissions(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Effective).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("blocks rank two actors from touching admin flags", func() {
			created, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator", Password: "secret-password",
			})
			Expect(err).NotTo(HaveOccurred())

			makeAdmin := true
			_, err = service.Update(ctx, admin, created.ID, &user.UpdateUserRequest{IsAdmin: &makeAdmin})
			Expect(err).To(Equal(internal.ErrInsufficientRank))
		})

		It("forces is_admin when promoting to super admin", func() {
			created, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator", Password: "secret-password",
			})
			Expect(err).NotTo(HaveOccurred())

			promote := true
			updated, err := service.Update(ctx, superAdmin, created.ID, &user.UpdateUserRequest{IsSuperAdmin: &promote})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsAdmin).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("refuses self-deletion", func() {
			Expect(service.Delete(ctx, superAdmin, superAdmin.ID)).To(HaveOccurred())
		})

		It("deletes another user", func() {
			created, err := service.Create(ctx, superAdmin, &user.CreateUserRequest{
				Username: "operator", Password: "secret-password",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, superAdmin, created.ID)).To(Succeed())
			_, err = service.GetByID(created.ID)
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})
})
