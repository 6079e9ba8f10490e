package postgres_test

import (
	"testing"

	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	userDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/user"
	rolePostgres "github.com/appealsdesk/appeals-registry/internal/role/postgres"
	"github.com/appealsdesk/appeals-registry/internal/user"
	userPostgres "github.com/appealsdesk/appeals-registry/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo user.RepositoryAPI
	)

	seedPermission := func(code string, active bool) *rbacDatamodel.Permission {
		perm := &rbacDatamodel.Permission{Code: code, Name: code, Category: "appeals", IsActive: active}
		Expect(db.Create(perm).Error).NotTo(HaveOccurred())
		return perm
	}

	seedRole := func(name string, permIDs ...int64) *rbacDatamodel.Role {
		r := &rbacDatamodel.Role{Name: name, IsActive: true}
		Expect(db.Create(r).Error).NotTo(HaveOccurred())
		for _, pid := range permIDs {
			link := &rbacDatamodel.RolePermission{RoleID: r.ID, PermissionID: pid}
			Expect(db.Create(link).Error).NotTo(HaveOccurred())
		}
		return r
	}

	seedUser := func(username string) *userDatamodel.User {
		u := &userDatamodel.User{Username: username, PasswordHash: "x", Rank: 1, IsActive: true}
		Expect(db.Create(u).Error).NotTo(HaveOccurred())
		return u
	}

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&rbacDatamodel.Permission{},
			&rbacDatamodel.Role{},
			&rbacDatamodel.RolePermission{},
			&rbacDatamodel.UserRole{},
			&rbacDatamodel.UserPermission{},
			&userDatamodel.User{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = userPostgres.NewUserRepository(db)
	})

	Describe("GetRolePermissionCodes", func() {
		It("deduplicates codes shared across roles", func() {
			view := seedPermission("view_appeals", true)
			create := seedPermission("create_appeal", true)
			r1 := seedRole("Operator", view.ID, create.ID)
			r2 := seedRole("Reviewer", view.ID)
			u := seedUser("ivanov")

			_, err := repo.AssignRole(u.ID, r1.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.AssignRole(u.ID, r2.ID)
			Expect(err).NotTo(HaveOccurred())

			codes, err := repo.GetRolePermissionCodes(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes).To(ConsistOf("view_appeals", "create_appeal"))
		})

		It("reflects role permission changes made after assignment", func() {
			view := seedPermission("view_appeals", true)
			manage := seedPermission("manage_appeals", true)
			r := seedRole("Operator", view.ID)
			u := seedUser("ivanov")

			_, err := repo.AssignRole(u.ID, r.ID)
			Expect(err).NotTo(HaveOccurred())

			codes, err := repo.GetRolePermissionCodes(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes).To(ConsistOf("view_appeals"))

			roles := rolePostgres.NewRoleRepository(db)
			Expect(roles.ReplacePermissions(r.ID, []int64{manage.ID})).To(Succeed())

			codes, err = repo.GetRolePermissionCodes(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes).To(ConsistOf("manage_appeals"))
		})

		It("keeps codes that were disabled after the grant", func() {
			perm := seedPermission("export_appeals", false)
			r := seedRole("Exporter", perm.ID)
			u := seedUser("petrov")

			_, err := repo.AssignRole(u.ID, r.ID)
			Expect(err).NotTo(HaveOccurred())

			codes, err := repo.GetRolePermissionCodes(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes).To(ConsistOf("export_appeals"))
		})
	})

	Describe("AssignRole", func() {
		It("reports whether a membership row was added", func() {
			r := seedRole("Operator")
			u := seedUser("ivanov")

			added, err := repo.AssignRole(u.ID, r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(BeTrue())

			added, err = repo.AssignRole(u.ID, r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(BeFalse())
		})
	})

	Describe("GrantPermission", func() {
		It("records who granted and skips held grants", func() {
			perm := seedPermission("view_appeals", true)
			u := seedUser("ivanov")

			added, err := repo.GrantPermission(u.ID, perm.ID, 77)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(BeTrue())

			var grant rbacDatamodel.UserPermission
			Expect(db.Where("user_id = ?", u.ID).First(&grant).Error).NotTo(HaveOccurred())
			Expect(grant.GrantedBy).NotTo(BeNil())
			Expect(*grant.GrantedBy).To(Equal(int64(77)))

			added, err = repo.GrantPermission(u.ID, perm.ID, 88)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(BeFalse())
		})
	})

	Describe("DeleteCascade", func() {
		It("removes memberships and direct grants with the user", func() {
			perm := seedPermission("view_appeals", true)
			r := seedRole("Operator", perm.ID)
			u := seedUser("ivanov")
			other := seedUser("petrov")

			_, err := repo.AssignRole(u.ID, r.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.GrantPermission(u.ID, perm.ID, 77)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.AssignRole(other.ID, r.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.DeleteCascade(u.ID)).To(Succeed())

			got, err := repo.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())

			var memberships int64
			Expect(db.Model(&rbacDatamodel.UserRole{}).Where("user_id = ?", u.ID).Count(&memberships).Error).NotTo(HaveOccurred())
			Expect(memberships).To(BeZero())

			otherRoles, err := repo.GetRoles(other.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(otherRoles).To(HaveLen(1))
		})
	})

	Describe("RevokeRole", func() {
		It("leaves direct grants untouched", func() {
			perm := seedPermission("view_appeals", true)
			r := seedRole("Operator", perm.ID)
			u := seedUser("ivanov")

			_, err := repo.AssignRole(u.ID, r.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.GrantPermission(u.ID, perm.ID, 77)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.RevokeRole(u.ID, r.ID)).To(Succeed())

			roleCodes, err := repo.GetRolePermissionCodes(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleCodes).To(BeEmpty())

			direct, err := repo.GetDirectPermissionCodes(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(direct).To(ConsistOf("view_appeals"))
		})
	})
})
