package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	userDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/user"
	"github.com/appealsdesk/appeals-registry/internal/permission"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the permission catalog and the system role",
	Long:  `Seed the permission catalog, the built-in System Administrator role and a bootstrap super admin account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"user_permissions", "user_roles", "role_permissions",
				"permission_group_items", "permission_groups", "roles", "permissions",
			} {
				if err := gormDB.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing authorization data")
		}

		if err := seedPermissions(gormDB); err != nil {
			log.Fatalf("failed to seed permissions: %v", err)
		}
		if err := seedSystemRole(gormDB); err != nil {
			log.Fatalf("failed to seed system role: %v", err)
		}
		if err := seedSuperAdmin(gormDB, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("failed to seed super admin: %v", err)
		}
	},
}

// seedPermissions inserts catalog entries that are not in the database yet.
// Existing rows are left alone so operator toggles survive reseeding.
func seedPermissions(db *gorm.DB) error {
	for _, p := range permission.DefaultCatalog() {
		var existing rbacDatamodel.Permission
		err := db.Where("code = ?", p.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row := rbacDatamodel.Permission{
			Code:        p.Code,
			Name:        p.Name,
			Description: p.Description,
			Category:    string(p.Category),
			IsActive:    true,
			CreatedAt:   time.Now(),
		}
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("insert permission %s: %w", p.Code, err)
		}
	}
	fmt.Println("Seeded permission catalog")
	return nil
}

func seedSystemRole(db *gorm.DB) error {
	const roleName = "System Administrator"

	var role rbacDatamodel.Role
	err := db.Where("name = ?", roleName).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = rbacDatamodel.Role{
			Name:        roleName,
			Description: "Built-in role holding every permission",
			IsSystem:    true,
			IsActive:    true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := db.Create(&role).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var perms []rbacDatamodel.Permission
	if err := db.Find(&perms).Error; err != nil {
		return err
	}

	for _, p := range perms {
		var link rbacDatamodel.RolePermission
		err := db.Where("role_id = ? AND permission_id = ?", role.ID, p.ID).First(&link).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		link = rbacDatamodel.RolePermission{
			RoleID:       role.ID,
			PermissionID: p.ID,
			CreatedAt:    time.Now(),
		}
		if err := db.Create(&link).Error; err != nil {
			return err
		}
	}

	fmt.Println("Seeded system role:", roleName)
	return nil
}

func seedSuperAdmin(db *gorm.DB, bcryptCost int) error {
	const username = "admin"

	var existing userDatamodel.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		fmt.Println("Super admin already exists:", username)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe!123"), bcryptCost)
	if err != nil {
		return err
	}

	admin := userDatamodel.User{
		Username:     username,
		Name:         "System",
		Surname:      "Administrator",
		PasswordHash: string(hash),
		IsAdmin:      true,
		IsSuperAdmin: true,
		Rank:         permission.RankSuperAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	fmt.Println("Seeded super admin:", username, "(change the default password immediately)")
	return nil
}
