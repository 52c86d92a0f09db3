package database

import (
	"log"
	"strings"

	"github.com/miracle7662/RestaurantNew-sub004/internal/config"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var defaultPaymentModes = []entity.PaymentMode{
	{Name: "Cash", IsCash: true, SortOrder: 1, IsActive: true},
	{Name: "Card", SortOrder: 2, IsActive: true},
	{Name: "UPI", SortOrder: 3, IsActive: true},
}

// SeedDefaultData seeds permissions, roles, payment modes and the admin user.
// Existing rows are left untouched.
func SeedDefaultData(db *gorm.DB, admin config.AdminConfig) error {
	log.Println("Seeding default data...")

	permissions := make(map[string]entity.Permission, len(enum.AllPermissions))
	for _, name := range enum.AllPermissions {
		permission := entity.Permission{Name: name}
		if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&permission).Error; err != nil {
			return err
		}
		permissions[name] = permission
	}

	for roleName, names := range enum.RolePermissions {
		var role entity.Role
		if err := db.Where("name = ?", roleName).First(&role).Error; err == nil {
			continue
		}
		role = entity.Role{Name: roleName}
		for _, name := range names {
			role.Permissions = append(role.Permissions, permissions[name])
		}
		if err := db.Create(&role).Error; err != nil {
			log.Printf("Warning: failed to create %s role: %v", roleName, err)
		}
	}

	for i := range defaultPaymentModes {
		mode := defaultPaymentModes[i]
		if err := db.Where("name = ?", mode.Name).FirstOrCreate(&mode).Error; err != nil {
			log.Printf("Warning: failed to create payment mode %s: %v", mode.Name, err)
		}
	}

	if admin.Username != "" && admin.Password != "" {
		seedAdmin(db, admin)
	}

	log.Println("Default data seeding completed")
	return nil
}

func seedAdmin(db *gorm.DB, admin config.AdminConfig) {
	var existing entity.User
	if err := db.Where("username = ?", admin.Username).First(&existing).Error; err == nil {
		log.Printf("Super admin user already exists: %s", admin.Username)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Warning: failed to hash admin password: %v", err)
		return
	}

	var role entity.Role
	if err := db.Where("name = ?", enum.RoleSuperAdmin).First(&role).Error; err != nil {
		log.Printf("Warning: super-admin role missing: %v", err)
		return
	}

	name := strings.TrimSpace(admin.Name)
	if name == "" {
		name = "Super Admin"
	}
	user := entity.User{
		Username: admin.Username,
		FullName: name,
		Password: string(hashedPassword),
		Provider: "local",
		IsActive: true,
		Roles:    []entity.Role{role},
	}
	if admin.Email != "" {
		email := strings.ToLower(admin.Email)
		user.Email = &email
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("Warning: failed to create super admin user: %v", err)
		return
	}
	log.Printf("Super admin user created: %s", admin.Username)
}
