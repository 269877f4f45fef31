package models

import (
	"context"
	"os"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
	"gorm.io/gorm"
)

// Migrate creates/updates the schema and seeds the fixed rows.
func Migrate() error {
	db := config.GetDB()
	err := db.AutoMigrate(
		&Role{},
		&User{},
		&Product{},
		&ImportSlip{},
		&ImportSlipDetail{},
		&ExportSlip{},
		&ExportSlipDetail{},
		&Notification{},
		&AuditLog{},
	)
	if err != nil {
		return err
	}
	if err := seedRoles(db); err != nil {
		return err
	}
	return seedAdmin(db)
}

func seedRoles(db *gorm.DB) error {
	for _, name := range []string{RoleManager, RoleEmployee} {
		var count int64
		if err := db.Model(&Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&Role{Name: name}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// seedAdmin creates the bootstrap manager account on an empty database.
// Credentials come from ADMIN_EMPLOYEE_ID / ADMIN_PASSWORD.
func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	employeeId := os.Getenv("ADMIN_EMPLOYEE_ID")
	password := os.Getenv("ADMIN_PASSWORD")
	if employeeId == "" || password == "" {
		return nil
	}

	role, err := roleByName(context.Background(), RoleManager)
	if err != nil {
		return err
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := User{
		EmployeeId: employeeId,
		Password:   hashed,
		FullName:   "Administrator",
		RoleId:     role.ID,
		IsActive:   utils.NewTrue(),
	}
	return db.Create(&admin).Error
}
