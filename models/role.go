package models

import (
	"context"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
)

const (
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

type Role struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:50;not null;unique" json:"name"`
}

func GetAllRoles(ctx context.Context) ([]*Role, error) {
	db := config.GetDB()
	var roles []*Role
	if err := db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func roleByName(ctx context.Context, name string) (*Role, error) {
	db := config.GetDB()
	var role Role
	if err := db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
