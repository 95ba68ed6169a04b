package models

// Module groups permissions by the area of the admin surface they guard.
type Module string

const (
	ModuleCore         Module = "core"
	ModuleApps         Module = "apps"
	ModuleCategories   Module = "categories"
	ModuleTags         Module = "tags"
	ModulePlatforms    Module = "platforms"
	ModuleAccess       Module = "access"
	ModuleUsers        Module = "users"
	ModuleAnalytics    Module = "analytics"
	ModuleIntegrations Module = "integrations"
)

func (m Module) Valid() bool {
	switch m {
	case ModuleCore, ModuleApps, ModuleCategories, ModuleTags, ModulePlatforms,
		ModuleAccess, ModuleUsers, ModuleAnalytics, ModuleIntegrations:
		return true
	}
	return false
}

type Role struct {
	Base
	Name         string       `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Code         string       `gorm:"size:150;not null;uniqueIndex" json:"code"`
	Description  string       `gorm:"type:text" json:"description"`
	IsSystemRole bool         `gorm:"default:false" json:"is_system_role"`
	Permissions  []Permission `gorm:"many2many:role_permissions" json:"permissions"`
}

type Permission struct {
	Base
	Name        string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Code        string `gorm:"size:150;not null;uniqueIndex" json:"code"`
	Description string `gorm:"type:text" json:"description"`
	Module      Module `gorm:"size:30;default:'core'" json:"module"`
}

// Grants reports whether the role carries an active permission with the given code.
func (r *Role) Grants(code string) bool {
	if r == nil || !r.IsActive || r.IsDeleted {
		return false
	}
	for _, p := range r.Permissions {
		if p.Code == code && p.IsActive && !p.IsDeleted {
			return true
		}
	}
	return false
}

// Permission codes guarding the admin routes.
const (
	PermManageApps         = "manage-apps"
	PermManageCategories   = "manage-categories"
	PermManageTags         = "manage-tags"
	PermManagePlatforms    = "manage-platforms"
	PermManageRoles        = "manage-roles"
	PermManagePermissions  = "manage-permissions"
	PermManageUsers        = "manage-users"
	PermViewAnalytics      = "view-analytics"
	PermManageIntegrations = "manage-integrations"
)

// SystemPermission describes a permission created at startup.
type SystemPermission struct {
	Name   string
	Code   string
	Module Module
}

var SystemPermissions = []SystemPermission{
	{"Manage Apps", PermManageApps, ModuleApps},
	{"Manage Categories", PermManageCategories, ModuleCategories},
	{"Manage Tags", PermManageTags, ModuleTags},
	{"Manage Platforms", PermManagePlatforms, ModulePlatforms},
	{"Manage Roles", PermManageRoles, ModuleAccess},
	{"Manage Permissions", PermManagePermissions, ModuleAccess},
	{"Manage Users", PermManageUsers, ModuleUsers},
	{"View Analytics", PermViewAnalytics, ModuleAnalytics},
	{"Manage Integrations", PermManageIntegrations, ModuleIntegrations},
}

const AdministratorRoleCode = "administrator"
