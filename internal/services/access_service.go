package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/listing"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	roleCodes       = slug.NewResolver("roles", "code")
	permissionCodes = slug.NewResolver("permissions", "code")
)

type RoleService struct {
	db    *gorm.DB
	assoc *association.Manager
}

func NewRoleService(db *gorm.DB, assoc *association.Manager) *RoleService {
	return &RoleService{db: db, assoc: assoc}
}

func (s *RoleService) List(ctx context.Context, search string, off listing.Offset) (listing.Result[models.Role], error) {
	q := s.db.WithContext(ctx).Model(&models.Role{}).Scopes(listing.Search("name", search))
	return paginate[models.Role](q, off, "name ASC", "Permissions")
}

func (s *RoleService) Get(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return findByID[models.Role](ctx, s.db, id, "Role", "Permissions")
}

func (s *RoleService) Create(ctx context.Context, actor *uuid.UUID, req *dto.CreateRoleRequest) (*models.Role, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = slug.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := ensureUniqueName(tx, &models.Role{}, "Role", name, nil); err != nil {
				return err
			}
			code, err := roleCodes.Resolve(ctx, tx, name, nil)
			if err != nil {
				return err
			}
			role := models.Role{Name: name, Code: code, Description: req.Description}
			role.Touch(actor)
			if err := tx.Omit("Permissions").Create(&role).Error; err != nil {
				return err
			}
			id = role.ID
			return replacePermissions(tx, role.ID, req.PermissionIDs)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update renames, re-describes and optionally replaces the permission set.
// The code of a system role never changes.
func (s *RoleService) Update(ctx context.Context, actor *uuid.UUID, id uuid.UUID, req *dto.UpdateRoleRequest) (*models.Role, error) {
	var name string
	if req.Name != nil {
		var err error
		if name, err = normalizeName(*req.Name); err != nil {
			return nil, err
		}
	}

	err := slug.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var role models.Role
			if err := tx.First(&role, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("Role")
				}
				return err
			}
			req.ApplyTo(&role)
			if req.Name != nil && name != role.Name {
				if err := ensureUniqueName(tx, &models.Role{}, "Role", name, &role.ID); err != nil {
					return err
				}
				role.Name = name
				if !role.IsSystemRole {
					code, err := roleCodes.Resolve(ctx, tx, name, &role.ID)
					if err != nil {
						return err
					}
					role.Code = code
				}
			}
			role.Touch(actor)
			if err := tx.Omit("Permissions").Save(&role).Error; err != nil {
				return err
			}
			if req.PermissionIDs != nil {
				return replacePermissions(tx, role.ID, *req.PermissionIDs)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *RoleService) ToggleStatus(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.Role, error) {
	if _, err := toggleActive[models.Role](ctx, s.db, id, "Role", actor); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a custom role. Users holding it are left without a role.
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Role")
			}
			return err
		}
		if role.IsSystemRole {
			return apperr.Conflict("System roles cannot be deleted")
		}
		if err := s.assoc.DetachOwner(tx, association.RolePermissions, role.ID); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("role_id = ?", role.ID).Update("role_id", nil).Error; err != nil {
			return fmt.Errorf("unassign role: %w", err)
		}
		return tx.Delete(&role).Error
	})
}

func (s *RoleService) Grant(ctx context.Context, roleID, permissionID uuid.UUID) (*models.Role, error) {
	if err := s.assoc.Add(ctx, association.RolePermissions, roleID, permissionID); err != nil {
		return nil, err
	}
	return s.Get(ctx, roleID)
}

func (s *RoleService) Revoke(ctx context.Context, roleID, permissionID uuid.UUID) (*models.Role, error) {
	if err := s.assoc.Remove(ctx, association.RolePermissions, roleID, permissionID); err != nil {
		return nil, err
	}
	return s.Get(ctx, roleID)
}

func replacePermissions(tx *gorm.DB, roleID uuid.UUID, ids []uuid.UUID) error {
	ids = uniqueIDs(ids)
	if len(ids) > 0 {
		var found int64
		if err := tx.Model(&models.Permission{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return fmt.Errorf("load permissions: %w", err)
		}
		if int(found) != len(ids) {
			return apperr.NotFound("Permission")
		}
	}
	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return fmt.Errorf("clear role permissions: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.RolePermission, 0, len(ids))
	for _, pid := range ids {
		rows = append(rows, models.RolePermission{RoleID: roleID, PermissionID: pid})
	}
	return tx.Create(&rows).Error
}

type PermissionService struct {
	db    *gorm.DB
	assoc *association.Manager
}

func NewPermissionService(db *gorm.DB, assoc *association.Manager) *PermissionService {
	return &PermissionService{db: db, assoc: assoc}
}

func (s *PermissionService) List(ctx context.Context, search string, off listing.Offset) (listing.Result[models.Permission], error) {
	q := s.db.WithContext(ctx).Model(&models.Permission{}).Scopes(listing.Search("name", search))
	return paginate[models.Permission](q, off, "module ASC, name ASC")
}

func (s *PermissionService) Get(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	return findByID[models.Permission](ctx, s.db, id, "Permission")
}

func (s *PermissionService) Create(ctx context.Context, actor *uuid.UUID, req *dto.CreatePermissionRequest) (*models.Permission, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	module := models.Module(req.Module)
	if module == "" {
		module = models.ModuleCore
	}

	var permission models.Permission
	err = slug.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := ensureUniqueName(tx, &models.Permission{}, "Permission", name, nil); err != nil {
				return err
			}
			code, err := permissionCodes.Resolve(ctx, tx, name, nil)
			if err != nil {
				return err
			}
			permission = models.Permission{Name: name, Code: code, Description: req.Description, Module: module}
			permission.Touch(actor)
			return tx.Create(&permission).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, permission.ID)
}

// Update never touches the code. Route guards match on it.
func (s *PermissionService) Update(ctx context.Context, actor *uuid.UUID, id uuid.UUID, req *dto.UpdatePermissionRequest) (*models.Permission, error) {
	var name string
	if req.Name != nil {
		var err error
		if name, err = normalizeName(*req.Name); err != nil {
			return nil, err
		}
	}

	var permission models.Permission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&permission, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Permission")
			}
			return err
		}
		req.ApplyTo(&permission)
		if req.Name != nil && name != permission.Name {
			if err := ensureUniqueName(tx, &models.Permission{}, "Permission", name, &permission.ID); err != nil {
				return err
			}
			permission.Name = name
		}
		permission.Touch(actor)
		return tx.Save(&permission).Error
	})
	if apperr.IsUniqueViolation(err) {
		return nil, apperr.DuplicateName("Permission")
	}
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

func (s *PermissionService) ToggleStatus(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.Permission, error) {
	return toggleActive[models.Permission](ctx, s.db, id, "Permission", actor)
}

func (s *PermissionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Permission{}, id, "Permission"); err != nil {
			return err
		}
		if err := s.assoc.DetachTarget(tx, association.RolePermissions, id); err != nil {
			return err
		}
		return tx.Delete(&models.Permission{}, "id = ?", id).Error
	})
}
