package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gmattworld/applibry-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedAccessControl makes sure the built-in permissions and the administrator
// role exist. It is safe to run on every start.
func SeedAccessControl(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]models.Permission, 0, len(models.SystemPermissions))
		for _, sp := range models.SystemPermissions {
			perm := models.Permission{
				Name:   sp.Name,
				Code:   sp.Code,
				Module: sp.Module,
			}
			if err := tx.Where(models.Permission{Code: sp.Code}).FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", sp.Code, err)
			}
			ids = append(ids, perm)
		}

		role := models.Role{
			Name:         "Administrator",
			Code:         models.AdministratorRoleCode,
			Description:  "Full access to the admin surface",
			IsSystemRole: true,
		}
		if err := tx.Where(models.Role{Code: models.AdministratorRoleCode}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed administrator role: %w", err)
		}

		grants := make([]models.RolePermission, 0, len(ids))
		for _, p := range ids {
			grants = append(grants, models.RolePermission{RoleID: role.ID, PermissionID: p.ID})
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants)
		if result.Error != nil {
			return fmt.Errorf("seed administrator grants: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			slog.Info("access control seeded", "grants", result.RowsAffected)
		}
		return nil
	})
}
