package database

import (
	"fmt"
	"strings"

	"khet-backend/internal/models"
	"khet-backend/internal/scope"

	"gorm.io/gorm"
)

// EnsureViewPermissions seeds one view-only permission per registered entity
// type. Runs at every deploy after AutoMigrate; FirstOrCreate on the unique
// entity_type keeps it idempotent, so re-running never duplicates rows.
func EnsureViewPermissions(db *gorm.DB) error {
	for _, entity := range scope.All {
		var perm models.Permission
		err := db.Where(models.Permission{EntityType: string(entity)}).
			Attrs(models.Permission{
				Codename: fmt.Sprintf("can_view_%s", entity),
				Name:     fmt.Sprintf("Can View %s", titleCase(string(entity))),
			}).
			FirstOrCreate(&perm).Error
		if err != nil {
			return fmt.Errorf("seed view permission for %s: %w", entity, err)
		}
	}
	return nil
}

func titleCase(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
