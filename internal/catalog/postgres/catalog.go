package postgres

import (
	"github.com/slsoft/permission-portal/internal/catalog"
	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
	catalogDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/catalog"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetAll() ([]*catalogDatamodel.Permission, error) {
	var permissions []*catalogDatamodel.Permission
	err := r.db.Order("category ASC, key ASC").Find(&permissions).Error
	return permissions, err
}

func (r *CatalogRepository) Create(p *catalogDatamodel.Permission) error {
	return r.db.Create(p).Error
}

func (r *CatalogRepository) Update(p *catalogDatamodel.Permission) error {
	return r.db.Save(p).Error
}

func (r *CatalogRepository) Delete(id string) error {
	return r.db.Delete(&catalogDatamodel.Permission{}, "id = ?", id).Error
}

func (r *CatalogRepository) RepointAssignments(fromPermissionID, toPermissionID string) error {
	// drop rows that would collide with an existing grant on the survivor
	err := r.db.Exec(`DELETE FROM role_permissions
		WHERE permission_id = ?
		AND EXISTS (
			SELECT 1 FROM role_permissions rp2
			WHERE rp2.permission_id = ?
			AND rp2.customer_id = role_permissions.customer_id
			AND rp2.role_id = role_permissions.role_id
		)`, fromPermissionID, toPermissionID).Error
	if err != nil {
		return err
	}
	return r.db.Model(&assignmentDatamodel.RolePermission{}).
		Where("permission_id = ?", fromPermissionID).
		Update("permission_id", toPermissionID).Error
}

func (r *CatalogRepository) WithinTransaction(fn func(catalog.RepositoryAPI) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&CatalogRepository{db: tx})
	})
}
