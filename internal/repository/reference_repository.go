package repository

import (
	"github.com/spge/groundcheck/internal/models"
	"gorm.io/gorm"
)

// GormDivisionRepository is a GORM implementation of DivisionRepository
type GormDivisionRepository struct {
	db *gorm.DB
}

// NewDivisionRepository creates a new DivisionRepository
func NewDivisionRepository(db *gorm.DB) DivisionRepository {
	return &GormDivisionRepository{db: db}
}

func (r *GormDivisionRepository) Create(division *models.Division) error {
	return r.db.Create(division).Error
}

func (r *GormDivisionRepository) FindByID(id string) (*models.Division, error) {
	var division models.Division
	if err := r.db.First(&division, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &division, nil
}

func (r *GormDivisionRepository) FindByCode(code string) (*models.Division, error) {
	var division models.Division
	if err := r.db.Where("code = ?", code).First(&division).Error; err != nil {
		return nil, err
	}
	return &division, nil
}

func (r *GormDivisionRepository) List() ([]models.Division, error) {
	var divisions []models.Division
	if err := r.db.Order("code").Find(&divisions).Error; err != nil {
		return nil, err
	}
	return divisions, nil
}

// Delete removes the division and its foremen in a transaction. Users
// assigned to the division are detached; tasks keep their code snapshots.
func (r *GormDivisionRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("division_id = ?", id).Delete(&models.Foreman{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("division_id = ?", id).Update("division_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Division{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormDivisionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Division{}).Count(&count).Error
	return count, err
}

// GormForemanRepository is a GORM implementation of ForemanRepository
type GormForemanRepository struct {
	db *gorm.DB
}

// NewForemanRepository creates a new ForemanRepository
func NewForemanRepository(db *gorm.DB) ForemanRepository {
	return &GormForemanRepository{db: db}
}

func (r *GormForemanRepository) Create(foreman *models.Foreman) error {
	return r.db.Create(foreman).Error
}

func (r *GormForemanRepository) FindByID(id string) (*models.Foreman, error) {
	var foreman models.Foreman
	if err := r.db.First(&foreman, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &foreman, nil
}

func (r *GormForemanRepository) FindByCode(divisionID, code string) (*models.Foreman, error) {
	var foreman models.Foreman
	if err := r.db.Where("division_id = ? AND code = ?", divisionID, code).First(&foreman).Error; err != nil {
		return nil, err
	}
	return &foreman, nil
}

func (r *GormForemanRepository) List(divisionID string) ([]models.Foreman, error) {
	var foremen []models.Foreman
	query := r.db.Order("division_id").Order("code")
	if divisionID != "" {
		query = query.Where("division_id = ?", divisionID)
	}
	if err := query.Find(&foremen).Error; err != nil {
		return nil, err
	}
	return foremen, nil
}

func (r *GormForemanRepository) Delete(id string) error {
	result := r.db.Delete(&models.Foreman{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormForemanRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Foreman{}).Count(&count).Error
	return count, err
}
