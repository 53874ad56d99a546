package repository

import (
	"github.com/spge/groundcheck/internal/database"
	"github.com/spge/groundcheck/internal/models"
	"github.com/spge/groundcheck/internal/utils"
	"gorm.io/gorm"
)

// listColumns leaves out the signature image.
const listColumns = "id, clerk_name, division_id, division_code, foreman_id, foreman_code, notes, status, created_by, created_at, updated_at"

// GormGroundCheckRepository is a GORM implementation of GroundCheckRepository
type GormGroundCheckRepository struct {
	db *gorm.DB
}

// NewGroundCheckRepository creates a new GroundCheckRepository
func NewGroundCheckRepository(db *gorm.DB) GroundCheckRepository {
	return &GormGroundCheckRepository{db: db}
}

// Create inserts the task row first, then the attachments with their
// positions, so a failure leaves nothing behind.
func (r *GormGroundCheckRepository) Create(task *models.GroundCheckTask) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		attachments := task.Attachments
		task.Attachments = nil
		if err := tx.Create(task).Error; err != nil {
			task.Attachments = attachments
			return err
		}

		for i := range attachments {
			attachments[i].TaskID = task.ID
			attachments[i].Position = i
		}
		task.Attachments = attachments
		if len(attachments) == 0 {
			return nil
		}
		return tx.Create(&task.Attachments).Error
	})
}

// FindByID finds a task by ID with its attachments
func (r *GormGroundCheckRepository) FindByID(id string) (*models.GroundCheckTask, error) {
	var task models.GroundCheckTask
	err := r.db.
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves a page of tasks. Attachment counts and signature presence
// come from queries over the page's ids.
func (r *GormGroundCheckRepository) List(params utils.PaginationParams) ([]TaskListItem, int64, error) {
	var total int64
	if err := r.db.Model(&models.GroundCheckTask{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.GroundCheckTask
	err := r.db.
		Select(listColumns).
		Order("created_at DESC").
		Order("id").
		Scopes(database.Paginate(params)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]TaskListItem, len(tasks))
	if len(tasks) == 0 {
		return items, total, nil
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	var counts []struct {
		TaskID string
		Count  int
	}
	err = r.db.Model(&models.Attachment{}).
		Select("task_id, COUNT(*) AS count").
		Where("task_id IN ?", ids).
		Group("task_id").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, err
	}

	var signed []string
	err = r.db.Model(&models.GroundCheckTask{}).
		Where("id IN ? AND signature <> ''", ids).
		Pluck("id", &signed).Error
	if err != nil {
		return nil, 0, err
	}

	byTask := make(map[string]int, len(counts))
	for _, c := range counts {
		byTask[c.TaskID] = c.Count
	}
	isSigned := make(map[string]bool, len(signed))
	for _, id := range signed {
		isSigned[id] = true
	}
	for i, t := range tasks {
		items[i] = TaskListItem{Task: t, AttachmentCount: byTask[t.ID], Signed: isSigned[t.ID]}
	}
	return items, total, nil
}

func (r *GormGroundCheckRepository) UpdateSignature(id, signature string) error {
	result := r.db.Model(&models.GroundCheckTask{}).Where("id = ?", id).Update("signature", signature)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the attachments and then the task in a transaction
func (r *GormGroundCheckRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.GroundCheckTask{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
