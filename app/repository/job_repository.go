package repository

import (
	"gorm.io/gorm"

	"github.com/litera-app/litera/app/models"
)

// jobRepository implements the JobRepository interface
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new translation job repository instance
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Create creates a new translation job record
func (r *jobRepository) Create(job *models.TranslationJob) error {
	return r.db.Create(job).Error
}

// GetByID retrieves a job by its ID
func (r *jobRepository) GetByID(id uint) (*models.TranslationJob, error) {
	var job models.TranslationJob
	err := r.db.First(&job, id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByUserID retrieves all jobs created by a user, newest first
func (r *jobRepository) GetByUserID(userID uint) ([]models.TranslationJob, error) {
	var jobs []models.TranslationJob
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// MarkProcessing transitions a pending job to processing. Returns false when
// the job was not pending anymore, so only one caller wins the transition.
func (r *jobRepository) MarkProcessing(id uint) (bool, error) {
	res := r.db.Model(&models.TranslationJob{}).
		Where("id = ? AND status = ?", id, models.JobStatusPending).
		Update("status", models.JobStatusProcessing)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Update saves a modified job record
func (r *jobRepository) Update(job *models.TranslationJob) error {
	return r.db.Save(job).Error
}
