package repository

import (
	"gorm.io/gorm"

	"github.com/litera-app/litera/app/models"
)

// bookRepository implements the BookRepository interface
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository instance
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book record
func (r *bookRepository) Create(book *models.Book) error {
	return r.db.Create(book).Error
}

// GetByID retrieves a book by its ID
func (r *bookRepository) GetByID(id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByUserID retrieves all books uploaded by a user, newest first
func (r *bookRepository) GetByUserID(userID uint) ([]models.Book, error) {
	var books []models.Book
	err := r.db.Where("user_id = ?", userID).Order("upload_date DESC").Find(&books).Error
	return books, err
}
