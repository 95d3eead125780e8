package repository

import (
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository is the data access layer for users.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByMatricula(matricula string) (*models.User, error)
	GetByNomeMatricula(matricula, nome string) (*models.User, error)
	GetByNome(nome string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user. Unique constraint violations (email, matricula,
// nome+matricula) surface as errors from the driver.
func (r *userRepository) Create(user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByMatricula(matricula string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("matricula = ?", matricula).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByNomeMatricula(matricula, nome string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("matricula = ? AND nome = ?", matricula, nome).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByNome(nome string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("nome = ?", nome).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
