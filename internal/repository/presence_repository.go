package repository

import (
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PresenceRepository is the data access layer for presence rows.
type PresenceRepository interface {
	Create(presenca *models.Presenca) error
	CountByRelationship(professorAlunoID uuid.UUID) (int64, error)
}

type presenceRepository struct {
	db *gorm.DB
}

func NewPresenceRepository(db *gorm.DB) PresenceRepository {
	return &presenceRepository{db: db}
}

func (r *presenceRepository) Create(presenca *models.Presenca) error {
	if presenca.ID == uuid.Nil {
		presenca.ID = uuid.New()
	}
	return r.db.Create(presenca).Error
}

func (r *presenceRepository) CountByRelationship(professorAlunoID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Presenca{}).
		Where("professor_aluno_id = ?", professorAlunoID).
		Count(&count).Error
	return count, err
}
