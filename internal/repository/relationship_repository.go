package repository

import (
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RelationshipRepository is the data access layer for professor-aluno links.
type RelationshipRepository interface {
	Create(rel *models.ProfessorAluno) error
	GetByPair(professorID, alunoID uuid.UUID) (*models.ProfessorAluno, error)
	ListByProfessor(professorID uuid.UUID) ([]models.ProfessorAluno, error)
	ListByAluno(alunoID uuid.UUID) ([]models.ProfessorAluno, error)
	DeleteWithPresences(id uuid.UUID) error
}

type relationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) Create(rel *models.ProfessorAluno) error {
	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}
	return r.db.Create(rel).Error
}

func (r *relationshipRepository) GetByPair(professorID, alunoID uuid.UUID) (*models.ProfessorAluno, error) {
	var rel models.ProfessorAluno
	err := r.db.Where("professor_id = ? AND aluno_id = ?", professorID, alunoID).First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *relationshipRepository) ListByProfessor(professorID uuid.UUID) ([]models.ProfessorAluno, error) {
	var rels []models.ProfessorAluno
	err := r.db.Where("professor_id = ?", professorID).Find(&rels).Error
	return rels, err
}

func (r *relationshipRepository) ListByAluno(alunoID uuid.UUID) ([]models.ProfessorAluno, error) {
	var rels []models.ProfessorAluno
	err := r.db.Where("aluno_id = ?", alunoID).Find(&rels).Error
	return rels, err
}

// DeleteWithPresences removes a relationship together with all of its
// presence rows in a single transaction. Children go first; any failure
// rolls both deletes back.
func (r *relationshipRepository) DeleteWithPresences(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("professor_aluno_id = ?", id).Delete(&models.Presenca{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProfessorAluno{}, "id = ?", id).Error
	})
}
