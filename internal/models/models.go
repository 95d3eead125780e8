package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a single account. Whether it acts as a professor or an aluno in a
// given relationship is decided only by the IsTeacher flag.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Nome      string    `json:"nome" gorm:"size:50;not null;uniqueIndex:uq_users_nome_matricula"`
	Senha     string    `json:"-" gorm:"size:100;not null"` // bcrypt hash
	Email     string    `json:"email" gorm:"size:100;not null;uniqueIndex:uq_users_email"`
	Matricula string    `json:"matricula" gorm:"size:20;not null;uniqueIndex:uq_users_matricula;uniqueIndex:uq_users_nome_matricula"`
	IsTeacher bool      `json:"isTeacher" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// ProfessorAluno links a professor to one of their alunos. The pair is
// unique: a student is enrolled with a professor at most once.
type ProfessorAluno struct {
	ID          uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	ProfessorID uuid.UUID `json:"professor_id" gorm:"type:text;not null;uniqueIndex:uq_professor_aluno"`
	AlunoID     uuid.UUID `json:"aluno_id" gorm:"type:text;not null;uniqueIndex:uq_professor_aluno"`
	CreatedAt   time.Time `json:"created_at"`

	Professor User `json:"-" gorm:"foreignKey:ProfessorID"`
	Aluno     User `json:"-" gorm:"foreignKey:AlunoID"`
}

func (ProfessorAluno) TableName() string { return "professor_aluno" }

// Presenca is one roll-call mark for a relationship on a day. Rows are never
// updated and are removed only when their relationship is removed.
type Presenca struct {
	ID               uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Dia              time.Time `json:"dia" gorm:"not null"`
	ProfessorAlunoID uuid.UUID `json:"professor_aluno_id" gorm:"type:text;not null;index"`

	ProfessorAluno ProfessorAluno `json:"-" gorm:"foreignKey:ProfessorAlunoID"`
}

func (Presenca) TableName() string { return "presenca" }
