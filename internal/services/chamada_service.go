package services

import (
	"time"

	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/models"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/repository"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// StudentSummary is one entry of a professor's roll-call listing.
type StudentSummary struct {
	Matricula string `json:"matricula"`
	Presencas int64  `json:"presencas"`
}

// ChamadaService implements every attendance operation. No method lets a
// storage error escape: failures are logged here and reported to the caller
// as nil, false or an empty map. Not-found and query failure are deliberately
// indistinguishable to callers; only the log tells them apart.
type ChamadaService struct {
	users     repository.UserRepository
	rels      repository.RelationshipRepository
	presences repository.PresenceRepository
	log       *logger.Logger
}

func NewChamadaService(
	users repository.UserRepository,
	rels repository.RelationshipRepository,
	presences repository.PresenceRepository,
	log *logger.Logger,
) *ChamadaService {
	return &ChamadaService{
		users:     users,
		rels:      rels,
		presences: presences,
		log:       log,
	}
}

// CreateUser inserts a new user with a bcrypt-hashed password. Returns nil on
// any constraint violation (duplicate email, matricula or nome+matricula) or
// storage error.
func (s *ChamadaService) CreateUser(nome, senha, email, matricula string, isTeacher bool) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		s.log.Errorf("failed to hash password for %q: %v", nome, err)
		return nil
	}

	user := &models.User{
		Nome:      nome,
		Senha:     string(hash),
		Email:     email,
		Matricula: matricula,
		IsTeacher: isTeacher,
	}
	if err := s.users.Create(user); err != nil {
		s.log.Errorf("failed to create user %q: %v", nome, err)
		return nil
	}
	return user
}

// Login authenticates by matricula and password. The matricula is the
// canonical credential on both surfaces.
func (s *ChamadaService) Login(matricula, senha string) *models.User {
	user, err := s.users.GetByMatricula(matricula)
	if err != nil {
		s.log.Warnf("login failed for matricula %q: %v", matricula, err)
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(senha)); err != nil {
		s.log.Warnf("login failed for matricula %q: wrong password", matricula)
		return nil
	}
	return user
}

// AddProfessorAlunoRelationship links a professor to a student. Returns nil
// on a duplicate pair or storage error.
func (s *ChamadaService) AddProfessorAlunoRelationship(professorID, alunoID uuid.UUID) *models.ProfessorAluno {
	rel := &models.ProfessorAluno{
		ProfessorID: professorID,
		AlunoID:     alunoID,
	}
	if err := s.rels.Create(rel); err != nil {
		s.log.Errorf("failed to link professor %s and aluno %s: %v", professorID, alunoID, err)
		return nil
	}
	return rel
}

// AddRelationshipIfStudentExists looks the student up by matricula and nome
// and links them to the professor. Already-linked pairs are an idempotent
// no-op returning true. A missing user or a teacher returns false.
func (s *ChamadaService) AddRelationshipIfStudentExists(professorID uuid.UUID, matricula, nome string) bool {
	user := s.GetUserByNomeMatricula(matricula, nome)
	if user == nil {
		return false
	}
	if rel, err := s.rels.GetByPair(professorID, user.ID); err == nil && rel != nil {
		return true
	}
	if user.IsTeacher {
		return false
	}
	return s.AddProfessorAlunoRelationship(professorID, user.ID) != nil
}

// RecordPresence inserts one presence row for the relationship. A zero dia
// means today. Duplicate presences for the same day are allowed.
func (s *ChamadaService) RecordPresence(professorAlunoID uuid.UUID, dia time.Time) *models.Presenca {
	if dia.IsZero() {
		now := time.Now().UTC()
		dia = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	presenca := &models.Presenca{
		Dia:              dia,
		ProfessorAlunoID: professorAlunoID,
	}
	if err := s.presences.Create(presenca); err != nil {
		s.log.Errorf("failed to record presence for relationship %s: %v", professorAlunoID, err)
		return nil
	}
	return presenca
}

// RemoveProfessorAlunoRelationship resolves the student by name and removes
// the relationship with the professor along with every presence row, as one
// atomic unit. Returns false if the student or relationship does not exist or
// the transaction fails.
func (s *ChamadaService) RemoveProfessorAlunoRelationship(professorID uuid.UUID, nomeAluno string) bool {
	user := s.GetUserByNome(nomeAluno)
	if user == nil {
		return false
	}

	rel, err := s.rels.GetByPair(professorID, user.ID)
	if err != nil {
		s.log.Warnf("no relationship between professor %s and aluno %q: %v", professorID, nomeAluno, err)
		return false
	}

	if err := s.rels.DeleteWithPresences(rel.ID); err != nil {
		s.log.Errorf("failed to remove relationship %s: %v", rel.ID, err)
		return false
	}
	return true
}

// RetrieveStudentsForProfessor maps each linked non-teacher user's nome to
// their matricula and presence count. Returns an empty map on any failure.
func (s *ChamadaService) RetrieveStudentsForProfessor(professorID uuid.UUID) map[string]StudentSummary {
	out := map[string]StudentSummary{}

	rels, err := s.rels.ListByProfessor(professorID)
	if err != nil {
		s.log.Errorf("failed to list students for professor %s: %v", professorID, err)
		return map[string]StudentSummary{}
	}

	for _, rel := range rels {
		user, err := s.users.GetByID(rel.AlunoID)
		if err != nil {
			s.log.Errorf("failed to load aluno %s: %v", rel.AlunoID, err)
			return map[string]StudentSummary{}
		}
		if user.IsTeacher {
			continue
		}
		count, err := s.presences.CountByRelationship(rel.ID)
		if err != nil {
			s.log.Errorf("failed to count presences for relationship %s: %v", rel.ID, err)
			return map[string]StudentSummary{}
		}
		out[user.Nome] = StudentSummary{Matricula: user.Matricula, Presencas: count}
	}
	return out
}

// RetrieveProfessorsForStudent maps each linked teacher's nome to the
// student's presence count with them. Returns an empty map on any failure.
func (s *ChamadaService) RetrieveProfessorsForStudent(alunoID uuid.UUID) map[string]int64 {
	out := map[string]int64{}

	rels, err := s.rels.ListByAluno(alunoID)
	if err != nil {
		s.log.Errorf("failed to list professors for aluno %s: %v", alunoID, err)
		return map[string]int64{}
	}

	for _, rel := range rels {
		user, err := s.users.GetByID(rel.ProfessorID)
		if err != nil {
			s.log.Errorf("failed to load professor %s: %v", rel.ProfessorID, err)
			return map[string]int64{}
		}
		if !user.IsTeacher {
			continue
		}
		count, err := s.presences.CountByRelationship(rel.ID)
		if err != nil {
			s.log.Errorf("failed to count presences for relationship %s: %v", rel.ID, err)
			return map[string]int64{}
		}
		out[user.Nome] = count
	}
	return out
}

// GetUserByNomeMatricula returns nil both when no user matches and when the
// query fails.
func (s *ChamadaService) GetUserByNomeMatricula(matricula, nome string) *models.User {
	user, err := s.users.GetByNomeMatricula(matricula, nome)
	if err != nil {
		s.log.Debugf("no user with matricula %q and nome %q: %v", matricula, nome, err)
		return nil
	}
	return user
}

// GetUserByNome returns nil both when no user matches and when the query
// fails.
func (s *ChamadaService) GetUserByNome(nome string) *models.User {
	user, err := s.users.GetByNome(nome)
	if err != nil {
		s.log.Debugf("no user with nome %q: %v", nome, err)
		return nil
	}
	return user
}

// GetProfessorAlunoID returns the relationship id for the pair, or uuid.Nil
// when it does not exist or the query fails.
func (s *ChamadaService) GetProfessorAlunoID(professorID, alunoID uuid.UUID) uuid.UUID {
	rel, err := s.rels.GetByPair(professorID, alunoID)
	if err != nil {
		s.log.Debugf("no relationship between professor %s and aluno %s: %v", professorID, alunoID, err)
		return uuid.Nil
	}
	return rel.ID
}
