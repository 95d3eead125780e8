package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/models"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIHandler serves the JSON surface consumed by the React front end.
type APIHandler struct {
	chamada *services.ChamadaService
	auth    *services.AuthService
}

func NewAPIHandler(chamada *services.ChamadaService, auth *services.AuthService) *APIHandler {
	return &APIHandler{
		chamada: chamada,
		auth:    auth,
	}
}

type loginRequest struct {
	Matricula string `json:"matricula" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type signinRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	StudentNumber string `json:"studentNumber" binding:"required"`
	Password      string `json:"password" binding:"required"`
	IsTeacher     bool   `json:"isTeacher"`
}

type chamadaRequest struct {
	Type      string `json:"type" binding:"required"`
	Nome      string `json:"nome" binding:"required"`
	Matricula string `json:"matricula" binding:"required"`
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"nome":      user.Nome,
		"matricula": user.Matricula,
		"isTeacher": user.IsTeacher,
	}
}

// Home answers the API root.
func (h *APIHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API Home"})
}

// User greets by path parameter. No auth, kept from the original surface.
func (h *APIHandler) User(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Hello, %s!", c.Param("username"))})
}

// About returns the static about text.
func (h *APIHandler) About(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "This is the about page."})
}

// Chamada is the roll-call endpoint. Students get their professors with
// presence counts. Professors get their student listing; a POST with type
// "Adicionar" first links (or creates and links) a student.
func (h *APIHandler) Chamada(c *gin.Context) {
	claims := currentClaims(c)

	if !claims.IsTeacher {
		teachers := h.chamada.RetrieveProfessorsForStudent(claims.UserID)
		c.JSON(http.StatusOK, gin.H{"teachers": teachers})
		return
	}

	if c.Request.Method == http.MethodPost {
		var req chamadaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Type == "Adicionar" {
			h.addStudent(c, claims, req)
			return
		}
	}

	alunos := h.chamada.RetrieveStudentsForProfessor(claims.UserID)
	c.JSON(http.StatusOK, gin.H{"alunos": alunos})
}

func (h *APIHandler) addStudent(c *gin.Context, claims *services.TokenClaims, req chamadaRequest) {
	existing := h.chamada.GetUserByNomeMatricula(req.Matricula, req.Nome)
	if existing != nil {
		if existing.IsTeacher {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Matrícula já existente para um professor"})
			return
		}
		if h.chamada.AddRelationshipIfStudentExists(claims.UserID, req.Matricula, req.Nome) {
			c.JSON(http.StatusOK, gin.H{"message": "Relação com aluno existente adicionada com sucesso"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao adicionar relação com aluno existente"})
		}
		return
	}

	// Unknown student: register them with a default password and a derived
	// email, then link.
	aluno := h.chamada.CreateUser(req.Nome, "default_password", fmt.Sprintf("%s@example.com", req.Nome), req.Matricula, false)
	if aluno == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar novo aluno"})
		return
	}
	if h.chamada.AddRelationshipIfStudentExists(claims.UserID, aluno.Matricula, aluno.Nome) {
		c.JSON(http.StatusOK, gin.H{"message": "Novo aluno criado e relação adicionada com sucesso"})
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao adicionar relação com novo aluno"})
	}
}

// RemoveRelationship unlinks the named student from the calling professor,
// deleting all their presences with the link.
func (h *APIHandler) RemoveRelationship(c *gin.Context) {
	claims := currentClaims(c)
	nome := c.Param("nome")

	if h.chamada.RemoveProfessorAlunoRelationship(claims.UserID, nome) {
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Relação com %s removida com sucesso", nome)})
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Falha ao remover relação com %s", nome)})
	}
}

// RecordPresence marks the named student present today for the calling
// professor.
func (h *APIHandler) RecordPresence(c *gin.Context) {
	claims := currentClaims(c)
	nome := c.Param("nome")
	matricula := c.Param("matricula")

	aluno := h.chamada.GetUserByNomeMatricula(matricula, nome)
	if aluno != nil {
		if relID := h.chamada.GetProfessorAlunoID(claims.UserID, aluno.ID); relID != uuid.Nil {
			if h.chamada.RecordPresence(relID, time.Time{}) != nil {
				c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Presença de %s registrada com sucesso", nome)})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Falha ao registrar presença de %s", nome)})
			}
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Aluno %s não encontrado", nome)})
}

// Login authenticates by matricula and returns a bearer token.
func (h *APIHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := h.chamada.Login(req.Matricula, req.Password)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Matrícula ou senha inválidos"})
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao gerar token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login bem-sucedido",
		"token":   token,
		"user":    userPayload(user),
	})
}

// Signin registers a new user and returns a bearer token for it.
func (h *APIHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := h.chamada.CreateUser(req.Name, req.Password, req.Email, req.StudentNumber, req.IsTeacher)
	if user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível criar o usuário."})
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao gerar token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Usuário criado com sucesso",
		"token":   token,
		"user":    userPayload(user),
	})
}
