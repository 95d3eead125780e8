package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/models"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Session keys for the rendered surface.
const (
	sessionUserID    = "user_id"
	sessionUsername  = "username"
	sessionMatricula = "matricula"
	sessionIsTeacher = "is_teacher"
)

// WebHandler serves the server-rendered surface. It mirrors the API surface
// route for route but keeps auth state in a cookie session and responds with
// templates and redirects.
type WebHandler struct {
	chamada *services.ChamadaService
}

func NewWebHandler(chamada *services.ChamadaService) *WebHandler {
	return &WebHandler{chamada: chamada}
}

func setSessionUser(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID.String())
	session.Set(sessionUsername, user.Nome)
	session.Set(sessionMatricula, user.Matricula)
	session.Set(sessionIsTeacher, user.IsTeacher)
	return session.Save()
}

func sessionUser(c *gin.Context) (uuid.UUID, bool) {
	session := sessions.Default(c)
	raw, _ := session.Get(sessionUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	isTeacher, _ := session.Get(sessionIsTeacher).(bool)
	return id, isTeacher
}

// Home clears any session and shows the landing page.
func (h *WebHandler) Home(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.HTML(http.StatusOK, "home.html", gin.H{})
}

// User greets by path parameter.
func (h *WebHandler) User(c *gin.Context) {
	c.String(http.StatusOK, "Hello, %s!", c.Param("username"))
}

// About shows the static about page.
func (h *WebHandler) About(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", gin.H{"text": "This is the about page."})
}

// Chamada renders the roll-call page. Students see their professors;
// professors see their students and can add one via the form.
func (h *WebHandler) Chamada(c *gin.Context) {
	userID, isTeacher := sessionUser(c)

	if !isTeacher {
		teachers := h.chamada.RetrieveProfessorsForStudent(userID)
		c.HTML(http.StatusOK, "chamadaAluno.html", gin.H{"teachers": teachers})
		return
	}

	if c.Request.Method == http.MethodPost && c.PostForm("type") == "Adicionar" {
		h.addStudentForm(c, userID)
		return
	}

	alunos := h.chamada.RetrieveStudentsForProfessor(userID)
	c.HTML(http.StatusOK, "chamada.html", gin.H{"alunos": alunos})
}

func (h *WebHandler) renderChamada(c *gin.Context, userID uuid.UUID, data gin.H) {
	data["alunos"] = h.chamada.RetrieveStudentsForProfessor(userID)
	c.HTML(http.StatusOK, "chamada.html", data)
}

func (h *WebHandler) addStudentForm(c *gin.Context, professorID uuid.UUID) {
	nome := c.PostForm("nome")
	matricula := c.PostForm("matricula")
	if nome == "" || matricula == "" {
		h.renderChamada(c, professorID, gin.H{"error": "Nome e matrícula são obrigatórios"})
		return
	}

	existing := h.chamada.GetUserByNomeMatricula(matricula, nome)
	if existing != nil {
		if existing.IsTeacher {
			h.renderChamada(c, professorID, gin.H{"error": "Matrícula já existente para um professor"})
			return
		}
		if h.chamada.AddRelationshipIfStudentExists(professorID, matricula, nome) {
			h.renderChamada(c, professorID, gin.H{"success": "Relação com aluno existente adicionada com sucesso"})
		} else {
			h.renderChamada(c, professorID, gin.H{"error": "Erro ao adicionar relação com aluno existente"})
		}
		return
	}

	aluno := h.chamada.CreateUser(nome, "default_password", fmt.Sprintf("%s@example.com", nome), matricula, false)
	if aluno == nil {
		h.renderChamada(c, professorID, gin.H{"error": "Erro ao criar novo aluno"})
		return
	}
	if h.chamada.AddRelationshipIfStudentExists(professorID, aluno.Matricula, aluno.Nome) {
		h.renderChamada(c, professorID, gin.H{"success": "Novo aluno criado e relação adicionada com sucesso"})
	} else {
		h.renderChamada(c, professorID, gin.H{"error": "Erro ao adicionar relação com novo aluno"})
	}
}

// RemoveRelationship unlinks the named student and returns to the roll call.
func (h *WebHandler) RemoveRelationship(c *gin.Context) {
	userID, _ := sessionUser(c)
	h.chamada.RemoveProfessorAlunoRelationship(userID, c.Param("nome"))
	c.Redirect(http.StatusFound, "/chamada")
}

// RecordPresence marks the named student present and returns to the roll
// call. The rendered surface resolves the student by name alone.
func (h *WebHandler) RecordPresence(c *gin.Context) {
	userID, _ := sessionUser(c)
	nome := c.Param("nome")

	if aluno := h.chamada.GetUserByNome(nome); aluno != nil {
		if relID := h.chamada.GetProfessorAlunoID(userID, aluno.ID); relID != uuid.Nil {
			h.chamada.RecordPresence(relID, time.Time{})
		}
	}
	c.Redirect(http.StatusFound, "/chamada")
}

// LoginPage shows the login form.
func (h *WebHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login authenticates the form credentials and opens a session.
func (h *WebHandler) Login(c *gin.Context) {
	matricula := c.PostForm("matricula")
	password := c.PostForm("password")
	if matricula == "" || password == "" {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"error": "Matrícula e senha são obrigatórios"})
		return
	}

	user := h.chamada.Login(matricula, password)
	if user == nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": "Matrícula ou senha inválidos"})
		return
	}

	if err := setSessionUser(c, user); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"error": "Falha ao iniciar sessão"})
		return
	}
	c.Redirect(http.StatusFound, "/chamada")
}

// SigninPage shows the registration form.
func (h *WebHandler) SigninPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signin.html", gin.H{})
}

// Signin registers the form user and opens a session.
func (h *WebHandler) Signin(c *gin.Context) {
	nome := c.PostForm("name")
	email := c.PostForm("email")
	matricula := c.PostForm("studentNumber")
	password := c.PostForm("password")
	isTeacher := c.PostForm("isTeacher") != ""

	if nome == "" || email == "" || matricula == "" || password == "" {
		c.HTML(http.StatusBadRequest, "signin.html", gin.H{"error": "Todos os campos são obrigatórios"})
		return
	}

	user := h.chamada.CreateUser(nome, password, email, matricula, isTeacher)
	if user == nil {
		c.HTML(http.StatusInternalServerError, "signin.html", gin.H{"error": "Não foi possível criar o usuário."})
		return
	}

	if err := setSessionUser(c, user); err != nil {
		c.HTML(http.StatusInternalServerError, "signin.html", gin.H{"error": "Falha ao iniciar sessão"})
		return
	}
	c.Redirect(http.StatusFound, "/chamada")
}
