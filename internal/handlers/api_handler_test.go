package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/models"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/repository"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/services"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *services.ChamadaService, *services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "chamada.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ProfessorAluno{}, &models.Presenca{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	chamadaService := services.NewChamadaService(
		repository.NewUserRepository(db),
		repository.NewRelationshipRepository(db),
		repository.NewPresenceRepository(db),
		logger.New(logger.ERROR),
	)
	authService := services.NewAuthService("test_secret", time.Hour)
	apiHandler := NewAPIHandler(chamadaService, authService)

	router := gin.New()
	api := router.Group("/api")
	api.GET("", apiHandler.Home)
	api.GET("/user/:username", apiHandler.User)
	api.GET("/about", apiHandler.About)
	api.POST("/login", apiHandler.Login)
	api.POST("/signin", apiHandler.Signin)

	protected := api.Group("/")
	protected.Use(TokenAuthMiddleware(authService))
	protected.GET("/chamada", apiHandler.Chamada)
	protected.POST("/chamada", apiHandler.Chamada)
	protected.DELETE("/chamada", apiHandler.Chamada)
	protected.DELETE("/chamada/:nome", apiHandler.RemoveRelationship)
	protected.POST("/presenca/:nome/:matricula", apiHandler.RecordPresence)

	return router, chamadaService, authService
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, decoded
}

func teacherToken(t *testing.T, chamada *services.ChamadaService, auth *services.AuthService) string {
	t.Helper()
	prof := chamada.CreateUser("Professor", "senha123", "prof@example.com", "900", true)
	if prof == nil {
		t.Fatal("failed to create professor")
	}
	token, err := auth.GenerateToken(prof)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

func TestPublicRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec, body := doRequest(t, router, http.MethodGet, "/api/user/Pedro", "", nil)
	if rec.Code != http.StatusOK || body["message"] != "Hello, Pedro!" {
		t.Errorf("user route: %d %v", rec.Code, body)
	}

	rec, body = doRequest(t, router, http.MethodGet, "/api/about", "", nil)
	if rec.Code != http.StatusOK || body["message"] != "This is the about page." {
		t.Errorf("about route: %d %v", rec.Code, body)
	}
}

func TestTokenAuthStates(t *testing.T) {
	router, _, _ := newTestRouter(t)

	cases := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"no header", "", "Unauthorized, please provide a token."},
		{"not bearer", "Token abc", "Invalid token format, please provide a Bearer token."},
		{"garbage", "Bearer abc", "Invalid token, please log in again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := doRequest(t, router, http.MethodGet, "/api/chamada", tc.header, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if body["error"] != tc.wantMsg {
				t.Errorf("error = %q, want %q", body["error"], tc.wantMsg)
			}
		})
	}
}

func TestExpiredTokenMessage(t *testing.T) {
	router, chamada, _ := newTestRouter(t)

	prof := chamada.CreateUser("Professor", "senha123", "prof@example.com", "900", true)
	if prof == nil {
		t.Fatal("failed to create professor")
	}
	expired := services.NewAuthService("test_secret", -time.Minute)
	token, err := expired.GenerateToken(prof)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	rec, body := doRequest(t, router, http.MethodGet, "/api/chamada", "Bearer "+token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if body["error"] != "Token expired, please log in again." {
		t.Errorf("error = %q, want expiry message", body["error"])
	}
}

func TestSigninAndLogin(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec, body := doRequest(t, router, http.MethodPost, "/api/signin", "", gin.H{
		"name":          "Pedro",
		"email":         "pedro@example.com",
		"studentNumber": "123",
		"password":      "abc",
		"isTeacher":     true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d (%v)", rec.Code, body)
	}
	if body["token"] == "" || body["token"] == nil {
		t.Error("signin should return a token")
	}
	user, _ := body["user"].(map[string]interface{})
	if user["nome"] != "Pedro" || user["matricula"] != "123" || user["isTeacher"] != true {
		t.Errorf("signin user = %v", user)
	}

	// Duplicate signin fails at the operations boundary.
	rec, _ = doRequest(t, router, http.MethodPost, "/api/signin", "", gin.H{
		"name":          "Pedro",
		"email":         "pedro@example.com",
		"studentNumber": "123",
		"password":      "abc",
		"isTeacher":     true,
	})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("duplicate signin status = %d, want 500", rec.Code)
	}

	rec, body = doRequest(t, router, http.MethodPost, "/api/login", "", gin.H{
		"matricula": "123",
		"password":  "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}

	rec, body = doRequest(t, router, http.MethodPost, "/api/login", "", gin.H{
		"matricula": "123",
		"password":  "abc",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d (%v)", rec.Code, body)
	}
	if body["message"] != "Login bem-sucedido" {
		t.Errorf("login message = %q", body["message"])
	}
}

func TestLoginMissingFieldsIsBadRequest(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/login", "", gin.H{"matricula": "123"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChamadaTeacherFlow(t *testing.T) {
	router, chamada, auth := newTestRouter(t)
	token := teacherToken(t, chamada, auth)

	// Empty roll call to start.
	rec, body := doRequest(t, router, http.MethodGet, "/api/chamada", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chamada status = %d", rec.Code)
	}
	if alunos, _ := body["alunos"].(map[string]interface{}); len(alunos) != 0 {
		t.Errorf("alunos = %v, want empty", alunos)
	}

	// Add a brand-new student.
	rec, body = doRequest(t, router, http.MethodPost, "/api/chamada", token, gin.H{
		"type":      "Adicionar",
		"nome":      "Aluno",
		"matricula": "901",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d (%v)", rec.Code, body)
	}
	if body["message"] != "Novo aluno criado e relação adicionada com sucesso" {
		t.Errorf("add message = %q", body["message"])
	}

	// Adding the same student again is an idempotent link to an existing user.
	rec, body = doRequest(t, router, http.MethodPost, "/api/chamada", token, gin.H{
		"type":      "Adicionar",
		"nome":      "Aluno",
		"matricula": "901",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("re-add status = %d (%v)", rec.Code, body)
	}
	if body["message"] != "Relação com aluno existente adicionada com sucesso" {
		t.Errorf("re-add message = %q", body["message"])
	}

	// Mark presence twice: two independent rows.
	for i := 0; i < 2; i++ {
		rec, body = doRequest(t, router, http.MethodPost, "/api/presenca/Aluno/901", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("presenca status = %d (%v)", rec.Code, body)
		}
	}

	rec, body = doRequest(t, router, http.MethodGet, "/api/chamada", token, nil)
	alunos, _ := body["alunos"].(map[string]interface{})
	entry, _ := alunos["Aluno"].(map[string]interface{})
	if entry["matricula"] != "901" || entry["presencas"] != float64(2) {
		t.Errorf("Aluno entry = %v, want matricula 901 with 2 presencas", entry)
	}

	// Remove the relationship; the listing goes empty again.
	rec, body = doRequest(t, router, http.MethodDelete, "/api/chamada/Aluno", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d (%v)", rec.Code, body)
	}
	rec, body = doRequest(t, router, http.MethodGet, "/api/chamada", token, nil)
	if alunos, _ := body["alunos"].(map[string]interface{}); len(alunos) != 0 {
		t.Errorf("alunos after removal = %v, want empty", alunos)
	}
}

func TestChamadaRejectsTeacherMatricula(t *testing.T) {
	router, chamada, auth := newTestRouter(t)
	token := teacherToken(t, chamada, auth)

	other := chamada.CreateUser("Outro Professor", "senha123", "outro@example.com", "902", true)
	if other == nil {
		t.Fatal("failed to create second professor")
	}

	rec, body := doRequest(t, router, http.MethodPost, "/api/chamada", token, gin.H{
		"type":      "Adicionar",
		"nome":      "Outro Professor",
		"matricula": "902",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (%v)", rec.Code, body)
	}
}

func TestChamadaStudentView(t *testing.T) {
	router, chamada, auth := newTestRouter(t)
	token := teacherToken(t, chamada, auth)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/chamada", token, gin.H{
		"type":      "Adicionar",
		"nome":      "Aluno",
		"matricula": "901",
	})
	if rec.Code != http.StatusOK {
		t.Fatal("failed to add student")
	}
	rec, _ = doRequest(t, router, http.MethodPost, "/api/presenca/Aluno/901", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatal("failed to record presence")
	}

	aluno := chamada.GetUserByNome("Aluno")
	if aluno == nil {
		t.Fatal("student not found")
	}
	studentToken, err := auth.GenerateToken(aluno)
	if err != nil {
		t.Fatalf("failed to generate student token: %v", err)
	}

	rec, body := doRequest(t, router, http.MethodGet, "/api/chamada", "Bearer "+studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("student chamada status = %d", rec.Code)
	}
	teachers, _ := body["teachers"].(map[string]interface{})
	if teachers["Professor"] != float64(1) {
		t.Errorf("teachers = %v, want Professor with 1 presenca", teachers)
	}
}

func TestPresenceUnknownStudent(t *testing.T) {
	router, chamada, auth := newTestRouter(t)
	token := teacherToken(t, chamada, auth)

	rec, body := doRequest(t, router, http.MethodPost, "/api/presenca/Ninguem/999", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (%v)", rec.Code, body)
	}
}
