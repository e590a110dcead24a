package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/SanskarBabel/BuyerBase/models"
	"github.com/SanskarBabel/BuyerBase/services"
	"github.com/SanskarBabel/BuyerBase/storage"
	"github.com/SanskarBabel/BuyerBase/utils"

	"github.com/glebarez/sqlite"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

// buildTestApp wires the buyer routes the same way main does, against a
// throwaway sqlite database and a test signing secret.
func buildTestApp(t *testing.T) (*iris.Application, *gorm.DB) {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "routes.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	handler := NewBuyerHandler(services.NewBuyerService(db))

	app := iris.New()
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	buyers := app.Party("/api/buyers", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		buyers.Get("/", handler.List)
		buyers.Post("/", handler.Create)
		buyers.Post("/import", handler.Import)
		buyers.Get("/{id}", handler.Get)
		buyers.Put("/{id}", handler.Update)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app, db
}

func seedTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func signTestToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.CreateAccessToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(payload)
}

func validCreateInput() services.CreateBuyerInput {
	return services.CreateBuyerInput{
		FullName:     "Rahul Sharma",
		Phone:        "9876543210",
		City:         "Mohali",
		PropertyType: "Apartment",
		BHK:          "2",
		Purpose:      "Buy",
		Timeline:     "0-3m",
		Source:       "Website",
	}
}

func TestBuyersRequireToken(t *testing.T) {
	app, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/buyers", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}
}

func TestCreateAndGetBuyer(t *testing.T) {
	app, db := buildTestApp(t)
	owner := seedTestUser(t, db, "agent@example.com")
	token := signTestToken(t, owner)

	req := httptest.NewRequest(http.MethodPost, "/api/buyers", jsonBody(t, validCreateInput()))
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created models.Buyer
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created buyer: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created buyer has no id")
	}
	if created.OwnerID != owner.ID {
		t.Fatalf("expected owner %s, got %s", owner.ID, created.OwnerID)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/buyers/"+created.ID, nil)
	req2.Header.Set("Authorization", "Bearer "+token)
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected 200 for existing buyer, got %d", resp2.Code)
	}

	var detail services.BuyerDetail
	if err := json.Unmarshal(resp2.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode buyer detail: %v", err)
	}
	if len(detail.History) != 1 {
		t.Fatalf("expected one history entry after create, got %d", len(detail.History))
	}

	req3 := httptest.NewRequest(http.MethodGet, "/api/buyers/4c52a6b0-0000-4000-8000-000000000000", nil)
	req3.Header.Set("Authorization", "Bearer "+token)
	resp3 := httptest.NewRecorder()
	app.ServeHTTP(resp3, req3)
	if resp3.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown buyer, got %d", resp3.Code)
	}
}

func TestListRejectsExplicitPageZero(t *testing.T) {
	app, db := buildTestApp(t)
	owner := seedTestUser(t, db, "agent@example.com")
	token := signTestToken(t, owner)

	// An absent page parameter defaults to 1, but an explicit ?page=0 is a
	// validation error, not a silent first page.
	req := httptest.NewRequest(http.MethodGet, "/api/buyers?page=0", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for page=0, got %d: %s", resp.Code, resp.Body.String())
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("page")) {
		t.Fatalf("expected field detail in body, got %s", resp.Body.String())
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/buyers", nil)
	req2.Header.Set("Authorization", "Bearer "+token)
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected 200 without a page parameter, got %d: %s", resp2.Code, resp2.Body.String())
	}
}

func TestCreateValidationErrorReturns400(t *testing.T) {
	app, db := buildTestApp(t)
	owner := seedTestUser(t, db, "agent@example.com")
	token := signTestToken(t, owner)

	input := validCreateInput()
	input.Phone = ""

	req := httptest.NewRequest(http.MethodPost, "/api/buyers", jsonBody(t, input))
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("phone")) {
		t.Fatalf("expected field detail in body, got %s", resp.Body.String())
	}
}

func TestUpdateByNonOwnerReturns403(t *testing.T) {
	app, db := buildTestApp(t)
	owner := seedTestUser(t, db, "agent@example.com")
	intruder := seedTestUser(t, db, "other@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/buyers", jsonBody(t, validCreateInput()))
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, owner))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var created models.Buyer
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created buyer: %v", err)
	}

	status := "Dropped"
	patch := services.BuyerPatch{Status: &status}
	req2 := httptest.NewRequest(http.MethodPut, "/api/buyers/"+created.ID, jsonBody(t, patch))
	req2.Header.Set("Authorization", "Bearer "+signTestToken(t, intruder))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner update, got %d", resp2.Code)
	}
}

func TestImportOverCapReturns400(t *testing.T) {
	app, db := buildTestApp(t)
	owner := seedTestUser(t, db, "agent@example.com")

	rows := make([]services.CreateBuyerInput, 201)
	for i := range rows {
		rows[i] = validCreateInput()
	}

	req := httptest.NewRequest(http.MethodPost, "/api/buyers/import", jsonBody(t, ImportBuyersInput{Data: rows}))
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, owner))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized import, got %d", resp.Code)
	}

	var count int64
	db.Model(&models.Buyer{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no buyers created, found %d", count)
	}
}

func TestImportPartialSuccessReport(t *testing.T) {
	app, db := buildTestApp(t)
	owner := seedTestUser(t, db, "agent@example.com")

	good := validCreateInput()
	bad := validCreateInput()
	bad.Phone = ""

	req := httptest.NewRequest(http.MethodPost, "/api/buyers/import",
		jsonBody(t, ImportBuyersInput{Data: []services.CreateBuyerInput{good, bad, good}}))
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, owner))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var report services.ImportResult
	if err := json.Unmarshal(resp.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode import report: %v", err)
	}
	if report.Success != 2 || report.Failed != 1 {
		t.Fatalf("expected 2 success / 1 failed, got %d / %d", report.Success, report.Failed)
	}
	if len(report.Errors) != 1 || report.Errors[0].Row != 2 {
		t.Fatalf("expected one error for row 2, got %+v", report.Errors)
	}
}
