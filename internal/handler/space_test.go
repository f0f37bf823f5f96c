package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"metaverse-backend/internal/auth"
	"metaverse-backend/internal/model"
	"metaverse-backend/internal/repository"
	"metaverse-backend/internal/service"
)

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		in      string
		width   int
		height  int
		wantErr bool
	}{
		{"10x10", 10, 10, false},
		{"100x200", 100, 200, false},
		{"1x1", 1, 1, false},
		{"10x", 0, 0, true},
		{"x10", 0, 0, true},
		{"10", 0, 0, true},
		{"10x10x10", 0, 0, true},
		{"0x10", 0, 0, true},
		{"-5x10", 0, 0, true},
		{"axb", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			width, height, err := parseDimensions(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseDimensions(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDimensions(%q): %v", tt.in, err)
			}
			if width != tt.width || height != tt.height {
				t.Fatalf("parseDimensions(%q) = %dx%d, want %dx%d", tt.in, width, height, tt.width, tt.height)
			}
		})
	}
}

func TestFormatDimensions(t *testing.T) {
	if got := formatDimensions(10, 20); got != "10x20" {
		t.Fatalf("formatDimensions = %q, want 10x20", got)
	}
}

// newTestApp 라우팅/인증까지 포함한 라우트 구성 (캐시 없음)
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *auth.JWTManager) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Avatar{},
		&model.User{},
		&model.Element{},
		&model.MapTemplate{},
		&model.MapElement{},
		&model.Space{},
		&model.SpaceElement{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	spaceService := service.NewSpaceService(
		repository.NewGormSpaceRepository(db),
		repository.NewGormCatalogRepository(db),
	)
	spaceHandler := NewSpaceHandler(spaceService, nil)
	userHandler := NewUserHandler(db, jwtManager)
	adminHandler := NewAdminHandler(db)
	catalogHandler := NewCatalogHandler(db)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/elements", catalogHandler.GetElements)
	api.Get("/avatars", catalogHandler.GetAvatars)

	userGroup := api.Group("/user")
	userGroup.Post("/signup", userHandler.Signup)
	userGroup.Post("/signin", userHandler.Signin)
	userGroup.Post("/metadata", auth.UserMiddleware(jwtManager), userHandler.UpdateMetadata)
	userGroup.Get("/metadata/bulk", userHandler.GetMetadataBulk)

	spaceGroup := api.Group("/space", auth.UserMiddleware(jwtManager))
	spaceGroup.Get("/all", spaceHandler.GetMySpaces)
	spaceGroup.Post("/element", spaceHandler.AddElement)
	spaceGroup.Delete("/element", spaceHandler.DeleteElement)
	spaceGroup.Post("/", spaceHandler.CreateSpace)
	spaceGroup.Get("/:spaceId", spaceHandler.GetSpace)
	spaceGroup.Delete("/:spaceId", spaceHandler.DeleteSpace)

	adminGroup := api.Group("/admin", auth.AdminMiddleware(jwtManager))
	adminGroup.Post("/element", adminHandler.CreateElement)
	adminGroup.Put("/element/:elementId", adminHandler.UpdateElement)
	adminGroup.Post("/avatar", adminHandler.CreateAvatar)
	adminGroup.Post("/map", adminHandler.CreateMap)

	return app, db, jwtManager
}

// doRequest JSON 요청 실행 후 상태코드와 응답 바디 반환
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("unmarshal response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, parsed
}

// signupAndSignin 회원가입 후 토큰 획득
func signupAndSignin(t *testing.T, app *fiber.App, username, userType string) string {
	t.Helper()

	status, _ := doRequest(t, app, http.MethodPost, "/api/v1/user/signup", "", fiber.Map{
		"username": username,
		"password": "password123",
		"type":     userType,
	})
	if status != http.StatusOK {
		t.Fatalf("signup %s: status %d", username, status)
	}

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/user/signin", "", fiber.Map{
		"username": username,
		"password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("signin %s: status %d", username, status)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("signin %s: no token in response", username)
	}
	return token
}

func TestSpaceRoutesRequireAuth(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/space/all", "", nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", status)
	}
	if body["message"] != "No token provided" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestAdminRoutesRejectRegularUser(t *testing.T) {
	app, _, _ := newTestApp(t)
	userToken := signupAndSignin(t, app, "alice", "user")

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/admin/element", userToken, fiber.Map{
		"imageUrl": "https://example.com/rock.png",
		"width":    1,
		"height":   1,
		"static":   true,
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", status)
	}
	if body["message"] != "Not an admin" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSpaceLifecycleOverHTTP(t *testing.T) {
	app, _, _ := newTestApp(t)

	adminToken := signupAndSignin(t, app, "admin", "admin")
	aliceToken := signupAndSignin(t, app, "alice", "user")
	bobToken := signupAndSignin(t, app, "bob", "user")

	// 관리자가 카탈로그 엘리먼트 등록
	status, body := doRequest(t, app, http.MethodPost, "/api/v1/admin/element", adminToken, fiber.Map{
		"imageUrl": "https://example.com/chair.png",
		"width":    1,
		"height":   1,
		"static":   false,
	})
	if status != http.StatusOK {
		t.Fatalf("create element: status %d body %v", status, body)
	}
	elementID := body["id"].(string)

	// 빈 스페이스 생성
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/space/", aliceToken, fiber.Map{
		"name":       "room",
		"dimensions": "10x10",
	})
	if status != http.StatusOK {
		t.Fatalf("create space: status %d body %v", status, body)
	}
	spaceID := body["spaceId"].(string)

	// 잘못된 dimensions는 400
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/space/", aliceToken, fiber.Map{
		"name":       "bad",
		"dimensions": "10x",
	})
	if status != http.StatusBadRequest || body["message"] != "Invalid data passed" {
		t.Fatalf("bad dimensions: status %d body %v", status, body)
	}

	// 없는 맵으로 생성 시도는 400
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/space/", aliceToken, fiber.Map{
		"name":  "ghost",
		"mapId": uuid.NewString(),
	})
	if status != http.StatusBadRequest || body["message"] != "Invalid map id passed" {
		t.Fatalf("missing map: status %d body %v", status, body)
	}

	// 목록에 생성한 스페이스가 포함
	status, body = doRequest(t, app, http.MethodGet, "/api/v1/space/all", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list spaces: status %d", status)
	}
	spaces := body["spaces"].([]any)
	if len(spaces) != 1 {
		t.Fatalf("expected 1 space, got %d", len(spaces))
	}
	first := spaces[0].(map[string]any)
	if first["spaceId"] != spaceID || first["dimensions"] != "10x10" {
		t.Fatalf("unexpected summary: %v", first)
	}

	// 엘리먼트 배치
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/space/element", aliceToken, fiber.Map{
		"spaceId":   spaceID,
		"elementId": elementID,
		"x":         5,
		"y":         5,
	})
	if status != http.StatusOK || body["message"] != "Element added" {
		t.Fatalf("add element: status %d body %v", status, body)
	}

	// 범위 밖 좌표는 400
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/space/element", aliceToken, fiber.Map{
		"spaceId":   spaceID,
		"elementId": elementID,
		"x":         10,
		"y":         0,
	})
	if status != http.StatusBadRequest || body["message"] != "Invalid coordinates passed" {
		t.Fatalf("out of bounds: status %d body %v", status, body)
	}

	// 타인의 스페이스에는 배치 불가 (미존재와 동일 응답)
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/space/element", bobToken, fiber.Map{
		"spaceId":   spaceID,
		"elementId": elementID,
		"x":         1,
		"y":         1,
	})
	if status != http.StatusBadRequest || body["message"] != "Invalid space id passed" {
		t.Fatalf("foreign add: status %d body %v", status, body)
	}

	// 상세 조회
	status, body = doRequest(t, app, http.MethodGet, "/api/v1/space/"+spaceID, aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get detail: status %d", status)
	}
	if body["dimensions"] != "10x10" {
		t.Fatalf("unexpected dimensions: %v", body["dimensions"])
	}
	elements := body["elements"].([]any)
	if len(elements) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(elements))
	}
	placed := elements[0].(map[string]any)
	if placed["x"].(float64) != 5 || placed["y"].(float64) != 5 {
		t.Fatalf("unexpected placement: %v", placed)
	}
	nested := placed["elements"].(map[string]any)
	if nested["imageUrl"] != "https://example.com/chair.png" {
		t.Fatalf("unexpected nested element: %v", nested)
	}

	// 타인의 배치 삭제는 403
	placementID := placed["id"].(string)
	status, body = doRequest(t, app, http.MethodDelete, "/api/v1/space/element", bobToken, fiber.Map{
		"id": placementID,
	})
	if status != http.StatusForbidden || body["message"] != "Not allowed" {
		t.Fatalf("foreign remove: status %d body %v", status, body)
	}

	// 타인의 스페이스 삭제는 403
	status, body = doRequest(t, app, http.MethodDelete, "/api/v1/space/"+spaceID, bobToken, nil)
	if status != http.StatusForbidden || body["message"] != "Not allowed" {
		t.Fatalf("foreign delete: status %d body %v", status, body)
	}

	// 소유자 삭제 후 상세는 400
	status, body = doRequest(t, app, http.MethodDelete, "/api/v1/space/"+spaceID, aliceToken, nil)
	if status != http.StatusOK || body["message"] != "Space deleted" {
		t.Fatalf("owner delete: status %d body %v", status, body)
	}
	status, body = doRequest(t, app, http.MethodGet, "/api/v1/space/"+spaceID, aliceToken, nil)
	if status != http.StatusBadRequest || body["message"] != "Invalid space id passed" {
		t.Fatalf("detail after delete: status %d body %v", status, body)
	}
}

func TestCreateSpaceFromMapOverHTTP(t *testing.T) {
	app, _, _ := newTestApp(t)

	adminToken := signupAndSignin(t, app, "admin", "admin")
	aliceToken := signupAndSignin(t, app, "alice", "user")

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/admin/element", adminToken, fiber.Map{
		"imageUrl": "https://example.com/tree.png",
		"width":    2,
		"height":   2,
		"static":   true,
	})
	if status != http.StatusOK {
		t.Fatalf("create element: status %d", status)
	}
	elementID := body["id"].(string)

	status, body = doRequest(t, app, http.MethodPost, "/api/v1/admin/map", adminToken, fiber.Map{
		"name":       "forest",
		"dimensions": "30x20",
		"thumbnail":  "https://example.com/forest.png",
		"defaultElements": []fiber.Map{
			{"elementId": elementID, "x": 1, "y": 1},
			{"elementId": elementID, "x": 2, "y": 3},
		},
	})
	if status != http.StatusOK {
		t.Fatalf("create map: status %d body %v", status, body)
	}
	mapID := body["id"].(string)

	status, body = doRequest(t, app, http.MethodPost, "/api/v1/space/", aliceToken, fiber.Map{
		"name":  "my forest",
		"mapId": mapID,
	})
	if status != http.StatusOK {
		t.Fatalf("create from map: status %d body %v", status, body)
	}
	spaceID := body["spaceId"].(string)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/space/"+spaceID, aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get detail: status %d", status)
	}
	if body["dimensions"] != "30x20" {
		t.Fatalf("dimensions not copied from template: %v", body["dimensions"])
	}
	if elements := body["elements"].([]any); len(elements) != 2 {
		t.Fatalf("expected 2 seeded placements, got %d", len(elements))
	}

	// 목록에서 썸네일도 복사됐는지 확인
	status, body = doRequest(t, app, http.MethodGet, "/api/v1/space/all", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	summary := body["spaces"].([]any)[0].(map[string]any)
	if summary["thumbnail"] != "https://example.com/forest.png" {
		t.Fatalf("thumbnail not copied: %v", summary)
	}
}
