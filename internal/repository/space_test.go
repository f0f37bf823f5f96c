package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"metaverse-backend/internal/model"
)

// newTestDB 외래키가 켜진 인메모리 SQLite 연결 생성
func newTestDB(t *testing.T) *gorm.DB {
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

	// 인메모리 DB는 단일 커넥션으로 고정
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := model.User{
		Username: username,
		Password: "hashed",
		Role:     model.RoleUser.String(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func createTestElement(t *testing.T, db *gorm.DB) *model.Element {
	t.Helper()

	element := model.Element{
		ImageURL: "https://example.com/tree.png",
		Width:    1,
		Height:   2,
	}
	if err := db.Create(&element).Error; err != nil {
		t.Fatalf("create element: %v", err)
	}
	return &element
}

func TestCreateSpace(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSpaceRepository(db)
	user := createTestUser(t, db, "alice")

	space, err := repo.CreateSpace("room", 10, 20, user.ID, nil)
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}
	if space.ID == "" {
		t.Fatal("expected generated space id")
	}
	if space.Width != 10 || space.Height != 20 {
		t.Fatalf("unexpected bounds %dx%d", space.Width, space.Height)
	}

	// 이름 유니크 제약이 없으므로 같은 이름도 성공해야 함
	if _, err := repo.CreateSpace("room", 5, 5, user.ID, nil); err != nil {
		t.Fatalf("duplicate name should be allowed: %v", err)
	}
}

func TestCreateSpaceWithPlacements(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSpaceRepository(db)
	user := createTestUser(t, db, "alice")
	element := createTestElement(t, db)

	placements := []PlacementSpec{
		{ElementID: element.ID, X: 0, Y: 0},
		{ElementID: element.ID, X: 3, Y: 4},
		{ElementID: element.ID, X: 3, Y: 4}, // 같은 좌표 중복 허용
	}

	thumbnail := "https://example.com/thumb.png"
	space, err := repo.CreateSpaceWithPlacements("seeded", 10, 10, user.ID, &thumbnail, placements)
	if err != nil {
		t.Fatalf("CreateSpaceWithPlacements: %v", err)
	}

	var count int64
	db.Model(&model.SpaceElement{}).Where("space_id = ?", space.ID).Count(&count)
	if count != int64(len(placements)) {
		t.Fatalf("expected %d placements, got %d", len(placements), count)
	}
}

func TestCreateSpaceWithPlacementsAtomicity(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSpaceRepository(db)
	user := createTestUser(t, db, "alice")
	element := createTestElement(t, db)

	// 두 번째 배치가 존재하지 않는 엘리먼트를 참조해 중간에 실패한다
	placements := []PlacementSpec{
		{ElementID: element.ID, X: 1, Y: 1},
		{ElementID: uuid.NewString(), X: 2, Y: 2},
		{ElementID: element.ID, X: 3, Y: 3},
	}

	_, err := repo.CreateSpaceWithPlacements("broken", 10, 10, user.ID, nil, placements)
	if err == nil {
		t.Fatal("expected failure for dangling element reference")
	}

	// 스페이스 행도 배치 행도 남아 있으면 안 됨
	var spaceCount, placementCount int64
	db.Model(&model.Space{}).Count(&spaceCount)
	db.Model(&model.SpaceElement{}).Count(&placementCount)
	if spaceCount != 0 {
		t.Fatalf("expected no space rows after rollback, got %d", spaceCount)
	}
	if placementCount != 0 {
		t.Fatalf("expected no placement rows after rollback, got %d", placementCount)
	}
}

func TestGetSpaceSummaries(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSpaceRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if _, err := repo.CreateSpace("one", 5, 5, alice.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateSpace("two", 6, 6, alice.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateSpace("other", 7, 7, bob.ID, nil); err != nil {
		t.Fatal(err)
	}

	spaces, err := repo.GetSpaceSummaries(alice.ID)
	if err != nil {
		t.Fatalf("GetSpaceSummaries: %v", err)
	}
	if len(spaces) != 2 {
		t.Fatalf("expected 2 spaces for alice, got %d", len(spaces))
	}
}

func TestGetSpaceBoundsOwnershipScoped(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSpaceRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	space, err := repo.CreateSpace("room", 12, 8, alice.ID, nil)
	if err != nil {
		t.Fatal(err)
	}

	bounds, err := repo.GetSpaceBounds(space.ID, alice.ID)
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if bounds.Width != 12 || bounds.Height != 8 {
		t.Fatalf("unexpected bounds %dx%d", bounds.Width, bounds.Height)
	}

	// 남의 스페이스는 존재하지 않는 스페이스와 같은 오류여야 함
	_, foreignErr := repo.GetSpaceBounds(space.ID, bob.ID)
	_, missingErr := repo.GetSpaceBounds(uuid.NewString(), alice.ID)
	if !errors.Is(foreignErr, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found for foreign owner, got %v", foreignErr)
	}
	if !errors.Is(missingErr, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found for missing space, got %v", missingErr)
	}
}

func TestGetPlacementWithOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSpaceRepository(db)
	alice := createTestUser(t, db, "alice")
	element := createTestElement(t, db)

	space, err := repo.CreateSpace("room", 10, 10, alice.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	placement, err := repo.InsertPlacement(space.ID, element.ID, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	got, ownerID, err := repo.GetPlacementWithOwner(placement.ID)
	if err != nil {
		t.Fatalf("GetPlacementWithOwner: %v", err)
	}
	if got.X != 2 || got.Y != 3 {
		t.Fatalf("unexpected coordinates (%d,%d)", got.X, got.Y)
	}
	if ownerID != alice.ID {
		t.Fatalf("expected owner %s, got %s", alice.ID, ownerID)
	}

	if _, _, err := repo.GetPlacementWithOwner(uuid.NewString()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestDeleteSpaceCascade(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSpaceRepository(db)
	alice := createTestUser(t, db, "alice")
	element := createTestElement(t, db)

	space, err := repo.CreateSpace("room", 10, 10, alice.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := repo.InsertPlacement(space.ID, element.ID, i, i); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.DeleteSpaceCascade(space.ID); err != nil {
		t.Fatalf("DeleteSpaceCascade: %v", err)
	}

	if _, err := repo.GetSpaceWithPlacements(space.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected space to be gone, got %v", err)
	}

	var placementCount int64
	db.Model(&model.SpaceElement{}).Where("space_id = ?", space.ID).Count(&placementCount)
	if placementCount != 0 {
		t.Fatalf("expected no placements after cascade, got %d", placementCount)
	}
}
