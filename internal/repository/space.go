package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"metaverse-backend/internal/model"
)

// PlacementSpec 배치 생성 입력 (elementId + 좌표)
type PlacementSpec struct {
	ElementID string
	X         int
	Y         int
}

// SpaceBounds 스페이스 크기
type SpaceBounds struct {
	Width  int
	Height int
}

// SpaceRepository 스페이스 영속 계층 계약.
// 모든 연산은 단건 기준으로 원자적이며, 다중 행 쓰기는 트랜잭션으로 감싼다.
type SpaceRepository interface {
	CreateSpace(name string, width, height int, creatorID string, thumbnail *string) (*model.Space, error)
	CreateSpaceWithPlacements(name string, width, height int, creatorID string, thumbnail *string, placements []PlacementSpec) (*model.Space, error)
	GetSpaceSummaries(creatorID string) ([]model.Space, error)
	GetSpaceWithPlacements(spaceID string) (*model.Space, error)
	GetSpaceOwnership(spaceID string) (string, error)
	GetSpaceBounds(spaceID, creatorID string) (*SpaceBounds, error)
	InsertPlacement(spaceID, elementID string, x, y int) (*model.SpaceElement, error)
	GetPlacementWithOwner(placementID string) (*model.SpaceElement, string, error)
	DeletePlacement(placementID string) error
	DeleteSpaceCascade(spaceID string) error
}

// GormSpaceRepository GORM 기반 SpaceRepository 구현
type GormSpaceRepository struct {
	db *gorm.DB
}

// NewGormSpaceRepository GormSpaceRepository 생성
func NewGormSpaceRepository(db *gorm.DB) *GormSpaceRepository {
	return &GormSpaceRepository{db: db}
}

// 트랜잭션 재시도 한도
const txMaxAttempts = 3

// runTx 트랜잭션 실행. 일시적 충돌(교착/직렬화 실패)은 한도 내에서 재시도한다.
func (r *GormSpaceRepository) runTx(fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = r.db.Transaction(fn)
		if err == nil || !isTransientTxError(err) {
			return err
		}
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}
	return err
}

// isTransientTxError 재시도 가능한 저장소 오류 판별
func isTransientTxError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "database is locked")
}

// CreateSpace 빈 스페이스 생성
func (r *GormSpaceRepository) CreateSpace(name string, width, height int, creatorID string, thumbnail *string) (*model.Space, error) {
	space := model.Space{
		Name:      name,
		Width:     width,
		Height:    height,
		Thumbnail: thumbnail,
		CreatorID: creatorID,
	}
	if err := r.db.Create(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// CreateSpaceWithPlacements 스페이스와 배치들을 하나의 트랜잭션으로 생성.
// 전부 성공하거나 아무 행도 남지 않는다.
func (r *GormSpaceRepository) CreateSpaceWithPlacements(name string, width, height int, creatorID string, thumbnail *string, placements []PlacementSpec) (*model.Space, error) {
	var space model.Space

	err := r.runTx(func(tx *gorm.DB) error {
		space = model.Space{
			Name:      name,
			Width:     width,
			Height:    height,
			Thumbnail: thumbnail,
			CreatorID: creatorID,
		}
		if err := tx.Create(&space).Error; err != nil {
			return err
		}

		for _, p := range placements {
			placement := model.SpaceElement{
				SpaceID:   space.ID,
				ElementID: p.ElementID,
				X:         p.X,
				Y:         p.Y,
			}
			if err := tx.Create(&placement).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &space, nil
}

// GetSpaceSummaries 소유자의 스페이스 목록 조회
func (r *GormSpaceRepository) GetSpaceSummaries(creatorID string) ([]model.Space, error) {
	var spaces []model.Space
	err := r.db.
		Select("id", "name", "width", "height", "thumbnail").
		Where("creator_id = ?", creatorID).
		Find(&spaces).Error
	if err != nil {
		return nil, err
	}
	return spaces, nil
}

// GetSpaceWithPlacements 스페이스와 배치(엘리먼트 포함) 전체 조회
func (r *GormSpaceRepository) GetSpaceWithPlacements(spaceID string) (*model.Space, error) {
	var space model.Space
	err := r.db.
		Preload("Elements").
		Preload("Elements.Element").
		First(&space, "id = ?", spaceID).Error
	if err != nil {
		return nil, err
	}
	return &space, nil
}

// GetSpaceOwnership 스페이스 소유자 조회
func (r *GormSpaceRepository) GetSpaceOwnership(spaceID string) (string, error) {
	var space model.Space
	err := r.db.
		Select("creator_id").
		First(&space, "id = ?", spaceID).Error
	if err != nil {
		return "", err
	}
	return space.CreatorID, nil
}

// GetSpaceBounds 소유자가 맞을 때만 스페이스 크기 반환.
// 존재 여부와 소유 여부를 한 번의 조회로 합쳐 소유하지 않은 스페이스의
// 존재를 노출하지 않는다.
func (r *GormSpaceRepository) GetSpaceBounds(spaceID, creatorID string) (*SpaceBounds, error) {
	var space model.Space
	err := r.db.
		Select("width", "height").
		Where("id = ? AND creator_id = ?", spaceID, creatorID).
		First(&space).Error
	if err != nil {
		return nil, err
	}
	return &SpaceBounds{Width: space.Width, Height: space.Height}, nil
}

// InsertPlacement 배치 한 건 생성
func (r *GormSpaceRepository) InsertPlacement(spaceID, elementID string, x, y int) (*model.SpaceElement, error) {
	placement := model.SpaceElement{
		SpaceID:   spaceID,
		ElementID: elementID,
		X:         x,
		Y:         y,
	}
	if err := r.db.Create(&placement).Error; err != nil {
		return nil, err
	}
	return &placement, nil
}

// GetPlacementWithOwner 배치와 소유 스페이스의 creatorId 조회
func (r *GormSpaceRepository) GetPlacementWithOwner(placementID string) (*model.SpaceElement, string, error) {
	var placement model.SpaceElement
	err := r.db.
		Preload("Space").
		First(&placement, "id = ?", placementID).Error
	if err != nil {
		return nil, "", err
	}
	return &placement, placement.Space.CreatorID, nil
}

// DeletePlacement 배치 삭제
func (r *GormSpaceRepository) DeletePlacement(placementID string) error {
	return r.db.Delete(&model.SpaceElement{}, "id = ?", placementID).Error
}

// DeleteSpaceCascade 배치 전체와 스페이스 행을 하나의 트랜잭션으로 삭제
func (r *GormSpaceRepository) DeleteSpaceCascade(spaceID string) error {
	return r.runTx(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.SpaceElement{}, "space_id = ?", spaceID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Space{}, "id = ?", spaceID).Error
	})
}
