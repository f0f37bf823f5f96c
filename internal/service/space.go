package service

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"metaverse-backend/internal/model"
	"metaverse-backend/internal/repository"
)

// SpaceService 스페이스 생성/변경 엔진.
// 모든 연산은 검증된 userId를 인자로 받는다. 내부에 가변 상태를 두지 않으며
// 동기화는 저장소에만 의존한다.
type SpaceService struct {
	repo    repository.SpaceRepository
	catalog repository.CatalogRepository
}

// NewSpaceService SpaceService 생성
func NewSpaceService(repo repository.SpaceRepository, catalog repository.CatalogRepository) *SpaceService {
	return &SpaceService{repo: repo, catalog: catalog}
}

// CreateBlankSpace 빈 스페이스 생성. 양수 크기면 추가 제약 없이 허용한다.
func (s *SpaceService) CreateBlankSpace(userID, name string, width, height int) (string, error) {
	space, err := s.repo.CreateSpace(name, width, height, userID, nil)
	if err != nil {
		log.Printf("space create failed (creator=%s): %v", userID, err)
		return "", ErrCreationFailed
	}
	return space.ID, nil
}

// CreateSpaceFromTemplate 맵 템플릿으로 스페이스 생성.
// 크기/썸네일과 기본 배치 전부를 템플릿에서 복사하며, 스페이스 행과 배치 행은
// 하나의 원자적 단위로 생성된다. 템플릿 좌표는 템플릿이 곧 범위의 출처이므로
// 재검증하지 않는다.
func (s *SpaceService) CreateSpaceFromTemplate(userID, name, mapID string) (string, error) {
	template, err := s.catalog.GetMapTemplate(mapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		log.Printf("map template lookup failed (map=%s): %v", mapID, err)
		return "", ErrCreationFailed
	}

	placements := make([]repository.PlacementSpec, len(template.MapElements))
	for i, e := range template.MapElements {
		placements[i] = repository.PlacementSpec{
			ElementID: e.ElementID,
			X:         e.X,
			Y:         e.Y,
		}
	}

	thumbnail := template.Thumbnail
	space, err := s.repo.CreateSpaceWithPlacements(name, template.Width, template.Height, userID, &thumbnail, placements)
	if err != nil {
		log.Printf("space seeding failed (creator=%s map=%s): %v", userID, mapID, err)
		return "", ErrCreationFailed
	}
	return space.ID, nil
}

// ListSpaces 소유 스페이스 목록 조회
func (s *SpaceService) ListSpaces(userID string) ([]model.Space, error) {
	return s.repo.GetSpaceSummaries(userID)
}

// GetSpace 스페이스 상세(배치 + 엘리먼트) 조회
func (s *SpaceService) GetSpace(spaceID string) (*model.Space, error) {
	space, err := s.repo.GetSpaceWithPlacements(spaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return space, nil
}

// PlaceElement 스페이스에 엘리먼트 배치.
// 소유 확인과 크기 조회는 (spaceId, userId) 단일 조회로 합쳐져 있어 남의
// 스페이스는 존재하지 않는 것과 구분되지 않는다. 겹침 검사는 하지 않는다.
func (s *SpaceService) PlaceElement(userID, spaceID, elementID string, x, y int) error {
	bounds, err := s.repo.GetSpaceBounds(spaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if x < 0 || y < 0 || x >= bounds.Width || y >= bounds.Height {
		return ErrInvalidCoordinates
	}

	if _, err := s.repo.InsertPlacement(spaceID, elementID, x, y); err != nil {
		log.Printf("placement insert failed (space=%s): %v", spaceID, err)
		return ErrCreationFailed
	}
	return nil
}

// RemoveElement 배치 제거. 없는 배치와 남의 배치는 같은 결과(ErrForbidden)로
// 합쳐 배치의 존재를 노출하지 않는다. 소유 스페이스의 spaceId를 반환한다.
func (s *SpaceService) RemoveElement(userID, placementID string) (string, error) {
	placement, ownerID, err := s.repo.GetPlacementWithOwner(placementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrForbidden
		}
		return "", err
	}

	if ownerID != userID {
		return "", ErrForbidden
	}

	if err := s.repo.DeletePlacement(placementID); err != nil {
		return "", err
	}
	return placement.SpaceID, nil
}

// DeleteSpace 스페이스 삭제. 배치가 남지 않도록 캐스케이드로 지운다.
func (s *SpaceService) DeleteSpace(userID, spaceID string) error {
	ownerID, err := s.repo.GetSpaceOwnership(spaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if ownerID != userID {
		return ErrForbidden
	}

	return s.repo.DeleteSpaceCascade(spaceID)
}
