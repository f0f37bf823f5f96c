package repository

import (
	"gorm.io/gorm"

	"metaverse-backend/internal/model"
)

// CatalogRepository 카탈로그 읽기 계층. 엔진 입장에서는 읽기 전용이다.
type CatalogRepository interface {
	GetMapTemplate(mapID string) (*model.MapTemplate, error)
}

// GormCatalogRepository GORM 기반 CatalogRepository 구현
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository GormCatalogRepository 생성
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// GetMapTemplate 맵 템플릿과 기본 배치 목록 조회
func (r *GormCatalogRepository) GetMapTemplate(mapID string) (*model.MapTemplate, error) {
	var template model.MapTemplate
	err := r.db.
		Preload("MapElements").
		First(&template, "id = ?", mapID).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}
