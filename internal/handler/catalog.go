package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"metaverse-backend/internal/model"
)

// CatalogHandler 공용 카탈로그 조회 핸들러
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler CatalogHandler 생성
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// CatalogElementResponse 엘리먼트 목록 항목
type CatalogElementResponse struct {
	ElementID string `json:"elementId"`
	ImageURL  string `json:"imageUrl"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Static    bool   `json:"static"`
}

// CatalogAvatarResponse 아바타 목록 항목
type CatalogAvatarResponse struct {
	AvatarID string  `json:"avatarId"`
	Name     *string `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

// GetElements GET /elements 카탈로그 엘리먼트 전체 조회
func (h *CatalogHandler) GetElements(c *fiber.Ctx) error {
	var elements []model.Element
	if err := h.db.Find(&elements).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	responses := make([]CatalogElementResponse, len(elements))
	for i, e := range elements {
		responses[i] = CatalogElementResponse{
			ElementID: e.ID,
			ImageURL:  e.ImageURL,
			Width:     e.Width,
			Height:    e.Height,
			Static:    e.Static,
		}
	}

	return c.JSON(fiber.Map{"elements": responses})
}

// GetAvatars GET /avatars 아바타 전체 조회
func (h *CatalogHandler) GetAvatars(c *fiber.Ctx) error {
	var avatars []model.Avatar
	if err := h.db.Find(&avatars).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	responses := make([]CatalogAvatarResponse, len(avatars))
	for i, a := range avatars {
		responses[i] = CatalogAvatarResponse{
			AvatarID: a.ID,
			Name:     a.Name,
			ImageURL: a.ImageURL,
		}
	}

	return c.JSON(fiber.Map{"avatars": responses})
}
