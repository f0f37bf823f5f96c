package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"metaverse-backend/internal/model"
)

// AdminHandler 카탈로그 관리 핸들러 (관리자 전용)
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler AdminHandler 생성
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// CreateElementRequest 엘리먼트 등록 요청
type CreateElementRequest struct {
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Static   bool   `json:"static"`
}

// UpdateElementRequest 엘리먼트 수정 요청 (이미지만 변경 가능)
type UpdateElementRequest struct {
	ImageURL string `json:"imageUrl"`
}

// CreateAvatarRequest 아바타 등록 요청
type CreateAvatarRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// DefaultElementRequest 맵 기본 배치 항목
type DefaultElementRequest struct {
	ElementID string `json:"elementId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// CreateMapRequest 맵 템플릿 등록 요청
type CreateMapRequest struct {
	Name            string                  `json:"name"`
	Dimensions      string                  `json:"dimensions"`
	Thumbnail       string                  `json:"thumbnail"`
	DefaultElements []DefaultElementRequest `json:"defaultElements"`
}

// CreateElement POST /admin/element
func (h *AdminHandler) CreateElement(c *fiber.Ctx) error {
	var req CreateElementRequest
	if err := c.BodyParser(&req); err != nil || req.ImageURL == "" || req.Width <= 0 || req.Height <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	element := model.Element{
		ImageURL: req.ImageURL,
		Width:    req.Width,
		Height:   req.Height,
		Static:   req.Static,
	}
	if err := h.db.Create(&element).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	return c.JSON(fiber.Map{"id": element.ID})
}

// UpdateElement PUT /admin/element/:elementId
func (h *AdminHandler) UpdateElement(c *fiber.Ctx) error {
	elementID := c.Params("elementId")

	var element model.Element
	if err := h.db.First(&element, "id = ?", elementID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid element id passed",
		})
	}

	var req UpdateElementRequest
	if err := c.BodyParser(&req); err != nil || req.ImageURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	if err := h.db.Model(&element).Update("image_url", req.ImageURL).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	return c.JSON(fiber.Map{"message": "Element updated"})
}

// CreateAvatar POST /admin/avatar
func (h *AdminHandler) CreateAvatar(c *fiber.Ctx) error {
	var req CreateAvatarRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" || req.ImageURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	avatar := model.Avatar{
		Name:     &req.Name,
		ImageURL: &req.ImageURL,
	}
	if err := h.db.Create(&avatar).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	return c.JSON(fiber.Map{"avatarId": avatar.ID})
}

// CreateMap POST /admin/map 맵 템플릿 등록.
// 템플릿 행과 기본 배치 행은 한 트랜잭션으로 생성한다.
func (h *AdminHandler) CreateMap(c *fiber.Ctx) error {
	var req CreateMapRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" || req.Thumbnail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	width, height, err := parseDimensions(req.Dimensions)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	var template model.MapTemplate
	err = h.db.Transaction(func(tx *gorm.DB) error {
		template = model.MapTemplate{
			Name:      req.Name,
			Width:     width,
			Height:    height,
			Thumbnail: req.Thumbnail,
		}
		if err := tx.Create(&template).Error; err != nil {
			return err
		}

		for _, e := range req.DefaultElements {
			mapElement := model.MapElement{
				MapID:     template.ID,
				ElementID: e.ElementID,
				X:         e.X,
				Y:         e.Y,
			}
			if err := tx.Create(&mapElement).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	return c.JSON(fiber.Map{"id": template.ID})
}
