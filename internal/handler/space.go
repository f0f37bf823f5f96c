package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"metaverse-backend/internal/auth"
	"metaverse-backend/internal/cache"
	"metaverse-backend/internal/service"
)

// SpaceHandler 스페이스 핸들러
type SpaceHandler struct {
	svc        *service.SpaceService
	spaceCache *cache.SpaceCache
}

// NewSpaceHandler SpaceHandler 생성
func NewSpaceHandler(svc *service.SpaceService, spaceCache *cache.SpaceCache) *SpaceHandler {
	return &SpaceHandler{svc: svc, spaceCache: spaceCache}
}

// CreateSpaceRequest 스페이스 생성 요청.
// MapID가 있으면 템플릿 기반, 없으면 Dimensions 기반 생성이다.
type CreateSpaceRequest struct {
	Name       string `json:"name"`
	Dimensions string `json:"dimensions"`
	MapID      string `json:"mapId"`
}

// AddElementRequest 엘리먼트 배치 요청
type AddElementRequest struct {
	SpaceID   string `json:"spaceId"`
	ElementID string `json:"elementId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// DeleteElementRequest 배치 제거 요청
type DeleteElementRequest struct {
	ID string `json:"id"`
}

// SpaceSummaryResponse 스페이스 목록 항목
type SpaceSummaryResponse struct {
	SpaceID    string  `json:"spaceId"`
	Name       string  `json:"name"`
	Thumbnail  *string `json:"thumbnail"`
	Dimensions string  `json:"dimensions"`
}

// ElementResponse 카탈로그 엘리먼트 응답
type ElementResponse struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Static   bool   `json:"static"`
}

// PlacedElementResponse 배치 응답
type PlacedElementResponse struct {
	ID       string          `json:"id"`
	X        int             `json:"x"`
	Y        int             `json:"y"`
	Elements ElementResponse `json:"elements"`
}

// SpaceDetailResponse 스페이스 상세 응답
type SpaceDetailResponse struct {
	Dimensions string                  `json:"dimensions"`
	Elements   []PlacedElementResponse `json:"elements"`
}

// CreateSpace POST /space. mapId 유무에 따라 빈 생성 / 템플릿 생성으로 나뉜다.
func (h *SpaceHandler) CreateSpace(c *fiber.Ctx) error {
	userID := auth.UserIDFromContext(c)

	var req CreateSpaceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	req.Name = sanitizeString(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	if req.MapID == "" {
		width, height, err := parseDimensions(req.Dimensions)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid data passed",
			})
		}

		spaceID, err := h.svc.CreateBlankSpace(userID, req.Name, width, height)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Something went wrong",
			})
		}
		return c.JSON(fiber.Map{"spaceId": spaceID})
	}

	spaceID, err := h.svc.CreateSpaceFromTemplate(userID, req.Name, req.MapID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid map id passed",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}
	return c.JSON(fiber.Map{"spaceId": spaceID})
}

// GetMySpaces GET /space/all 소유 스페이스 목록
func (h *SpaceHandler) GetMySpaces(c *fiber.Ctx) error {
	userID := auth.UserIDFromContext(c)

	spaces, err := h.svc.ListSpaces(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	summaries := make([]SpaceSummaryResponse, len(spaces))
	for i, s := range spaces {
		summaries[i] = SpaceSummaryResponse{
			SpaceID:    s.ID,
			Name:       s.Name,
			Thumbnail:  s.Thumbnail,
			Dimensions: formatDimensions(s.Width, s.Height),
		}
	}

	return c.JSON(fiber.Map{"spaces": summaries})
}

// GetSpace GET /space/:spaceId 스페이스 상세 (캐시 적용)
func (h *SpaceHandler) GetSpace(c *fiber.Ctx) error {
	spaceID := c.Params("spaceId")

	if payload, ok := h.spaceCache.GetSpaceDetail(c.Context(), spaceID); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(payload)
	}

	space, err := h.svc.GetSpace(spaceID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid space id passed",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	response := SpaceDetailResponse{
		Dimensions: formatDimensions(space.Width, space.Height),
		Elements:   make([]PlacedElementResponse, len(space.Elements)),
	}
	for i, e := range space.Elements {
		response.Elements[i] = PlacedElementResponse{
			ID: e.ID,
			X:  e.X,
			Y:  e.Y,
			Elements: ElementResponse{
				ID:       e.Element.ID,
				ImageURL: e.Element.ImageURL,
				Width:    e.Element.Width,
				Height:   e.Element.Height,
				Static:   e.Element.Static,
			},
		}
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}
	h.spaceCache.SetSpaceDetail(c.Context(), spaceID, payload)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// AddElement POST /space/element 엘리먼트 배치
func (h *SpaceHandler) AddElement(c *fiber.Ctx) error {
	userID := auth.UserIDFromContext(c)

	var req AddElementRequest
	if err := c.BodyParser(&req); err != nil || req.SpaceID == "" || req.ElementID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	if err := h.svc.PlaceElement(userID, req.SpaceID, req.ElementID, req.X, req.Y); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid space id passed",
			})
		case errors.Is(err, service.ErrInvalidCoordinates):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid coordinates passed",
			})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Something went wrong",
			})
		}
	}

	h.spaceCache.InvalidateSpace(c.Context(), req.SpaceID)

	return c.JSON(fiber.Map{"message": "Element added"})
}

// DeleteElement DELETE /space/element 배치 제거
func (h *SpaceHandler) DeleteElement(c *fiber.Ctx) error {
	userID := auth.UserIDFromContext(c)

	var req DeleteElementRequest
	if err := c.BodyParser(&req); err != nil || req.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	spaceID, err := h.svc.RemoveElement(userID, req.ID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Not allowed",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	h.spaceCache.InvalidateSpace(c.Context(), spaceID)

	return c.JSON(fiber.Map{"message": "Element deleted"})
}

// DeleteSpace DELETE /space/:spaceId 스페이스 삭제 (배치 캐스케이드)
func (h *SpaceHandler) DeleteSpace(c *fiber.Ctx) error {
	userID := auth.UserIDFromContext(c)
	spaceID := c.Params("spaceId")

	if err := h.svc.DeleteSpace(userID, spaceID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid space id passed",
			})
		case errors.Is(err, service.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Not allowed",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Something went wrong",
			})
		}
	}

	h.spaceCache.InvalidateSpace(c.Context(), spaceID)

	return c.JSON(fiber.Map{"message": "Space deleted"})
}
