package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"metaverse-backend/internal/auth"
	"metaverse-backend/internal/model"
)

// UserHandler 유저 핸들러
type UserHandler struct {
	db         *gorm.DB
	jwtManager *auth.JWTManager
}

// NewUserHandler UserHandler 생성
func NewUserHandler(db *gorm.DB, jwtManager *auth.JWTManager) *UserHandler {
	return &UserHandler{db: db, jwtManager: jwtManager}
}

// SignupRequest 회원가입 요청. Type이 "admin"이면 관리자로 생성된다.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

// SigninRequest 로그인 요청
type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateMetadataRequest 아바타 변경 요청
type UpdateMetadataRequest struct {
	AvatarID string `json:"avatarId"`
}

// UserAvatarResponse 벌크 아바타 조회 항목
type UserAvatarResponse struct {
	UserID   string  `json:"userId"`
	AvatarID *string `json:"avatarId"`
}

// Signup POST /user/signup 회원가입
func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	req.Username = sanitizeString(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	role := model.RoleUser
	if req.Type == "admin" {
		role = model.RoleAdmin
	}

	user := model.User{
		Username: req.Username,
		Password: string(hashed),
		Role:     role.String(),
	}
	// username 유니크 제약 위반 포함, 생성 실패는 모두 같은 응답으로 처리
	if err := h.db.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username already taken",
		})
	}

	return c.JSON(fiber.Map{"userId": user.ID})
}

// Signin POST /user/signin 로그인. 실패 사유는 구분하지 않는다.
func (h *UserHandler) Signin(c *fiber.Ctx) error {
	var req SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	var user model.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Invalid username or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Invalid username or password",
		})
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	return c.JSON(fiber.Map{"token": token})
}

// UpdateMetadata POST /user/metadata 아바타 변경
func (h *UserHandler) UpdateMetadata(c *fiber.Ctx) error {
	userID := auth.UserIDFromContext(c)

	var req UpdateMetadataRequest
	if err := c.BodyParser(&req); err != nil || req.AvatarID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid data passed",
		})
	}

	var avatar model.Avatar
	if err := h.db.First(&avatar, "id = ?", req.AvatarID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid avatar id",
		})
	}

	if err := h.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("avatar_id", avatar.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	return c.JSON(fiber.Map{"message": "Avatar updated"})
}

// GetMetadataBulk GET /user/metadata/bulk?ids=a,b,c 아바타 벌크 조회.
// ids는 쉼표 구분 목록이며 빈 항목은 거부한다.
func (h *UserHandler) GetMetadataBulk(c *fiber.Ctx) error {
	idsParam := strings.TrimSpace(c.Query("ids"))

	var userIDs []string
	if idsParam != "" {
		for _, id := range strings.Split(idsParam, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": "Invalid data passed",
				})
			}
			userIDs = append(userIDs, id)
		}
	}

	avatars := []UserAvatarResponse{}
	if len(userIDs) > 0 {
		var users []model.User
		if err := h.db.
			Preload("Avatar").
			Where("id IN ?", userIDs).
			Find(&users).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Something went wrong",
			})
		}

		for _, u := range users {
			entry := UserAvatarResponse{UserID: u.ID}
			if u.Avatar != nil {
				entry.AvatarID = u.Avatar.ImageURL
			}
			avatars = append(avatars, entry)
		}
	}

	return c.JSON(fiber.Map{"avatars": avatars})
}
