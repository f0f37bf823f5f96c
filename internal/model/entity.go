package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 사용자
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'User'" json:"role"`
	AvatarID  *string   `gorm:"type:varchar(36)" json:"avatar_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Avatar *Avatar `gorm:"foreignKey:AvatarID" json:"avatar,omitempty"`
	Spaces []Space `gorm:"foreignKey:CreatorID" json:"spaces,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate ID 자동 생성
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Avatar 아바타 (카탈로그)
type Avatar struct {
	ID       string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name     *string `gorm:"type:varchar(100)" json:"name,omitempty"`
	ImageURL *string `gorm:"type:text" json:"image_url,omitempty"`

	// Relations
	Users []User `gorm:"foreignKey:AvatarID" json:"users,omitempty"`
}

func (Avatar) TableName() string {
	return "avatars"
}

// BeforeCreate ID 자동 생성
func (a *Avatar) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Element 배치 가능한 오브젝트 (카탈로그)
type Element struct {
	ID       string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ImageURL string `gorm:"type:text;not null" json:"image_url"`
	Width    int    `gorm:"not null" json:"width"`
	Height   int    `gorm:"not null" json:"height"`
	Static   bool   `gorm:"not null;default:false" json:"static"` // true면 이동 차단
}

func (Element) TableName() string {
	return "elements"
}

// BeforeCreate ID 자동 생성
func (e *Element) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// MapTemplate 맵 템플릿 (관리자가 작성, 스페이스 생성 시 복사됨)
type MapTemplate struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Width     int    `gorm:"not null" json:"width"`
	Height    int    `gorm:"not null" json:"height"`
	Thumbnail string `gorm:"type:text;not null" json:"thumbnail"`

	// Relations
	MapElements []MapElement `gorm:"foreignKey:MapID" json:"map_elements,omitempty"`
}

func (MapTemplate) TableName() string {
	return "maps"
}

// BeforeCreate ID 자동 생성
func (m *MapTemplate) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MapElement 맵 템플릿의 기본 배치
type MapElement struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	MapID     string `gorm:"type:varchar(36);not null;index" json:"map_id"`
	ElementID string `gorm:"type:varchar(36);not null" json:"element_id"`
	X         int    `gorm:"not null" json:"x"`
	Y         int    `gorm:"not null" json:"y"`

	// Relations
	Map     MapTemplate `gorm:"foreignKey:MapID" json:"map,omitempty"`
	Element Element     `gorm:"foreignKey:ElementID" json:"element,omitempty"`
}

func (MapElement) TableName() string {
	return "map_elements"
}

// BeforeCreate ID 자동 생성
func (m *MapElement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Space 사용자 소유의 2D 공간. 폭/높이는 생성 후 불변.
type Space struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Width     int       `gorm:"not null" json:"width"`
	Height    int       `gorm:"not null" json:"height"`
	Thumbnail *string   `gorm:"type:text" json:"thumbnail,omitempty"`
	CreatorID string    `gorm:"type:varchar(36);not null;index" json:"creator_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Creator  User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Elements []SpaceElement `gorm:"foreignKey:SpaceID" json:"elements,omitempty"`
}

func (Space) TableName() string {
	return "spaces"
}

// BeforeCreate ID 자동 생성
func (s *Space) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SpaceElement 스페이스 내 엘리먼트 배치.
// 생성 시점에 0 <= x < space.width, 0 <= y < space.height 를 만족한다.
type SpaceElement struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	SpaceID   string `gorm:"type:varchar(36);not null;index" json:"space_id"`
	ElementID string `gorm:"type:varchar(36);not null" json:"element_id"`
	X         int    `gorm:"not null" json:"x"`
	Y         int    `gorm:"not null" json:"y"`

	// Relations
	Space   Space   `gorm:"foreignKey:SpaceID" json:"space,omitempty"`
	Element Element `gorm:"foreignKey:ElementID" json:"element,omitempty"`
}

func (SpaceElement) TableName() string {
	return "space_elements"
}

// BeforeCreate ID 자동 생성
func (s *SpaceElement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
