package api

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Code string `json:"code" validate:"required,max=256"`
}

// UserInfo is the public view of an account.
type UserInfo struct {
	ID       uuid.UUID `json:"id"`
	Nickname string    `json:"nickname"`
	Avatar   string    `json:"avatar"`
	Points   int       `json:"points"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	Token    string   `json:"token"`
	UserInfo UserInfo `json:"userInfo"`
}

// PointsResponse reports the caller's balance.
type PointsResponse struct {
	Points int `json:"points"`
}

// GenerateRequest defines the payload for starting a generation.
type GenerateRequest struct {
	PhotoURL string `json:"photoUrl" validate:"required,url,max=2048"`
	Prompt   string `json:"prompt"   validate:"required,max=1000"`
}

// GenerateResponse is returned when a generation is accepted.
type GenerateResponse struct {
	TaskID        uuid.UUID         `json:"taskId"`
	Status        domain.TaskStatus `json:"status"`
	EstimatedTime int               `json:"estimatedTime"`
	Message       string            `json:"message,omitempty"`
}

// UploadResponse describes a stored upload.
type UploadResponse struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
}

// GalleryItemResponse is the public view of a gallery item.
type GalleryItemResponse struct {
	ID           uuid.UUID `json:"id"`
	TaskID       uuid.UUID `json:"taskId"`
	UserID       uuid.UUID `json:"userId"`
	ImageURL     string    `json:"imageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	OriginalURL  string    `json:"originalUrl"`
	Prompt       string    `json:"prompt"`
	CreateTime   time.Time `json:"createTime"`
}

// GalleryListResponse is one page of the gallery.
type GalleryListResponse struct {
	List     []GalleryItemResponse `json:"list"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

func userToInfo(user *domain.User) UserInfo {
	return UserInfo{
		ID:       user.ID,
		Nickname: user.Nickname,
		Avatar:   user.AvatarURL,
		Points:   user.Points,
	}
}

func galleryItemToResponse(item *domain.GalleryItem) GalleryItemResponse {
	return GalleryItemResponse{
		ID:           item.ID,
		TaskID:       item.TaskID,
		UserID:       item.UserID,
		ImageURL:     item.ImageURL,
		ThumbnailURL: item.ThumbnailURL,
		OriginalURL:  item.OriginalURL,
		Prompt:       item.Prompt,
		CreateTime:   item.CreatedAt,
	}
}
