package api

import (
	"net/http"

	"github.com/phrazzld/magicphoto-api/internal/api/shared"
	"github.com/phrazzld/magicphoto-api/internal/service"
)

// GalleryHandler serves the public feed.
type GalleryHandler struct {
	gallery service.GalleryService
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(gallery service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// List handles GET /api/gallery/list?page=&pageSize=.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := shared.QueryInt(r, "page")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	pageSize, err := shared.QueryInt(r, "pageSize")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.gallery.List(r.Context(), page, pageSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := GalleryListResponse{
		List:     make([]GalleryItemResponse, 0, len(result.Items)),
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	}
	for _, item := range result.Items {
		resp.List = append(resp.List, galleryItemToResponse(item))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Detail handles GET /api/gallery/detail?id=.
func (h *GalleryHandler) Detail(w http.ResponseWriter, r *http.Request) {
	_, id, ok := handleUserIDAndQueryUUID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.gallery.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, galleryItemToResponse(item))
}
