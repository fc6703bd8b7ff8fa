package api

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/magicphoto-api/internal/api/shared"
	"github.com/phrazzld/magicphoto-api/internal/service"
)

// UserHandler handles login and balance requests.
type UserHandler struct {
	users     service.UserService
	validator *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{
		users:     users,
		validator: newValidator(),
	}
}

// Login handles POST /api/user/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err,
			shared.WithErrorCode(http.StatusBadRequest))
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if err := h.validator.Struct(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	result, err := h.users.Login(r.Context(), req.Code)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Token:    result.Token,
		UserInfo: userToInfo(result.User),
	})
}

// GetPoints handles GET /api/user/points.
func (h *UserHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PointsResponse{Points: user.Points})
}
