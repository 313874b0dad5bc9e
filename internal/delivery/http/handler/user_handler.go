package handler

import (
	"encoding/json"
	"net/http"

	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/delivery/http/middleware"
	"hospicloud/internal/domain/entity"
	"hospicloud/internal/usecase"
	"hospicloud/pkg/response"
	"hospicloud/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userUsecase usecase.UserUsecase
	validator   *validator.CustomValidator
	log         *logrus.Logger
}

func NewUserHandler(userUsecase usecase.UserUsecase, validator *validator.CustomValidator, log *logrus.Logger) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		validator:   validator,
		log:         log,
	}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.userUsecase.CreateUser(r.Context(), &req, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	var query dto.UserListQuery
	if role := r.URL.Query().Get("user_role"); role != "" {
		if !entity.Role(role).IsValid() {
			response.Error(w, http.StatusBadRequest, "Invalid user_role", nil)
			return
		}
		query.UserRole = &role
	}
	hospitalID, ok := queryUint(r, "hospital_id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid hospital_id", nil)
		return
	}
	query.HospitalID = hospitalID

	users, err := h.userUsecase.GetUsers(r.Context(), query, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Users retrieved successfully", users)
}

func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	user, err := h.userUsecase.GetCurrentUser(r.Context(), current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	user, err := h.userUsecase.GetUser(r.Context(), id, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *UserHandler) GetUserByDocumentNumber(w http.ResponseWriter, r *http.Request) {
	user, err := h.userUsecase.GetUserByDocumentNumber(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *UserHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	history, err := h.userUsecase.GetHistory(r.Context(), id, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "History retrieved successfully", history)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.userUsecase.UpdateUser(r.Context(), id, &req, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	if err := h.userUsecase.DeleteUser(r.Context(), id, current); err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "User deleted successfully", nil)
}
