package handler

import (
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/kawooya/remitta/internal/context"
	"github.com/kawooya/remitta/internal/errHandler"
	"github.com/kawooya/remitta/internal/file"
	"github.com/kawooya/remitta/internal/helper"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/repository"
	"github.com/kawooya/remitta/internal/request"
	"github.com/kawooya/remitta/internal/response"
	"github.com/kawooya/remitta/internal/validator"
)

type UserResponseData struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	Address        string    `json:"address,omitempty"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func newUserResponseData(user *models.User) *UserResponseData {
	return &UserResponseData{
		ID:             user.ID,
		FullName:       user.FullName,
		Email:          user.Email,
		PhoneNumber:    user.PhoneNumber,
		Address:        user.Address.String,
		Role:           user.Role,
		Status:         user.Status,
		ProfilePicture: user.ProfilePicture.String,
		CreatedAt:      user.CreatedAt,
	}
}

type UserHandler struct {
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	FileUploader *file.FileUploader
	Helper       *helper.HelperRepository
	ErrHandler   *errHandler.ErrorHandler
}

func NewUserHandler(handler *UserHandler) *UserHandler {
	return &UserHandler{
		UserRepo:     handler.UserRepo,
		ActivityRepo: handler.ActivityRepo,
		FileUploader: handler.FileUploader,
		Helper:       handler.Helper,
		ErrHandler:   handler.ErrHandler,
	}
}

func (h *UserHandler) HandleUserProfile(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	message := "Profile fetched successfully"

	err := response.JSONOkResponse(w, newUserResponseData(user), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		FullName    string              `json:"full_name"`
		Address     string              `json:"address"`
		PhoneNumber string              `json:"phone_number"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.FullName), "Full name is required")
	input.Validator.Check(validator.NotBlank(input.PhoneNumber), "Phone number is required")
	input.Validator.Check(validator.Matches(input.PhoneNumber, validator.RgxPhoneNumber), "Phone number must be in international format")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	err = h.UserRepo.UpdateProfile(user.ID, input.FullName, input.Address, input.PhoneNumber)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Profile updated successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// Profile pictures come in as multipart uploads; the file is staged to a
// temp path and pushed to the file storage service, and only the hosted
// URL is stored.
func (h *UserHandler) HandleChangeProfilePicture(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	err := r.ParseMultipartForm(10 << 20) // 10MB
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	uploaded, header, err := r.FormFile("profile_picture")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}
	defer uploaded.Close()

	tmpFile, err := os.CreateTemp("", "profile-*-"+header.Filename)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, uploaded); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	url, err := h.FileUploader.UploadFile(tmpFile.Name())
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = h.UserRepo.ChangeProfilePicture(user.ID, url)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Profile picture updated successfully"
	data := map[string]any{
		"profile_picture": url,
	}
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserRepo.GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]*UserResponseData, len(users))
	for i := range users {
		data[i] = newUserResponseData(&users[i])
	}

	message := "Users fetched successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *UserHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.UserRepo.GetAllByRole(models.RoleMember)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]*UserResponseData, len(members))
	for i := range members {
		data[i] = newUserResponseData(&members[i])
	}

	message := "Members fetched successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *UserHandler) HandleBlockUser(w http.ResponseWriter, r *http.Request) {
	h.setUserStatus(w, r, models.UserStatusBlocked, "User blocked successfully")
}

func (h *UserHandler) HandleUnblockUser(w http.ResponseWriter, r *http.Request) {
	h.setUserStatus(w, r, models.UserStatusActive, "User unblocked successfully")
}

func (h *UserHandler) setUserStatus(w http.ResponseWriter, r *http.Request, status, message string) {
	admin := context.ContextGetAuthenticatedUser(r)

	userID, err := parseIDParam(r, "id")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	_, found, err := h.UserRepo.GetOne(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	err = h.UserRepo.SetStatus(userID, status)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      admin.ID,
			Entity:      models.ActivityLogUserEntity,
			EntityId:    strconv.FormatInt(userID, 10),
			Description: message,
		})

		if err != nil {
			log.Printf("Error logging user status change: %v", err)
			return err
		}

		return nil
	})

	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
