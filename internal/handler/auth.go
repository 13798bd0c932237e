package handler

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kawooya/remitta/internal/config"
	"github.com/kawooya/remitta/internal/errHandler"
	"github.com/kawooya/remitta/internal/helper"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/repository"
	"github.com/kawooya/remitta/internal/request"
	"github.com/kawooya/remitta/internal/response"
	"github.com/kawooya/remitta/internal/smtp"
	"github.com/kawooya/remitta/internal/validator"

	"github.com/cradoe/gopass"
	"github.com/pascaldekloe/jwt"
)

const (
	UserActivityLogRegistrationDescription   = "Registered an account"
	UserActivityLogLoginDescription          = "Logged in"
	UserActivityLogFailedLoginDescription    = "Failed login attempt"
	UserActivityLogBlockedAccountDescription = "Account blocked after consecutive failed logins"
)

type AuthHandler struct {
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	Helper       *helper.HelperRepository
	Mailer       smtp.MailerInterface
	ErrHandler   *errHandler.ErrorHandler
	Config       *config.Config
}

func NewAuthHandler(handler *AuthHandler) *AuthHandler {
	return &AuthHandler{
		UserRepo:     handler.UserRepo,
		ActivityRepo: handler.ActivityRepo,
		Helper:       handler.Helper,
		Mailer:       handler.Mailer,
		ErrHandler:   handler.ErrHandler,
		Config:       handler.Config,
	}
}

// Registration validates input, checks the unique fields, hashes the
// password and stores the account. New accounts always start as plain
// users; member and admin roles are granted by an admin afterwards.
func (h *AuthHandler) HandleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FullName    string              `json:"full_name"`
		Email       string              `json:"email"`
		Password    string              `json:"password"`
		PhoneNumber string              `json:"phone_number"`
		Address     string              `json:"address"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	// the Validate function returns a slice of errors if the password does
	// not meet the minimum requirements; check those before anything else
	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	_, found, err := h.UserRepo.GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	// no two users may share an email
	input.Validator.Check(!found, "Email is already in use")

	input.Validator.Check(validator.NotBlank(input.FullName), "Full name is required")
	input.Validator.Check(validator.MinRunes(input.FullName, 3), "Full name is too short")

	input.Validator.Check(validator.NotBlank(input.PhoneNumber), "Phone number is required")
	input.Validator.Check(validator.Matches(input.PhoneNumber, validator.RgxPhoneNumber), "Phone number must be in international format")

	found, err = h.UserRepo.CheckIfPhoneNumberExist(input.PhoneNumber)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!found, "Phone number has been registered")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	createdUser := &models.User{
		FullName:       input.FullName,
		Email:          input.Email,
		PhoneNumber:    input.PhoneNumber,
		Address:        sql.NullString{String: input.Address, Valid: input.Address != ""},
		Role:           models.RoleUser,
		HashedPassword: hashedPassword,
	}

	userID, err := h.UserRepo.Insert(createdUser, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      userID,
			Entity:      models.ActivityLogUserEntity,
			EntityId:    strconv.FormatInt(userID, 10),
			Description: UserActivityLogRegistrationDescription,
		})

		if err != nil {
			log.Printf("Error logging user registration action: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		emailData := h.Helper.NewEmailData()
		emailData["Name"] = createdUser.FullName

		err := h.Mailer.Send(createdUser.Email, emailData, "welcome.tmpl")
		if err != nil {
			log.Printf("Error sending welcome email: %v", err)
			return err
		}

		return nil
	})

	message := "Account created successfully"

	err = response.JSONCreatedResponse(w, nil, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AuthHandler) HandleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	user, found, err := h.UserRepo.GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(found, "Incorrect email/password")

	if found {
		passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, user.HashedPassword)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		input.Validator.Check(validator.NotBlank(input.Password), "Password is required")
		input.Validator.Check(passwordMatches, "Incorrect email/password")

		if !passwordMatches {
			h.Helper.BackgroundTask(r, func() error {
				_, err := h.ActivityRepo.Insert(&models.ActivityLog{
					UserID:      user.ID,
					Entity:      models.ActivityLogUserEntity,
					EntityId:    strconv.FormatInt(user.ID, 10),
					Description: UserActivityLogFailedLoginDescription,
				})

				if err != nil {
					log.Printf("Error logging failed login action: %v", err)
					return err
				}

				return nil
			})

			// block the account after 3 consecutive failed attempts;
			// we already have 2 logged before this one
			count := h.ActivityRepo.CountConsecutiveFailedLoginAttempts(user.ID, UserActivityLogFailedLoginDescription)
			if count >= 2 {
				h.Helper.BackgroundTask(r, func() error {
					err := h.UserRepo.SetStatus(user.ID, models.UserStatusBlocked)
					if err != nil {
						log.Printf("Error blocking account after failed logins: %v", err)
						return err
					}

					return nil
				})

				h.Helper.BackgroundTask(r, func() error {
					_, err := h.ActivityRepo.Insert(&models.ActivityLog{
						UserID:      user.ID,
						Entity:      models.ActivityLogUserEntity,
						EntityId:    strconv.FormatInt(user.ID, 10),
						Description: UserActivityLogBlockedAccountDescription,
					})

					if err != nil {
						log.Printf("Error logging account block action: %v", err)
						return err
					}

					return nil
				})

				h.ErrHandler.FailedValidation(w, r, []string{"Account has been blocked. Please contact support"})
				return
			}
		}
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if user.Status != models.UserStatusActive {
		message := "Account has been blocked. Please contact support"
		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      user.ID,
			Entity:      models.ActivityLogUserEntity,
			EntityId:    strconv.FormatInt(user.ID, 10),
			Description: UserActivityLogLoginDescription,
		})

		if err != nil {
			log.Printf("Error logging successful login action: %v", err)
			return err
		}

		return nil
	})

	var claims jwt.Claims
	claims.Subject = strconv.FormatInt(user.ID, 10)

	expiry := time.Now().Add(24 * time.Hour)
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = h.Config.BaseURL
	claims.Audiences = []string{h.Config.BaseURL}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(h.Config.Jwt.SecretKey))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"auth_token":   string(jwtBytes),
		"token_expiry": expiry.Format(time.RFC3339),
	}
	message := "Login succesful"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
