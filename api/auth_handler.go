package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/avasileva/blogicum-backend/database"
	"github.com/avasileva/blogicum-backend/errs"
	"github.com/avasileva/blogicum-backend/models"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	secret    []byte
	tokenTTL  time.Duration
}

func newAuthHandler(userRepo *database.UserRepo, secret []byte, tokenTTL time.Duration) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
		secret:    secret,
		tokenTTL:  tokenTTL,
	}
}

type signupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and the account it belongs to.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// signup registers a new account. Usernames are unique and immutable.
func (h authHandler) signup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode signup request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if err := validateCredentials(req.Username, req.Email, req.Password); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, err := h.userRepo.FindByUsername(req.Username)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find user", "user", err))
			return
		}
		if existing != nil {
			h.responder.WriteError(w, errs.NewAlreadyExists("user"))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalError("failed to hash password"))
			return
		}

		user := models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hash),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Bio:          req.Bio,
		}
		if err := h.userRepo.Add(&user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create user", "user", err))
			return
		}

		h.logger.Info().Str("username", user.Username).Msg("User registered")

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, &user)
	}
}

// login verifies credentials and issues a bearer token.
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode login request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		user, err := h.userRepo.FindByUsername(req.Username)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find user", "user", err))
			return
		}
		// Unknown user and wrong password are indistinguishable on purpose.
		if user == nil {
			h.responder.WriteError(w, errs.NewBadCredentialsError())
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			h.responder.WriteError(w, errs.NewBadCredentialsError())
			return
		}

		token, err := signToken(h.secret, user.ID, h.tokenTTL)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalError("failed to sign token"))
			return
		}

		h.responder.WriteJSON(w, LoginResponse{Token: token, User: user})
	}
}

func validateCredentials(username, email, password string) error {
	if username == "" {
		return errs.NewMissingRequiredFieldError("username")
	}
	if len(username) < 2 {
		return errs.NewInvalidFieldError("username", "must be at least 2 characters")
	}
	if strings.ContainsAny(username, " \t/") {
		return errs.NewInvalidFieldError("username", "must not contain whitespace or slashes")
	}
	if email == "" {
		return errs.NewMissingRequiredFieldError("email")
	}
	if !strings.Contains(email, "@") {
		return errs.NewInvalidFieldError("email", "must be a valid address")
	}
	if len(password) < 6 {
		return errs.NewInvalidFieldError("password", "must be at least 6 characters")
	}
	return nil
}
