package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ubademy/users-service/internal/auth"
	"github.com/ubademy/users-service/internal/platform/httpx"
	"github.com/ubademy/users-service/internal/shared"
)

type userService interface {
	Login(ctx context.Context, email, password string, adminScope bool) (*User, string, error)
	LoginGoogle(ctx context.Context, assertion string) (*User, string, error)
	Register(ctx context.Context, in RegisterInput, roles []string) (*User, string, error)
	List(ctx context.Context, offset, limit int64, appOnly bool) ([]User, int64, error)
	GetBatch(ctx context.Context, ids []string) ([]User, error)
	Get(ctx context.Context, id string) (*User, error)
	BlockedStatus(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id string, in UpdateInput) error
	SetBlocked(ctx context.Context, id string, blocked bool) error
	Notify(ctx context.Context, in NotifyInput) error
}

// Handler wires the HTTP endpoints for accounts, login and registration.
type Handler struct {
	logger        *slog.Logger
	service       userService
	authenticator *auth.Authenticator
	validator     *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service userService, authenticator *auth.Authenticator) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		authenticator: authenticator,
		validator:     validator.New(),
	}
}

// MountAuthRoutes registers the unauthenticated login/registration routes at
// the router root.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Post("/login", h.loginUser)
	r.Post("/login/admin", h.loginAdmin)
	r.Post("/login/google", h.loginGoogle)
	r.Post("/register", h.registerUser)
	r.Post("/register/admin", h.registerAdmin)
}

// MountUserRoutes registers the /users subtree.
func (h *Handler) MountUserRoutes(r chi.Router) {
	// Kept unauthenticated to match the clients already calling it.
	r.Post("/notify", h.notify)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticator.RequireToken)
		r.Get("/", h.list)
		r.Post("/", h.batchGet)
		r.Get("/blocked", h.blockedStatus)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticator.RequireAdmin)
			r.Post("/{id}/block", h.block)
			r.Delete("/{id}/block", h.unblock)
		})
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Token string `json:"token"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type authResponse struct {
	Auth  bool   `json:"auth"`
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type authFailureResponse struct {
	Auth    bool    `json:"auth"`
	Token   *string `json:"token"`
	Message string  `json:"message"`
}

// respondLoginError renders login failures. 401s carry the auth/token fields
// the mobile clients expect; everything else uses the plain message envelope.
func respondLoginError(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrUnauthorized) {
		httpx.JSON(w, http.StatusUnauthorized, authFailureResponse{Auth: false, Token: nil, Message: err.Error()})
		return
	}
	httpx.RespondError(w, err)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, adminScope bool) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	user, minted, err := h.service.Login(r.Context(), req.Email, req.Password, adminScope)
	if err != nil {
		respondLoginError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{Auth: true, Token: minted, User: user})
}

func (h *Handler) loginUser(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

func (h *Handler) loginAdmin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}

func (h *Handler) loginGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	user, minted, err := h.service.LoginGoogle(r.Context(), req.Token)
	if err != nil {
		respondLoginError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{Auth: true, Token: minted, User: user})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, roles []string) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	input := RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	}
	user, minted, err := h.service.Register(r.Context(), input, roles)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{Auth: true, Token: minted, User: user})
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, nil)
}

func (h *Handler) registerAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, []string{AdminRole})
}

type listResponse struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	offset, _ := strconv.ParseInt(query.Get("offset"), 10, 64)
	limit, _ := strconv.ParseInt(query.Get("limit"), 10, 64)
	appOnly, _ := strconv.ParseBool(query.Get("appUsers"))

	page, total, err := h.service.List(r.Context(), offset, limit, appOnly)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if page == nil {
		page = []User{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Users: page, Total: total})
}

func (h *Handler) batchGet(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if err := httpx.DecodeJSON(r, &ids); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	found, err := h.service.GetBatch(r.Context(), ids)
	if err != nil {
		h.logger.Error("batch fetch failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if found == nil {
		found = []User{}
	}
	httpx.JSON(w, http.StatusOK, found)
}

type blockedStatusResponse struct {
	Blocked bool `json:"blocked"`
}

func (h *Handler) blockedStatus(w http.ResponseWriter, r *http.Request) {
	subject := shared.SubjectFromContext(r.Context())
	blocked, err := h.service.BlockedStatus(r.Context(), subject)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, blockedStatusResponse{Blocked: blocked})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !IsValidID(id) {
		httpx.Message(w, http.StatusBadRequest, "Invalid user id format")
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type updateRequest struct {
	FirstName *string  `json:"firstName"`
	LastName  *string  `json:"lastName"`
	Email     *string  `json:"email"`
	PlaceID   *string  `json:"placeId"`
	Interests []string `json:"interests"`
	FCMToken  *string  `json:"fcmtoken"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !IsValidID(id) {
		httpx.Message(w, http.StatusBadRequest, "Invalid user id format")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	input := UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		PlaceID:   req.PlaceID,
		Interests: req.Interests,
		FCMToken:  req.FCMToken,
	}
	if err := h.service.Update(r.Context(), id, input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	id := chi.URLParam(r, "id")
	if !IsValidID(id) {
		httpx.Message(w, http.StatusBadRequest, "Invalid user id format")
		return
	}
	if err := h.service.SetBlocked(r.Context(), id, blocked); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) block(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

func (h *Handler) unblock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

type notifyRequest struct {
	FromUserID string `json:"fromUserId" validate:"required"`
	ToUserID   string `json:"toUserId" validate:"required"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

type notifyResponse struct {
	MessageSent bool `json:"messageSent"`
}

func (h *Handler) notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Both fromUserId and toUserId are required.")
		return
	}
	if !IsValidID(req.FromUserID) || !IsValidID(req.ToUserID) {
		httpx.Message(w, http.StatusBadRequest, "Invalid user id format")
		return
	}
	input := NotifyInput{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Title:      req.Title,
		Body:       req.Body,
	}
	if err := h.service.Notify(r.Context(), input); err != nil {
		h.logger.Error("notify failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, notifyResponse{MessageSent: true})
}
