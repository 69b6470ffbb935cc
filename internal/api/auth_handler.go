package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/service"
	"fitlink/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
	uploads     *storage.Gateway
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, uploads *storage.Gateway) *AuthHandler {
	return &AuthHandler{authService: authService, uploads: uploads}
}

// --- Request/Response Structs ---

type ClientRegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ClientResponse excludes sensitive info like the password hash.
type ClientResponse struct {
	ID                string                     `json:"id"`
	Name              string                     `json:"name"`
	Email             string                     `json:"email"`
	CurrentTrainer    *CurrentTrainerResponse    `json:"currentTrainer,omitempty"`
	ConnectedTrainers []TrainerConnectionHistory `json:"connectedTrainers,omitempty"`
	CreatedAt         time.Time                  `json:"createdAt"`
}

type CurrentTrainerResponse struct {
	TrainerID   string    `json:"trainerId"`
	TrainerName string    `json:"trainerName"`
	AssignedAt  time.Time `json:"assignedAt"`
}

type TrainerConnectionHistory struct {
	TrainerID   string    `json:"trainerId"`
	Status      string    `json:"status"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// TrainerResponse exposes the approval and availability states as computed
// fields rather than stored flags.
type TrainerResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Contact            string    `json:"contact,omitempty"`
	Experience         string    `json:"experience,omitempty"`
	Certificate        string    `json:"certificate,omitempty"`
	RequestStatus      string    `json:"requestStatus"`
	IsApproved         bool      `json:"isApproved"`
	IsAvailable        bool      `json:"isAvailable"`
	CurrentClientCount int       `json:"currentClientCount"`
	MaxClientCapacity  int       `json:"maxClientCapacity"`
	CreatedAt          time.Time `json:"createdAt"`
}

type ClientLoginResponse struct {
	Token string         `json:"token"`
	User  ClientResponse `json:"user"`
}

type TrainerLoginResponse struct {
	Token string          `json:"token"`
	User  TrainerResponse `json:"user"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// --- Handler Methods ---

// RegisterClient godoc
// @Summary Register a new client
// @Description Creates a new client account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body ClientRegisterRequest true "Registration details"
// @Success 201 {object} ClientResponse "Client created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/client/register [post]
func (h *AuthHandler) RegisterClient(c *gin.Context) {
	var req ClientRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := h.authService.RegisterClient(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapClientToResponse(client))
}

// LoginClient godoc
// @Summary Log in a client
// @Description Authenticates a client and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} ClientLoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/client/login [post]
func (h *AuthHandler) LoginClient(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, client, err := h.authService.LoginClient(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.abortLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, ClientLoginResponse{Token: token, User: MapClientToResponse(client)})
}

// RegisterTrainer godoc
// @Summary Register a new trainer
// @Description Creates a trainer account. Expects a multipart form with a certificate file (PDF or image, max 5MB).
// @Tags Auth
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Trainer name"
// @Param email formData string true "Email"
// @Param password formData string true "Password (min 8 chars)"
// @Param contact formData string true "Contact details"
// @Param experience formData string true "Experience summary"
// @Param certificate formData file true "Certificate file"
// @Success 201 {object} TrainerResponse "Trainer created successfully"
// @Failure 400 {object} gin.H "Invalid input or rejected certificate file"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/trainer/register [post]
func (h *AuthHandler) RegisterTrainer(c *gin.Context) {
	var form struct {
		Name       string `form:"name" binding:"required"`
		Email      string `form:"email" binding:"required,email"`
		Password   string `form:"password" binding:"required,min=8"`
		Contact    string `form:"contact" binding:"required"`
		Experience string `form:"experience" binding:"required"`
	}
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	fileHeader, err := c.FormFile("certificate")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Certificate file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read certificate file")
		return
	}
	defer file.Close()

	certKey, err := h.uploads.StoreAs(
		c.Request.Context(),
		storage.CategoryCertificates,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		var vErr *storage.ValidationError
		if errors.As(err, &vErr) {
			abortWithError(c, http.StatusBadRequest, vErr.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to store certificate")
		}
		return
	}

	trainer, err := h.authService.RegisterTrainer(c.Request.Context(), service.TrainerSignup{
		Name:        form.Name,
		Email:       form.Email,
		Password:    form.Password,
		Contact:     form.Contact,
		Experience:  form.Experience,
		Certificate: certKey,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapTrainerToResponse(trainer))
}

// LoginTrainer godoc
// @Summary Log in a trainer
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} TrainerLoginResponse "Login successful"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/trainer/login [post]
func (h *AuthHandler) LoginTrainer(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, trainer, err := h.authService.LoginTrainer(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.abortLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, TrainerLoginResponse{Token: token, User: MapTrainerToResponse(trainer)})
}

// LoginAdmin godoc
// @Summary Log in an admin
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} AdminLoginResponse "Login successful"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/admin/login [post]
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, admin, err := h.authService.LoginAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.abortLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, AdminLoginResponse{Token: token, Email: admin.Email})
}

func (h *AuthHandler) abortLoginError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrAuthenticationFailed) {
		abortWithError(c, http.StatusUnauthorized, err.Error())
	} else {
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
	}
}

// --- Mappers ---

// MapClientToResponse converts a domain Client to its DTO.
func MapClientToResponse(client *domain.Client) ClientResponse {
	if client == nil {
		return ClientResponse{}
	}

	resp := ClientResponse{
		ID:        client.ID.Hex(),
		Name:      client.Name,
		Email:     client.Email,
		CreatedAt: client.CreatedAt,
	}
	if client.CurrentTrainer != nil {
		resp.CurrentTrainer = &CurrentTrainerResponse{
			TrainerID:   client.CurrentTrainer.TrainerID.Hex(),
			TrainerName: client.CurrentTrainer.TrainerName,
			AssignedAt:  client.CurrentTrainer.AssignedAt,
		}
	}
	for _, conn := range client.ConnectedTrainers {
		resp.ConnectedTrainers = append(resp.ConnectedTrainers, TrainerConnectionHistory{
			TrainerID:   conn.TrainerID.Hex(),
			Status:      string(conn.Status),
			ConnectedAt: conn.ConnectedAt,
		})
	}
	return resp
}

// MapTrainerToResponse converts a domain Trainer to its DTO. Approval and
// availability are derived from the request status and the capacity counters.
func MapTrainerToResponse(trainer *domain.Trainer) TrainerResponse {
	if trainer == nil {
		return TrainerResponse{}
	}

	return TrainerResponse{
		ID:                 trainer.ID.Hex(),
		Name:               trainer.Name,
		Email:              trainer.Email,
		Contact:            trainer.Contact,
		Experience:         trainer.Experience,
		Certificate:        trainer.Certificate,
		RequestStatus:      string(trainer.RequestStatus),
		IsApproved:         trainer.IsApproved(),
		IsAvailable:        trainer.IsAvailable(),
		CurrentClientCount: trainer.CurrentClientCount,
		MaxClientCapacity:  trainer.MaxClientCapacity,
		CreatedAt:          trainer.CreatedAt,
	}
}
