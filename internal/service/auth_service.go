package service

import (
	"context"
	"errors"
	"log"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("an account with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrPrincipalNotFound    = errors.New("principal no longer exists")
)

// TrainerSignup carries the fields of a trainer registration. Certificate is
// the stored object key produced by the upload gateway.
type TrainerSignup struct {
	Name        string
	Email       string
	Password    string
	Contact     string
	Experience  string
	Certificate string
}

// --- Service Interface ---
type AuthService interface {
	RegisterClient(ctx context.Context, name, email, password string) (*domain.Client, error)
	RegisterTrainer(ctx context.Context, signup TrainerSignup) (*domain.Trainer, error)

	LoginClient(ctx context.Context, email, password string) (token string, client *domain.Client, err error)
	LoginTrainer(ctx context.Context, email, password string) (token string, trainer *domain.Trainer, err error)
	LoginAdmin(ctx context.Context, email, password string) (token string, admin *domain.Admin, err error)

	// ResolvePrincipal checks that the subject of a verified token still
	// exists in its role's backing store.
	ResolvePrincipal(ctx context.Context, role domain.Role, id primitive.ObjectID) error

	// EnsureAdminAccount seeds the configured admin account if absent.
	EnsureAdminAccount(ctx context.Context, email, password string) error
}

// expiryByRole maps each role to its configured token lifetime.
type expiryByRole struct {
	Client  time.Duration
	Trainer time.Duration
	Admin   time.Duration
}

// authService implements the AuthService interface.
type authService struct {
	clientRepo  repository.ClientRepository
	trainerRepo repository.TrainerRepository
	adminRepo   repository.AdminRepository
	jwtSecret   string
	expiry      expiryByRole
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	clientRepo repository.ClientRepository,
	trainerRepo repository.TrainerRepository,
	adminRepo repository.AdminRepository,
	jwtSecret string,
	clientExpiry, trainerExpiry, adminExpiry time.Duration,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if clientExpiry <= 0 {
		clientExpiry = 24 * time.Hour
	}
	if trainerExpiry <= 0 {
		trainerExpiry = 24 * time.Hour
	}
	if adminExpiry <= 0 {
		adminExpiry = 12 * time.Hour
	}
	return &authService{
		clientRepo:  clientRepo,
		trainerRepo: trainerRepo,
		adminRepo:   adminRepo,
		jwtSecret:   jwtSecret,
		expiry:      expiryByRole{Client: clientExpiry, Trainer: trainerExpiry, Admin: adminExpiry},
	}
}

// RegisterClient handles new client registration.
func (s *authService) RegisterClient(ctx context.Context, name, email, password string) (*domain.Client, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password cannot be empty")
	}

	_, err := s.clientRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	client := &domain.Client{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	clientID, err := s.clientRepo.Create(ctx, client)
	if err != nil {
		// The unique index closes the race between the existence check and
		// the insert.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	client.ID = clientID

	client.PasswordHash = ""
	return client, nil
}

// RegisterTrainer handles new trainer registration, certificate included.
func (s *authService) RegisterTrainer(ctx context.Context, signup TrainerSignup) (*domain.Trainer, error) {
	if signup.Name == "" || signup.Email == "" || signup.Password == "" ||
		signup.Contact == "" || signup.Experience == "" || signup.Certificate == "" {
		return nil, errors.New("all trainer signup fields are required, including the certificate")
	}

	_, err := s.trainerRepo.GetByEmail(ctx, signup.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	trainer := &domain.Trainer{
		Name:              signup.Name,
		Email:             signup.Email,
		PasswordHash:      string(hash),
		Contact:           signup.Contact,
		Experience:        signup.Experience,
		Certificate:       signup.Certificate,
		RequestStatus:     domain.RequestNotSent,
		MaxClientCapacity: domain.DefaultMaxClientCapacity,
	}

	trainerID, err := s.trainerRepo.Create(ctx, trainer)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	trainer.ID = trainerID

	trainer.PasswordHash = ""
	return trainer, nil
}

// LoginClient authenticates a client and issues a token.
func (s *authService) LoginClient(ctx context.Context, email, password string) (string, *domain.Client, error) {
	client, err := s.clientRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateToken(client.ID, domain.RoleClient, s.expiry.Client)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	client.PasswordHash = ""
	return token, client, nil
}

// LoginTrainer authenticates a trainer and issues a token.
func (s *authService) LoginTrainer(ctx context.Context, email, password string) (string, *domain.Trainer, error) {
	trainer, err := s.trainerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(trainer.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateToken(trainer.ID, domain.RoleTrainer, s.expiry.Trainer)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	trainer.PasswordHash = ""
	return token, trainer, nil
}

// LoginAdmin authenticates an admin and issues a token.
func (s *authService) LoginAdmin(ctx context.Context, email, password string) (string, *domain.Admin, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateToken(admin.ID, domain.RoleAdmin, s.expiry.Admin)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	admin.PasswordHash = ""
	return token, admin, nil
}

// ResolvePrincipal checks existence of the token subject in the role's store.
// A deleted account invalidates its outstanding tokens.
func (s *authService) ResolvePrincipal(ctx context.Context, role domain.Role, id primitive.ObjectID) error {
	var err error
	switch role {
	case domain.RoleClient:
		_, err = s.clientRepo.GetByID(ctx, id)
	case domain.RoleTrainer:
		_, err = s.trainerRepo.GetByID(ctx, id)
	case domain.RoleAdmin:
		_, err = s.adminRepo.GetByID(ctx, id)
	default:
		return ErrPrincipalNotFound
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPrincipalNotFound
		}
		return err
	}
	return nil
}

// EnsureAdminAccount seeds the configured admin account on startup.
func (s *authService) EnsureAdminAccount(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil // No admin configured; admin endpoints stay unusable.
	}

	_, err := s.adminRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil // Already seeded.
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}

	_, err = s.adminRepo.Create(ctx, &domain.Admin{
		Email:        email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil // Another instance won the race.
	}
	if err == nil {
		log.Printf("Seeded admin account %s", email)
	}
	return err
}

// --- JWT Helper ---

// Claims defines the structure of the JWT payload shared with the API
// middleware.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateToken creates a signed token for the given principal and role.
func (s *authService) generateToken(id primitive.ObjectID, role domain.Role, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: id.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "coaching-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
