package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/apierr"
	"github.com/yungbote/slangify-backend/internal/platform/ctxutil"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
	"github.com/yungbote/slangify-backend/internal/repos"
)

type AuthService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// SetContextFromToken verifies the bearer token and attaches the caller's
	// identity to the context. Every protected route runs through this.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
}

// NewAuthService wires registration, login and token verification.
// avatarService may be nil; new users then start without an avatar.
func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
) (AuthService, error) {
	if strings.TrimSpace(jwtSecretKey) == "" {
		return nil, fmt.Errorf("jwt secret key required")
	}
	serviceLog := log.With("service", "AuthService")
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
	}, nil
}

func (as *authService) AccessTTL() time.Duration {
	return as.accessTTL
}

func unauthorized(err error) error {
	return apierr.New(http.StatusUnauthorized, "UNAUTHORIZED", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(firstName, lastName, email, password string) error {
	if firstName == "" || lastName == "" {
		return apierr.New(http.StatusBadRequest, "INVALID_INPUT", fmt.Errorf("first and last name are required"))
	}
	if email == "" || !strings.Contains(email, "@") {
		return apierr.New(http.StatusBadRequest, "INVALID_INPUT", fmt.Errorf("a valid email is required"))
	}
	if len(password) < 8 {
		return apierr.New(http.StatusBadRequest, "INVALID_INPUT", fmt.Errorf("password must be at least 8 characters"))
	}
	return nil
}

func (as *authService) Register(ctx context.Context, firstName, lastName, email, password string) (*domain.User, string, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = normalizeEmail(email)

	if err := validateRegistration(firstName, lastName, email, password); err != nil {
		return nil, "", err
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, "", apierr.New(http.StatusConflict, "EMAIL_TAKEN", fmt.Errorf("email already registered"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hashed),
		FirstName: firstName,
		LastName:  lastName,
	}

	if as.avatarService != nil {
		if avErr := as.avatarService.CreateAndUploadUserAvatar(ctx, user); avErr != nil {
			as.log.Warn("Avatar creation failed, continuing without one", "email", email, "error", avErr)
		}
	}

	if err := as.withTransaction(ctx, func(tx *gorm.DB) error {
		if _, cErr := as.userRepo.Create(ctx, tx, []*domain.User{user}); cErr != nil {
			return fmt.Errorf("create user: %w", cErr)
		}
		return nil
	}); err != nil {
		return nil, "", err
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", unauthorized(fmt.Errorf("email and password are required"))
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, "", fmt.Errorf("load user by email: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, "", unauthorized(fmt.Errorf("invalid email or password"))
	}

	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", unauthorized(fmt.Errorf("invalid email or password"))
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) withTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if as.db == nil {
		return fn(nil)
	}
	return as.db.WithContext(ctx).Transaction(fn)
}

func (as *authService) generateAccessToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(as.accessTTL).Unix(),
		"iss":   "slangify-backend",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, unauthorized(fmt.Errorf("missing bearer token"))
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return ctx, unauthorized(fmt.Errorf("invalid token: %w", err))
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, unauthorized(fmt.Errorf("invalid token claims"))
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return ctx, unauthorized(fmt.Errorf("invalid token subject"))
	}

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:      userID,
		TokenString: tokenString,
	}), nil
}
