package auth

import (
	"context"
	"errors"
	"time"

	"go-procure/internal/common/models"
	"go-procure/internal/features/audit"
	"go-procure/internal/features/role"
	"go-procure/internal/features/user"
	"go-procure/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	RoleService  role.RoleService
	AuditService audit.AuditService
}

func NewAuthService(userRepo user.UserRepository, roleService role.RoleService, auditService audit.AuditService) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		RoleService:  roleService,
		AuditService: auditService,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	existing, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Password:  string(hashed),
		Email:     email,
		Status:    "active",
		Roles:     []primitive.ObjectID{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.UserRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "user", newUser.ID.Hex(), map[string]models.Change{
		"username": {New: username},
	})

	return newUser, nil
}

// Login verifies credentials and issues a JWT carrying the user's role
// names, so every request arrives with its roles already resolved.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	roleNames, err := s.RoleService.ResolveUserRoles(ctx, u.ID.Hex())
	if err != nil {
		return "", err
	}

	token, err := utils.GenerateToken(u.ID, roleNames)
	if err != nil {
		return "", err
	}

	now := time.Now()
	u.LastLogin = &now
	u.UpdatedAt = now
	_ = s.UserRepo.Update(ctx, u.ID.Hex(), u)

	_ = s.AuditService.LogChange(ctx, models.AuditActionLogin, "user", u.ID.Hex(), nil)

	return token, nil
}
