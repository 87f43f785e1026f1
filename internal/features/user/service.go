package user

import (
	"context"
	"fmt"
	"time"

	common_models "go-procure/internal/common/models"
	"go-procure/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetUser(ctx context.Context, id string) (*common_models.User, error)
	ListUsers(ctx context.Context) ([]common_models.User, error)
	UpdateUser(ctx context.Context, id string, user *common_models.User) error
	DeleteUser(ctx context.Context, id string) error
	AssignRoles(ctx context.Context, id string, roleIDs []string) error
}

type UserServiceImpl struct {
	UserRepo     UserRepository
	AuditService audit.AuditService
}

func NewUserService(userRepo UserRepository, auditService audit.AuditService) UserService {
	return &UserServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
	}
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*common_models.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]common_models.User, error) {
	return s.UserRepo.List(ctx)
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id string, user *common_models.User) error {
	user.UpdatedAt = time.Now()

	if err := s.UserRepo.Update(ctx, id, user); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "user", id, map[string]common_models.Change{
		"email": {New: user.Email},
	})

	return nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id string) error {
	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "user", id, nil)
	return nil
}

func (s *UserServiceImpl) AssignRoles(ctx context.Context, id string, roleIDs []string) error {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s not found", id)
	}

	oids := make([]primitive.ObjectID, 0, len(roleIDs))
	for _, rid := range roleIDs {
		oid, err := primitive.ObjectIDFromHex(rid)
		if err != nil {
			return fmt.Errorf("invalid role id %q", rid)
		}
		oids = append(oids, oid)
	}

	old := user.Roles
	user.Roles = oids
	user.UpdatedAt = time.Now()

	if err := s.UserRepo.Update(ctx, id, user); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "user", id, map[string]common_models.Change{
		"roles": {Old: old, New: oids},
	})

	return nil
}
