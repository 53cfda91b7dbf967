package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/FleetLink/FleetLink/internal/api/userv1"
	"github.com/FleetLink/FleetLink/internal/common/auth"
	"github.com/FleetLink/FleetLink/internal/common/config"
	commonserver "github.com/FleetLink/FleetLink/internal/common/server"
	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

type GRPCServer struct {
	userv1.UnimplementedUserServiceServer

	repo    *Repo
	authCfg config.AuthConfig
}

func NewGRPCServer(db *gorm.DB, authCfg config.AuthConfig) *GRPCServer {
	return &GRPCServer{
		repo:    NewRepo(db),
		authCfg: authCfg,
	}
}

func (s *GRPCServer) Repo() *Repo { return s.repo }

func (s *GRPCServer) RegisterUser(ctx context.Context, req *userv1.RegisterUserRequest) (*userv1.RegisterUserResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is nil")
	}
	username := strings.TrimSpace(req.Username)
	password := req.Password
	if username == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "username/password required")
	}

	// 用户名唯一性预检；并发窗口由 uniqueIndex 兜底
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, status.Error(codes.AlreadyExists, "username already exists")
	} else if !fleeterr.IsNotFound(err) {
		return nil, status.Error(codes.Internal, err.Error())
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	hash, err := HashPassword(password, salt)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{RoleDriver}
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		Roles:        RolesJoin(roles),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &userv1.RegisterUserResponse{User: toAPIUser(u)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *userv1.LoginRequest) (*userv1.LoginResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is nil")
	}
	username := strings.TrimSpace(req.Username)
	password := req.Password
	if username == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "username/password required")
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if fleeterr.IsNotFound(err) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	token, exp, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.RolesSlice(), 24*time.Hour)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &userv1.LoginResponse{
		AccessToken: token,
		ExpiresAt:   exp.Unix(),
		User:        toAPIUser(u),
	}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *userv1.GetProfileRequest) (*userv1.GetProfileResponse, error) {
	ai, ok := commonserver.AuthFromContext(ctx)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return nil, status.Error(codes.Unauthenticated, "missing auth")
	}
	u, err := s.repo.FindByID(ctx, ai.Subject)
	if fleeterr.IsNotFound(err) {
		return nil, status.Error(codes.NotFound, "user not found")
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &userv1.GetProfileResponse{User: toAPIUser(u)}, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *userv1.ListUsersRequest) (*userv1.ListUsersResponse, error) {
	page, size, role := 1, 20, ""
	if req != nil {
		role = strings.TrimSpace(req.Role)
		if req.Page > 0 {
			page = req.Page
		}
		if req.PageSize > 0 && req.PageSize <= 200 {
			size = req.PageSize
		}
	}
	offset := (page - 1) * size
	users, total, err := s.repo.List(ctx, role, offset, size)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := make([]*userv1.User, 0, len(users))
	for i := range users {
		out = append(out, toAPIUser(&users[i]))
	}
	return &userv1.ListUsersResponse{Users: out, Total: total}, nil
}

// toAPIUser 凭据字段一律不放进出参。
func toAPIUser(u *User) *userv1.User {
	if u == nil {
		return nil
	}
	return &userv1.User{
		Id:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Phone:     u.Phone,
		Email:     u.Email,
		Roles:     u.RolesSlice(),
		CreatedAt: u.CreatedAt.Unix(),
		UpdatedAt: u.UpdatedAt.Unix(),
	}
}
