package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/handmade-market/internal/cache"
	"github.com/handmade-market/internal/config"
	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务：员工登录与两类 JWT 的签发解析
type AuthService struct {
	cfg       *config.Config
	staffRepo repository.StaffRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, staffRepo repository.StaffRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		staffRepo: staffRepo,
	}
}

// StaffClaims 后台 JWT 声明
type StaffClaims struct {
	StaffID  uint   `json:"staff_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserClaims 前台 JWT 声明（身份由外部系统签发，这里只消费 user id 与角色）
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Actor 将前台声明转换为操作者
func (c *UserClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	if c.Role == constants.ActorRoleStaff {
		return StaffActor(c.UserID)
	}
	return CustomerActor(c.UserID)
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// GenerateStaffJWT 生成后台 Token
func (s *AuthService) GenerateStaffJWT(staff *models.Staff) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)
	claims := StaffClaims{
		StaffID:  staff.ID,
		Username: staff.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := signHS256(claims, s.cfg.JWT.SecretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseStaffJWT 解析后台 Token
func (s *AuthService) ParseStaffJWT(tokenString string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	if err := parseHS256(tokenString, s.cfg.JWT.SecretKey, claims); err != nil {
		return nil, err
	}
	if claims.StaffID == 0 {
		return nil, errors.New("invalid staff token")
	}
	return claims, nil
}

// GenerateUserJWT 生成前台 Token（开发环境种子数据使用）
func (s *AuthService) GenerateUserJWT(userID uint, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.UserJWT.ExpireHours) * time.Hour)
	claims := UserClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := signHS256(claims, s.cfg.UserJWT.SecretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseUserJWT 解析前台 Token
func (s *AuthService) ParseUserJWT(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := parseHS256(tokenString, s.cfg.UserJWT.SecretKey, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, errors.New("invalid user token")
	}
	switch claims.Role {
	case "":
		claims.Role = constants.ActorRoleCustomer
	case constants.ActorRoleCustomer, constants.ActorRoleStaff:
	default:
		return nil, errors.New("invalid user role")
	}
	return claims, nil
}

// Login 员工登录
func (s *AuthService) Login(username, password string) (*models.Staff, string, time.Time, error) {
	staff, err := s.staffRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if staff == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(staff.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.GenerateStaffJWT(staff)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetStaffAuthState(context.Background(), cache.BuildStaffAuthState(staff))
	return staff, token, expiresAt, nil
}

// ResolveStaffAuthState 读取员工鉴权快照，缓存未命中时回源数据库
func (s *AuthService) ResolveStaffAuthState(ctx context.Context, staffID uint) (*cache.StaffAuthState, error) {
	if state, hit, err := cache.GetStaffAuthState(ctx, staffID); err == nil && hit {
		return state, nil
	}
	staff, err := s.staffRepo.GetByID(staffID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrInvalidCredentials
	}
	state := cache.BuildStaffAuthState(staff)
	_ = cache.SetStaffAuthState(ctx, state)
	return state, nil
}

func signHS256(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseHS256(tokenString, secret string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}
