package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"classsync/config"
	"classsync/internal/dto"
	"classsync/internal/model"
	"classsync/internal/repository"
	"classsync/pkg/jwt"
	"classsync/pkg/kvstore"
)

var (
	ErrInvalidPassword = errors.New("パスワードが違います")
	ErrWeakPassword    = errors.New("新しいパスワードは4文字以上にしてください")
)

// TokenBlacklist Token 黑名单（redis 未启用时为 nil）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 教师口令认证
//
// 口令以 bcrypt 摘要保存在全局设置中；旧数据中的明文口令首次登录成功后自动升级。
type AuthService interface {
	// EnsureDefaultPassword 设置不存在时写入默认口令
	EnsureDefaultPassword(ctx context.Context) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── EnsureDefaultPassword ──────────────────────

func (s *authService) EnsureDefaultPassword(ctx context.Context) error {
	_, err := s.repo.Settings.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, kvstore.ErrNotFound) {
		s.logger.Error("读取设置失败", zap.Error(err))
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Auth.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.Settings.Save(ctx, &model.AppSettings{Password: string(hash)}); err != nil {
		s.logger.Error("写入默认口令失败", zap.Error(err))
		return err
	}
	s.logger.Info("已写入默认教师口令")
	return nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if err := s.EnsureDefaultPassword(ctx); err != nil {
		return nil, err
	}
	settings, err := s.repo.Settings.Get(ctx)
	if err != nil {
		s.logger.Error("读取设置失败", zap.Error(err))
		return nil, err
	}

	if err := s.verify(ctx, settings, req.Password); err != nil {
		return nil, err
	}

	token, err := s.jwtMgr.GenerateAccessToken(jwt.RoleTeacher)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error {
	if len(strings.TrimSpace(req.NewPassword)) < 4 {
		return ErrWeakPassword
	}
	if err := s.EnsureDefaultPassword(ctx); err != nil {
		return err
	}
	settings, err := s.repo.Settings.Get(ctx)
	if err != nil {
		s.logger.Error("读取设置失败", zap.Error(err))
		return err
	}
	if err := s.verify(ctx, settings, req.OldPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	settings.Password = string(hash)
	if err := s.repo.Settings.Save(ctx, settings); err != nil {
		s.logger.Error("保存口令失败", zap.Error(err))
		return err
	}
	s.logger.Info("教师口令已修改")
	return nil
}

// verify 校验口令；旧的明文口令校验通过后升级为 bcrypt 摘要
func (s *authService) verify(ctx context.Context, settings *model.AppSettings, password string) error {
	if isBcryptHash(settings.Password) {
		if err := bcrypt.CompareHashAndPassword([]byte(settings.Password), []byte(password)); err != nil {
			return ErrInvalidPassword
		}
		return nil
	}

	if settings.Password != password {
		return ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	settings.Password = string(hash)
	if err := s.repo.Settings.Save(ctx, settings); err != nil {
		s.logger.Warn("升级明文口令失败", zap.Error(err))
		return nil
	}
	s.logger.Info("明文口令已升级为 bcrypt")
	return nil
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
