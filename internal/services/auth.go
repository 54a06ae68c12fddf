package services

import (
	"context"
	"doctrac/internal/logger"
	"doctrac/internal/models"
	"doctrac/internal/utils"
	"errors"
	"time"

	"go.uber.org/zap"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetFirstUser(ctx context.Context) (*models.User, error)
	GetAllUsersPaginated(ctx context.Context, limit, offset int) ([]*models.User, int, error)
	SaveRefreshToken(ctx context.Context, userID int, token string) error
	IsRefreshTokenValid(ctx context.Context, userID int, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID int, token string) error
}

type AuthService struct {
	repo UserRepo
}

func NewAuthService(repo UserRepo) *AuthService {
	return &AuthService{repo: repo}
}

func (s *AuthService) LoginUser(
	ctx context.Context,
	username, password, jwtSecret string,
	accessTTL, refreshTTL time.Duration,
) (string, string, error) {
	logger.Log.Info("Попытка входа (service)", zap.String("username", username))
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Warn("Пользователь не найден (service)", zap.String("username", username), zap.Error(err))
		return "", "", errors.New("пользователь не найден")
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Log.Warn("Неверный пароль (service)", zap.String("username", username))
		return "", "", errors.New("неверный пароль")
	}

	accessToken, err := utils.GenerateToken(jwtSecret, user.ID, user.Role, accessTTL, "access")
	if err != nil {
		logger.Log.Error("Ошибка генерации access-токена", zap.Error(err))
		return "", "", err
	}

	refreshToken, err := utils.GenerateToken(jwtSecret, user.ID, user.Role, refreshTTL, "refresh")
	if err != nil {
		logger.Log.Error("Ошибка генерации refresh-токена", zap.Error(err))
		return "", "", err
	}

	if err := s.repo.SaveRefreshToken(ctx, user.ID, refreshToken); err != nil {
		logger.Log.Error("Ошибка сохранения refresh-токена", zap.Error(err))
		return "", "", err
	}

	logger.Log.Info("Вход выполнен (service)", zap.String("username", username))
	return accessToken, refreshToken, nil
}

func (s *AuthService) ValidateRefreshToken(ctx context.Context, userID int, token string) (bool, error) {
	return s.repo.IsRefreshTokenValid(ctx, userID, token)
}

func (s *AuthService) RotateRefreshToken(
	ctx context.Context,
	userID int, oldToken, jwtSecret, role string,
	accessTTL, refreshTTL time.Duration,
) (string, string, error) {
	valid, err := s.repo.IsRefreshTokenValid(ctx, userID, oldToken)
	if err != nil || !valid {
		return "", "", errors.New("refresh токен недействителен")
	}

	accessToken, err := utils.GenerateToken(jwtSecret, userID, role, accessTTL, "access")
	if err != nil {
		return "", "", err
	}
	refreshToken, err := utils.GenerateToken(jwtSecret, userID, role, refreshTTL, "refresh")
	if err != nil {
		return "", "", err
	}

	if err := s.repo.DeleteRefreshToken(ctx, userID, oldToken); err != nil {
		return "", "", err
	}
	if err := s.repo.SaveRefreshToken(ctx, userID, refreshToken); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AuthService) Logout(ctx context.Context, userID int, token string) error {
	logger.Log.Info("Выход пользователя (service)", zap.Int("user_id", userID))
	return s.repo.DeleteRefreshToken(ctx, userID, token)
}

func (s *AuthService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		logger.Log.Warn("Пользователь не найден по ID (service)", zap.Int("user_id", id), zap.Error(err))
	}
	return user, err
}

func (s *AuthService) GetUsersPaginated(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	return s.repo.GetAllUsersPaginated(ctx, limit, offset)
}

// CreateUser регистрирует пользователя с заданной ролью (используется сидингом
// и админкой, публичной регистрации в системе нет).
func (s *AuthService) CreateUser(ctx context.Context, user *models.User, plainPassword string) error {
	logger.Log.Info("Создание пользователя (service)", zap.String("username", user.Username))
	if exists, err := s.repo.IsUsernameTaken(ctx, user.Username); exists || err != nil {
		if err != nil {
			logger.Log.Error("Ошибка проверки username", zap.Error(err))
			return err
		}
		return errors.New("имя пользователя уже занято")
	}

	hashed, err := utils.HashPassword(plainPassword)
	if err != nil {
		logger.Log.Error("Ошибка хеширования пароля", zap.Error(err))
		return err
	}
	user.PasswordHash = hashed
	if user.Role == "" {
		user.Role = "user"
	}

	return s.repo.CreateUser(ctx, user)
}
