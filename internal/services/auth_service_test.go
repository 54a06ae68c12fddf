package services

import (
	"context"
	"doctrac/internal/models"
	"doctrac/internal/utils"
	"errors"
	"testing"
	"time"
)

// Мок-репозиторий (заглушка)
type mockUserRepo struct {
	users    map[string]*models.User
	lastUser *models.User
	tokens   map[string]bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:  make(map[string]*models.User),
		tokens: make(map[string]bool),
	}
}

func (m *mockUserRepo) IsUsernameTaken(_ context.Context, username string) (bool, error) {
	_, exists := m.users[username]
	return exists, nil
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.ID = len(m.users) + 1
	m.users[user.Username] = user
	m.lastUser = user
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) GetFirstUser(_ context.Context) (*models.User, error) {
	for _, u := range m.users {
		return u, nil
	}
	return nil, errors.New("no users")
}

func (m *mockUserRepo) GetAllUsersPaginated(_ context.Context, _, _ int) ([]*models.User, int, error) {
	var out []*models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) SaveRefreshToken(_ context.Context, userID int, token string) error {
	m.tokens[token] = true
	return nil
}

func (m *mockUserRepo) IsRefreshTokenValid(_ context.Context, userID int, token string) (bool, error) {
	return m.tokens[token], nil
}

func (m *mockUserRepo) DeleteRefreshToken(_ context.Context, userID int, token string) error {
	delete(m.tokens, token)
	return nil
}

func TestCreateUser(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	user := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		FullName: "Тестовый Пользователь",
	}

	if err := service.CreateUser(context.Background(), user, "secret"); err != nil {
		t.Fatalf("ошибка создания пользователя: %v", err)
	}

	if repo.lastUser == nil || repo.lastUser.PasswordHash == "" {
		t.Fatal("пароль не захеширован или пользователь не сохранён")
	}
	if repo.lastUser.PasswordHash == "secret" {
		t.Fatal("пароль сохранён открытым текстом")
	}
	if repo.lastUser.Role != "user" {
		t.Errorf("роль по умолчанию должна быть user, получено %q", repo.lastUser.Role)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	if err := service.CreateUser(context.Background(), &models.User{Username: "dup"}, "x"); err != nil {
		t.Fatalf("ошибка создания: %v", err)
	}
	if err := service.CreateUser(context.Background(), &models.User{Username: "dup"}, "x"); err == nil {
		t.Fatal("повторный username должен быть ошибкой")
	}
}

func TestLoginUser_Success(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	hashed, _ := utils.HashPassword("secret")
	repo.users["testuser"] = &models.User{
		ID:           1,
		Username:     "testuser",
		PasswordHash: hashed,
		Role:         "user",
	}

	access, refresh, err := service.LoginUser(context.Background(), "testuser", "secret", "mysecret", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("ошибка логина: %v", err)
	}

	if access == "" || refresh == "" {
		t.Fatal("токены не сгенерированы")
	}
	if !repo.tokens[refresh] {
		t.Fatal("refresh токен не сохранён")
	}
}

func TestLoginUser_Fail(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	_, _, err := service.LoginUser(context.Background(), "unknown", "pass", "secret", time.Minute, time.Hour)
	if err == nil {
		t.Fatal("ожидалась ошибка при логине несуществующего пользователя")
	}
}

func TestRotateRefreshToken(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	repo.tokens["old-token"] = true

	access, refresh, err := service.RotateRefreshToken(context.Background(), 1, "old-token", "mysecret", "user", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("ошибка ротации: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("токены не сгенерированы")
	}
	if repo.tokens["old-token"] {
		t.Error("старый refresh токен должен быть удалён")
	}
	if !repo.tokens[refresh] {
		t.Error("новый refresh токен должен быть сохранён")
	}

	// Неизвестный токен ротировать нельзя.
	if _, _, err := service.RotateRefreshToken(context.Background(), 1, "bogus", "mysecret", "user", time.Minute, time.Hour); err == nil {
		t.Fatal("ротация неизвестного токена должна быть ошибкой")
	}
}
