package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/config"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// MockUserRepository is an in-memory UserRepository with the same reset
// token semantics as the SQL one.
type MockUserRepository struct {
	mu           sync.Mutex
	users        map[int64]*models.User
	usersByEmail map[string]*models.User
	nextID       int64

	// Err, when set, is returned by every method
	Err error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:        make(map[int64]*models.User),
		usersByEmail: make(map[string]*models.User),
		nextID:       1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.usersByEmail[user.Email]; ok {
		return utils.NewDuplicateError("User", "email", user.Email)
	}

	user.ID = m.nextID
	m.nextID++

	stored := *user
	m.users[user.ID] = &stored
	m.usersByEmail[user.Email] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("User", id)
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, utils.NewNotFoundError("User", email)
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.users[user.ID]
	if !ok {
		return utils.NewNotFoundError("User", user.ID)
	}
	if other, ok := m.usersByEmail[user.Email]; ok && other.ID != user.ID {
		return utils.NewDuplicateError("User", "email", user.Email)
	}

	delete(m.usersByEmail, existing.Email)
	stored := *user
	stored.PasswordHash = existing.PasswordHash
	stored.ResetPasswordToken = existing.ResetPasswordToken
	stored.ResetPasswordExpire = existing.ResetPasswordExpire
	m.users[user.ID] = &stored
	m.usersByEmail[user.Email] = &stored
	return nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.usersByEmail[email]
	return ok, nil
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, userID int64, tokenHash string, expire time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	user, ok := m.users[userID]
	if !ok {
		return utils.NewNotFoundError("User", userID)
	}
	user.ResetPasswordToken = &tokenHash
	user.ResetPasswordExpire = &expire
	return nil
}

// pendingAt mirrors the expiry check the SQL queries make.
func pendingAt(user *models.User, now time.Time) bool {
	return user.ResetPasswordExpire != nil && user.ResetPasswordExpire.After(now)
}

func (m *MockUserRepository) GetUserIDByResetToken(ctx context.Context, tokenHash string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	for id, user := range m.users {
		if user.ResetPasswordToken != nil && *user.ResetPasswordToken == tokenHash && pendingAt(user, now) {
			return id, nil
		}
	}
	return 0, utils.NewNotFoundError("User", "reset token")
}

func (m *MockUserRepository) ConsumeResetToken(ctx context.Context, userID int64, tokenHash string, now time.Time, newPasswordHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	user, ok := m.users[userID]
	if !ok || user.ResetPasswordToken == nil || *user.ResetPasswordToken != tokenHash || !pendingAt(user, now) {
		return false, nil
	}
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil
	if newPasswordHash != "" {
		user.PasswordHash = newPasswordHash
	}
	return true, nil
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if user, ok := m.users[userID]; ok {
		user.ResetPasswordToken = nil
		user.ResetPasswordExpire = nil
	}
	return nil
}

func (m *MockUserRepository) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for _, user := range m.users {
		if user.ResetPasswordExpire != nil && !user.ResetPasswordExpire.After(now) {
			user.ResetPasswordToken = nil
			user.ResetPasswordExpire = nil
			n++
		}
	}
	return n, nil
}

// MockProjectRepository is an in-memory ProjectRepository. Owner fields are
// filled from the attached user repository, like the SQL join does.
type MockProjectRepository struct {
	mu       sync.Mutex
	projects map[int64]*models.Project
	nextID   int64
	users    *MockUserRepository

	// Err, when set, is returned by every method
	Err error
}

func NewMockProjectRepository(users *MockUserRepository) *MockProjectRepository {
	return &MockProjectRepository{
		projects: make(map[int64]*models.Project),
		nextID:   1,
		users:    users,
	}
}

func (m *MockProjectRepository) withOwner(p *models.Project) *models.Project {
	copied := *p
	copied.Technologies = append([]string(nil), p.Technologies...)
	if m.users != nil {
		if user, err := m.users.GetByID(context.Background(), p.UserID); err == nil {
			copied.Owner = &models.Owner{Name: user.Name, Avatar: user.Avatar}
		}
	}
	return &copied
}

func (m *MockProjectRepository) sorted(filter func(*models.Project) bool) []*models.Project {
	result := []*models.Project{}
	for _, p := range m.projects {
		if filter(p) {
			result = append(result, m.withOwner(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

func (m *MockProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.sorted(func(*models.Project) bool { return true }), nil
}

func (m *MockProjectRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.sorted(func(p *models.Project) bool { return p.UserID == userID }), nil
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, utils.NewNotFoundError("Project", id)
	}
	return m.withOwner(p), nil
}

func (m *MockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	project.ID = m.nextID
	m.nextID++
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *MockProjectRepository) Update(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.projects[project.ID]; !ok {
		return utils.NewNotFoundError("Project", project.ID)
	}
	stored := *project
	stored.Owner = nil
	m.projects[project.ID] = &stored
	return nil
}

func (m *MockProjectRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.projects[id]; !ok {
		return utils.NewNotFoundError("Project", id)
	}
	delete(m.projects, id)
	return nil
}

// MockImageStore records saved and deleted references.
type MockImageStore struct {
	Saved   []string
	Deleted []string
	SaveErr error
}

func (m *MockImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	ref := "/uploads/" + filename
	m.Saved = append(m.Saved, ref)
	return ref, nil
}

func (m *MockImageStore) Delete(ctx context.Context, ref string) error {
	m.Deleted = append(m.Deleted, ref)
	return nil
}

func (m *MockImageStore) Owns(ref string) bool {
	return strings.HasPrefix(ref, "/uploads/")
}

// MockEmailSender records the reset links it was asked to deliver.
type MockEmailSender struct {
	mu    sync.Mutex
	Links []string
	To    []string
	Err   error
}

func (m *MockEmailSender) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.To = append(m.To, toEmail)
	m.Links = append(m.Links, resetURL)
	return nil
}

var errStoreDown = errors.New("connection refused")

func newTestHasher() *auth.Hasher {
	return auth.NewPasswordHasher(&auth.PasswordConfig{
		Algorithm:  constants.HashAlgorithmBcrypt,
		BcryptCost: 4,
	})
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(&config.JWTSettings{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "portfolio-api-test",
	})
}

// seedUser stores a user with the given password and returns it.
func seedUser(repo *MockUserRepository, name, email, password string) *models.User {
	hash, err := newTestHasher().Hash(password)
	if err != nil {
		panic(err)
	}
	user := models.NewUser(name, email, constants.DefaultAvatar)
	user.PasswordHash = hash
	if err := repo.Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}
