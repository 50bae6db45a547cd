package service

import (
	"context"
	"errors"
	"testing"

	"inventario-backend/internal/domain"
	"inventario-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	rt, ok := m.tokens[token]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if rt.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return rt, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	rt, ok := m.tokens[token]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	rt.Revoked = true
	return nil
}

type mockAddressRepository struct {
	addresses map[int64]*domain.Address
	nextID    int64
}

func newMockAddressRepository() *mockAddressRepository {
	return &mockAddressRepository{addresses: make(map[int64]*domain.Address), nextID: 1}
}

func (m *mockAddressRepository) Create(ctx context.Context, address *domain.Address) error {
	address.ID = m.nextID
	m.nextID++
	copied := *address
	m.addresses[address.ID] = &copied
	return nil
}

func (m *mockAddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	addresses := []*domain.Address{}
	for _, address := range m.addresses {
		if address.UserID == userID {
			addresses = append(addresses, address)
		}
	}
	return addresses, nil
}

func (m *mockAddressRepository) Delete(ctx context.Context, id int64, userID uuid.UUID) error {
	address, ok := m.addresses[id]
	if !ok || address.UserID != userID {
		return repository.ErrAddressNotFound
	}
	delete(m.addresses, id)
	return nil
}

func newTestUserService() (UserService, *mockUserRepository) {
	userRepo := newMockUserRepository()
	svc := NewUserService(userRepo, newMockRefreshTokenRepository(), newMockAddressRepository(), "test-secret")
	return svc, userRepo
}

func TestRegisterDefaultsToClient(t *testing.T) {
	svc, _ := newTestUserService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "secret123",
		Name:     "Ana",
		Surname:  "Soto",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Role != domain.RoleClient {
		t.Errorf("role = %q, want %q", user.Role, domain.RoleClient)
	}
	if user.IsStaff || user.IsSuperuser {
		t.Error("client accounts must not carry staff or superuser flags")
	}
	if user.PasswordHash == "secret123" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestRegisterAdminGrantsPlatformFlags(t *testing.T) {
	svc, _ := newTestUserService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "admin@example.com",
		Password: "secret123",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if !user.IsStaff || !user.IsSuperuser {
		t.Error("admin accounts must carry both staff and superuser flags")
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "x@example.com",
		Password: "secret123",
		Role:     "moderador",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService()

	input := RegisterInput{Email: "ana@example.com", Password: "secret123"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), input)
	if !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestLoginAndTokenClaims(t *testing.T) {
	svc, _ := newTestUserService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "admin@example.com",
		Password: "secret123",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	accessToken, refreshToken, loggedIn, err := svc.Login(context.Background(), "admin@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Error("login returned a different user")
	}
	if refreshToken == "" {
		t.Error("expected a refresh token")
	}

	claims, err := svc.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims user id = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Role != domain.RoleAdmin {
		t.Errorf("claims role = %q, want %q", claims.Role, domain.RoleAdmin)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newTestUserService()

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, _, err := svc.Login(context.Background(), "ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login(context.Background(), "ghost@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshTokenFlow(t *testing.T) {
	svc, _ := newTestUserService()

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, refreshToken, _, err := svc.Login(context.Background(), "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	newAccess, err := svc.RefreshToken(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if _, err := svc.ValidateToken(newAccess); err != nil {
		t.Errorf("refreshed access token does not validate: %v", err)
	}

	if err := svc.Logout(context.Background(), refreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.RefreshToken(context.Background(), refreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("revoked token: expected ErrInvalidToken, got %v", err)
	}
}

func TestUpdateProfileRehashesPassword(t *testing.T) {
	svc, repo := newTestUserService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "secret123",
		Name:     "Ana",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	oldHash := user.PasswordHash

	newPassword := "betterSecret456"
	newName := "Ana Maria"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Password: &newPassword,
		Name:     &newName,
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if updated.PasswordHash == oldHash {
		t.Error("password hash unchanged after password update")
	}
	if updated.Name != "Ana Maria" {
		t.Errorf("name = %q, want %q", updated.Name, "Ana Maria")
	}
	if updated.Role != domain.RoleClient {
		t.Error("profile update must not change the role")
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(newPassword)); err != nil {
		t.Errorf("persisted hash does not verify against new password: %v", err)
	}
}

func TestAddressOwnership(t *testing.T) {
	svc, _ := newTestUserService()

	owner, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	other, err := svc.Register(context.Background(), RegisterInput{Email: "b@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	address := &domain.Address{City: "Santiago", Country: "Chile", Street: "Av. Siempre Viva 123", PostalCode: "8320000"}
	if err := svc.AddAddress(context.Background(), owner.ID, address); err != nil {
		t.Fatalf("AddAddress failed: %v", err)
	}

	addresses, err := svc.ListAddresses(context.Background(), owner.ID)
	if err != nil || len(addresses) != 1 {
		t.Fatalf("ListAddresses = %v, %v; want 1 address", addresses, err)
	}

	if err := svc.DeleteAddress(context.Background(), address.ID, other.ID); !errors.Is(err, repository.ErrAddressNotFound) {
		t.Errorf("deleting another user's address: expected ErrAddressNotFound, got %v", err)
	}
	if err := svc.DeleteAddress(context.Background(), address.ID, owner.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}

// Any password accepted at registration must verify against the stored hash,
// and the hash must never equal the input.
func TestProperty_PasswordHashing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20 // bcrypt is slow
	properties := gopter.NewProperties(parameters)

	properties.Property("registered passwords verify and are never stored verbatim", prop.ForAll(
		func(password string) bool {
			svc, _ := newTestUserService()
			user, err := svc.Register(context.Background(), RegisterInput{
				Email:    "p@example.com",
				Password: password,
			})
			if err != nil {
				return false
			}
			if user.PasswordHash == password {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 8 && len(s) <= 64 }),
	))

	properties.TestingRun(t)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, _ := newTestUserService()
	otherSvc := NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), newMockAddressRepository(), "other-secret")

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	accessToken, _, _, err := svc.Login(context.Background(), "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := otherSvc.ValidateToken(accessToken); err == nil {
		t.Error("token signed with a different secret must not validate")
	}
}
