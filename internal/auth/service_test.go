package auth

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/appealsdesk/appeals-registry/internal"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	creds       map[string]credentials
	usersByID   map[int64]*User
	returnError error
}

type credentials struct {
	hash     string
	userID   int64
	isActive bool
}

func newMockUserRepository() *mockUserRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		creds: map[string]credentials{
			"operator":   {hash: string(hash), userID: 1, isActive: true},
			"chief":      {hash: string(hash), userID: 2, isActive: true},
			"mothballed": {hash: string(hash), userID: 3, isActive: false},
		},
		usersByID: map[int64]*User{
			1: {ID: 1, Username: "operator", Rank: 1, IsActive: true,
				Roles: []string{"Operator"}, Permissions: []string{"view_appeals", "create_appeal"}},
			2: {ID: 2, Username: "chief", IsAdmin: true, IsSuperAdmin: true, Rank: 3, IsActive: true,
				Roles: []string{}, Permissions: []string{}},
			3: {ID: 3, Username: "mothballed", Rank: 1, IsActive: false,
				Roles: []string{}, Permissions: []string{}},
		},
	}
}

func (m *mockUserRepository) GetCredentials(username string) (string, int64, bool, error) {
	if m.returnError != nil {
		return "", 0, false, m.returnError
	}
	c, ok := m.creds[username]
	if !ok {
		return "", 0, false, errors.New("user not found")
	}
	return c.hash, c.userID, c.isActive, nil
}

func (m *mockUserRepository) GetUserWithPermissions(userID int64) (*User, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return m.usersByID[userID], nil
}

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		service *Service
		repo    *mockUserRepository
		tokens  *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		repo = newMockUserRepository()
		tokens = NewJWTTokenGenerator(
			"access-secret-for-tests-0123456789ab",
			"refresh-secret-for-tests-0123456789a",
			15*time.Minute,
			24*time.Hour,
		)
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(repo, tokens, logger)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("returns a token pair for valid credentials", func() {
			got, err := service.Authenticate(LoginDTO{Username: "operator", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(got.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(got.RefreshToken).NotTo(gomega.BeEmpty())
			gomega.Expect(got.AccessToken).NotTo(gomega.Equal(got.RefreshToken))
		})

		ginkgo.It("rejects a wrong password", func() {
			_, err := service.Authenticate(LoginDTO{Username: "operator", Password: "wrong"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("rejects an unknown username with the same error", func() {
			_, err := service.Authenticate(LoginDTO{Username: "ghost", Password: "correct_password"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("rejects an inactive account even with the right password", func() {
			_, err := service.Authenticate(LoginDTO{Username: "mothballed", Password: "correct_password"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserInactive))
		})

		ginkgo.It("rejects empty credentials", func() {
			_, err := service.Authenticate(LoginDTO{})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("token validation", func() {
		ginkgo.It("round-trips claims through an access token", func() {
			pair, err := service.Authenticate(LoginDTO{Username: "operator", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(pair.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(1)))
			gomega.Expect(claims.Username).To(gomega.Equal("operator"))
		})

		ginkgo.It("refuses a refresh token where an access token is expected", func() {
			pair, err := service.Authenticate(LoginDTO{Username: "operator", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(pair.RefreshToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("refuses garbage tokens", func() {
			_, err := service.ValidateAccessToken("not.a.token")
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("reports expiry distinctly", func() {
			expired := NewJWTTokenGenerator(
				"access-secret-for-tests-0123456789ab",
				"refresh-secret-for-tests-0123456789a",
				-time.Minute,
				24*time.Hour,
			)
			token, err := expired.GenerateAccessToken(1, "operator")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = tokens.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrTokenExpired))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("rotates the pair for an active user", func() {
			pair, err := service.Authenticate(LoginDTO{Username: "operator", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			rotated, err := service.RefreshTokens(pair.RefreshToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(rotated.AccessToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("refuses an access token used as a refresh token", func() {
			pair, err := service.Authenticate(LoginDTO{Username: "operator", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.RefreshTokens(pair.AccessToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("stops refreshing once the account is deactivated", func() {
			pair, err := service.Authenticate(LoginDTO{Username: "operator", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			repo.usersByID[1].IsActive = false
			_, err = service.RefreshTokens(pair.RefreshToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserInactive))
		})
	})

	ginkgo.Describe("User permission checks", func() {
		ginkgo.It("answers membership for regular users", func() {
			u, err := service.GetUserWithPermissions(1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(u.Can("view_appeals")).To(gomega.BeTrue())
			gomega.Expect(u.Can("delete_appeal")).To(gomega.BeFalse())
			gomega.Expect(u.CanAny("delete_appeal", "create_appeal")).To(gomega.BeTrue())
		})

		ginkgo.It("short-circuits for admins regardless of membership", func() {
			u, err := service.GetUserWithPermissions(2)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(u.Permissions).To(gomega.BeEmpty())
			gomega.Expect(u.Can("delete_appeal")).To(gomega.BeTrue())
			gomega.Expect(u.Can("code_that_does_not_exist")).To(gomega.BeTrue())
		})

		ginkgo.It("returns not found for a vanished user", func() {
			_, err := service.GetUserWithPermissions(99)
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserNotFound))
		})
	})
})
