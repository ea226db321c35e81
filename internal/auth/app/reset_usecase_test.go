package app_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"credkeeper/internal/auth/adapters/memory"
	"credkeeper/internal/auth/app"
	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/i18n"
	"credkeeper/internal/auth/ports/repositories"
)

const testResetToken = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

var fixedNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

type resetMocks struct {
	repo   *mockUserRepository
	pass   *mockPasswordService
	tokens *mockResetTokenService
	mail   *mockMailSender
}

func newResetUseCase(t *testing.T, now time.Time) (*resetMocks, *app.ResetUseCaseImpl) {
	t.Helper()

	m := &resetMocks{
		repo:   new(mockUserRepository),
		pass:   new(mockPasswordService),
		tokens: new(mockResetTokenService),
		mail:   new(mockMailSender),
	}
	useCase := app.NewResetUseCase(m.repo, m.pass, m.tokens, m.mail, app.ResetSettings{},
		app.WithResetClock(func() time.Time { return now }))

	impl, ok := useCase.(*app.ResetUseCaseImpl)
	require.True(t, ok)
	return m, impl
}

func (m *resetMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.repo.AssertExpectations(t)
	m.pass.AssertExpectations(t)
	m.tokens.AssertExpectations(t)
	m.mail.AssertExpectations(t)
}

func plainUser() *entities.User {
	return &entities.User{ID: testUserID, Email: testEmail, PasswordHash: testHash}
}

func pendingUser(expiry time.Time) *entities.User {
	u := plainUser()
	u.SetResetToken(testResetToken, expiry)
	return u
}

func TestRequestReset(t *testing.T) {
	t.Run("токен выдан и сохранен", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		expectedExpiry := fixedNow.Add(app.DefaultResetTokenTTL)

		m.repo.On("FindByEmail", mock.Anything, testEmail).Return(plainUser(), nil).Once()
		m.tokens.On("Generate").Return(testResetToken, nil).Once()
		m.repo.On("SetResetToken", mock.Anything, testEmail, testResetToken, expectedExpiry).Return(nil).Once()

		request, err := useCase.RequestReset(context.Background(), testEmail)
		require.NoError(t, err)
		assert.Equal(t, testEmail, request.Email)
		assert.Equal(t, testResetToken, request.Token)
		assert.Equal(t, expectedExpiry, request.ExpiresAt)
		m.assertExpectations(t)
	})

	t.Run("неизвестный email", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		m.repo.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, entities.ErrUserNotFound).Once()

		request, err := useCase.RequestReset(context.Background(), "nobody@x.com")
		require.ErrorIs(t, err, entities.ErrUserNotFound)
		assert.Nil(t, request)
		m.repo.AssertNotCalled(t, "SetResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("пустой email", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)

		_, err := useCase.RequestReset(context.Background(), "")
		require.ErrorIs(t, err, entities.ErrUserNotFound)
		m.repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("ошибка генерации", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		m.repo.On("FindByEmail", mock.Anything, testEmail).Return(plainUser(), nil).Once()
		m.tokens.On("Generate").Return("", services.ErrResetTokenGeneration).Once()

		_, err := useCase.RequestReset(context.Background(), testEmail)
		require.ErrorIs(t, err, services.ErrResetTokenGeneration)
		m.assertExpectations(t)
	})

	t.Run("ошибка сохранения", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		m.repo.On("FindByEmail", mock.Anything, testEmail).Return(plainUser(), nil).Once()
		m.tokens.On("Generate").Return(testResetToken, nil).Once()
		m.repo.On("SetResetToken", mock.Anything, testEmail, testResetToken, mock.Anything).Return(ErrDatabaseConnection).Once()

		_, err := useCase.RequestReset(context.Background(), testEmail)
		require.ErrorIs(t, err, ErrDatabaseConnection)
		m.assertExpectations(t)
	})
}

// interleavingRepository выполняет hook сразу после FindByEmail.
type interleavingRepository struct {
	repositories.UserRepository
	afterFind func()
}

func (r *interleavingRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	user, err := r.UserRepository.FindByEmail(ctx, email)
	if r.afterFind != nil {
		hook := r.afterFind
		r.afterFind = nil
		hook()
	}
	return user, err
}

func TestRequestResetKeepsConcurrentPasswordChange(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserRepository()
	created, err := store.Create(ctx, &entities.User{Email: testEmail, PasswordHash: "old-hash"})
	require.NoError(t, err)

	repo := &interleavingRepository{UserRepository: store}
	repo.afterFind = func() {
		changed := *created
		changed.PasswordHash = "new-hash"
		_, updateErr := store.Update(ctx, &changed)
		require.NoError(t, updateErr)
	}

	tokens := new(mockResetTokenService)
	tokens.On("Generate").Return(testResetToken, nil).Once()

	useCase := app.NewResetUseCase(repo, new(mockPasswordService), tokens, new(mockMailSender), app.ResetSettings{},
		app.WithResetClock(func() time.Time { return fixedNow }))

	_, err = useCase.RequestReset(ctx, testEmail)
	require.NoError(t, err)

	stored, err := store.FindByEmail(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.PasswordHash)
	assert.Equal(t, testResetToken, stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiry)
	assert.True(t, stored.ResetTokenExpiry.Equal(fixedNow.Add(app.DefaultResetTokenTTL)))
	tokens.AssertExpectations(t)
}

func TestValidateResetToken(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		token       string
		setupMocks  func(repo *mockUserRepository)
		expectedErr error
	}{
		{
			name:  "действующий токен",
			email: testEmail,
			token: testResetToken,
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, testResetToken).
					Return(pendingUser(fixedNow.Add(time.Minute)), nil).Once()
			},
		},
		{
			name:  "срок истекает ровно сейчас",
			email: testEmail,
			token: testResetToken,
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, testResetToken).
					Return(pendingUser(fixedNow), nil).Once()
			},
		},
		{
			name:  "истекший токен",
			email: testEmail,
			token: testResetToken,
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, testResetToken).
					Return(pendingUser(fixedNow.Add(-time.Millisecond)), nil).Once()
			},
			expectedErr: services.ErrInvalidOrExpiredResetToken,
		},
		{
			name:  "пара не найдена",
			email: testEmail,
			token: "wrong",
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, "wrong").
					Return(nil, entities.ErrUserNotFound).Once()
			},
			expectedErr: services.ErrInvalidOrExpiredResetToken,
		},
		{
			name:        "пустой токен",
			email:       testEmail,
			token:       "",
			setupMocks:  func(*mockUserRepository) {},
			expectedErr: services.ErrInvalidOrExpiredResetToken,
		},
		{
			name:  "ошибка хранилища",
			email: testEmail,
			token: testResetToken,
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, testResetToken).
					Return(nil, ErrDatabaseConnection).Once()
			},
			expectedErr: ErrDatabaseConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, useCase := newResetUseCase(t, fixedNow)
			tt.setupMocks(m.repo)

			user, err := useCase.Validate(context.Background(), tt.email, tt.token)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testUserID, user.ID)
			}
			m.assertExpectations(t)
		})
	}
}

func TestConsumeResetToken(t *testing.T) {
	m, useCase := newResetUseCase(t, fixedNow)
	user := pendingUser(fixedNow.Add(time.Minute))

	m.repo.On("Update", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
		return u.ResetToken == "" && u.ResetTokenExpiry == nil
	})).Return(user, nil).Once()

	require.NoError(t, useCase.Consume(context.Background(), user))
	assert.False(t, user.HasPendingReset())
	m.assertExpectations(t)

	require.ErrorIs(t, useCase.Consume(context.Background(), nil), entities.ErrUserNotFound)
}

func TestForgotPassword(t *testing.T) {
	expectMailFlow := func(m *resetMocks) {
		m.repo.On("FindByEmail", mock.Anything, testEmail).Return(plainUser(), nil).Once()
		m.tokens.On("Generate").Return(testResetToken, nil).Once()
		m.repo.On("SetResetToken", mock.Anything, testEmail, testResetToken, mock.Anything).Return(nil).Once()
	}

	t.Run("письмо на иврите", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		expectMailFlow(m)

		var sent *services.ResetMail
		m.mail.On("Send", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.Get(1).(*services.ResetMail) }).
			Return(nil).Once()

		require.NoError(t, useCase.ForgotPassword(context.Background(), testEmail, i18n.Hebrew))
		m.assertExpectations(t)

		require.NotNil(t, sent)
		assert.Equal(t, testEmail, sent.To)
		assert.Equal(t, i18n.T(i18n.Hebrew, i18n.PasswordReset), sent.Subject)
		assert.Contains(t, sent.HTML, i18n.T(i18n.Hebrew, i18n.PasswordResetRequest))
		assert.Contains(t, sent.HTML, i18n.T(i18n.Hebrew, i18n.LinkExpiresIn10Min))

		link, err := url.Parse(sent.Link)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(sent.Link, app.DefaultResetLinkBase+"?"))
		assert.Equal(t, testResetToken, link.Query().Get("token"))
		assert.Equal(t, testEmail, link.Query().Get("email"))
		assert.Contains(t, sent.HTML, "token="+testResetToken)
	})

	t.Run("письмо на английском", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		expectMailFlow(m)
		m.mail.On("Send", mock.Anything, mock.MatchedBy(func(mail *services.ResetMail) bool {
			return mail.Subject == "Password reset" &&
				strings.Contains(mail.HTML, "Click the link below to reset your password:")
		})).Return(nil).Once()

		require.NoError(t, useCase.ForgotPassword(context.Background(), testEmail, i18n.English))
		m.assertExpectations(t)
	})

	t.Run("ошибка доставки", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		expectMailFlow(m)
		m.mail.On("Send", mock.Anything, mock.Anything).Return(ErrDatabaseConnection).Once()

		err := useCase.ForgotPassword(context.Background(), testEmail, i18n.Hebrew)
		require.ErrorIs(t, err, services.ErrMailDelivery)
		m.assertExpectations(t)
	})

	t.Run("неизвестный email", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		m.repo.On("FindByEmail", mock.Anything, testEmail).Return(nil, entities.ErrUserNotFound).Once()

		err := useCase.ForgotPassword(context.Background(), testEmail, i18n.Hebrew)
		require.ErrorIs(t, err, entities.ErrUserNotFound)
		m.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestResetPassword(t *testing.T) {
	const newPassword = "NewSecret2!"
	const newHash = "$2a$10$newhash"

	t.Run("пароль заменен одним обновлением", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		m.repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, testResetToken).
			Return(pendingUser(fixedNow.Add(5*time.Minute)), nil).Once()
		m.pass.On("Hash", mock.Anything, newPassword).Return(newHash, nil).Once()
		m.repo.On("Update", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.PasswordHash == newHash && u.ResetToken == "" && u.ResetTokenExpiry == nil
		})).Return(plainUser(), nil).Once()

		require.NoError(t, useCase.ResetPassword(context.Background(), testEmail, testResetToken, newPassword))
		m.assertExpectations(t)
	})

	t.Run("истекший токен", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		m.repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, testResetToken).
			Return(pendingUser(fixedNow.Add(-time.Second)), nil).Once()

		err := useCase.ResetPassword(context.Background(), testEmail, testResetToken, newPassword)
		require.ErrorIs(t, err, services.ErrInvalidOrExpiredResetToken)
		m.pass.AssertNotCalled(t, "Hash", mock.Anything, mock.Anything)
		m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("пустой новый пароль", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		m.repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, testResetToken).
			Return(pendingUser(fixedNow.Add(time.Minute)), nil).Once()

		err := useCase.ResetPassword(context.Background(), testEmail, testResetToken, "")
		require.ErrorIs(t, err, services.ErrMissingFields)
		m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("ошибка хэширования", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		m.repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, testResetToken).
			Return(pendingUser(fixedNow.Add(time.Minute)), nil).Once()
		m.pass.On("Hash", mock.Anything, newPassword).Return("", services.ErrPasswordTooLong).Once()

		err := useCase.ResetPassword(context.Background(), testEmail, testResetToken, newPassword)
		require.ErrorIs(t, err, services.ErrPasswordTooLong)
		m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("ошибка сохранения", func(t *testing.T) {
		m, useCase := newResetUseCase(t, fixedNow)
		m.repo.On("FindByEmailAndResetToken", mock.Anything, testEmail, testResetToken).
			Return(pendingUser(fixedNow.Add(time.Minute)), nil).Once()
		m.pass.On("Hash", mock.Anything, newPassword).Return(newHash, nil).Once()
		m.repo.On("Update", mock.Anything, mock.Anything).Return(nil, ErrDatabaseConnection).Once()

		err := useCase.ResetPassword(context.Background(), testEmail, testResetToken, newPassword)
		require.ErrorIs(t, err, ErrDatabaseConnection)
		m.assertExpectations(t)
	})
}
