package auth

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"maroctour/internal/database/dbtest"
	"maroctour/internal/domain/profile"
	"maroctour/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const strongPassword = "Atlas#2024"

type sentLink struct {
	Email   string
	Purpose TokenPurpose
	Token   string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentLink
}

func (m *fakeMailer) SendAuthLink(_ context.Context, email string, purpose TokenPurpose, link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentLink{Email: email, Purpose: purpose, Token: u.Query().Get("token")})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentLink {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no link was mailed")
	return m.sent[len(m.sent)-1]
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type adminNotice struct {
	Type    string
	Title   string
	Message string
}

type fakeNotifier struct {
	notices []adminNotice
}

func (n *fakeNotifier) NotifyAdmins(_ context.Context, notifType, title, message string, _ map[string]any) error {
	n.notices = append(n.notices, adminNotice{Type: notifType, Title: title, Message: message})
	return nil
}

type fakeProvider struct {
	identity *OAuthIdentity
	codes    []string
}

func (p *fakeProvider) Name() string { return ProviderGoogle }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*OAuthIdentity, error) {
	p.codes = append(p.codes, code)
	if code == "bad" {
		return nil, ErrOAuthExchange
	}
	return p.identity, nil
}

type testEnv struct {
	svc      *Service
	db       *gorm.DB
	mailer   *fakeMailer
	notifier *fakeNotifier
	profiles *profile.Repository
}

func setupTestService(t *testing.T, requireConfirmation bool) *testEnv {
	t.Helper()
	db := dbtest.Open(t, &User{}, &AuthToken{}, &RefreshToken{}, &profile.Profile{})
	profileRepo := profile.NewRepository(db)
	profiles := profile.NewService(profileRepo, []string{"admin@maroctour.ma"})

	mailer := &fakeMailer{}
	notifier := &fakeNotifier{}
	svc := NewService(db, profiles, jwt.New("test-secret", 15*time.Minute), mailer, Config{
		RefreshTokenPepper:       "refresh-pepper",
		AuthTokenPepper:          "auth-pepper",
		RefreshTTL:               24 * time.Hour,
		AuthTokenTTL:             time.Hour,
		ResendCooldown:           time.Minute,
		RequireEmailConfirmation: requireConfirmation,
		PublicBaseURL:            "http://localhost:5173",
	})
	svc.SetNotifier(notifier)
	return &testEnv{svc: svc, db: db, mailer: mailer, notifier: notifier, profiles: profileRepo}
}

func (e *testEnv) signUp(t *testing.T, email string) *SignUpResult {
	t.Helper()
	res, err := e.svc.SignUp(context.Background(), SignUpInput{Email: email, Password: strongPassword}, ClientMeta{})
	require.NoError(t, err)
	return res
}

func TestSignUp_ConfirmationFlow(t *testing.T) {
	env := setupTestService(t, true)
	ctx := context.Background()

	res := env.signUp(t, " Sara@Example.MA ")
	assert.True(t, res.ConfirmationRequired)
	assert.Nil(t, res.Session)

	p, err := env.profiles.GetByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "sara@example.ma", p.Email)
	assert.Equal(t, profile.RoleClient, p.Role)
	assert.Equal(t, profile.DefaultCountry, p.Country)
	assert.False(t, p.IsVerified)

	_, err = env.svc.SignIn(ctx, "sara@example.ma", strongPassword, ClientMeta{})
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)

	link := env.mailer.last(t)
	assert.Equal(t, PurposeSignup, link.Purpose)

	session, err := env.svc.VerifyOTP(ctx, link.Token, PurposeSignup, ClientMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "/", session.RedirectPath)

	_, err = env.svc.VerifyOTP(ctx, link.Token, PurposeSignup, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	session, err = env.svc.SignIn(ctx, "SARA@example.ma", strongPassword, ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, profile.RoleClient, session.Role)
}

func TestSignUp_WithoutConfirmationReturnsSession(t *testing.T) {
	env := setupTestService(t, false)

	res := env.signUp(t, "direct@example.ma")
	assert.False(t, res.ConfirmationRequired)
	require.NotNil(t, res.Session)
	assert.Equal(t, string(profile.DestinationClient), res.Session.Destination)
	assert.Equal(t, 0, env.mailer.count())
}

func TestSignUp_Rejections(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()

	for _, pw := range []string{"short1!", "alllowercase1!", "NoDigits!!", "NoSpecial12"} {
		_, err := env.svc.SignUp(ctx, SignUpInput{Email: "weak@example.ma", Password: pw}, ClientMeta{})
		assert.ErrorIs(t, err, ErrWeakPassword, pw)
	}

	_, err := env.svc.SignUp(ctx, SignUpInput{Email: "not-an-email", Password: strongPassword}, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	env.signUp(t, "taken@example.ma")
	_, err = env.svc.SignUp(ctx, SignUpInput{Email: "TAKEN@example.ma", Password: strongPassword}, ClientMeta{})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestSignUp_PartnerNotifiesAdmins(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()

	res, err := env.svc.SignUp(ctx, SignUpInput{Email: "riad@example.ma", Password: strongPassword, AsPartner: true}, ClientMeta{})
	require.NoError(t, err)

	p, err := env.profiles.GetByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, profile.RolePartnerNew, p.Role)
	assert.Equal(t, profile.StatusPending, p.Status)
	assert.Equal(t, "/dashboard/partner", res.Session.RedirectPath)

	require.Len(t, env.notifier.notices, 1)
	assert.Equal(t, "new_partner", env.notifier.notices[0].Type)
	assert.Equal(t, "Nouveau partenaire en attente: riad@example.ma", env.notifier.notices[0].Message)
}

func TestSignIn_AdminEmailGetsAdminRole(t *testing.T) {
	env := setupTestService(t, false)
	env.signUp(t, "admin@maroctour.ma")

	session, err := env.svc.SignIn(context.Background(), "admin@maroctour.ma", strongPassword, ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, profile.RoleAdmin, session.Role)
	assert.Equal(t, "/dashboard/admin", session.RedirectPath)
}

func TestSignIn_LockoutAfterFiveFailures(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()
	env.signUp(t, "lock@example.ma")

	for i := 0; i < maxFailedLoginAttempts-1; i++ {
		_, err := env.svc.SignIn(ctx, "lock@example.ma", "Wrong#1234", ClientMeta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := env.svc.SignIn(ctx, "lock@example.ma", "Wrong#1234", ClientMeta{})
	assert.ErrorIs(t, err, ErrAccountLocked)

	_, err = env.svc.SignIn(ctx, "lock@example.ma", strongPassword, ClientMeta{})
	assert.ErrorIs(t, err, ErrAccountLocked)

	env.svc.now = func() time.Time { return time.Now().Add(lockoutDuration + time.Minute) }
	_, err = env.svc.SignIn(ctx, "lock@example.ma", strongPassword, ClientMeta{})
	assert.NoError(t, err)
}

func TestSignIn_ExpiredLockoutResetsCounter(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()
	env.signUp(t, "relock@example.ma")

	for i := 0; i < maxFailedLoginAttempts; i++ {
		_, _ = env.svc.SignIn(ctx, "relock@example.ma", "Wrong#1234", ClientMeta{})
	}

	env.svc.now = func() time.Time { return time.Now().Add(lockoutDuration + time.Minute) }
	_, err := env.svc.SignIn(ctx, "relock@example.ma", "Wrong#1234", ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "one mistake after the lockout must not relock")

	var u User
	require.NoError(t, env.svc.db.Where("email = ?", "relock@example.ma").First(&u).Error)
	assert.Equal(t, 1, u.FailedLoginAttempts)
	assert.Nil(t, u.LockedUntil)

	_, err = env.svc.SignIn(ctx, "relock@example.ma", strongPassword, ClientMeta{})
	assert.NoError(t, err)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	env := setupTestService(t, false)
	_, err := env.svc.SignIn(context.Background(), "ghost@example.ma", strongPassword, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesAndDetectsReuse(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()
	first := env.signUp(t, "rotate@example.ma").Session

	second, err := env.svc.Refresh(ctx, first.RefreshToken, ClientMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = env.svc.Refresh(ctx, first.RefreshToken, ClientMeta{})
	assert.ErrorIs(t, err, ErrRefreshTokenReused)

	// the whole family is gone, including the token issued by the rotation
	_, err = env.svc.Refresh(ctx, second.RefreshToken, ClientMeta{})
	assert.ErrorIs(t, err, ErrRefreshTokenReused)

	_, err = env.svc.Refresh(ctx, "unknown", ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestSignOut_RevokesToken(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()
	session := env.signUp(t, "bye@example.ma").Session

	require.NoError(t, env.svc.SignOut(ctx, session.RefreshToken))
	_, err := env.svc.Refresh(ctx, session.RefreshToken, ClientMeta{})
	assert.Error(t, err)
}

func TestMagicLink_MaskedAndSignsIn(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()

	res, err := env.svc.RequestMagicLink(ctx, "nobody@example.ma")
	require.NoError(t, err)
	assert.Equal(t, "accepted", res.Status)
	assert.Equal(t, 0, env.mailer.count())

	env.signUp(t, "magic@example.ma")
	_, err = env.svc.RequestMagicLink(ctx, "magic@example.ma")
	require.NoError(t, err)

	link := env.mailer.last(t)
	assert.Equal(t, PurposeMagicLink, link.Purpose)

	_, err = env.svc.VerifyOTP(ctx, link.Token, PurposeSignup, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	session, err := env.svc.VerifyOTP(ctx, link.Token, PurposeMagicLink, ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, "magic@example.ma", session.User.Email)
}

func TestVerifyOTP_RejectsUnknownType(t *testing.T) {
	env := setupTestService(t, false)
	_, err := env.svc.VerifyOTP(context.Background(), "whatever", PurposeOAuthState, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidOTPType)
}

func TestVerifyOTP_ExpiredToken(t *testing.T) {
	env := setupTestService(t, true)
	env.signUp(t, "late@example.ma")
	link := env.mailer.last(t)

	env.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := env.svc.VerifyOTP(context.Background(), link.Token, PurposeSignup, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResendConfirmation_Cooldown(t *testing.T) {
	env := setupTestService(t, true)
	ctx := context.Background()
	env.signUp(t, "resend@example.ma")

	_, err := env.svc.ResendConfirmation(ctx, "resend@example.ma")
	assert.ErrorIs(t, err, ErrRateLimitExceeded)

	env.svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = env.svc.ResendConfirmation(ctx, "resend@example.ma")
	require.NoError(t, err)
	assert.Equal(t, 2, env.mailer.count())

	// only the newest link stays valid
	first := env.mailer.sent[0]
	_, err = env.svc.VerifyOTP(ctx, first.Token, PurposeSignup, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordReset_RevokesSessions(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()
	session := env.signUp(t, "reset@example.ma").Session

	_, err := env.svc.RequestPasswordReset(ctx, "reset@example.ma")
	require.NoError(t, err)
	link := env.mailer.last(t)
	assert.Equal(t, PurposeRecovery, link.Purpose)

	assert.ErrorIs(t, env.svc.ResetPassword(ctx, link.Token, "weak"), ErrWeakPassword)
	require.NoError(t, env.svc.ResetPassword(ctx, link.Token, "Nouveau#2025"))

	_, err = env.svc.Refresh(ctx, session.RefreshToken, ClientMeta{})
	assert.Error(t, err)

	_, err = env.svc.SignIn(ctx, "reset@example.ma", strongPassword, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.SignIn(ctx, "reset@example.ma", "Nouveau#2025", ClientMeta{})
	assert.NoError(t, err)

	assert.ErrorIs(t, env.svc.ResetPassword(ctx, link.Token, "Encore#2026"), ErrInvalidToken)
}

func TestUpdatePassword_RequiresCurrent(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()
	res := env.signUp(t, "pw@example.ma")

	err := env.svc.UpdatePassword(ctx, res.UserID, "Wrong#0000", "Change#2025")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.svc.UpdatePassword(ctx, res.UserID, strongPassword, "Change#2025"))
	_, err = env.svc.SignIn(ctx, "pw@example.ma", "Change#2025", ClientMeta{})
	assert.NoError(t, err)
}

func TestUpdateEmail_AppliesAfterVerification(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()
	res := env.signUp(t, "old@example.ma")
	env.signUp(t, "other@example.ma")

	_, err := env.svc.UpdateEmail(ctx, res.UserID, "new@example.ma", "Wrong#0000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.UpdateEmail(ctx, res.UserID, "old@example.ma", strongPassword)
	assert.ErrorIs(t, err, ErrSameEmail)
	_, err = env.svc.UpdateEmail(ctx, res.UserID, "other@example.ma", strongPassword)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = env.svc.UpdateEmail(ctx, res.UserID, "New@Example.ma", strongPassword)
	require.NoError(t, err)
	link := env.mailer.last(t)
	assert.Equal(t, "new@example.ma", link.Email)
	assert.Equal(t, PurposeEmailChange, link.Purpose)

	session, err := env.svc.VerifyOTP(ctx, link.Token, PurposeEmailChange, ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, "new@example.ma", session.User.Email)

	p, err := env.profiles.GetByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.ma", p.Email)
}

func TestInviteUser_SetsFirstPassword(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()

	_, err := env.svc.InviteUser(ctx, InviteInput{Email: "x@example.ma", Role: profile.RoleSystem})
	assert.ErrorIs(t, err, ErrInvalidRole)

	p, err := env.svc.InviteUser(ctx, InviteInput{
		Email:       "hotel@example.ma",
		Role:        profile.RolePartnerHotel,
		CompanyName: "Riad Atlas",
		Verified:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hotel", p.PartnerType)
	assert.True(t, p.IsVerified)

	link := env.mailer.last(t)
	assert.Equal(t, PurposeInvite, link.Purpose)

	session, err := env.svc.VerifyOTP(ctx, link.Token, PurposeInvite, ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, profile.RolePartnerHotel, session.Role)

	require.NoError(t, env.svc.UpdatePassword(ctx, p.ID, "", "Premier#2025"))
	_, err = env.svc.SignIn(ctx, "hotel@example.ma", "Premier#2025", ClientMeta{})
	assert.NoError(t, err)
}

func TestInviteUser_WithPasswordSkipsMail(t *testing.T) {
	env := setupTestService(t, false)

	_, err := env.svc.InviteUser(context.Background(), InviteInput{
		Email:    "car@example.ma",
		Role:     profile.RolePartnerCar,
		Password: strongPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, env.mailer.count())

	_, err = env.svc.SignIn(context.Background(), "car@example.ma", strongPassword, ClientMeta{})
	assert.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	env := setupTestService(t, false)
	ctx := context.Background()
	res := env.signUp(t, "gone@example.ma")

	require.NoError(t, env.svc.DeleteAccount(ctx, res.UserID))
	_, err := env.profiles.GetByID(ctx, res.UserID)
	assert.True(t, profile.IsNotFound(err))
	_, err = env.svc.GetUser(ctx, res.UserID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, env.svc.DeleteAccount(ctx, res.UserID), ErrUserNotFound)
}

func TestOAuth_CreatesPartnerAccount(t *testing.T) {
	env := setupTestService(t, true)
	ctx := context.Background()
	provider := &fakeProvider{identity: &OAuthIdentity{Email: "Guide@Example.ma", EmailVerified: true, FirstName: "Omar"}}
	env.svc.RegisterProvider(provider)

	_, err := env.svc.StartOAuth(ctx, "facebook", "")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
	_, err = env.svc.StartOAuth(ctx, ProviderGoogle, "admin")
	assert.ErrorIs(t, err, ErrInvalidRole)

	authURL, err := env.svc.StartOAuth(ctx, ProviderGoogle, "partner")
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	session, err := env.svc.CompleteOAuth(ctx, state, "code-1", ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, "guide@example.ma", session.User.Email)
	assert.True(t, session.User.EmailConfirmed())
	assert.Equal(t, profile.RolePartnerNew, session.Role)
	require.Len(t, env.notifier.notices, 1)
	assert.Equal(t, "Nouveau partenaire en attente: guide@example.ma", env.notifier.notices[0].Message)

	_, err = env.svc.CompleteOAuth(ctx, state, "code-2", ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOAuth_ExistingUserSignsIn(t *testing.T) {
	env := setupTestService(t, true)
	ctx := context.Background()
	res := env.signUp(t, "known@example.ma")
	env.svc.RegisterProvider(&fakeProvider{identity: &OAuthIdentity{Email: "known@example.ma"}})

	authURL, err := env.svc.StartOAuth(ctx, ProviderGoogle, "")
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)

	session, err := env.svc.CompleteOAuth(ctx, parsed.Query().Get("state"), "code", ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, res.UserID, session.User.ID)
	assert.True(t, session.User.EmailConfirmed())
	assert.Empty(t, env.notifier.notices)
}

func TestCleanup_RemovesStaleTokens(t *testing.T) {
	env := setupTestService(t, true)
	ctx := context.Background()
	env.signUp(t, "clean@example.ma")

	env.svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	res, err := env.svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.AuthTokens)

	var left int64
	require.NoError(t, env.db.Model(&AuthToken{}).Count(&left).Error)
	assert.Zero(t, left)
}
