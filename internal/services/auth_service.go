package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/session"
	"github.com/pquerna/otp/totp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const passwordRule = "must be at least 8 characters and include upper and lower case letters, a number and a special character"

type SignupInput struct {
	FirstName   string        `json:"firstName" validate:"required,max=50"`
	LastName    string        `json:"lastName" validate:"required,max=50"`
	Email       string        `json:"email" validate:"required,email,max=100"`
	Password    string        `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber string        `json:"phoneNumber" validate:"omitempty,max=20"`
	Gender      models.Gender `json:"gender" validate:"omitempty,oneof=male female others"`
	Address     string        `json:"address" validate:"omitempty,max=200"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Code is the TOTP code, required once two-factor auth is enabled.
	Code string `json:"code" validate:"omitempty,len=6,numeric"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type CompleteRegistrationInput struct {
	Email        string `json:"email" validate:"required,email"`
	TempPassword string `json:"tempPassword" validate:"required"`
	NewPassword  string `json:"newPassword" validate:"required,min=8,max=72"`
}

type CompanionProfileInput struct {
	FirstName   *string `json:"firstName" validate:"omitempty,max=50"`
	LastName    *string `json:"lastName" validate:"omitempty,max=50"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=20"`
	// Password sets the permanent password of a companion still on a
	// temporary credential.
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type LoginResult struct {
	Token          string            `json:"token"`
	ExpiresAt      time.Time         `json:"expiresAt"`
	Account        *models.Account   `json:"user,omitempty"`
	Companion      *models.Companion `json:"companion,omitempty"`
	IsTempPassword bool              `json:"isTempPassword,omitempty"`
}

type TwoFactorSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauthUrl"`
}

type AuthConfig struct {
	OTPExpiry   time.Duration
	FrontendURL string
	TOTPIssuer  string
}

type AuthService struct {
	accounts   models.AccountRepo
	companions models.CompanionRepo
	tokens     *helpers.TokenIssuer
	revoker    session.Revoker
	mail       mailer
	logger     *zap.Logger
	cfg        AuthConfig
	now        func() time.Time
}

func NewAuthService(
	accounts models.AccountRepo,
	companions models.CompanionRepo,
	tokens *helpers.TokenIssuer,
	revoker session.Revoker,
	notifier Notifier,
	logger *zap.Logger,
	cfg AuthConfig,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OTPExpiry <= 0 {
		cfg.OTPExpiry = 10 * time.Minute
	}
	if cfg.TOTPIssuer == "" {
		cfg.TOTPIssuer = "TourBirth"
	}
	return &AuthService{
		accounts:   accounts,
		companions: companions,
		tokens:     tokens,
		revoker:    revoker,
		mail:       mailer{notifier: notifier, frontendURL: cfg.FrontendURL},
		logger:     logger.Named("auth"),
		cfg:        cfg,
		now:        time.Now,
	}
}

func invalidCredentials() error {
	return apperr.Validation("Invalid email or password")
}

func weakPassword(field string) error {
	return apperr.Invalid("Validation failed", map[string]string{field: passwordRule})
}

func (s *AuthService) newOTP() (*models.OTP, error) {
	code, err := helpers.GenerateOTP()
	if err != nil {
		return nil, apperr.Internal("Failed to generate OTP", err)
	}
	return &models.OTP{Code: code, ExpiresAt: s.now().Add(s.cfg.OTPExpiry)}, nil
}

func (s *AuthService) expiryMinutes() int {
	return int(s.cfg.OTPExpiry / time.Minute)
}

// findRole loads the account for email and hides accounts of another role.
func (s *AuthService) findRole(ctx context.Context, email string, role models.Role) (*models.Account, error) {
	account, err := s.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		return nil, repoErr(err, "User not found")
	}
	if account.Role != role {
		return nil, apperr.NotFound("User not found")
	}
	return account, nil
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput, role models.Role) (*models.Account, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	if !helpers.IsPasswordStrong(in.Password) {
		return nil, weakPassword("password")
	}

	email := models.NormalizeEmail(in.Email)
	if _, err := s.accounts.FindAccountByEmail(ctx, email); err == nil {
		return nil, apperr.Validation("An account with this email already exists")
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Internal("Failed to check email", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	firstName, lastName := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	var account *models.Account
	switch role {
	case models.RoleUser:
		account = models.NewUserAccount(firstName, lastName, email, models.UserProfile{
			Gender:       in.Gender,
			PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
			Address:      strings.TrimSpace(in.Address),
			IsRegistered: true,
		})
	case models.RoleAdmin:
		account = models.NewAdminAccount(firstName, lastName, email, models.AdminProfile{
			Gender:      in.Gender,
			PhoneNumber: strings.TrimSpace(in.PhoneNumber),
			Address:     strings.TrimSpace(in.Address),
		})
	default:
		return nil, apperr.Validation("Unsupported account role")
	}
	account.Password = hash

	var otp *models.OTP
	if role == models.RoleUser {
		if otp, err = s.newOTP(); err != nil {
			return nil, err
		}
		account.VerificationOTP = otp
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, apperr.Validation("An account with this email already exists")
		}
		return nil, apperr.Internal("Failed to create account", err)
	}
	s.logger.Info("account created", zap.String("account_id", account.ID.Hex()), zap.String("role", string(role)))

	s.mail.send(account.Email, "welcomeEmail", map[string]any{"name": account.FirstName})
	if otp != nil {
		s.mail.send(account.Email, "accountVerification", map[string]any{
			"name":          account.FirstName,
			"otp":           otp.Code,
			"expiryMinutes": s.expiryMinutes(),
		})
	}
	return account, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput, role models.Role) (*LoginResult, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	account, err := s.accounts.FindAccountByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, apperr.Internal("Failed to load account", err)
	}
	if account.Role != role {
		return nil, invalidCredentials()
	}
	if !helpers.CheckPassword(in.Password, account.Password) {
		return nil, invalidCredentials()
	}
	if !account.IsRegistered() {
		return nil, apperr.Validation("Registration is not complete. Sign in as a companion with your temporary password to finish it")
	}
	if role == models.RoleUser && account.User.TwoFactorEnabled {
		if in.Code == "" {
			return nil, apperr.Validation("Two-factor authentication code is required")
		}
		if !totp.Validate(in.Code, account.User.TwoFactorSecret) {
			return nil, apperr.Validation("Invalid two-factor authentication code")
		}
	}

	token, expiresAt, err := s.tokens.Sign(helpers.CustomClaims{
		UserID: account.ID.Hex(),
		Role:   account.Role,
		Email:  account.Email,
	}, helpers.SessionTTL)
	if err != nil {
		return nil, apperr.Internal("Failed to issue token", err)
	}
	s.logger.Info("login", zap.String("account_id", account.ID.Hex()), zap.String("role", string(role)))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *helpers.CustomClaims) error {
	if claims == nil || claims.ID == "" || s.revoker == nil {
		return nil
	}
	ttl := claims.Remaining()
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.Internal("Failed to revoke session", err)
	}
	return nil
}

// LogoutToken revokes a raw token if it still verifies. Expired or foreign
// tokens are ignored so logout always succeeds for the client.
func (s *AuthService) LogoutToken(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil
	}
	return s.Logout(ctx, claims)
}

func (s *AuthService) VerifyAccount(ctx context.Context, email, code string) (*models.Account, error) {
	account, err := s.findRole(ctx, email, models.RoleUser)
	if err != nil {
		return nil, err
	}
	if account.User.IsVerified {
		return account, nil
	}
	if !account.VerificationOTP.Matches(code, s.now()) {
		return nil, apperr.Validation("Invalid or expired OTP")
	}
	account.User.IsVerified = true
	account.VerificationOTP = nil
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return nil, repoErr(err, "User not found")
	}
	return account, nil
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	account, err := s.findRole(ctx, email, models.RoleUser)
	if err != nil {
		return err
	}
	if account.User.IsVerified {
		return apperr.Validation("Account is already verified")
	}
	otp, err := s.newOTP()
	if err != nil {
		return err
	}
	account.VerificationOTP = otp
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return repoErr(err, "User not found")
	}
	s.mail.send(account.Email, "accountVerification", map[string]any{
		"name":          account.FirstName,
		"otp":           otp.Code,
		"expiryMinutes": s.expiryMinutes(),
	})
	return nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string, role models.Role) error {
	account, err := s.findRole(ctx, email, role)
	if err != nil {
		return err
	}
	if !account.IsRegistered() {
		return apperr.Validation("Registration is not complete. Use your temporary password to finish it")
	}
	otp, err := s.newOTP()
	if err != nil {
		return err
	}
	account.ResetPasswordOTP = otp
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return repoErr(err, "User not found")
	}
	s.mail.send(account.Email, "passwordReset", map[string]any{
		"name":          account.FirstName,
		"otp":           otp.Code,
		"expiryMinutes": s.expiryMinutes(),
	})
	return nil
}

func (s *AuthService) VerifyResetOTP(ctx context.Context, email, code string, role models.Role) error {
	account, err := s.findRole(ctx, email, role)
	if err != nil {
		return err
	}
	if !account.ResetPasswordOTP.Matches(code, s.now()) {
		return apperr.Validation("Invalid or expired OTP")
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput, role models.Role) error {
	if err := helpers.ValidateStruct(in); err != nil {
		return err
	}
	account, err := s.findRole(ctx, in.Email, role)
	if err != nil {
		return err
	}
	if !account.ResetPasswordOTP.Matches(in.OTP, s.now()) {
		return apperr.Validation("Invalid or expired OTP")
	}
	if !helpers.IsPasswordStrong(in.NewPassword) {
		return weakPassword("newPassword")
	}
	if err := s.setPassword(ctx, account, in.NewPassword); err != nil {
		return err
	}
	s.logger.Info("password reset", zap.String("account_id", account.ID.Hex()))
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, accountID primitive.ObjectID, in ChangePasswordInput) error {
	if err := helpers.ValidateStruct(in); err != nil {
		return err
	}
	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return repoErr(err, "User not found")
	}
	if !helpers.CheckPassword(in.CurrentPassword, account.Password) {
		return apperr.Validation("Current password is incorrect")
	}
	if in.CurrentPassword == in.NewPassword {
		return apperr.Validation("New password must be different from the current password")
	}
	if !helpers.IsPasswordStrong(in.NewPassword) {
		return weakPassword("newPassword")
	}
	return s.setPassword(ctx, account, in.NewPassword)
}

// setPassword stores a new permanent password and clears any reset OTP.
// Users who are also companions get the password mirrored onto their
// companion records.
func (s *AuthService) setPassword(ctx context.Context, account *models.Account, password string) error {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return apperr.Internal("Failed to hash password", err)
	}
	account.Password = hash
	account.ResetPasswordOTP = nil
	if account.Role == models.RoleUser {
		account.User.IsRegistered = true
	}
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return repoErr(err, "User not found")
	}
	if account.Role == models.RoleUser {
		err := s.companions.SetCompanionCredentials(ctx, account.Email, models.CompanionCredentials{
			Password:     hash,
			IsRegistered: true,
		})
		if err != nil {
			return apperr.Internal("Failed to update companion credentials", err)
		}
	}
	return nil
}

// EnableTwoFactor generates a TOTP secret. It takes effect once confirmed
// with a valid code.
func (s *AuthService) EnableTwoFactor(ctx context.Context, accountID primitive.ObjectID) (*TwoFactorSetup, error) {
	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, repoErr(err, "User not found")
	}
	if account.Role != models.RoleUser {
		return nil, apperr.Forbidden("Two-factor authentication is available to users only")
	}
	if account.User.TwoFactorEnabled {
		return nil, apperr.Validation("Two-factor authentication is already enabled")
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.cfg.TOTPIssuer,
		AccountName: account.Email,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to generate two-factor secret", err)
	}
	account.User.TwoFactorSecret = key.Secret()
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return nil, repoErr(err, "User not found")
	}
	return &TwoFactorSetup{Secret: key.Secret(), URL: key.URL()}, nil
}

func (s *AuthService) ConfirmTwoFactor(ctx context.Context, accountID primitive.ObjectID, code string) error {
	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return repoErr(err, "User not found")
	}
	if account.Role != models.RoleUser {
		return apperr.Forbidden("Two-factor authentication is available to users only")
	}
	if account.User.TwoFactorSecret == "" {
		return apperr.Validation("Two-factor authentication has not been set up")
	}
	if !totp.Validate(strings.TrimSpace(code), account.User.TwoFactorSecret) {
		return apperr.Validation("Invalid two-factor authentication code")
	}
	account.User.TwoFactorEnabled = true
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return repoErr(err, "User not found")
	}
	return nil
}

// CompanionLogin accepts a companion's temporary password, which yields a
// short-lived token, or the permanent password of their registered account.
func (s *AuthService) CompanionLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	records, err := s.attachedRecords(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, invalidCredentials()
	}

	for _, rec := range records {
		if rec.TempPassword != "" && helpers.CheckPassword(password, rec.TempPassword) {
			return s.companionSession(rec, true)
		}
	}

	account, err := s.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, apperr.Internal("Failed to load account", err)
	}
	if account.IsRegistered() && helpers.CheckPassword(password, account.Password) {
		return s.companionSession(records[0], false)
	}
	return nil, invalidCredentials()
}

// attachedRecords returns the companion records for email that are linked
// to an account, newest first.
func (s *AuthService) attachedRecords(ctx context.Context, email string) ([]*models.Companion, error) {
	all, err := s.companions.FindCompanionsByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("Failed to load companion", err)
	}
	out := make([]*models.Companion, 0, len(all))
	for _, c := range all {
		if !c.AccountID.IsZero() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *AuthService) companionSession(c *models.Companion, temp bool) (*LoginResult, error) {
	ttl := helpers.CompanionSessionTTL
	if temp {
		ttl = helpers.CompanionTempTTL
	}
	token, expiresAt, err := s.tokens.Sign(helpers.CustomClaims{
		UserID:         c.AccountID.Hex(),
		CompanionID:    c.ID.Hex(),
		Role:           models.RoleCompanion,
		Email:          c.Email,
		IsTempPassword: temp,
	}, ttl)
	if err != nil {
		return nil, apperr.Internal("Failed to issue token", err)
	}
	s.logger.Info("companion login", zap.String("companion_id", c.ID.Hex()), zap.Bool("temp_password", temp))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Companion: c, IsTempPassword: temp}, nil
}

// CompleteRegistration turns a companion's temporary credential into a
// registered user account and signs the user in.
func (s *AuthService) CompleteRegistration(ctx context.Context, in CompleteRegistrationInput) (*LoginResult, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	records, err := s.attachedRecords(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	matched := false
	for _, rec := range records {
		if rec.TempPassword != "" && helpers.CheckPassword(in.TempPassword, rec.TempPassword) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, apperr.Validation("Invalid email or temporary password")
	}
	if !helpers.IsPasswordStrong(in.NewPassword) {
		return nil, weakPassword("newPassword")
	}

	account, err := s.findRole(ctx, in.Email, models.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.register(ctx, account, in.NewPassword); err != nil {
		return nil, err
	}
	s.mail.send(account.Email, "welcomeEmail", map[string]any{"name": account.FirstName})

	token, expiresAt, err := s.tokens.Sign(helpers.CustomClaims{
		UserID: account.ID.Hex(),
		Role:   account.Role,
		Email:  account.Email,
	}, helpers.SessionTTL)
	if err != nil {
		return nil, apperr.Internal("Failed to issue token", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// register sets the permanent password, marks the account registered and
// clears the temporary credential on every companion record.
func (s *AuthService) register(ctx context.Context, account *models.Account, password string) error {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return apperr.Internal("Failed to hash password", err)
	}
	account.Password = hash
	account.User.IsRegistered = true
	account.User.IsVerified = true
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return repoErr(err, "User not found")
	}
	err = s.companions.SetCompanionCredentials(ctx, account.Email, models.CompanionCredentials{
		Password:     hash,
		IsRegistered: true,
	})
	if err != nil {
		return apperr.Internal("Failed to update companion credentials", err)
	}
	s.logger.Info("companion registered", zap.String("account_id", account.ID.Hex()))
	return nil
}

func (s *AuthService) CompanionProfile(ctx context.Context, companionID primitive.ObjectID) (*models.Companion, error) {
	c, err := s.companions.FindCompanionByID(ctx, companionID)
	if err != nil {
		return nil, repoErr(err, "Companion not found")
	}
	return c, nil
}

// UpdateCompanionProfile edits the caller's companion record. Setting a
// password completes registration and is only allowed while the account
// is unregistered.
func (s *AuthService) UpdateCompanionProfile(ctx context.Context, claims *helpers.CustomClaims, in CompanionProfileInput) (*models.Companion, error) {
	if err := helpers.ValidateStruct(in); err != nil {
		return nil, err
	}
	cid, err := parseID(claims.CompanionID, "companion")
	if err != nil {
		return nil, err
	}
	c, err := s.companions.FindCompanionByID(ctx, cid)
	if err != nil {
		return nil, repoErr(err, "Companion not found")
	}

	var account *models.Account
	if in.Password != nil {
		if account, err = s.findRole(ctx, c.Email, models.RoleUser); err != nil {
			return nil, err
		}
		if account.IsRegistered() {
			return nil, apperr.Validation("Password is already set; use change-password instead")
		}
		if !helpers.IsPasswordStrong(*in.Password) {
			return nil, weakPassword("password")
		}
	}

	if in.FirstName != nil {
		c.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		c.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.PhoneNumber != nil {
		c.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if err := s.companions.SaveCompanion(ctx, c); err != nil {
		return nil, repoErr(err, "Companion not found")
	}

	if account != nil {
		if err := s.register(ctx, account, *in.Password); err != nil {
			return nil, err
		}
	}
	return s.CompanionProfile(ctx, cid)
}

func (s *AuthService) CompanionChangePassword(ctx context.Context, claims *helpers.CustomClaims, in ChangePasswordInput) error {
	account, err := s.findRole(ctx, claims.Email, models.RoleUser)
	if err != nil {
		return err
	}
	if !account.IsRegistered() {
		return apperr.Validation("Complete registration before changing your password")
	}
	return s.ChangePassword(ctx, account.ID, in)
}
