package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DhavalSuthar-24/clubhub/internal/apperr"
	"github.com/DhavalSuthar-24/clubhub/internal/mail"
	"github.com/DhavalSuthar-24/clubhub/pkg/token"
	"github.com/DhavalSuthar-24/clubhub/utils"
)

// Provider is the identity provider contract the session layer consumes.
type Provider interface {
	Register(ctx context.Context, clientID, email, password string) (*Session, error)
	SignIn(ctx context.Context, clientID, email, password string) (*Session, error)
	SignOut(ctx context.Context, clientID string) error
	// Refresh re-announces the client's current identity so subscribers
	// resolve its role again.
	Refresh(ctx context.Context, clientID string) error
	// Subscribe streams identity changes for one client instance. The first
	// event replays the client's current identity. The channel is closed when
	// ctx is cancelled or the provider shuts down.
	Subscribe(ctx context.Context, clientID string) (<-chan Event, error)
	// RequestPasswordReset emails a reset link. Unknown emails are not an
	// error.
	RequestPasswordReset(ctx context.Context, email string) error
	// ResetPassword sets a new password and signs the account out of every
	// client that holds it.
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

var (
	ErrEmailTaken         = apperr.Precondition("an account with this email already exists")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid email or password")
	ErrInvalidResetToken  = apperr.Precondition("password reset link is invalid or has expired")
	ErrProviderClosed     = errors.New("auth: provider closed")
)

const defaultResetExpiryMinutes = 30

// subscriberBuffer bounds undelivered events per subscriber. When it is full
// the oldest event is dropped: only the latest identity matters.
const subscriberBuffer = 16

type subscriber struct {
	ch chan Event
}

// Service implements Provider over an AccountRepository, issuing signed
// access tokens and tracking which identity each client instance holds.
type Service struct {
	accounts      AccountRepository
	secret        string
	expiryMinutes int
	passwordCost  int
	now           func() time.Time
	newID         func() string
	log           *slog.Logger
	mailer        mail.Sender
	resetURL      string
	resetExpiry   int

	mu      sync.Mutex
	current map[string]*Identity
	subs    map[string]map[*subscriber]struct{}
	closed  bool
	done    chan struct{}
}

type Option func(*Service)

// WithPasswordCost overrides the bcrypt cost used for new accounts.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithPasswordReset configures reset email delivery. The token is appended to
// resetURL as the "token" query parameter.
func WithPasswordReset(sender mail.Sender, resetURL string, expiryMinutes int) Option {
	return func(s *Service) {
		s.mailer = sender
		s.resetURL = resetURL
		if expiryMinutes > 0 {
			s.resetExpiry = expiryMinutes
		}
	}
}

func NewService(accounts AccountRepository, secret string, expiryMinutes int, opts ...Option) *Service {
	s := &Service{
		accounts:      accounts,
		secret:        secret,
		expiryMinutes: expiryMinutes,
		passwordCost:  utils.PasswordCost,
		now:           time.Now,
		newID:         uuid.NewString,
		log:           slog.Default(),
		resetExpiry:   defaultResetExpiryMinutes,
		current:       make(map[string]*Identity),
		subs:          make(map[string]map[*subscriber]struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mailer == nil {
		s.mailer = mail.LogSender{Log: s.log}
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, clientID, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	existing, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPasswordWithCost(password, s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	account := &Account{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("account creation failed: %w", err)
	}
	s.log.Info("account_registered", "identity_id", account.ID)

	return s.startSession(clientID, Identity{ID: account.ID, Email: account.Email})
}

func (s *Service) SignIn(ctx context.Context, clientID, email, password string) (*Session, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil || !utils.CheckPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(clientID, Identity{ID: account.ID, Email: account.Email})
}

func (s *Service) SignOut(_ context.Context, clientID string) error {
	if clientID == "" {
		return apperr.Precondition("client id is required to sign out")
	}
	s.publish(clientID, nil)
	s.log.Info("signed_out", "client_id", clientID)
	return nil
}

func (s *Service) Refresh(_ context.Context, clientID string) error {
	s.mu.Lock()
	ident := s.current[clientID]
	s.mu.Unlock()
	if ident == nil {
		return nil
	}
	s.publish(clientID, ident)
	return nil
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		s.log.Info("password_reset_unknown_email")
		return nil
	}

	resetToken, expiresAt, err := token.GenerateResetToken(account.ID, passwordFingerprint(account.PasswordHash), s.secret, s.resetExpiry)
	if err != nil {
		return fmt.Errorf("reset token generation failed: %w", err)
	}
	link := resetLink(s.resetURL, resetToken)
	msg := mail.Message{
		To:      []string{account.Email},
		Subject: "Reset your ClubHub password",
		HTML: fmt.Sprintf(
			`<p>A password reset was requested for %s.</p><p><a href="%s">Choose a new password</a>. The link expires at %s.</p><p>If you did not ask for this, ignore this email.</p>`,
			html.EscapeString(account.Email), html.EscapeString(link), expiresAt.UTC().Format(time.RFC1123),
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("password reset email failed: %w", err)
	}
	s.log.Info("password_reset_requested", "identity_id", account.ID)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := token.ValidateResetToken(resetToken, s.secret)
	if err != nil {
		return ErrInvalidResetToken
	}
	account, err := s.accounts.GetAccountByID(ctx, claims.AccountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	// A used token no longer matches once the hash has changed.
	if account == nil || passwordFingerprint(account.PasswordHash) != claims.Fingerprint {
		return ErrInvalidResetToken
	}

	hash, err := utils.HashPasswordWithCost(newPassword, s.passwordCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.accounts.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return fmt.Errorf("password update failed: %w", err)
	}
	signedOut := s.signOutIdentity(account.ID)
	s.log.Info("password_reset", "identity_id", account.ID, "clients_signed_out", signedOut)
	return nil
}

func (s *Service) signOutIdentity(identityID string) int {
	s.mu.Lock()
	var clients []string
	for clientID, ident := range s.current {
		if ident.ID == identityID {
			clients = append(clients, clientID)
		}
	}
	s.mu.Unlock()
	for _, clientID := range clients {
		s.publish(clientID, nil)
	}
	return len(clients)
}

func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

func resetLink(base, resetToken string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return resetToken
	}
	q := u.Query()
	q.Set("token", resetToken)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Service) startSession(clientID string, ident Identity) (*Session, error) {
	if clientID == "" {
		clientID = s.newID()
	}
	accessToken, expiresAt, err := token.GenerateJWT(ident.ID, ident.Email, clientID, s.secret, s.expiryMinutes)
	if err != nil {
		return nil, fmt.Errorf("access token generation failed: %w", err)
	}
	s.publish(clientID, &ident)
	s.log.Info("signed_in", "identity_id", ident.ID, "client_id", clientID)
	return &Session{
		ClientID:    clientID,
		Identity:    ident,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

// CurrentIdentity returns the identity signed in on clientID, or nil.
func (s *Service) CurrentIdentity(clientID string) *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ident := s.current[clientID]; ident != nil {
		cp := *ident
		return &cp
	}
	return nil
}

func (s *Service) Subscribe(ctx context.Context, clientID string) (<-chan Event, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrProviderClosed
	}
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if s.subs[clientID] == nil {
		s.subs[clientID] = make(map[*subscriber]struct{})
	}
	s.subs[clientID][sub] = struct{}{}
	sub.ch <- s.eventLocked(clientID)
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		s.removeSubscriber(clientID, sub)
	}()
	return sub.ch, nil
}

// Close shuts the provider down and closes every subscription.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	for clientID, subs := range s.subs {
		for sub := range subs {
			close(sub.ch)
		}
		delete(s.subs, clientID)
	}
}

func (s *Service) removeSubscriber(clientID string, sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, ok := s.subs[clientID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(s.subs, clientID)
	}
	close(sub.ch)
}

func (s *Service) publish(clientID string, ident *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ident == nil {
		delete(s.current, clientID)
	} else {
		cp := *ident
		s.current[clientID] = &cp
	}
	ev := s.eventLocked(clientID)
	for sub := range s.subs[clientID] {
		deliver(sub, ev)
	}
}

func (s *Service) eventLocked(clientID string) Event {
	ev := Event{ClientID: clientID, At: s.now()}
	if ident := s.current[clientID]; ident != nil {
		cp := *ident
		ev.Identity = &cp
	}
	return ev
}

// deliver never blocks; callers hold s.mu, so no other sender races it.
func deliver(sub *subscriber, ev Event) {
	select {
	case sub.ch <- ev:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- ev:
	default:
	}
}
