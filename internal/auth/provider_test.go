package auth_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/DhavalSuthar-24/clubhub/internal/auth"
	"github.com/DhavalSuthar-24/clubhub/internal/mail"
	"github.com/DhavalSuthar-24/clubhub/internal/store"
	"github.com/DhavalSuthar-24/clubhub/internal/store/memory"
	"github.com/DhavalSuthar-24/clubhub/pkg/token"
)

const secret = "provider-test-secret"

func newService(t *testing.T) (*memory.Store, *auth.Service) {
	t.Helper()
	s := memory.New()
	svc := auth.NewService(s, secret, 15, auth.WithPasswordCost(bcrypt.MinCost))
	t.Cleanup(svc.Close)
	return s, svc
}

func next(t *testing.T, ch <-chan auth.Event) auth.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no identity event")
		return auth.Event{}
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	_, svc := newService(t)

	sess, err := svc.Register(context.Background(), "phone", "  Kim@Club.Test ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "phone", sess.ClientID)
	assert.Equal(t, "kim@club.test", sess.Identity.Email)
	assert.NotEmpty(t, sess.Identity.ID)

	claims, err := token.ValidateJWT(sess.AccessToken, secret)
	require.NoError(t, err)
	assert.Equal(t, sess.Identity.ID, claims.UserID)
	assert.Equal(t, "phone", claims.ClientID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), sess.ExpiresAt, time.Minute)

	_, err = svc.Register(context.Background(), "tablet", "kim@club.test", "other12")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestSignIn(t *testing.T) {
	_, svc := newService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "", "kim@club.test", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ClientID, "a client id is issued when none is given")

	sess, err := svc.SignIn(ctx, "laptop", "KIM@club.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.Identity.ID, sess.Identity.ID)
	assert.Equal(t, reg.Identity.ID, svc.CurrentIdentity("laptop").ID)

	_, err = svc.SignIn(ctx, "laptop", "kim@club.test", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "laptop", "nobody@club.test", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestSignInStoreFailure(t *testing.T) {
	s, svc := newService(t)
	s.FailAlways("GetAccountByEmail", store.ErrUnavailable)

	_, err := svc.SignIn(context.Background(), "c", "kim@club.test", "secret1")
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestSubscribeReplaysAndFollows(t *testing.T) {
	_, svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := svc.Subscribe(ctx, "phone")
	require.NoError(t, err)
	assert.Nil(t, next(t, events).Identity, "signed out initially")

	sess, err := svc.Register(context.Background(), "phone", "kim@club.test", "secret1")
	require.NoError(t, err)
	ev := next(t, events)
	require.NotNil(t, ev.Identity)
	assert.Equal(t, sess.Identity.ID, ev.Identity.ID)

	// Other client instances are independent.
	_, err = svc.SignIn(context.Background(), "tablet", "kim@club.test", "secret1")
	require.NoError(t, err)

	late, err := svc.Subscribe(ctx, "phone")
	require.NoError(t, err)
	assert.Equal(t, sess.Identity.ID, next(t, late).Identity.ID)

	require.NoError(t, svc.SignOut(context.Background(), "phone"))
	assert.Nil(t, next(t, events).Identity)
	assert.Nil(t, svc.CurrentIdentity("phone"))
	assert.NotNil(t, svc.CurrentIdentity("tablet"))

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestRefreshRepublishesIdentity(t *testing.T) {
	_, svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, svc.Refresh(ctx, "phone"), "nothing to refresh when signed out")

	sess, err := svc.Register(ctx, "phone", "kim@club.test", "secret1")
	require.NoError(t, err)
	events, err := svc.Subscribe(ctx, "phone")
	require.NoError(t, err)
	next(t, events)

	require.NoError(t, svc.Refresh(ctx, "phone"))
	ev := next(t, events)
	require.NotNil(t, ev.Identity)
	assert.Equal(t, sess.Identity.ID, ev.Identity.ID)
}

func TestSignOutRequiresClient(t *testing.T) {
	_, svc := newService(t)
	assert.Error(t, svc.SignOut(context.Background(), ""))
}

func TestCloseEndsSubscriptions(t *testing.T) {
	s := memory.New()
	svc := auth.NewService(s, secret, 15, auth.WithPasswordCost(bcrypt.MinCost))

	events, err := svc.Subscribe(context.Background(), "phone")
	require.NoError(t, err)
	next(t, events)

	svc.Close()
	_, ok := <-events
	assert.False(t, ok)

	_, err = svc.Subscribe(context.Background(), "phone")
	assert.ErrorIs(t, err, auth.ErrProviderClosed)
	svc.Close()
}

// outbox records mail instead of sending it.
type outbox struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) sent() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mail.Message(nil), o.msgs...)
}

var resetTokenPattern = regexp.MustCompile(`token=([A-Za-z0-9_\-.]+)`)

func (o *outbox) lastToken(t *testing.T) string {
	t.Helper()
	msgs := o.sent()
	require.NotEmpty(t, msgs, "no mail sent")
	m := resetTokenPattern.FindStringSubmatch(msgs[len(msgs)-1].HTML)
	require.Len(t, m, 2, "no reset link in %q", msgs[len(msgs)-1].HTML)
	return m[1]
}

func newResetService(t *testing.T) (*memory.Store, *auth.Service, *outbox) {
	t.Helper()
	s := memory.New()
	box := &outbox{}
	svc := auth.NewService(s, secret, 15,
		auth.WithPasswordCost(bcrypt.MinCost),
		auth.WithPasswordReset(box, "https://club.test/reset-password?lang=en", 30),
	)
	t.Cleanup(svc.Close)
	return s, svc, box
}

func TestPasswordReset(t *testing.T) {
	_, svc, box := newResetService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "phone", "kim@club.test", "secret1")
	require.NoError(t, err)
	_, err = svc.SignIn(ctx, "laptop", "kim@club.test", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, " KIM@club.test"))
	msgs := box.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"kim@club.test"}, msgs[0].To)
	assert.Contains(t, msgs[0].HTML, "https://club.test/reset-password?lang=en&amp;token=")
	resetToken := box.lastToken(t)

	require.NoError(t, svc.ResetPassword(ctx, resetToken, "fresh12"))
	assert.Nil(t, svc.CurrentIdentity("phone"), "every client holding the account is signed out")
	assert.Nil(t, svc.CurrentIdentity("laptop"))

	_, err = svc.SignIn(ctx, "phone", "kim@club.test", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "phone", "kim@club.test", "fresh12")
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, resetToken, "again12")
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken, "a used link cannot be replayed")
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	_, svc, box := newResetService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@club.test"))
	assert.Empty(t, box.sent())
}

func TestPasswordResetMailFailure(t *testing.T) {
	_, svc, box := newResetService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "phone", "kim@club.test", "secret1")
	require.NoError(t, err)

	box.err = errors.New("smtp down")
	err = svc.RequestPasswordReset(ctx, "kim@club.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestResetPasswordRejectsForeignTokens(t *testing.T) {
	_, svc, _ := newResetService(t)
	ctx := context.Background()
	sess, err := svc.Register(ctx, "phone", "kim@club.test", "secret1")
	require.NoError(t, err)

	forged, _, err := token.GenerateResetToken(sess.Identity.ID, "whatever", "another-secret", 30)
	require.NoError(t, err)
	stale, _, err := token.GenerateResetToken(sess.Identity.ID, "0000000000000000", secret, 30)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":      "not-a-token",
		"access token": sess.AccessToken,
		"other secret": forged,
		"stale hash":   stale,
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, svc.ResetPassword(ctx, tok, "fresh12"), auth.ErrInvalidResetToken)
		})
	}
	_, err = svc.SignIn(ctx, "phone", "kim@club.test", "secret1")
	assert.NoError(t, err, "the password is unchanged")
}
