package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"membership-portal/backend/internal/security"
	userdomain "membership-portal/backend/internal/user/domain"
)

type memUserStore struct {
	mu          sync.Mutex
	byID        map[uuid.UUID]*userdomain.User
	byShortcode map[string]*userdomain.User

	failSetJTI       bool
	failTouch        bool
	shortcodeLookups int
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byID:        make(map[uuid.UUID]*userdomain.User),
		byShortcode: make(map[string]*userdomain.User),
	}
}

func (m *memUserStore) add(u *userdomain.User) {
	m.byID[u.ID] = u
	m.byShortcode[u.Shortcode] = u
}

func (m *memUserStore) GetByShortcode(ctx context.Context, shortcode string) (*userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortcodeLookups++
	return m.byShortcode[shortcode], nil
}

func (m *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}

func (m *memUserStore) SetRefreshJTI(ctx context.Context, userID uuid.UUID, jti *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetJTI {
		return errors.New("write failed")
	}
	if u, ok := m.byID[userID]; ok {
		u.RefreshJTI = jti
	}
	return nil
}

func (m *memUserStore) RotateRefreshJTI(ctx context.Context, userID, oldJTI, newJTI uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok || u.RefreshJTI == nil || *u.RefreshJTI != oldJTI {
		return false, nil
	}
	u.RefreshJTI = &newJTI
	return true, nil
}

func (m *memUserStore) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTouch {
		return errors.New("touch failed")
	}
	if u, ok := m.byID[userID]; ok {
		u.LastLogin = &at
	}
	return nil
}

const testPassword = "correct1horse"

// sleepRecorder replaces the service's sleep so failure delays are captured
// instead of slept.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func newTestService(t *testing.T) (*Service, *memUserStore, *userdomain.User, *sleepRecorder) {
	t.Helper()
	hasher := security.NewHasher(4) // low cost for tests
	hash, err := hasher.Hash([]byte(testPassword))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	store := newMemUserStore()
	user := &userdomain.User{
		ID:           uuid.New(),
		FirstName:    "Alice",
		Surname:      "Smith",
		Shortcode:    "alice",
		CID:          "01234567",
		PasswordHash: hash,
		Admin:        true,
		Tier:         userdomain.TierTeam,
	}
	store.add(user)

	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	svc := NewService(store, hasher, tokens, nil, nil)

	rec := &sleepRecorder{}
	svc.sleep = rec.sleep
	return svc, store, user, rec
}

func TestLogin_Success(t *testing.T) {
	svc, _, user, _ := newTestService(t)

	pair, err := svc.Login(context.Background(), "alice", testPassword, false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("access token empty")
	}
	if pair.RefreshToken != "" {
		t.Fatal("refresh token issued without keep_login")
	}

	claims, err := svc.tokens.ValidateAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Subject != "alice" || claims.UserID != user.ID {
		t.Errorf("claims identity: sub=%q user_id=%v", claims.Subject, claims.UserID)
	}
	if claims.Tier != userdomain.TierTeam || !claims.Admin {
		t.Errorf("claims role: tier=%d admin=%v", claims.Tier, claims.Admin)
	}
	if user.LastLogin == nil {
		t.Error("last_login not updated on success")
	}
}

func TestLogin_WrongPasswordAndUnknownUserAreIdentical(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, errWrong := svc.Login(context.Background(), "alice", "wrong0pass", false)
	_, errUnknown := svc.Login(context.Background(), "nobody", testPassword, false)

	if !errors.Is(errWrong, ErrWrongCredentials) {
		t.Errorf("wrong password: want ErrWrongCredentials, got %v", errWrong)
	}
	if !errors.Is(errUnknown, ErrWrongCredentials) {
		t.Errorf("unknown user: want ErrWrongCredentials, got %v", errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Error("wrong-password and unknown-user failures must be indistinguishable")
	}
}

func TestLogin_FailureDelayWithinRange(t *testing.T) {
	svc, _, _, rec := newTestService(t)

	_, _ = svc.Login(context.Background(), "alice", "wrong0pass", false)
	_, _ = svc.Login(context.Background(), "nobody", "whatever1", false)

	delays := rec.recorded()
	if len(delays) != 2 {
		t.Fatalf("expected 2 delayed failures, got %d", len(delays))
	}
	for _, d := range delays {
		if d < failDelayMin || d >= failDelayMax {
			t.Errorf("delay %v outside [%v, %v)", d, failDelayMin, failDelayMax)
		}
	}
}

func TestLogin_MissingCredentialsFailsFast(t *testing.T) {
	svc, store, _, rec := newTestService(t)

	for _, tc := range [][2]string{{"", "pass1234"}, {"alice", ""}, {"", ""}} {
		if _, err := svc.Login(context.Background(), tc[0], tc[1], false); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("Login(%q, %q): want ErrMissingCredentials, got %v", tc[0], tc[1], err)
		}
	}
	if store.shortcodeLookups != 0 {
		t.Error("missing credentials must not hit the store")
	}
	if len(rec.recorded()) != 0 {
		t.Error("missing credentials must not be delayed")
	}
}

func TestLogin_KeepLoginIssuesAndPersistsRefresh(t *testing.T) {
	svc, _, user, _ := newTestService(t)

	pair, err := svc.Login(context.Background(), "alice", testPassword, true)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.RefreshToken == "" {
		t.Fatal("refresh token missing with keep_login")
	}
	claims, err := svc.tokens.ValidateRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if user.RefreshJTI == nil || claims.ID != user.RefreshJTI.String() {
		t.Error("issued jti not persisted as the user's current refresh id")
	}
}

func TestLogin_NewLongSessionInvalidatesOldRefreshToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, "alice", testPassword, true)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", testPassword, true); err != nil {
		t.Fatalf("second login: %v", err)
	}
	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("old refresh token after new login: want ErrInvalidToken, got %v", err)
	}
}

func TestLogin_RefreshPersistFailureFailsWholeCall(t *testing.T) {
	svc, store, user, _ := newTestService(t)
	store.failSetJTI = true

	pair, err := svc.Login(context.Background(), "alice", testPassword, true)
	if !errors.Is(err, ErrTokenCreation) {
		t.Fatalf("want ErrTokenCreation, got %v", err)
	}
	if pair != nil {
		t.Error("no tokens may be returned when the refresh id cannot be persisted")
	}
	if user.RefreshJTI != nil {
		t.Error("refresh id must not be set after a failed write")
	}
}

func TestLogin_LastLoginFailureDoesNotFailLogin(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.failTouch = true

	if _, err := svc.Login(context.Background(), "alice", testPassword, false); err != nil {
		t.Fatalf("Login should succeed despite last_login failure, got %v", err)
	}
}

func TestRefresh_RotatesAndInvalidatesOldToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice", testPassword, true)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	rotated, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Fatal("rotation must return a full access+refresh pair")
	}
	if rotated.RefreshToken == login.RefreshToken {
		t.Fatal("rotation returned the presented token")
	}

	// Re-presenting the consumed token always fails, even though the new one
	// was never used.
	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("replayed token: want ErrInvalidToken, got %v", err)
	}

	// The replacement still works.
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Errorf("rotating the replacement: %v", err)
	}
}

func TestRefresh_DoesNotInvalidateAccessToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice", testPassword, true)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := svc.tokens.ValidateAccess(login.AccessToken); err != nil {
		t.Errorf("access token invalidated by rotation: %v", err)
	}
}

func TestRefresh_RederivesRoleFromStore(t *testing.T) {
	svc, _, user, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice", testPassword, true)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Demote between login and rotation; the new access token must carry the
	// current role, not the one captured at login.
	user.Tier = userdomain.TierGuest
	user.Admin = false

	rotated, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	claims, err := svc.tokens.ValidateAccess(rotated.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Tier != userdomain.TierGuest || claims.Admin {
		t.Errorf("rotated claims kept stale role: tier=%d admin=%v", claims.Tier, claims.Admin)
	}
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("want ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("empty token: want ErrMissingCredentials, got %v", err)
	}
}

func TestRefresh_UnknownUserIsOperationalFailure(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	ghost := uuid.New()
	token, _, err := svc.tokens.IssueRefresh("ghost", ghost, uuid.New())
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), token); !errors.Is(err, ErrTokenCreation) {
		t.Errorf("want ErrTokenCreation, got %v", err)
	}
}

func TestRefresh_ConcurrentRotationsExactlyOneWins(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice", testPassword, true)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	start := make(chan struct{})
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, results[i] = svc.Refresh(ctx, login.RefreshToken)
		}()
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidToken):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("exactly one concurrent rotation must succeed, got %d", wins)
	}
}

func TestLogout_ClearsRefreshState(t *testing.T) {
	svc, _, user, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice", testPassword, true)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(ctx, login.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if user.RefreshJTI != nil {
		t.Error("logout must clear the stored refresh id")
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh after logout: want ErrInvalidToken, got %v", err)
	}
}

func TestLogout_InvalidTokenIsNoOp(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if err := svc.Logout(context.Background(), "garbage"); err != nil {
		t.Errorf("Logout with invalid token should be a no-op, got %v", err)
	}
}
