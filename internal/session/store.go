package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mockhub/mockhub-console/internal/authn"
	"github.com/mockhub/mockhub-console/internal/client"
	"github.com/mockhub/mockhub-console/internal/storage"
	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
)

var (
	ErrBusy               = errors.New("another login is already in progress")
	ErrSessionReset       = errors.New("session was reset while the request was in flight")
	ErrSessionInvalidated = errors.New("session is no longer valid")
	ErrNotBound           = errors.New("session store has no client")
)

const (
	msgRegisterFailed = "Registration failed"
	msgLoginFailed    = "Invalid email or password"
)

const (
	pathRegister = "/auth/register"
	pathLogin    = "/auth/jwt/login"
	pathLogout   = "/auth/jwt/logout"
)

// Requester sends requests to the backend.
type Requester interface {
	Do(ctx context.Context, method, path string, body any, opts ...client.RequestOption) (*client.Response, error)
}

// Navigator moves the application to another route.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Config names the routes and backend paths the store uses.
type Config struct {
	LoginRoute string
	HomeRoute  string
	UserPath   string
}

// Store owns the current token and user profile. All methods are safe
// for concurrent use. Observers must not call mutating methods from
// inside their callback.
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	token    string
	user     *models.User
	errMsg   string
	inflight int

	// epoch moves on every logout and invalidation. Work started under an
	// older epoch is discarded when it completes.
	epoch     uint64
	busy      bool
	busyEpoch uint64

	observers map[int]func(State)
	nextID    int

	cfg     Config
	storage storage.Storage
	api     Requester
	nav     Navigator
	log     *zerolog.Logger
	now     func() time.Time
}

// NewStore restores the session persisted in st. An expired token is
// discarded together with its profile.
func NewStore(ctx context.Context, st storage.Storage, cfg Config, log *zerolog.Logger) (*Store, error) {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	s := &Store{
		cfg:       cfg,
		storage:   st,
		observers: make(map[int]func(State)),
		log:       log,
		now:       time.Now,
	}
	if err := s.restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Bind attaches the client and navigator. It is called once during setup.
func (s *Store) Bind(api Requester, nav Navigator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = api
	s.nav = nav
}

func (s *Store) restore(ctx context.Context) error {
	token, ok, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("failed to read persisted token: %w", err)
	}

	if ok && authn.Expired(token, s.now()) {
		s.log.Info().Msg("Persisted token has expired, discarding session")
		ok = false
	}
	if !ok || token == "" {
		if err := s.storage.Remove(ctx, storage.KeyAccessToken, storage.KeyUser); err != nil {
			return fmt.Errorf("failed to clear persisted session: %w", err)
		}
		return nil
	}
	s.token = token

	raw, ok, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read persisted user: %w", err)
	}
	if !ok {
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Warn().Err(err).Msg("Persisted user is unreadable, dropping it")
		return s.storage.Remove(ctx, storage.KeyUser)
	}
	s.user = &user
	return nil
}

// State returns a snapshot of the session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Token returns the bearer token, or an empty string.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser returns a copy of the profile, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

// IsAuthenticated reports whether a token is held and has not expired.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && !authn.Expired(s.token, s.now())
}

// Subscribe registers fn to receive a snapshot after every mutation, in
// mutation order. The returned function removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// ClearError drops the last error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.unlockAndPublish()
}

// Login exchanges credentials for a token, persists it and navigates to
// the home route. On failure the error message is set and err returned.
func (s *Store) Login(ctx context.Context, email, password string) error {
	epoch, err := s.begin()
	if err != nil {
		return err
	}

	token, err := s.requestToken(ctx, email, password)
	if err != nil {
		s.fail(epoch, client.DetailMessage(err, msgLoginFailed))
		return err
	}

	return s.complete(ctx, epoch, token)
}

// Register creates an account and then logs in with the same credentials.
func (s *Store) Register(ctx context.Context, in RegisterInput) error {
	epoch, err := s.begin()
	if err != nil {
		return err
	}

	username := in.Name
	if username == "" {
		username, _, _ = strings.Cut(in.Email, "@")
	}
	body := models.RegisterRequest{
		Username: username,
		Email:    in.Email,
		Password: in.Password,
		IsActive: true,
	}

	if _, err := s.api.Do(ctx, http.MethodPost, pathRegister, body); err != nil {
		s.fail(epoch, client.DetailMessage(err, msgRegisterFailed))
		return err
	}
	s.log.Info().Str("email", in.Email).Msg("Account registered")

	token, err := s.requestToken(ctx, in.Email, in.Password)
	if err != nil {
		s.fail(epoch, client.DetailMessage(err, msgLoginFailed))
		return err
	}

	return s.complete(ctx, epoch, token)
}

// Logout clears the session locally, navigates to the login route and
// then tells the backend. It never fails, even with a cancelled ctx.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.logoutLocked(ctx)
}

// logoutLocked is Logout with s.mu already held. It releases s.mu.
func (s *Store) logoutLocked(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	old := s.token
	s.resetLocked(ctx)
	s.errMsg = ""
	api := s.api
	notify := old != "" && api != nil
	if notify {
		s.inflight++
	}
	s.unlockAndPublish()

	s.navigate(ctx, s.cfg.LoginRoute)

	if !notify {
		return
	}

	_, err := api.Do(ctx, http.MethodPost, pathLogout, nil, client.WithBearer(old), client.WithoutAuthInterceptor())
	if err != nil {
		s.log.Debug().Err(err).Msg("Logout notification failed")
	}

	s.mu.Lock()
	s.inflight--
	s.unlockAndPublish()
}

// Invalidate clears the session without contacting the backend. The
// client calls it when a request is rejected with 401.
func (s *Store) Invalidate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	s.resetLocked(ctx)
	s.unlockAndPublish()
}

// FetchUser loads and persists the profile of the current user. Any
// failure logs the session out and returns ErrSessionInvalidated.
func (s *Store) FetchUser(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	epoch, token, api := s.epoch, s.token, s.api
	s.mu.Unlock()

	if api == nil {
		return nil, ErrNotBound
	}
	if token == "" {
		return nil, ErrSessionInvalidated
	}

	var user models.User
	resp, err := api.Do(ctx, http.MethodGet, s.cfg.UserPath, nil)
	if err == nil {
		err = resp.Decode(&user)
	}
	if err != nil {
		s.mu.Lock()
		if epoch != s.epoch {
			// The session changed while the profile was in flight.
			newer := s.token != ""
			s.mu.Unlock()
			if newer {
				return nil, fmt.Errorf("%w: %w", ErrSessionReset, err)
			}
			return nil, fmt.Errorf("%w: %w", ErrSessionInvalidated, err)
		}
		s.log.Warn().Err(err).Msg("Failed to fetch user profile, logging out")
		s.logoutLocked(ctx)
		return nil, fmt.Errorf("%w: %w", ErrSessionInvalidated, err)
	}

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return nil, ErrSessionReset
	}
	s.user = &user
	s.persistUserLocked(ctx)
	s.unlockAndPublish()

	return copyUser(&user), nil
}

// begin marks a login or registration as in flight.
func (s *Store) begin() (uint64, error) {
	s.mu.Lock()
	if s.api == nil {
		s.mu.Unlock()
		return 0, ErrNotBound
	}
	if s.busy {
		s.mu.Unlock()
		return 0, ErrBusy
	}
	s.busy = true
	s.busyEpoch = s.epoch
	s.inflight++
	s.errMsg = ""
	epoch := s.epoch
	s.unlockAndPublish()
	return epoch, nil
}

func (s *Store) requestToken(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	resp, err := s.api.Do(ctx, http.MethodPost, pathLogin, form)
	if err != nil {
		return "", err
	}

	var tr models.TokenResponse
	if err := resp.Decode(&tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", errors.New("login response carried no access token")
	}
	return tr.AccessToken, nil
}

// fail ends an operation with a user-facing error message.
func (s *Store) fail(epoch uint64, msg string) {
	s.mu.Lock()
	s.busy = false
	s.inflight--
	s.errMsg = msg
	s.unlockAndPublish()
	s.log.Debug().Uint64("epoch", epoch).Str("error", msg).Msg("Authentication failed")
}

// complete stores token unless the session was reset meanwhile, then
// navigates home.
func (s *Store) complete(ctx context.Context, epoch uint64, token string) error {
	s.mu.Lock()
	s.busy = false
	s.inflight--
	if epoch != s.epoch {
		s.unlockAndPublish()
		s.log.Info().Msg("Session was reset during login, discarding token")
		return ErrSessionReset
	}

	s.token = token
	s.user = nil
	s.errMsg = ""
	if err := s.storage.Set(ctx, storage.KeyAccessToken, token); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist token")
	}
	if err := s.storage.Remove(ctx, storage.KeyUser); err != nil {
		s.log.Error().Err(err).Msg("Failed to clear persisted user")
	}
	s.unlockAndPublish()

	s.navigate(ctx, s.cfg.HomeRoute)
	return nil
}

// resetLocked clears token, user and storage and moves the epoch.
func (s *Store) resetLocked(ctx context.Context) {
	s.epoch++
	s.token = ""
	s.user = nil
	if err := s.storage.Remove(ctx, storage.KeyAccessToken, storage.KeyUser); err != nil {
		s.log.Error().Err(err).Msg("Failed to clear persisted session")
	}
}

func (s *Store) persistUserLocked(ctx context.Context) {
	data, err := json.Marshal(s.user)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode user")
		return
	}
	if err := s.storage.Set(ctx, storage.KeyUser, string(data)); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist user")
	}
}

func (s *Store) navigate(ctx context.Context, path string) {
	s.mu.Lock()
	nav := s.nav
	s.mu.Unlock()

	if nav == nil || path == "" {
		return
	}
	if err := nav.Navigate(ctx, path); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Navigation failed")
	}
}

func (s *Store) snapshot() State {
	st := State{
		Token:   s.token,
		User:    copyUser(s.user),
		Loading: s.inflight > 0,
		Error:   s.errMsg,
	}
	switch {
	case s.token != "" && !authn.Expired(s.token, s.now()):
		st.Status = Authenticated
	case s.busy && s.busyEpoch == s.epoch:
		st.Status = Authenticating
	default:
		st.Status = Anonymous
	}
	return st
}

// unlockAndPublish releases s.mu and delivers the snapshot taken under it.
// notifyMu is acquired before s.mu is released so deliveries keep
// mutation order.
func (s *Store) unlockAndPublish() {
	st := s.snapshot()
	observers := make([]func(State), 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.observers[id]; ok {
			observers = append(observers, fn)
		}
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range observers {
		fn(st)
	}
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
