package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sariqm/brandmate/internal/models"
	"github.com/sariqm/brandmate/internal/utils"
)

type memLookup struct {
	entries     map[string]*models.User
	sets        int
	invalidated []string
}

func newMemLookup() *memLookup {
	return &memLookup{entries: map[string]*models.User{}}
}

func (l *memLookup) Get(_ context.Context, email string) (*models.User, bool, error) {
	u, ok := l.entries[email]
	return u, ok, nil
}

func (l *memLookup) Set(_ context.Context, u *models.User) error {
	l.sets++
	l.entries[u.UserEmail] = u
	return nil
}

func (l *memLookup) Invalidate(_ context.Context, email string) error {
	l.invalidated = append(l.invalidated, email)
	delete(l.entries, email)
	return nil
}

const testSecret = "test-secret"

func newTestUserService(repo *memUserRepo, lookup *memLookup) UserService {
	// a typed-nil *memLookup must not reach the interface field
	if lookup == nil {
		return NewUserService(repo, nil, []byte(testSecret))
	}
	return NewUserService(repo, lookup, []byte(testSecret))
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestUserService(repo, nil)

	u, err := svc.Register(context.Background(), "ana", "ana@example.com", "s3cret")
	require.NoError(t, err)
	require.NotZero(t, u.UserID)
	require.NotEqual(t, "s3cret", u.Password)
	require.NoError(t, utils.CheckPassword(u.Password, "s3cret"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestUserService(repo, nil)

	_, err := svc.Register(context.Background(), "ana", "ana@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ana again", "ana@example.com", "other")
	require.True(t, utils.IsCode(err, utils.CodeConflict))
}

func TestRegisterMissingFields(t *testing.T) {
	svc := newTestUserService(newMemUserRepo(), nil)

	for _, args := range [][3]string{
		{"", "a@b.c", "pw"},
		{"ana", "", "pw"},
		{"ana", "a@b.c", ""},
	} {
		_, err := svc.Register(context.Background(), args[0], args[1], args[2])
		require.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	}
}

func TestLoginRoundTrip(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestUserService(repo, nil)

	_, err := svc.Register(context.Background(), "ana", "ana@example.com", "s3cret")
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "ana@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	u, err := svc.GetByToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", u.UserEmail)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestUserService(repo, nil)

	_, err := svc.Register(context.Background(), "ana", "ana@example.com", "s3cret")
	require.NoError(t, err)

	// wrong password and unknown email both come back as the same code
	_, err = svc.Login(context.Background(), "ana@example.com", "wrong")
	require.True(t, utils.IsCode(err, utils.CodeUnauthorized))

	_, err = svc.Login(context.Background(), "nobody@example.com", "s3cret")
	require.True(t, utils.IsCode(err, utils.CodeUnauthorized))
}

func TestGetByTokenRejectsGarbage(t *testing.T) {
	svc := newTestUserService(newMemUserRepo(), nil)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.GetByToken(context.Background(), tok)
		require.True(t, utils.IsCode(err, utils.CodeUnauthorized), "token %q", tok)
	}
}

func TestGetByTokenRejectsForeignSignature(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestUserService(repo, nil)
	other := NewUserService(repo, nil, []byte("another-secret"))

	_, err := svc.Register(context.Background(), "ana", "ana@example.com", "s3cret")
	require.NoError(t, err)

	token, err := other.Login(context.Background(), "ana@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.GetByToken(context.Background(), token)
	require.True(t, utils.IsCode(err, utils.CodeUnauthorized))
}

func TestGetByTokenPopulatesAndUsesCache(t *testing.T) {
	repo := newMemUserRepo()
	lookup := newMemLookup()
	svc := newTestUserService(repo, lookup)

	_, err := svc.Register(context.Background(), "ana", "ana@example.com", "s3cret")
	require.NoError(t, err)
	token, err := svc.Login(context.Background(), "ana@example.com", "s3cret")
	require.NoError(t, err)

	// first resolution misses the cache and fills it
	_, err = svc.GetByToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, 1, lookup.sets)

	// second resolution is served from the cache
	delete(repo.byEmail, "ana@example.com")
	u, err := svc.GetByToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "ana", u.UserName)
	require.Equal(t, 1, lookup.sets)
}

func TestDeleteInvalidatesCache(t *testing.T) {
	repo := newMemUserRepo()
	lookup := newMemLookup()
	svc := newTestUserService(repo, lookup)

	u, err := svc.Register(context.Background(), "ana", "ana@example.com", "s3cret")
	require.NoError(t, err)
	require.NoError(t, lookup.Set(context.Background(), u))

	require.NoError(t, svc.Delete(context.Background(), "ana@example.com"))
	require.Contains(t, lookup.invalidated, "ana@example.com")

	_, err = svc.GetByID(context.Background(), u.UserID)
	require.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestDeleteUnknownUser(t *testing.T) {
	svc := newTestUserService(newMemUserRepo(), nil)
	err := svc.Delete(context.Background(), "ghost@example.com")
	require.True(t, utils.IsCode(err, utils.CodeNotFound))
}
