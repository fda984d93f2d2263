package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// replay builds a request carrying cookies set on rr
func replay(rr *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessions_LoginUserID(t *testing.T) {
	s := NewSessions(testKey, false)

	_, ok := s.UserID(httptest.NewRequest("GET", "/", nil))
	require.False(t, ok)

	rr := httptest.NewRecorder()
	require.NoError(t, s.Login(rr, httptest.NewRequest("POST", "/login", nil), 42))

	id, ok := s.UserID(replay(rr))
	require.True(t, ok)
	require.Equal(t, int64(42), id)
}

func TestSessions_CookieAttributes(t *testing.T) {
	s := NewSessions(testKey, true)

	rr := httptest.NewRecorder()
	require.NoError(t, s.Login(rr, httptest.NewRequest("POST", "/login", nil), 1))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sessionName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)
}

func TestSessions_Logout(t *testing.T) {
	s := NewSessions(testKey, false)

	rr := httptest.NewRecorder()
	require.NoError(t, s.Login(rr, httptest.NewRequest("POST", "/login", nil), 7))

	out := httptest.NewRecorder()
	require.NoError(t, s.Logout(out, replay(rr)))

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].MaxAge < 0)
}

func TestSessions_ForeignKey(t *testing.T) {
	rr := httptest.NewRecorder()
	require.NoError(t, NewSessions(testKey, false).Login(rr, httptest.NewRequest("POST", "/login", nil), 7))

	other := NewSessions([]byte("fedcba9876543210fedcba9876543210"), false)
	_, ok := other.UserID(replay(rr))
	require.False(t, ok)
}

func TestSessions_Flashes(t *testing.T) {
	s := NewSessions(testKey, false)

	rr := httptest.NewRecorder()
	require.NoError(t, s.AddFlash(rr, httptest.NewRequest("GET", "/", nil), "hello"))

	next := httptest.NewRecorder()
	msgs, err := s.Flashes(next, replay(rr))
	require.NoError(t, err)
	require.Equal(t, []string{"hello"}, msgs)

	// popped flashes are gone on the following request
	msgs, err = s.Flashes(httptest.NewRecorder(), replay(next))
	require.NoError(t, err)
	require.Empty(t, msgs)
}
