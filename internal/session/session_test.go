package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenFromHeader(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "no header", header: "", want: ""},
		{name: "other cookies only", header: "theme=dark; lang=en", want: ""},
		{name: "only token", header: "fauna-token=fnSecret", want: "fnSecret"},
		{name: "among others", header: "theme=dark; fauna-token=fnSecret; lang=en", want: "fnSecret"},
		{name: "quoted", header: `fauna-token="fnSecret"`, want: "fnSecret"},
		{name: "empty value", header: "fauna-token=", want: ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.want, TokenFromHeader(testCase.header))
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	require.Equal(t, "", TokenFromRequest(nil))

	r := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	require.Equal(t, "", TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "fnABC"})
	require.Equal(t, "fnABC", TokenFromRequest(r))
}

func TestCodecSet(t *testing.T) {
	dev := Codec{}.Set("S1").String()
	require.Equal(t, "fauna-token=S1; HttpOnly", dev)

	prod := Codec{Secure: true}.Set("S1").String()
	require.Contains(t, prod, "fauna-token=S1")
	require.Contains(t, prod, "HttpOnly")
	require.Contains(t, prod, "Secure")
}

func TestCodecClear(t *testing.T) {
	ck := Codec{}.Clear()
	require.True(t, IsClear(ck))

	line := ck.String()
	require.True(t, strings.HasPrefix(line, "fauna-token=;"), line)
	require.Contains(t, line, "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
	require.Contains(t, line, "Max-Age=0")
	require.Contains(t, line, "HttpOnly")

	require.False(t, IsClear(Codec{}.Set("S1")))
}

func TestPendingReplacesSameName(t *testing.T) {
	p := NewPending()
	p.SetCookie(Codec{}.Set("S1"))
	p.SetCookie(Codec{}.Clear())
	p.SetCookie(&http.Cookie{Name: "other", Value: "1"})
	p.SetCookie(nil)

	cookies := p.Cookies()
	require.Len(t, cookies, 2)
	require.True(t, IsClear(cookies[0]))
	require.Equal(t, "other", cookies[1].Name)
}

func TestPendingFlushOnce(t *testing.T) {
	p := NewPending()
	p.SetCookie(Codec{}.Set("S1"))
	p.SetHeader("Cache-Control", "no-store")

	h := http.Header{}
	require.True(t, p.Flush(h))
	require.Equal(t, []string{"fauna-token=S1; HttpOnly"}, h.Values("Set-Cookie"))
	require.Equal(t, "no-store", h.Get("Cache-Control"))

	p.SetCookie(Codec{}.Set("S2"))
	require.False(t, p.Flush(h))
	require.Len(t, h.Values("Set-Cookie"), 1)
}

func TestPendingConcurrentWriters(t *testing.T) {
	p := NewPending()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.SetCookie(Codec{}.Clear())
		}()
	}
	wg.Wait()
	require.Len(t, p.Cookies(), 1)
}
