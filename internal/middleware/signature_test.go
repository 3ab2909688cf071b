package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// sign produces the platform signature for a form POST to fullURL.
func sign(token, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(form.Get(k))
	}
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signedRouter(token, base string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/callbacks", PlatformSignature(token, base), func(c *gin.Context) {
		c.String(http.StatusOK, c.PostForm("StatusCallbackEvent"))
	})
	return r
}

func postForm(r http.Handler, target string, form url.Values, sig string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range header {
		req.Header[k] = v
	}
	if sig != "" {
		req.Header.Set(SignatureHeader, sig)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPlatformSignature(t *testing.T) {
	r := signedRouter("tok", "https://hooks.example/")
	form := url.Values{"StatusCallbackEvent": {"room-ended"}, "RoomSid": {"RM1"}}
	good := sign("tok", "https://hooks.example/callbacks", form)

	w := postForm(r, "/callbacks", form, good, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "room-ended", w.Body.String())

	assert.Equal(t, http.StatusForbidden, postForm(r, "/callbacks", form, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, postForm(r, "/callbacks", form, "bogus", nil).Code)

	tampered := url.Values{"StatusCallbackEvent": {"room-ended"}, "RoomSid": {"RM2"}}
	assert.Equal(t, http.StatusForbidden, postForm(r, "/callbacks", tampered, good, nil).Code)
	assert.Equal(t, http.StatusForbidden, postForm(signedRouter("other", "https://hooks.example"), "/callbacks", form, good, nil).Code)
}

func TestPlatformSignature_RebuildsURLWithoutPublicBase(t *testing.T) {
	r := signedRouter("tok", "")
	form := url.Values{"StatusCallbackEvent": {"room-ended"}, "RoomSid": {"RM1"}}

	plain := sign("tok", "http://hooks.example/callbacks", form)
	w := postForm(r, "http://hooks.example/callbacks", form, plain, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	proxied := sign("tok", "https://hooks.example/callbacks", form)
	w = postForm(r, "http://hooks.example/callbacks", form, proxied, http.Header{"X-Forwarded-Proto": {"https"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postForm(r, "http://hooks.example/callbacks", form, sign("tok", "/callbacks", form), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPlatformSignature_KeepsQueryString(t *testing.T) {
	r := signedRouter("tok", "https://hooks.example")
	form := url.Values{"StatusCallbackEvent": {"composition-available"}}
	sig := sign("tok", "https://hooks.example/callbacks?tenant=a", form)
	assert.Equal(t, http.StatusOK, postForm(r, "/callbacks?tenant=a", form, sig, nil).Code)
}

func TestPlatformSignature_DisabledWithoutToken(t *testing.T) {
	w := postForm(signedRouter("", ""), "/callbacks", url.Values{"StatusCallbackEvent": {"x"}}, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
