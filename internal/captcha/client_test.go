package captcha_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pledgeboard/internal/captcha"
	dErrors "pledgeboard/pkg/domain-errors"
)

func TestVerifySuccess(t *testing.T) {
	var gotToken, gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotToken = r.PostFormValue("response")
		gotSecret = r.PostFormValue("secret")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	client := captcha.New("sekrit", captcha.WithVerifyURL(srv.URL))
	err := client.Verify(context.Background(), "the-token")

	require.NoError(t, err)
	assert.Equal(t, "the-token", gotToken)
	assert.Equal(t, "sekrit", gotSecret)
}

func TestVerifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false}`))
	}))
	defer srv.Close()

	client := captcha.New("sekrit", captcha.WithVerifyURL(srv.URL))
	err := client.Verify(context.Background(), "bad-token")

	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeCaptchaRejected))
}

func TestVerifyNon200IsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := captcha.New("sekrit", captcha.WithVerifyURL(srv.URL))
	err := client.Verify(context.Background(), "token")

	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeCaptchaUnreachable))
}

func TestVerifyMalformedBodyIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := captcha.New("sekrit", captcha.WithVerifyURL(srv.URL))
	err := client.Verify(context.Background(), "token")

	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeCaptchaUnreachable))
}

func TestVerifyConnectionRefusedIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := captcha.New("sekrit", captcha.WithVerifyURL(srv.URL))
	err := client.Verify(context.Background(), "token")

	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeCaptchaUnreachable))
}
