package backend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/brandhub/internal/domain"
	apperrors "github.com/utafrali/brandhub/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.Timeout = 5 * time.Second
	return New(cfg, testLogger())
}

func brandForm() domain.BrandForm {
	return domain.BrandForm{
		BrandName:   "ACME",
		FullName:    "Daniel Andrés",
		Email:       "owner@example.com",
		PhoneNumber: "+573000000",
		OwnerCedula: "10000000",
	}
}

func TestLogin_Success(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok-123",
			"token_type":   "bearer",
		})
	})

	token, err := client.Login(context.Background(), "user@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	assert.Equal(t, "user@example.com", gotBody["email"])
	assert.Equal(t, "secret", gotBody["password"])
}

func TestLogin_BadCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
	})

	_, err := client.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Incorrect email or password", appErr.Message)
}

func TestLogin_MissingToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"token_type": "bearer"})
	})

	_, err := client.Login(context.Background(), "user@example.com", "secret")
	assert.Error(t, err)
}

func TestRegister_Conflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
	})

	err := client.Register(context.Background(), "taken@example.com", "password1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Email already registered")
}

func TestListBrands_SendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/brands", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"b-1","brand_name":"ACME","full_name":"Daniel","email":"a@b.co","phone_number":"1234567","owner_cedula":"123456","logo_url":"https://cdn.example.com/1.png"},
			{"id":"b-2","brand_name":"Globex","full_name":"Hank","email":"h@b.co","phone_number":"7654321","owner_cedula":"654321","logo_url":null}
		]`))
	})

	brands, err := client.ListBrands(context.Background(), "tok-123")
	require.NoError(t, err)
	require.Len(t, brands, 2)
	assert.Equal(t, "ACME", brands[0].BrandName)
	assert.True(t, brands[0].HasLogo())
	assert.False(t, brands[1].HasLogo())
}

func TestListBrands_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	})

	_, err := client.ListBrands(context.Background(), "expired")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestGetBrand_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Brand not found"})
	})

	_, err := client.GetBrand(context.Background(), "tok", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateBrand_MultipartWithLogo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/brands", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		assert.Equal(t, "ACME", r.FormValue("brand_name"))
		assert.Equal(t, "Daniel Andrés", r.FormValue("full_name"))
		assert.Equal(t, "owner@example.com", r.FormValue("email"))
		assert.Equal(t, "+573000000", r.FormValue("phone_number"))
		assert.Equal(t, "10000000", r.FormValue("owner_cedula"))

		file, header, err := r.FormFile("logo")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "logo.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"b-9","brand_name":"ACME","full_name":"Daniel Andrés","email":"owner@example.com","phone_number":"+573000000","owner_cedula":"10000000","logo_url":"https://cdn.example.com/b-9.png"}`))
	})

	logo := &Upload{
		Filename:    "logo.png",
		ContentType: "image/png",
		Size:        8,
		Data:        strings.NewReader("PNGBYTES"),
	}

	brand, err := client.CreateBrand(context.Background(), "tok", brandForm(), logo)
	require.NoError(t, err)
	assert.Equal(t, "b-9", brand.ID)
	assert.True(t, brand.HasLogo())
}

func TestUpdateBrand_NoLogoOmitsFilePart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/brands/b-1", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		_, _, err := r.FormFile("logo")
		assert.ErrorIs(t, err, http.ErrMissingFile)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"b-1","brand_name":"ACME","full_name":"Daniel Andrés","email":"owner@example.com","phone_number":"+573000000","owner_cedula":"10000000","logo_url":null}`))
	})

	brand, err := client.UpdateBrand(context.Background(), "tok", "b-1", brandForm(), nil)
	require.NoError(t, err)
	assert.Equal(t, "b-1", brand.ID)
}

func TestDeleteBrand(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/brands/b-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteBrand(context.Background(), "tok", "b-1"))
	assert.True(t, called)
}

func TestServerError_MapsToUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ListBrands(context.Background(), "tok")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestCircuitBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 5; i++ {
		_, err := client.ListBrands(context.Background(), "tok")
		require.Error(t, err)
	}

	// Breaker is open now; the request never reaches the server.
	_, err := client.ListBrands(context.Background(), "tok")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SERVICE_UNAVAILABLE", appErr.Code)
	assert.Contains(t, appErr.Message, "circuit open")
}

func TestContextCancellation_AbortsRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ListBrands(ctx, "tok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail) || errors.Is(err, context.DeadlineExceeded))
}
