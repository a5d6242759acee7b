package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio-catalog/internal/changefeed"
	"portfolio-catalog/internal/config"
	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/handler"
	"portfolio-catalog/internal/logger"
	"portfolio-catalog/internal/middleware"
	"portfolio-catalog/internal/repository"
	"portfolio-catalog/internal/service"
	"portfolio-catalog/internal/storage"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse battery staple"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testApp struct {
	app   *fiber.App
	store *storage.MemoryStore
}

func newTestApp(t *testing.T) testApp {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Environment:       "development",
		JWTSecret:         "test-secret",
		JWTAccessExpiry:   time.Hour,
		AdminEmail:        adminEmail,
		AdminPasswordHash: string(hash),
		FromEmail:         "noreply@example.com",
	}

	log := logger.Discard()
	hub := changefeed.NewHub(log)
	repos, err := repository.NewRepositories("memory", nil, hub, log)
	require.NoError(t, err)
	store := storage.NewMemoryStore("http://cdn.test")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	services := service.NewServices(repos, hub, store, nil, cfg, log)
	t.Cleanup(services.Galleries.Close)
	h := handler.NewHandlers(ctx, services, log)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(middleware.RequestInfo())

	v1 := app.Group("/api/v1")
	v1.Get("/media", h.Media.List)
	v1.Get("/media/:id", h.Media.Get)
	v1.Post("/inquiries", h.Inquiry.Create)
	v1.Post("/auth/login", h.Auth.Login)

	admin := v1.Group("/admin", middleware.AdminRequired(services.Auth))
	admin.Get("/media", h.AdminMedia.List)
	admin.Post("/media", h.AdminMedia.Upload)
	admin.Post("/media/links", h.AdminMedia.AddLink)
	admin.Patch("/media/:id", h.AdminMedia.Update)
	admin.Delete("/media/:id", h.AdminMedia.Delete)

	return testApp{app: app, store: store}
}

func (ta testApp) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func jsonRequest(method, target string, payload any) *http.Request {
	data, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (ta testApp) login(t *testing.T) string {
	t.Helper()
	resp, body := ta.do(t, jsonRequest(http.MethodPost, "/api/v1/auth/login", domain.LoginInput{
		Email:    adminEmail,
		Password: adminPassword,
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var tokens domain.TokenPair
	require.NoError(t, json.Unmarshal(body, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

type part struct {
	field       string
	fileName    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, target, token string, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.fileName))
		header.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = pw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

type snapshotBody struct {
	Data []domain.MediaRecord `json:"data"`
	Seq  uint64               `json:"seq"`
}

func decodeError(t *testing.T, body []byte) middleware.ErrorResponse {
	t.Helper()
	var e middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

func TestMedia_ListEmpty(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/media?kind=artwork", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot snapshotBody
	require.NoError(t, json.Unmarshal(body, &snapshot))
	assert.NotNil(t, snapshot.Data)
	assert.Empty(t, snapshot.Data)
	assert.Positive(t, snapshot.Seq)
}

func TestMedia_InvalidKind(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/media?kind=sculpture", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, body).Code)
}

func TestMedia_GetUnknownAndMalformedID(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/media/00000000-0000-0000-0000-000000000001", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, body).Code)

	resp, _ = ta.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/media/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdmin_RequiresToken(t *testing.T) {
	ta := newTestApp(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/media", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, body := ta.do(t, req)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "UNAUTHORIZED", decodeError(t, body).Code)
		})
	}
}

func TestAuth_LoginRejectsWrongPassword(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.do(t, jsonRequest(http.MethodPost, "/api/v1/auth/login", domain.LoginInput{
		Email:    adminEmail,
		Password: "wrong",
	}))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", decodeError(t, body).Message)
}

func TestAdminMedia_UploadEditDelete(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login(t)

	resp, body := ta.do(t, multipartRequest(t, "/api/v1/admin/media", token,
		map[string]string{"kind": "artwork", "title": "Dusk", "name": "Ana", "type_detail": "Oil on canvas"},
		part{field: "file", fileName: "dusk.png", contentType: "image/png", data: pngHeader},
	))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created domain.MediaRecord
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, domain.KindArtwork, created.Kind)
	assert.Equal(t, domain.SourceUploadedFile, created.SourceMode)
	assert.Equal(t, "image/png", created.MimeOrLinkType)
	require.NotNil(t, created.PrimaryStoragePath)
	assert.True(t, strings.HasPrefix(*created.PrimaryStoragePath, "artworks/"))
	assert.Len(t, ta.store.Paths(), 1)

	resp, body = ta.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/media?kind=artwork", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snapshot snapshotBody
	require.NoError(t, json.Unmarshal(body, &snapshot))
	require.Len(t, snapshot.Data, 1)
	assert.Equal(t, created.ID, snapshot.Data[0].ID)

	resp, body = ta.do(t, withToken(jsonRequest(http.MethodPatch, "/api/v1/admin/media/"+created.ID.String(),
		map[string]any{"title": "Dawn", "type_detail": nil}), token))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var edited domain.MediaRecord
	require.NoError(t, json.Unmarshal(body, &edited))
	assert.Equal(t, "Dawn", edited.Title)
	assert.Nil(t, edited.TypeDetail)
	assert.Equal(t, "Ana", edited.Name)

	resp, _ = ta.do(t, withToken(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/media/"+created.ID.String(), nil), token))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, ta.store.Paths())

	resp, _ = ta.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/media/"+created.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ta.do(t, withToken(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/media/"+created.ID.String(), nil), token))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminMedia_UploadSniffsGenericContentType(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login(t)

	resp, body := ta.do(t, multipartRequest(t, "/api/v1/admin/media", token,
		map[string]string{"kind": "artwork", "title": "Sniffed"},
		part{field: "file", fileName: "blob", contentType: "application/octet-stream", data: pngHeader},
	))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created domain.MediaRecord
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "image/png", created.MimeOrLinkType)
}

func TestAdminMedia_UploadRejectsWrongType(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login(t)

	resp, body := ta.do(t, multipartRequest(t, "/api/v1/admin/media", token,
		map[string]string{"kind": "artwork", "title": "Notes"},
		part{field: "file", fileName: "notes.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4")},
	))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, body).Code)
	assert.Empty(t, ta.store.Paths())
	assert.Zero(t, ta.store.PutCalls())
}

func TestAdminMedia_UploadRequiresFile(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login(t)

	resp, _ := ta.do(t, multipartRequest(t, "/api/v1/admin/media", token, map[string]string{"kind": "artwork"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminMedia_AddLink(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login(t)

	resp, body := ta.do(t, withToken(jsonRequest(http.MethodPost, "/api/v1/admin/media/links", domain.LinkInput{
		Kind:  domain.KindVideo,
		URL:   "https://youtu.be/abc",
		Title: "Studio tour",
	}), token))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created domain.MediaRecord
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, domain.SourceExternalLink, created.SourceMode)
	assert.Equal(t, "https://youtu.be/abc", created.PrimaryURL)
	assert.Nil(t, created.PrimaryStoragePath)

	resp, body = ta.do(t, withToken(jsonRequest(http.MethodPost, "/api/v1/admin/media/links", domain.LinkInput{
		Kind: domain.KindVideo,
		URL:  "not a url",
	}), token))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, body).Code)
}

func TestInquiry(t *testing.T) {
	ta := newTestApp(t)

	valid := domain.Inquiry{
		ArtworkID:     "a1",
		ArtworkTitle:  "Dusk",
		CustomerName:  "Sam",
		CustomerEmail: "sam@example.com",
	}

	t.Run("accepted", func(t *testing.T) {
		resp, body := ta.do(t, jsonRequest(http.MethodPost, "/api/v1/inquiries", valid))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var out domain.InquiryResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.Success)
		assert.True(t, strings.HasPrefix(out.ID, "dev-"))
	})

	t.Run("invalid email", func(t *testing.T) {
		in := valid
		in.CustomerEmail = "not-an-email"
		resp, body := ta.do(t, jsonRequest(http.MethodPost, "/api/v1/inquiries", in))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var out domain.InquiryResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.False(t, out.Success)
		assert.NotEmpty(t, out.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/inquiries", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, body := ta.do(t, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out domain.InquiryResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.False(t, out.Success)
	})
}
