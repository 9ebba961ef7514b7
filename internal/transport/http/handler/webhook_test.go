package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"devhub/internal/reconcile"
	"devhub/internal/webhook"
)

func init() { gin.SetMode(gin.TestMode) }

const whPath = "/api/v1/webhooks/clerk"

func newWebhookServer(t *testing.T, repo *fakeUserRepo, withSecret bool) (*gin.Engine, *webhook.SvixVerifier) {
	t.Helper()

	secret := ""
	var verifier webhook.Verifier
	var sv *webhook.SvixVerifier
	if withSecret {
		secret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("handler-test-key"))
		var err error
		sv, err = webhook.NewSvixVerifier(secret)
		require.NoError(t, err)
		verifier = sv
	}

	svc := reconcile.NewService(repo, zap.NewNop())
	h := NewWebhookHandler(secret, verifier, withSecret, svc, zap.NewNop())

	r := gin.New()
	h.MountAPI(r.Group("/api/v1"))
	return r, sv
}

func deliver(r *gin.Engine, sv *webhook.SvixVerifier, body []byte, sign bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, whPath, bytes.NewReader(body))
	if sv != nil {
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		req.Header.Set(webhook.HeaderID, "msg_1")
		req.Header.Set(webhook.HeaderTimestamp, ts)
		if sign {
			req.Header.Set(webhook.HeaderSignature, sv.Sign("msg_1", ts, body))
		} else {
			req.Header.Set(webhook.HeaderSignature, "v1,Zm9yZ2VkLXNpZ25hdHVyZQ==")
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookMissingSecretIs500(t *testing.T) {
	r, _ := newWebhookServer(t, newFakeUserRepo(), false)

	req := httptest.NewRequest(http.MethodPost, whPath, bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "secret not configured")
}

func TestWebhookMissingHeadersIs400(t *testing.T) {
	repo := newFakeUserRepo()
	r, _ := newWebhookServer(t, repo, true)

	req := httptest.NewRequest(http.MethodPost, whPath, bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing svix headers")
	assert.Empty(t, repo.rows)
}

func TestWebhookInvalidBodyIs400(t *testing.T) {
	repo := newFakeUserRepo()
	r, sv := newWebhookServer(t, repo, true)

	w := deliver(r, sv, []byte(`{not json`), true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestWebhookInvalidSignatureIs400NoMutation(t *testing.T) {
	repo := newFakeUserRepo()
	r, sv := newWebhookServer(t, repo, true)

	body := []byte(`{"type": "user.created", "data": {"id": "user_bad"}}`)
	w := deliver(r, sv, body, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid signature")
	assert.Empty(t, repo.rows)
}

func TestWebhookCreatedThenDuplicate(t *testing.T) {
	repo := newFakeUserRepo()
	r, sv := newWebhookServer(t, repo, true)

	body, _ := json.Marshal(map[string]any{
		"type": "user.created",
		"data": map[string]any{
			"id":              "user_wh1",
			"email_addresses": []map[string]any{{"email_address": "wh@example.com"}},
			"first_name":      "Web",
			"last_name":       "Hook",
			"public_metadata": map[string]any{"role": "guest"},
			"image_url":       "https://img.example.com/wh.png",
		},
	})

	w := deliver(r, sv, body, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Webhook processed", w.Body.String())

	u := repo.rows["user_wh1"]
	require.NotNil(t, u)
	assert.Equal(t, "wh", u.Username)
	assert.Equal(t, "Web Hook", u.DisplayName)

	// Same delivery again: insert-only semantics make it a processing failure.
	w = deliver(r, sv, body, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Webhook processing failed", w.Body.String())
	assert.Len(t, repo.rows, 1)
}

func TestWebhookCreatedWithoutIDIs500(t *testing.T) {
	repo := newFakeUserRepo()
	r, sv := newWebhookServer(t, repo, true)

	body := []byte(`{"type": "user.created", "data": {"first_name": "Ghost"}}`)
	w := deliver(r, sv, body, true)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Webhook processing failed", w.Body.String())
	assert.Empty(t, repo.rows)
}

func TestWebhookDeletedWithoutIDIs200(t *testing.T) {
	repo := newFakeUserRepo()
	repo.rows["user_keep"] = userRow("user_keep")
	r, sv := newWebhookServer(t, repo, true)

	body := []byte(`{"type": "user.deleted", "data": {"deleted": true}}`)
	w := deliver(r, sv, body, true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, repo.rows, 1)
}

func TestWebhookUnknownTypeIs200(t *testing.T) {
	repo := newFakeUserRepo()
	r, sv := newWebhookServer(t, repo, true)

	body := []byte(`{"type": "organization.created", "data": {"id": "org_1"}}`)
	w := deliver(r, sv, body, true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Webhook processed", w.Body.String())
	assert.Empty(t, repo.rows)
}

func TestWebhookProbe(t *testing.T) {
	r, _ := newWebhookServer(t, newFakeUserRepo(), true)

	req := httptest.NewRequest(http.MethodGet, whPath, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, true, out["webhookSecretConfigured"])
	assert.Equal(t, true, out["clerkConfigured"])
}

func TestWebhookProbeUnconfigured(t *testing.T) {
	r, _ := newWebhookServer(t, newFakeUserRepo(), false)

	req := httptest.NewRequest(http.MethodGet, whPath, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, false, out["webhookSecretConfigured"])
}
