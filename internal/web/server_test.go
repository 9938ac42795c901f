package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FazinHan/lmstudio-webapp/internal/chat"
	"github.com/FazinHan/lmstudio-webapp/internal/llm"
	"github.com/FazinHan/lmstudio-webapp/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPrompt = "You are a test assistant."

type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) Start(ctx context.Context, sessionID string) (session.Transcript, error) {
	args := m.Called(ctx, sessionID)
	transcript, _ := args.Get(0).(session.Transcript)
	return transcript, args.Error(1)
}

func (m *MockRelay) Send(ctx context.Context, sessionID string, text string) (string, error) {
	args := m.Called(ctx, sessionID, text)
	return args.String(0), args.Error(1)
}

// newBackedServer wires the real relay to an inference server stub.
func newBackedServer(t *testing.T, backend http.HandlerFunc) (*Server, *session.MemoryStore) {
	t.Helper()
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)
	return newServerForEndpoint(t, ts.URL)
}

func newServerForEndpoint(t *testing.T, endpoint string) (*Server, *session.MemoryStore) {
	t.Helper()
	client, err := llm.NewClient(llm.LLMProviderOpenAI, llm.LLMClientOptions{
		Model:       "local-model",
		Endpoint:    endpoint,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)

	store := session.NewMemoryStore(testPrompt)
	relay := chat.NewRelay(store, chat.NewCompleter(client))
	return NewServer(relay, Options{}), store
}

func jsonBackend(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func postChat(t *testing.T, handler http.Handler, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestChat_EmptyBodyIsBadRequest(t *testing.T) {
	srv, _ := newServerForEndpoint(t, "http://127.0.0.1:1")

	rec := postChat(t, srv.Handler(), `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"error": "No message provided"}, decodeBody(t, rec))
}

func TestChat_EmptyMessageIsBadRequest(t *testing.T) {
	srv, _ := newServerForEndpoint(t, "http://127.0.0.1:1")

	rec := postChat(t, srv.Handler(), `{"message": ""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No message provided", decodeBody(t, rec)["error"])
}

func TestChat_InvalidJSON(t *testing.T) {
	srv, _ := newServerForEndpoint(t, "http://127.0.0.1:1")

	rec := postChat(t, srv.Handler(), `not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, rec)["error"])
}

func TestChat_BodyTooLarge(t *testing.T) {
	srv, _ := newServerForEndpoint(t, "http://127.0.0.1:1")

	rec := postChat(t, srv.Handler(), `{"message": "`+strings.Repeat("a", MaxRequestBodySize)+`"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestChat_TrimsBackendReply(t *testing.T) {
	srv, store := newBackedServer(t, jsonBackend(`{"choices":[{"message":{"content":" hi there "}}]}`))

	rec := postChat(t, srv.Handler(), `{"message": "hello"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"response": "hi there"}, decodeBody(t, rec))

	id := sessionCookie(t, rec).Value
	transcript, err := store.GetOrInit(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, session.Transcript{
		llm.NewSystemMessage(testPrompt),
		{Role: llm.User, Content: "hello"},
		{Role: llm.Assistant, Content: "hi there"},
	}, transcript)
}

func TestChat_ConnectionFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	endpoint := ts.URL
	ts.Close()
	srv, store := newServerForEndpoint(t, endpoint)

	rec := postChat(t, srv.Handler(), `{"message": "hello"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["response"], "Could not connect")

	transcript, err := store.GetOrInit(t.Context(), sessionCookie(t, rec).Value)
	require.NoError(t, err)
	require.Len(t, transcript, 3)
	assert.Equal(t, llm.Assistant, transcript[2].Role)
	assert.Contains(t, transcript[2].Content, "Could not connect")
}

func TestChat_BackendWithoutChoices(t *testing.T) {
	srv, _ := newBackedServer(t, jsonBackend(`{}`))

	rec := postChat(t, srv.Handler(), `{"message": "hello"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["response"], "invalid response")
}

func TestChat_BackendChoiceWithoutContent(t *testing.T) {
	for _, body := range []string{`{"choices":[{}]}`, `{"choices":[{"message":{}}]}`} {
		t.Run(body, func(t *testing.T) {
			srv, store := newBackedServer(t, jsonBackend(body))

			rec := postChat(t, srv.Handler(), `{"message": "hello"}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, chat.InvalidResponseReply, decodeBody(t, rec)["response"])

			transcript, err := store.GetOrInit(t.Context(), sessionCookie(t, rec).Value)
			require.NoError(t, err)
			require.Len(t, transcript, 3)
			assert.Equal(t, chat.InvalidResponseReply, transcript[2].Content)
		})
	}
}

func TestChat_SessionKeepsHistoryAcrossRequests(t *testing.T) {
	var lastMessages []any
	srv, _ := newBackedServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		lastMessages, _ = body["messages"].([]any)
		jsonBackend(`{"choices":[{"message":{"content":"ok"}}]}`)(w, r)
	})

	first := postChat(t, srv.Handler(), `{"message": "one"}`)
	cookie := sessionCookie(t, first)
	second := postChat(t, srv.Handler(), `{"message": "two"}`, cookie)

	assert.Equal(t, http.StatusOK, second.Code)
	assert.Empty(t, second.Result().Cookies())
	require.Len(t, lastMessages, 4)
	assert.Equal(t, testPrompt, lastMessages[0].(map[string]any)["content"])
	assert.Equal(t, "two", lastMessages[3].(map[string]any)["content"])
}

func TestChat_StoreFailure(t *testing.T) {
	relay := &MockRelay{}
	relay.On("Send", mock.Anything, mock.AnythingOfType("string"), "hello").
		Return("", errors.New("database is locked"))

	rec := postChat(t, NewServer(relay, Options{}).Handler(), `{"message": "hello"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Session unavailable", decodeBody(t, rec)["error"])
	relay.AssertExpectations(t)
}

func TestChat_RateLimit(t *testing.T) {
	relay := &MockRelay{}
	relay.On("Send", mock.Anything, mock.Anything, "hello").Return("hi", nil)
	handler := NewServer(relay, Options{RateLimit: 2}).Handler()

	assert.Equal(t, http.StatusOK, postChat(t, handler, `{"message": "hello"}`).Code)
	assert.Equal(t, http.StatusOK, postChat(t, handler, `{"message": "hello"}`).Code)

	rec := postChat(t, handler, `{"message": "hello"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", decodeBody(t, rec)["error"])
}

func TestIndex_SeedsSession(t *testing.T) {
	srv, store := newServerForEndpoint(t, "http://127.0.0.1:1")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	transcript, err := store.GetOrInit(t.Context(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, session.Transcript{llm.NewSystemMessage(testPrompt)}, transcript)
}

func TestIndex_RendersHistory(t *testing.T) {
	relay := &MockRelay{}
	relay.On("Start", mock.Anything, mock.Anything).Return(session.Transcript{
		llm.NewSystemMessage("hidden system prompt"),
		{Role: llm.User, Content: "<script>alert(1)</script>"},
		{Role: llm.Assistant, Content: "**bold** answer"},
	}, nil)

	rec := httptest.NewRecorder()
	NewServer(relay, Options{Title: "Test Chat"}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "<title>Test Chat</title>")
	assert.NotContains(t, body, "hidden system prompt")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "<strong>bold</strong> answer")
}

func TestIndex_StoreFailure(t *testing.T) {
	relay := &MockRelay{}
	relay.On("Start", mock.Anything, mock.Anything).Return(nil, errors.New("database is locked"))

	rec := httptest.NewRecorder()
	NewServer(relay, Options{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSessionID_ReusesValidCookie(t *testing.T) {
	srv := NewServer(&MockRelay{}, Options{SecureCookie: true})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "2f1b5a3e-8a55-4c66-9d4b-5b0f3c1d2e7f"})
	rec := httptest.NewRecorder()

	id := srv.sessionID(rec, req)

	assert.Equal(t, "2f1b5a3e-8a55-4c66-9d4b-5b0f3c1d2e7f", id)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessionID_ReplacesMalformedCookie(t *testing.T) {
	srv := NewServer(&MockRelay{}, Options{SecureCookie: true})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "../../etc"})
	rec := httptest.NewRecorder()

	id := srv.sessionID(rec, req)

	assert.NotEqual(t, "../../etc", id)
	cookie := sessionCookie(t, rec)
	assert.Equal(t, id, cookie.Value)
	assert.True(t, cookie.Secure)
}

func TestUnknownPathIsNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(&MockRelay{}, Options{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderMarkdown(t *testing.T) {
	html := string(renderMarkdown("# Title\n\n<img src=x onerror=alert(1)>"))

	assert.Contains(t, html, "<h1")
	assert.NotContains(t, html, "onerror")
}
