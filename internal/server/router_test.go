package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"shanyrak/internal/config"
	"shanyrak/internal/dbtest"
	"shanyrak/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{Port: "0", JWTSecret: "secret", Env: "dev", BcryptCost: bcrypt.MinCost}
	return &testAPI{t: t, engine: SetupRouter(cfg, dbtest.Open(t), ws.NewHub())}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(username, password string) *httptest.ResponseRecorder {
	a.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/users/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// signup 注册并登录，返回 access token。
func (a *testAPI) signup(username string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/users/", "", gin.H{"username": username, "password": "pw-" + username, "phone": "+7", "name": username, "city": "Almaty"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	w = a.login(username, "pw-"+username)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		AccessToken string `json:"access_token"`
	}
	decode(a.t, w, &out)
	require.NotEmpty(a.t, out.AccessToken)
	return out.AccessToken
}

func (a *testAPI) createAnnouncement(token string, body gin.H) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/shanyraks/", token, body)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		ID string `json:"id"`
	}
	decode(a.t, w, &out)
	require.NotEmpty(a.t, out.ID)
	return out.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func listing(address string, price int) gin.H {
	return gin.H{"type": "rent", "price": price, "address": address, "area": "46m2", "rooms_count": 2, "description": "quiet"}
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUserFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("alice")

	w := api.do(http.MethodPost, "/auth/users/", "", gin.H{"username": "alice", "password": "other"})
	require.Equal(t, http.StatusConflict, w.Code)
	var conflict struct {
		Error  string                 `json:"error"`
		Detail map[string]interface{} `json:"detail"`
	}
	decode(t, w, &conflict)
	assert.Equal(t, "alice", conflict.Detail["username"])

	assert.Equal(t, http.StatusUnauthorized, api.login("alice", "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, api.login("nobody", "pw").Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/auth/users/", "", gin.H{"password": "x"}).Code)

	w = api.do(http.MethodGet, "/auth/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/auth/users/me", "garbage", nil).Code)

	w = api.do(http.MethodPatch, "/auth/users/me", token, gin.H{"phone": "+77001112233", "name": "Alice B", "city": "Astana"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/auth/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile map[string]interface{}
	decode(t, w, &profile)
	assert.IsType(t, "", profile["id"])
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "+77001112233", profile["phone"])
	assert.Equal(t, "Alice B", profile["name"])
	assert.Equal(t, "Astana", profile["city"])

	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/auth/users/me", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/auth/users/me", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPatch, "/auth/users/me", token, gin.H{"city": "x"}).Code)
	assert.Equal(t, http.StatusUnauthorized, api.login("alice", "pw-alice").Code)
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name     string
		password string
		want     int
	}{
		{"72 two-byte letters", strings.Repeat("ж", 72), http.StatusBadRequest},
		{"73 ascii bytes", strings.Repeat("a", 73), http.StatusBadRequest},
		{"exactly 72 bytes", strings.Repeat("қ", 36), http.StatusOK},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			username := "user" + strconv.Itoa(i)
			w := api.do(http.MethodPost, "/auth/users/", "", gin.H{"username": username, "password": tt.password})
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusOK {
				assert.Equal(t, http.StatusOK, api.login(username, tt.password).Code)
			}
		})
	}
}

func TestAnnouncementFlow(t *testing.T) {
	api := newTestAPI(t)
	owner := api.signup("owner")
	other := api.signup("other")

	id := api.createAnnouncement(owner, listing("Abay 10", 150000))

	w := api.do(http.MethodGet, "/shanyraks/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ann map[string]interface{}
	decode(t, w, &ann)
	assert.Equal(t, "Abay 10", ann["address"])
	assert.EqualValues(t, 0, ann["total_comments"])

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/shanyraks/", "", listing("x", 1)).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/shanyraks/", owner, gin.H{"price": "cheap"}).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/shanyraks/abc", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/shanyraks/9999", "", nil).Code)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPatch, "/shanyraks/"+id, other, listing("Hijack 1", 1)).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPatch, "/shanyraks/9999", owner, listing("Nope", 1)).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/shanyraks/"+id, owner, gin.H{"type": "sell", "price": 0, "address": "Dostyk 5", "rooms_count": 0}).Code)

	w = api.do(http.MethodGet, "/shanyraks/"+id, "", nil)
	decode(t, w, &ann)
	assert.Equal(t, "sell", ann["type"])
	assert.EqualValues(t, 0, ann["price"])
	assert.Equal(t, "Dostyk 5", ann["address"])
	assert.Equal(t, "", ann["description"])

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/shanyraks/"+id, other, nil).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/shanyraks/"+id, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/shanyraks/"+id, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/shanyraks/"+id, owner, nil).Code)
}

func TestSearchAnnouncements(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("seller")

	api.createAnnouncement(token, gin.H{"type": "rent", "price": 100, "address": "A", "rooms_count": 1})
	second := api.createAnnouncement(token, gin.H{"type": "sell", "price": 200, "address": "B", "rooms_count": 2})
	third := api.createAnnouncement(token, gin.H{"type": "rent", "price": 300, "address": "C", "rooms_count": 2})

	type result struct {
		Total         int64 `json:"total"`
		Announcements []struct {
			ID      uint   `json:"id"`
			Address string `json:"address"`
		} `json:"announcements"`
	}

	tests := []struct {
		name      string
		query     string
		total     int64
		addresses []string
	}{
		{"all newest first", "", 3, []string{"C", "B", "A"}},
		{"inclusive price range", "?price_from=200&price_until=300", 2, []string{"C", "B"}},
		{"type and rooms", "?type=rent&rooms_count=2", 1, []string{"C"}},
		{"underscore type", "?_type=sell", 1, []string{"B"}},
		{"paging counts before limit", "?limit=1&offset=1", 3, []string{"B"}},
		{"offset past end", "?offset=10", 3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodGet, "/shanyraks"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var res result
			decode(t, w, &res)
			assert.Equal(t, tt.total, res.Total)
			got := make([]string, 0, len(res.Announcements))
			for _, a := range res.Announcements {
				got = append(got, a.Address)
			}
			assert.Equal(t, tt.addresses, got)
		})
	}

	for _, q := range []string{"?limit=abc", "?offset=-1", "?price_from=x"} {
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/shanyraks"+q, "", nil).Code, q)
	}

	w := api.do(http.MethodGet, "/shanyraks?limit=1", "", nil)
	var res result
	decode(t, w, &res)
	require.Len(t, res.Announcements, 1)
	assert.Equal(t, third, idString(res.Announcements[0].ID))
	assert.NotEqual(t, second, idString(res.Announcements[0].ID))
}

func TestCommentFlow(t *testing.T) {
	api := newTestAPI(t)
	owner := api.signup("owner")
	author := api.signup("author")
	stranger := api.signup("stranger")
	id := api.createAnnouncement(owner, listing("Satpaev 1", 90000))

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/shanyraks/9999/comments", author, gin.H{"content": "hi"}).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/shanyraks/9999/comments", "", nil).Code)

	w := api.do(http.MethodPost, "/shanyraks/"+id+"/comments", author, gin.H{"content": "is it free?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)
	commentPath := "/shanyraks/" + id + "/comments/" + created.ID

	type commentList struct {
		Comments []struct {
			Content   string `json:"content"`
			CreatedAt string `json:"created_at"`
		} `json:"comments"`
	}
	w = api.do(http.MethodGet, "/shanyraks/"+id+"/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list commentList
	decode(t, w, &list)
	require.Len(t, list.Comments, 1)
	assert.Equal(t, "is it free?", list.Comments[0].Content)
	assert.NotEmpty(t, list.Comments[0].CreatedAt)

	var ann map[string]interface{}
	decode(t, api.do(http.MethodGet, "/shanyraks/"+id, "", nil), &ann)
	assert.EqualValues(t, 1, ann["total_comments"])

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPatch, commentPath, owner, gin.H{"content": "edited"}).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, commentPath, author, gin.H{"content": "still free?"}).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPatch, "/shanyraks/"+id+"/comments/9999", author, gin.H{"content": "x"}).Code)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, commentPath, stranger, nil).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, commentPath, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, commentPath, owner, nil).Code)

	w = api.do(http.MethodGet, "/shanyraks/"+id+"/comments", "", nil)
	list = commentList{}
	decode(t, w, &list)
	assert.Empty(t, list.Comments)
}

func TestFavoriteFlow(t *testing.T) {
	api := newTestAPI(t)
	owner := api.signup("owner")
	fan := api.signup("fan")
	id := api.createAnnouncement(owner, listing("Old address 1", 50000))

	favPath := "/auth/users/favorites/shanyraks/" + id
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/auth/users/favorites/shanyraks/9999", fan, nil).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, favPath, fan, nil).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, favPath, fan, nil).Code)

	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/shanyraks/"+id, owner, listing("New address 2", 50000)).Code)

	type favList struct {
		Shanyraks []struct {
			ID      uint   `json:"id"`
			Address string `json:"address"`
		} `json:"shanyraks"`
	}
	w := api.do(http.MethodGet, "/auth/users/favorites/shanyraks", fan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var favs favList
	decode(t, w, &favs)
	require.Len(t, favs.Shanyraks, 1)
	assert.Equal(t, id, idString(favs.Shanyraks[0].ID))
	assert.Equal(t, "New address 2", favs.Shanyraks[0].Address)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, favPath, owner, nil).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, favPath, fan, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, favPath, fan, nil).Code)

	favs = favList{}
	decode(t, api.do(http.MethodGet, "/auth/users/favorites/shanyraks", fan, nil), &favs)
	assert.Empty(t, favs.Shanyraks)
}

func TestDeleteProfileCascades(t *testing.T) {
	api := newTestAPI(t)
	owner := api.signup("owner")
	fan := api.signup("fan")
	id := api.createAnnouncement(owner, listing("Gone 1", 1))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/shanyraks/"+id+"/comments", fan, gin.H{"content": "nice"}).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/auth/users/favorites/shanyraks/"+id, fan, nil).Code)

	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/auth/users/me", owner, nil).Code)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/shanyraks/"+id, "", nil).Code)
	var favs map[string][]interface{}
	decode(t, api.do(http.MethodGet, "/auth/users/favorites/shanyraks", fan, nil), &favs)
	assert.Empty(t, favs["shanyraks"])
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodGet, "/healthz", "", nil)
	w := api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
