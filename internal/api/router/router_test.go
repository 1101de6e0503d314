package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/config"
	"github.com/d60-Lab/tieba/internal/api/handler"
	"github.com/d60-Lab/tieba/internal/service"
	"github.com/d60-Lab/tieba/pkg/auth"
	"github.com/d60-Lab/tieba/pkg/database"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

// newTestAPI admins 中的用户在组装路由前注册并写入运维白名单，密码均为 secret1
func newTestAPI(t *testing.T, admins ...string) *testAPI {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}
	tokens := auth.NewManager("router-test", "tieba", time.Hour)
	svc := service.New(db, nil, tokens)
	for _, name := range admins {
		u, err := svc.Users.Register(context.Background(), service.RegisterInput{Username: name, Password: "secret1"})
		require.NoError(t, err)
		cfg.Admin.UserIDs = append(cfg.Admin.UserIDs, u.ID)
	}
	engine, err := New(cfg, handler.New(svc), tokens)
	require.NoError(t, err)
	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

// signup 注册并登录，返回 (userID, token)
func (a *testAPI) signup(name string) (string, string) {
	a.t.Helper()
	code, _ := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": name, "password": "secret1"})
	require.Equal(a.t, http.StatusCreated, code)
	return a.login(name)
}

func (a *testAPI) login(name string) (string, string) {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": name, "password": "secret1"})
	require.Equal(a.t, http.StatusOK, code)
	var data struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	return data.User.ID, data.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)
	code, _ := api.do(http.MethodPost, "/api/v1/boards", "", gin.H{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "ghost", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFollowFlowAndErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	aliceID, alice := api.signup("alice")
	bobID, _ := api.signup("bob")

	code, _ := api.do(http.MethodPost, "/api/v1/relations/follow", alice, gin.H{"to_user_id": bobID})
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, "/api/v1/relations/follow", alice, gin.H{"to_user_id": bobID})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(http.MethodPost, "/api/v1/relations/follow", alice, gin.H{"to_user_id": aliceID})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(http.MethodPost, "/api/v1/relations/follow", alice, gin.H{"to_user_id": "missing"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env := api.do(http.MethodGet, "/api/v1/me/following/"+bobID, alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[map[string]bool](t, env.Data)["following"])

	code, env = api.do(http.MethodGet, "/api/v1/users/"+bobID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, env.Data)["followers_count"])

	code, _ = api.do(http.MethodPost, "/api/v1/relations/unfollow", alice, gin.H{"to_user_id": bobID})
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, "/api/v1/relations/unfollow", alice, gin.H{"to_user_id": bobID})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBoardPostCommentFlow(t *testing.T) {
	api := newTestAPI(t)
	_, owner := api.signup("owner")
	memberID, member := api.signup("member")

	code, env := api.do(http.MethodPost, "/api/v1/boards", owner, gin.H{"name": "golang"})
	require.Equal(t, http.StatusCreated, code)
	boardID := decode[map[string]interface{}](t, env.Data)["id"].(string)

	code, _ = api.do(http.MethodPost, "/api/v1/boards/"+boardID+"/join", member, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, "/api/v1/boards/"+boardID+"/join", member, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(http.MethodPost, "/api/v1/boards/"+boardID+"/leave", owner, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodPost, "/api/v1/posts", member, gin.H{"board_id": boardID, "title": "hi", "content": "<p>x</p>"})
	require.Equal(t, http.StatusCreated, code)
	postID := decode[map[string]interface{}](t, env.Data)["id"].(string)

	// 普通成员不能置顶
	code, _ = api.do(http.MethodPut, "/api/v1/posts/"+postID+"/top", member, gin.H{"on": true})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = api.do(http.MethodPut, "/api/v1/posts/"+postID+"/top", owner, gin.H{"on": true})
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodPost, "/api/v1/boards/"+boardID+"/members/"+memberID+"/promote", owner, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "moderator", decode[map[string]string](t, env.Data)["role"])

	code, _ = api.do(http.MethodPost, "/api/v1/posts/"+postID+"/like", owner, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, "/api/v1/posts/"+postID+"/comments", owner, gin.H{"content": "nice @member"})
	assert.Equal(t, http.StatusCreated, code)

	code, env = api.do(http.MethodGet, "/api/v1/posts/"+postID, "", nil)
	require.Equal(t, http.StatusOK, code)
	p := decode[map[string]interface{}](t, env.Data)
	assert.EqualValues(t, 1, p["likes_count"])
	assert.EqualValues(t, 1, p["comments_count"])
	assert.Equal(t, true, p["is_top"])

	code, env = api.do(http.MethodGet, "/api/v1/boards/"+boardID, "", nil)
	require.Equal(t, http.StatusOK, code)
	b := decode[map[string]interface{}](t, env.Data)
	assert.EqualValues(t, 2, b["members_count"])
	assert.EqualValues(t, 1, b["posts_count"])

	code, env = api.do(http.MethodGet, "/api/v1/feed", member, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]interface{}](t, env.Data), 1)
}

func TestMessagesAndCounters(t *testing.T) {
	api := newTestAPI(t)
	aliceID, alice := api.signup("alice")
	bobID, bob := api.signup("bob")

	for i := 0; i < 3; i++ {
		code, _ := api.do(http.MethodPost, "/api/v1/messages", alice, gin.H{"receiver_id": bobID, "content": fmt.Sprintf("m%d", i)})
		require.Equal(t, http.StatusCreated, code)
	}
	code, _ := api.do(http.MethodPost, "/api/v1/messages", alice, gin.H{"receiver_id": bobID, "type": "video", "content": "x"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := api.do(http.MethodGet, "/api/v1/messages/stats", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, decode[service.MessageStats](t, env.Data).UnreadMessages)

	code, env = api.do(http.MethodGet, "/api/v1/messages/sessions", bob, nil)
	require.Equal(t, http.StatusOK, code)
	page := decode[struct {
		List []service.SessionView `json:"list"`
	}](t, env.Data)
	require.Len(t, page.List, 1)
	assert.Equal(t, aliceID, page.List[0].OtherUserID)

	code, _ = api.do(http.MethodGet, "/api/v1/messages/sessions/"+page.List[0].ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, env = api.do(http.MethodPost, "/api/v1/messages/sessions/"+page.List[0].ID+"/read", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, decode[map[string]int64](t, env.Data)["marked"])

	code, _ = api.do(http.MethodGet, "/api/v1/notifications?type=bogus", bob, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// 普通用户不能调用运维接口
	code, _ = api.do(http.MethodPost, "/api/v1/admin/counters/recompute", alice, gin.H{"kind": "all"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = api.do(http.MethodPost, "/api/v1/admin/sessions/"+page.List[0].ID+"/unread/recompute", bob, gin.H{"user_id": bobID})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = api.do(http.MethodPost, "/api/v1/admin/counters/recompute", "", gin.H{"kind": "all"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminEndpoints(t *testing.T) {
	api := newTestAPI(t, "root")
	_, root := api.login("root")
	_, alice := api.signup("alice")
	bobID, bob := api.signup("bob")

	code, _ := api.do(http.MethodPost, "/api/v1/relations/follow", alice, gin.H{"to_user_id": bobID})
	require.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, "/api/v1/messages", alice, gin.H{"receiver_id": bobID, "content": "hi"})
	require.Equal(t, http.StatusCreated, code)

	code, _ = api.do(http.MethodPost, "/api/v1/admin/counters/recompute", alice, gin.H{"kind": "all"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := api.do(http.MethodPost, "/api/v1/admin/counters/recompute", root, gin.H{"kind": "user-followers", "owner_id": bobID})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, env.Data)["value"])

	code, env = api.do(http.MethodPost, "/api/v1/admin/counters/recompute", root, gin.H{"kind": "all"})
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[map[string][]map[string]interface{}](t, env.Data)["results"], 12)

	code, _ = api.do(http.MethodPost, "/api/v1/admin/counters/recompute", root, gin.H{"kind": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodGet, "/api/v1/messages/sessions", bob, nil)
	require.Equal(t, http.StatusOK, code)
	page := decode[struct {
		List []service.SessionView `json:"list"`
	}](t, env.Data)
	require.Len(t, page.List, 1)
	code, env = api.do(http.MethodPost, "/api/v1/admin/sessions/"+page.List[0].ID+"/unread/recompute", root, gin.H{"user_id": bobID})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, env.Data)["unread"])

	code, _ = api.do(http.MethodPost, "/api/v1/admin/sessions/"+page.List[0].ID+"/unread/recompute", root, gin.H{"user_id": "ghost"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestProfilePasswordAndRecommended(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signup("alice")
	_, bob := api.signup("bob")

	code, env := api.do(http.MethodPut, "/api/v1/me/profile", alice, gin.H{"nickname": "Al & co", "bio": "1 < 2"})
	require.Equal(t, http.StatusOK, code)
	u := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "Al & co", u["nickname"])
	assert.Equal(t, "1 < 2", u["bio"])
	code, _ = api.do(http.MethodPut, "/api/v1/me/profile", alice, gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodPut, "/api/v1/me/password", alice,
		gin.H{"current_password": "secret1", "new_password": "secret2", "confirm_password": "other"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(http.MethodPut, "/api/v1/me/password", alice,
		gin.H{"current_password": "wrong", "new_password": "secret2", "confirm_password": "secret2"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(http.MethodPut, "/api/v1/me/password", alice,
		gin.H{"current_password": "secret1", "new_password": "secret2", "confirm_password": "secret2"})
	require.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "secret2"})
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodPost, "/api/v1/boards", alice, gin.H{"name": "golang"})
	require.Equal(t, http.StatusCreated, code)
	boardID := decode[map[string]interface{}](t, env.Data)["id"].(string)

	code, env = api.do(http.MethodGet, "/api/v1/me/boards/recommended", bob, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		List []map[string]interface{} `json:"list"`
	}](t, env.Data).List
	require.Len(t, list, 1)
	assert.Equal(t, boardID, list[0]["id"])

	code, env = api.do(http.MethodGet, "/api/v1/me/boards/recommended", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[struct {
		List []map[string]interface{} `json:"list"`
	}](t, env.Data).List)
}
