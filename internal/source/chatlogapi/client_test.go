package chatlogapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/model"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(contactPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items": []*model.Contact{
				{UserName: "a@chatroom", NickName: "Alice"},
				{UserName: "b", NickName: "Bob", IsFriend: true},
			},
		})
	})
	mux.HandleFunc(membersPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req membersReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		items := make([]*model.Member, 0, len(req.IDs))
		for _, id := range req.IDs {
			items = append(items, &model.Member{UserName: id, NickName: "nick-" + id})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
	})
	mux.HandleFunc(chatRoomPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") != "a@chatroom" {
			writeJSON(w, http.StatusOK, map[string]interface{}{"items": []interface{}{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items": []*model.ChatRoom{{
				Name:  "a@chatroom",
				Users: []model.ChatRoomUser{{UserName: "m1"}, {UserName: "m2"}},
			}},
		})
	})
	mux.HandleFunc(checkLoginPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"code": 1})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	srv := newTestServer(t)
	c, err := New(Config{BaseURL: srv.URL + "/", Timeout: time.Second, Token: "secret"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL, c.BaseURL())
	ctx := context.Background()

	contacts, err := c.FetchContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "a@chatroom", contacts[0].UserName)
	assert.True(t, contacts[1].IsFriend)

	members, err := c.ResolveMembers(ctx, []string{"m2", "m1"})
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "m2", members[0].UserName)
	assert.Equal(t, "nick-m1", members[1].NickName)

	empty, err := c.ResolveMembers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	ids, err := c.ChatRoomMembers(ctx, "a@chatroom")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)

	_, err = c.ChatRoomMembers(ctx, "missing@chatroom")
	assert.ErrorIs(t, err, errors.ErrChatRoomNotFound)

	code, err := c.CheckLogin(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.FetchContacts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")

	_, err = c.ResolveMembers(context.Background(), []string{"x"})
	require.Error(t, err)

	code, err := c.CheckLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	_, err = New(Config{BaseURL: "  "})
	assert.Error(t, err)
}
