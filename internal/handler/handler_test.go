package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/foodlist/internal/auth"
	"github.com/sakif/foodlist/internal/handler"
	sqliteRepo "github.com/sakif/foodlist/internal/repository/sqlite"
	"github.com/sakif/foodlist/internal/service"
)

// testEnv is a full stack over an in-memory database, routed the same way
// the server routes it.
type testEnv struct {
	router  http.Handler
	tokens  *auth.TokenService
	authSvc *service.AuthService
	food    *service.FoodService
	suggest *service.SuggestionService
	db      *sqliteRepo.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqliteRepo.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	passwords, err := auth.NewPasswordService(bcrypt.MinCost)
	require.NoError(t, err)

	env := &testEnv{
		tokens:  tokens,
		authSvc: service.NewAuthService(db, tokens, passwords, logger),
		food:    service.NewFoodService(db, logger),
		suggest: service.NewSuggestionService(db, db, logger),
		db:      db,
	}

	authH := handler.NewAuthHandler(env.authSvc, handler.CookieConfig{MaxAge: time.Hour}, logger)
	foodH := handler.NewFoodHandler(env.food, logger)
	randomH := handler.NewSuggestionHandler(env.suggest, logger)
	healthH := handler.NewHealthHandler(db, logger)

	r := chi.NewRouter()
	r.Get("/healthz", healthH.HandleHealth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authH.HandleRegister)
		r.Post("/login", authH.HandleLogin)
		r.Post("/logout", authH.HandleLogout)
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/me", authH.HandleMe)
		r.Get("/lists", foodH.HandleLists)
		r.Get("/lists/{listId}", foodH.HandleGetList)
		r.Post("/create_list", foodH.HandleCreateList)
		r.Get("/my_lists", foodH.HandleMyLists)
		r.Get("/list_items/{listId}", foodH.HandleListItems)
		r.Post("/add_item", foodH.HandleAddItem)
		r.Post("/toggle_item", foodH.HandleToggleItem)
		r.Post("/delete_item", foodH.HandleDeleteItem)
		r.Post("/edit_item", foodH.HandleEditItem)
		r.Post("/edit_list", foodH.HandleEditList)
		r.Post("/delete_list", foodH.HandleDeleteList)
		r.Get("/random_pick", randomH.HandleRandomPick)
	})
	env.router = r
	return env
}

// user registers username and returns its id with a session cookie.
func (e *testEnv) user(t *testing.T, username string) (int64, *http.Cookie) {
	t.Helper()
	id, err := e.authSvc.Register(context.Background(), username, "pw-"+username)
	require.NoError(t, err)
	token, err := e.tokens.Generate(id)
	require.NoError(t, err)
	return id, &http.Cookie{Name: auth.CookieName, Value: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

type item struct {
	ID        int64  `json:"id"`
	FoodName  string `json:"food_name"`
	IsChecked int    `json:"is_checked"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// =========================================================================
// AUTH
// =========================================================================

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/register",
		map[string]string{"username": "alice", "password": "pw1234", "confirm": "pw1234"}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	reg := decode[map[string]any](t, rr)
	assert.Equal(t, "alice", reg["username"])

	rr = env.do(t, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "pw1234"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	require.NotNil(t, session, "login must set the session cookie")
	assert.True(t, session.HttpOnly)
	assert.Equal(t, 3600, session.MaxAge)

	rr = env.do(t, http.MethodGet, "/api/me", nil, session)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[map[string]any](t, rr)
	assert.Equal(t, "alice", me["username"])
	assert.NotContains(t, me, "hash")
}

func TestRegister_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "taken")

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"confirm mismatch", map[string]string{"username": "a", "password": "x", "confirm": "y"}, http.StatusBadRequest},
		{"empty username", map[string]string{"username": " ", "password": "x", "confirm": "x"}, http.StatusBadRequest},
		{"empty password", map[string]string{"username": "a", "password": "", "confirm": ""}, http.StatusBadRequest},
		{"duplicate", map[string]string{"username": "taken", "password": "x", "confirm": "x"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/auth/register", tt.body, nil)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")

	wrongPw := env.do(t, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "nope"}, nil)
	unknown := env.do(t, http.MethodPost, "/auth/login",
		map[string]string{"username": "nobody", "password": "nope"}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	assert.Empty(t, wrongPw.Result().Cookies())
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAPI_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/me", "/api/lists", "/api/list_items/1", "/api/random_pick"} {
		rr := env.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
	rr := env.do(t, http.MethodPost, "/api/add_item", map[string]any{"list_id": 1, "food_name": "x"},
		&http.Cookie{Name: auth.CookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// =========================================================================
// LISTS AND ITEMS
// =========================================================================

// Register, create Groceries, add Milk, check it, read it back.
func TestGroceriesFlow(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice")

	rr := env.do(t, http.MethodPost, "/api/create_list", map[string]string{"list_name": "Groceries"}, alice)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	list := decode[map[string]any](t, rr)
	listID := int64(list["id"].(float64))
	assert.Equal(t, "Groceries", list["list_name"])

	rr = env.do(t, http.MethodPost, "/api/add_item", map[string]any{"list_id": listID, "food_name": " Milk "}, alice)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	milk := decode[item](t, rr)
	assert.Equal(t, "Milk", milk.FoodName)
	assert.Equal(t, 0, milk.IsChecked)

	rr = env.do(t, http.MethodPost, "/api/toggle_item", map[string]any{"id": milk.ID, "is_checked": 1}, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/list_items/"+itoa(listID), nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	items := decode[[]item](t, rr)
	assert.Equal(t, []item{{ID: milk.ID, FoodName: "Milk", IsChecked: 1}}, items)
}

func TestAddItem_ListIDErrors(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice")

	rr := env.do(t, http.MethodPost, "/api/add_item", map[string]any{"food_name": "Milk"}, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "list_id required", decode[errorBody](t, rr).Message)

	rr = env.do(t, http.MethodPost, "/api/add_item", map[string]any{"list_id": "abc", "food_name": "Milk"}, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid list_id", decode[errorBody](t, rr).Message)

	rr = env.do(t, http.MethodPost, "/api/add_item", `{"list_id":`, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddItem_StringListIDAccepted(t *testing.T) {
	env := newTestEnv(t)
	aliceID, alice := env.user(t, "alice")
	list, err := env.food.CreateList(context.Background(), aliceID, "Groceries")
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/api/add_item",
		map[string]any{"list_id": itoa(list.ID), "food_name": "Eggs"}, alice)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

// Every guarded route answers 403 to a principal who does not own the
// target, and leaves the data alone.
func TestGuardedRoutes_Forbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	aliceID, alice := env.user(t, "alice")
	_, bob := env.user(t, "bob")

	list, err := env.food.CreateList(ctx, aliceID, "Groceries")
	require.NoError(t, err)
	milk, err := env.food.AddItem(ctx, aliceID, list.ID, "Milk")
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/list_items/" + itoa(list.ID), nil},
		{http.MethodGet, "/api/lists/" + itoa(list.ID), nil},
		{http.MethodPost, "/api/add_item", map[string]any{"list_id": list.ID, "food_name": "Eggs"}},
		{http.MethodPost, "/api/add_item", map[string]any{"list_id": list.ID, "food_name": ""}},
		{http.MethodPost, "/api/toggle_item", map[string]any{"id": milk.ID, "is_checked": 1}},
		{http.MethodPost, "/api/delete_item", map[string]any{"id": milk.ID}},
		{http.MethodPost, "/api/edit_item", map[string]any{"id": milk.ID, "food_name": "x"}},
		{http.MethodPost, "/api/edit_list", map[string]any{"list_id": list.ID, "name": "x"}},
		{http.MethodPost, "/api/delete_list", map[string]any{"id": list.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, tt.body, bob)
			assert.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())
			assert.Equal(t, "forbidden", decode[errorBody](t, rr).Error)
		})
	}

	rr := env.do(t, http.MethodGet, "/api/list_items/"+itoa(list.ID), nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []item{{ID: milk.ID, FoodName: "Milk", IsChecked: 0}}, decode[[]item](t, rr))

	got, err := env.food.GetList(ctx, aliceID, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
}

func TestMissingTargets_Forbidden(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice")

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/list_items/999", nil, alice).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/list_items/abc", nil, alice).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/delete_list", map[string]any{}, alice).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/toggle_item", map[string]any{"id": 42}, alice).Code)
}

func TestEditList_KeyAliasesAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	aliceID, alice := env.user(t, "alice")
	list, err := env.food.CreateList(ctx, aliceID, "Groceries")
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/api/edit_list", map[string]any{"id": list.ID, "list_name": "Weekend"}, alice)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got, _ := env.food.GetList(ctx, aliceID, list.ID)
	assert.Equal(t, "Weekend", got.Name)

	rr = env.do(t, http.MethodPost, "/api/edit_list", map[string]any{"list_id": list.ID, "name": "Party"}, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	got, _ = env.food.GetList(ctx, aliceID, list.ID)
	assert.Equal(t, "Party", got.Name)

	// Blank name is checked before ownership, even for a missing list.
	rr = env.do(t, http.MethodPost, "/api/edit_list", map[string]any{"list_id": 999, "name": "  "}, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteList_RemovesItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	aliceID, alice := env.user(t, "alice")
	list, _ := env.food.CreateList(ctx, aliceID, "Groceries")
	milk, _ := env.food.AddItem(ctx, aliceID, list.ID, "Milk")

	rr := env.do(t, http.MethodPost, "/api/delete_list", map[string]any{"list_id": list.ID}, alice)
	require.Equal(t, http.StatusOK, rr.Code)

	items, err := env.food.ListItemsForList(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, http.StatusForbidden,
		env.do(t, http.MethodPost, "/api/edit_item", map[string]any{"id": milk.ID, "food_name": "x"}, alice).Code)
}

func TestEditAndDeleteItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	aliceID, alice := env.user(t, "alice")
	list, _ := env.food.CreateList(ctx, aliceID, "Groceries")
	milk, _ := env.food.AddItem(ctx, aliceID, list.ID, "Milk")
	bread, _ := env.food.AddItem(ctx, aliceID, list.ID, "Bread")

	rr := env.do(t, http.MethodPost, "/api/edit_item", map[string]any{"id": milk.ID, "food_name": ""}, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/edit_item", map[string]any{"id": milk.ID, "food_name": "Oat milk"}, alice)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/delete_item", map[string]any{"id": bread.ID}, alice)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/list_items/"+itoa(list.ID), nil, alice)
	assert.Equal(t, []item{{ID: milk.ID, FoodName: "Oat milk"}}, decode[[]item](t, rr))
}

func TestToggleItem_AcceptsBooleans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	aliceID, alice := env.user(t, "alice")
	list, _ := env.food.CreateList(ctx, aliceID, "Groceries")
	milk, _ := env.food.AddItem(ctx, aliceID, list.ID, "Milk")

	for _, tc := range []struct {
		body string
		want int
	}{
		{`{"id":%d,"is_checked":true}`, 1},
		{`{"id":%d,"is_checked":false}`, 0},
		{`{"id":"%d","is_checked":"1"}`, 1},
		{`{"id":%d}`, 0},
	} {
		body := sprintf(tc.body, milk.ID)
		rr := env.do(t, http.MethodPost, "/api/toggle_item", body, alice)
		require.Equal(t, http.StatusOK, rr.Code, body)

		rr = env.do(t, http.MethodGet, "/api/list_items/"+itoa(list.ID), nil, alice)
		items := decode[[]item](t, rr)
		require.Len(t, items, 1)
		assert.Equal(t, tc.want, items[0].IsChecked, body)
	}
}

func TestListsAndMyLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	aliceID, alice := env.user(t, "alice")
	bobID, _ := env.user(t, "bob")
	first, _ := env.food.CreateList(ctx, aliceID, "First")
	second, _ := env.food.CreateList(ctx, aliceID, "Second")
	env.food.CreateList(ctx, bobID, "Bob's")
	env.food.AddItem(ctx, aliceID, second.ID, "Rice")

	rr := env.do(t, http.MethodGet, "/api/lists", nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	lists := decode[[]map[string]any](t, rr)
	require.Len(t, lists, 2)
	assert.Equal(t, "Second", lists[0]["list_name"])
	assert.Equal(t, "First", lists[1]["list_name"])

	rr = env.do(t, http.MethodGet, "/api/my_lists", nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	type entry struct {
		List struct {
			ID int64 `json:"id"`
		} `json:"list"`
		Items []item `json:"items"`
	}
	mine := decode[[]entry](t, rr)
	require.Len(t, mine, 2)

	byID := map[int64][]item{}
	for _, e := range mine {
		byID[e.List.ID] = e.Items
	}
	assert.Empty(t, byID[first.ID])
	require.Len(t, byID[second.ID], 1)
	assert.Equal(t, "Rice", byID[second.ID][0].FoodName)
}

func TestCreateList_BlankName(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice")

	rr := env.do(t, http.MethodPost, "/api/create_list", map[string]string{"list_name": "   "}, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "list_name", decode[errorBody](t, rr).Field)
}

// =========================================================================
// RANDOM PICK AND HEALTH
// =========================================================================

func TestRandomPick(t *testing.T) {
	env := newTestEnv(t)
	aliceID, alice := env.user(t, "alice")

	rr := env.do(t, http.MethodGet, "/api/random_pick", nil, alice)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "catalog_empty", decode[errorBody](t, rr).Error)

	_, err := env.suggest.SeedCatalog(context.Background(), []string{"Bibimbap"})
	require.NoError(t, err)
	_, err = env.food.CreateList(context.Background(), aliceID, "Dinner")
	require.NoError(t, err)

	rr = env.do(t, http.MethodGet, "/api/random_pick", nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	var got struct {
		Food struct {
			FoodName string `json:"food_name"`
		} `json:"food"`
		Lists []map[string]any `json:"lists"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "Bibimbap", got.Food.FoodName)
	require.Len(t, got.Lists, 1)
	assert.Equal(t, "Dinner", got.Lists[0]["list_name"])
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, env.db.Close())
	rr = env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
