package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterAndLogin(t *testing.T) {
	a := setupTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Julia",
		"last_name":  "Child",
		"password":   "long-enough-pw",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[types.UserResponse](t, w)
	assert.Equal(t, "cook", created.Username)
	assert.False(t, created.IsSubscribed)
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "cook@example.com",
		"password": "long-enough-pw",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[types.TokenResponse](t, w).AuthToken
	require.NotEmpty(t, token)

	w = a.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[types.UserResponse](t, w).ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a := setupTestAPI(t)
	testhelpers.CreateUser(t, a.db, "taken")

	w := a.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"email":      "taken@example.com",
		"username":   "fresh",
		"first_name": "A",
		"last_name":  "B",
		"password":   "long-enough-pw",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decode[map[string]string](t, w)["field"])
}

func TestLoginWrongPassword(t *testing.T) {
	a := setupTestAPI(t)
	testhelpers.CreateUser(t, a.db, "cook")

	w := a.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "cook@example.com",
		"password": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	a := setupTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/users/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/users/me", "garbage", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/users", "garbage", nil).Code)
}

func TestListUsersPagination(t *testing.T) {
	a := setupTestAPI(t)
	for _, name := range []string{"alice", "bob", "carol"} {
		testhelpers.CreateUser(t, a.db, name)
	}

	w := a.do(t, http.MethodGet, "/api/users?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Paginated[types.UserResponse]](t, w)
	assert.EqualValues(t, 3, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "alice", page.Results[0].Username)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/users?limit=2&page=2", *page.Next)
	assert.Nil(t, page.Previous)

	w = a.do(t, http.MethodGet, "/api/users?limit=2&page=2", "", nil)
	page = decode[types.Paginated[types.UserResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/users?limit=2", *page.Previous)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/users?page=zero", "", nil).Code)
}

func TestGetUserUnknown(t *testing.T) {
	a := setupTestAPI(t)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/users/not-a-uuid", "", nil).Code)
	assert.Equal(t, http.StatusNotFound,
		a.do(t, http.MethodGet, "/api/users/00000000-0000-0000-0000-000000000001", "", nil).Code)
}

func TestSetPassword(t *testing.T) {
	a := setupTestAPI(t)
	user := testhelpers.CreateUser(t, a.db, "cook")
	token := a.token(t, user)

	w := a.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "another-long-pw",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "current_password", decode[map[string]string](t, w)["field"])

	w = a.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": testhelpers.TestPassword,
		"new_password":     "another-long-pw",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "cook@example.com",
		"password": "another-long-pw",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscriptions(t *testing.T) {
	a := setupTestAPI(t)
	reader := testhelpers.CreateUser(t, a.db, "reader")
	author := testhelpers.CreateUser(t, a.db, "author")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"Soup", "Salad", "Stew"} {
		testhelpers.CreateRecipe(t, a.db, author, name, base.Add(time.Duration(i)*time.Hour), nil)
	}
	token := a.token(t, reader)
	path := "/api/users/" + author.ID.String() + "/subscribe"

	w := a.do(t, http.MethodPost, path+"?recipes_limit=2", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[types.SubscriptionResponse](t, w)
	assert.True(t, sub.IsSubscribed)
	assert.EqualValues(t, 3, sub.RecipesCount)
	require.Len(t, sub.Recipes, 2)
	assert.Equal(t, "Stew", sub.Recipes[0].Name)

	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, path, token, nil).Code)

	self := "/api/users/" + reader.ID.String() + "/subscribe"
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, self, token, nil).Code)

	w = a.do(t, http.MethodGet, "/api/users/"+author.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.UserResponse](t, w).IsSubscribed)

	w = a.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[types.Paginated[types.SubscriptionResponse]](t, w)
	require.Len(t, list.Results, 1)
	assert.Len(t, list.Results[0].Recipes, 1)

	assert.Equal(t, http.StatusBadRequest,
		a.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=-1", token, nil).Code)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, path, token, nil).Code)
}
