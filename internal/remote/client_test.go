package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/msomdec/user-desk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersFixture = `[
  {
    "id": 1,
    "name": "Leanne Graham",
    "username": "Bret",
    "email": "Sincere@april.biz",
    "address": {
      "street": "Kulas Light",
      "suite": "Apt. 556",
      "city": "Gwenborough",
      "zipcode": "92998-3874",
      "geo": {"lat": "-37.3159", "lng": "81.1496"}
    },
    "phone": "1-770-736-8031 x56442",
    "website": "hildegard.org",
    "company": {
      "name": "Romaguera-Crona",
      "catchPhrase": "Multi-layered client-server neural-net",
      "bs": "harness real-time e-markets"
    }
  },
  {"id": 2, "name": "Ervin Howell", "email": "Shanna@melissa.tv", "company": {"name": "Deckow-Crist"}}
]`

func TestList_HappyPath(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(usersFixture))
	}))
	defer ts.Close()

	client := New(WithBaseURL(ts.URL))
	users, err := client.List(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, "Leanne Graham", users[0].Name)
	assert.Equal(t, "Bret", users[0].Username)
	require.NotNil(t, users[0].Address)
	assert.Equal(t, "Gwenborough", users[0].Address.City)
	assert.Equal(t, "81.1496", users[0].Address.Geo.Lng)
	assert.Equal(t, "Romaguera-Crona", users[0].Department())
	assert.Nil(t, users[1].Address)
}

func TestCreate_SendsDraftBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada", body["firstName"])
		assert.Equal(t, "Lovelace", body["lastName"])
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Equal(t, "Engines", body["department"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 11, "email": "ada@example.com"}`))
	}))
	defer ts.Close()

	client := New(WithBaseURL(ts.URL + "/"))
	user, err := client.Create(context.Background(), domain.Draft{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Department: "Engines",
	})

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(11), user.ID)
}

func TestUpdate_PutsToUserPath(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/3", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 3, body["id"])
		assert.Equal(t, "Clementine", body["firstName"])

		w.Write([]byte(`{"id": 3}`))
	}))
	defer ts.Close()

	client := New(WithBaseURL(ts.URL))
	user, err := client.Update(context.Background(), domain.EditDraft{
		ID:    3,
		Draft: domain.Draft{FirstName: "Clementine", LastName: "Bauch"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
}

func TestDelete_EmptyBody(t *testing.T) {
	var called bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/users/7", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := New(WithBaseURL(ts.URL))
	require.NoError(t, client.Delete(context.Background(), 7))
	assert.True(t, called)
}

func TestStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := New(WithBaseURL(ts.URL))
	_, err := client.Update(context.Background(), domain.EditDraft{ID: 1700000000000})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemote))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "update user", statusErr.Op)
	assert.False(t, statusErr.NotFound())
	assert.Contains(t, statusErr.Error(), "HTTP 500")
}

func TestDecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	client := New(WithBaseURL(ts.URL))
	users, err := client.List(context.Background())

	require.Error(t, err)
	assert.Nil(t, users)
	assert.ErrorIs(t, err, domain.ErrRemote)
}

func TestTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := New(WithBaseURL(ts.URL), WithTimeout(20*time.Millisecond))
	_, err := client.List(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemote)
}

func TestUserAgentAndCustomHTTPClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "desk-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := New(
		WithHTTPClient(ts.Client()),
		WithBaseURL(ts.URL),
		WithUserAgent("desk-test/1.0"),
	)
	users, err := client.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestResponseSizeCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(usersFixture))
	}))
	defer ts.Close()

	client := New(WithBaseURL(ts.URL), WithMaxResponseBytes(64))
	_, err := client.List(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemote))
	assert.Contains(t, err.Error(), "exceeds 64 bytes")

	client = New(WithBaseURL(ts.URL), WithMaxResponseBytes(int64(len(usersFixture))))
	users, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
