package web

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/pregled/internal/auth"
	"github.com/erazemk/pregled/internal/db"
	"github.com/erazemk/pregled/internal/form"
	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/state"
	"github.com/erazemk/pregled/internal/store"
	"github.com/erazemk/pregled/internal/table"
)

const testJWTSecret = "test-secret"

type staticProducts []model.Product

func (s staticProducts) Products(context.Context) ([]model.Product, error) { return s, nil }

type fakeImages struct {
	calls atomic.Int32
	data  []byte
	err   error
}

func (f *fakeImages) FetchImage(context.Context, string) ([]byte, error) {
	f.calls.Add(1)
	return f.data, f.err
}

// rejectingUsers fails every create the way a remote user service does.
type rejectingUsers struct {
	*store.MemoryUsers
}

func (rejectingUsers) Create(context.Context, model.User) (model.User, error) {
	return model.User{}, &store.ServiceError{Status: http.StatusConflict, Message: "email already registered"}
}

type testEnv struct {
	handler http.Handler
	app     *state.App
	images  *fakeImages
	admin   string
	viewer  string
}

func testProducts() staticProducts {
	products := staticProducts{
		{ID: "1", Title: "Essence Mascara", Category: "beauty", Price: 9.99, Stock: 5, Rating: 4.5,
			Thumbnail: "https://img.example/1.png", AvailabilityStatus: model.AvailabilityLowStock,
			WarrantyInformation: "1 month warranty", Reviews: []model.Review{{Rating: 5, Comment: "Great!", ReviewerName: "Eleanor Collins"}}},
	}
	for i := 2; i <= 12; i++ {
		products = append(products, model.Product{
			ID:                 model.ID(fmt.Sprint(i)),
			Title:              fmt.Sprintf("Product %02d", i),
			Category:           "groceries",
			Price:              float64(i),
			Stock:              100,
			AvailabilityStatus: model.AvailabilityInStock,
		})
	}
	return products
}

func testUsers() []model.User {
	first := []string{"Emily", "Michael", "Sophia", "James", "Emma", "Olivia", "Alexander", "Ava", "Ethan", "Isabella"}
	users := make([]model.User, len(first))
	for i, name := range first {
		users[i] = model.User{
			ID:          model.ID(fmt.Sprint(i + 1)),
			FirstName:   name,
			LastName:    "Smith",
			Age:         20 + i,
			Gender:      "female",
			Email:       strings.ToLower(name) + "@x.dummyjson.com",
			Phone:       "+1 555 0100",
			DateOfBirth: "1990-01-02",
			Role:        model.RoleUser,
		}
	}
	return users
}

func setupWithUsers(t *testing.T, users store.Users) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)

	app := state.New(testProducts(), users, nil)
	require.NoError(t, app.Load(context.Background()))

	images := &fakeImages{data: testPNG(t, 200, 100)}
	handler, err := NewRouter(Config{
		DB:        database,
		JWTSecret: testJWTSecret,
		App:       app,
		Images:    images,
		Storage:   store.KindMemory,
	})
	require.NoError(t, err)

	return &testEnv{
		handler: handler,
		app:     app,
		images:  images,
		admin:   operatorToken(t, database, "admin", model.RoleAdmin),
		viewer:  operatorToken(t, database, "viewer", model.RoleUser),
	}
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	users, err := store.NewMemoryUsers(testUsers())
	require.NoError(t, err)
	return setupWithUsers(t, users)
}

func operatorToken(t *testing.T, database *sql.DB, username, role string) string {
	t.Helper()
	hash, err := auth.HashPassword("password")
	require.NoError(t, err)
	op, err := store.CreateOperator(context.Background(), database, username, hash, role)
	require.NoError(t, err)
	token, err := auth.GenerateToken(testJWTSecret, op)
	require.NoError(t, err)
	return token
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// do sends a request with the session cookie of token, if any. Form values
// are sent as a POST body.
func (e *testEnv) do(method, target, token string, values url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if values != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func cookieValue(rec *httptest.ResponseRecorder, name string) (string, bool) {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func rowCount(body string) int {
	return strings.Count(body, `<tr class="clickable"`)
}

func userDraft(first, last string) url.Values {
	return url.Values{
		"firstName":   {first},
		"lastName":    {last},
		"age":         {"30"},
		"gender":      {"female"},
		"email":       {"ada@example.com"},
		"phone":       {"+44 20 7946 0000"},
		"dateOfBirth": {"1815-12-10"},
		"role":        {"user"},
	}
}

func findUser(app *state.App, first string) (model.User, bool) {
	for _, u := range app.Users() {
		if u.FirstName == first {
			return u, true
		}
	}
	return model.User{}, false
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	env := setup(t)

	for _, path := range []string{"/", "/products", "/users", "/settings"} {
		rec := env.do("GET", path, "", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}

	rec := env.do("GET", "/", "not-a-token", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	value, ok := cookieValue(rec, tokenCookie)
	assert.True(t, ok, "invalid cookie should be cleared")
	assert.Empty(t, value)
}

func TestLoginFlow(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/login", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="username"`)

	rec = env.do("POST", "/login", "", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong username or password.")

	rec = env.do("POST", "/login", "", url.Values{"username": {"admin"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do("POST", "/login", "", url.Values{"username": {"admin"}, "password": {"password"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	token, ok := cookieValue(rec, tokenCookie)
	require.True(t, ok)

	rec = env.do("GET", "/", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	env := setup(t)

	rec := env.do("POST", "/logout", env.admin, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = env.do("GET", "/", env.admin, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code, "revoked token must not be accepted")
}

func TestDashboard(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Total products")
	assert.Contains(t, body, ">12<")
	assert.Contains(t, body, ">10<")
	assert.Contains(t, body, "Revenue by category")
	assert.Contains(t, body, "Groceries")
	assert.Contains(t, body, "Beauty")
	assert.NotContains(t, body, "could not be loaded")
}

func TestDashboardPreviewsFirstRows(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/", env.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Recent products")
	assert.Contains(t, body, "Essence Mascara")
	assert.Contains(t, body, "Product 05")
	assert.NotContains(t, body, "Product 06")
	assert.Contains(t, body, `data-href="/products/1"`)
	assert.Contains(t, body, `href="/products"`)

	assert.Contains(t, body, "Recent users")
	assert.Contains(t, body, "Emily Smith")
	assert.Contains(t, body, "Emma Smith")
	assert.NotContains(t, body, "Olivia")
	assert.Contains(t, body, "modal=view")
	assert.Contains(t, body, `href="/users"`)

	assert.Equal(t, 2*previewSize, rowCount(body))
}

func TestDashboardShowsLoadErrors(t *testing.T) {
	database := db.NewTestDB(t)
	users, err := store.NewMemoryUsers(nil)
	require.NoError(t, err)

	failing := productSourceFunc(func(context.Context) ([]model.Product, error) {
		return nil, errors.New("catalog unreachable")
	})
	app := state.New(failing, users, nil)
	assert.Error(t, app.Load(context.Background()))

	handler, err := NewRouter(Config{DB: database, JWTSecret: testJWTSecret, App: app})
	require.NoError(t, err)
	env := &testEnv{handler: handler, app: app, admin: operatorToken(t, database, "admin", model.RoleAdmin)}

	rec := env.do("GET", "/", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Products could not be loaded: ")
	assert.Contains(t, rec.Body.String(), "catalog unreachable")

	rec = env.do("GET", "/products", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data available.")
	assert.Zero(t, rowCount(rec.Body.String()))
}

type productSourceFunc func(context.Context) ([]model.Product, error)

func (f productSourceFunc) Products(ctx context.Context) ([]model.Product, error) { return f(ctx) }

func TestProductsPagination(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/products", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, DefaultProductPageSize, rowCount(body))
	assert.Contains(t, body, `class="pagination"`)
	assert.Contains(t, body, "Showing 1–10 of 12")

	rec = env.do("GET", "/products?page=2", env.admin, nil)
	assert.Equal(t, 2, rowCount(rec.Body.String()))

	// Pages past the end are clamped to the last page.
	rec = env.do("GET", "/products?page=99", env.admin, nil)
	assert.Equal(t, 2, rowCount(rec.Body.String()))
	assert.Contains(t, rec.Body.String(), "Showing 11–12 of 12")
}

func TestProductsSearchAndSort(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/products?q=MASCARA", env.admin, nil)
	body := rec.Body.String()
	assert.Equal(t, 1, rowCount(body))
	assert.Contains(t, body, "Essence Mascara")
	assert.NotContains(t, body, `class="pagination"`)

	rec = env.do("GET", "/products?q=nothing-matches", env.admin, nil)
	assert.Contains(t, rec.Body.String(), "No products match your search.")

	rec = env.do("GET", "/products?sort=price&dir=desc", env.admin, nil)
	body = rec.Body.String()
	assert.Less(t, strings.Index(body, "Product 12"), strings.Index(body, "Product 11"))
	assert.Contains(t, body, "$12")
}

func TestProductDetail(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/products/1", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Essence Mascara")
	assert.Contains(t, body, "1 month warranty")
	assert.Contains(t, body, "Eleanor Collins")
	assert.Contains(t, body, "/products/1/thumbnail?size=detail")

	rec = env.do("GET", "/products/999", env.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductThumbnail(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/products/1/thumbnail", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	img, format, err := image.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 96, img.Bounds().Dx())

	rec = env.do("GET", "/products/1/thumbnail", env.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), env.images.calls.Load(), "second request is served from cache")

	rec = env.do("GET", "/products/1/thumbnail?size=detail", env.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), env.images.calls.Load())

	// Product 2 has no thumbnail URL.
	rec = env.do("GET", "/products/2/thumbnail", env.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductThumbnailUpstreamFailure(t *testing.T) {
	env := setup(t)
	env.images.data, env.images.err = nil, errors.New("connection refused")

	rec := env.do("GET", "/products/1/thumbnail", env.admin, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	env.images.data, env.images.err = []byte("GIF89a not really"), nil
	rec = env.do("GET", "/products/1/thumbnail", env.admin, nil)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUsersPagination(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/users", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, rowCount(rec.Body.String()))
	assert.Contains(t, rec.Body.String(), "Showing 1–8 of 10")

	rec = env.do("GET", "/users?page=2", env.admin, nil)
	assert.Equal(t, 2, rowCount(rec.Body.String()))
	assert.Contains(t, rec.Body.String(), "Ethan")
	assert.Contains(t, rec.Body.String(), "Isabella")
}

func TestUsersSearchByFirstName(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/users?q=em", env.admin, nil)
	body := rec.Body.String()
	// Emily and Emma match; Smith in the last name must not.
	assert.Equal(t, 2, rowCount(body))
	assert.NotContains(t, body, `class="pagination"`)
}

func TestUsersActionsDependOnRole(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/users", env.admin, nil)
	body := rec.Body.String()
	assert.Contains(t, body, `data-action="edit"`)
	assert.Contains(t, body, `data-action="delete"`)
	assert.Contains(t, body, "Add user")

	rec = env.do("GET", "/users", env.viewer, nil)
	body = rec.Body.String()
	assert.Contains(t, body, `data-action="view"`)
	assert.NotContains(t, body, `data-action="edit"`)
	assert.NotContains(t, body, `data-action="delete"`)
	assert.NotContains(t, body, "Add user")
}

func TestUsersModalFromQuery(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/users?modal=create", env.admin, nil)
	assert.Contains(t, rec.Body.String(), "<h2>Add user</h2>")

	rec = env.do("GET", "/users?modal=edit&id=2", env.admin, nil)
	body := rec.Body.String()
	assert.Contains(t, body, "Edit user")
	assert.Contains(t, body, `value="Michael"`)
	assert.Contains(t, body, `action="/users/2"`)

	rec = env.do("GET", "/users?modal=delete&id=2", env.admin, nil)
	assert.Contains(t, rec.Body.String(), `action="/users/2/delete"`)

	// Viewers get the read-only dialog instead.
	rec = env.do("GET", "/users?modal=edit&id=2", env.viewer, nil)
	body = rec.Body.String()
	assert.NotContains(t, body, "Edit user")
	assert.Contains(t, body, "Michael Smith")
	assert.NotContains(t, body, `action="/users/2"`)

	rec = env.do("GET", "/users?modal=create", env.viewer, nil)
	assert.NotContains(t, rec.Body.String(), `class="modal"`)

	rec = env.do("GET", "/users?modal=view&id=missing", env.admin, nil)
	assert.NotContains(t, rec.Body.String(), `class="modal"`)
}

func TestCreateUser(t *testing.T) {
	env := setup(t)

	values := userDraft("Ada", "Lovelace")
	values.Set("page", "2")
	rec := env.do("POST", "/users", env.admin, values)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/users?page=2", rec.Header().Get("Location"))

	flash, ok := cookieValue(rec, flashCookie)
	require.True(t, ok)
	assert.Contains(t, flash, "Ada")

	u, ok := findUser(env.app, "Ada")
	require.True(t, ok)
	assert.Equal(t, 30, u.Age)
	assert.Equal(t, "Lovelace", u.LastName)
	assert.NotEmpty(t, u.ID)
	assert.Len(t, env.app.Users(), 11)
}

func TestCreateUserInvalidKeepsDraft(t *testing.T) {
	env := setup(t)

	values := userDraft("Ada", "")
	values.Set("email", "not-an-email")
	rec := env.do("POST", "/users", env.admin, values)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `class="modal"`)
	assert.Contains(t, body, `value="Ada"`)
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "Enter a valid email address.")
	assert.Len(t, env.app.Users(), 10, "no user is stored")
}

func TestCreateUserServiceError(t *testing.T) {
	users, err := store.NewMemoryUsers(testUsers())
	require.NoError(t, err)
	env := setupWithUsers(t, rejectingUsers{users})

	rec := env.do("POST", "/users", env.admin, userDraft("Ada", "Lovelace"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "email already registered")
	assert.Contains(t, body, `value="Lovelace"`, "draft survives the failure")
}

func TestUpdateUser(t *testing.T) {
	env := setup(t)

	values := userDraft("Michael", "Williams")
	rec := env.do("POST", "/users/2", env.admin, values)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	u, ok := env.app.User("2")
	require.True(t, ok)
	assert.Equal(t, "Williams", u.LastName)
	assert.Equal(t, model.ID("2"), u.ID)
	assert.Equal(t, "Michael", env.app.Users()[1].FirstName, "position kept")

	rec = env.do("POST", "/users/missing", env.admin, values)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	env := setup(t)

	rec := env.do("POST", "/users/3/delete", env.admin, url.Values{"confirm": {"no"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok := env.app.User("3")
	assert.True(t, ok, "declined delete keeps the user")
	_, hasFlash := cookieValue(rec, flashCookie)
	assert.False(t, hasFlash)

	rec = env.do("POST", "/users/3/delete", env.admin, url.Values{"confirm": {"yes"}, "page": {"2"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users?page=2", rec.Header().Get("Location"))
	_, ok = env.app.User("3")
	assert.False(t, ok)
	assert.Len(t, env.app.Users(), 9)
}

func TestDeleteLastUserOnPageClampsPage(t *testing.T) {
	env := setup(t)

	for _, id := range []string{"9", "10"} {
		rec := env.do("POST", "/users/"+id+"/delete", env.admin, url.Values{"confirm": {"yes"}, "page": {"2"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}

	rec := env.do("GET", "/users?page=2", env.admin, nil)
	assert.Equal(t, 8, rowCount(rec.Body.String()))
	assert.NotContains(t, rec.Body.String(), `class="pagination"`)
}

func TestViewerCannotMutateUsers(t *testing.T) {
	env := setup(t)

	rec := env.do("POST", "/users", env.viewer, userDraft("Ada", "Lovelace"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do("POST", "/users/1", env.viewer, userDraft("Ada", "Lovelace"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do("POST", "/users/1/delete", env.viewer, url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, env.app.Users(), 10)
}

func TestRefresh(t *testing.T) {
	env := setup(t)

	rec := env.do("POST", "/refresh", env.admin, url.Values{"next": {"/products?page=2"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products?page=2", rec.Header().Get("Location"))
	flash, ok := cookieValue(rec, flashCookie)
	require.True(t, ok)
	assert.Contains(t, flash, "success")

	rec = env.do("POST", "/refresh", env.admin, url.Values{"next": {"//evil.example"}})
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestFlashIsShownOnce(t *testing.T) {
	env := setup(t)

	req := httptest.NewRequest("GET", "/users", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: env.admin})
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: url.QueryEscape("success:Created Ada Lovelace.")})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "Created Ada Lovelace.")
	value, ok := cookieValue(rec, flashCookie)
	assert.True(t, ok, "flash cookie is cleared")
	assert.Empty(t, value)
}

func TestPopFlashRejectsUnknownKinds(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: url.QueryEscape("warning:hello")})
	assert.Nil(t, popFlash(httptest.NewRecorder(), req))

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: url.QueryEscape("error:boom")})
	assert.Equal(t, &Flash{Kind: "error", Message: "boom"}, popFlash(httptest.NewRecorder(), req))
}

func TestSettingsChangePassword(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/settings", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), store.KindMemory)

	rec = env.do("POST", "/settings", env.admin, url.Values{
		"current_password": {"wrong"}, "new_password": {"newpassword"}, "confirm_password": {"newpassword"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do("POST", "/settings", env.admin, url.Values{
		"current_password": {"password"}, "new_password": {"short"}, "confirm_password": {"short"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do("POST", "/settings", env.admin, url.Values{
		"current_password": {"password"}, "new_password": {"newpassword"}, "confirm_password": {"different"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do("POST", "/settings", env.admin, url.Values{
		"current_password": {"password"}, "new_password": {"newpassword"}, "confirm_password": {"newpassword"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password changed.")

	rec = env.do("POST", "/login", "", url.Values{"username": {"admin"}, "password": {"newpassword"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	env := setup(t)

	rec := env.do("GET", "/static/app.js", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-action")
}

func TestListQueryURLs(t *testing.T) {
	q := parseListQuery("/users", url.Values{"q": {" ada "}, "page": {"3"}, "sort": {"age"}, "dir": {"desc"}})
	assert.Equal(t, "ada", q.Search)
	assert.Equal(t, 3, q.Page)

	assert.Equal(t, "/users?dir=desc&page=3&q=ada&sort=age", q.URL())
	assert.Equal(t, "/users?dir=desc&q=ada&sort=age", q.PageURL(1))
	assert.Equal(t, "/users?dir=asc&q=ada&sort=name", q.SortURL(table.Sort{Key: "name"}))
	assert.Equal(t, "/users?dir=desc&id=7&modal=edit&page=3&q=ada&sort=age", q.ModalURL(form.Editing, "7"))
	assert.Equal(t, map[string]string{"q": "ada", "page": "3", "sort": "age", "dir": "desc"}, q.Hidden())

	q = parseListQuery("/products", url.Values{"page": {"-1"}})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, "/products", q.URL())
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/users?page=2", safeRedirect("/users?page=2", "/"))
	assert.Equal(t, "/", safeRedirect("https://evil.example", "/"))
	assert.Equal(t, "/", safeRedirect("//evil.example", "/"))
	assert.Equal(t, "/", safeRedirect(`/\evil.example`, "/"))
	assert.Equal(t, "/", safeRedirect("", "/"))
}

func TestTemplateFuncs(t *testing.T) {
	assert.Equal(t, "$1,234.50", money(1234.5))
	assert.Equal(t, "$9.99", money(9.99))
	assert.Equal(t, "★★★★☆", stars(4.2))
	assert.Equal(t, "☆☆☆☆☆", stars(-1))
	assert.Equal(t, "badge-warn", availabilityClass(model.AvailabilityLowStock))
}
