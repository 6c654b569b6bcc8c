package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

var backendSecret = []byte("backend-test-secret")

type backendUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	password string
}

// BackendNote is the stored shape of a note in the fake backend.
type BackendNote struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	OwnerID int    `json:"owner_id"`
}

// Backend is an in-process stand-in for the notes REST API.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]*backendUser // by email
	notes    map[int]*BackendNote
	nextUser int
	nextNote int
	calls    map[string]int
	failures map[string]int // "METHOD /path-prefix" -> status to answer with
}

// NewBackend starts a fake backend that is closed with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		users:    make(map[string]*backendUser),
		notes:    make(map[int]*BackendNote),
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/signup", b.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", b.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", b.auth(b.handleMe)).Methods(http.MethodGet)
	r.HandleFunc("/notes/", b.auth(b.handleList)).Methods(http.MethodGet)
	r.HandleFunc("/notes/", b.auth(b.handleCreate)).Methods(http.MethodPost)
	r.HandleFunc("/notes/{id}", b.auth(b.handleUpdate)).Methods(http.MethodPut)
	r.HandleFunc("/notes/{id}", b.auth(b.handleDelete)).Methods(http.MethodDelete)
	r.Use(b.count)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

// AddUser registers an account directly.
func (b *Backend) AddUser(name, email, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addUserLocked(name, email, password)
}

func (b *Backend) addUserLocked(name, email, password string) *backendUser {
	b.nextUser++
	u := &backendUser{ID: b.nextUser, Name: name, Email: email, password: password}
	b.users[email] = u
	return u
}

// Token issues a token for an existing account.
func (b *Backend) Token(email string, ttl time.Duration) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[email]
	if u == nil {
		return ""
	}
	return issue(u.ID, ttl)
}

// Fail makes requests whose "METHOD path" starts with prefix answer status.
// Status 0 clears the failure.
func (b *Backend) Fail(prefix string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, prefix)
		return
	}
	b.failures[prefix] = status
}

// Calls returns how many requests matched "METHOD path" exactly.
func (b *Backend) Calls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

// Notes returns the stored notes of an account, newest first.
func (b *Backend) Notes(email string) []BackendNote {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[email]
	if u == nil {
		return nil
	}
	return b.listLocked(u.ID)
}

func (b *Backend) listLocked(owner int) []BackendNote {
	var out []BackendNote
	for _, n := range b.notes {
		if n.OwnerID == owner {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func issue(userID int, ttl time.Duration) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	s, _ := tok.SignedString(backendSecret)
	return s
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.calls[key]++
		status := 0
		for prefix, s := range b.failures {
			if strings.HasPrefix(key, prefix) {
				status = s
			}
		}
		b.mu.Unlock()
		if status != 0 {
			respondError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) auth(next func(http.ResponseWriter, *http.Request, int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return backendSecret, nil })
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		id, err := strconv.Atoi(claims.Subject)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r, id)
	}
}

func (b *Backend) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		respondError(w, http.StatusUnprocessableEntity, "Invalid request payload")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[in.Email]; exists {
		respondError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := b.addUserLocked(in.Name, in.Email, in.Password)
	respondJSON(w, http.StatusOK, u)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid form")
		return
	}
	b.mu.Lock()
	u := b.users[r.PostForm.Get("username")]
	b.mu.Unlock()
	if u == nil || u.password != r.PostForm.Get("password") {
		respondError(w, http.StatusUnauthorized, "Incorrect e-mail or password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"access_token": issue(u.ID, 30*time.Minute),
		"token_type":   "bearer",
	})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request, uid int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == uid {
			respondJSON(w, http.StatusOK, u)
			return
		}
	}
	respondError(w, http.StatusUnauthorized, "Could not validate credentials")
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request, uid int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	notes := b.listLocked(uid)
	if notes == nil {
		notes = []BackendNote{}
	}
	respondJSON(w, http.StatusOK, notes)
}

func (b *Backend) handleCreate(w http.ResponseWriter, r *http.Request, uid int) {
	var in struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid request payload")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextNote++
	n := &BackendNote{ID: b.nextNote, Title: in.Title, Content: in.Content, OwnerID: uid}
	b.notes[n.ID] = n
	respondJSON(w, http.StatusCreated, n)
}

func (b *Backend) lookup(r *http.Request, uid int) (*BackendNote, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return nil, false
	}
	n, ok := b.notes[id]
	if !ok || n.OwnerID != uid {
		return nil, false
	}
	return n, true
}

func (b *Backend) handleUpdate(w http.ResponseWriter, r *http.Request, uid int) {
	var in struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid request payload")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.lookup(r, uid)
	if !ok {
		respondError(w, http.StatusNotFound, "Note not found")
		return
	}
	n.Title, n.Content = in.Title, in.Content
	respondJSON(w, http.StatusOK, n)
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request, uid int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.lookup(r, uid)
	if !ok {
		respondError(w, http.StatusNotFound, "Note not found")
		return
	}
	delete(b.notes, n.ID)
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}

// String describes the backend for test failure messages.
func (b *Backend) String() string {
	return fmt.Sprintf("fake backend at %s", b.URL)
}
