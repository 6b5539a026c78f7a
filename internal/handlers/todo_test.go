package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"taskboard/internal/dto"
	"taskboard/internal/storage"
	"taskboard/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTodoRouter(t *testing.T) *gin.Engine {
	t.Helper()
	fs, err := storage.NewFileStorage(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStorage failed: %v", err)
	}
	s := store.New(fs, store.Options{})
	s.Init(context.Background())

	h := NewTodoHandler(s)
	r := gin.New()
	r.POST("/todos", h.Create)
	r.GET("/todos", h.List)
	r.GET("/todos/stats", h.Stats)
	r.GET("/todos/:id", h.GetByID)
	r.PATCH("/todos/:id", h.Update)
	r.DELETE("/todos/:id", h.Delete)
	r.POST("/todos/:id/complete", h.Complete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTodo(t *testing.T, r *gin.Engine, body string) dto.TodoResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/todos", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: code = %d, body = %s", w.Code, w.Body.String())
	}
	var resp dto.TodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	return resp
}

func TestCreateAndList(t *testing.T) {
	r := newTodoRouter(t)

	created := createTodo(t, r, `{"title":"Buy milk","priority":"low","assignedTo":1}`)
	if created.Status != "todo" {
		t.Errorf("Status = %q, want %q", created.Status, "todo")
	}
	if created.ID == 0 {
		t.Error("ID not assigned")
	}

	w := doJSON(t, r, http.MethodGet, "/todos", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: code = %d", w.Code)
	}
	var list dto.ListTodosResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != created.ID {
		t.Errorf("list = %+v, want the created record", list.Items)
	}
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	r := newTodoRouter(t)
	if w := doJSON(t, r, http.MethodPost, "/todos", `{"priority":"low"}`); w.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/todos", `{"title":"x","priority":"urgent"}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad priority: code = %d, want 400", w.Code)
	}
}

func TestListFilters(t *testing.T) {
	r := newTodoRouter(t)

	createTodo(t, r, `{"title":"low one","priority":"low"}`)
	high := createTodo(t, r, `{"title":"high one","priority":"high"}`)

	w := doJSON(t, r, http.MethodGet, "/todos?priority=high", "")
	if w.Code != http.StatusOK {
		t.Fatalf("filter: code = %d", w.Code)
	}
	var list dto.ListTodosResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != high.ID {
		t.Errorf("priority filter = %+v, want only the high record", list.Items)
	}

	if w := doJSON(t, r, http.MethodGet, "/todos?status=bogus", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bogus status: code = %d, want 400", w.Code)
	}
}

func TestUpdateCompleteDelete(t *testing.T) {
	r := newTodoRouter(t)

	created := createTodo(t, r, `{"title":"task","priority":"medium"}`)
	path := "/todos/" + strconv.FormatInt(created.ID, 10)

	w := doJSON(t, r, http.MethodPatch, path, `{"status":"in-progress"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: code = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, path+"/complete", "")
	if w.Code != http.StatusOK {
		t.Fatalf("complete: code = %d", w.Code)
	}
	var completed dto.TodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &completed); err != nil {
		t.Fatalf("unmarshal complete: %v", err)
	}
	if completed.Status != "done" {
		t.Errorf("Status = %q, want %q", completed.Status, "done")
	}

	w = doJSON(t, r, http.MethodDelete, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: code = %d", w.Code)
	}
	var del dto.DeleteTodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &del); err != nil {
		t.Fatalf("unmarshal delete: %v", err)
	}
	if !del.Deleted {
		t.Error("Deleted = false, want true")
	}

	// Idempotent: the second delete reports false.
	w = doJSON(t, r, http.MethodDelete, path, "")
	if err := json.Unmarshal(w.Body.Bytes(), &del); err != nil {
		t.Fatalf("unmarshal second delete: %v", err)
	}
	if del.Deleted {
		t.Error("second delete: Deleted = true, want false")
	}
}

func TestStatsEndpoint(t *testing.T) {
	r := newTodoRouter(t)

	first := createTodo(t, r, `{"title":"one","priority":"high"}`)
	createTodo(t, r, `{"title":"two","priority":"low"}`)
	doJSON(t, r, http.MethodPost, "/todos/"+strconv.FormatInt(first.ID, 10)+"/complete", "")

	w := doJSON(t, r, http.MethodGet, "/todos/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats: code = %d", w.Code)
	}
	var st dto.StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if st.Total != 2 || st.Completed != 1 || st.HighPriority != 1 {
		t.Errorf("stats = %+v, want total 2, completed 1, highPriority 1", st)
	}
	if st.CompletionRate != 50 {
		t.Errorf("CompletionRate = %v, want 50", st.CompletionRate)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	r := newTodoRouter(t)

	if w := doJSON(t, r, http.MethodGet, "/todos/12345", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing id: code = %d, want 404", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/todos/abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: code = %d, want 400", w.Code)
	}
}
