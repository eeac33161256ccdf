package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/hozondb/hozon-db/pkg/backup"
	"github.com/hozondb/hozon-db/pkg/storage"
)

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()

	config := DefaultConfig()
	config.DatabasePath = filepath.Join(t.TempDir(), "test.db")
	config.EnableLogging = false
	if mutate != nil {
		mutate(config)
	}

	srv, err := New(config)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	t.Cleanup(func() { srv.Database().Close() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec, decoded
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, body := doJSON(t, srv, http.MethodGet, "/_health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, _ := doJSON(t, srv, http.MethodPost, "/query", `{"sql":"CREATE TABLE users (id INTEGER, name TEXT);"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = doJSON(t, srv, http.MethodPost, "/query", `{"sql":"INSERT INTO users VALUES (1, 'Alice');"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("insert returned %d: %s", rec.Code, rec.Body.String())
	}

	rec, body := doJSON(t, srv, http.MethodPost, "/query", `{"sql":"SELECT * FROM users;"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("select returned %d: %s", rec.Code, rec.Body.String())
	}
	result := body["result"].(map[string]interface{})
	rows := result["rows"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %v", rows)
	}
	row := rows[0].([]interface{})
	if row[0].(float64) != 1 || row[1].(string) != "Alice" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestQueryEndpointErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, _ := doJSON(t, srv, http.MethodPost, "/query", `{"sql":"SELECT * FROM missing;"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing table, got %d", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/query", `{"sql":"SELECT * FROM"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for parse error, got %d", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/query", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing sql, got %d", rec.Code)
	}
}

func TestTablesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	doJSON(t, srv, http.MethodPost, "/query", `{"sql":"CREATE TABLE b (x INTEGER);"}`)
	doJSON(t, srv, http.MethodPost, "/query", `{"sql":"CREATE TABLE a (y TEXT);"}`)

	rec, body := doJSON(t, srv, http.MethodGet, "/_tables", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	tables := body["result"].([]interface{})
	if len(tables) != 2 || tables[0] != "a" || tables[1] != "b" {
		t.Errorf("unexpected tables: %v", tables)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, body := doJSON(t, srv, http.MethodGet, "/_stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := body["result"].(map[string]interface{})
	if result["pages"].(float64) != 2 {
		t.Errorf("unexpected stats: %v", result)
	}
}

func TestBackupEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	doJSON(t, srv, http.MethodPost, "/query", `{"sql":"CREATE TABLE users (id INTEGER);"}`)

	req := httptest.NewRequest(http.MethodGet, "/_backup?algorithm=gzip", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("unexpected content type %q", ct)
	}

	image, err := backup.Read(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("backup stream does not read back: %v", err)
	}
	if len(image)%storage.PageSize != 0 {
		t.Errorf("expected whole pages, got %d bytes", len(image))
	}
}

func TestBackupEndpointRejectsBadAlgorithm(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/_backup?algorithm=brotli", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBasicAuthProtectsRoutes(t *testing.T) {
	srv := newTestServer(t, func(c *Config) {
		c.Users = map[string]string{"admin": "secret"}
	})

	req := httptest.NewRequest(http.MethodGet, "/_health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/_health", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with credentials, got %d", rec.Code)
	}
}

func TestStatementStream(t *testing.T) {
	srv := newTestServer(t, nil)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/_ws/sql"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	send := func(stmt string) statementResponse {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(stmt)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		var response statementResponse
		if err := conn.ReadJSON(&response); err != nil {
			t.Fatalf("read failed: %v", err)
		}
		return response
	}

	if r := send("CREATE TABLE users (id INTEGER, name TEXT);"); !r.OK {
		t.Fatalf("create failed over websocket: %s", r.Error)
	}
	if r := send("INSERT INTO users VALUES (1, 'Alice');"); !r.OK {
		t.Fatalf("insert failed over websocket: %s", r.Error)
	}

	r := send("SELECT name FROM users;")
	if !r.OK || len(r.Rows) != 1 || r.Rows[0][0].(string) != "Alice" {
		t.Errorf("unexpected select response: %+v", r)
	}

	// Statement errors keep the session alive.
	if r := send("SELECT * FROM missing;"); r.OK || r.Error == "" {
		t.Errorf("expected error response, got %+v", r)
	}
	if r := send("SELECT name FROM users;"); !r.OK {
		t.Errorf("expected session to continue after error, got %+v", r)
	}
}
