package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hozondb/hozon-db/pkg/compression"
	"github.com/hozondb/hozon-db/pkg/executor"
)

// queryRequest is the body of POST /query
type queryRequest struct {
	SQL string `json:"sql"`
}

// queryResult is the JSON shape of a statement result
type queryResult struct {
	Message string          `json:"message"`
	Columns []string        `json:"columns,omitempty"`
	Rows    [][]interface{} `json:"rows,omitempty"`
}

func newQueryResult(result *executor.Result) queryResult {
	out := queryResult{
		Message: result.Message,
		Columns: result.Columns,
	}
	for _, row := range result.Rows {
		values := make([]interface{}, len(row.Values))
		for i, value := range row.Values {
			values[i] = value.Native()
		}
		out.Rows = append(out.Rows, values)
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, s.db.Tables())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, s.db.Stats())
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.SQL == "" {
		WriteError(w, http.StatusBadRequest, "missing sql field")
		return
	}

	result, err := s.db.Exec(req.SQL)
	if err != nil {
		WriteError(w, statementErrorStatus(err), err.Error())
		return
	}
	WriteSuccess(w, newQueryResult(result))
}

func statementErrorStatus(err error) int {
	if errors.Is(err, executor.ErrTableNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	algorithm, err := compression.ParseAlgorithm(r.URL.Query().Get("algorithm"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="hozon.hzbk"`)
	if err := s.db.Backup(w, algorithm); err != nil {
		// Headers are out; all we can do is log and cut the stream.
		log.Printf("backup stream error for %s: %v", r.RemoteAddr, err)
	}
}
