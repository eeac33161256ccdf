package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (can be restricted in production)
		return true
	},
}

// statementResponse is one message in a websocket statement stream
type statementResponse struct {
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Columns []string        `json:"columns,omitempty"`
	Rows    [][]interface{} `json:"rows,omitempty"`
}

// handleStatementStream upgrades the connection and runs each received text
// message as one SQL statement, replying with a JSON result per statement.
// Statement errors go back over the socket; only transport errors end the
// session.
func (s *Server) handleStatementStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var response statementResponse
		result, err := s.db.Exec(string(payload))
		if err != nil {
			response = statementResponse{Error: err.Error()}
		} else {
			out := newQueryResult(result)
			response = statementResponse{
				OK:      true,
				Message: out.Message,
				Columns: out.Columns,
				Rows:    out.Rows,
			}
		}

		if err := conn.WriteJSON(response); err != nil {
			log.Printf("websocket write error: %v", err)
			return
		}
	}
}
