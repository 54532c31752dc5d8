package game

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/jaredblack/trivia-wizard-2/trivia"
	"github.com/jaredblack/trivia-wizard-2/trivia/game/message"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The game is driven by a separately hosted frontend, so cross
		// origin upgrades have to be allowed.
		return true
	},
}

type handler struct {
	set       *GameSet
	validator trivia.TokenValidator
}

// NewHandler creates the websocket acceptor for the game endpoint, plus the
// health check used by the hosting environment.
func NewHandler(set *GameSet, validator trivia.TokenValidator) http.Handler {
	h := &handler{set: set, validator: validator}
	r := mux.NewRouter()
	r.HandleFunc("/v1/game/ws", h.enterGame).Methods("GET")
	r.HandleFunc("/health", h.health).Methods("GET")
	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// authenticate extracts and validates the token query parameter. A missing
// or invalid token is not an error at this layer; it just yields no
// identity, and host entry later refuses the connection.
func (h *handler) authenticate(r *http.Request) *trivia.AuthResult {
	token := r.URL.Query().Get("token")
	if token == "" {
		return nil
	}
	result, err := h.validator.Validate(token)
	if err != nil {
		logger.Warn("token validation failed: %s", err)
		return nil
	}
	return result
}

// enterGame upgrades the connection, reads the first client message, and
// routes it to the role handler. When the role handler returns the
// connection is done and the idle supervisor gets a chance to arm.
func (h *handler) enterGame(w http.ResponseWriter, r *http.Request) {
	auth := h.authenticate(r)

	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("error occurred while upgrading to ws conn: %s", err)
		return
	}

	conn := NewConn(rawConn)
	conn.setupHeartbeat()
	go conn.StartWriteLoop()
	defer conn.Close()

	text, err := conn.ReadText()
	if err != nil {
		logger.Debug("connection %s dropped before selecting a role", conn.ID)
		return
	}

	decoded, err := message.DecodeClientMessage([]byte(text))
	if err != nil {
		logger.Warn("failed to parse first message: %s", err)
		conn.Send(message.NewErrorf("Invalid JSON: %s", err))
		return
	}

	switch action := decoded.(type) {
	case *message.CreateGame:
		h.hostEntry(conn, auth, action)
	case *message.ValidateJoin:
		h.teamEntry(conn, action)
	case *message.WatchGame:
		h.watcherEntry(conn, action)
	default:
		logger.Warn("unexpected first message of type %T from connection %s", decoded, conn.ID)
		conn.Send(message.NewError("First message must select a role"))
		return
	}

	h.set.CheckIdle()
}
