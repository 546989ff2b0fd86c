package e2e

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-relay/auth"
	"chat-relay/domain"
)

// BaseWsSuite dials websocket sessions against a running relay. Tokens
// are minted locally with the deployment's shared secret.
type BaseWsSuite struct {
	suite.Suite
	Config Config
	auth   *auth.Authenticator
}

func (s *BaseWsSuite) SetupSuite() {
	cfg, err := LoadConfig()
	s.Require().NoError(err)
	if cfg.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR not set, skipping end to end suite")
	}
	s.Config = cfg
	s.auth = auth.NewAuthenticator(cfg.TokenSecret, time.Minute)
}

// DialRoom opens an authenticated session and registers its teardown.
func (s *BaseWsSuite) DialRoom(room domain.RoomID, userID string) *websocket.Conn {
	token, err := s.auth.GenerateToken(userID, userID+"@e2e.local")
	s.Require().NoError(err)

	url := "ws://" + s.Config.RelayAddr + "/ws/" + room.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{
		"Authorization": []string{"Bearer " + token},
	})
	s.Require().NoError(err, "Failed to attach session for %s", userID)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *BaseWsSuite) SendFrame(conn *websocket.Conn, frame string) {
	if s.Config.DebugFrames {
		s.T().Logf(">> %s", frame)
	}
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func (s *BaseWsSuite) ReadFrame(conn *websocket.Conn) string {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	if s.Config.DebugFrames {
		s.T().Logf("<< %s", data)
	}
	return string(data)
}

func (s *BaseWsSuite) NewRoom() domain.RoomID {
	return uuid.New()
}
