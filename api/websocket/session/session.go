package session

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nknorg/ballot/common"
	"github.com/pborman/uuid"
)

const (
	writeTimeout = 10 * time.Second
)

type Session struct {
	sync.Mutex
	ws           *websocket.Conn
	sSessionId   string
	lastReadTime time.Time
	watched      map[common.Uint160]struct{}
}

func (s *Session) GetSessionId() string {
	return s.sSessionId
}

func newSession(wsConn *websocket.Conn) (session *Session, err error) {
	sSessionId := uuid.NewUUID().String()
	session = &Session{
		ws:           wsConn,
		sSessionId:   sSessionId,
		lastReadTime: time.Now(),
	}
	return session, nil
}

func (s *Session) close() {
	s.Lock()
	defer s.Unlock()
	if s.ws != nil {
		s.ws.Close()
		s.ws = nil
	}
	s.sSessionId = ""
}

func (s *Session) Send(msgType int, data []byte) error {
	s.Lock()
	defer s.Unlock()
	if s.ws == nil {
		return errors.New("Websocket is null")
	}
	s.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.ws.WriteMessage(msgType, data)
}

func (s *Session) SendText(data []byte) error {
	return s.Send(websocket.TextMessage, data)
}

func (s *Session) Ping() error {
	return s.Send(websocket.PingMessage, nil)
}

func (s *Session) UpdateLastReadTime() {
	s.Lock()
	defer s.Unlock()
	s.lastReadTime = time.Now()
}

func (s *Session) GetLastReadTime() time.Time {
	s.Lock()
	defer s.Unlock()
	return s.lastReadTime
}

// Watch restricts ledger event pushes to events about addr. It can be called
// more than once to watch several addresses.
func (s *Session) Watch(addr common.Uint160) {
	s.Lock()
	defer s.Unlock()
	if s.watched == nil {
		s.watched = make(map[common.Uint160]struct{})
	}
	s.watched[addr] = struct{}{}
}

// IsWatching returns true if events about addr should be pushed to this
// session. A session that watches nothing receives everything.
func (s *Session) IsWatching(addr common.Uint160) bool {
	s.Lock()
	defer s.Unlock()
	if len(s.watched) == 0 {
		return true
	}
	_, ok := s.watched[addr]
	return ok
}
