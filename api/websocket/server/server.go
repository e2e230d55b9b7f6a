package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nknorg/ballot/api/common"
	"github.com/nknorg/ballot/api/common/errcode"
	"github.com/nknorg/ballot/api/ratelimiter"
	"github.com/nknorg/ballot/api/websocket/session"
	"github.com/nknorg/ballot/ballot"
	. "github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/config"
	"github.com/nknorg/ballot/util/log"
)

const (
	pingInterval   = 8 * time.Second
	pongTimeout    = 10 * time.Second // should be greater than pingInterval
	maxMessageSize = config.MaxClientMessageSize
)

type Handler struct {
	handler common.Handler
}

type WsServer struct {
	sync.RWMutex
	Upgrader    websocket.Upgrader
	listener    net.Listener
	server      *http.Server
	SessionList *session.SessionList
	ActionMap   map[string]Handler
	ledger      *ballot.Ledger
}

func InitWsServer(ledger *ballot.Ledger) *WsServer {
	ws := &WsServer{
		Upgrader:    websocket.Upgrader{},
		SessionList: session.NewSessionList(),
		ledger:      ledger,
	}
	ws.Upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	ws.registryMethod()
	return ws
}

func (ws *WsServer) Start() error {
	if config.Parameters.HttpWsPort == 0 {
		log.Error("Not configure HttpWsPort port ")
		return nil
	}

	var err error
	ws.listener, err = net.Listen("tcp", config.APIListenAddr(config.Parameters.HttpWsPort))
	if err != nil {
		log.Error("net.Listen: ", err.Error())
		return err
	}

	ws.Lock()
	ws.server = &http.Server{Handler: ws}
	ws.Unlock()

	log.Infof("Websocket server listening on %s", ws.listener.Addr())
	go ws.server.Serve(ws.listener)

	return nil
}

func (ws *WsServer) registryMethod() {
	heartbeat := func(s common.Serverer, cmd map[string]interface{}, ctx context.Context) map[string]interface{} {
		return common.RespPacking(cmd["Userid"], errcode.SUCCESS)
	}

	getsessioncount := func(s common.Serverer, cmd map[string]interface{}, ctx context.Context) map[string]interface{} {
		return common.RespPacking(ws.SessionList.GetSessionCount(), errcode.SUCCESS)
	}

	watch := func(s common.Serverer, cmd map[string]interface{}, ctx context.Context) map[string]interface{} {
		addrStr, ok := cmd["Addr"].(string)
		if !ok {
			return common.RespPacking("Addr should be a string", errcode.INVALID_PARAMS)
		}
		addr, err := ToScriptHash(addrStr)
		if err != nil {
			return common.RespPacking(err.Error(), errcode.INVALID_PARAMS)
		}

		userid, _ := cmd["Userid"].(string)
		sess := ws.SessionList.GetSessionById(userid)
		if sess == nil {
			return common.RespPacking("session not found", errcode.SESSION_EXPIRED)
		}
		sess.Watch(addr)

		return common.RespPacking(addrStr, errcode.SUCCESS)
	}

	actionMap := map[string]Handler{
		"heartbeat":       {handler: heartbeat},
		"getsessioncount": {handler: getsessioncount},
		"watch":           {handler: watch},
	}

	for name, handler := range common.InitialAPIHandlers {
		if handler.IsAccessableByWebsocket() {
			actionMap[name] = Handler{handler: handler.Handler}
		}
	}

	ws.ActionMap = actionMap
}

func (ws *WsServer) Stop() {
	ws.RLock()
	server := ws.server
	ws.RUnlock()
	if server != nil {
		server.Shutdown(context.Background())
		log.Info("Close websocket ")
	}
}

// ServeHTTP upgrades the connection and serves the session until it closes.
func (ws *WsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := ratelimiter.Limit{Rate: config.Parameters.WsIPRateLimit, Burst: int(config.Parameters.WsIPRateBurst)}
	if host, ok := ratelimiter.AllowHost(ratelimiter.Websocket, r.RemoteAddr, limit); !ok {
		log.Infof("Ws connection limit of %s reached", host)
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}

	ws.websocketHandler(w, r)
}

func (ws *WsServer) websocketHandler(w http.ResponseWriter, r *http.Request) {
	wsConn, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket Upgrader: ", err)
		return
	}
	defer wsConn.Close()

	sess, err := ws.SessionList.NewSession(wsConn)
	if err != nil {
		log.Error("websocket NewSession:", err)
		return
	}

	defer func() {
		ws.SessionList.CloseSession(sess)
		if err := recover(); err != nil {
			log.Error("websocket recover:", err)
		}
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongTimeout))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongTimeout))
		sess.UpdateLastReadTime()
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		var err error
		for {
			select {
			case <-ticker.C:
				err = sess.Ping()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		messageType, bysMsg, err := wsConn.ReadMessage()
		if err != nil {
			log.Debugf("websocket read message error: %v", err)
			break
		}

		wsConn.SetReadDeadline(time.Now().Add(pongTimeout))
		sess.UpdateLastReadTime()

		err = ws.OnDataHandle(sess, messageType, bysMsg, r)
		if err != nil {
			log.Error(err)
		}
	}
}

func (ws *WsServer) OnDataHandle(curSession *session.Session, messageType int, bysMsg []byte, r *http.Request) error {
	if messageType != websocket.TextMessage {
		resp := common.ResponsePack(errcode.ILLEGAL_DATAFORMAT)
		ws.respondToSession(curSession, resp)
		return fmt.Errorf("unsupported websocket message type %v", messageType)
	}

	var req = make(map[string]interface{})

	if err := json.Unmarshal(bysMsg, &req); err != nil {
		resp := common.ResponsePack(errcode.ILLEGAL_DATAFORMAT)
		ws.respondToSession(curSession, resp)
		return fmt.Errorf("websocket OnDataHandle: %v", err)
	}
	actionName, ok := req["Action"].(string)
	if !ok {
		resp := common.ResponsePack(errcode.INVALID_METHOD)
		ws.respondToSession(curSession, resp)
		return nil
	}
	action, ok := ws.ActionMap[actionName]
	if !ok {
		resp := common.ResponsePack(errcode.INVALID_METHOD)
		resp["Action"] = actionName
		ws.respondToSession(curSession, resp)
		return nil
	}
	req["Userid"] = curSession.GetSessionId()
	ret := action.handler(ws, req, r.Context())
	resp := common.ResponsePack(ret["error"].(errcode.ErrCode))
	resp["Action"] = actionName
	resp["Result"] = ret["resultOrData"]
	ws.respondToSession(curSession, resp)

	return nil
}

func (ws *WsServer) respondToSession(session *session.Session, resp map[string]interface{}) {
	resp["Desc"] = errcode.ErrMessage[resp["Error"].(errcode.ErrCode)]
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error("Websocket response:", err)
		return
	}
	session.SendText(data)
}

// PushResult sends resp to every session that watches at least one of addrs.
func (ws *WsServer) PushResult(resp map[string]interface{}, addrs ...Uint160) {
	resp["Desc"] = errcode.ErrMessage[resp["Error"].(errcode.ErrCode)]
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error("Websocket PushResult:", err)
		return
	}
	ws.SessionList.ForEachSession(func(s *session.Session) {
		for _, addr := range addrs {
			if s.IsWatching(addr) {
				s.SendText(data)
				return
			}
		}
	})
}

func (ws *WsServer) Broadcast(data []byte) error {
	ws.SessionList.ForEachSession(func(s *session.Session) {
		s.SendText(data)
	})
	return nil
}

func (ws *WsServer) GetLedger() *ballot.Ledger {
	return ws.ledger
}
