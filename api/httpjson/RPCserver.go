package httpjson

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nknorg/ballot/api/common"
	"github.com/nknorg/ballot/api/common/errcode"
	"github.com/nknorg/ballot/api/ratelimiter"
	"github.com/nknorg/ballot/ballot"
	"github.com/nknorg/ballot/config"
	"github.com/nknorg/ballot/util/log"
)

type RPCServer struct {
	//keeps track of every function to be called on specific rpc call
	mainMux ServeMux

	//defines a slice of listeners for RPCServer, such as "127.0.0.1:30003"
	listeners []string

	//the reference of the ballot ledger
	ledger *ballot.Ledger

	httpServer *http.Server
}

type ServeMux struct {
	sync.RWMutex

	//collection of Handlers
	m map[string]common.Handler

	//will be called when the request of rpc client contains no implemented functions.
	defaultFunction func(http.ResponseWriter, *http.Request)
}

// NewServer will create a new RPC server instance.
func NewServer(ledger *ballot.Ledger) *RPCServer {
	server := &RPCServer{
		mainMux: ServeMux{
			m: make(map[string]common.Handler),
		},
		listeners: []string{config.APIListenAddr(config.Parameters.HttpJsonPort)},
		ledger:    ledger,
	}

	for name, handler := range common.InitialAPIHandlers {
		if handler.IsAccessableByJsonrpc() {
			server.HandleFunc(name, handler.Handler)
		}
	}

	rpcServeMux := http.NewServeMux()
	rpcServeMux.HandleFunc("/", server.Handle)
	server.httpServer = &http.Server{
		Handler:      rpcServeMux,
		ReadTimeout:  config.Parameters.RPCReadTimeout * time.Second,
		WriteTimeout: config.Parameters.RPCWriteTimeout * time.Second,
		IdleTimeout:  config.Parameters.RPCIdleTimeout * time.Second,
	}
	server.httpServer.SetKeepAlivesEnabled(config.Parameters.RPCKeepAlivesEnabled)

	return server
}

func (s *RPCServer) write(w http.ResponseWriter, data []byte) {
	w.Header().Add("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("content-type", "application/json;charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(data)
}

func (s *RPCServer) writeError(w http.ResponseWriter, id interface{}, code errcode.ErrCode, data interface{}) {
	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    -code,
			"message": errcode.ErrMessage[code],
			"data":    data,
		},
		"id": id,
	}
	b, err := json.Marshal(resp)
	if err != nil {
		log.Error("HTTP JSON RPC Handle - json.Marshal: ", err)
		return
	}
	s.write(w, b)
}

//this is the funciton that should be called in order to answer an rpc call
//should be registered like "http.HandleFunc("/", httpjsonrpc.Handle)"
func (s *RPCServer) Handle(w http.ResponseWriter, r *http.Request) {
	limit := ratelimiter.Limit{Rate: config.Parameters.RPCIPRateLimit, Burst: int(config.Parameters.RPCIPRateBurst)}
	if host, ok := ratelimiter.AllowHost(ratelimiter.RPC, r.RemoteAddr, limit); !ok {
		log.Infof("RPC connection limit of %s reached", host)
		w.WriteHeader(http.StatusTooManyRequests)
		s.writeError(w, nil, errcode.SERVICE_CEILING, "too many requests")
		return
	}

	s.mainMux.RLock()
	defer s.mainMux.RUnlock()
	//JSON RPC commands should be POSTs
	if r.Method != "POST" {
		if s.mainMux.defaultFunction != nil {
			log.Info("HTTP JSON RPC Handle - Method!=\"POST\"")
			s.mainMux.defaultFunction(w, r)
			return
		}
		log.Warning("HTTP JSON RPC Handle - Method!=\"POST\"")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	//check if there is Request Body to read
	if r.Body == nil {
		log.Warning("HTTP JSON RPC Handle - Request body is nil")
		s.writeError(w, nil, errcode.ILLEGAL_DATAFORMAT, "request body is empty")
		return
	}

	//read the body of the request
	body, err := io.ReadAll(io.LimitReader(r.Body, config.MaxClientMessageSize))
	if err != nil {
		log.Error("HTTP JSON RPC Handle - io.ReadAll: ", err)
		s.writeError(w, nil, errcode.ILLEGAL_DATAFORMAT, err.Error())
		return
	}
	request := make(map[string]interface{})
	err = json.Unmarshal(body, &request)
	if err != nil {
		log.Error("HTTP JSON RPC Handle - json.Unmarshal: ", err)
		s.writeError(w, nil, errcode.ILLEGAL_DATAFORMAT, err.Error())
		return
	}

	method, ok := request["method"].(string)
	if !ok {
		s.writeError(w, request["id"], errcode.INVALID_METHOD, "method should be a string")
		return
	}

	params := make(map[string]interface{})
	if request["params"] != nil {
		params, ok = request["params"].(map[string]interface{})
		if !ok {
			s.writeError(w, request["id"], errcode.INVALID_PARAMS, "params should be an object")
			return
		}
	}

	//get the corresponding function
	function, ok := s.mainMux.m[method]
	if !ok {
		//if the function does not exist
		log.Warning("HTTP JSON RPC Handle - No function to call for ", method)
		data, err := json.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"error": map[string]interface{}{
				"code":    -32601,
				"message": "Method not found",
				"data":    "The called method was not found on the server",
			},
			"id": request["id"],
		})
		if err != nil {
			log.Error("HTTP JSON RPC Handle - json.Marshal: ", err)
			return
		}
		s.write(w, data)
		return
	}

	response := function(s, params, r.Context())
	code := response["error"].(errcode.ErrCode)
	if code != errcode.SUCCESS {
		log.Debugf("HTTP JSON RPC %s failed: %v", method, response["resultOrData"])
		s.writeError(w, request["id"], code, response["resultOrData"])
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"result":  response["resultOrData"],
		"id":      request["id"],
	})
	if err != nil {
		log.Error("HTTP JSON RPC Handle - json.Marshal: ", err)
		return
	}
	s.write(w, data)
}

//a function to register functions to be called for specific rpc calls
func (s *RPCServer) HandleFunc(pattern string, handler common.Handler) {
	s.mainMux.Lock()
	defer s.mainMux.Unlock()
	s.mainMux.m[pattern] = handler
}

//a function to be called if the request is not a HTTP JSON RPC call
func (s *RPCServer) SetDefaultFunc(def func(http.ResponseWriter, *http.Request)) {
	s.mainMux.defaultFunction = def
}

// Start listens on HttpJsonPort and blocks until the server is stopped.
func (s *RPCServer) Start() error {
	listener, err := net.Listen("tcp", s.listeners[0])
	if err != nil {
		log.Error("net.Listen: ", err.Error())
		return err
	}

	log.Infof("JSON-RPC server listening on %s", listener.Addr())
	err = s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *RPCServer) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *RPCServer) GetLedger() *ballot.Ledger {
	return s.ledger
}
