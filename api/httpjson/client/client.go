package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// RPCError is the error object of a failed JSON-RPC response.
type RPCError struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// Call sends RPC request to server
func Call(address string, method string, id interface{}, params map[string]interface{}) ([]byte, error) {
	data, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      id,
		"params":  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal JSON request: %w", err)
	}
	resp, err := http.Post(address, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("POST request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return body, nil
}

// CallResult calls method and decodes the result into result, which may be
// nil. A JSON-RPC error response is returned as *RPCError.
func CallResult(address string, method string, params map[string]interface{}, result interface{}) error {
	body, err := Call(address, method, 1, params)
	if err != nil {
		return err
	}

	var ret struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(body, &ret); err != nil {
		return fmt.Errorf("unmarshal response %q: %w", body, err)
	}
	if ret.Error != nil {
		return ret.Error
	}
	if result == nil || len(ret.Result) == 0 {
		return nil
	}
	return json.Unmarshal(ret.Result, result)
}
