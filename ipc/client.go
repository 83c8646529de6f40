package ipc

import (
	"encoding/json"
	"fmt"
	"io"
	"net"

	"goa.design/toolcore/tools"
)

// Deliver opens a TCP connection to addr, sends a pending-result
// delivery request, and reports whether the server accepted it (spec
// §4.5 "Client").
func Deliver(addr *net.TCPAddr, callID string, output tools.FunctionCallOutputPayload) error {
	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		return fmt.Errorf("dial ipc server: %w", err)
	}
	defer conn.Close()

	body, err := json.Marshal(request{CallID: callID, Output: output})
	if err != nil {
		return fmt.Errorf("marshal delivery request: %w", err)
	}
	if _, err := conn.Write(body); err != nil {
		return fmt.Errorf("write delivery request: %w", err)
	}
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		if err := cw.CloseWrite(); err != nil {
			return fmt.Errorf("shut down write half: %w", err)
		}
	}

	resp, err := io.ReadAll(conn)
	if err != nil {
		return fmt.Errorf("read delivery response: %w", err)
	}
	if string(resp) != okResponse {
		return fmt.Errorf("unexpected delivery response: %q", resp)
	}
	return nil
}
