package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/google/uuid"

	"goa.design/toolcore/ident"
	"goa.design/toolcore/session"
	"goa.design/toolcore/telemetry"
)

// Server accepts pending-result deliveries on a loopback TCP listener
// and submits them to a live conversation (spec §4.5).
type Server struct {
	listener     net.Listener
	metadataPath string
	conv         session.Conversation
	log          telemetry.Logger
	shutdown     chan struct{}
	done         chan struct{}
}

// StartServer binds 127.0.0.1:0, writes the socket metadata file, and
// spawns the accept loop (spec §4.5 "Server start"). The returned
// Server's Addr method reports the bound address for tests and
// co-located callers; out-of-process deliverers read it from the
// metadata file instead.
func StartServer(codexHome string, conversationID ident.ConversationID, conv session.Conversation, log telemetry.Logger) (*Server, error) {
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen on loopback: %w", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	metadataPath := MetadataPath(codexHome, conversationID)
	if err := writeMetadata(metadataPath, "127.0.0.1", uint16(addr.Port)); err != nil {
		ln.Close()
		return nil, err
	}

	s := &Server{
		listener:     ln,
		metadataPath: metadataPath,
		conv:         conv,
		log:          log,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}
	go s.acceptLoop()
	return s, nil
}

// Addr reports the bound loopback address.
func (s *Server) Addr() *net.TCPAddr {
	return s.listener.Addr().(*net.TCPAddr)
}

// Shutdown fires the shutdown signal, closes the listener, waits for the
// accept loop to exit, and best-effort deletes the metadata file (spec
// §4.5 "Shutdown", §5 "Dropping the IPC server handle").
func (s *Server) Shutdown() {
	close(s.shutdown)
	s.listener.Close()
	<-s.done
	os.Remove(s.metadataPath)
}

func (s *Server) acceptLoop() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
			}
			s.log.Warn(context.Background(), "ipc: accept failed", "error", err)
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	ctx := context.Background()

	// deliveryID correlates this connection's warning logs; it never
	// leaves the process.
	deliveryID := uuid.NewString()

	body, err := io.ReadAll(conn)
	if err != nil {
		s.log.Warn(ctx, "ipc: failed to read request body", "delivery_id", deliveryID, "error", err)
		return
	}
	if len(body) == 0 {
		return
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		s.log.Warn(ctx, "ipc: failed to parse request body", "delivery_id", deliveryID, "error", err)
		return
	}

	op := session.DeliverPendingToolResultOp{CallID: ident.CallID(req.CallID), Output: req.Output}
	if err := s.conv.SubmitOp(ctx, op); err != nil {
		s.log.Warn(ctx, "ipc: failed to submit delivered result", "delivery_id", deliveryID, "call_id", req.CallID, "error", err)
		return
	}

	if _, err := conn.Write([]byte(okResponse)); err != nil {
		s.log.Warn(ctx, "ipc: failed to write response", "delivery_id", deliveryID, "error", err)
	}
}
