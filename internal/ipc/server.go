package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/diegostafa/goto/internal/platform"
	"github.com/diegostafa/goto/internal/runtimepath"
	"github.com/diegostafa/goto/internal/switcher"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	controller   *switcher.Controller
	backend      platform.Backend
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(controller *switcher.Controller, backend platform.Backend, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		controller: controller,
		backend:    backend,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandShow:
		return s.handleShow()
	case CommandReload:
		return s.handleReload()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandActivate:
		return s.handleActivate(req)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		DaemonRunning: true,
		SessionPhase:  s.controller.Phase().String(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleShow opens a switching session, as if the chord was pressed
func (s *Server) handleShow() *Response {
	log.Println("IPC: Received SHOW command")
	s.controller.Open()

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleReload notifies the daemon to reload its configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleListWindows returns the current window list in MRU order
func (s *Server) handleListWindows() *Response {
	handles, err := s.backend.ListWindows()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list windows: %v", err))
	}

	windows := make([]WindowInfo, 0, len(handles))
	for _, handle := range handles {
		meta, err := s.backend.QueryMeta(handle)
		if err != nil {
			// Window vanished between enumeration and query.
			continue
		}
		windows = append(windows, WindowInfo{
			ID:        uint32(handle),
			Title:     meta.Title,
			Class:     meta.Class,
			Minimized: meta.Minimized,
		})
	}

	resp, _ := NewOKResponse(WindowsData{Windows: windows})
	return resp
}

// handleActivate focuses the window named in the payload
func (s *Server) handleActivate(req *Request) *Response {
	var payload ActivatePayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid ACTIVATE payload: %v", err))
	}

	log.Printf("IPC: Received ACTIVATE command for window 0x%08x", payload.ID)

	if err := s.backend.Activate(platform.WindowID(payload.ID)); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to activate window: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
