package stream

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/touchplate/touchplate/internal/touch"
	"github.com/touchplate/touchplate/internal/tsmap"
)

// defaultAnchorInset is the anchor offset used when a calibration
// request doesn't name one.
const defaultAnchorInset = 12

// calibSession tracks an in-flight two-point calibration: the anchors
// the user was asked to tap and the raw coordinates measured so far.
type calibSession struct {
	xUL, yUL, xLR, yLR int16
	taps               [][2]int16
	preview            *tsmap.Params
}

// Server pushes touch events to websocket clients and drives the
// interactive calibration flow: hand out anchor points, collect two
// taps, preview the solved parameters, and commit them only on apply.
// The mapper is read only for its fixed geometry; committing solved
// parameters goes through the apply callback, whose owner serializes
// the mutation against concurrent mapper readers.
type Server struct {
	mu         sync.Mutex
	upgrader   websocket.Upgrader
	mapper     *tsmap.Mapper
	apply      func(tsmap.Params) error
	sendSteady bool
	conns      map[*websocket.Conn]bool
	calib      *calibSession
}

// NewServer creates an event stream server. apply commits and persists
// applied calibration parameters; sendSteady additionally streams the
// mapped finger position while a touch is held.
func NewServer(mapper *tsmap.Mapper, apply func(tsmap.Params) error, sendSteady bool) *Server {
	return &Server{
		mapper:     mapper,
		apply:      apply,
		sendSteady: sendSteady,
		conns:      make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and processes client messages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.addConn(conn)
	defer s.removeConn(conn)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.handleMessage(msg)
	}
}

// HandleEvent publishes one poll result and, during calibration, captures
// touch edges as tap measurements. Called once per poll by the app loop.
func (s *Server) HandleEvent(res touch.PollResult) error {
	s.mu.Lock()
	extra, ok := s.captureTap(res)
	ev, send := eventFromPoll(res, s.sendSteady)
	s.mu.Unlock()

	if send {
		s.broadcast(ev)
	}
	if ok {
		s.broadcast(extra)
	}
	return nil
}

// handleMessage dispatches one client message.
func (s *Server) handleMessage(msg Message) {
	switch msg.T {
	case MsgCalibStart:
		s.startCalibration(msg.Offset)
	case MsgCalibApply:
		s.applyCalibration()
	case MsgCalibCancel:
		s.mu.Lock()
		s.calib = nil
		s.mu.Unlock()
	}
}

// startCalibration opens a session and announces the anchor points.
func (s *Server) startCalibration(offset int16) {
	if offset <= 0 {
		offset = defaultAnchorInset
	}

	s.mu.Lock()
	xUL, yUL, xLR, yLR := s.mapper.AnchorPoints(offset)
	s.calib = &calibSession{xUL: xUL, yUL: yUL, xLR: xLR, yLR: yLR}
	s.mu.Unlock()

	s.broadcast(Event{
		T:      EvCalibPoints,
		Points: &AnchorPayload{XUL: xUL, YUL: yUL, XLR: xLR, YLR: yLR},
	})
}

// captureTap records the raw coordinates of a touch edge while a
// calibration session is collecting taps. After the second tap the new
// parameters are solved and offered as a preview.
func (s *Server) captureTap(res touch.PollResult) (Event, bool) {
	c := s.calib
	if c == nil || c.preview != nil {
		return Event{}, false
	}
	if res.Kind != touch.KindEdge || res.Edge != touch.EdgeTouch {
		return Event{}, false
	}

	c.taps = append(c.taps, [2]int16{res.RawX, res.RawY})
	if len(c.taps) < 2 {
		return Event{}, false
	}

	p, err := s.mapper.Solve(
		c.xUL, c.yUL, c.xLR, c.yLR,
		c.taps[0][0], c.taps[0][1], c.taps[1][0], c.taps[1][1],
	)
	if err != nil {
		s.calib = nil
		return Event{T: EvCalibError, Error: err.Error()}, true
	}
	c.preview = &p
	return Event{T: EvCalibPreview, Params: paramsPayload(p)}, true
}

// applyCalibration hands a previewed calibration to the apply callback
// for commit and persistence.
func (s *Server) applyCalibration() {
	s.mu.Lock()
	c := s.calib
	if c == nil || c.preview == nil {
		s.mu.Unlock()
		s.broadcast(Event{T: EvCalibError, Error: "no calibration preview to apply"})
		return
	}
	p := *c.preview
	s.calib = nil
	s.mu.Unlock()

	if s.apply != nil {
		if err := s.apply(p); err != nil {
			s.broadcast(Event{T: EvCalibError, Error: err.Error()})
			return
		}
	}
	s.broadcast(Event{T: EvCalibDone, Params: paramsPayload(p)})
}

// addConn registers a client connection.
func (s *Server) addConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = true
	s.mu.Unlock()
}

// removeConn drops a client connection.
func (s *Server) removeConn(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

// broadcast sends an event to every connected client, dropping
// connections whose writes fail.
func (s *Server) broadcast(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteJSON(ev); err != nil {
			delete(s.conns, conn)
			_ = conn.Close()
		}
	}
}
