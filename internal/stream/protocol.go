// Package stream serves touch events and the calibration flow over
// websockets.
package stream

import (
	"github.com/touchplate/touchplate/internal/touch"
	"github.com/touchplate/touchplate/internal/tsmap"
)

// Message is a client-to-server websocket payload.
type Message struct {
	T      string `json:"t"`
	Offset int16  `json:"offset,omitempty"`
}

// Client message types.
const (
	MsgCalibStart  = "calibStart"
	MsgCalibApply  = "calibApply"
	MsgCalibCancel = "calibCancel"
)

// AnchorPayload carries the two calibration target points.
type AnchorPayload struct {
	XUL int16 `json:"xUL"`
	YUL int16 `json:"yUL"`
	XLR int16 `json:"xLR"`
	YLR int16 `json:"yLR"`
}

// ParamsPayload mirrors calibration parameters on the wire.
type ParamsPayload struct {
	ULX int16 `json:"ulX"`
	ULY int16 `json:"ulY"`
	LRX int16 `json:"lrX"`
	LRY int16 `json:"lrY"`
}

// Event is a server-to-client websocket payload.
type Event struct {
	T        string         `json:"t"`
	X        int16          `json:"x"`
	Y        int16          `json:"y"`
	RawX     int16          `json:"rawX"`
	RawY     int16          `json:"rawY"`
	Pressure int16          `json:"pressure"`
	State    string         `json:"state,omitempty"`
	Points   *AnchorPayload `json:"points,omitempty"`
	Params   *ParamsPayload `json:"params,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Server event types.
const (
	EvTouch        = "touch"
	EvRelease      = "release"
	EvState        = "state"
	EvCalibPoints  = "calibPoints"
	EvCalibPreview = "calibPreview"
	EvCalibDone    = "calibDone"
	EvCalibError   = "calibError"
)

// paramsPayload converts mapper parameters to the wire shape.
func paramsPayload(p tsmap.Params) *ParamsPayload {
	return &ParamsPayload{ULX: p.ULX, ULY: p.ULY, LRX: p.LRX, LRY: p.LRY}
}

// eventFromPoll converts a poll result to a wire event. Steady reports
// other than an active touch position are only published when steady
// streaming is enabled; ok is false when nothing should be sent.
func eventFromPoll(res touch.PollResult, sendSteady bool) (Event, bool) {
	ev := Event{
		X:        res.X,
		Y:        res.Y,
		RawX:     res.RawX,
		RawY:     res.RawY,
		Pressure: res.Pressure,
	}

	if res.Kind == touch.KindEdge {
		if res.Edge == touch.EdgeTouch {
			ev.T = EvTouch
		} else {
			ev.T = EvRelease
		}
		return ev, true
	}

	if !sendSteady || res.State != touch.StateTouchPresent {
		return Event{}, false
	}
	ev.T = EvState
	ev.State = res.State.String()
	return ev, true
}
