package dome

import (
	"context"

	"domed/bus"
	"domed/errcode"
)

// Topic roots for the dome command surface.
var (
	TopicCmdOpen            = bus.Topic{"dome", "cmd", "open"}
	TopicCmdClose           = bus.Topic{"dome", "cmd", "close"}
	TopicCmdStop            = bus.Topic{"dome", "cmd", "stop"}
	TopicCmdEngineeringMode = bus.Topic{"dome", "cmd", "engineering_mode"}
	TopicCmdHeartbeatTimer  = bus.Topic{"dome", "cmd", "heartbeat_timer"}
	TopicCmdHeartbeatSiren  = bus.Topic{"dome", "cmd", "heartbeat_siren"}
	TopicCmdStatus          = bus.Topic{"dome", "cmd", "status"}
	TopicStatus             = bus.Topic{"dome", "status"}
)

// OpenRequest/CloseRequest etc are the payload shapes handlers expect on
// Message.Payload. CallerIP is checked against the control-IP allowlist
// by the Supervisor method each handler calls, not by the handler itself.
// The status handler does not check StatusRequest.CallerIP.
type OpenRequest struct {
	CallerIP string
	Sides    string
	Steps    int
}

type CloseRequest struct {
	CallerIP string
	Sides    string
	Steps    int
}

type StopRequest struct {
	CallerIP string
}

type EngineeringModeRequest struct {
	CallerIP string
	Enabled  bool
}

type HeartbeatTimerRequest struct {
	CallerIP       string
	TimeoutSeconds int
}

type HeartbeatSirenRequest struct {
	CallerIP string
	Enabled  bool
}

type StatusRequest struct {
	CallerIP string
}

// CommandReply is the uniform reply payload for every command topic
// except status, which replies with a StatusSnapshot directly.
type CommandReply struct {
	Code    errcode.Code
	Numeric int
	Message string
}

func newReply(code errcode.Code) CommandReply {
	return CommandReply{Code: code, Numeric: errcode.Numeric(code), Message: errcode.Message(code)}
}

// ServeBus registers request handlers for every dome command topic on
// conn and publishes a retained status snapshot after every state-
// changing command, so passive subscribers see live state without
// polling. It blocks until ctx is cancelled.
func (s *Supervisor) ServeBus(ctx context.Context, conn *bus.Connection) {
	s.conn = conn

	handlers := []struct {
		topic bus.Topic
		fn    func(*bus.Message)
	}{
		{TopicCmdOpen, s.handleOpen},
		{TopicCmdClose, s.handleClose},
		{TopicCmdStop, s.handleStop},
		{TopicCmdEngineeringMode, s.handleEngineeringMode},
		{TopicCmdHeartbeatTimer, s.handleHeartbeatTimer},
		{TopicCmdHeartbeatSiren, s.handleHeartbeatSiren},
		{TopicCmdStatus, s.handleStatus},
	}

	var subs []*bus.Subscription
	for _, h := range handlers {
		sub := conn.Subscribe(h.topic)
		subs = append(subs, sub)
		go serveTopic(ctx, sub, h.fn)
	}

	<-ctx.Done()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func serveTopic(ctx context.Context, sub *bus.Subscription, fn func(*bus.Message)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			fn(msg)
		}
	}
}

func (s *Supervisor) handleOpen(msg *bus.Message) {
	req, ok := msg.Payload.(OpenRequest)
	if !ok {
		s.reply(msg, newReply(errcode.InvalidParams))
		return
	}
	code := s.OpenShutters(req.CallerIP, req.Sides, req.Steps)
	s.reply(msg, newReply(code))
	s.publishStatus()
}

func (s *Supervisor) handleClose(msg *bus.Message) {
	req, ok := msg.Payload.(CloseRequest)
	if !ok {
		s.reply(msg, newReply(errcode.InvalidParams))
		return
	}
	code := s.CloseShutters(req.CallerIP, req.Sides, req.Steps)
	s.reply(msg, newReply(code))
	s.publishStatus()
}

func (s *Supervisor) handleStop(msg *bus.Message) {
	req, ok := msg.Payload.(StopRequest)
	if !ok {
		s.reply(msg, newReply(errcode.InvalidParams))
		return
	}
	code := s.Stop(req.CallerIP)
	s.reply(msg, newReply(code))
	s.publishStatus()
}

func (s *Supervisor) handleEngineeringMode(msg *bus.Message) {
	req, ok := msg.Payload.(EngineeringModeRequest)
	if !ok {
		s.reply(msg, newReply(errcode.InvalidParams))
		return
	}
	code := s.SetEngineeringMode(req.CallerIP, req.Enabled)
	s.reply(msg, newReply(code))
	s.publishStatus()
}

func (s *Supervisor) handleHeartbeatTimer(msg *bus.Message) {
	req, ok := msg.Payload.(HeartbeatTimerRequest)
	if !ok {
		s.reply(msg, newReply(errcode.InvalidParams))
		return
	}
	code := s.SetHeartbeatTimer(req.CallerIP, req.TimeoutSeconds)
	s.reply(msg, newReply(code))
	s.publishStatus()
}

func (s *Supervisor) handleHeartbeatSiren(msg *bus.Message) {
	req, ok := msg.Payload.(HeartbeatSirenRequest)
	if !ok {
		s.reply(msg, newReply(errcode.InvalidParams))
		return
	}
	code := s.SetHeartbeatSiren(req.CallerIP, req.Enabled)
	s.reply(msg, newReply(code))
	s.publishStatus()
}

func (s *Supervisor) handleStatus(msg *bus.Message) {
	if _, ok := msg.Payload.(StatusRequest); !ok {
		s.reply(msg, newReply(errcode.InvalidParams))
		return
	}
	s.reply(msg, s.Status())
}

func (s *Supervisor) reply(req *bus.Message, payload any) {
	if !req.CanReply() {
		return
	}
	s.conn.Reply(req, payload, false)
}

// publishStatus republishes the current snapshot, retained, so late
// subscribers see live state without issuing a status request.
func (s *Supervisor) publishStatus() {
	s.conn.Publish(s.conn.NewMessage(TopicStatus, s.Status(), true))
}
