package services

import (
	"context"
	"errors"
	"fmt"

	"peercall/internal/core/domain"
	"peercall/internal/core/ports"

	"go.uber.org/zap"
)

type roomService struct {
	registry  ports.ConnectionRegistry
	directory ports.RoomDirectory
	sender    ports.MessageSender
	metrics   ports.MetricsSink
	logger    *zap.SugaredLogger
}

// NewRoomService wires the membership lifecycle and the signaling relay over
// an injected registry, directory and transport sender. Instances are
// independent; tests construct as many as they need.
func NewRoomService(
	registry ports.ConnectionRegistry,
	directory ports.RoomDirectory,
	sender ports.MessageSender,
	metrics ports.MetricsSink,
	logger *zap.SugaredLogger,
) ports.RoomService {
	return &roomService{
		registry:  registry,
		directory: directory,
		sender:    sender,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *roomService) Connect(ctx context.Context, id domain.ConnID) error {
	if err := s.registry.Register(ctx, id); err != nil {
		return fmt.Errorf("register connection %s: %w", id, err)
	}
	s.metrics.ConnectionOpened()
	return nil
}

func (s *roomService) Join(ctx context.Context, id domain.ConnID, room domain.RoomID) error {
	_, joined, err := s.registry.RoomOf(ctx, id)
	if err != nil {
		return fmt.Errorf("look up connection %s: %w", id, err)
	}
	if joined {
		s.metrics.JoinRejected("already_joined")
		return domain.ErrAlreadyJoined
	}

	members, err := s.directory.Join(ctx, room, id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomFull) {
			s.metrics.JoinRejected("room_full")
			s.logger.Infow("join rejected, room full", "conn_id", id, "room", room)
		}
		return err
	}

	if err := s.registry.AssignRoom(ctx, id, room); err != nil {
		// Roll the directory back so a failed assignment cannot strand a slot.
		s.directory.Leave(ctx, room, id)
		return fmt.Errorf("assign room to connection %s: %w", id, err)
	}

	if members == 1 {
		s.metrics.RoomCreated()
	}
	s.logger.Infow("connection joined room", "conn_id", id, "room", room, "members", members)
	return nil
}

func (s *roomService) Relay(ctx context.Context, from domain.ConnID, msg *domain.SignalMessage) error {
	room, joined, err := s.registry.RoomOf(ctx, from)
	if err != nil {
		return fmt.Errorf("look up connection %s: %w", from, err)
	}
	if !joined {
		return domain.ErrNotInRoom
	}

	peers, err := s.directory.Peers(ctx, room, from)
	if err != nil {
		return fmt.Errorf("resolve peers of room %s: %w", room, err)
	}

	// Fire-and-forget: a failed send is a dropped delivery, cleaned up by the
	// disconnect path. A stalled peer must never delay other rooms.
	delivered := 0
	for _, peer := range peers {
		if err := s.sender.Send(peer, msg); err != nil {
			s.logger.Warnw("delivery failed, dropping message",
				"type", msg.Type, "from", from, "to", peer, "error", err)
			continue
		}
		delivered++
	}

	s.metrics.MessageRelayed(msg.Type, delivered)
	s.logger.Debugw("message relayed",
		"type", msg.Type, "from", from, "room", room, "targets", delivered)
	return nil
}

func (s *roomService) Disconnect(ctx context.Context, id domain.ConnID) error {
	room, joined, err := s.registry.Unregister(ctx, id)
	if err != nil {
		return fmt.Errorf("unregister connection %s: %w", id, err)
	}
	s.metrics.ConnectionClosed()

	if !joined {
		s.logger.Infow("connection closed", "conn_id", id)
		return nil
	}

	remaining, err := s.directory.Leave(ctx, room, id)
	if err != nil {
		return fmt.Errorf("leave room %s: %w", room, err)
	}
	if remaining == 0 {
		s.metrics.RoomDeleted()
		s.logger.Infow("room deleted", "room", room)
	}

	peers, err := s.directory.Peers(ctx, room, id)
	if err != nil {
		return fmt.Errorf("resolve peers of room %s: %w", room, err)
	}
	notice := &domain.SignalMessage{Type: domain.TypeUserDisconnected}
	for _, peer := range peers {
		if err := s.sender.Send(peer, notice); err != nil {
			s.logger.Warnw("disconnect notice dropped", "to", peer, "error", err)
		}
	}

	s.logger.Infow("connection left room", "conn_id", id, "room", room, "remaining", remaining)
	return nil
}
