package service

import (
	"context"
	"encoding/json"

	"echodft/cmd/internal/contract"
	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/domain/events"
	"echodft/cmd/internal/infrastructure/aws/websocket"
	"echodft/cmd/internal/utils"
	"echodft/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type ConnectionRepository interface {
	Save(conn *entity.Connection) error
	Delete(connID string) error
	FindByUserID(userID int64) ([]string, error)
	FindDead(now int64) ([]*entity.Connection, error)
	UpdateHeartbeat(connID string, now int64) error
}

type WebSocketService struct {
	ConnRepo ConnectionRepository
	Gateway  websocket.GatewayClient
}

func NewWebSocketService(repo ConnectionRepository, gateway websocket.GatewayClient) *WebSocketService {
	return &WebSocketService{
		ConnRepo: repo,
		Gateway:  gateway,
	}
}

func (s *WebSocketService) RegisterConnection(userID int64, connectionID string, exp int64) apierror.ErrorResponse {
	now := utils.NowUTC()
	conn := &entity.Connection{
		ConnectionID:    connectionID,
		UserID:          userID,
		ExpiresAt:       exp * 1000, // "exp" is stored in seconds, our app uses millis
		LastHeartbeatAt: now,        // Avoid users getting disconnected immediately
		CreatedAt:       now,
	}

	if err := s.ConnRepo.Save(conn); err != nil {
		log.Errorf("failed to save connection: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

func (s *WebSocketService) RemoveConnection(connectionID string) {
	// We don't return error here because if it fails, it's not the client's fault
	_ = s.ConnRepo.Delete(connectionID)
}

func (s *WebSocketService) HandleMessage(ctx context.Context, msg *contract.IncomingSocketMessage, connID string) {
	switch msg.Type {
	case contract.EventPing:
		s.handlePing(ctx, connID)
	default:
		log.Debugf("ignoring socket message %q from %s", msg.Type, connID)
	}
}

// Dispatch pushes evt to every open connection of the user.
func (s *WebSocketService) Dispatch(ctx context.Context, userID int64, evt events.SocketEvent) {
	payload, err := encode(evt)
	if err != nil {
		log.Errorf("failed to encode %s event: %v", evt.GetType(), err)
		return
	}

	conns, err := s.ConnRepo.FindByUserID(userID)
	if err != nil {
		log.Errorf("failed to fetch connections for user %d: %v", userID, err)
		return
	}

	for _, connID := range conns {
		// We ignore errors here so one stale connection doesn't block others
		_ = s.Gateway.PostToConnection(ctx, connID, payload)
	}
}

func (s *WebSocketService) DispatchToConnection(ctx context.Context, connID string, evt events.SocketEvent) {
	payload, err := encode(evt)
	if err != nil {
		log.Errorf("failed to encode %s event: %v", evt.GetType(), err)
		return
	}
	_ = s.Gateway.PostToConnection(ctx, connID, payload)
}

// DropDead closes every connection that expired or stopped pinging, after
// telling the client not to reconnect. It returns how many were dropped.
func (s *WebSocketService) DropDead(ctx context.Context) int {
	conns, err := s.ConnRepo.FindDead(utils.NowUTC())
	if err != nil {
		log.Errorf("failed to fetch dead connections: %v", err)
		return 0
	}

	for _, conn := range conns {
		s.DispatchToConnection(ctx, conn.ConnectionID, &events.SessionExpired{})
		_ = s.Gateway.DeleteConnection(ctx, conn.ConnectionID)
		_ = s.ConnRepo.Delete(conn.ConnectionID)
	}
	return len(conns)
}

func (s *WebSocketService) handlePing(ctx context.Context, connID string) {
	if err := s.ConnRepo.UpdateHeartbeat(connID, utils.NowUTC()); err != nil {
		log.Errorf("failed to update heartbeat: %v", err)
		return
	}
	s.DispatchToConnection(ctx, connID, &events.Ack{})
}

func encode(evt events.SocketEvent) ([]byte, error) {
	return json.Marshal(&contract.OutgoingSocketMessage{
		Type: evt.GetType(),
		Data: evt,
	})
}
