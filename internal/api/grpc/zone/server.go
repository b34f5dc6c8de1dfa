package zone

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/security-zone/internal/domain/zone"
	"github.com/oshokin/security-zone/internal/logger"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	SetSurveillance(ctx context.Context, armed bool, actor *domain.Actor) (domain.Snapshot, error)
	Snapshot() domain.Snapshot
}

// Server implements the ZoneService gRPC API.
type Server struct {
	// service provides the zone operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetZoneState returns the current zone snapshot.
func (s *Server) GetZoneState(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	snapshot := s.service.Snapshot()

	return SnapshotToStruct(&snapshot), nil
}

// SetSurveillance arms or disarms the zone.
func (s *Server) SetSurveillance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	armed, actor, err := ParseSetSurveillanceRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	snapshot, err := s.service.SetSurveillance(ctx, armed, actor)
	if err != nil {
		logger.ErrorKV(ctx, "SetSurveillance failed", "actor", actor.String(), "error", err)

		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, status.FromContextError(err).Err()
		default:
			return nil, status.Error(codes.Unavailable, "zone controller is not running")
		}
	}

	return SnapshotToStruct(&snapshot), nil
}
