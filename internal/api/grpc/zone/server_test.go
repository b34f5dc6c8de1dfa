package zone

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/security-zone/internal/domain/zone"
)

// fakeService implements the zone Service interface for unit testing the transport.
type fakeService struct {
	// err is returned by SetSurveillance when set.
	err error
	// snapshot holds the current zone state managed by the fake service.
	snapshot domain.Snapshot
}

func newFakeService() *fakeService {
	return &fakeService{
		snapshot: domain.Snapshot{
			Zone:    "garage",
			Outputs: []domain.Output{domain.Surveillance, domain.Detection, domain.Alarm},
		},
	}
}

func (f *fakeService) SetSurveillance(_ context.Context, armed bool, actor *domain.Actor) (domain.Snapshot, error) {
	if f.err != nil {
		return domain.Snapshot{}, f.err
	}

	f.snapshot.State.Armed = armed
	f.snapshot.State.LastActor = actor
	f.snapshot.State.ArmedChangedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.snapshot.UpdatedAt = f.snapshot.State.ArmedChangedAt

	return f.snapshot.Clone(), nil
}

func (f *fakeService) Snapshot() domain.Snapshot { return f.snapshot.Clone() }

// TestServer_SetSurveillance_Validation ensures invalid requests return InvalidArgument errors.
func TestServer_SetSurveillance_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeService())

	_, err := s.SetSurveillance(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.SetSurveillance(context.Background(), NewSetSurveillanceRequest(true, nil))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	noFlag := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldHostname: structpb.NewStringValue("h"),
		fieldUsername: structpb.NewStringValue("u"),
	}}

	_, err = s.SetSurveillance(context.Background(), noFlag)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_SetSurveillance_Unavailable maps a stopped controller to Unavailable.
func TestServer_SetSurveillance_Unavailable(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.err = errors.New("stopped")

	s := NewServer(svc)

	request := NewSetSurveillanceRequest(true, &domain.Actor{Hostname: "h", Username: "u"})

	_, err := s.SetSurveillance(context.Background(), request)
	require.Equal(t, codes.Unavailable, status.Code(err))
}

// TestServer_Roundtrip drives the registered service over an in-memory connection.
func TestServer_Roundtrip(t *testing.T) {
	t.Parallel()

	listener := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer()
	RegisterZoneServiceServer(grpcServer, NewServer(newFakeService()))

	go func() {
		_ = grpcServer.Serve(listener)
	}()

	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	client := NewZoneServiceClient(conn)
	ctx := context.Background()

	response, err := client.SetSurveillance(ctx, NewSetSurveillanceRequest(true, &domain.Actor{
		Hostname: "test-hostname",
		Username: "test-user",
	}))
	require.NoError(t, err)

	snapshot, err := SnapshotFromStruct(response)
	require.NoError(t, err)
	require.True(t, snapshot.State.Armed)
	require.Equal(t, domain.PhaseClear, snapshot.Phase())

	response, err = client.GetZoneState(ctx, new(emptypb.Empty))
	require.NoError(t, err)

	snapshot, err = SnapshotFromStruct(response)
	require.NoError(t, err)
	require.Equal(t, "garage", snapshot.Zone)
	require.Equal(t, []domain.Output{domain.Surveillance, domain.Detection, domain.Alarm}, snapshot.Outputs)
	require.NotNil(t, snapshot.State.LastActor)
	require.Equal(t, "test-user", snapshot.State.LastActor.Username)
	require.Equal(t, "armed-clear", response.GetFields()[fieldPhase].GetStringValue())
}
