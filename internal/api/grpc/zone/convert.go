package zone

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/security-zone/internal/domain/zone"
)

// Field names of the zone payloads.
const (
	fieldZone               = "zone"
	fieldPhase              = "phase"
	fieldOutputs            = "outputs"
	fieldUpdatedAt          = "updated_at"
	fieldLastSensorActiveAt = "last_sensor_active_at"
	fieldDetectionChangedAt = "detection_changed_at"
	fieldArmedChangedAt     = "armed_changed_at"
	fieldLastActor          = "last_actor"
	fieldArmed              = "armed"
	fieldHostname           = "hostname"
	fieldUsername           = "username"
)

var (
	// ErrArmedRequired is returned when a surveillance request has no boolean "armed" field.
	ErrArmedRequired = errors.New("armed flag is required")
	// ErrActorRequired is returned when a surveillance request has no actor.
	ErrActorRequired = errors.New("actor hostname and username are required")
)

// NewSetSurveillanceRequest builds the SetSurveillance payload.
func NewSetSurveillanceRequest(armed bool, actor *domain.Actor) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldArmed: structpb.NewBoolValue(armed),
	}

	if actor != nil {
		fields[fieldHostname] = structpb.NewStringValue(actor.Hostname)
		fields[fieldUsername] = structpb.NewStringValue(actor.Username)
	}

	return &structpb.Struct{Fields: fields}
}

// ParseSetSurveillanceRequest extracts the desired arming state and the actor.
func ParseSetSurveillanceRequest(req *structpb.Struct) (bool, *domain.Actor, error) {
	fields := req.GetFields()

	armed, ok := fields[fieldArmed].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, nil, ErrArmedRequired
	}

	actor := &domain.Actor{
		Hostname: fields[fieldHostname].GetStringValue(),
		Username: fields[fieldUsername].GetStringValue(),
	}

	if actor.Hostname == "" || actor.Username == "" {
		return false, nil, ErrActorRequired
	}

	return armed.BoolValue, actor, nil
}

// SnapshotToStruct encodes a zone snapshot. Zero timestamps and a missing actor are omitted.
func SnapshotToStruct(snapshot *domain.Snapshot) *structpb.Struct {
	outputs := make(map[string]*structpb.Value, len(snapshot.Outputs))
	for _, o := range snapshot.Outputs {
		outputs[o.String()] = structpb.NewBoolValue(snapshot.State.Output(o))
	}

	fields := map[string]*structpb.Value{
		fieldZone:    structpb.NewStringValue(snapshot.Zone),
		fieldPhase:   structpb.NewStringValue(snapshot.Phase().String()),
		fieldOutputs: structpb.NewStructValue(&structpb.Struct{Fields: outputs}),
	}

	putTime(fields, fieldUpdatedAt, snapshot.UpdatedAt)
	putTime(fields, fieldLastSensorActiveAt, snapshot.State.LastSensorActiveAt)
	putTime(fields, fieldDetectionChangedAt, snapshot.State.DetectionChangedAt)
	putTime(fields, fieldArmedChangedAt, snapshot.State.ArmedChangedAt)

	if actor := snapshot.State.LastActor; actor != nil {
		fields[fieldLastActor] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				fieldHostname: structpb.NewStringValue(actor.Hostname),
				fieldUsername: structpb.NewStringValue(actor.Username),
			},
		})
	}

	return &structpb.Struct{Fields: fields}
}

// SnapshotFromStruct decodes a zone snapshot. Unknown output names are ignored.
func SnapshotFromStruct(s *structpb.Struct) (domain.Snapshot, error) {
	fields := s.GetFields()

	snapshot := domain.Snapshot{
		Zone: fields[fieldZone].GetStringValue(),
	}

	values := fields[fieldOutputs].GetStructValue().GetFields()
	for _, o := range domain.AllOutputs {
		value, ok := values[o.String()]
		if !ok {
			continue
		}

		snapshot.Outputs = append(snapshot.Outputs, o)

		on := value.GetBoolValue()

		switch o {
		case domain.Surveillance:
			snapshot.State.Armed = on
		case domain.Detection:
			snapshot.State.Detection = on
		case domain.Intrusion:
			snapshot.State.Intrusion = on
		case domain.Alarm:
			snapshot.State.Alarm = on
		}
	}

	var err error

	if snapshot.UpdatedAt, err = getTime(fields, fieldUpdatedAt); err != nil {
		return domain.Snapshot{}, err
	}

	if snapshot.State.LastSensorActiveAt, err = getTime(fields, fieldLastSensorActiveAt); err != nil {
		return domain.Snapshot{}, err
	}

	if snapshot.State.DetectionChangedAt, err = getTime(fields, fieldDetectionChangedAt); err != nil {
		return domain.Snapshot{}, err
	}

	if snapshot.State.ArmedChangedAt, err = getTime(fields, fieldArmedChangedAt); err != nil {
		return domain.Snapshot{}, err
	}

	if actor := fields[fieldLastActor].GetStructValue().GetFields(); actor != nil {
		snapshot.State.LastActor = &domain.Actor{
			Hostname: actor[fieldHostname].GetStringValue(),
			Username: actor[fieldUsername].GetStringValue(),
		}
	}

	return snapshot, nil
}

func putTime(fields map[string]*structpb.Value, key string, t time.Time) {
	if t.IsZero() {
		return
	}

	fields[key] = structpb.NewStringValue(t.UTC().Format(time.RFC3339Nano))
}

func getTime(fields map[string]*structpb.Value, key string) (time.Time, error) {
	raw := fields[key].GetStringValue()
	if raw == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", key, err)
	}

	return t, nil
}
