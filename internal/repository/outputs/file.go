package outputs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/domain/zone"
)

// Registry defines persistence operations for the zone outputs.
type Registry interface {
	// Ensure creates the listed outputs that do not exist yet, default off.
	Ensure(ctx context.Context, outputs []zone.Output) error
	// Load returns every existing output.
	Load(ctx context.Context) (map[zone.Output]bool, error)
	// Write updates the provided outputs. Writing an output that does not exist
	// fails with zone.ErrMissingOutput.
	Write(ctx context.Context, values map[zone.Output]bool) error
	// Missing returns the listed outputs that do not exist.
	Missing(ctx context.Context, outputs []zone.Output) ([]zone.Output, error)
}

// Document keys.
const (
	keyZone      = "zone"
	keyUpdatedAt = "updated_at"
	keyOutputs   = "outputs"
)

// FileRegistry persists the zone outputs to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) of a
// structpb.Struct, the same encoding the gRPC surface uses.
type FileRegistry struct {
	// path is the filesystem location of the JSON outputs file.
	path string
	// zoneName is written alongside the outputs.
	zoneName string
	// mu protects concurrent access to the outputs file.
	mu sync.Mutex
}

// ErrNotFound is returned when the outputs file does not exist yet.
var ErrNotFound = errors.New("outputs not found")

// NewFileRegistry creates a registry that reads/writes JSON at the provided path.
func NewFileRegistry(path, zoneName string) *FileRegistry {
	return &FileRegistry{
		path:     filepath.Clean(path),
		zoneName: zoneName,
	}
}

// Ensure creates the missing outputs, default off.
func (r *FileRegistry) Ensure(_ context.Context, outputs []zone.Output) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	switch {
	case errors.Is(err, ErrNotFound):
		values = make(map[zone.Output]bool, len(outputs))
	case err != nil:
		return err
	}

	created := false

	for _, o := range outputs {
		if _, ok := values[o]; ok {
			continue
		}

		values[o] = false
		created = true
	}

	if !created {
		return nil
	}

	return r.write(values)
}

// Load reads the outputs from disk.
func (r *FileRegistry) Load(_ context.Context) (map[zone.Output]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.read()
}

// Write updates the provided outputs on disk.
func (r *FileRegistry) Write(_ context.Context, values map[zone.Output]bool) error {
	if len(values) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.read()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: outputs file %s does not exist", zone.ErrMissingOutput, r.path)
		}

		return err
	}

	for o, v := range values {
		if _, ok := current[o]; !ok {
			return fmt.Errorf("%w: %s", zone.ErrMissingOutput, o)
		}

		current[o] = v
	}

	return r.write(current)
}

// Missing returns the listed outputs absent from disk.
func (r *FileRegistry) Missing(_ context.Context, outputs []zone.Output) ([]zone.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.read()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return outputs, nil
		}

		return nil, err
	}

	var missing []zone.Output

	for _, o := range outputs {
		if _, ok := current[o]; !ok {
			missing = append(missing, o)
		}
	}

	return missing, nil
}

// read loads and decodes the outputs file. The caller holds mu.
func (r *FileRegistry) read() (map[zone.Output]bool, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read outputs file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode outputs file: %w", err)
	}

	return fromDocument(&document), nil
}

// write encodes and stores the outputs file. The caller holds mu.
func (r *FileRegistry) write(values map[zone.Output]bool) error {
	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(toDocument(r.zoneName, values, time.Now()))
	if err != nil {
		return fmt.Errorf("encode outputs: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write outputs file: %w", err)
	}

	return nil
}

// fromDocument extracts the known outputs from the stored document.
func fromDocument(document *structpb.Struct) map[zone.Output]bool {
	values := make(map[zone.Output]bool, len(zone.AllOutputs))

	stored := document.GetFields()[keyOutputs].GetStructValue()
	for name, value := range stored.GetFields() {
		o, ok := zone.ParseOutput(name)
		if !ok {
			continue
		}

		values[o] = value.GetBoolValue()
	}

	return values
}

// toDocument builds the stored document.
func toDocument(zoneName string, values map[zone.Output]bool, now time.Time) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(values))
	for o, v := range values {
		fields[o.String()] = structpb.NewBoolValue(v)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			keyZone:      structpb.NewStringValue(zoneName),
			keyUpdatedAt: structpb.NewStringValue(now.UTC().Format(time.RFC3339)),
			keyOutputs:   structpb.NewStructValue(&structpb.Struct{Fields: fields}),
		},
	}
}
