package director

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"

	"github.com/vegasq/evtab/table"
)

// Snapshot container: a fixed header followed by an LZ4 frame holding the
// concatenated column buffers.
//
//	magic "EVTB" | u32 version | u64 rows | u32 ncols
//	per column: u16 name len | name | u8 type | u8 kind | u32 width | u64 payload len
//	lz4 frame: payloads in header order
const (
	snapshotMagic   = "EVTB"
	snapshotVersion = 1
)

// WriteSnapshot writes a table's stored columns as a single compressed
// container, the cheap intermediate spill format between batches.
func WriteSnapshot(w io.Writer, t *table.Table) error {
	buffers, err := Serialize(t)
	if err != nil {
		return err
	}
	stored := t.Schema().Stored()

	if _, err := io.WriteString(w, snapshotMagic); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	header := []interface{}{
		uint32(snapshotVersion),
		uint64(t.Len()),
		uint32(len(stored)),
	}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write snapshot header: %w", err)
		}
	}
	for _, desc := range stored {
		if err := writeColumnHeader(w, desc, uint64(len(buffers[desc.Name]))); err != nil {
			return err
		}
	}

	zw := lz4.NewWriter(w)
	for _, desc := range stored {
		if _, err := zw.Write(buffers[desc.Name]); err != nil {
			return fmt.Errorf("failed to compress column %q: %w", desc.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish snapshot frame: %w", err)
	}
	return nil
}

func writeColumnHeader(w io.Writer, desc table.ColumnDescriptor, payload uint64) error {
	if len(desc.Name) > 0xFFFF {
		return fmt.Errorf("%w: column name %q too long", table.ErrSchemaMismatch, desc.Name)
	}
	fields := []interface{}{
		uint16(len(desc.Name)),
		[]byte(desc.Name),
		uint8(desc.Type),
		uint8(desc.Kind),
		uint32(desc.Width),
		payload,
	}
	for _, v := range fields {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write column header for %q: %w", desc.Name, err)
		}
	}
	return nil
}

// snapshotColumn is one decoded column header plus its payload.
type snapshotColumn struct {
	desc    table.ColumnDescriptor
	payload []byte
}

// ReadSnapshot reads a snapshot and binds it to the given schema, which may
// carry dynamic columns on top of the stored ones; those are recomputed, not
// transported. The stored columns must match the snapshot header exactly.
func ReadSnapshot(r io.Reader, schema *table.Schema) (*table.Table, error) {
	cols, _, err := readSnapshotColumns(r)
	if err != nil {
		return nil, err
	}
	stored := schema.Stored()
	if len(stored) != len(cols) {
		return nil, fmt.Errorf("%w: snapshot has %d columns, schema stores %d",
			table.ErrSchemaMismatch, len(cols), len(stored))
	}
	buffers := make(map[string][]byte, len(cols))
	for i, c := range cols {
		want := stored[i]
		if c.desc.Name != want.Name || c.desc.Type != want.Type || c.desc.Width != want.Width {
			return nil, fmt.Errorf("%w: snapshot column %d is %q %s, schema wants %q %s",
				table.ErrSchemaMismatch, i, c.desc.Name, c.desc.Type, want.Name, want.Type)
		}
		buffers[c.desc.Name] = c.payload
	}
	return Materialize(schema, buffers)
}

// ReadSnapshotAny reads a snapshot and reconstructs a schema from its own
// header. Used by tooling that has no declared schema at hand.
func ReadSnapshotAny(r io.Reader) (*table.Table, error) {
	cols, _, err := readSnapshotColumns(r)
	if err != nil {
		return nil, err
	}
	descs := make([]table.ColumnDescriptor, len(cols))
	buffers := make(map[string][]byte, len(cols))
	for i, c := range cols {
		descs[i] = c.desc
		buffers[c.desc.Name] = c.payload
	}
	schema, err := table.NewSchema(descs...)
	if err != nil {
		return nil, err
	}
	return Materialize(schema, buffers)
}

// readSnapshotFile reads one snapshot file bound to the given schema.
func readSnapshotFile(path string, schema *table.Schema) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadSnapshot(f, schema)
}

// WriteSnapshotFile writes a table as a single snapshot file.
func WriteSnapshotFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := WriteSnapshot(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readSnapshotColumns(r io.Reader) ([]snapshotColumn, uint64, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, 0, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if string(magic) != snapshotMagic {
		return nil, 0, fmt.Errorf("not a snapshot: bad magic %q", magic)
	}
	var version, ncols uint32
	var rows uint64
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, 0, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if version != snapshotVersion {
		return nil, 0, fmt.Errorf("unsupported snapshot version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return nil, 0, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &ncols); err != nil {
		return nil, 0, fmt.Errorf("failed to read snapshot header: %w", err)
	}

	cols := make([]snapshotColumn, ncols)
	for i := range cols {
		desc, payload, err := readColumnHeader(r)
		if err != nil {
			return nil, 0, err
		}
		cols[i].desc = desc
		cols[i].payload = make([]byte, payload)
	}

	zr := lz4.NewReader(r)
	for i := range cols {
		if _, err := io.ReadFull(zr, cols[i].payload); err != nil {
			return nil, 0, fmt.Errorf("failed to decompress column %q: %w", cols[i].desc.Name, err)
		}
	}
	return cols, rows, nil
}

func readColumnHeader(r io.Reader) (table.ColumnDescriptor, uint64, error) {
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return table.ColumnDescriptor{}, 0, fmt.Errorf("failed to read column header: %w", err)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return table.ColumnDescriptor{}, 0, fmt.Errorf("failed to read column header: %w", err)
	}
	var (
		typ, kind uint8
		width     uint32
		payload   uint64
	)
	if err := binary.Read(r, binary.LittleEndian, &typ); err != nil {
		return table.ColumnDescriptor{}, 0, fmt.Errorf("failed to read column header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return table.ColumnDescriptor{}, 0, fmt.Errorf("failed to read column header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return table.ColumnDescriptor{}, 0, fmt.Errorf("failed to read column header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &payload); err != nil {
		return table.ColumnDescriptor{}, 0, fmt.Errorf("failed to read column header: %w", err)
	}
	desc := table.ColumnDescriptor{
		Name:  string(name),
		Kind:  table.ColumnKind(kind),
		Type:  table.ValueType(typ),
		Width: int(width),
	}
	return desc, payload, nil
}
