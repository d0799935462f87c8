package index

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	domidx "github.com/kailas-cloud/paperdex/internal/domain/index"
	idx "github.com/kailas-cloud/paperdex/internal/index"
)

// Reserved hash fields. Everything else in the hash is entry metadata.
const (
	fieldVector    = "__vector"
	fieldSeq       = "__seq"
	fieldDimension = "dimension"
	fieldMetric    = "metric"
	fieldCreatedAt = "created_at"
)

// buildMetaFields flattens a collection descriptor for HSET.
func buildMetaFields(meta domidx.Meta) map[string]string {
	return map[string]string{
		fieldDimension: strconv.Itoa(meta.Dimension()),
		fieldMetric:    string(meta.Metric()),
		fieldCreatedAt: strconv.FormatInt(meta.CreatedAt(), 10),
	}
}

// buildEntryFields flattens a stored entry for HSET. Metadata keys that
// shadow the storage fields are dropped — the vector and sequence number
// must survive the copy no matter what the caller put in the map.
func buildEntryFields(e idx.StoredEntry) map[string]string {
	fields := e.Entry.Fields()
	m := make(map[string]string, 2+len(fields))
	for k, v := range fields {
		if k == fieldVector || k == fieldSeq {
			continue
		}
		m[k] = v
	}
	m[fieldVector] = vectorToBytes(e.Entry.Vector())
	m[fieldSeq] = strconv.FormatInt(e.Seq, 10)
	return m
}

// parseEntryFields converts a flat hash back into a stored entry.
func parseEntryFields(id string, m map[string]string) (idx.StoredEntry, error) {
	vector := bytesToVector(m[fieldVector])
	if vector == nil {
		return idx.StoredEntry{}, fmt.Errorf("corrupt vector for entry %s", id)
	}
	seq, err := strconv.ParseInt(m[fieldSeq], 10, 64)
	if err != nil {
		return idx.StoredEntry{}, fmt.Errorf("bad sequence %q for entry %s: %w", m[fieldSeq], id, err)
	}

	fields := make(map[string]string, len(m)-2)
	for k, v := range m {
		if k == fieldVector || k == fieldSeq {
			continue
		}
		fields[k] = v
	}

	return idx.StoredEntry{
		Entry: domidx.ReconstructEntry(id, vector, fields),
		Seq:   seq,
	}, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
