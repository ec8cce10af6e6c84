package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/klauspost/compress/gzip"
)

// DefaultCompressionLevel is used by Save when callers take DefaultStorageOptions.
const DefaultCompressionLevel = 6

// RecompressLevel is the level Recompress uses when none is given.
const RecompressLevel = 9

// DefaultStorageOptions compresses at the default level and keeps every field.
func DefaultStorageOptions() models.SnapshotStorageOptions {
	return models.SnapshotStorageOptions{
		Compress:         true,
		CompressionLevel: DefaultCompressionLevel,
	}
}

// gzipLevel maps the 1-9 user scale onto the encoder's three presets.
func gzipLevel(level int) int {
	switch {
	case level >= 1 && level <= 3:
		return gzip.BestSpeed
	case level >= 4 && level <= 6:
		return gzip.DefaultCompression
	case level >= 7 && level <= 9:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, gzipLevel(level))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}

	_, err = writer.Write(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}

	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	defer func() { _ = reader.Close() }()

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}

	return out, nil
}

// encode serializes snap and builds the header of the stored record.
func encode(snap *models.ExecutionSnapshot, opts models.SnapshotStorageOptions) (*models.SnapshotRecord, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	header := models.SnapshotHeader{
		ExecutionID:  snap.ExecutionID,
		WorkflowID:   snap.WorkflowID,
		WorkflowName: snap.WorkflowName,
		Status:       snap.Status,
		StartedAt:    snap.StartedAt,
		CompletedAt:  snap.CompletedAt,
		DurationMs:   snap.DurationMs,
		OriginalSize: int64(len(payload)),
		Summary:      snap.Summary,
	}

	if !opts.Compress {
		return &models.SnapshotRecord{Header: header, Data: payload}, nil
	}

	compressed, err := compress(payload, opts.CompressionLevel)
	if err != nil {
		return nil, err
	}

	size := int64(len(compressed))
	header.Compressed = true
	header.CompressedSize = &size

	return &models.SnapshotRecord{Header: header, Data: compressed}, nil
}

func decode(record *models.SnapshotRecord) (*models.ExecutionSnapshot, error) {
	payload := record.Data

	if record.Header.Compressed {
		var err error

		payload, err = decompress(record.Data)
		if err != nil {
			return nil, err
		}
	}

	var snap models.ExecutionSnapshot

	err := json.Unmarshal(payload, &snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	return &snap, nil
}
