package importexport

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hucha-app/hucha/internal/core/domain"
)

// ExportSnapshotJSON writes the full snapshot as an indented document suitable
// for backups.
func ExportSnapshotJSON(w io.Writer, snap domain.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ImportSnapshotJSON reads a partial or full backup. Collections absent from
// the document stay nil so the caller can leave them untouched.
func ImportSnapshotJSON(r io.Reader) (domain.SnapshotImport, error) {
	var imp domain.SnapshotImport
	if err := json.NewDecoder(r).Decode(&imp); err != nil {
		return domain.SnapshotImport{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return imp, nil
}
