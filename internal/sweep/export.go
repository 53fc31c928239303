package sweep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/mutsweep/internal/ir"
	"github.com/roach88/mutsweep/internal/store"
)

// ExportPath returns the aggregate file for records under dir.
func ExportPath(dir string, ns store.Namespace) string {
	return filepath.Join(dir, ns.String()+".json")
}

// WriteExport writes every record of the namespace to
// <dir>/<namespace>.json as canonical JSON keyed by seed. The file is
// replaced atomically.
func WriteExport(ctx context.Context, records store.Records, dir string) (string, error) {
	export, err := records.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", records.Namespace(), err)
	}
	data, err := ir.MarshalExport(export)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", records.Namespace(), err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("export %s: %w", records.Namespace(), err)
	}

	path := ExportPath(dir, records.Namespace())
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("export %s: %w", records.Namespace(), err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("export %s: %w", records.Namespace(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("export %s: %w", records.Namespace(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("export %s: %w", records.Namespace(), err)
	}
	return path, nil
}
