package importer

import (
	"os"
	"path/filepath"

	"github.com/giotroni/DB-VP/internal/schema"
	"github.com/giotroni/DB-VP/internal/tabular"
)

// fileExtensions are the accepted input file suffixes, in match order.
// The delimiter is still detected from content, never assumed from the
// extension.
var fileExtensions = []string{".csv", ".txt", ".tsv"}

// Discover scans dir for the registered tables' input files, in import
// order. Only the registered names are considered; anything else in the
// directory is ignored. The directory is created if absent. Each found
// file is recorded with its size, data-row count and modification time.
func Discover(dir string) ([]FileInfo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(schema.ImportOrder))
	for _, name := range schema.ImportOrder {
		infos = append(infos, discoverFile(dir, name))
	}
	return infos, nil
}

// discoverFile locates one table's input file. The first extension that
// matches wins.
func discoverFile(dir, table string) FileInfo {
	for _, ext := range fileExtensions {
		path := filepath.Join(dir, table+ext)
		st, err := os.Stat(path)
		if err != nil || st.IsDir() {
			continue
		}

		info := FileInfo{
			Table:   table,
			Path:    path,
			Size:    st.Size(),
			ModTime: st.ModTime(),
		}
		if parsed, err := tabular.Read(path); err == nil {
			info.Rows = len(parsed.Rows)
		}
		return info
	}
	return FileInfo{Table: table, Missing: true}
}
