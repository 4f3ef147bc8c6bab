// Package export writes analysis results to files. The target format is
// chosen by file extension (.json, .yaml/.yml, .csv); a trailing .gz
// compresses the encoded payload.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"pycm/internal/advisor"
	pycmerrors "pycm/internal/errors"
	"pycm/internal/logging"
)

// CSVColumns is the canonical per-module column order for csv exports.
var CSVColumns = []string{
	"module_path",
	"afferent_coupling",
	"efferent_coupling",
	"instability",
	"abstractness",
	"distance_from_main_sequence",
	"category",
	"lines_of_code",
}

// Exporter writes analysis results to the filesystem.
type Exporter struct {
	logger *logging.Logger
}

// NewExporter creates a new exporter
func NewExporter(logger *logging.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Export encodes the result and writes it to path. Existing files are
// only replaced when overwrite is set.
func (e *Exporter) Export(path string, overwrite bool, result *advisor.Result) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return pycmerrors.New(pycmerrors.ExportFailed, "file already exists: "+path)
		}
	}

	target := path
	compress := false
	if strings.HasSuffix(target, ".gz") {
		compress = true
		target = strings.TrimSuffix(target, ".gz")
	}

	data, err := encode(filepath.Ext(target), result)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return pycmerrors.Wrap(pycmerrors.ExportFailed, "failed to create export directory", err)
		}
	}

	if err := write(path, data, compress); err != nil {
		return pycmerrors.Wrap(pycmerrors.ExportFailed, "failed to write "+path, err)
	}

	e.logger.Info("results exported", map[string]interface{}{
		"path":  path,
		"bytes": len(data),
	})
	return nil
}

func encode(ext string, result *advisor.Result) ([]byte, error) {
	switch ext {
	case ".json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, pycmerrors.Wrap(pycmerrors.ExportFailed, "json encoding failed", err)
		}
		return data, nil
	case ".yaml", ".yml":
		data, err := yaml.Marshal(result)
		if err != nil {
			return nil, pycmerrors.Wrap(pycmerrors.ExportFailed, "yaml encoding failed", err)
		}
		return data, nil
	case ".csv":
		return encodeCSV(result)
	default:
		return nil, pycmerrors.New(pycmerrors.ExportFailed, "unsupported export format: "+ext)
	}
}

// encodeCSV renders one row per module using the canonical column order.
func encodeCSV(result *advisor.Result) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(CSVColumns); err != nil {
		return nil, pycmerrors.Wrap(pycmerrors.ExportFailed, "csv encoding failed", err)
	}

	for _, m := range result.Project.ModuleMetrics {
		row := []string{
			m.ModulePath,
			strconv.Itoa(m.AfferentCoupling),
			strconv.Itoa(m.EfferentCoupling),
			strconv.FormatFloat(m.Instability, 'f', 3, 64),
			strconv.FormatFloat(m.Abstractness, 'f', 3, 64),
			strconv.FormatFloat(m.DistanceFromMainSequence, 'f', 3, 64),
			string(m.Category),
			strconv.Itoa(m.LinesOfCode),
		}
		if err := w.Write(row); err != nil {
			return nil, pycmerrors.Wrap(pycmerrors.ExportFailed, "csv encoding failed", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, pycmerrors.Wrap(pycmerrors.ExportFailed, "csv encoding failed", err)
	}
	return []byte(sb.String()), nil
}

func write(path string, data []byte, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(f)
		w = gz
	}

	_, werr := w.Write(data)
	if gz != nil {
		if cerr := gz.Close(); werr == nil {
			werr = cerr
		}
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}
