package orchestrator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const metadataSuffix = "_metadata.json"

// recordKeys is the canonical top-level key order of a persisted
// record; it must match the MetadataRecord field order.
var recordKeys = []string{
	"file_info",
	"audio_properties",
	"automated_tags",
	"acoustic_features",
	"speaking_style_features",
	"text",
	"transcription_metadata",
	"linguistic_analysis",
	"manual_review_required",
	"manual_annotations",
	"annotation_status",
	"notes",
}

// preservedKeys are the blocks owned by the annotation GUI. A
// merge-preserving write keeps the on-disk versions of these.
var preservedKeys = []string{"manual_annotations", "annotation_status"}

// Persister writes one metadata record per input file, named by the
// input's base name. By default a rewrite preserves the existing
// manual_annotations and annotation_status blocks plus any unknown
// top-level keys; Overwrite discards the old file entirely. Writes
// are whole-file replacements via a temp file and rename, so an
// interrupted run never leaves a partial record.
type Persister struct {
	OutputDir string
	Overwrite bool
}

func NewPersister(outputDir string, overwrite bool) *Persister {
	return &Persister{OutputDir: outputDir, Overwrite: overwrite}
}

// PathFor maps an input audio filename to its record path.
func (p *Persister) PathFor(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return filepath.Join(p.OutputDir, base+metadataSuffix)
}

// Write persists the record and returns the path written.
func (p *Persister) Write(rec *MetadataRecord) (string, error) {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return "", err
	}
	out := p.PathFor(rec.FileInfo.Filename)

	fields, err := recordFields(rec)
	if err != nil {
		return "", err
	}

	extra := map[string]json.RawMessage{}
	if !p.Overwrite {
		if old, err := readFields(out); err == nil {
			for _, k := range preservedKeys {
				if v, ok := old[k]; ok {
					fields[k] = v
				}
			}
			for k, v := range old {
				if !isRecordKey(k) {
					extra[k] = v
				}
			}
		}
	}

	data, err := encodeOrdered(fields, extra)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(out, data); err != nil {
		return "", err
	}
	return out, nil
}

// ReadRecord loads a persisted record. Unknown top-level keys are
// ignored here but survive the next Write.
func ReadRecord(path string) (*MetadataRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec MetadataRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", path, err)
	}
	return &rec, nil
}

// recordFields marshals the record without HTML escaping (Thai text
// must survive byte-for-byte readable) and splits it into top-level
// raw values.
func recordFields(rec *MetadataRecord) (map[string]json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func readFields(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func isRecordKey(k string) bool {
	for _, known := range recordKeys {
		if k == known {
			return true
		}
	}
	return false
}

// encodeOrdered renders the record with the canonical key order
// followed by foreign keys in sorted order, two-space indented.
func encodeOrdered(fields, extra map[string]json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(fields)+len(extra))
	for _, k := range recordKeys {
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
		}
	}
	extraKeys := make([]string, 0, len(extra))
	for k := range extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	keys = append(keys, extraKeys...)

	var b bytes.Buffer
	b.WriteString("{\n")
	for i, k := range keys {
		val, ok := fields[k]
		if !ok {
			val = extra[k]
		}
		var indented bytes.Buffer
		if err := json.Indent(&indented, val, "  ", "  "); err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "  %q: %s", k, indented.Bytes())
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.Bytes(), nil
}

// writeAtomic replaces path in one step so readers and interrupted
// runs never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
