package query

import "maps"

// Row is one log line or sample as seen by client-side transforms.
type Row struct {
	Labels map[string]string
	// Extracted is the extra_labels column filled by backend-side parsers.
	// ApplyTransforms folds it into Labels, taking precedence over stream
	// labels of the same name.
	Extracted   map[string]string
	Timestamp   int64
	Line        string
	Fingerprint uint64
	Value       float64
}

// Transform is a client-side step applied to every row returned by the
// backend. Apply returns false to drop the row.
type Transform struct {
	Stage string
	Apply func(Row) (Row, bool)
}

// ApplyTransforms runs rows through transforms in order and returns the
// surviving rows. Labels and extracted labels are merged into a fresh map
// before the first transform runs so the caller's rows are never modified.
func ApplyTransforms(rows []Row, transforms []Transform) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		labels := make(map[string]string, len(row.Labels)+len(row.Extracted))
		maps.Copy(labels, row.Labels)
		maps.Copy(labels, row.Extracted)
		row.Labels = labels
		row.Extracted = nil

		keep := true
		for _, t := range transforms {
			if row, keep = t.Apply(row); !keep {
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// StageNames returns the stage name of every transform.
func StageNames(transforms []Transform) []string {
	names := make([]string, 0, len(transforms))
	for _, t := range transforms {
		names = append(names, t.Stage)
	}
	return names
}
