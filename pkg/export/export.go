// Package export serializes detection results to CSV and JSON for use
// by downstream matching and cataloging tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"starquads/pkg/detect"
	"starquads/pkg/pipeline"
	"starquads/pkg/quads"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteStarsCSV writes one row per selected star with its centroid and
// shape statistics.
func WriteStarsCSV(w io.Writer, stars []detect.Properties) error {
	cw := csv.NewWriter(w)

	header := []string{"index", "x", "y", "area", "majorAxis", "minorAxis", "eccentricity", "rotationAngle"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing star CSV header: %w", err)
	}

	for i, s := range stars {
		row := []string{
			strconv.Itoa(i),
			formatFloat(s.Centroid.X),
			formatFloat(s.Centroid.Y),
			formatFloat(s.Area),
			formatFloat(s.MajorAxis),
			formatFloat(s.MinorAxis),
			formatFloat(s.Eccentricity),
			formatFloat(s.RotationAngle),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing star CSV row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteQuadsCSV writes one row per quad: the seed it came from, the four
// star positions, and the canonical descriptor. Descriptor columns are
// what a matcher indexes on; the positions are for inspection.
func WriteQuadsCSV(w io.Writer, seedQuads []quads.SeedQuad) error {
	cw := csv.NewWriter(w)

	header := []string{
		"seed", "quad",
		"x1", "y1", "x2", "y2", "x3", "y3", "x4", "y4",
		"dx3", "dy3", "dx4", "dy4",
		"degenerate",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing quad CSV header: %w", err)
	}

	for si, sq := range seedQuads {
		for qi, q := range sq.Quads {
			row := make([]string, 0, len(header))
			row = append(row, strconv.Itoa(si), strconv.Itoa(qi))
			for _, s := range q.Stars {
				row = append(row, formatFloat(s.X), formatFloat(s.Y))
			}
			for _, d := range q.Descriptor {
				row = append(row, formatFloat(d))
			}
			row = append(row, strconv.FormatBool(q.Degenerate))

			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing quad CSV row %d/%d: %w", si, qi, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteResultJSON writes the whole pipeline result as indented JSON.
func WriteResultJSON(w io.Writer, result *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding result JSON: %w", err)
	}
	return nil
}

// SaveStarsCSV writes the star CSV to a file.
func SaveStarsCSV(path string, stars []detect.Properties) error {
	return saveTo(path, func(w io.Writer) error {
		return WriteStarsCSV(w, stars)
	})
}

// SaveQuadsCSV writes the quad CSV to a file.
func SaveQuadsCSV(path string, seedQuads []quads.SeedQuad) error {
	return saveTo(path, func(w io.Writer) error {
		return WriteQuadsCSV(w, seedQuads)
	})
}

// SaveResultJSON writes the result JSON to a file.
func SaveResultJSON(path string, result *pipeline.Result) error {
	return saveTo(path, func(w io.Writer) error {
		return WriteResultJSON(w, result)
	})
}

func saveTo(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
