package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
)

// ReadDetectionsCSV parses the YOLO inference results file. The bbox columns
// arrive as bracketed lists ("[x1, y1, x2, y2]"), absolute pixels in `bbox`
// and [0,1] coordinates in `bbox_normalized`.
func ReadDetectionsCSV(path string, now time.Time) ([]models.RawImageDetection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open detections file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse detections file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"image_file", "class_name", "confidence", "bbox", "bbox_normalized"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("detections file missing column %q", required)
		}
	}

	out := make([]models.RawImageDetection, 0, len(records)-1)
	for line, rec := range records[1:] {
		confidence, err := strconv.ParseFloat(rec[col["confidence"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad confidence %q: %w", line+2, rec[col["confidence"]], err)
		}
		bbox, err := parseBboxList(rec[col["bbox"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad bbox: %w", line+2, err)
		}
		norm, err := parseBboxList(rec[col["bbox_normalized"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad bbox_normalized: %w", line+2, err)
		}

		out = append(out, models.RawImageDetection{
			ImageFile:  rec[col["image_file"]],
			ClassName:  rec[col["class_name"]],
			Confidence: confidence,
			BboxX1:     int64(bbox[0]),
			BboxY1:     int64(bbox[1]),
			BboxX2:     int64(bbox[2]),
			BboxY2:     int64(bbox[3]),
			BboxNormX1: norm[0],
			BboxNormY1: norm[1],
			BboxNormX2: norm[2],
			BboxNormY2: norm[3],
			CreatedAt:  now,
		})
	}
	return out, nil
}

func parseBboxList(s string) ([4]float64, error) {
	var out [4]float64
	s = strings.Trim(strings.TrimSpace(s), "[]")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return out, fmt.Errorf("expected 4 coordinates, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
