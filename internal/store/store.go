package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/juergenlandauer/landtalk/internal/model"
)

// Store manages all data persistence via DuckDB.
type Store struct {
	DB      *sql.DB
	DataDir string
}

// New opens (or creates) a DuckDB database in the given data directory.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "landtalk.duckdb")
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}

	s := &Store{DB: db, DataDir: dataDir}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) migrate() error {
	seqs := []string{
		"CREATE SEQUENCE IF NOT EXISTS features_seq",
	}
	for _, seq := range seqs {
		if _, err := s.DB.Exec(seq); err != nil {
			return fmt.Errorf("creating sequence: %w", err)
		}
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS captures (
			id TEXT PRIMARY KEY,
			crs TEXT NOT NULL,
			ext_left DOUBLE NOT NULL,
			ext_top DOUBLE NOT NULL,
			ext_right DOUBLE NOT NULL,
			ext_bottom DOUBLE NOT NULL,
			image_path TEXT,
			captured_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			capture_id TEXT,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			result_text TEXT NOT NULL,
			cleaned_text TEXT,
			state TEXT NOT NULL,
			total INTEGER NOT NULL,
			processed INTEGER NOT NULL,
			skipped_confidence INTEGER NOT NULL,
			skipped_missing INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS features (
			id INTEGER PRIMARY KEY DEFAULT nextval('features_seq'),
			run_id TEXT NOT NULL,
			result_number INTEGER NOT NULL,
			label TEXT NOT NULL,
			object_type TEXT NOT NULL,
			probability DOUBLE,
			reason TEXT,
			geocoded BOOLEAN NOT NULL,
			bbox_xmin DOUBLE, bbox_ymin DOUBLE, bbox_xmax DOUBLE, bbox_ymax DOUBLE,
			point_x DOUBLE, point_y DOUBLE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration %q: %w", stmt[:40], err)
		}
	}

	return nil
}

// WriteCapture inserts or replaces a captured map area.
func (s *Store) WriteCapture(c *model.Capture) error {
	_, err := s.DB.Exec(`INSERT OR REPLACE INTO captures
		(id, crs, ext_left, ext_top, ext_right, ext_bottom, image_path, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CRS, c.Extent.Left, c.Extent.Top, c.Extent.Right, c.Extent.Bottom,
		c.ImagePath, c.CapturedAt)
	return err
}

// ReadCapture loads one capture by id.
func (s *Store) ReadCapture(id string) (*model.Capture, error) {
	var c model.Capture
	var left, top, right, bottom float64
	var imagePath sql.NullString
	err := s.DB.QueryRow(`SELECT id, crs, ext_left, ext_top, ext_right, ext_bottom, image_path, captured_at
		FROM captures WHERE id = ?`, id).
		Scan(&c.ID, &c.CRS, &left, &top, &right, &bottom, &imagePath, &c.CapturedAt)
	if err != nil {
		return nil, err
	}
	c.Extent = model.NewExtent(left, top, right, bottom)
	c.ImagePath = imagePath.String
	return &c, nil
}

// LatestCapture returns the most recently registered capture, or nil when
// none exist.
func (s *Store) LatestCapture() (*model.Capture, error) {
	var id string
	err := s.DB.QueryRow("SELECT id FROM captures ORDER BY captured_at DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.ReadCapture(id)
}

// ListCaptures loads all captures, newest first.
func (s *Store) ListCaptures() ([]model.Capture, error) {
	rows, err := s.DB.Query(`SELECT id, crs, ext_left, ext_top, ext_right, ext_bottom, image_path, captured_at
		FROM captures ORDER BY captured_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Capture
	for rows.Next() {
		var c model.Capture
		var left, top, right, bottom float64
		var imagePath sql.NullString
		if err := rows.Scan(&c.ID, &c.CRS, &left, &top, &right, &bottom, &imagePath, &c.CapturedAt); err != nil {
			return nil, err
		}
		c.Extent = model.NewExtent(left, top, right, bottom)
		c.ImagePath = imagePath.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// WriteRun saves one pipeline run together with its geocoded features.
// Re-writing an existing run id replaces its features.
func (s *Store) WriteRun(r *model.Run, features []model.GeoDetection) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM features WHERE run_id = ?", r.ID); err != nil {
		return err
	}

	if _, err := tx.Exec(`INSERT OR REPLACE INTO runs
		(id, capture_id, provider, model, result_text, cleaned_text, state,
		 total, processed, skipped_confidence, skipped_missing, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CaptureID, r.Provider, r.Model, r.ResultText, r.CleanedText, r.State,
		r.Stats.Total, r.Stats.Processed, r.Stats.SkippedConfidence, r.Stats.SkippedMissing,
		r.CreatedAt); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO features
		(run_id, result_number, label, object_type, probability, reason, geocoded,
		 bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax, point_x, point_y)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range features {
		var prob sql.NullFloat64
		if f.Probability != nil {
			prob = sql.NullFloat64{Float64: *f.Probability, Valid: true}
		}
		var xmin, ymin, xmax, ymax, px, py sql.NullFloat64
		if f.MapBBox != nil {
			xmin = sql.NullFloat64{Float64: f.MapBBox.XMin, Valid: true}
			ymin = sql.NullFloat64{Float64: f.MapBBox.YMin, Valid: true}
			xmax = sql.NullFloat64{Float64: f.MapBBox.XMax, Valid: true}
			ymax = sql.NullFloat64{Float64: f.MapBBox.YMax, Valid: true}
		}
		if f.MapPoint != nil {
			px = sql.NullFloat64{Float64: f.MapPoint.X, Valid: true}
			py = sql.NullFloat64{Float64: f.MapPoint.Y, Valid: true}
		}
		if _, err := stmt.Exec(r.ID, f.ResultNumber, f.Label, f.ObjectType, prob, f.Reason,
			f.Geocoded, xmin, ymin, xmax, ymax, px, py); err != nil {
			return fmt.Errorf("inserting feature %d: %w", f.ResultNumber, err)
		}
	}

	return tx.Commit()
}

// ReadRun loads one run by id.
func (s *Store) ReadRun(id string) (*model.Run, error) {
	var r model.Run
	var captureID, cleaned sql.NullString
	err := s.DB.QueryRow(`SELECT id, capture_id, provider, model, result_text, cleaned_text, state,
		total, processed, skipped_confidence, skipped_missing, created_at
		FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &captureID, &r.Provider, &r.Model, &r.ResultText, &cleaned, &r.State,
			&r.Stats.Total, &r.Stats.Processed, &r.Stats.SkippedConfidence, &r.Stats.SkippedMissing,
			&r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.CaptureID = captureID.String
	r.CleanedText = cleaned.String
	return &r, nil
}

// ListRuns loads all runs, newest first.
func (s *Store) ListRuns() ([]model.Run, error) {
	rows, err := s.DB.Query(`SELECT id, capture_id, provider, model, result_text, cleaned_text, state,
		total, processed, skipped_confidence, skipped_missing, created_at
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		var r model.Run
		var captureID, cleaned sql.NullString
		if err := rows.Scan(&r.ID, &captureID, &r.Provider, &r.Model, &r.ResultText, &cleaned, &r.State,
			&r.Stats.Total, &r.Stats.Processed, &r.Stats.SkippedConfidence, &r.Stats.SkippedMissing,
			&r.CreatedAt); err != nil {
			return nil, err
		}
		r.CaptureID = captureID.String
		r.CleanedText = cleaned.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReadFeatures loads a run's geocoded features ordered by result number.
func (s *Store) ReadFeatures(runID string) ([]model.GeoDetection, error) {
	rows, err := s.DB.Query(`SELECT result_number, label, object_type, probability, reason, geocoded,
		bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax, point_x, point_y
		FROM features WHERE run_id = ? ORDER BY result_number`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GeoDetection
	for rows.Next() {
		var f model.GeoDetection
		var prob, xmin, ymin, xmax, ymax, px, py sql.NullFloat64
		var reason sql.NullString
		if err := rows.Scan(&f.ResultNumber, &f.Label, &f.ObjectType, &prob, &reason, &f.Geocoded,
			&xmin, &ymin, &xmax, &ymax, &px, &py); err != nil {
			return nil, err
		}
		if prob.Valid {
			p := prob.Float64
			f.Probability = &p
		}
		f.Reason = reason.String
		if xmin.Valid {
			f.MapBBox = &model.BBox{XMin: xmin.Float64, YMin: ymin.Float64, XMax: xmax.Float64, YMax: ymax.Float64}
		}
		if px.Valid {
			f.MapPoint = &model.Point{X: px.Float64, Y: py.Float64}
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Counts returns row counts for the status report.
func (s *Store) Counts() (captures, runs, features int, err error) {
	if err = s.DB.QueryRow("SELECT count(*) FROM captures").Scan(&captures); err != nil {
		return
	}
	if err = s.DB.QueryRow("SELECT count(*) FROM runs").Scan(&runs); err != nil {
		return
	}
	err = s.DB.QueryRow("SELECT count(*) FROM features").Scan(&features)
	return
}
