package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/voxel/l1lattice"
	"github.com/banshee-data/voxel.paint/internal/voxel/l3exposure"
	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
)

// ErrDuplicatePlacement is returned when a cell is recorded twice within
// one session. The orchestrator's occupancy index prevents this in normal
// operation.
var ErrDuplicatePlacement = errors.New("placement already recorded for cell")

// PlacementRecord is a stored placement.
type PlacementRecord struct {
	PlacementID string             `json:"placement_id"`
	SessionID   string             `json:"session_id"`
	Placement   pipeline.Placement `json:"placement"`
}

// PlacementStore records placements for one session and implements
// pipeline.PlacementSink.
type PlacementStore struct {
	db        *sql.DB
	sessionID string
}

var _ pipeline.PlacementSink = (*PlacementStore)(nil)

// NewPlacementStore creates a store that writes into sessionID.
func NewPlacementStore(db *DB, sessionID string) *PlacementStore {
	return &PlacementStore{db: db.DB, sessionID: sessionID}
}

// SessionID returns the session this store writes into.
func (s *PlacementStore) SessionID() string { return s.sessionID }

// RecordPlacement inserts p. Uncoloured placements store NULL colour columns.
func (s *PlacementStore) RecordPlacement(p pipeline.Placement) error {
	query := `
		INSERT INTO voxel_placements (
			placement_id, session_id, tick, source_index,
			key_x, key_y, key_z,
			center_x, center_y, center_z, edge,
			hit_x, hit_y, hit_z,
			colored, color_r, color_g, color_b, color_a,
			brightness, correction, placed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, key_x, key_y, key_z) DO NOTHING
	`
	result, err := s.db.Exec(query,
		uuid.New().String(),
		s.sessionID,
		int64(p.Tick),
		p.Source,
		p.Key.X, p.Key.Y, p.Key.Z,
		p.Center.X, p.Center.Y, p.Center.Z,
		p.Edge,
		p.Sample.Point.X, p.Sample.Point.Y, p.Sample.Point.Z,
		p.Colored,
		nullFloat64(p.Color.R, p.Colored),
		nullFloat64(p.Color.G, p.Colored),
		nullFloat64(p.Color.B, p.Colored),
		nullFloat64(p.Color.A, p.Colored),
		nullFloat64(p.Brightness, p.Colored),
		nullFloat64(p.Correction, p.Colored),
		p.PlacedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert placement %s: %w", p.Key, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert placement rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicatePlacement, p.Key)
	}
	return nil
}

// ListBySession returns a session's placements in tick then source order.
func (s *PlacementStore) ListBySession(sessionID string) ([]*PlacementRecord, error) {
	query := `
		SELECT placement_id, session_id, tick, source_index,
		       key_x, key_y, key_z,
		       center_x, center_y, center_z, edge,
		       hit_x, hit_y, hit_z,
		       colored, color_r, color_g, color_b, color_a,
		       brightness, correction, placed_at
		FROM voxel_placements
		WHERE session_id = ?
		ORDER BY tick, source_index
	`
	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()

	var records []*PlacementRecord
	for rows.Next() {
		rec, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountBySession returns how many placements a session has.
func (s *PlacementStore) CountBySession(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM voxel_placements WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count placements: %w", err)
	}
	return n, nil
}

func scanPlacement(rows *sql.Rows) (*PlacementRecord, error) {
	var (
		rec                                PlacementRecord
		tick                               int64
		key                                l1lattice.Key
		center, hit                        r3.Vec
		r, g, b, a, brightness, correction sql.NullFloat64
		placedAt                           int64
	)
	p := &rec.Placement
	err := rows.Scan(
		&rec.PlacementID, &rec.SessionID, &tick, &p.Source,
		&key.X, &key.Y, &key.Z,
		&center.X, &center.Y, &center.Z, &p.Edge,
		&hit.X, &hit.Y, &hit.Z,
		&p.Colored, &r, &g, &b, &a,
		&brightness, &correction, &placedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan placement: %w", err)
	}
	p.Tick = uint64(tick)
	p.Key = key
	p.Center = center
	p.Sample.Point = hit
	p.PlacedAt = time.Unix(0, placedAt)
	if p.Colored {
		p.Color = l3exposure.Color{R: r.Float64, G: g.Float64, B: b.Float64, A: a.Float64}
		p.Brightness = brightness.Float64
		p.Correction = correction.Float64
	}
	return &rec, nil
}
