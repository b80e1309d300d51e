package sqlite

import (
	"compress/gzip"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/voxel.paint/internal/voxel/l1lattice"
)

func TestAttachAdminRoutes(t *testing.T) {
	db := openTestDB(t)
	mux := http.NewServeMux()
	require.NoError(t, db.AttachAdminRoutes(mux, "scan.db"))

	// Registered handlers resolve even though access is gated.
	for _, path := range []string{"/debug/tailsql/", "/debug/backup"} {
		_, pattern := mux.Handler(httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEmpty(t, pattern, path)
	}
}

func TestHandleBackup(t *testing.T) {
	db := openTestDB(t)
	sess := startSession(t, db)
	require.NoError(t, NewPlacementStore(db, sess.SessionID).RecordPlacement(placementAt(1, 0, l1lattice.Key{X: 7}, true)))

	rec := httptest.NewRecorder()
	db.handleBackup(rec, httptest.NewRequest(http.MethodGet, "/debug/backup", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/gzip", rec.Header().Get("Content-Type"))

	gz, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)

	restored := filepath.Join(t.TempDir(), "restored.db")
	require.NoError(t, os.WriteFile(restored, raw, 0644))
	rdb, err := sql.Open("sqlite", restored)
	require.NoError(t, err)
	defer rdb.Close()

	var n int
	require.NoError(t, rdb.QueryRow(`SELECT COUNT(*) FROM voxel_placements`).Scan(&n))
	assert.Equal(t, 1, n)

	var center float64
	require.NoError(t, rdb.QueryRow(`SELECT center_x FROM voxel_placements`).Scan(&center))
	assert.Equal(t, (l1lattice.Key{X: 7}).Center(0.05).X, center)
}
