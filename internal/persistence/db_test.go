package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hollowfarm/internal/catalog"
	"github.com/talgya/hollowfarm/internal/farm"
)

func openTemp(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestEvents_RoundTrip(t *testing.T) {
	db, _ := openTemp(t)

	events := []farm.Event{
		{Tick: 1, Description: "Planted Ghost Wheat.", Category: farm.CategoryFarm},
		{Tick: 4, Description: "A howl pierces the mist! A Shadow Wolf approaches!", Category: farm.CategoryWolf},
		{Tick: 9, Description: "Acquired Ghost Wheat.", Category: farm.CategoryMarket},
	}
	require.NoError(t, db.SaveEvents(events))
	require.NoError(t, db.SaveEvents(nil))

	got, err := db.RecentEvents(2)
	require.NoError(t, err)
	assert.Equal(t, []farm.Event{events[2], events[1]}, got)
}

func TestEvents_FromFarm(t *testing.T) {
	db, _ := openTemp(t)
	f := farm.New(catalog.Default(), farm.DefaultRules(), farm.RollerFunc(func() float64 { return 1 }))

	_, _, err := f.Dispatch(farm.Intent{Type: farm.IntentBuy, Item: "wheat_seed"})
	require.NoError(t, err)
	require.NoError(t, db.SaveEvents(f.DrainEvents()))

	got, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acquired Ghost Wheat.", got[0].Description)
}

func TestConsultations(t *testing.T) {
	db, _ := openTemp(t)

	require.NoError(t, db.SaveConsultation(Consultation{
		Tick: 12, Level: 2, Weather: "foggy", Text: "Roots stir.", Effect: "growth_boost",
	}))

	got, err := db.RecentConsultations(5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, db.Session(), got[0].Session)
	assert.Equal(t, "Roots stir.", got[0].Text)
}

func TestSessions_NewPerOpen(t *testing.T) {
	db, path := openTemp(t)
	first := db.Session()
	require.NoError(t, db.EndSession(farm.Snapshot{State: farm.State{Tick: 30, Gold: 75, Level: 2}}))
	require.NoError(t, db.Close())

	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()

	assert.NotEqual(t, first, db2.Session())
	n, err := db2.SessionCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMeta(t *testing.T) {
	db, _ := openTemp(t)

	require.NoError(t, db.SaveMeta("oracle_visits", "3"))
	require.NoError(t, db.SaveMeta("oracle_visits", "4"))
	v, err := db.GetMeta("oracle_visits")
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}

func TestProgress_SeenByNextSession(t *testing.T) {
	db, path := openTemp(t)

	_, ok := db.PreviousProgress()
	assert.False(t, ok, "fresh journal")

	require.NoError(t, db.SaveProgress(120, 2))
	_, ok = db.PreviousProgress()
	assert.False(t, ok, "own session is not previous")

	speed, err := db.GetMeta(MetaLastSpeed)
	require.NoError(t, err)
	assert.Equal(t, "2", speed)
	require.NoError(t, db.Close())

	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()

	tick, ok := db2.PreviousProgress()
	require.True(t, ok)
	assert.EqualValues(t, 120, tick)
}

func TestLatestExport(t *testing.T) {
	dir := t.TempDir()
	_, err := LatestExport(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)

	snap := farm.Snapshot{State: farm.State{Level: 1}}
	for _, tick := range []uint64{9, 120, 15} {
		snap.Tick = tick
		require.NoError(t, WriteExport(ExportPath(dir, tick), "sess", snap))
	}

	path, err := LatestExport(dir)
	require.NoError(t, err)
	assert.Equal(t, ExportPath(dir, 120), path)
}

func TestExport_RoundTrip(t *testing.T) {
	f := farm.New(catalog.Default(), farm.DefaultRules(), farm.RollerFunc(func() float64 { return 1 }))
	_, _, err := f.Dispatch(farm.Intent{Type: farm.IntentSelectTool, Item: "wheat_seed"})
	require.NoError(t, err)
	_, _, err = f.Dispatch(farm.Intent{Type: farm.IntentClickPlot, Plot: 0})
	require.NoError(t, err)
	snap := f.Tick()

	path := ExportPath(t.TempDir(), snap.Tick)
	require.NoError(t, WriteExport(path, "sess", snap))

	exp, err := ReadExport(path)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, exp.Header.Version)
	assert.Equal(t, "sess", exp.Header.Session)
	assert.Equal(t, snap.Tick, exp.Header.Tick)
	assert.Equal(t, snap, exp.Snapshot)
}

func TestReadExport_Missing(t *testing.T) {
	_, err := ReadExport(filepath.Join(t.TempDir(), "nope.json.zst"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
