package bridge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zapper/internal/device"
)

func keyRequest(key string) *device.ActionRequest {
	return &device.ActionRequest{
		Type:       device.ActionTypeRemote,
		Action:     string(device.RemoteActionKey),
		Parameters: map[string]interface{}{"key": key},
	}
}

func TestRecordAction(t *testing.T) {
	t.Run("stores the action and its outcome", func(t *testing.T) {
		db := newTestDatabase(t)

		err := db.RecordAction("tv", keyRequest("KEY_HOME"), &device.ActionResponse{
			Success: true,
			Data:    "key KEY_HOME sent",
		})
		require.NoError(t, err)

		records, err := db.RecentActions(10)
		require.NoError(t, err)
		require.Len(t, records, 1)

		record := records[0]
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, "tv", record.DeviceID)
		assert.Equal(t, "remote", record.Type)
		assert.Equal(t, "key", record.Action)
		assert.Contains(t, record.Params, "KEY_HOME")
		assert.True(t, record.Success)
		assert.Empty(t, record.Error)
		assert.False(t, record.CreatedAt.IsZero())
	})

	t.Run("keeps failure details", func(t *testing.T) {
		db := newTestDatabase(t)

		err := db.RecordAction("tv", keyRequest("KEY_HOME"), &device.ActionResponse{
			Success: false,
			Error:   "failed to connect to TV at 192.0.2.1",
		})
		require.NoError(t, err)

		records, err := db.RecentActions(10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.False(t, records[0].Success)
		assert.Contains(t, records[0].Error, "failed to connect")
	})

	t.Run("leaves params empty when there are none", func(t *testing.T) {
		db := newTestDatabase(t)

		request := &device.ActionRequest{Type: device.ActionTypeRemote, Action: string(device.RemoteActionState)}
		err := db.RecordAction("tv", request, &device.ActionResponse{Success: true, Data: "disconnected"})
		require.NoError(t, err)

		records, err := db.RecentActions(10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Empty(t, records[0].Params)
	})
}

func TestActionQueries(t *testing.T) {
	db := newTestDatabase(t)

	keys := []string{"KEY_HOME", "KEY_ENTER", "KEY_RETURN"}
	for _, key := range keys {
		require.NoError(t, db.RecordAction("tv", keyRequest(key), &device.ActionResponse{Success: true}))
	}
	require.NoError(t, db.RecordAction("cast", &device.ActionRequest{
		Type:   device.ActionTypeCast,
		Action: string(device.CastActionPlay),
	}, &device.ActionResponse{Success: true}))

	t.Run("returns newest actions first", func(t *testing.T) {
		records, err := db.RecentActions(10)
		require.NoError(t, err)
		require.Len(t, records, 4)

		assert.Equal(t, "play", records[0].Action)
		assert.Contains(t, records[1].Params, "KEY_RETURN")
		assert.Contains(t, records[3].Params, "KEY_HOME")
	})

	t.Run("honors the limit", func(t *testing.T) {
		records, err := db.RecentActions(2)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("falls back to the default limit", func(t *testing.T) {
		records, err := db.RecentActions(0)
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})

	t.Run("filters by device", func(t *testing.T) {
		records, err := db.DeviceActions("cast", 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "play", records[0].Action)

		records, err = db.DeviceActions("tv", 10)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})
}

func TestPurgeBefore(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.RecordAction("tv", keyRequest("KEY_HOME"), &device.ActionResponse{Success: true}))
	require.NoError(t, db.RecordAction("tv", keyRequest("KEY_ENTER"), &device.ActionResponse{Success: true}))

	purged, err := db.PurgeBefore(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, purged, "recent actions should survive the purge")

	purged, err = db.PurgeBefore(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, purged)

	records, err := db.RecentActions(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAPIKeys(t *testing.T) {
	t.Run("round trips a key", func(t *testing.T) {
		db := newTestDatabase(t)

		created, err := db.CreateAPIKey("homebridge")
		require.NoError(t, err)
		require.NotEmpty(t, created.Key)

		found, err := db.LookupAPIKey(created.Key)
		require.NoError(t, err)
		assert.Equal(t, created.Key, found.Key)
		assert.Equal(t, "homebridge", found.Name)
		assert.Nil(t, found.LastUsed)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		db := newTestDatabase(t)

		_, err := db.LookupAPIKey("nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to look up API key")
	})

	t.Run("records key usage", func(t *testing.T) {
		db := newTestDatabase(t)

		created, err := db.CreateAPIKey("script")
		require.NoError(t, err)
		require.NoError(t, db.TouchAPIKey(created.Key))

		found, err := db.LookupAPIKey(created.Key)
		require.NoError(t, err)
		require.NotNil(t, found.LastUsed)
		assert.WithinDuration(t, time.Now(), *found.LastUsed, time.Minute)
	})

	t.Run("lists every key", func(t *testing.T) {
		db := newTestDatabase(t)

		_, err := db.CreateAPIKey("homebridge")
		require.NoError(t, err)
		_, err = db.CreateAPIKey("script")
		require.NoError(t, err)

		keys, err := db.ListAPIKeys()
		require.NoError(t, err)
		require.Len(t, keys, 2)

		names := []string{keys[0].Name, keys[1].Name}
		assert.ElementsMatch(t, []string{"homebridge", "script"}, names)
	})
}
