// Package internal hosts operational helpers that are not part of the
// chat domain: the debug inspector and the uploaded-file store.
package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"roomchat/observability"
)

// InspectRow is one notification record rendered by the inspector.
type InspectRow struct {
	Key       string `json:"key"`
	UserID    string `json:"user_id"`
	Sequence  string `json:"sequence"`
	SizeBytes int    `json:"size_bytes"`
	Value     any    `json:"value"`
}

// StartDebugServer exposes the metrics snapshot and a read-only view of
// the badger notification store on a side port. It is only wired when
// the logger runs at DEBUG level.
func StartDebugServer(db *badger.DB, metrics *observability.Metrics, port int) {
	mux := http.NewServeMux()

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metrics.Snapshot())
	})

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "notif:"
		}

		var rows []InspectRow
		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					rows = append(rows, mapRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"prefix":    prefix,
			"count":     len(rows),
			"items":     rows,
			"rendered":  time.Now().Format(time.RFC3339),
		})
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

// mapRow splits "notif:{userID}:{sequence}" keys; anything else is shown raw.
func mapRow(key string, val []byte) InspectRow {
	row := InspectRow{Key: key, SizeBytes: len(val)}

	parts := strings.Split(key, ":")
	if len(parts) == 3 {
		row.UserID = parts[1]
		row.Sequence = parts[2]
	}

	var decoded map[string]any
	if err := json.Unmarshal(val, &decoded); err == nil {
		row.Value = decoded
	}
	return row
}
