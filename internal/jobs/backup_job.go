package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/storage"
	"gym_crm_backend/pkg/utils"
)

const backupPrefix = "backup-"

// ErrBackupInProgress is returned when RunOnce is called while a backup is still running.
var ErrBackupInProgress = errors.New("backup already in progress")

type AttendanceLister interface {
	ListAll(ctx context.Context) ([]models.Attendance, error)
}

type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// BackupSnapshot is the JSON document written by each backup run.
type BackupSnapshot struct {
	Timestamp   time.Time           `json:"timestamp"`
	Clients     []models.Client     `json:"clients"`
	Attendances []models.Attendance `json:"attendances"`
	Users       []models.User       `json:"users"`
}

// BackupResult describes a finished backup run.
type BackupResult struct {
	Key     string   `json:"key"`
	Size    int      `json:"size"`
	Pruned  []string `json:"pruned"`
	Clients int      `json:"clients"`
}

// BackupJob dumps clients, attendances and users into the store and keeps the newest Retain files.
type BackupJob struct {
	clients     ClientLister
	attendances AttendanceLister
	users       UserLister
	store       storage.ObjectStore
	retain      int
	now         func() time.Time
	running     atomic.Bool
}

// NewBackupJob creates a new BackupJob. A nil clock means time.Now.
func NewBackupJob(clients ClientLister, attendances AttendanceLister, users UserLister, store storage.ObjectStore, retain int, clock func() time.Time) *BackupJob {
	if retain < 1 {
		retain = 7
	}
	if clock == nil {
		clock = time.Now
	}
	return &BackupJob{
		clients:     clients,
		attendances: attendances,
		users:       users,
		store:       store,
		retain:      retain,
		now:         clock,
	}
}

// BackupFileName returns the key for a backup taken at t. Names sort chronologically.
func BackupFileName(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return backupPrefix + strings.ReplaceAll(stamp, ":", "-") + ".json"
}

// RunOnce writes one snapshot and prunes old ones. Concurrent calls get ErrBackupInProgress.
func (j *BackupJob) RunOnce(ctx context.Context) (*BackupResult, error) {
	if !j.running.CompareAndSwap(false, true) {
		return nil, ErrBackupInProgress
	}
	defer j.running.Store(false)

	snapshot := BackupSnapshot{Timestamp: j.now().UTC()}

	var err error
	if snapshot.Clients, err = j.clients.ListAllClients(ctx); err != nil {
		return nil, fmt.Errorf("backup: listing clients: %w", err)
	}
	if snapshot.Attendances, err = j.attendances.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("backup: listing attendances: %w", err)
	}
	if snapshot.Users, err = j.users.ListUsers(ctx); err != nil {
		return nil, fmt.Errorf("backup: listing users: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("backup: encoding snapshot: %w", err)
	}

	key := BackupFileName(snapshot.Timestamp)
	if err := j.store.Put(ctx, key, data, "application/json"); err != nil {
		return nil, fmt.Errorf("backup: writing %s: %w", key, err)
	}

	result := &BackupResult{Key: key, Size: len(data), Clients: len(snapshot.Clients)}
	result.Pruned = j.prune(ctx)

	utils.LogInfo("Backup written", map[string]interface{}{
		"key":         key,
		"bytes":       len(data),
		"clients":     len(snapshot.Clients),
		"attendances": len(snapshot.Attendances),
		"users":       len(snapshot.Users),
		"pruned":      len(result.Pruned),
	})
	return result, nil
}

// prune deletes all but the newest retain backups. Failures are logged only.
func (j *BackupJob) prune(ctx context.Context) []string {
	keys, err := j.store.List(ctx, backupPrefix)
	if err != nil {
		utils.LogWarn(err, "Failed to list backups for retention")
		return nil
	}

	backups := keys[:0]
	for _, k := range keys {
		if strings.HasSuffix(k, ".json") {
			backups = append(backups, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	if len(backups) <= j.retain {
		return nil
	}

	pruned := []string{}
	for _, old := range backups[j.retain:] {
		if err := j.store.Delete(ctx, old); err != nil {
			utils.LogWarn(err, "Failed to delete old backup", map[string]interface{}{"key": old})
			continue
		}
		pruned = append(pruned, old)
	}
	return pruned
}

// Run adapts RunOnce to a RunFunc.
func (j *BackupJob) Run(ctx context.Context) error {
	_, err := j.RunOnce(ctx)
	return err
}
