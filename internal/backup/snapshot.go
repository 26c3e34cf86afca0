package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// SnapshotFile is the name of the backup document inside the snapshot
// repository.
const SnapshotFile = "daylex-backup.json"

// Snapshot writes data into a local git repository at repoPath and
// commits it, keeping a history of backups. The repository is created on
// first use. Everything is local: no remotes, no fetches. When the data
// is identical to the last snapshot, no commit is made and the returned
// hash is empty.
func Snapshot(repoPath string, data []byte) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if mkErr := os.MkdirAll(repoPath, 0o755); mkErr != nil {
			return "", fmt.Errorf("failed to create snapshot directory %s: %w", repoPath, mkErr)
		}
		repo, err = git.PlainInit(repoPath, false)
	}
	if err != nil {
		return "", fmt.Errorf("failed to open snapshot repo at %s: %w", repoPath, err)
	}

	if err := os.WriteFile(filepath.Join(repoPath, SnapshotFile), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree for snapshot repo: %w", err)
	}
	if _, err := worktree.Add(SnapshotFile); err != nil {
		return "", fmt.Errorf("failed to stage snapshot file: %w", err)
	}

	now := time.Now()
	hash, err := worktree.Commit(
		fmt.Sprintf("backup %s", now.Format("2006-01-02 15:04:05")),
		&git.CommitOptions{
			Author: &object.Signature{Name: "daylex", Email: "daylex@localhost", When: now},
		},
	)
	if errors.Is(err, git.ErrEmptyCommit) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return hash.String(), nil
}
