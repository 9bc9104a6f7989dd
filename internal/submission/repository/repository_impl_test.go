package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
	"github.com/heysheet/heysheet/internal/submission/domain"
	"github.com/heysheet/heysheet/pkg/db"
	"github.com/heysheet/heysheet/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func paginationPage(size int) pagination.Pagination {
	return pagination.Pagination{PageSize: size}
}

func setup(t *testing.T) (*gorm.DB, domain.Repository, *snowflake.Node) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Submission{}, &formdomain.Form{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return conn, Provide(conn), node
}

func insertProcessing(t *testing.T, conn *gorm.DB, repo domain.Repository, node *snowflake.Node) snowflake.ID {
	t.Helper()
	id := node.Generate()
	require.NoError(t, repo.Insert(context.Background(), conn, &domain.Submission{
		ID:        id,
		FormID:    node.Generate(),
		Status:    domain.StatusProcessing,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}))
	return id
}

func TestMarkCompletedStoresRowAndResults(t *testing.T) {
	conn, repo, node := setup(t)
	id := insertProcessing(t, conn, repo, node)

	err := repo.MarkCompleted(context.Background(), id, 12, map[string]string{
		"sheets": "ok",
		"slack":  "skipped",
	})
	require.NoError(t, err)

	var got domain.Submission
	require.NoError(t, conn.First(&got, "id = ?", id).Error)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.SheetRowNumber)
	assert.Equal(t, int64(12), *got.SheetRowNumber)
	assert.Equal(t, "ok", got.SinkResults["sheets"])
	assert.Equal(t, "skipped", got.SinkResults["slack"])
}

func TestTerminalStatusIsNeverOverwritten(t *testing.T) {
	conn, repo, node := setup(t)
	id := insertProcessing(t, conn, repo, node)

	require.NoError(t, repo.MarkFailed(context.Background(), id, map[string]string{"sheets": "failed: boom"}))

	// A late MarkCompleted for the same submission is a no-op.
	require.NoError(t, repo.MarkCompleted(context.Background(), id, 5, map[string]string{"sheets": "ok"}))

	var got domain.Submission
	require.NoError(t, conn.First(&got, "id = ?", id).Error)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Nil(t, got.SheetRowNumber)
}

func TestCountForUserSinceScopesByUserAndTime(t *testing.T) {
	conn, repo, node := setup(t)
	ctx := context.Background()

	mine := &formdomain.Form{ID: node.Generate(), UserID: "user-1", Title: "A", Slug: "a", Active: true}
	theirs := &formdomain.Form{ID: node.Generate(), UserID: "user-2", Title: "B", Slug: "b", Active: true}
	require.NoError(t, conn.Create(mine).Error)
	require.NoError(t, conn.Create(theirs).Error)

	now := time.Now().UTC()
	insert := func(formID snowflake.ID, at time.Time) {
		require.NoError(t, repo.Insert(ctx, conn, &domain.Submission{
			ID: node.Generate(), FormID: formID, Status: domain.StatusCompleted,
			CreatedAt: at, UpdatedAt: at,
		}))
	}
	insert(mine.ID, now.Add(-time.Hour))
	insert(mine.ID, now.Add(-time.Minute))
	insert(mine.ID, now.Add(-30*24*time.Hour)) // outside the window
	insert(theirs.ID, now.Add(-time.Minute))   // other user

	count, err := repo.CountForUserSince(ctx, conn, "user-1", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListByFormReturnsNewestFirstWithExtraRow(t *testing.T) {
	conn, repo, node := setup(t)
	ctx := context.Background()

	formID := node.Generate()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Insert(ctx, conn, &domain.Submission{
			ID: node.Generate(), FormID: formID, Status: domain.StatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	// The page query fetches size+1 rows so callers can detect more pages.
	items, err := repo.ListByForm(ctx, conn, formID, paginationPage(2))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))
}
