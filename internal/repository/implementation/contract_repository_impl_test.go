package implementation

import (
	"context"
	"os"
	"testing"

	"idea-contract-be/internal/entity"
	"idea-contract-be/internal/model"
	"idea-contract-be/internal/repository/specification"
	"idea-contract-be/pkg/database"
	"idea-contract-be/pkg/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.Open(dsn, database.Options{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Contract{}))

	ctx := context.Background()
	repo := NewContractRepository(db)
	sessionID := "it-" + uuid.New().String()
	t.Cleanup(func() { _ = db.Unscoped().Where("session_id = ?", sessionID).Delete(&model.Contract{}).Error })

	c := &entity.Contract{
		SessionId:    sessionID,
		Title:        "Office Lease Agreement",
		OriginalIdea: "lease agreement for office space",
		Status:       entity.ContractStatusInProgress,
		Sections:     workflow.DefaultSections(),
		Drafts:       map[string]string{"Parties": "Acme and Beta"},
	}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotEqual(t, uuid.Nil, c.Id)

	got, err := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme and Beta", got.Drafts["Parties"])
	assert.Len(t, got.Sections, 3)
	assert.Nil(t, got.AiScore)

	unscored, err := repo.Count(ctx, specification.BySessionID{SessionID: sessionID}, specification.Unscored{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, unscored)

	got.ApplyReview(workflow.FallbackReview(), got.CreatedAt)
	require.NoError(t, repo.Update(ctx, got))

	unscored, err = repo.Count(ctx, specification.BySessionID{SessionID: sessionID}, specification.Unscored{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, unscored)

	require.NoError(t, repo.DeleteBySessionID(ctx, sessionID))
	missing, err := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	require.NoError(t, err)
	assert.Nil(t, missing)
}
