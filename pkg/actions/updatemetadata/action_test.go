package updatemetadata

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validoc/validoc/pkg/protocol"
	"github.com/validoc/validoc/pkg/testutil"
)

func testContext() protocol.ActionContext {
	definition := testutil.LinearDefinition()

	return protocol.ActionContext{
		Instance:   testutil.CreateTestInstance(definition, "actions"),
		Definition: definition,
		Document:   testutil.CreateTestDocument(),
	}
}

func TestExecute_EchoesMetadata(t *testing.T) {
	action, err := NewAction(map[string]any{
		"id":       "a1",
		"metadata": map[string]any{"discipline": "structural", "phase": "EXE"},
	})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), testContext(), slog.New(slog.NewTextHandler(os.Stdout, nil)))
	require.NoError(t, err)

	assert.True(t, result.Success)

	metadata, ok := result.Data["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "structural", metadata["discipline"])
}

func TestExecute_NoMetadataFails(t *testing.T) {
	action, err := NewAction(map[string]any{"id": "a1"})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), testContext(), slog.New(slog.NewTextHandler(os.Stdout, nil)))
	require.NoError(t, err)

	assert.False(t, result.Success)
}
