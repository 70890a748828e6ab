package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-service/internal/model"
)

func TestActionPatch_StatusVerbs(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"status": model.PostStatusHidden}, ActionPatch("hide"))
	assert.Equal(t, map[string]interface{}{"status": model.PostStatusFlagged}, ActionPatch("flag"))
	assert.Equal(t, map[string]interface{}{"status": model.PostStatusPublished}, ActionPatch("approve"))
	assert.Equal(t, map[string]interface{}{"status": model.PostStatusPublished}, ActionPatch("restore"))
}

func TestActionPatch_PinDoesNotTouchStatus(t *testing.T) {
	patch := ActionPatch("pin")
	assert.Equal(t, map[string]interface{}{"is_pinned": true}, patch)
	assert.NotContains(t, patch, "status")

	assert.Equal(t, map[string]interface{}{"is_pinned": false}, ActionPatch("unpin"))
}

func TestActionPatch_UnknownVerbIsEmpty(t *testing.T) {
	assert.Empty(t, ActionPatch("promote"))
	assert.Empty(t, ActionPatch(""))
}

func TestActionPatch_ReturnsCopy(t *testing.T) {
	patch := ActionPatch("hide")
	patch["status"] = "mutated"
	require.Equal(t, map[string]interface{}{"status": model.PostStatusHidden}, ActionPatch("hide"))
}
