package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatus_DecodesBackendFields(t *testing.T) {
	raw := `{"taskId":"t-7","status":"COMPARING","statusDescription":"比对中","progress":62.5,
		"currentStep":3,"currentStepDesc":"文本比对","oldDocPages":4,"newDocPages":5,
		"completedPagesOld":4,"completedPagesNew":5,"startTime":"2024-05-01T09:00:00"}`

	var status TaskStatus
	require.NoError(t, json.Unmarshal([]byte(raw), &status))

	assert.Equal(t, TaskComparing, status.Status)
	assert.Equal(t, "比对中", status.StatusDescription)
	assert.Equal(t, 62.5, status.Progress)
	assert.Equal(t, 3, status.CurrentStep)

	snap := status.Snapshot()
	assert.Equal(t, 5, snap.CompletedPagesNew)
	assert.Equal(t, 9, snap.StartTime.Hour())
}
