package servicedesk

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submission() Submission {
	return Submission{
		Name:         "Grace",
		Email:        "grace@example.com",
		Phone:        "0123456789",
		MachineModel: "Janome HD3000",
		PurchaseDate: "2024-02-10",
		Complaint:    "Skipping stitches",
	}
}

func TestNewServiceRequest(t *testing.T) {
	t.Run("opens pending ticket for guest", func(t *testing.T) {
		r, err := NewServiceRequest(nil, submission())
		require.NoError(t, err)
		assert.Equal(t, StatusPending, r.Status)
		assert.Nil(t, r.UserID)
		assert.Equal(t, 2024, r.PurchaseDate.Year())
	})

	t.Run("links user when known", func(t *testing.T) {
		id := uuid.New()
		r, err := NewServiceRequest(&id, submission())
		require.NoError(t, err)
		require.NotNil(t, r.UserID)
		assert.Equal(t, id, *r.UserID)
	})

	t.Run("requires every field", func(t *testing.T) {
		s := submission()
		s.Complaint = " "
		_, err := NewServiceRequest(nil, s)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects malformed purchase date", func(t *testing.T) {
		s := submission()
		s.PurchaseDate = "10/02/2024"
		_, err := NewServiceRequest(nil, s)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestServiceRequest_ChangeStatus(t *testing.T) {
	r, err := NewServiceRequest(nil, submission())
	require.NoError(t, err)

	require.NoError(t, r.ChangeStatus(StatusProcessing, "Technician assigned"))
	assert.Equal(t, "Technician assigned", r.AdminNotes)

	assert.ErrorIs(t, r.ChangeStatus(Status("Lost"), ""), shared.ErrInvalidStatus)

	require.NoError(t, r.ChangeStatus(StatusCompleted, ""))
	assert.Equal(t, "Technician assigned", r.AdminNotes)

	assert.ErrorIs(t, r.ChangeStatus(StatusPending, ""), shared.ErrInvalidState)
}
