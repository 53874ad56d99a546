package groundcheck

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		missing []string
	}{
		{
			name: "complete",
			task: Task{
				ClerkName:   "Budi",
				DivisionID:  "div-1",
				ForemanID:   "fm-a",
				Attachments: []Attachment{{TPHNumber: 1, PhotoData: "data:image/jpeg;base64,AAAA"}},
			},
		},
		{
			name:    "empty",
			task:    Task{},
			missing: []string{FieldClerkName, FieldDivisionID, FieldForemanID, FieldAttachments},
		},
		{
			name: "attachments without photos",
			task: Task{
				ClerkName:   "Budi",
				DivisionID:  "div-1",
				ForemanID:   "fm-a",
				Attachments: []Attachment{{TPHNumber: 1}, {TPHNumber: 2, PhotoData: "   "}},
			},
			missing: []string{FieldAttachments},
		},
		{
			name: "blank clerk name",
			task: Task{
				ClerkName:   "  ",
				DivisionID:  "div-1",
				ForemanID:   "fm-a",
				Attachments: []Attachment{{TPHNumber: 1, PhotoData: "data:image/jpeg;base64,AAAA"}},
			},
			missing: []string{FieldClerkName},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(&tc.task)
			if tc.missing == nil {
				require.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.missing, verr.Missing)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestNotFoundError_Is(t *testing.T) {
	err := error(&NotFoundError{Kind: "division", ID: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `division "x" not found`, err.Error())
}

func TestTask_PhotoAttachmentsKeepsOrder(t *testing.T) {
	task := Task{Attachments: []Attachment{
		{TPHNumber: 1, PhotoData: "a"},
		{TPHNumber: 2},
		{TPHNumber: 3, PhotoData: "c"},
	}}

	got := task.PhotoAttachments()
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].TPHNumber)
	assert.Equal(t, 3, got[1].TPHNumber)
}

func TestTask_CloneIsIndependent(t *testing.T) {
	task := &Task{ID: "t1", Attachments: []Attachment{{TPHNumber: 1, PhotoData: "a"}}}
	c := task.Clone()
	c.Attachments[0].PhotoData = "changed"
	c.ID = "t2"

	assert.Equal(t, "a", task.Attachments[0].PhotoData)
	assert.Equal(t, "t1", task.ID)
}
