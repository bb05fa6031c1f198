package docdrive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specialmindsaarhus/docdrive"
)

func TestRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     docdrive.Request
		wantErr bool
	}{
		{
			name:    "empty",
			req:     docdrive.Request{},
			wantErr: true,
		},
		{
			name: "only_instructions",
			req: docdrive.Request{
				Instructions: "be helpful",
			},
			wantErr: true,
		},
		{
			name: "blank_user_content",
			req: docdrive.Request{
				Messages: []docdrive.Message{
					{Role: docdrive.RoleUser, Content: "   \n\t"},
				},
			},
			wantErr: true,
		},
		{
			name: "assistant_only",
			req: docdrive.Request{
				Messages: []docdrive.Message{
					{Role: docdrive.RoleAssistant, Content: "hello"},
				},
			},
			wantErr: true,
		},
		{
			name: "valid",
			req: docdrive.Request{
				Messages: []docdrive.Message{
					{Role: docdrive.RoleUser, Content: "the document"},
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, docdrive.ErrEmptyRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestUserText(t *testing.T) {
	req := docdrive.Request{
		Instructions: "never included",
		Messages: []docdrive.Message{
			{Role: docdrive.RoleSystem, Content: "system turn"},
			{Role: docdrive.RoleUser, Content: "first"},
			{Role: docdrive.RoleAssistant, Content: "assistant turn"},
			{Role: docdrive.RoleUser, Content: "second"},
		},
	}

	assert.Equal(t, "first\n\nsecond", req.UserText())
	assert.Empty(t, docdrive.Request{}.UserText())
}
