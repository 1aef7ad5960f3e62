package providers

import "testing"

func TestMessageRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     MessageRequest
		wantErr bool
	}{
		{
			name:    "no messages",
			req:     MessageRequest{},
			wantErr: true,
		},
		{
			name: "ends with user",
			req: MessageRequest{Messages: []Message{
				{Role: "user", Content: "draft a policy"},
			}},
		},
		{
			name: "ends with assistant",
			req: MessageRequest{Messages: []Message{
				{Role: "user", Content: "draft a policy"},
				{Role: "assistant", Content: "here"},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
