package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		wantMethod  string
		wantAmount  string
		expectError bool
	}{
		{
			name:       "wrapped in resource key",
			key:        "payment",
			body:       `{"payment": {"amount": "150.00", "method": "cash"}}`,
			wantMethod: "cash",
			wantAmount: "150",
		},
		{
			name:       "flat body",
			key:        "payment",
			body:       `{"amount": 75.5, "method": "card"}`,
			wantMethod: "card",
			wantAmount: "75.5",
		},
		{
			name:       "other keys fall back to flat",
			key:        "payment",
			body:       `{"case": 1, "amount": "20", "method": "check"}`,
			wantMethod: "check",
			wantAmount: "20",
		},
		{
			name:        "wrong type in flat body",
			key:         "payment",
			body:        `{"amount": "abc", "method": "cash"}`,
			expectError: true,
		},
		{
			name:        "wrapped value is not an object",
			key:         "payment",
			body:        `{"payment": "cash"}`,
			expectError: true,
		},
		{
			name:        "fails binding tags",
			key:         "payment",
			body:        `{"amount": "10", "method": "cash", "description": "` + string(bytes.Repeat([]byte("x"), 501)) + `"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req ManualPaymentRequest
			err := BindNestedOrFlat(c, tt.key, &req)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(req.Amount), "amount %s", req.Amount)
		})
	}
}
