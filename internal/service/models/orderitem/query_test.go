package orderitem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddItemCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     AddItemCommand
		wantErr string
	}{
		{
			name: "valid",
			cmd:  AddItemCommand{OrderID: 1, ProductID: 7, Quantity: 3},
		},
		{
			name:    "zero quantity",
			cmd:     AddItemCommand{OrderID: 1, ProductID: 7, Quantity: 0},
			wantErr: "quantity must be greater than 0",
		},
		{
			name:    "negative quantity",
			cmd:     AddItemCommand{OrderID: 1, ProductID: 7, Quantity: -2},
			wantErr: "quantity must be greater than 0",
		},
		{
			name:    "several fields",
			cmd:     AddItemCommand{OrderID: 0, ProductID: -1, Quantity: 1},
			wantErr: "order_id must be greater than 0; product_id must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
