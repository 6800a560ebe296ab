package report

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/residential-checks/internal/signature"
)

// --- Signature Cropper Mock ---

type mockCropper struct {
	mock.Mock
}

func (m *mockCropper) Crop(ctx context.Context, path string, r signature.Region) ([]byte, error) {
	args := m.Called(ctx, path, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
