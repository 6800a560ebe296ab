package main

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// --- Text Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}
