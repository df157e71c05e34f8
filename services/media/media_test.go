package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	args := m.Called(ctx, file, params)
	res, _ := args.Get(0).(*uploader.UploadResult)
	return res, args.Error(1)
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	up := new(mockUploader)
	svc := NewMediaService(up, "smartfix", zap.NewNop())
	file := strings.NewReader("jpeg bytes")

	up.On("Upload", ctx, file, mock.MatchedBy(func(p uploader.UploadParams) bool {
		return p.Folder == "smartfix/requests/r1"
	})).Return(&uploader.UploadResult{PublicID: "abc", SecureURL: "https://res.cloudinary.com/demo/abc.jpg"}, nil)

	url, err := svc.UploadImage(ctx, "requests/r1", "sink.jpg", file)
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/abc.jpg", url)
	up.AssertExpectations(t)
}

func TestUploadImage_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := NewCloudinaryMediaService(nil, "smartfix", zap.NewNop()).UploadImage(ctx, "x", "a.jpg", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrDisabled)

	up := new(mockUploader)
	up.On("Upload", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded")).Once()
	_, err = NewMediaService(up, "smartfix", zap.NewNop()).UploadImage(ctx, "x", "a.jpg", strings.NewReader(""))
	assert.ErrorContains(t, err, "quota exceeded")

	up.On("Upload", ctx, mock.Anything, mock.Anything).Return(&uploader.UploadResult{}, nil).Once()
	_, err = NewMediaService(up, "smartfix", zap.NewNop()).UploadImage(ctx, "x", "a.jpg", strings.NewReader(""))
	assert.ErrorContains(t, err, "no URL")
}
