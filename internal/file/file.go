package file

import (
	"context"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type FileUploader struct {
	cloudName string
	apiKey    string
	apiSecret string
}

func New(cloudName, apiKey, apiSecret string) *FileUploader {
	return &FileUploader{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// UploadFile pushes the file to Cloudinary and returns the hosted URL.
func (f *FileUploader) UploadFile(fileName string) (string, error) {
	cld, err := cloudinary.NewFromParams(f.cloudName, f.apiKey, f.apiSecret)
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	uploadResult, err := cld.Upload.Upload(ctx, fileName, uploader.UploadParams{})
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
