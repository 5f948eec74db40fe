package pkg

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
)

const (
	MaxImageBytes  = 5 << 20
	MaxImagePixels = 40_000_000
	ThumbSize      = 960
)

var (
	ErrImageTooLarge  = errors.New("image exceeds 5 MiB")
	ErrImageDimension = errors.New("image dimensions too large")
	ErrImageFormat    = errors.New("unsupported image format")
	ErrImageCorrupted = errors.New("file is not a valid image")
)

var (
	imageExtByFormat  = map[string]string{"jpeg": ".jpg", "png": ".png", "gif": ".gif"}
	imageMimeByFormat = map[string]string{"jpeg": "image/jpeg", "png": "image/png", "gif": "image/gif"}
)

// ImageInfo 上传图片校验后的结果
type ImageInfo struct {
	Data        []byte
	Ext         string
	ContentType string
	Width       int
	Height      int
}

// ReadImage 读取并校验上传图片：大小、格式、可解码；只解析头部，像素数超限直接拒绝
func ReadImage(r io.Reader) (*ImageInfo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrImageCorrupted
	}
	ext, ok := imageExtByFormat[format]
	if !ok {
		return nil, ErrImageFormat
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrImageCorrupted
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, ErrImageDimension
	}
	return &ImageInfo{
		Data:        data,
		Ext:         ext,
		ContentType: imageMimeByFormat[format],
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// ImageThumbConverted 缩略图结果：原图与缩略图尺寸及缩略图字节数
type ImageThumbConverted struct {
	ThumbSize int64
	NewX      int
	NewY      int
	OldX      int
	OldY      int
}

// CreateThumb 等比缩放到 size 以内并编码为 JPEG
func CreateThumb(size uint, reader io.Reader, writer io.Writer) (result ImageThumbConverted, err error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return result, ErrImageCorrupted
	}
	var newBuf bytes.Buffer
	newImage := resize.Thumbnail(size, size, img, resize.Lanczos3)
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 90}); err != nil {
		return
	}
	rect := newImage.Bounds().Size()
	result.NewX = rect.X
	result.NewY = rect.Y

	rect = img.Bounds().Size()
	result.OldX = rect.X
	result.OldY = rect.Y

	result.ThumbSize, err = io.Copy(writer, &newBuf)
	return
}
