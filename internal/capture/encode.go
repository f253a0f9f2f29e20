package capture

import (
	"errors"

	"gocv.io/x/gocv"
)

// DefaultJPEGQuality is used for preview streams.
const DefaultJPEGQuality = 80

// EncodeJPEG compresses a frame for streaming.
func EncodeJPEG(frame *gocv.Mat, quality int) ([]byte, error) {
	if frame == nil || frame.Empty() {
		return nil, ErrNoFrame
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	if len(out) == 0 {
		return nil, errors.New("jpeg encode produced no data")
	}
	return out, nil
}
