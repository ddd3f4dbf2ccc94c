package whatsapp

import (
	"bytes"
	"errors"
	"fmt"

	qrCode "github.com/skip2/go-qrcode"
	"github.com/sunshineplan/imgconv"
	"golang.org/x/sync/singleflight"
)

var qrRenderGroup singleflight.Group

// ChatLinkQR renders the universal wa.me link for a chat as a QR image. The
// fallback link is used on purpose - a scanned code must work on any device.
// Format is "png" or "jpeg". Identical concurrent renders are coalesced.
func ChatLinkQR(phone string, message string, size int, format string) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	links := BuildChatLinks(DeviceDesktop, phone, message)

	key := fmt.Sprintf("%s|%d|%s", links.Fallback, size, format)
	v, err, _ := qrRenderGroup.Do(key, func() (interface{}, error) {
		return renderQR(links.Fallback, size, format)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func renderQR(content string, size int, format string) ([]byte, error) {
	png, err := qrCode.Encode(content, qrCode.Medium, size)
	if err != nil {
		return nil, err
	}

	switch format {
	case "", "png":
		return png, nil
	case "jpeg", "jpg":
		decoded, err := imgconv.Decode(bytes.NewReader(png))
		if err != nil {
			return nil, err
		}
		var out bytes.Buffer
		err = imgconv.Write(&out, decoded, &imgconv.FormatOption{Format: imgconv.JPEG})
		if err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	default:
		return nil, errors.New("unsupported image format: " + format)
	}
}
