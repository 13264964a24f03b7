package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"tldrscope/internal/domain"
)

var (
	encMode     cbor.EncMode
	decMode     cbor.DecMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("store: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// encodeReport serializes a report as zstd-compressed CBOR.
func encodeReport(report domain.AnalyticsReport) ([]byte, error) {
	raw, err := encMode.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

func decodeReport(data []byte) (domain.AnalyticsReport, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return domain.AnalyticsReport{}, fmt.Errorf("zstd decompress: %w", err)
	}
	var report domain.AnalyticsReport
	if err := decMode.Unmarshal(raw, &report); err != nil {
		return domain.AnalyticsReport{}, fmt.Errorf("cbor decode: %w", err)
	}
	return report, nil
}
