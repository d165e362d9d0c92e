package main

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

var errEmptyMessage = errors.New("empty message")

// EncodeFrame packs a delta frame for the wire
func EncodeFrame(f *Frame) ([]byte, error) {
	raw, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	out := make([]byte, 0, len(raw)+1)
	out = append(out, MsgFrame)
	return append(out, raw...), nil
}

// EncodeKeyframe packs a full-state frame. Keyframes list every live object
// and are compressed since they can be large.
func EncodeKeyframe(f *Frame) ([]byte, error) {
	raw, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode keyframe: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, []byte{MsgKeyframe}), nil
}

// DecodeMessage unpacks either kind of binary message
func DecodeMessage(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, errEmptyMessage
	}
	body := data[1:]
	switch data[0] {
	case MsgFrame:
	case MsgKeyframe:
		raw, err := zstdDecoder.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress keyframe: %w", err)
		}
		body = raw
	default:
		return nil, fmt.Errorf("unknown message kind 0x%02x", data[0])
	}
	var f Frame
	if err := msgpack.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &f, nil
}
