package format

import (
	"fmt"
	"time"

	"github.com/WalkNetwork/serializer-framework/serial"
	"github.com/WalkNetwork/serializer-framework/telemetry"
)

// Marshal encodes v through s with f and records format metrics
func Marshal(f serial.BinaryFormat, s serial.SerializationStrategy, v any) ([]byte, error) {
	start := time.Now()
	data, err := f.EncodeToBytes(s, v)
	telemetry.EncodeTotal.With(f.Name(), telemetry.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	telemetry.CodecDurationSeconds.With(f.Name(), "encode").Observe(time.Since(start).Seconds())
	telemetry.PayloadBytes.With(f.Name(), "encode").Observe(float64(len(data)))
	return data, nil
}

// Unmarshal decodes data through s with f and records format metrics
func Unmarshal(f serial.BinaryFormat, s serial.DeserializationStrategy, data []byte) (any, error) {
	start := time.Now()
	v, err := f.DecodeFromBytes(s, data)
	telemetry.DecodeTotal.With(f.Name(), telemetry.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	telemetry.CodecDurationSeconds.With(f.Name(), "decode").Observe(time.Since(start).Seconds())
	telemetry.PayloadBytes.With(f.Name(), "decode").Observe(float64(len(data)))
	return v, nil
}

// Encode encodes v with the serializer derived for T
func Encode[T any](f serial.BinaryFormat, v T) ([]byte, error) {
	s, err := serial.Of[T]()
	if err != nil {
		return nil, err
	}
	return Marshal(f, s, v)
}

// Decode decodes data into a T
func Decode[T any](f serial.BinaryFormat, data []byte) (T, error) {
	var zero T
	s, err := serial.Of[T]()
	if err != nil {
		return zero, err
	}
	v, err := Unmarshal(f, s, data)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("format: decoded %T, expected %T", v, zero)
	}
	return out, nil
}
