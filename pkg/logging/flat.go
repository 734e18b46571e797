package logging

import (
	"encoding/json"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferPool = buffer.NewPool()

// FlatEncoder writes one JSON object per entry with every field at the top level,
// which is what most log shippers index without extra parsing rules.
type FlatEncoder struct {
	zapcore.Encoder
	config zapcore.EncoderConfig
	fields []zapcore.Field
}

// NewFlatEncoder creates a new flat JSON encoder
func NewFlatEncoder(config zapcore.EncoderConfig) zapcore.Encoder {
	return &FlatEncoder{
		Encoder: zapcore.NewJSONEncoder(config),
		config:  config,
	}
}

// AddString keeps context fields added through logger.With so EncodeEntry can flatten them
func (e *FlatEncoder) AddString(key, value string) {
	e.fields = append(e.fields, zapcore.Field{Key: key, Type: zapcore.StringType, String: value})
	e.Encoder.AddString(key, value)
}

// AddInt64 keeps integer context fields
func (e *FlatEncoder) AddInt64(key string, value int64) {
	e.fields = append(e.fields, zapcore.Field{Key: key, Type: zapcore.Int64Type, Integer: value})
	e.Encoder.AddInt64(key, value)
}

// EncodeEntry encodes a log entry as a flat JSON object
func (e *FlatEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	logObj := map[string]interface{}{
		"timestamp": entry.Time.UTC().Format(time.RFC3339Nano),
		"level":     entry.Level.String(),
		"message":   entry.Message,
	}
	if entry.LoggerName != "" {
		logObj["logger"] = entry.LoggerName
	}
	if entry.Caller.Defined {
		logObj["caller"] = entry.Caller.TrimmedPath()
	}
	if entry.Stack != "" {
		logObj["stack"] = entry.Stack
	}

	all := make([]zapcore.Field, 0, len(e.fields)+len(fields))
	all = append(all, e.fields...)
	all = append(all, fields...)
	for _, field := range all {
		logObj[field.Key] = fieldValue(field)
	}

	buf := bufferPool.Get()
	data, err := json.Marshal(logObj)
	if err != nil {
		buf.Free()
		return nil, err
	}
	buf.AppendBytes(data)
	buf.AppendByte('\n')
	return buf, nil
}

func fieldValue(field zapcore.Field) interface{} {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return field.Integer
	case zapcore.BoolType:
		return field.Integer == 1
	case zapcore.DurationType:
		return time.Duration(field.Integer).String()
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok && err != nil {
			return err.Error()
		}
		return nil
	default:
		enc := zapcore.NewMapObjectEncoder()
		field.AddTo(enc)
		return enc.Fields[field.Key]
	}
}

// Clone creates a copy of the encoder
func (e *FlatEncoder) Clone() zapcore.Encoder {
	fields := make([]zapcore.Field, len(e.fields))
	copy(fields, e.fields)
	return &FlatEncoder{
		Encoder: e.Encoder.Clone(),
		config:  e.config,
		fields:  fields,
	}
}
