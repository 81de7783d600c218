package server

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/tbcparser/internal/common"
)

// toStruct converts any JSON-encodable value into a Struct through its JSON form,
// so field names and omitempty follow the entity tags.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return structpb.NewStruct(m)
}

func stringField(in *structpb.Struct, key string) string {
	v, ok := in.GetFields()[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

// optionalInt64 reads an integral number field. Absent or null gives nil; strings of
// digits are accepted for ids that do not fit a double exactly.
func optionalInt64(in *structpb.Struct, key string) (*int64, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return nil, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return nil, fmt.Errorf("%w: %s must be an integer", common.ErrInvalidInput, key)
		}
		n := int64(f)
		return &n, nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(k.StringValue), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", common.ErrInvalidInput, key)
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("%w: %s must be an integer", common.ErrInvalidInput, key)
	}
}

func requiredInt64(in *structpb.Struct, key string) (int64, error) {
	n, err := optionalInt64(in, key)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, fmt.Errorf("%w: %s is required", common.ErrInvalidInput, key)
	}
	return *n, nil
}

func stringList(in *structpb.Struct, key string) ([]string, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %s must be a list of strings", common.ErrInvalidInput, key)
	}
	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a list of strings", common.ErrInvalidInput, key)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

// optionalDate parses a YYYY-MM-DD field.
func optionalDate(in *structpb.Struct, key string) (*time.Time, error) {
	s := stringField(in, key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", common.ErrInvalidInput, key)
	}
	return &t, nil
}
