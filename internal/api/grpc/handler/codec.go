package handler

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// decodeRequest copies the fields of in into dst using dst's json tags.
func decodeRequest(in *structpb.Struct, dst any) error {
	if in == nil {
		in = &structpb.Struct{}
	}

	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedRequest, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedRequest, err)
	}

	return nil
}

func encodeResponse(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build response: %w", err)
	}
	return out, nil
}
