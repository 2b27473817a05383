package domain

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// EncodePayloadBSON serializes a payload for a BSON-backed event log.
func EncodePayloadBSON(p Payload) (Kind, bson.Raw, error) {
	if p == nil {
		return "", nil, fmt.Errorf("event has no payload")
	}
	if u, ok := p.(Unknown); ok {
		return u.RawKind, bson.Raw(u.Data), nil
	}
	raw, err := bson.Marshal(p)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s payload: %w", p.Kind(), err)
	}
	return p.Kind(), raw, nil
}

// DecodePayloadBSON deserializes a payload by kind. Unrecognized kinds are
// preserved as Unknown, mirroring the JSON codec.
func DecodePayloadBSON(kind Kind, data bson.Raw) (Payload, error) {
	switch kind {
	case KindCreated:
		var p Created
		return decodeBSONInto(data, kind, &p)
	case KindTitleChanged:
		var p TitleChanged
		return decodeBSONInto(data, kind, &p)
	case KindContentChanged:
		var p ContentChanged
		return decodeBSONInto(data, kind, &p)
	case KindDeleted:
		return Deleted{}, nil
	case KindCommentAdded:
		var p CommentAdded
		return decodeBSONInto(data, kind, &p)
	case KindCommentDeleted:
		var p CommentDeleted
		return decodeBSONInto(data, kind, &p)
	default:
		return Unknown{RawKind: kind, Data: append([]byte(nil), data...)}, nil
	}
}

func decodeBSONInto[P Payload](data bson.Raw, kind Kind, dst *P) (Payload, error) {
	if len(data) > 0 {
		if err := bson.Unmarshal(data, dst); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
	}
	return *dst, nil
}
