// Package firestoreevent decodes Firestore document change payloads
// (google.events.cloud.firestore.v1.DocumentEventData, as JSON or protobuf)
// into models.DocumentEvent.
package firestoreevent

import (
	"fmt"
	"mime"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"campus-notifier/internal/models"
)

// ContentTypeProtobuf is what Eventarc sends for Firestore triggers unless
// the trigger is created with the JSON content type.
const ContentTypeProtobuf = "application/protobuf"

var jsonOptions = protojson.UnmarshalOptions{DiscardUnknown: true}

// Decode parses a JSON document event body for the named trigger.
func Decode(trigger string, body []byte) (*models.DocumentEvent, error) {
	return DecodeContent(trigger, "application/json", body)
}

// DecodeContent parses body according to contentType. Anything other than
// application/protobuf is read as JSON.
func DecodeContent(trigger, contentType string, body []byte) (*models.DocumentEvent, error) {
	var data firestoredata.DocumentEventData
	if isProtobuf(contentType) {
		if err := proto.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("parse event: %w", err)
		}
	} else if err := jsonOptions.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}

	before, err := decodeDocument(data.GetOldValue())
	if err != nil {
		return nil, fmt.Errorf("oldValue: %w", err)
	}
	after, err := decodeDocument(data.GetValue())
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}

	event := &models.DocumentEvent{
		Trigger:    trigger,
		Before:     before,
		After:      after,
		UpdateMask: data.GetUpdateMask().GetFieldPaths(),
	}

	switch {
	case after != nil:
		event.DocumentID = after.ID()
	case before != nil:
		event.DocumentID = before.ID()
	}

	return event, nil
}

func isProtobuf(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == ContentTypeProtobuf
}

// decodeDocument returns nil for an absent or empty side of the change.
func decodeDocument(doc *firestoredata.Document) (*models.Snapshot, error) {
	if doc == nil || (doc.GetName() == "" && len(doc.GetFields()) == 0) {
		return nil, nil
	}

	data, err := decodeFields(doc.GetFields())
	if err != nil {
		return nil, err
	}

	snap := &models.Snapshot{Name: doc.GetName(), Data: data}
	if ts := doc.GetCreateTime(); ts != nil {
		snap.CreateTime = ts.AsTime()
	}
	if ts := doc.GetUpdateTime(); ts != nil {
		snap.UpdateTime = ts.AsTime()
	}
	return snap, nil
}

func decodeFields(fields map[string]*firestoredata.Value) (models.Doc, error) {
	out := make(models.Doc, len(fields))
	for name, v := range fields {
		decoded, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out[name] = decoded
	}
	return out, nil
}

func decodeValue(v *firestoredata.Value) (interface{}, error) {
	switch x := v.GetValueType().(type) {
	case *firestoredata.Value_NullValue:
		return nil, nil
	case *firestoredata.Value_BooleanValue:
		return x.BooleanValue, nil
	case *firestoredata.Value_IntegerValue:
		return x.IntegerValue, nil
	case *firestoredata.Value_DoubleValue:
		return x.DoubleValue, nil
	case *firestoredata.Value_StringValue:
		return x.StringValue, nil
	case *firestoredata.Value_ReferenceValue:
		return x.ReferenceValue, nil
	case *firestoredata.Value_TimestampValue:
		return x.TimestampValue.AsTime(), nil
	case *firestoredata.Value_BytesValue:
		return x.BytesValue, nil
	case *firestoredata.Value_GeoPointValue:
		return models.Doc{
			"latitude":  x.GeoPointValue.GetLatitude(),
			"longitude": x.GeoPointValue.GetLongitude(),
		}, nil

	case *firestoredata.Value_ArrayValue:
		values := x.ArrayValue.GetValues()
		out := make([]interface{}, 0, len(values))
		for i, item := range values {
			decoded, err := decodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, decoded)
		}
		return out, nil

	case *firestoredata.Value_MapValue:
		return decodeFields(x.MapValue.GetFields())

	default:
		return nil, fmt.Errorf("value has no supported type")
	}
}
