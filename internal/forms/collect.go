package forms

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aipress24/kyc-engine/internal/blobs"
	"github.com/aipress24/kyc-engine/internal/models"
)

// PhotoUpload is a consumed photo blob, ready to be written to the
// member record.
type PhotoUpload struct {
	Filename string
	Content  []byte
}

// Collected is the managed output of a submission: the values that feed
// the profile projector and the uploads popped from the blob store.
type Collected struct {
	Values map[string]any
	Photos map[string]*PhotoUpload
}

// BlobSource resolves upload handles present in a submission.
type BlobSource interface {
	Pop(id uint) (*models.TmpBlob, error)
}

// Collect extracts the managed values of a submission in schema order.
// Dual fields yield the (name, name_detail) pair, photo fields consume
// their blob handle, everything else passes through normalized.
func Collect(schema *FormSchema, values map[string]any, uploads BlobSource) (*Collected, error) {
	out := &Collected{
		Values: make(map[string]any),
		Photos: make(map[string]*PhotoUpload),
	}
	for _, group := range schema.Groups {
		for _, spec := range group.Fields {
			switch spec.Widget {
			case WidgetPhoto:
				upload, err := collectPhoto(spec, values[spec.Name], uploads)
				if err != nil {
					return nil, err
				}
				if upload != nil {
					out.Photos[spec.Name] = upload
				}
			case WidgetCheckbox:
				checked, _ := values[spec.Name].(bool)
				out.Values[spec.Name] = checked
			default:
				out.Values[spec.Name] = normalize(values[spec.Name], spec.Multiple)
				if spec.Dual {
					detail := values[spec.DetailName()]
					out.Values[spec.DetailName()] = normalize(detail, spec.Multiple)
				}
			}
		}
	}
	return out, nil
}

func collectPhoto(spec *FieldSpec, raw any, uploads BlobSource) (*PhotoUpload, error) {
	handle, err := blobHandle(raw)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", spec.Name, err)
	}
	if handle == 0 {
		return nil, nil
	}
	blob, err := uploads.Pop(handle)
	if errors.Is(err, blobs.ErrNotFound) {
		// Expired or already consumed handle, the field stays empty.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", spec.Name, err)
	}
	if blob == nil {
		return nil, nil
	}
	return &PhotoUpload{Filename: blob.Filename, Content: blob.Content}, nil
}

// blobHandle coerces the submitted handle. JSON numbers arrive as
// float64, form posts as strings.
func blobHandle(raw any) (uint, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid upload handle %v", v)
		}
		return uint(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid upload handle %d", v)
		}
		return uint(v), nil
	case uint:
		return v, nil
	case string:
		if v == "" {
			return 0, nil
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid upload handle %q", v)
		}
		return uint(n), nil
	default:
		return 0, fmt.Errorf("invalid upload handle type %T", raw)
	}
}

// normalize keeps multi values as string slices and everything else as
// submitted, so the stored documents stay shape-stable.
func normalize(value any, multiple bool) any {
	if multiple {
		out := asStrings(value)
		if out == nil {
			return []string{}
		}
		return out
	}
	if value == nil {
		return ""
	}
	return value
}
