package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/model"
)

// StringUint64 decodes integers the fullnode sends either as JSON strings
// ("42") or as plain numbers.
type StringUint64 uint64

func (v StringUint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(v), 10))
}

func (v *StringUint64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", s, err)
		}
		*v = StringUint64(n)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid integer %s: %w", data, err)
	}
	*v = StringUint64(n)
	return nil
}

// ObjectDataOptions selects which parts of an object the fullnode returns.
type ObjectDataOptions struct {
	ShowType    bool `json:"showType"`
	ShowContent bool `json:"showContent"`
	ShowOwner   bool `json:"showOwner"`
}

// ObjectQuery is the query argument of suix_getOwnedObjects.
type ObjectQuery struct {
	Filter  any               `json:"filter"`
	Options ObjectDataOptions `json:"options"`
}

// MoveContent is the parsed Move struct of an object.
type MoveContent struct {
	DataType string         `json:"dataType"`
	Type     string         `json:"type"`
	Fields   map[string]any `json:"fields"`
}

// ObjectOwner is the owner enum of an object. Exactly one field is set for
// address and object owners; Shared and Immutable are flagged.
type ObjectOwner struct {
	AddressOwner string
	ObjectOwner  string
	Shared       bool
	Immutable    bool
}

func (o *ObjectOwner) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Immutable = s == "Immutable"
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if raw, ok := m["AddressOwner"]; ok {
		return json.Unmarshal(raw, &o.AddressOwner)
	}
	if raw, ok := m["ObjectOwner"]; ok {
		return json.Unmarshal(raw, &o.ObjectOwner)
	}
	if _, ok := m["Shared"]; ok {
		o.Shared = true
	}
	return nil
}

func (o ObjectOwner) MarshalJSON() ([]byte, error) {
	switch {
	case o.AddressOwner != "":
		return json.Marshal(map[string]string{"AddressOwner": o.AddressOwner})
	case o.ObjectOwner != "":
		return json.Marshal(map[string]string{"ObjectOwner": o.ObjectOwner})
	case o.Shared:
		return json.Marshal(map[string]any{"Shared": map[string]any{}})
	}
	return json.Marshal("Immutable")
}

func (o ObjectOwner) String() string {
	switch {
	case o.AddressOwner != "":
		return o.AddressOwner
	case o.ObjectOwner != "":
		return o.ObjectOwner
	case o.Shared:
		return "Shared"
	case o.Immutable:
		return "Immutable"
	}
	return ""
}

// ObjectData is one object as rendered by the fullnode.
type ObjectData struct {
	ObjectID string       `json:"objectId"`
	Version  StringUint64 `json:"version"`
	Digest   string       `json:"digest"`
	Type     string       `json:"type"`
	Owner    *ObjectOwner `json:"owner,omitempty"`
	Content  *MoveContent `json:"content,omitempty"`
}

// ObjectResponse wraps ObjectData or the error the fullnode reported for it.
type ObjectResponse struct {
	Data  *ObjectData     `json:"data,omitempty"`
	Error json.RawMessage `json:"error,omitempty"`
}

// ObjectPage is one page of suix_getOwnedObjects.
type ObjectPage struct {
	Data        []ObjectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// ToModel flattens the wire representation into a model.OwnedObject.
func (d ObjectData) ToModel() model.OwnedObject {
	obj := model.OwnedObject{
		ObjectID: d.ObjectID,
		Version:  uint64(d.Version),
		Digest:   d.Digest,
		Type:     d.Type,
	}
	if d.Owner != nil {
		obj.Owner = d.Owner.String()
	}
	if d.Content != nil {
		if obj.Type == "" {
			obj.Type = d.Content.Type
		}
		obj.Fields = d.Content.Fields
	}
	return obj
}

// GetOwnedObjects lists every object owned by owner with type, owner and
// parsed content. It follows the pagination cursor until the last page.
func (c *Client) GetOwnedObjects(ctx context.Context, owner string) ([]model.OwnedObject, error) {
	query := ObjectQuery{
		Options: ObjectDataOptions{ShowType: true, ShowContent: true, ShowOwner: true},
	}

	var (
		out    []model.OwnedObject
		cursor *string
	)
	for {
		var page ObjectPage
		if err := c.call(ctx, &page, methodGetOwnedObjects, owner, query, cursor, pageLimit); err != nil {
			return nil, err
		}
		for _, r := range page.Data {
			if r.Data == nil {
				continue
			}
			out = append(out, r.Data.ToModel())
		}
		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		if cursor != nil && *cursor == *page.NextCursor {
			zap.L().Warn("fullnode returned a repeated cursor, stopping pagination", zap.String("cursor", *cursor))
			break
		}
		next := *page.NextCursor
		cursor = &next
	}

	zap.L().Debug("owned objects fetched", zap.String("owner", owner), zap.Int("count", len(out)))
	return out, nil
}
