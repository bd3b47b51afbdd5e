package entity

import "encoding/json"

type Message struct {
	ID       string   `json:"id"`
	Text     string   `json:"message"`
	Metadata Metadata `json:"metadata"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	meta := nested(raw, "metadata")
	*m = Message{
		ID:   firstString(raw, "id", "message_id", "_id"),
		Text: stringOf(firstPresent(raw, "message", "content", "body")),
		Metadata: Metadata{
			CreatedAt: TimestampOf(firstPresent(meta, "created_at")),
			UpdatedAt: TimestampOf(firstPresent(meta, "updated_at")),
			DeletedAt: TimestampOf(firstPresent(meta, "deleted_at")),
		},
	}
	if !m.Metadata.CreatedAt.IsSet() {
		m.Metadata.CreatedAt = TimestampOf(raw["created_at"])
	}
	return nil
}
