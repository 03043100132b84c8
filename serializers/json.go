package serializers

import "encoding/json"

type JsonSerializer struct {
	Indent string
}

func (s *JsonSerializer) Serialize(i interface{}) ([]byte, error) {
	if s.Indent != "" {
		return json.MarshalIndent(i, "", s.Indent)
	}
	return json.Marshal(i)
}

func (s *JsonSerializer) Deserialize(b []byte, i interface{}) error {
	return json.Unmarshal(b, i)
}
