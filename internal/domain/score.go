package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Score is a review rating. Older rows stored it as a string attribute, so
// both representations are accepted on read. It is always written as a number.
type Score float64

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler.
func (s Score) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(float64(s), 'f', -1, 64)}, nil
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler.
func (s *Score) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		return s.parse(v.Value)
	case *types.AttributeValueMemberS:
		return s.parse(v.Value)
	case *types.AttributeValueMemberNULL:
		*s = 0
		return nil
	default:
		return fmt.Errorf("score: unsupported attribute type %T", av)
	}
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (s *Score) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		return s.parse(str)
	}
	return s.parse(raw)
}

func (s *Score) parse(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		*s = 0
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("score: %q is not numeric", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("score: %q is not a finite number", value)
	}
	*s = Score(f)
	return nil
}
